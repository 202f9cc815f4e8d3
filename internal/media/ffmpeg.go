package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// Static errors for the ffmpeg engine.
var (
	// ErrUnknownHandle is returned when a handle does not refer to an open source.
	ErrUnknownHandle = errors.New("unknown or released handle")
	// ErrNoVideoStream is returned when ffprobe finds no video stream in the source.
	ErrNoVideoStream = errors.New("no video stream in source")
	// ErrFFmpegVersion is returned when the ffmpeg binary does not identify itself.
	ErrFFmpegVersion = errors.New("unable to determine ffmpeg version")
)

// Compile-time check that FFmpegEngine implements Engine.
var _ Engine = (*FFmpegEngine)(nil)

// FFmpegEngine implements Engine using the ffmpeg and ffprobe CLIs.
// Video is re-encoded with libx264 and audio with aac.
type FFmpegEngine struct {
	ffmpegPath  string
	ffprobePath string

	initOnce sync.Once
	initErr  error

	mu      sync.Mutex
	next    Handle
	sources map[Handle]string
}

// NewFFmpegEngine creates a new FFmpegEngine.
// Empty paths default to "ffmpeg" and "ffprobe" (found via PATH).
func NewFFmpegEngine(ffmpegPath, ffprobePath string) *FFmpegEngine {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpegEngine{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		sources:     make(map[Handle]string),
	}
}

// Init resolves the ffmpeg and ffprobe binaries and checks that ffmpeg runs.
// It does the work once; later calls return the first result.
func (e *FFmpegEngine) Init(ctx context.Context) error {
	e.initOnce.Do(func() {
		e.initErr = e.initBindings(ctx)
	})
	return e.initErr
}

func (e *FFmpegEngine) initBindings(ctx context.Context) error {
	ffmpegPath, err := exec.LookPath(e.ffmpegPath)
	if err != nil {
		return fmt.Errorf("ffmpeg not found: %w", err)
	}
	ffprobePath, err := exec.LookPath(e.ffprobePath)
	if err != nil {
		return fmt.Errorf("ffprobe not found: %w", err)
	}

	// #nosec G204 - ffmpegPath is set by the application, not user input
	out, err := exec.CommandContext(ctx, ffmpegPath, "-version").Output()
	if err != nil {
		return fmt.Errorf("run ffmpeg -version: %w", err)
	}
	if !strings.HasPrefix(string(out), "ffmpeg version") {
		return ErrFFmpegVersion
	}

	e.ffmpegPath = ffmpegPath
	e.ffprobePath = ffprobePath
	return nil
}

// Open probes the source and registers a handle for it.
func (e *FFmpegEngine) Open(ctx context.Context, path string) (Handle, Probe, error) {
	probe, err := e.probe(ctx, path)
	if err != nil {
		return 0, Probe{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.next++
	e.sources[e.next] = path
	return e.next, probe, nil
}

// Transcode re-encodes the source scaled to width x height.
func (e *FFmpegEngine) Transcode(ctx context.Context, h Handle, outputPath string, width, height int) error {
	src, err := e.source("transcode", h)
	if err != nil {
		return err
	}
	filter := fmt.Sprintf("scale=%d:%d", width, height)
	return e.runFFmpeg(ctx, "transcode", encodeArgs(src, filter, outputPath, width, height))
}

// CropTranscode re-encodes the width x height region at (x, y) of the source.
func (e *FFmpegEngine) CropTranscode(ctx context.Context, h Handle, outputPath string, x, y, width, height int) error {
	src, err := e.source("crop", h)
	if err != nil {
		return err
	}
	filter := fmt.Sprintf("crop=%d:%d:%d:%d", width, height, x, y)
	return e.runFFmpeg(ctx, "crop", encodeArgs(src, filter, outputPath, width, height))
}

// Release forgets the handle. Unknown handles are ignored.
func (e *FFmpegEngine) Release(h Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sources, h)
}

// openHandles returns the number of handles not yet released.
func (e *FFmpegEngine) openHandles() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sources)
}

func (e *FFmpegEngine) source(op string, h Handle) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	src, ok := e.sources[h]
	if !ok {
		return "", &EngineError{Op: op, Code: CodeBadHandle, Err: ErrUnknownHandle}
	}
	return src, nil
}

// encodeArgs builds the re-encode command for a width x height output.
// Autorotation is disabled so the filter geometry matches the coded frame
// size reported by Open.
func encodeArgs(src, filter, output string, width, height int) []string {
	return []string{
		"-y",            // Overwrite output file
		"-noautorotate", // Keep the coded frame orientation
		"-i", src, // Input file
		"-vf", filter, // Scale or crop filter
		"-c:v", "libx264", // Video codec
		"-preset", "fast", // Encoding speed preset
		"-crf", "23", // Quality (lower = better, 23 is default)
		"-pix_fmt", pixelFormat(width, height), // Chroma layout valid for the output size
		"-c:a", "aac", // Audio codec
		"-b:a", "128k", // Audio bitrate
		output,
	}
}

// pixelFormat picks yuv420p when both axes are even. 4:2:0 subsampling
// cannot encode an odd axis, so odd sizes fall back to yuv444p.
func pixelFormat(width, height int) string {
	if width%2 != 0 || height%2 != 0 {
		return "yuv444p"
	}
	return "yuv420p"
}

// runFFmpeg executes ffmpeg with the given arguments and returns an
// EngineError containing stderr output if the command fails.
func (e *FFmpegEngine) runFFmpeg(ctx context.Context, op string, args []string) error {
	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		return &EngineError{
			Op:     op,
			Code:   statusCode(err),
			Args:   args,
			Stderr: stderr.String(),
			Err:    err,
		}
	}
	return nil
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeStream struct {
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	Tags         map[string]string `json:"tags"`
	SideDataList []ffprobeSideData `json:"side_data_list"`
}

type ffprobeSideData struct {
	SideDataType string   `json:"side_data_type"`
	Rotation     *float64 `json:"rotation"`
}

func (e *FFmpegEngine) probe(ctx context.Context, path string) (Probe, error) {
	args := []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height:stream_tags=rotate:stream_side_data=rotation",
		"-of", "json",
		path,
	}

	// #nosec G204 - ffprobePath is set by the application, not user input
	cmd := exec.CommandContext(ctx, e.ffprobePath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Probe{}, &EngineError{
			Op:     "open",
			Code:   statusCode(err),
			Args:   args,
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	return parseProbe(stdout.Bytes())
}

// parseProbe decodes ffprobe JSON output into a Probe.
func parseProbe(data []byte) (Probe, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return Probe{}, &EngineError{Op: "open", Code: CodeGeneric, Err: fmt.Errorf("parse ffprobe output: %w", err)}
	}
	if len(out.Streams) == 0 {
		return Probe{}, &EngineError{Op: "open", Code: CodeNoStream, Err: ErrNoVideoStream}
	}

	s := out.Streams[0]
	return Probe{
		Width:    s.Width,
		Height:   s.Height,
		Rotation: streamRotation(s),
	}, nil
}

// streamRotation prefers the legacy rotate tag (clockwise degrees) and falls
// back to the display matrix, whose rotation is counter-clockwise.
func streamRotation(s ffprobeStream) float64 {
	if tag, ok := s.Tags["rotate"]; ok {
		if v, err := strconv.ParseFloat(strings.TrimSpace(tag), 64); err == nil {
			return normaliseDegrees(v)
		}
	}
	for _, sd := range s.SideDataList {
		if sd.Rotation != nil {
			return normaliseDegrees(-*sd.Rotation)
		}
	}
	return 0
}

func normaliseDegrees(v float64) float64 {
	v = math.Mod(v, 360)
	if v < 0 {
		v += 360
	}
	if v == 0 {
		return 0 // drop negative zero
	}
	return v
}

// statusCode maps a process error to a negative engine status code.
func statusCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return -exitErr.ExitCode()
	}
	return CodeGeneric
}
