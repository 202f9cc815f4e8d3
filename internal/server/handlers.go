package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/maauso/mediasession/internal/geometry"
	"github.com/maauso/mediasession/internal/metrics"
	"github.com/maauso/mediasession/internal/session"
	"github.com/maauso/mediasession/internal/storage"
)

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	registry  *session.Registry
	store     storage.Storage
	validator *validator.Validate
	logger    *slog.Logger

	// mu serializes every call into the shared Session.
	mu sync.Mutex
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(registry *session.Registry, store storage.Storage, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		registry:  registry,
		store:     store,
		validator: validator.New(),
		logger:    logger,
	}
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// GetSession handles GET /session requests.
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	writeJSON(w, http.StatusOK, describe(h.registry.Session()))
}

// Open handles POST /session/open requests.
func (h *Handlers) Open(w http.ResponseWriter, r *http.Request) {
	var req OpenRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.registry.Session()
	if err := s.Open(r.Context(), req.Path); err != nil {
		writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, describe(s))
}

// Compress handles POST /session/compress requests.
func (h *Handlers) Compress(w http.ResponseWriter, r *http.Request) {
	var req CompressRequest
	if !h.decode(w, r, &req) {
		return
	}

	width, err := geometry.FromSentinel(req.Width)
	if err != nil {
		writeError(w, http.StatusBadRequest, "width: "+err.Error(), "VALIDATION_ERROR")
		return
	}
	height, err := geometry.FromSentinel(req.Height)
	if err != nil {
		writeError(w, http.StatusBadRequest, "height: "+err.Error(), "VALIDATION_ERROR")
		return
	}

	output, ok := h.resolveOutput(w, req.OutputPath)
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.registry.Session().Compress(r.Context(), output, width, height); err != nil {
		writeSessionError(w, err)
		return
	}

	h.finishTransform(r.Context(), w, output, req.PushToS3)
}

// Crop handles POST /session/crop requests.
func (h *Handlers) Crop(w http.ResponseWriter, r *http.Request) {
	var req CropRequest
	if !h.decode(w, r, &req) {
		return
	}

	output, ok := h.resolveOutput(w, req.OutputPath)
	if !ok {
		return
	}

	rect := geometry.Rect{X: req.X, Y: req.Y, Width: req.Width, Height: req.Height}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.registry.Session().Crop(r.Context(), output, rect); err != nil {
		writeSessionError(w, err)
		return
	}

	h.finishTransform(r.Context(), w, output, req.PushToS3)
}

// Release handles POST /session/release requests. The released session is
// dropped so the next open starts from a fresh one.
func (h *Handlers) Release(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	resp := describe(h.registry.Session())
	h.registry.Reset()
	resp.State = string(session.StateReleased)

	writeJSON(w, http.StatusOK, resp)
}

// decode reads and validates a JSON body, writing a 400 on failure.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		h.logger.Warn("request validation failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return false
	}
	return true
}

func (h *Handlers) resolveOutput(w http.ResponseWriter, name string) (string, bool) {
	output, err := h.store.ResolveOutput(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_OUTPUT_PATH")
		return "", false
	}
	return output, true
}

// finishTransform optionally publishes the committed output and writes the response.
func (h *Handlers) finishTransform(ctx context.Context, w http.ResponseWriter, output string, push bool) {
	resp := TransformResponse{OutputPath: output}

	if push {
		url, err := storage.Publish(ctx, h.store, output)
		metrics.ObservePublish(err)
		if err != nil {
			h.logger.Error("failed to publish output",
				slog.String("output", output),
				slog.String("error", err.Error()),
			)
			if errors.Is(err, storage.ErrS3NotConfigured) {
				writeError(w, http.StatusBadRequest, "output written but S3 is not configured", "S3_NOT_CONFIGURED")
				return
			}
			writeError(w, http.StatusBadGateway, "failed to upload output", "PUBLISH_FAILED")
			return
		}
		resp.URL = url
	}

	writeJSON(w, http.StatusOK, resp)
}

func describe(s *session.Session) SessionResponse {
	return SessionResponse{
		State:      string(s.State()),
		SourcePath: s.SourcePath(),
		Width:      s.Width(),
		Height:     s.Height(),
		Rotation:   s.Rotation(),
	}
}

// writeSessionError maps a session error kind onto an HTTP status.
func writeSessionError(w http.ResponseWriter, err error) {
	var (
		status int
		code   string
	)
	switch session.KindOf(err) {
	case session.KindInvalidArgument:
		status, code = http.StatusBadRequest, "INVALID_ARGUMENT"
	case session.KindNotFound:
		status, code = http.StatusNotFound, "SOURCE_NOT_FOUND"
	case session.KindInvalidState:
		status, code = http.StatusConflict, "INVALID_STATE"
	case session.KindInvalidGeometry:
		status, code = http.StatusUnprocessableEntity, "INVALID_GEOMETRY"
	case session.KindEngineFailure:
		engineCode, _ := session.Code(err)
		writeJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:      err.Error(),
			Code:       "ENGINE_FAILURE",
			EngineCode: engineCode,
		})
		return
	case session.KindOutput:
		status, code = http.StatusInternalServerError, "OUTPUT_FAILED"
	default:
		status, code = http.StatusInternalServerError, "INTERNAL_ERROR"
	}
	writeError(w, status, err.Error(), code)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
