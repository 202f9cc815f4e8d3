package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// stageOutput creates an empty temporary file next to outputPath, keeping its
// extension so the engine can infer the container format.
func stageOutput(outputPath string) (string, error) {
	dir := filepath.Dir(outputPath)
	base := filepath.Base(outputPath)
	ext := filepath.Ext(base)
	stem := strings.ReplaceAll(strings.TrimSuffix(base, ext), "*", "_")

	f, err := os.CreateTemp(dir, "."+stem+".partial-*"+ext)
	if err != nil {
		return "", fmt.Errorf("stage output in %s: %w", dir, err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("close staged output: %w", err)
	}
	return name, nil
}

// commitOutput moves the staged file onto outputPath.
func commitOutput(staged, outputPath string) error {
	if err := os.Rename(staged, outputPath); err != nil {
		_ = os.Remove(staged)
		return fmt.Errorf("rename staged output: %w", err)
	}
	return nil
}

func discardOutput(staged string) {
	_ = os.Remove(staged)
}

// checkOutputTarget rejects an output path that names an existing directory,
// which a finished encode could never be renamed onto.
func checkOutputTarget(outputPath string) error {
	info, err := os.Stat(outputPath)
	if err != nil {
		return nil // missing targets are created on commit
	}
	if info.IsDir() {
		return fmt.Errorf("output %s is a directory", outputPath)
	}
	return nil
}

// checkReadable verifies that path names an existing regular file that can be
// opened for reading.
func checkReadable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	f, err := os.Open(path) // #nosec G304 - path is checked, not executed
	if err != nil {
		return err
	}
	return f.Close()
}
