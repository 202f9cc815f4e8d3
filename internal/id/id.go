// Package id provides object key generation for published outputs.
package id

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Generate creates a new unique key for an output file, keeping its extension.
// Format: <prefix>/<timestamp>-<uuid><ext>
// Example: outputs/1701432000-3f1c9a2e-7b6d-4c1e-9f0a-2d8e5b7c4a10.mp4
func Generate(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	key := fmt.Sprintf("%d-%s%s", time.Now().Unix(), uuid.NewString(), ext)
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}
