package id

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	pattern := regexp.MustCompile(`^outputs/\d+-[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.mp4$`)

	key := Generate("/outputs/", "/tmp/Clip.MP4")
	assert.Regexp(t, pattern, key)

	assert.NotEqual(t, key, Generate("outputs", "clip.mp4"), "keys must be unique")
}

func TestGenerate_NoPrefix(t *testing.T) {
	key := Generate("", "noext")
	assert.Regexp(t, `^\d+-[0-9a-f-]{36}$`, key)
}
