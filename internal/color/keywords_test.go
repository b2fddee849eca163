package color

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeywords_MergesOverDefaults(t *testing.T) {
	data := []byte(`
buckets:
  PINK: [vaporwave, synthwave]
  RED: [grunge]
`)

	table, err := ParseKeywords(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"vaporwave", "synthwave"}, table[Pink])
	assert.Equal(t, []string{"grunge"}, table[Red])
	assert.Equal(t, DefaultKeywords()[Cyan], table[Cyan])
}

func TestParseKeywords_UnknownBucket(t *testing.T) {
	_, err := ParseKeywords([]byte("buckets:\n  TEAL: [dub]\n"))
	assert.ErrorIs(t, err, ErrUnknownBucket)
}

func TestParseKeywords_InvalidYAML(t *testing.T) {
	_, err := ParseKeywords([]byte("buckets: [not, a, map"))
	assert.Error(t, err)
}

func TestLoadKeywords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	require.NoError(t, os.WriteFile(path, []byte("buckets:\n  BLUE: [shoegaze]\n"), 0o600))

	table, err := LoadKeywords(path)
	require.NoError(t, err)

	c, err := NewClassifier(table)
	require.NoError(t, err)
	w := c.Classify([]string{"Shoegaze"})
	assert.InDelta(t, 1.0, w[Blue], 1e-9)
}

func TestLoadKeywords_MissingFile(t *testing.T) {
	_, err := LoadKeywords(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
