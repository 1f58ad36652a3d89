package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultConf = `[param]
threshold = 0.5

[post]
segmentation = true
remove_objects = true
min_object_size = 32
seg_scale = 0.6
seg_ratio = 0.3
edge_weight_factor = 2.0
`

// writeConf drops an ini file into the test directory
func writeConf(t *testing.T, dir, name, content string) string {

	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoad(t *testing.T) {

	dir := t.TempDir()
	path := writeConf(t, dir, "config_default.ini", defaultConf)

	params, err := Load(path)

	require.NoError(t, err)

	assert.Equal(t, 0.5, params.Threshold)
	assert.True(t, params.Segmentation)
	assert.True(t, params.RemoveObjects)
	assert.Equal(t, 32, params.MinObjectSize)
	assert.Equal(t, 0.6, params.SegScale)
	assert.Equal(t, 0.3, params.SegRatio)
	assert.Equal(t, 2.0, params.EdgeWeightFactor)
}

func TestLoadLocalOverride(t *testing.T) {

	dir := t.TempDir()
	def := writeConf(t, dir, "config_default.ini", defaultConf)
	local := writeConf(t, dir, "config.ini", `[param]
threshold = 0.7

[post]
segmentation = false
`)

	params, err := Load(def, local)

	require.NoError(t, err)

	// the local file overrides what it names and inherits the rest
	assert.Equal(t, 0.7, params.Threshold)
	assert.False(t, params.Segmentation)
	assert.Equal(t, 32, params.MinObjectSize)
}

func TestLoadMissingLocalFile(t *testing.T) {

	dir := t.TempDir()
	def := writeConf(t, dir, "config_default.ini", defaultConf)

	// a missing override file is not an error
	params, err := Load(def, filepath.Join(dir, "config.ini"))

	require.NoError(t, err)
	assert.Equal(t, 0.5, params.Threshold)
}

func TestLoadMissingKey(t *testing.T) {

	dir := t.TempDir()
	path := writeConf(t, dir, "config.ini", `[param]
threshold = 0.5

[post]
segmentation = true
`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "remove_objects")
}

func TestLoadMistypedKey(t *testing.T) {

	dir := t.TempDir()
	path := writeConf(t, dir, "config.ini", `[param]
threshold = not-a-number

[post]
segmentation = true
remove_objects = true
min_object_size = 32
seg_scale = 0.6
seg_ratio = 0.3
edge_weight_factor = 2.0
`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "threshold")
}

func TestLoadBadSegRatio(t *testing.T) {

	dir := t.TempDir()
	path := writeConf(t, dir, "config.ini", `[param]
threshold = 0.5

[post]
segmentation = true
remove_objects = true
min_object_size = 32
seg_scale = 0.6
seg_ratio = 1.5
edge_weight_factor = 2.0
`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "seg_ratio")
}

func TestLoadNoFiles(t *testing.T) {

	_, err := Load()
	assert.Error(t, err)
}
