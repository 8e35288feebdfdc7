package assets

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubastard/glfx/engine/blit"
)

func TestSavePNG_RoundTrip(t *testing.T) {
	src := blit.NewRGB(image.Rect(0, 0, 4, 3))
	src.Set(1, 2, color.RGBA{10, 20, 30, 255})

	path := filepath.Join(t.TempDir(), "out", "frame.png")
	require.NoError(t, SavePNG(path, src))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	got, err := LoadPNG(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), got.Bounds())
	assert.Equal(t, color.RGBA{10, 20, 30, 255}, got.RGBAAt(1, 2))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, got.RGBAAt(0, 0))
}

func TestLoadPNG_Missing(t *testing.T) {
	_, err := LoadPNG(filepath.Join(t.TempDir(), "nope.png"))
	assert.ErrorContains(t, err, "open")
}
