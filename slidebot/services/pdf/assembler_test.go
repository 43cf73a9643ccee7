package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"slidebot/slidebot/utils/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJPEG(t *testing.T, dir string, index, w, h int) types.Image {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: uint8(index * 40), A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	path := filepath.Join(dir, fmt.Sprintf("image%d.jpg", index))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return types.Image{Index: index, Path: path}
}

func TestAssembleOrdersAndSizesPages(t *testing.T) {
	dir := t.TempDir()
	images := []types.Image{
		writeJPEG(t, dir, 3, 300, 200),
		writeJPEG(t, dir, 1, 640, 360),
		writeJPEG(t, dir, 2, 120, 480),
	}
	out := filepath.Join(dir, "slides.pdf")

	pages, err := NewAssembler().Assemble(images, out)
	require.NoError(t, err)

	require.Len(t, pages, 3)
	assert.Equal(t, types.PageInfo{Index: 1, Width: 640, Height: 360}, pages[0])
	assert.Equal(t, types.PageInfo{Index: 2, Width: 120, Height: 480}, pages[1])
	assert.Equal(t, types.PageInfo{Index: 3, Width: 300, Height: 200}, pages[2])

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")), "output is not a pdf")
}

func TestAssemblePNG(t *testing.T) {
	dir := t.TempDir()
	img := image.NewGray(image.Rect(0, 0, 50, 70))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, "image1.jpg")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	pages, err := NewAssembler().Assemble([]types.Image{{Index: 1, Path: path}}, filepath.Join(dir, "out.pdf"))
	require.NoError(t, err)
	assert.Equal(t, []types.PageInfo{{Index: 1, Width: 50, Height: 70}}, pages)
}

func TestAssembleErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := NewAssembler().Assemble(nil, filepath.Join(dir, "out.pdf"))
	assert.ErrorIs(t, err, ErrNoImages)

	bad := filepath.Join(dir, "image1.jpg")
	require.NoError(t, os.WriteFile(bad, []byte("<html>not an image</html>"), 0o644))
	_, err = NewAssembler().Assemble([]types.Image{{Index: 1, Path: bad}}, filepath.Join(dir, "out.pdf"))
	assert.Error(t, err)

	_, err = NewAssembler().Assemble([]types.Image{{Index: 1, Path: filepath.Join(dir, "missing.jpg")}}, filepath.Join(dir, "out.pdf"))
	assert.Error(t, err)
}

func TestSortImagesZeroIndexFirst(t *testing.T) {
	sorted := SortImages([]types.Image{{Index: 2, Path: "b"}, {Index: 0, Path: "z"}, {Index: 1, Path: "a"}})
	assert.Equal(t, []int{0, 1, 2}, []int{sorted[0].Index, sorted[1].Index, sorted[2].Index})
}
