package fit

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/blead/canvasfit/pkg/canvas"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T, p string, width int, height int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0777))
	img := imaging.New(width, height, color.NRGBA{0, 128, 255, 255})
	require.NoError(t, imaging.Save(img, p))
}

func imageBounds(t *testing.T, p string) image.Rectangle {
	t.Helper()
	img, err := imaging.Open(p)
	require.NoError(t, err)
	return img.Bounds()
}

func TestNewFitterDefaults(t *testing.T) {
	fitter, err := NewFitter(&FitterConfig{DestPath: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, canvas.MaxExtent, fitter.config.MaxExtent)
	assert.Equal(t, 5, fitter.config.Concurrency)
	assert.NotNil(t, fitter.config.Filter.Kernel)
	assert.Equal(t, imaging.Format(-1), fitter.format)
}

func TestNewFitterRejectsInvalid(t *testing.T) {
	_, err := NewFitter(&FitterConfig{MaxExtent: -1})
	assert.Error(t, err)

	_, err = NewFitter(&FitterConfig{Format: "webp"})
	assert.Error(t, err)
}

func TestFitImagesDirectory(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	writeImage(t, filepath.Join(src, "wide.png"), 40, 20)
	writeImage(t, filepath.Join(src, "nested", "tall.jpg"), 10, 30)
	require.NoError(t, os.WriteFile(filepath.Join(src, "notes.txt"), []byte("skip me"), 0666))

	fitter, err := NewFitter(&FitterConfig{
		SrcPaths:    []string{src},
		DestPath:    dest,
		MaxExtent:   100,
		Concurrency: 2,
	})
	require.NoError(t, err)

	results, err := fitter.FitImages()
	require.NoError(t, err)
	require.Len(t, results, 2)

	base := filepath.Base(src)
	assert.Equal(t, image.Rect(0, 0, 100, 50), imageBounds(t, filepath.Join(dest, base, "wide.png")))
	assert.Equal(t, image.Rect(0, 0, 33, 100), imageBounds(t, filepath.Join(dest, base, "nested", "tall.jpg")))

	assert.Equal(t, filepath.Join(src, "nested", "tall.jpg"), results[0].Source)
	assert.Equal(t, canvas.Dimensions{Width: 33, Height: 100}, results[0].Canvas)
	assert.Equal(t, 10.0, results[0].Width)
	assert.Equal(t, filepath.Join(src, "wide.png"), results[1].Source)
	assert.Equal(t, canvas.Dimensions{Width: 100, Height: 50}, results[1].Canvas)
}

func TestFitImagesShrinkOnly(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	small := filepath.Join(src, "small.png")
	large := filepath.Join(src, "large.png")
	writeImage(t, small, 20, 10)
	writeImage(t, large, 300, 150)

	fitter, err := NewFitter(&FitterConfig{
		SrcPaths:   []string{small, large},
		DestPath:   dest,
		MaxExtent:  100,
		ShrinkOnly: true,
		Format:     "png",
	})
	require.NoError(t, err)

	results, err := fitter.FitImages()
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, image.Rect(0, 0, 100, 50), imageBounds(t, filepath.Join(dest, "large.png")))
	assert.Equal(t, image.Rect(0, 0, 20, 10), imageBounds(t, filepath.Join(dest, "small.png")))
}

func TestFitImagesFormat(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	p := filepath.Join(src, "photo.png")
	writeImage(t, p, 8, 8)

	fitter, err := NewFitter(&FitterConfig{
		SrcPaths:  []string{p},
		DestPath:  dest,
		MaxExtent: 16,
		Format:    "jpeg",
	})
	require.NoError(t, err)

	_, err = fitter.FitImages()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 16), imageBounds(t, filepath.Join(dest, "photo.jpg")))
}

func TestFitImagesURL(t *testing.T) {
	var png bytes.Buffer
	require.NoError(t, imaging.Encode(&png, imaging.New(30, 60, color.White), imaging.PNG))

	mux := http.NewServeMux()
	mux.HandleFunc("/img/remote.png", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.Write(png.Bytes())
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	dest := t.TempDir()
	fitter, err := NewFitter(&FitterConfig{
		SrcPaths:  []string{server.URL + "/img/remote.png", server.URL + "/img/missing.png"},
		DestPath:  dest,
		MaxExtent: 40,
	})
	require.NoError(t, err)

	results, err := fitter.FitImages()
	assert.Error(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, canvas.Dimensions{Width: 20, Height: 40}, results[0].Canvas)
	assert.Equal(t, image.Rect(0, 0, 20, 40), imageBounds(t, filepath.Join(dest, "remote.png")))
}

func TestFitImagesMissingSource(t *testing.T) {
	fitter, err := NewFitter(&FitterConfig{
		SrcPaths: []string{filepath.Join(t.TempDir(), "nope.png")},
		DestPath: t.TempDir(),
	})
	require.NoError(t, err)

	_, err = fitter.FitImages()
	assert.Error(t, err)
}

func TestFitImagesUndecodable(t *testing.T) {
	src := t.TempDir()
	bad := filepath.Join(src, "bad.png")
	good := filepath.Join(src, "good.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0666))
	writeImage(t, good, 4, 2)

	fitter, err := NewFitter(&FitterConfig{
		SrcPaths:  []string{src},
		DestPath:  t.TempDir(),
		MaxExtent: 8,
	})
	require.NoError(t, err)

	results, err := fitter.FitImages()
	assert.Error(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, good, results[0].Source)
}

func TestFitImagesEmptyCanvas(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	strip := filepath.Join(src, "strip.png")
	writeImage(t, strip, 30, 1)

	fitter, err := NewFitter(&FitterConfig{
		SrcPaths:  []string{strip},
		DestPath:  dest,
		MaxExtent: 10,
	})
	require.NoError(t, err)

	results, err := fitter.FitImages()
	assert.True(t, errors.Is(err, canvas.ErrInvalidDimensions), "got %v", err)
	assert.Empty(t, results)

	_, err = os.Stat(filepath.Join(dest, "strip.png"))
	assert.True(t, os.IsNotExist(err), "got %v", err)
}

func TestFitImagesDuplicateNames(t *testing.T) {
	root := t.TempDir()
	first := filepath.Join(root, "a", "x.png")
	second := filepath.Join(root, "b", "x.png")
	writeImage(t, first, 4, 2)
	writeImage(t, second, 2, 4)

	fitter, err := NewFitter(&FitterConfig{
		SrcPaths:  []string{first, second},
		DestPath:  t.TempDir(),
		MaxExtent: 8,
	})
	require.NoError(t, err)

	_, err = fitter.FitImages()
	assert.Error(t, err)
}

func TestFitImagesDuplicateOutputs(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	writeImage(t, filepath.Join(src, "x.png"), 4, 2)
	writeImage(t, filepath.Join(src, "x.jpg"), 4, 2)

	fitter, err := NewFitter(&FitterConfig{
		SrcPaths:  []string{src},
		DestPath:  dest,
		MaxExtent: 8,
		Format:    "png",
	})
	require.NoError(t, err)

	results, err := fitter.FitImages()
	assert.Error(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, image.Rect(0, 0, 8, 4), imageBounds(t, filepath.Join(dest, filepath.Base(src), "x.png")))
}

func TestParseFilter(t *testing.T) {
	filter, err := ParseFilter("Lanczos")
	require.NoError(t, err)
	assert.Equal(t, imaging.Lanczos.Support, filter.Support)

	_, err = ParseFilter("sharpest")
	assert.Error(t, err)
}
