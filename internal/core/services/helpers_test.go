package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTestPNG writes a white w x h PNG and returns its path.
func writeTestPNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

// pngBytes encodes a white w x h PNG.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	path := writeTestPNG(t, t.TempDir(), "tmp.png", w, h)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

// fakePDF reports a fixed page count.
type fakePDF struct {
	pages int
	err   error
}

func (f *fakePDF) PageCount(context.Context, string) (int, error) {
	return f.pages, f.err
}

// fakeRenderer returns a small PNG for every page except those in fail.
type fakeRenderer struct {
	png   []byte
	fail  map[int]bool
	calls atomic.Int32
}

func (f *fakeRenderer) RenderPage(_ context.Context, _ string, pageNo, _ int) ([]byte, error) {
	f.calls.Add(1)
	if f.fail[pageNo] {
		return nil, errors.New("render failed")
	}
	return f.png, nil
}

// fakeOCR returns the configured text of the page named in the image path.
type fakeOCR struct {
	pages       map[int]string
	unavailable bool
}

func (f *fakeOCR) Recognize(_ context.Context, imagePath string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	idx := strings.LastIndex(base, "_page_")
	if idx < 0 {
		return "", fmt.Errorf("unexpected image path %s", imagePath)
	}
	n, err := strconv.Atoi(base[idx+len("_page_"):])
	if err != nil {
		return "", err
	}
	return f.pages[n], nil
}

func (f *fakeOCR) Available(context.Context) error {
	if f.unavailable {
		return errors.New("tesseract not found in PATH")
	}
	return nil
}

func (f *fakeOCR) Name() string { return "fake" }
