package pdfcpu

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdflib "github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsight/internal/core/domain"
)

// scannedPDF uses pdfcpu to build a PDF with one small image per page,
// the shape of a scanned claim packet.
func scannedPDF(t *testing.T, pages int) string {
	t.Helper()
	dir := t.TempDir()

	images := make([]string, pages)
	for i := range images {
		img := image.NewGray(image.Rect(0, 0, 8, 11))
		img.SetGray(i, i, color.Gray{Y: 255})

		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, img))
		images[i] = writeFileIn(t, dir, fmt.Sprintf("page_%d.png", i+1), buf.Bytes())
	}

	out := filepath.Join(dir, "scan.pdf")
	require.NoError(t, api.ImportImagesFile(images, out, pdflib.DefaultImportConfig(), model.NewDefaultConfiguration()))
	return out
}

func writeFileIn(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	return writeFileIn(t, t.TempDir(), name, data)
}

func truncatedPDF(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(scannedPDF(t, 1))
	require.NoError(t, err)
	return writeFile(t, "b.pdf", data[:40])
}

func TestInspector_PageCount(t *testing.T) {
	path := scannedPDF(t, 3)

	n, err := NewInspector().PageCount(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestInspector_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.pdf") }},
		{"directory", func(t *testing.T) string { return t.TempDir() }},
		{"not a pdf", func(t *testing.T) string { return writeFile(t, "a.pdf", []byte("hello, world")) }},
		{"truncated", truncatedPDF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInspector().PageCount(context.Background(), tt.path(t))
			assert.ErrorIs(t, err, domain.ErrUnsupportedDocument)
		})
	}
}

func TestInspector_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewInspector().PageCount(ctx, scannedPDF(t, 1))
	assert.ErrorIs(t, err, context.Canceled)
}
