package driven

import "context"

// PDFInspector opens and validates PDF files.
type PDFInspector interface {
	// PageCount validates the file and returns its page count.
	PageCount(ctx context.Context, path string) (int, error)
}

// PageRenderer rasterises PDF pages.
type PageRenderer interface {
	// RenderPage renders the 1-based page at dpi and returns PNG bytes.
	RenderPage(ctx context.Context, pdfPath string, pageNo, dpi int) ([]byte, error)
}

// OCREngine recognises text in page images.
type OCREngine interface {
	// Recognize returns the text found in the image. Empty text is valid.
	Recognize(ctx context.Context, imagePath string) (string, error)

	// Available reports whether the backend is installed.
	Available(ctx context.Context) error

	// Name identifies the engine (e.g. "tesseract").
	Name() string
}

// ImageInspector reads image properties without a vision model.
type ImageInspector interface {
	// Dimensions returns the pixel width and height of the image.
	Dimensions(path string) (width, height int, err error)
}
