package service

import (
	"context"
	"errors"
)

// Page access errors surfaced to the usecase layer
var (
	ErrInvalidURL       = errors.New("invalid url")
	ErrFetchFailed      = errors.New("page fetch failed")
	ErrExtractionFailed = errors.New("text extraction failed")
	ErrPreviewDisabled  = errors.New("page preview disabled")
	ErrPreviewFailed    = errors.New("page preview failed")
)

// PageTitle is the <title> of a page
type PageTitle struct {
	Title string
	Found bool
}

// TextExtractor reduces a web page to its visible text
type TextExtractor interface {
	// ExtractText fetches url and returns its visible text
	ExtractText(ctx context.Context, url string) (string, error)

	// ExtractTitle fetches url and returns its title
	ExtractTitle(ctx context.Context, url string) (*PageTitle, error)
}

// PagePreviewer renders a screenshot of a web page
type PagePreviewer interface {
	// Capture returns a PNG screenshot of url
	Capture(ctx context.Context, url string) ([]byte, error)
}
