package scraper

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/linkscribe/api-service/internal/domain/service"
)

// invisibleSelectors hold text that a browser never renders.
const invisibleSelectors = "script, style, noscript, template"

// ErrEmptyText is returned for pages without visible text. It matches
// service.ErrExtractionFailed.
var ErrEmptyText = fmt.Errorf("%w: page has no visible text", service.ErrExtractionFailed)

// PageFetcher retrieves raw pages
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// Extractor turns fetched pages into visible text and titles
type Extractor struct {
	fetcher PageFetcher
}

// NewExtractor creates an Extractor
func NewExtractor(fetcher PageFetcher) *Extractor {
	return &Extractor{fetcher: fetcher}
}

// ExtractText fetches url and returns its visible text, one trimmed text
// node per line in document order.
func (e *Extractor) ExtractText(ctx context.Context, url string) (string, error) {
	doc, err := e.document(ctx, url)
	if err != nil {
		return "", err
	}

	text := VisibleText(doc)
	if text == "" {
		return "", ErrEmptyText
	}
	return text, nil
}

// ExtractTitle fetches url and returns the text of its <title> element
func (e *Extractor) ExtractTitle(ctx context.Context, url string) (*service.PageTitle, error) {
	doc, err := e.document(ctx, url)
	if err != nil {
		return nil, err
	}

	title := Title(doc)
	return &service.PageTitle{Title: title, Found: title != ""}, nil
}

func (e *Extractor) document(ctx context.Context, url string) (*goquery.Document, error) {
	page, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	// Decode legacy charsets using the Content-Type header and <meta> hints.
	r, err := charset.NewReader(bytes.NewReader(page.Body), page.ContentType)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", service.ErrExtractionFailed, url, err)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", service.ErrExtractionFailed, url, err)
	}
	return doc, nil
}

// VisibleText returns the non-empty text nodes of doc, trimmed and joined by
// newlines. Script, style, noscript and template contents and comments are
// skipped.
func VisibleText(doc *goquery.Document) string {
	doc.Find(invisibleSelectors).Remove()

	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}

	return strings.Join(parts, "\n")
}

// Title returns the trimmed text of the first <title> element
func Title(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("title").First().Text())
}
