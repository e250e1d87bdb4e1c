package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// Static is a browserless Handle: pages are fetched with a Colly collector
// and queried through goquery's selector engine. It never executes scripts,
// so it stands in for the script-disabled profiles and backs tests that
// cannot assume a running browser.
type Static struct {
	logger    *zap.Logger
	collector *colly.Collector
	timeout   time.Duration
	doc       *goquery.Document
}

// StaticConfig controls the static backend collector.
type StaticConfig struct {
	UserAgent string
	Timeout   time.Duration
}

// NewStatic builds a static-HTML handle.
func NewStatic(cfg StaticConfig, logger *zap.Logger) *Static {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	c := colly.NewCollector(colly.Async(false))
	c.SetRequestTimeout(cfg.Timeout)
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	return &Static{
		logger:    logger,
		collector: c,
		timeout:   cfg.Timeout,
	}
}

// Navigate fetches url and keeps the parsed document as the current page.
func (s *Static) Navigate(ctx context.Context, url string) error {
	var (
		body     []byte
		fetchErr error
	)
	collector := s.collector.Clone()
	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	if err := collector.Visit(url); err != nil {
		return &Error{Op: "navigate", Err: err}
	}
	collector.Wait()
	if fetchErr != nil {
		return &Error{Op: "navigate", Err: fetchErr}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return &Error{Op: "navigate", Err: fmt.Errorf("parse document: %w", err)}
	}
	s.doc = doc
	return nil
}

// Find locates the first node matching the CSS selector on the current page.
func (s *Static) Find(ctx context.Context, selector string) (Element, error) {
	if s.doc == nil {
		return nil, &Error{Op: "find", Err: errors.New("no open page")}
	}
	sel := s.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, &Error{Op: "find", Err: fmt.Errorf("%w for %q", ErrNotFound, selector)}
	}
	return &staticElement{sel: sel}, nil
}

// Close drops the current document. As with the browser handle, the second
// close in a row reports a backend error.
func (s *Static) Close(ctx context.Context) error {
	if s.doc == nil {
		return &Error{Op: "close", Err: errors.New("no open page")}
	}
	s.doc = nil
	return nil
}

type staticElement struct {
	sel *goquery.Selection
}

func (e *staticElement) Text(ctx context.Context) (string, error) {
	return e.sel.Text(), nil
}

func (e *staticElement) Attribute(ctx context.Context, name string) (string, error) {
	value, ok := e.sel.Attr(name)
	if !ok {
		return "", nil
	}
	return value, nil
}
