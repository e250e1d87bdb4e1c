// Package amazon provides extraction routines for amazon.com pages.
package amazon

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/pageparse/crawler/internal/backend"
	"github.com/pageparse/crawler/internal/crawl"
)

// Provider holds the backend handle shared by every amazon session. The
// default factory attaches headless to a local browser server; replace
// Factory (or the whole Provider) to point elsewhere.
var Provider = crawl.NewProvider(func() backend.Handle {
	return backend.NewRemoteChromeHeadless("127.0.0.1", "9222", zap.L())
})

// BookRoutines returns the extraction routine set for an amazon book page.
func BookRoutines() []crawl.Routine {
	return crawl.Routines(parseTitle(), parseCoverURL())
}

// Book constructs a session registered with the book routine set and the
// shared amazon handle.
func Book(opts ...crawl.Option) *crawl.Session {
	base := []crawl.Option{
		crawl.WithProvider(Provider),
		crawl.WithRoutines(BookRoutines()...),
	}
	return crawl.New(append(base, opts...)...)
}

// VisitBook crawls a book page in one call: construct, load, parse, close.
func VisitBook(ctx context.Context, url string, opts ...crawl.Option) (*crawl.Session, bool) {
	s := Book(opts...)
	return s, s.Run(ctx, url)
}

func parseTitle() crawl.Routine {
	return crawl.Routine{
		Description: "parse book title",
		Run: func(ctx context.Context, h backend.Handle, data crawl.Record) error {
			el, err := h.Find(ctx, "span#productTitle")
			if errors.Is(err, backend.ErrNotFound) {
				data.SetMissing("title")
				return crawl.Failure("Title not found.")
			}
			if err != nil {
				return err
			}
			title, err := el.Text(ctx)
			if err != nil {
				return err
			}
			title = strings.TrimSpace(title)
			if title == "" {
				data.SetMissing("title")
				return crawl.Failure("Title not found.")
			}
			data.Set("title", title)
			return nil
		},
	}
}

func parseCoverURL() crawl.Routine {
	return crawl.Routine{
		Description: "parse book cover url",
		Run: func(ctx context.Context, h backend.Handle, data crawl.Record) error {
			el, err := h.Find(ctx, "img#imgBlkFront")
			if errors.Is(err, backend.ErrNotFound) {
				data.SetMissing("cover_url")
				return crawl.Failure("Cover url not found.")
			}
			if err != nil {
				return err
			}
			src, err := el.Attribute(ctx, "src")
			if err != nil {
				return err
			}
			if src == "" {
				data.SetMissing("cover_url")
				return crawl.Failure("Cover url not found.")
			}
			data.Set("cover_url", src)
			return nil
		},
	}
}
