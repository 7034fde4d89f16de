package preview

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"chainmeet/backend/internal/meetup"
	"chainmeet/backend/internal/metrics"
)

// Preview is what the UI shows for an online meetup's link.
type Preview struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// Service builds link previews for online meetups. Preview failures are
// non-critical: callers degrade to a placeholder instead of surfacing them.
type Service struct {
	fetcher *fetcher
	logger  *slog.Logger
}

// New creates the preview service.
func New(timeout time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fetcher: newFetcher(timeout),
		logger:  logger,
	}
}

// For fetches and extracts a preview for an online record's URL.
func (s *Service) For(ctx context.Context, rec meetup.Record) (Preview, error) {
	if rec.LocationKind != meetup.KindOnline {
		return Preview{}, fmt.Errorf("meetup %d is not online", rec.ID)
	}
	pageURL := strings.TrimSpace(rec.Location)
	if pageURL == "" {
		return Preview{}, fmt.Errorf("meetup %d has no link", rec.ID)
	}

	body, err := s.fetcher.get(ctx, pageURL)
	if err != nil {
		metrics.PreviewFetches.WithLabelValues("error").Inc()
		s.logger.Warn("preview_fetch_failed", "meetup_id", rec.ID, "error", err)
		return Preview{}, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		metrics.PreviewFetches.WithLabelValues("error").Inc()
		return Preview{}, err
	}

	metrics.PreviewFetches.WithLabelValues("ok").Inc()
	return extract(doc, pageURL), nil
}

func extract(doc *goquery.Document, pageURL string) Preview {
	p := Preview{URL: pageURL}

	if v, ok := metaContent(doc, "og:title"); ok {
		p.Title = v
	} else {
		p.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if v, ok := metaContent(doc, "og:description"); ok {
		p.Description = v
	} else if v, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		p.Description = strings.TrimSpace(v)
	}
	if v, ok := metaContent(doc, "og:image"); ok {
		p.ImageURL = v
	}
	return p
}

func metaContent(doc *goquery.Document, property string) (string, bool) {
	sel := doc.Find(fmt.Sprintf(`meta[property=%q]`, property))
	content, ok := sel.Attr("content")
	content = strings.TrimSpace(content)
	if !ok || content == "" {
		return "", false
	}
	return content, true
}
