package extractor

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"corruption-watch/internal/pipeline/apperr"
	"corruption-watch/internal/pipeline/model"
)

// CSSStrategy reads title, body, author, and published date purely
// from CSS selectors, with a legacy selector as fallback for each
// field — the strategy spec §4.2 calls "CSS strategy".
type CSSStrategy struct {
	TitleSelectors  []string
	BodySelectors   []string
	AuthorSelectors []string
}

// DefaultCSSStrategy mirrors spec §4.2's primary-source selector list:
// h1.article--title (or legacy h1.title), div.article--body (or
// legacy div.article-content), div.article--authors / a.author-term.
func DefaultCSSStrategy() CSSStrategy {
	return CSSStrategy{
		TitleSelectors:  []string{"h1.article--title", "h1.title"},
		BodySelectors:   []string{"div.article--body p", "div.article-content p"},
		AuthorSelectors: []string{"div.article--authors", "a.author-term"},
	}
}

func (s CSSStrategy) Extract(html string, pageURL *url.URL) (model.ExtractedArticleContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return model.ExtractedArticleContent{}, fmt.Errorf("%w: %v", apperr.ErrParseError, err)
	}

	title := firstNonEmptyText(doc, s.TitleSelectors)
	author := cleanAuthor("Person", firstNonEmptyText(doc, s.AuthorSelectors))

	var body string
	for _, sel := range s.BodySelectors {
		body = extractBodyText(doc, sel)
		if body != "" {
			break
		}
	}

	content := model.ExtractedArticleContent{
		Title:    title,
		FullText: body,
		Author:   author,
	}

	if published, ok := s.parsePublishedDate(doc); ok {
		content.PublishedDate = &published
	}

	return content, nil
}

func (s CSSStrategy) parsePublishedDate(doc *goquery.Document) (time.Time, bool) {
	if meta, ok := doc.Find(`meta[property="article:published_time"]`).Attr("content"); ok {
		if t, err := time.Parse(time.RFC3339, meta); err == nil {
			return t.UTC(), true
		}
	}
	if dt, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		if t, err := time.Parse(time.RFC3339, dt); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func firstNonEmptyText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		text := strings.TrimSpace(doc.Find(sel).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}
