package extractor

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"corruption-watch/internal/pipeline/apperr"
	"corruption-watch/internal/pipeline/model"
)

// trailingRoleSuffix strips a trailing "/ staff reporter"-style
// attribution from an author byline.
var trailingRoleSuffix = regexp.MustCompile(`(?i)\s*/\s*staff\s+reporter\s*$`)

// jsonLDArticle is the subset of schema.org Article fields the
// structured-data strategy reads.
type jsonLDArticle struct {
	Type          string `json:"@type"`
	Headline      string `json:"headline"`
	DatePublished string `json:"datePublished"`
	Author        struct {
		Type string `json:"@type"`
		Name string `json:"name"`
	} `json:"author"`
}

// StructuredDataStrategy parses JSON-LD <script> blocks for
// Article-typed metadata and pairs it with CSS-extracted body text.
type StructuredDataStrategy struct {
	// BodySelector selects the elements whose text makes up the
	// article body (e.g. "div.article--body p").
	BodySelector string
}

func (s StructuredDataStrategy) Extract(html string, pageURL *url.URL) (model.ExtractedArticleContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return model.ExtractedArticleContent{}, fmt.Errorf("%w: %v", apperr.ErrParseError, err)
	}

	var article *jsonLDArticle
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var candidate jsonLDArticle
		if err := json.Unmarshal([]byte(sel.Text()), &candidate); err != nil {
			var list []jsonLDArticle
			if err := json.Unmarshal([]byte(sel.Text()), &list); err == nil {
				for i := range list {
					if strings.EqualFold(list[i].Type, "Article") {
						article = &list[i]
						return false
					}
				}
			}
			return true
		}
		if strings.EqualFold(candidate.Type, "Article") {
			article = &candidate
			return false
		}
		return true
	})

	if article == nil {
		return model.ExtractedArticleContent{}, fmt.Errorf("%w: no Article JSON-LD block found", apperr.ErrParseError)
	}

	body := extractBodyText(doc, s.BodySelector)

	content := model.ExtractedArticleContent{
		Title:    strings.TrimSpace(article.Headline),
		FullText: body,
		Author:   cleanAuthor(article.Author.Type, article.Author.Name),
	}
	if article.DatePublished != "" {
		if t, err := time.Parse(time.RFC3339, article.DatePublished); err == nil {
			utc := t.UTC()
			content.PublishedDate = &utc
		}
	}

	return content, nil
}

func cleanAuthor(authorType, name string) string {
	if !strings.EqualFold(authorType, "Person") {
		return ""
	}
	return strings.TrimSpace(trailingRoleSuffix.ReplaceAllString(name, ""))
}

func extractBodyText(doc *goquery.Document, selector string) string {
	var parts []string
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n\n")
}
