package discoverer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"corruption-watch/internal/pipeline/apperr"
	"corruption-watch/internal/pipeline/model"
	"corruption-watch/internal/resilience/retry"
)

// errRedirectedToBase marks a date whose archive URL redirected back
// to the publication's base page: the date has no archive, not a
// fetch failure.
var errRedirectedToBase = errors.New("archive date redirected to base page")

var dateInURLPattern = regexp.MustCompile(`/(\d{4}-\d{2}-\d{2})/`)

// ArchiveConfig parameterizes an ArchiveDiscoverer by publication and
// network behavior, independent of the date range being walked.
type ArchiveConfig struct {
	// BaseURL is the archive's root, e.g. "https://archive.example.test".
	BaseURL string

	// Publication is the path segment identifying the specific
	// publication within the archive, e.g. "daily-gazette".
	Publication string

	// CrawlDelay is the minimum spacing between successive page
	// fetches while following pagination links. Default 2s if zero.
	CrawlDelay time.Duration

	// MaxRetries bounds retry attempts for a transient page fetch
	// failure. Default 3 if zero.
	MaxRetries int

	// Client is the HTTP client used for archive requests. A default
	// client with a 30s timeout is used if nil.
	Client *http.Client
}

func (c ArchiveConfig) withDefaults() ArchiveConfig {
	if c.CrawlDelay <= 0 {
		c.CrawlDelay = 2 * time.Second
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 30 * time.Second}
	}
	return c
}

// ArchiveDiscoverer walks a publication's date-paginated archive,
// requesting one base page per date and following `rel="next"` links,
// per spec §4.3.
type ArchiveDiscoverer struct {
	cfg      ArchiveConfig
	endDate  time.Time
	daysBack int
	limiter  *rate.Limiter
	retryCfg retry.Config
}

// NewArchiveDiscoverer builds a discoverer over the inclusive date
// range [endDate-daysBack, endDate].
func NewArchiveDiscoverer(cfg ArchiveConfig, endDate time.Time, daysBack int) *ArchiveDiscoverer {
	cfg = cfg.withDefaults()
	retryCfg := retry.WebScraperConfig()
	retryCfg.MaxAttempts = cfg.MaxRetries
	return &ArchiveDiscoverer{
		cfg:      cfg,
		endDate:  endDate.UTC(),
		daysBack: daysBack,
		limiter:  rate.NewLimiter(rate.Every(cfg.CrawlDelay), 1),
		retryCfg: retryCfg,
	}
}

// ForMonth builds a discoverer covering the full calendar span of
// year/month (inclusive).
func ForMonth(cfg ArchiveConfig, year, month int) (*ArchiveDiscoverer, error) {
	if err := validateYearMonth(year, month); err != nil {
		return nil, err
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	daysBack := int(end.Sub(start).Hours() / 24)
	return NewArchiveDiscoverer(cfg, end, daysBack), nil
}

// ForDate builds a discoverer for a single calendar date.
func ForDate(cfg ArchiveConfig, year, month, day int) (*ArchiveDiscoverer, error) {
	if err := validateYearMonth(year, month); err != nil {
		return nil, err
	}
	if day < 1 || day > 31 {
		return nil, fmt.Errorf("%w: day must be between 1 and 31, got %d", apperr.ErrInvalidInput, day)
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Day() != day {
		return nil, fmt.Errorf("%w: %04d-%02d-%02d is not a valid calendar date", apperr.ErrInvalidInput, year, month, day)
	}
	return NewArchiveDiscoverer(cfg, date, 0), nil
}

func validateYearMonth(year, month int) error {
	if year < 1900 || year > 3000 {
		return fmt.Errorf("%w: year must be between 1900 and 3000, got %d", apperr.ErrInvalidInput, year)
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month must be between 1 and 12, got %d", apperr.ErrInvalidInput, month)
	}
	return nil
}

// Discover walks every date in the configured range, fail-soft per
// date, and returns the URL-deduplicated combined result.
func (d *ArchiveDiscoverer) Discover(ctx context.Context, newsSourceID int64) ([]model.DiscoveredArticle, error) {
	if newsSourceID <= 0 {
		return nil, fmt.Errorf("%w: news_source_id must be positive, got %d", apperr.ErrInvalidInput, newsSourceID)
	}

	dates := d.dateRange()
	var all []model.DiscoveredArticle
	for _, date := range dates {
		articles, err := d.discoverDate(ctx, date, newsSourceID)
		if err != nil {
			slog.Warn("archive discovery skipped date after failure",
				slog.Time("date", date), slog.Any("error", err))
			continue
		}
		all = append(all, articles...)
	}

	deduped := dedupeByURL(all)
	slog.Info("archive discovery complete",
		slog.Int("dates", len(dates)), slog.Int("discovered", len(all)), slog.Int("unique", len(deduped)))
	return deduped, nil
}

func (d *ArchiveDiscoverer) dateRange() []time.Time {
	start := d.endDate.AddDate(0, 0, -d.daysBack)
	numDays := int(d.endDate.Sub(start).Hours()/24) + 1
	dates := make([]time.Time, 0, numDays)
	for i := 0; i < numDays; i++ {
		dates = append(dates, start.AddDate(0, 0, i))
	}
	return dates
}

// discoverDate fetches the base page for date (falling back to
// page-1 on a plain 404) and then follows `rel="next"` links,
// pacing successive fetches with the crawl-delay limiter.
func (d *ArchiveDiscoverer) discoverDate(ctx context.Context, date time.Time, newsSourceID int64) ([]model.DiscoveredArticle, error) {
	baseURL := d.dateURL(date, 0)

	html, currentURL, err := d.fetchWithRetry(ctx, baseURL)
	if errors.Is(err, errRedirectedToBase) {
		slog.Info("archive date does not exist, skipping", slog.Time("date", date))
		return nil, nil
	}
	var statusErr *apperr.HTTPStatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		page1URL := d.dateURL(date, 1)
		html, currentURL, err = d.fetchWithRetry(ctx, page1URL)
	}
	if err != nil {
		return nil, err
	}

	var articles []model.DiscoveredArticle
	for {
		articles = append(articles, d.articleFromPage(currentURL, html, newsSourceID))

		nextURL := parseNextPageURL(html)
		if nextURL == "" {
			break
		}
		if err := d.limiter.Wait(ctx); err != nil {
			return articles, err
		}
		html, currentURL, err = d.fetchWithRetry(ctx, nextURL)
		if err != nil {
			return articles, err
		}
	}
	return articles, nil
}

// fetchWithRetry fetches url with the configured retry policy. It
// returns the response body and the final URL after any redirects
// Go's client followed automatically.
func (d *ArchiveDiscoverer) fetchWithRetry(ctx context.Context, url string) (string, string, error) {
	var html, finalURL string
	err := retry.WithBackoff(ctx, d.retryCfg, func() error {
		body, final, err := d.doFetch(ctx, url)
		if err != nil {
			return err
		}
		html, finalURL = body, final
		return nil
	})
	if err != nil && errors.Is(err, apperr.ErrFetchTransient) {
		err = fmt.Errorf("%w: retries exhausted fetching %s: %w", apperr.ErrFetchTerminal, url, err)
	}
	return html, finalURL, err
}

func (d *ArchiveDiscoverer) doFetch(ctx context.Context, url string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", "CorruptionWatchBot/1.0")

	resp, err := d.cfg.Client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", apperr.ErrFetchTransient, &retry.HTTPError{StatusCode: 0, Message: err.Error()})
	}
	defer func() { _ = resp.Body.Close() }()

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	if finalURL != url && d.isBasePage(finalURL) {
		return "", "", errRedirectedToBase
	}

	if resp.StatusCode == http.StatusNotFound {
		return "", "", fmt.Errorf("%w", &apperr.HTTPStatusError{StatusCode: resp.StatusCode, URL: url})
	}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return "", "", fmt.Errorf("%w", &apperr.HTTPStatusError{StatusCode: resp.StatusCode, URL: url})
	}
	if resp.StatusCode >= 500 {
		return "", "", fmt.Errorf("%w: %w", apperr.ErrFetchTransient, &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(body), finalURL, nil
}

func (d *ArchiveDiscoverer) isBasePage(url string) bool {
	base := strings.TrimSuffix(d.cfg.BaseURL, "/") + "/" + d.cfg.Publication + "/"
	return url == base || url == strings.TrimSuffix(base, "/")
}

func (d *ArchiveDiscoverer) dateURL(date time.Time, page int) string {
	dateStr := date.Format("2006-01-02")
	base := strings.TrimSuffix(d.cfg.BaseURL, "/")
	if page <= 0 {
		return fmt.Sprintf("%s/%s/%s/", base, d.cfg.Publication, dateStr)
	}
	return fmt.Sprintf("%s/%s/%s/page-%d/", base, d.cfg.Publication, dateStr, page)
}

func (d *ArchiveDiscoverer) articleFromPage(pageURL, html string, newsSourceID int64) model.DiscoveredArticle {
	article := model.DiscoveredArticle{
		URL:          pageURL,
		NewsSourceID: newsSourceID,
		Section:      "archive",
		DiscoveredAt: time.Now().UTC(),
		Title:        extractPageTitle(html),
	}
	if published, ok := parseDateFromURL(pageURL); ok {
		article.PublishedDate = &published
	}
	return article
}

func parseNextPageURL(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	href, ok := doc.Find(`link[rel="next"]`).Attr("href")
	if !ok {
		return ""
	}
	return strings.TrimSpace(href)
}

func extractPageTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	if content, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if title := strings.TrimSpace(content); title != "" {
			return title
		}
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func parseDateFromURL(url string) (time.Time, bool) {
	match := dateInURLPattern.FindStringSubmatch(url)
	if match == nil {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", match[1])
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
