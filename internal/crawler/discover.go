package crawler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type DiscoverConfig struct {
	// ProductPathPrefix identifies product links on a listing page,
	// e.g. "/en/s2/product/".
	ProductPathPrefix string
	PageSize          int
	// MaxPages bounds pagination against a catalog that never runs dry.
	MaxPages int
}

// Discoverer paginates a catalog listing and collects canonical product
// URLs in catalog order.
type Discoverer struct {
	fetcher *Fetcher
	cfg     DiscoverConfig
}

func NewDiscoverer(f *Fetcher, cfg DiscoverConfig) *Discoverer {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 20
	}
	return &Discoverer{fetcher: f, cfg: cfg}
}

// Discover walks catalog pages until one contributes zero new product URLs
// or the page cap is reached. URLs are deduplicated preserving first-seen
// order. A failed catalog fetch is terminal: there is no way to know what
// the missing page would have listed.
func (d *Discoverer) Discover(ctx context.Context, catalogURL string) ([]string, error) {
	base, err := url.Parse(catalogURL)
	if err != nil {
		return nil, fmt.Errorf("catalog url: %w", err)
	}

	seen := make(map[string]bool)
	var found []string

	for page := 1; page <= d.cfg.MaxPages; page++ {
		body, err := d.fetcher.Fetch(ctx, d.pageURL(base, page))
		if err != nil {
			return nil, fmt.Errorf("catalog page %d: %w", page, err)
		}

		links, err := d.extractLinks(base, body)
		if err != nil {
			return nil, fmt.Errorf("catalog page %d: %w", page, err)
		}

		added := 0
		for _, u := range links {
			if !seen[u] {
				seen[u] = true
				found = append(found, u)
				added++
			}
		}
		slog.Info("discover: page done", "page", page, "links", len(links), "new", added)

		if added == 0 {
			break
		}
	}

	slog.Info("discover: finished", "products", len(found))
	return found, nil
}

func (d *Discoverer) pageURL(base *url.URL, page int) string {
	u := *base
	q := u.Query()
	if d.cfg.PageSize > 0 {
		q.Set("take", strconv.Itoa(d.cfg.PageSize))
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// extractLinks pulls product anchors out of listing markup and canonicalizes
// them: resolved against the catalog host, query and fragment stripped so
// tracking parameters never produce duplicate identities.
func (d *Discoverer) extractLinks(base *url.URL, body []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		if !strings.HasPrefix(resolved.Path, d.cfg.ProductPathPrefix) {
			return
		}
		resolved.RawQuery = ""
		resolved.Fragment = ""
		links = append(links, resolved.String())
	})
	return links, nil
}
