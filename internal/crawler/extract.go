package crawler

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"robovac/internal/model"
	"robovac/internal/observability"
)

// Extractor turns one product page into a raw record. It never returns an
// error: a page that cannot be fetched or parsed yields a record flagged
// failed, and each block (name, price, rating, spec tables) is extracted
// independently so one missing block only makes the record partial.
type Extractor struct {
	fetcher *Fetcher
}

func NewExtractor(f *Fetcher) *Extractor {
	return &Extractor{fetcher: f}
}

func (e *Extractor) Extract(ctx context.Context, productURL string) model.RawProduct {
	rec := model.RawProduct{
		SourceID:   SourceID(productURL),
		SourceURL:  productURL,
		Attributes: make(map[string]string),
		Status:     model.FetchOK,
	}

	body, err := e.fetcher.Fetch(ctx, productURL)
	if err != nil {
		slog.Warn("extract: fetch failed", "url", productURL, "err", err)
		rec.Status = model.FetchFailed
		observability.ProductsExtracted.WithLabelValues(string(rec.Status)).Inc()
		return rec
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		slog.Warn("extract: parse failed", "url", productURL, "err", err)
		rec.Status = model.FetchFailed
		observability.ProductsExtracted.WithLabelValues(string(rec.Status)).Inc()
		return rec
	}

	partial := false

	rec.Name = cleanText(doc.Find("h1").First().Text())
	if rec.Name == "" {
		partial = true
	}

	rec.PriceRaw = extractPrice(doc)
	if rec.PriceRaw == "" {
		partial = true
	}

	rec.Rating, rec.RatingCount = extractRating(doc)
	if rec.Rating == nil {
		partial = true
	}

	extractSpecTables(doc, rec.Attributes)
	if len(rec.Attributes) == 0 {
		partial = true
	}

	if partial {
		rec.Status = model.FetchPartial
	}
	observability.ProductsExtracted.WithLabelValues(string(rec.Status)).Inc()
	return rec
}

// SourceID derives a stable identifier from a product URL: the trailing
// numeric token of the slug when present, otherwise the slug itself.
func SourceID(productURL string) string {
	u, err := url.Parse(productURL)
	if err != nil {
		return productURL
	}
	slug := path.Base(u.Path)
	if i := strings.LastIndex(slug, "-"); i >= 0 && i+1 < len(slug) {
		if tail := slug[i+1:]; isDigits(tail) {
			return tail
		}
	}
	return slug
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// priceSelectors mirror the page variants observed on the catalog: the
// regular buy button, the returned-item layout, and a generic price class.
var priceSelectors = []string{"strong button", "span strong", ".price"}

func extractPrice(doc *goquery.Document) string {
	for _, sel := range priceSelectors {
		txt := cleanText(doc.Find(sel).First().Text())
		if txt != "" && strings.ContainsAny(txt, "0123456789") {
			return txt
		}
	}
	return ""
}

// extractRating reads the rating block: the rating from the first
// aria-label whose leading token parses as a score out of five, the count
// from the first plain-integer span in the same anchor region. Absence of
// either is not an error.
func extractRating(doc *goquery.Document) (*float64, *int) {
	var rating *float64
	var count *int

	doc.Find("a span[aria-label]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		label, _ := s.Attr("aria-label")
		fields := strings.Fields(label)
		if len(fields) == 0 {
			return true
		}
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil || v < 0 || v > 5 {
			return true
		}
		rating = &v
		return false
	})
	if rating == nil {
		return nil, nil
	}

	doc.Find("a span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		n, err := strconv.Atoi(strings.TrimSpace(s.Text()))
		if err != nil {
			return true
		}
		count = &n
		return false
	})
	return rating, count
}

// extractSpecTables walks every caption-labeled table of two-cell rows and
// records label/value pairs under the page-literal "caption  label" key.
// Labels are deliberately not normalized here; interpretation is the
// cleaning engine's job.
func extractSpecTables(doc *goquery.Document, attrs map[string]string) {
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		caption := cleanText(table.Find("caption").First().Text())
		if caption == "" {
			return
		}
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() != 2 {
				return
			}
			key := cleanText(cells.Eq(0).Text())

			var value string
			if spans := cells.Eq(1).Find("span"); spans.Length() > 0 {
				var parts []string
				spans.Each(func(_ int, sp *goquery.Selection) {
					if txt := cleanText(sp.Text()); txt != "" {
						parts = append(parts, txt)
					}
				})
				value = strings.Join(parts, ", ")
			} else {
				value = cleanText(cells.Eq(1).Text())
			}

			if key == "" || value == "" {
				return
			}
			attrs[caption+"  "+key] = value
		})
	})
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.Join(strings.Fields(s), " ")
}
