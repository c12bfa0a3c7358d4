package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robovac/internal/model"
)

const productHTML = `<html><body>
<h1>RoboClean X1 Pro</h1>
<div><span><strong><button>CHF 1'299.–</button></strong></span></div>
<a href="#ratings"><span aria-label="4.6 of 5 stars"></span><span>231</span></a>
<table>
  <caption>Key specifications</caption>
  <tr><td>Robot type</td><td><span>Vacuum robot</span><span>Mopping robot</span></td></tr>
  <tr><td>Battery life</td><td>180 min</td></tr>
  <tr><td colspan="2">not a data row</td></tr>
</table>
<table>
  <caption>Battery properties</caption>
  <tr><td>Capacity</td><td>5,200&nbsp;mAh</td></tr>
</table>
<table>
  <tr><td>uncaptioned</td><td>ignored</td></tr>
</table>
</body></html>`

func serveProduct(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExtract_FullProductPage(t *testing.T) {
	srv := serveProduct(t, productHTML)
	e := NewExtractor(NewFetcher(FetcherConfig{}))

	rec := e.Extract(context.Background(), srv.URL+"/en/s2/product/roboclean-x1-pro-12345")

	assert.Equal(t, model.FetchOK, rec.Status)
	assert.Equal(t, "12345", rec.SourceID)
	assert.Equal(t, "RoboClean X1 Pro", rec.Name)
	assert.Equal(t, "CHF 1'299.–", rec.PriceRaw)
	require.NotNil(t, rec.Rating)
	assert.Equal(t, 4.6, *rec.Rating)
	require.NotNil(t, rec.RatingCount)
	assert.Equal(t, 231, *rec.RatingCount)

	assert.Equal(t, "Vacuum robot, Mopping robot", rec.Attributes["Key specifications  Robot type"])
	assert.Equal(t, "180 min", rec.Attributes["Key specifications  Battery life"])
	assert.Equal(t, "5,200 mAh", rec.Attributes["Battery properties  Capacity"])
	assert.NotContains(t, rec.Attributes, "uncaptioned")
}

func TestExtract_MissingBlocksYieldPartialRecord(t *testing.T) {
	// price and rating blocks absent, spec table present
	srv := serveProduct(t, `<html><body>
<h1>Mystery Bot</h1>
<table><caption>General information</caption>
<tr><td>Manufacturer</td><td>MysteryCorp</td></tr></table>
</body></html>`)
	e := NewExtractor(NewFetcher(FetcherConfig{}))

	rec := e.Extract(context.Background(), srv.URL+"/en/s2/product/mystery-bot-999")

	assert.Equal(t, model.FetchPartial, rec.Status)
	assert.Equal(t, "Mystery Bot", rec.Name)
	assert.Empty(t, rec.PriceRaw)
	assert.Nil(t, rec.Rating)
	assert.Equal(t, "MysteryCorp", rec.Attributes["General information  Manufacturer"])
}

func TestExtract_FetchFailureYieldsFailedRecordNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()
	e := NewExtractor(NewFetcher(FetcherConfig{}))

	rec := e.Extract(context.Background(), srv.URL+"/en/s2/product/gone-404")

	assert.Equal(t, model.FetchFailed, rec.Status)
	assert.Equal(t, "404", rec.SourceID)
	assert.NotNil(t, rec.Attributes)
}

func TestExtract_OneFailureDoesNotAbortTheBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "broken") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(productHTML))
	}))
	defer srv.Close()
	e := NewExtractor(NewFetcher(FetcherConfig{}))

	urls := []string{
		srv.URL + "/en/s2/product/robo-1",
		srv.URL + "/en/s2/product/robo-2",
		srv.URL + "/en/s2/product/broken-3",
		srv.URL + "/en/s2/product/robo-4",
		srv.URL + "/en/s2/product/robo-5",
	}

	var ok, failed int
	for _, u := range urls {
		rec := e.Extract(context.Background(), u)
		switch rec.Status {
		case model.FetchFailed:
			failed++
		default:
			ok++
		}
	}
	assert.Equal(t, 4, ok)
	assert.Equal(t, 1, failed)
}

func TestSourceID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://shop.example/en/s2/product/roboclean-x1-pro-12345", "12345"},
		{"https://shop.example/en/s2/product/slug-without-number", "slug-without-number"},
		{"https://shop.example/en/s2/product/43695849", "43695849"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SourceID(tt.url), tt.url)
	}
}
