package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PagesFetched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_pages_fetched_total",
			Help: "Pages fetched over the network (cache hits excluded)",
		},
	)
	FetchRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_fetch_retries_total",
			Help: "Retry attempts after transient fetch failures",
		},
	)
	FetchFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_fetch_failures_total",
			Help: "Fetches that failed terminally",
		},
	)
	ProductsExtracted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_products_extracted_total",
			Help: "Product records produced, by fetch status",
		},
		[]string{"status"},
	)
	CorrectionsApplied = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cleaning_corrections_total",
			Help: "Values corrected by the decimal-shift rule",
		},
	)
	RangeRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cleaning_rejections_total",
			Help: "Values rejected by range validation",
		},
	)
)

func Start(port string) {
	prometheus.MustRegister(
		PagesFetched,
		FetchRetries,
		FetchFailures,
		ProductsExtracted,
		CorrectionsApplied,
		RangeRejections,
	)
	http.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(":"+port, nil)
}
