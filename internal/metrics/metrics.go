package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	measurementsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pdfchunker",
			Name:      "measurements_total",
			Help:      "Total page-set serializations performed by the planner",
		},
	)

	pagesAccepted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pdfchunker",
			Name:      "pages_accepted_total",
			Help:      "Total pages committed to chunks",
		},
	)

	chunksPlanned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pdfchunker",
			Name:      "chunks_planned_total",
			Help:      "Total chunks finalized by the planner",
		},
	)

	chunksCompressed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdfchunker",
			Name:      "chunks_compressed_total",
			Help:      "Chunks compressed, by codec and result (success, failed)",
		},
		[]string{"codec", "result"},
	)

	compressionRatio = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pdfchunker",
			Name:      "compression_ratio_percent",
			Help:      "Per-chunk size reduction percentage",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		},
	)

	runReduction = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pdfchunker",
			Name:      "run_reduction_percent",
			Help:      "Aggregate size reduction of the last completed run",
		},
	)
)

// Init registers collectors.
func Init() {
	prometheus.MustRegister(measurementsTotal, pagesAccepted, chunksPlanned,
		chunksCompressed, compressionRatio, runReduction)
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

func IncMeasurement()  { measurementsTotal.Inc() }
func IncPageAccepted() { pagesAccepted.Inc() }
func IncChunkPlanned() { chunksPlanned.Inc() }

func ChunkCompressed(codec, result string) { chunksCompressed.WithLabelValues(codec, result).Inc() }
func ObserveRatio(percent float64)         { compressionRatio.Observe(percent) }
func SetRunReduction(percent float64)      { runReduction.Set(percent) }
