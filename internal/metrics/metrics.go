// Package metrics exposes Prometheus collectors for batch extraction runs.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	DocumentsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sheetscan",
			Name:      "documents_processed_total",
			Help:      "Documents processed, by extraction path and outcome",
		},
		[]string{"path", "status"}, // path: digital/scanned, status: parsed/failed
	)

	ElementsExtractedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sheetscan",
			Name:      "elements_extracted_total",
			Help:      "Extracted elements, by extraction path",
		},
		[]string{"path"},
	)

	EmptyDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sheetscan",
			Name:      "empty_documents_total",
			Help:      "Documents that parsed but yielded zero elements, the data-quality triage signal",
		},
		[]string{"path"},
	)

	OCRDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sheetscan",
			Name:      "ocr_request_duration_seconds",
			Help:      "OCR collaborator call duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)
)

var registered bool

// Register registers all collectors. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(DocumentsProcessedTotal)
	prometheus.MustRegister(ElementsExtractedTotal)
	prometheus.MustRegister(EmptyDocumentsTotal)
	prometheus.MustRegister(OCRDuration)
	registered = true
}
