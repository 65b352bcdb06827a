package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	SessionsStarted   prometheus.Counter
	ProfilesCompleted prometheus.Counter
	StageTransitions  *prometheus.CounterVec
	GenerationErrors  *prometheus.CounterVec
	GenerationLatency prometheus.Histogram
	VacanciesImported prometheus.Counter
	ImagesGenerated   prometheus.Counter
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Dialogue sessions created.",
		}),
		ProfilesCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profiles_completed_total",
			Help:      "Career profiles synthesized to completion.",
		}),
		StageTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_transitions_total",
			Help:      "Dialogue stage transitions by source and destination stage.",
		}, []string{"from", "to"}),
		GenerationErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_errors_total",
			Help:      "Text-generation failures by provider and kind.",
		}, []string{"provider", "kind"}),
		GenerationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_latency_ms",
			Help:      "Latency of text-generation calls in milliseconds.",
			Buckets:   []float64{250, 500, 1000, 2000, 5000, 10000, 30000, 60000},
		}),
		VacanciesImported: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vacancies_imported_total",
			Help:      "Vacancy records imported into the store.",
		}),
		ImagesGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_generated_total",
			Help:      "Images produced by the image-generation backend.",
		}),
	}
}

func (m *Metrics) ObserveGenerationLatency(d time.Duration) {
	m.GenerationLatency.Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
