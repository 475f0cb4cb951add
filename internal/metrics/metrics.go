package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	ordersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "flowershop",
			Name:      "orders_created_total",
			Help:      "Count of placed bouquet orders.",
		},
	)

	consultationRequests = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "flowershop",
			Name:      "consultation_requests_total",
			Help:      "Count of consultation callback requests.",
		},
	)

	customOccasions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "flowershop",
			Name:      "custom_occasions_total",
			Help:      "Count of free-text occasions submitted by users.",
		},
	)

	emptyCatalogResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowershop",
			Name:      "catalog_empty_results_total",
			Help:      "Count of catalog queries that matched nothing, by query kind.",
		},
		[]string{"query"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(ordersCreated, consultationRequests, customOccasions, emptyCatalogResults)
	})
}

func IncOrderCreated() {
	ordersCreated.Inc()
}

func IncConsultationRequest() {
	consultationRequests.Inc()
}

func IncCustomOccasion() {
	customOccasions.Inc()
}

func IncEmptyCatalogResult(query string) {
	emptyCatalogResults.WithLabelValues(query).Inc()
}
