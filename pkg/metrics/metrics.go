package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderingMetrics records counters for the conversational ordering core.
type OrderingMetrics struct {
	searches      *prometheus.CounterVec
	cartMutations *prometheus.CounterVec
	submissions   *prometheus.CounterVec
	menuLoad      *prometheus.HistogramVec
	requests      *prometheus.HistogramVec
}

// NewOrderingMetrics registers the ordering metrics on the provided registerer.
func NewOrderingMetrics(reg prometheus.Registerer) *OrderingMetrics {
	if reg == nil {
		return &OrderingMetrics{}
	}
	searches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "menu_search_total",
		Help: "Menu fuzzy searches, labelled by whether anything matched.",
	}, []string{"outcome"})
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutation operations by kind.",
	}, []string{"op"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_submissions_total",
		Help: "Finalized order submissions by remote outcome.",
	}, []string{"outcome"})
	menuLoad := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "menu_load_duration_seconds",
		Help:    "Duration of catalog loads in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
	requests := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds by method and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})
	reg.MustRegister(searches, cartMutations, submissions, menuLoad, requests)
	return &OrderingMetrics{
		searches:      searches,
		cartMutations: cartMutations,
		submissions:   submissions,
		menuLoad:      menuLoad,
		requests:      requests,
	}
}

// IncSearch counts a search and whether it produced matches.
func (m *OrderingMetrics) IncSearch(matched bool) {
	if m == nil || m.searches == nil {
		return
	}
	outcome := "miss"
	if matched {
		outcome = "hit"
	}
	m.searches.WithLabelValues(outcome).Inc()
}

// IncCartMutation counts a cart mutation by operation name.
func (m *OrderingMetrics) IncCartMutation(op string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncSubmission counts a finalized order by remote submission outcome.
func (m *OrderingMetrics) IncSubmission(submitted bool) {
	if m == nil || m.submissions == nil {
		return
	}
	outcome := "failed"
	if submitted {
		outcome = "submitted"
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

// ObserveMenuLoad records how long a catalog load took and where it came from.
func (m *OrderingMetrics) ObserveMenuLoad(source string, duration time.Duration) {
	if m == nil || m.menuLoad == nil {
		return
	}
	m.menuLoad.WithLabelValues(normalizeLabel(source)).Observe(duration.Seconds())
}

// ObserveRequest records an HTTP request's duration by method and status code.
func (m *OrderingMetrics) ObserveRequest(method string, status int, duration time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues(method, strconv.Itoa(status)).Observe(duration.Seconds())
}

func normalizeLabel(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}
