// Package metrics собирает счётчики приёма заявок для Prometheus.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ignatzorin/proposal-intake/internal/domain/repository"
)

type Metrics struct {
	Submissions   *prometheus.CounterVec
	ParseErrors   *prometheus.CounterVec
	Stored        prometheus.Counter
	Lookups       *prometheus.CounterVec
	StoreDuration *prometheus.HistogramVec
}

// New регистрирует метрики в reg. Для тестов удобно передавать prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "proposal_submissions_total",
			Help: "Принятые отправки формы по методу и кодировке тела.",
		}, []string{"method", "encoding"}),
		ParseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "proposal_parse_errors_total",
			Help: "Тела запросов, которые не удалось разобрать.",
		}, []string{"encoding"}),
		Stored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "proposal_stored_total",
			Help: "Документы, сохранённые в хранилище.",
		}),
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "proposal_lookups_total",
			Help: "Поиск документа по коду.",
		}, []string{"result"}),
		StoreDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "proposal_store_duration_seconds",
			Help:    "Длительность обращений к хранилищу.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
	}
	reg.MustRegister(m.Submissions, m.ParseErrors, m.Stored, m.Lookups, m.StoreDuration)
	return m
}

func (m *Metrics) ObserveSubmission(method, encoding string, parseFailed bool) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(method, encoding).Inc()
	if parseFailed {
		m.ParseErrors.WithLabelValues(encoding).Inc()
	}
}

func (m *Metrics) ObserveStored() {
	if m == nil {
		return
	}
	m.Stored.Inc()
}

func (m *Metrics) ObserveLookup(result string) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(result).Inc()
}

// InstrumentStore оборачивает хранилище замером длительности Put и List.
func InstrumentStore(store repository.ObjectStore, m *Metrics) repository.ObjectStore {
	if m == nil {
		return store
	}
	return &instrumentedStore{next: store, m: m}
}

type instrumentedStore struct {
	next repository.ObjectStore
	m    *Metrics
}

func (s *instrumentedStore) Put(ctx context.Context, key string, content []byte, opts repository.PutOptions) (string, error) {
	defer s.observe("put", time.Now())
	return s.next.Put(ctx, key, content, opts)
}

func (s *instrumentedStore) List(ctx context.Context, prefix string) ([]repository.Object, error) {
	defer s.observe("list", time.Now())
	return s.next.List(ctx, prefix)
}

func (s *instrumentedStore) observe(op string, start time.Time) {
	s.m.StoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
