package ingestwire

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	requests     prometheus.Counter
	rows         prometheus.Counter
	deduplicated prometheus.Counter
	errors       *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "novaingest_insert_requests_total",
			Help: "Insert frames received.",
		}),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "novaingest_rows_written_total",
			Help: "Rows written to the sink.",
		}),
		deduplicated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "novaingest_batches_deduplicated_total",
			Help: "Batches skipped because they were already written.",
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "novaingest_insert_errors_total",
			Help: "Rejected insert frames by error code.",
		}, []string{"code"}),
	}
	reg.MustRegister(m.requests, m.rows, m.deduplicated, m.errors)
	return m
}
