// Package metrics exports store codec statistics to Prometheus.
//
// A Collector is shared by any number of store sessions. Each session adds its
// statistics when it is closed:
//
//	c := metrics.NewCollector("sim")
//	if err := c.Register(prometheus.DefaultRegisterer); err != nil {
//	    return err
//	}
//	w, err := store.Create(path, store.WithMetrics(c))
//
// The miss counter is the layout drift signal: it grows when readers request
// fields in a different order than they were written.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/bstruct/errs"
)

const subsystem = "bstruct"

// Session modes used as the "mode" label.
const (
	ModeRead   = "read"
	ModeWrite  = "write"
	ModeAppend = "append"
)

// SessionStats are the statistics of one closed store session.
type SessionStats struct {
	Mode         string
	Misses       int64
	Unread       int64
	BytesRead    int64
	BytesWritten int64
	Names        int
}

// Collector holds the Prometheus metrics of the store codec. A nil *Collector
// is valid and records nothing.
type Collector struct {
	Sessions      *prometheus.CounterVec
	Misses        prometheus.Counter
	UnreadFields  prometheus.Counter
	BytesRead     prometheus.Counter
	BytesWritten  prometheus.Counter
	NameTableSize prometheus.Histogram
	Errors        *prometheus.CounterVec
}

// NewCollector creates the codec metrics under the given namespace.
func NewCollector(namespace string) *Collector {
	return &Collector{
		Sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_total",
			Help:      "Closed store sessions by mode",
		}, []string{"mode"}),
		Misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "field_misses_total",
			Help:      "Fields scanned past while resolving an out-of-order request",
		}),
		UnreadFields: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "unread_fields_total",
			Help:      "Fields present in a struct but never requested before its end",
		}),
		BytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "read_bytes_total",
			Help:      "Bytes consumed by read sessions",
		}),
		BytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "written_bytes_total",
			Help:      "Bytes appended by write sessions",
		}),
		NameTableSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "name_table_entries",
			Help:      "Number of interned names per closed session",
			Buckets:   prometheus.ExponentialBuckets(8, 4, 6),
		}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "errors_total",
			Help:      "Errors returned by store operations by category",
		}, []string{"category"}),
	}
}

// Register registers all metrics with reg.
func (c *Collector) Register(reg prometheus.Registerer) error {
	for _, m := range []prometheus.Collector{
		c.Sessions, c.Misses, c.UnreadFields, c.BytesRead, c.BytesWritten, c.NameTableSize, c.Errors,
	} {
		if err := reg.Register(m); err != nil {
			return err
		}
	}

	return nil
}

// ObserveSession adds the statistics of a closed session.
func (c *Collector) ObserveSession(s SessionStats) {
	if c == nil {
		return
	}

	c.Sessions.WithLabelValues(s.Mode).Inc()
	c.Misses.Add(float64(s.Misses))
	c.UnreadFields.Add(float64(s.Unread))
	c.BytesRead.Add(float64(s.BytesRead))
	c.BytesWritten.Add(float64(s.BytesWritten))
	c.NameTableSize.Observe(float64(s.Names))
}

// ObserveError counts err under its category label.
func (c *Collector) ObserveError(err error) {
	if c == nil || err == nil {
		return
	}

	c.Errors.WithLabelValues(Category(err)).Inc()
}

// Category returns the error category label of err: "io", "format", "schema",
// "resource" or "other".
func Category(err error) string {
	switch {
	case errors.Is(err, errs.ErrIO):
		return "io"
	case errors.Is(err, errs.ErrFormat):
		return "format"
	case errors.Is(err, errs.ErrSchema):
		return "schema"
	case errors.Is(err, errs.ErrResource):
		return "resource"
	default:
		return "other"
	}
}
