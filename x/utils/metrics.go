package utils

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/errors"
)

// Metrics is a decorator counting processed transactions and their
// duration, labeled by the message path and the result code.
type Metrics struct {
	txs      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ lockdrop.Decorator = (*Metrics)(nil)

// NewMetrics creates a Metrics decorator and registers its collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		txs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lockdrop",
			Name:      "transactions_total",
			Help:      "Number of processed transactions.",
		}, []string{"mode", "path", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lockdrop",
			Name:      "transaction_duration_seconds",
			Help:      "Duration of transaction processing in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"mode", "path"}),
	}
	for _, c := range []prometheus.Collector{m.txs, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(errors.ErrInvalidState, err.Error())
		}
	}
	return m, nil
}

// Check observes the check of a transaction.
func (m *Metrics) Check(ctx lockdrop.Context, store lockdrop.KVStore, tx lockdrop.Tx, next lockdrop.Checker) (*lockdrop.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	m.observe("check", tx, start, err)
	return res, err
}

// Deliver observes the delivery of a transaction.
func (m *Metrics) Deliver(ctx lockdrop.Context, store lockdrop.KVStore, tx lockdrop.Tx, next lockdrop.Deliverer) (*lockdrop.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	m.observe("deliver", tx, start, err)
	return res, err
}

func (m *Metrics) observe(mode string, tx lockdrop.Tx, start time.Time, err error) {
	path := lockdrop.GetPath(tx)
	code, _ := errors.ABCIInfo(err, false)
	m.txs.WithLabelValues(mode, path, strconv.FormatUint(uint64(code), 10)).Inc()
	m.duration.WithLabelValues(mode, path).Observe(time.Since(start).Seconds())
}
