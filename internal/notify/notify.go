// Package notify formats engagement alerts and fans them out to the
// configured notification channels.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/linnemanlabs/beacon/internal/visit"
)

const sendTimeout = 10 * time.Second

// Channel is one notification target. Send must respect ctx cancellation
// and return an error on delivery failure; the dispatcher handles logging.
type Channel interface {
	Name() string
	Send(ctx context.Context, subject, body string) error
}

// Metrics holds Prometheus metrics for notification delivery.
type Metrics struct {
	DeliveriesTotal *prometheus.CounterVec
}

// NewMetrics registers and returns notification metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DeliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beacon_notifications_total",
			Help: "Total notification deliveries by channel and outcome.",
		}, []string{"channel", "outcome"}),
	}
	reg.MustRegister(m.DeliveriesTotal)
	return m
}

func (m *Metrics) incDelivery(channel, outcome string) {
	if m == nil {
		return
	}
	m.DeliveriesTotal.WithLabelValues(channel, outcome).Inc()
}

// Dispatcher implements visit.Dispatcher. All channel failures are swallowed
// here: they are logged and counted, never returned.
type Dispatcher struct {
	channels []Channel
	logger   log.Logger
	metrics  *Metrics
}

// NewDispatcher creates a dispatcher over the given channels. An empty
// channel list makes Dispatch a no-op.
func NewDispatcher(channels []Channel, logger log.Logger, metrics *Metrics) *Dispatcher {
	if logger == nil {
		logger = log.Nop()
	}
	return &Dispatcher{
		channels: channels,
		logger:   logger,
		metrics:  metrics,
	}
}

// Dispatch formats an alert for the classification and sends it to every
// channel concurrently. One channel's failure does not block another's
// attempt. Continuations produce nothing.
func (d *Dispatcher) Dispatch(ctx context.Context, class visit.Classification, s *visit.Session) {
	subject, body, ok := Format(class, s)
	if !ok {
		return
	}

	alertID := ulid.Make().String()
	L := d.logger.With(
		"alert_id", alertID,
		"classification", string(class),
		"session_id", s.SessionID,
	)

	var wg sync.WaitGroup
	for _, ch := range d.channels {
		wg.Add(1)
		go func(ch Channel) {
			defer wg.Done()

			cctx, cancel := context.WithTimeout(ctx, sendTimeout)
			defer cancel()

			if err := ch.Send(cctx, subject, body); err != nil {
				d.metrics.incDelivery(ch.Name(), "error")
				L.Error(cctx, err, "notification delivery failed", "channel", ch.Name())
				return
			}
			d.metrics.incDelivery(ch.Name(), "ok")
			L.Info(cctx, "notification delivered", "channel", ch.Name())
		}(ch)
	}
	wg.Wait()
}
