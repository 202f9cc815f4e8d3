package metrics

import (
	"time"

	"github.com/maauso/mediasession/internal/session"
)

var allStates = []session.State{session.StateClosed, session.StateOpened, session.StateReleased}

// sessionObserver implements session.Observer using the Prometheus
// metrics declared in this package.
type sessionObserver struct{}

// NewSessionObserver creates an observer that records session metrics
// into the counters, histograms and gauges declared in metrics.go.
func NewSessionObserver() session.Observer {
	return &sessionObserver{}
}

func (o *sessionObserver) ObserveOperation(op string, duration time.Duration, err error) {
	OperationDuration.WithLabelValues(op).Observe(duration.Seconds())
	result := "ok"
	if err != nil {
		result = session.KindOf(err).String()
	}
	OperationsTotal.WithLabelValues(op, result).Inc()
}

func (o *sessionObserver) ObserveState(state session.State) {
	for _, s := range allStates {
		v := 0.0
		if s == state {
			v = 1
		}
		SessionState.WithLabelValues(string(s)).Set(v)
	}
}

// ObservePublish records the outcome of pushing an output to object storage.
func ObservePublish(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	PublishedOutputsTotal.WithLabelValues(status).Inc()
}
