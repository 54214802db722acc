// Package prometheus wires application/metrics.Recorder to
// github.com/prometheus/client_golang. Grounded on the teacher pack's
// own promauto-registered gauge/counter set (internal/obs.metrics).
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements application/metrics.Recorder with a fixed set
// of Session Manager counters/gauges (SPEC_FULL §12 "Metrics").
type Recorder struct {
	sessionsCreated    prometheus.Counter
	sessionsSuppressed *prometheus.CounterVec
	admissionFailed    *prometheus.CounterVec
	sessionsReaped     prometheus.Counter
	liveSessions       prometheus.Gauge
}

// NewRecorder registers every metric against reg. Pass
// prometheus.DefaultRegisterer to expose through promhttp.Handler().
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		sessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "sessioncore_sessions_created_total",
			Help: "Sessions admitted by the session manager.",
		}),
		sessionsSuppressed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sessioncore_sessions_suppressed_total",
			Help: "Sessions displaced by a later admission, labeled by reason.",
		}, []string{"reason"}),
		admissionFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sessioncore_admission_failed_total",
			Help: "Admission attempts rejected, labeled by response code.",
		}, []string{"response_code"}),
		sessionsReaped: factory.NewCounter(prometheus.CounterOpts{
			Name: "sessioncore_sessions_reaped_total",
			Help: "Disposed sessions removed from the repository by the reaper.",
		}),
		liveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sessioncore_live_sessions",
			Help: "Sessions currently admitted and not disposed.",
		}),
	}
}

func (r *Recorder) SessionCreated() { r.sessionsCreated.Inc() }

func (r *Recorder) SessionSuppressed(reason string) {
	r.sessionsSuppressed.WithLabelValues(reason).Inc()
}

func (r *Recorder) AdmissionFailed(responseCode string) {
	r.admissionFailed.WithLabelValues(responseCode).Inc()
}

func (r *Recorder) SessionsReaped(n int) {
	if n <= 0 {
		return
	}
	r.sessionsReaped.Add(float64(n))
}

func (r *Recorder) LiveSessions(n int) { r.liveSessions.Set(float64(n)) }
