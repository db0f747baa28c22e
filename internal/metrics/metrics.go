// Package metrics provides Prometheus metrics for the session gate and login.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gate names
const (
	GateAuthentication = "authentication"
	GateAuthorization  = "authorization"
)

// Gate outcomes
const (
	OutcomeAllowed      = "allowed"
	OutcomeUnauthorized = "unauthorized"
	OutcomeInvalidToken = "invalid_token"
	OutcomeExpiredToken = "expired_token"
	OutcomeForbidden    = "forbidden"
)

// Login results
const (
	LoginSuccess            = "success"
	LoginMissingCredentials = "missing_credentials"
	LoginInvalidCredentials = "invalid_credentials"
	LoginRateLimited        = "rate_limited"
	LoginError              = "error"
)

// Metrics holds the counters exported by the server.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	gateDecisions *prometheus.CounterVec
	logins        *prometheus.CounterVec
}

// New creates the counters on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		gateDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "schoolsite_gate_decisions_total",
			Help: "Decisions taken by the authentication and authorization gates",
		}, []string{"gate", "outcome"}),
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "schoolsite_logins_total",
			Help: "Login attempts by result",
		}, []string{"result"}),
	}
}

// GateDecision counts one gate decision
func (m *Metrics) GateDecision(gate, outcome string) {
	if m == nil {
		return
	}
	m.gateDecisions.WithLabelValues(gate, outcome).Inc()
}

// Login counts one login attempt
func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// GateDecisions returns the gate decision counter
func (m *Metrics) GateDecisions() *prometheus.CounterVec {
	return m.gateDecisions
}

// Logins returns the login counter
func (m *Metrics) Logins() *prometheus.CounterVec {
	return m.logins
}
