// Package metrics defines the custom Prometheus metrics for the payments
// portal API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered on the registry passed to New so tests can build
// several routers without colliding on the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// Metrics groups every custom collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// RegistrationsTotal counts registration attempts.
	// Label:
	//   - result: "success", "validation", "conflict" or "error"
	RegistrationsTotal *prometheus.CounterVec

	// LoginsTotal counts login attempts.
	// Label:
	//   - result: "success", "invalid_credentials", "validation" or "error"
	LoginsTotal *prometheus.CounterVec

	// TokenRejectionsTotal counts requests refused by token verification.
	// Label:
	//   - reason: "missing", "malformed" or "invalid"
	TokenRejectionsTotal *prometheus.CounterVec

	// AuthorizationDenialsTotal counts authenticated requests refused for their role.
	// Label:
	//   - role: the caller's role, or "none" when no identity was present
	AuthorizationDenialsTotal *prometheus.CounterVec

	// PaymentsSubmittedTotal counts recorded payment submissions.
	// Label:
	//   - currency: ISO code of the submission
	PaymentsSubmittedTotal *prometheus.CounterVec
}

// New creates and registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RegistrationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Total number of registration attempts, by result.",
		}, []string{"result"}),
		LoginsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Total number of login attempts, by result.",
		}, []string{"result"}),
		TokenRejectionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_rejections_total",
			Help:      "Total number of requests rejected by bearer token verification.",
		}, []string{"reason"}),
		AuthorizationDenialsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authorization_denials_total",
			Help:      "Total number of authenticated requests denied for insufficient role.",
		}, []string{"role"}),
		PaymentsSubmittedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_submitted_total",
			Help:      "Total number of payment submissions recorded, by currency.",
		}, []string{"currency"}),
	}
}

func (m *Metrics) Registration(result string) {
	if m != nil {
		m.RegistrationsTotal.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Login(result string) {
	if m != nil {
		m.LoginsTotal.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) TokenRejected(reason string) {
	if m != nil {
		m.TokenRejectionsTotal.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) AuthorizationDenied(role string) {
	if m != nil {
		m.AuthorizationDenialsTotal.WithLabelValues(role).Inc()
	}
}

func (m *Metrics) PaymentSubmitted(currency string) {
	if m != nil {
		m.PaymentsSubmittedTotal.WithLabelValues(currency).Inc()
	}
}
