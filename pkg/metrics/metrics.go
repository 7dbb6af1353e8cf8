package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "bookly", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "bookly", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "bookly", Name: "login_attempts_total", Help: "Number of login attempts by outcome (success, failure)."},
		[]string{"outcome"},
	)
	TokensIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "bookly", Name: "tokens_issued_total", Help: "Number of JWTs issued by kind (access, refresh)."},
		[]string{"kind"},
	)
	TokensRevoked = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "bookly", Name: "tokens_revoked_total", Help: "Number of token ids added to the revocation blocklist."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(LoginAttempts)
	reg.MustRegister(TokensIssued)
	reg.MustRegister(TokensRevoked)
}
