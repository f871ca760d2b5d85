package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RotationMetrics : счетчики входов и исходов ротации refresh-токенов
type RotationMetrics struct {
	mLogins        *prometheus.CounterVec
	mRefresh       *prometheus.CounterVec
	mChainsRevoked prometheus.Counter
}

func NewRotationMetrics(reg prometheus.Registerer) *RotationMetrics {
	factory := promauto.With(reg)
	return &RotationMetrics{
		mLogins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_logins_total", Help: "Login attempts by result",
		}, []string{"result"}),
		mRefresh: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_refresh_total", Help: "Refresh attempts by outcome",
		}, []string{"outcome"}),
		mChainsRevoked: factory.NewCounter(prometheus.CounterOpts{
			Name: "auth_chains_revoked_total", Help: "Token chains invalidated by revoke or reuse detection",
		}),
	}
}

func (m *RotationMetrics) LoginSucceeded() { m.mLogins.WithLabelValues("success").Inc() }
func (m *RotationMetrics) LoginFailed()    { m.mLogins.WithLabelValues("failure").Inc() }

func (m *RotationMetrics) RefreshOutcome(outcome string) {
	m.mRefresh.WithLabelValues(outcome).Inc()
}

func (m *RotationMetrics) ChainRevoked() { m.mChainsRevoked.Inc() }
