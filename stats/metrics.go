package stats

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 合约调用的 prometheus 指标，实现 vm.Observer
type Metrics struct {
	// 调用次数，按操作和结果
	Invocations *prometheus.CounterVec

	// 调用耗时，按操作
	InvocationLatency *prometheus.HistogramVec

	// 产出的出站消息数，按操作
	Messages *prometheus.CounterVec

	// HTTP 请求，按路由和状态码
	HTTPRequests *prometheus.CounterVec
}

// NewMetrics 注册到 reg；reg 为 nil 时用默认注册表
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Invocations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "soulp_invocations_total",
			Help: "Contract invocations by kind and receipt status",
		}, []string{"kind", "status"}),

		InvocationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "soulp_invocation_duration_seconds",
			Help:    "Duration of contract invocations including commit",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}, []string{"kind"}),

		Messages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "soulp_emitted_messages_total",
			Help: "Outbound messages emitted by successful invocations",
		}, []string{"kind"}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "soulp_http_requests_total",
			Help: "HTTP API requests by route and status code",
		}, []string{"route", "code"}),
	}
}

func (m *Metrics) ObserveInvocation(kind, status string, d time.Duration) {
	if m != nil {
		m.Invocations.WithLabelValues(kind, status).Inc()
		m.InvocationLatency.WithLabelValues(kind).Observe(d.Seconds())
	}
}

func (m *Metrics) ObserveMessages(kind string, n int) {
	if m != nil && n > 0 {
		m.Messages.WithLabelValues(kind).Add(float64(n))
	}
}

func (m *Metrics) ObserveHTTP(route, code string) {
	if m != nil {
		m.HTTPRequests.WithLabelValues(route, code).Inc()
	}
}
