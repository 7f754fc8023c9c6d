package handlers

import (
	"net/http"
	"strconv"

	"soulp/config"
	"soulp/middleware"
	"soulp/stats"
	"soulp/vm"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HandlerManager 管理所有HTTP处理器及其依赖
type HandlerManager struct {
	executor *vm.Executor
	cfg      config.ServerConfig

	// 统计相关字段
	Stats    *stats.Stats
	Metrics  *stats.Metrics
	gatherer prometheus.Gatherer
}

// NewHandlerManager 创建新的处理器管理器
// gatherer 为 nil 时 /metrics 使用默认注册表
func NewHandlerManager(executor *vm.Executor, cfg config.ServerConfig, metrics *stats.Metrics, gatherer prometheus.Gatherer) *HandlerManager {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &HandlerManager{
		executor: executor,
		cfg:      cfg,
		Stats:    stats.NewStats(),
		Metrics:  metrics,
		gatherer: gatherer,
	}
}

// Router 注册所有路由
func (hm *HandlerManager) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.NewRateLimiter(hm.cfg.RateLimitPerSecond).Handler)
	r.Use(middleware.BodyLimit(hm.cfg.MaxRequestBodySize))
	r.Use(middleware.AccessLog(func(route string, status int) {
		hm.Metrics.ObserveHTTP(route, strconv.Itoa(status))
	}))

	// 合约调用
	r.Post("/instantiate", hm.HandleInstantiate)
	r.Post("/execute", hm.HandleExecute)
	r.Post("/query", hm.HandleQuery)
	// 回执与账本
	r.Get("/receipts/{id}", hm.HandleGetReceipt)
	r.Get("/balances/{addr}", hm.HandleGetBalances)
	r.Post("/fund", hm.HandleFund)
	// 运维
	r.Get("/status", hm.HandleStatus)
	r.Get("/stats", hm.HandleStats)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(hm.gatherer, promhttp.HandlerOpts{}))
	return r
}
