// Package metrics 查询引擎的 Prometheus 指标
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "qcdash"

// Metrics 持有独立 registry 上注册的全部指标。
// 所有方法允许 nil 接收者，便于测试与禁用指标时直接传 nil。
type Metrics struct {
	registry *prometheus.Registry

	searchStages      *prometheus.CounterVec
	droppedFilterKeys *prometheus.CounterVec
	cacheLookups      *prometheus.CounterVec
	qcQueries         *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New 创建并注册指标
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.searchStages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_stage_total",
			Help:      "Number of resolver lookups answered by each match stage",
		},
		[]string{"kind", "stage"}, // kind: sessions, scans; stage: filename, strict, name_only, fuzzy_name, ..., none
	)

	m.droppedFilterKeys = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_filter_keys_total",
			Help:      "Number of filter keys dropped because they are not whitelisted",
		},
		[]string{"query_type"},
	)

	m.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Query cache lookups by result",
		},
		[]string{"result"}, // hit, miss, error
	)

	m.qcQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "qc_queries_total",
			Help:      "QC classification queries by outcome",
		},
		[]string{"outcome"}, // ok, invalid, error
	)

	m.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	m.httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time taken for HTTP requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	m.registry.MustRegister(
		m.searchStages,
		m.droppedFilterKeys,
		m.cacheLookups,
		m.qcQueries,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry 返回底层 registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler 暴露 /metrics
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordSearchStage 记录解析器命中的匹配阶段
func (m *Metrics) RecordSearchStage(kind, stage string) {
	if m == nil {
		return
	}
	m.searchStages.WithLabelValues(kind, stage).Inc()
}

// RecordDroppedKeys 记录被丢弃的过滤键数量
func (m *Metrics) RecordDroppedKeys(queryType string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.droppedFilterKeys.WithLabelValues(queryType).Add(float64(n))
}

// RecordCacheLookup 记录缓存结果（hit/miss/error）
func (m *Metrics) RecordCacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// RecordQCQuery 记录 QC 查询结果（ok/invalid/error）
func (m *Metrics) RecordQCQuery(outcome string) {
	if m == nil {
		return
	}
	m.qcQueries.WithLabelValues(outcome).Inc()
}

// ObserveHTTP 记录一次 HTTP 请求
func (m *Metrics) ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
