// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とミドルウェアから利用する。
type MetricsCollector interface {
	RecordExtractSuccess()
	RecordExtractFailure(reason string)
	RecordImportSuccess()
	RecordImportFailure(errorCode string)
	RecordCollectionWarning()
	RecordAnyListLatency(operation string, duration time.Duration)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	extractSuccess    prometheus.Counter
	extractFail       *prometheus.CounterVec
	importSuccess     prometheus.Counter
	importFail        *prometheus.CounterVec
	collectionWarning prometheus.Counter
	anylistLatency    *prometheus.HistogramVec
	httpStatus        *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		extractSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipeman_extract_success_total",
			Help: "レシピ抽出成功の合計数",
		}),
		extractFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipeman_extract_fail_total",
			Help: "レシピ抽出失敗の合計数",
		}, []string{"reason"}),
		importSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipeman_import_success_total",
			Help: "レシピ取り込み成功の合計数",
		}),
		importFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipeman_import_fail_total",
			Help: "レシピ取り込み失敗の合計数",
		}, []string{"error_code"}),
		collectionWarning: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipeman_collection_warning_total",
			Help: "コレクション追加失敗（警告降格）の合計数",
		}),
		anylistLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recipeman_anylist_latency_seconds",
			Help:    "AnyList API呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipeman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.extractSuccess,
		c.extractFail,
		c.importSuccess,
		c.importFail,
		c.collectionWarning,
		c.anylistLatency,
		c.httpStatus,
	)

	return c
}

// RecordExtractSuccess はレシピ抽出成功を記録する。
func (c *Collector) RecordExtractSuccess() {
	c.extractSuccess.Inc()
}

// RecordExtractFailure はレシピ抽出失敗を記録する。
func (c *Collector) RecordExtractFailure(reason string) {
	c.extractFail.WithLabelValues(reason).Inc()
}

// RecordImportSuccess はレシピ取り込み成功を記録する。
func (c *Collector) RecordImportSuccess() {
	c.importSuccess.Inc()
}

// RecordImportFailure はレシピ取り込み失敗を記録する。
func (c *Collector) RecordImportFailure(errorCode string) {
	c.importFail.WithLabelValues(errorCode).Inc()
}

// RecordCollectionWarning はコレクション追加の警告降格を記録する。
func (c *Collector) RecordCollectionWarning() {
	c.collectionWarning.Inc()
}

// RecordAnyListLatency はAnyList API呼び出しのレイテンシを記録する。
func (c *Collector) RecordAnyListLatency(operation string, duration time.Duration) {
	c.anylistLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
