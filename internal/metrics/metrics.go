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
	RecordStorageLatency(operation string, duration time.Duration)
	RecordFilterResult(field string, matched int)
	RecordExportRows(count int)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	storageLatency *prometheus.HistogramVec
	filterRequests *prometheus.CounterVec
	filterMatched  *prometheus.HistogramVec
	exports        prometheus.Counter
	exportRows     prometheus.Counter
	httpStatus     *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		storageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "contactsman_storage_query_duration_seconds",
			Help:    "ストレージ問い合わせの所要時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		filterRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contactsman_filter_requests_total",
			Help: "検索フィールド別の絞り込み回数",
		}, []string{"field"}),
		filterMatched: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "contactsman_filter_matched_persons",
			Help:    "絞り込みで一致した人物数",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"field"}),
		exports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contactsman_exports_total",
			Help: "スプレッドシートエクスポートの合計数",
		}),
		exportRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contactsman_export_rows_total",
			Help: "エクスポートした行の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contactsman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.storageLatency,
		c.filterRequests,
		c.filterMatched,
		c.exports,
		c.exportRows,
		c.httpStatus,
	)

	return c
}

// RecordStorageLatency はストレージ問い合わせの所要時間を記録する。
func (c *Collector) RecordStorageLatency(operation string, duration time.Duration) {
	c.storageLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordFilterResult は絞り込みの実行と一致件数を記録する。
func (c *Collector) RecordFilterResult(field string, matched int) {
	c.filterRequests.WithLabelValues(field).Inc()
	c.filterMatched.WithLabelValues(field).Observe(float64(matched))
}

// RecordExportRows はエクスポート1回分の行数を記録する。
func (c *Collector) RecordExportRows(count int) {
	c.exports.Inc()
	c.exportRows.Add(float64(count))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
