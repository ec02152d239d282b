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
	RecordGenerationSuccess(contentType string)
	RecordGenerationFailure(contentType string)
	RecordExtraction(strategy string, candidates int)
	RecordCompletionLatency(duration time.Duration)
	RecordHTTPStatus(statusCode int)
	RecordIdeaSaved(contentType string)
	RecordIdeaDeleted(contentType string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	generationSuccess *prometheus.CounterVec
	generationFail    *prometheus.CounterVec
	extraction        *prometheus.CounterVec
	candidates        prometheus.Histogram
	completionLatency prometheus.Histogram
	httpStatus        *prometheus.CounterVec
	ideasSaved        *prometheus.CounterVec
	ideasDeleted      *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		generationSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ideation_generation_success_total",
			Help: "アイデア生成成功の合計数",
		}, []string{"content_type"}),
		generationFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ideation_generation_fail_total",
			Help: "アイデア生成失敗の合計数",
		}, []string{"content_type"}),
		extraction: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ideation_extraction_total",
			Help: "抽出戦略別の抽出回数",
		}, []string{"strategy"}),
		candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ideation_extracted_candidates",
			Help:    "1回の生成で抽出されたアイデア候補数",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 10, 15},
		}),
		completionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ideation_completion_latency_seconds",
			Help:    "テキスト生成API呼び出しのレイテンシ（秒）",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ideation_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		ideasSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ideation_ideas_saved_total",
			Help: "保存されたアイデアの合計数",
		}, []string{"content_type"}),
		ideasDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ideation_ideas_deleted_total",
			Help: "削除されたアイデアの合計数",
		}, []string{"content_type"}),
	}

	reg.MustRegister(
		c.generationSuccess,
		c.generationFail,
		c.extraction,
		c.candidates,
		c.completionLatency,
		c.httpStatus,
		c.ideasSaved,
		c.ideasDeleted,
	)

	return c
}

// RecordGenerationSuccess は生成成功を記録する。
func (c *Collector) RecordGenerationSuccess(contentType string) {
	c.generationSuccess.WithLabelValues(contentType).Inc()
}

// RecordGenerationFailure は生成失敗を記録する。
func (c *Collector) RecordGenerationFailure(contentType string) {
	c.generationFail.WithLabelValues(contentType).Inc()
}

// RecordExtraction は採用された抽出戦略と候補数を記録する。
func (c *Collector) RecordExtraction(strategy string, candidates int) {
	c.extraction.WithLabelValues(strategy).Inc()
	c.candidates.Observe(float64(candidates))
}

// RecordCompletionLatency はテキスト生成APIのレイテンシを記録する。
func (c *Collector) RecordCompletionLatency(duration time.Duration) {
	c.completionLatency.Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordIdeaSaved はアイデアの保存を記録する。
func (c *Collector) RecordIdeaSaved(contentType string) {
	c.ideasSaved.WithLabelValues(contentType).Inc()
}

// RecordIdeaDeleted はアイデアの削除を記録する。
func (c *Collector) RecordIdeaDeleted(contentType string) {
	c.ideasDeleted.WithLabelValues(contentType).Inc()
}

// Nop は何も記録しないMetricsCollector。
type Nop struct{}

func (Nop) RecordGenerationSuccess(string) {}
func (Nop) RecordGenerationFailure(string) {}
func (Nop) RecordExtraction(string, int) {}
func (Nop) RecordCompletionLatency(time.Duration) {}
func (Nop) RecordHTTPStatus(int) {}
func (Nop) RecordIdeaSaved(string) {}
func (Nop) RecordIdeaDeleted(string) {}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)

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
