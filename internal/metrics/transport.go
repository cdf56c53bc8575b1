package metrics

import (
	"net/http"
	"time"
)

// AnyListLatencyRecorder はAnyList API呼び出しのレイテンシ記録インターフェース。
type AnyListLatencyRecorder interface {
	RecordAnyListLatency(operation string, duration time.Duration)
}

// latencyTransport はHTTPリクエストのレイテンシをメトリクスとして記録する
// http.RoundTripperの実装。
type latencyTransport struct {
	base         http.RoundTripper
	recorder     AnyListLatencyRecorder
	operationFor func(r *http.Request) string
}

// NewLatencyTransport はレイテンシ記録付きのRoundTripperを生成する。
// baseがnilの場合はhttp.DefaultTransportを使用する。
// operationForがnilの場合はリクエストのURLパスをoperationラベルとして使用する。
func NewLatencyTransport(base http.RoundTripper, recorder AnyListLatencyRecorder, operationFor func(r *http.Request) string) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if operationFor == nil {
		operationFor = func(r *http.Request) string {
			return r.URL.Path
		}
	}
	return &latencyTransport{
		base:         base,
		recorder:     recorder,
		operationFor: operationFor,
	}
}

// RoundTrip はリクエストを実行し、所要時間を記録する。
// エラー時もレイテンシは記録する。
func (t *latencyTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(r)
	t.recorder.RecordAnyListLatency(t.operationFor(r), time.Since(start))
	return resp, err
}
