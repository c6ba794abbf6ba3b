// Package http はオブジェクトストレージなど外部サービス向けのHTTP設定を提供します。
package http

import (
	"net"
	"net/http"
	"time"
)

// NewTransport は外部サービス呼び出し用に設定されたTransportを作成します。
//
// 設定:
//   - Proxy: 環境変数（HTTP_PROXYなど）が設定されている場合に使用
//   - Dialer.Timeout: TCP接続タイムアウト（デフォルトより短い）
//   - MaxIdleConnsPerHost: アバター配信で同一ホストへの接続を使い回すため多めに確保
//   - TLSHandshakeTimeout: HTTPSハンドシェイクの最大時間
//   - ResponseHeaderTimeout: ヘッダー受信までの最大時間（本文のストリーミングは制限しない）
func NewTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
	}
}
