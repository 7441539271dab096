// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"net"
	"net/http"
)

// ClientIP はリクエスト元のIPアドレスを返す。
// プロキシヘッダーの解決はchiのRealIPミドルウェアでRemoteAddrに反映済みであることを前提とする。
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RealIPはポートなしのアドレスを設定する
		return r.RemoteAddr
	}
	return host
}
