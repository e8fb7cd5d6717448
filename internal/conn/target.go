package conn

import (
	"fmt"
	"net/url"
	"strings"
)

// Target builds the websocket URL for a session. The scheme mirrors the
// server base URL: wss for https, ws otherwise.
func Target(base *url.URL, room, name string) (string, error) {
	if base == nil || base.Host == "" {
		return "", fmt.Errorf("server url has no host")
	}

	scheme := "ws"
	if strings.EqualFold(base.Scheme, "https") || strings.EqualFold(base.Scheme, "wss") {
		scheme = "wss"
	}

	return fmt.Sprintf("%s://%s/ws?room=%s&name=%s", scheme, base.Host, escape(room), escape(name)), nil
}

// Origin returns the origin the server expects in the handshake
func Origin(base *url.URL) string {
	scheme := "http"
	if strings.EqualFold(base.Scheme, "https") || strings.EqualFold(base.Scheme, "wss") {
		scheme = "https"
	}
	return scheme + "://" + base.Host
}

// escape percent-encodes a query component the way browsers'
// encodeURIComponent does, so spaces become %20
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
