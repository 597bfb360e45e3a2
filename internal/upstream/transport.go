package upstream

import (
	"net"
	"net/http"
	"strings"
	"time"
)

// ObserverFunc receives one call per upstream HTTP exchange. status is 0
// when no response was received.
type ObserverFunc func(endpoint string, status int, duration time.Duration)

// NewHTTPClient returns the client shared by every generator backend.
func NewHTTPClient(timeout time.Duration, observer ObserverFunc) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &observingTransport{next: transport, observer: observer},
	}
}

type observingTransport struct {
	next     http.RoundTripper
	observer ObserverFunc
}

func (t *observingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	started := time.Now()
	resp, err := t.next.RoundTrip(req)
	if t.observer != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.observer(endpointLabel(req.URL.Path), status, time.Since(started))
	}
	return resp, err
}

// endpointLabel keeps metric cardinality bounded: model names embedded in
// the path are dropped, only the final operation name is kept.
func endpointLabel(path string) string {
	path = strings.TrimRight(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	if i := strings.LastIndex(path, ":"); i >= 0 {
		path = path[i+1:]
	}
	if path == "" {
		return "unknown"
	}
	return path
}
