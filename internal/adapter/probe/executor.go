package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/proxy"

	"github.com/soria/relaypool/internal/core/domain"
)

const (
	HealthyStatusRangeStart = 200
	HealthyStatusRangeEnd   = 300

	maxStatusMessageLength = 100
)

// Executor implements domain.Prober. One Probe call issues one bounded
// outbound check: proxies are exercised by fetching a fixed target URL
// through them, stream URLs are fetched directly. The executor holds no
// mutable state; the caller persists outcomes.
type Executor struct {
	clock     domain.Clock
	targetURL string
	timeout   time.Duration
}

func NewExecutor(targetURL string, timeout time.Duration, clock domain.Clock) *Executor {
	return &Executor{
		targetURL: targetURL,
		timeout:   timeout,
		clock:     clock,
	}
}

// Probe checks a single endpoint. Every failure mode is folded into the
// returned Outcome; no error and no panic crosses this boundary.
func (e *Executor) Probe(ctx context.Context, endpoint *domain.Endpoint) domain.Outcome {
	client, requestURL, err := e.buildClient(endpoint)
	if err != nil {
		return domain.Outcome{
			Success: false,
			Reason:  domain.ReasonOther,
			Message: truncate(err.Error()),
		}
	}

	probeCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, requestURL, nil)
	if err != nil {
		return domain.Outcome{
			Success: false,
			Reason:  domain.ReasonOther,
			Message: truncate(err.Error()),
		}
	}

	start := e.clock.Now()
	resp, err := client.Do(req)
	latency := e.clock.Now().Sub(start)

	if err != nil {
		reason := classifyError(err)
		return domain.Outcome{
			Success: false,
			Latency: latency,
			Reason:  reason,
			Message: truncate(reasonMessage(reason, err)),
		}
	}
	defer func(body io.ReadCloser) {
		_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
		_ = body.Close()
	}(resp.Body)

	if resp.StatusCode < HealthyStatusRangeStart || resp.StatusCode >= HealthyStatusRangeEnd {
		return domain.Outcome{
			Success: false,
			Latency: latency,
			Reason:  domain.ReasonBadStatus,
			Message: fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}

	return domain.Outcome{
		Success: true,
		Latency: latency,
		Reason:  domain.ReasonOK,
	}
}

// buildClient returns a throwaway HTTP client routed according to the
// endpoint kind, and the URL the probe should fetch through it.
func (e *Executor) buildClient(endpoint *domain.Endpoint) (*http.Client, string, error) {
	switch endpoint.Kind {
	case domain.KindHTTPProxy:
		proxyURL, err := httpProxyURL(endpoint)
		if err != nil {
			return nil, "", err
		}
		transport := &http.Transport{
			Proxy:             http.ProxyURL(proxyURL),
			DisableKeepAlives: true,
		}
		return &http.Client{Transport: transport, Timeout: e.timeout}, e.targetURL, nil

	case domain.KindSocksProxy:
		var auth *proxy.Auth
		if endpoint.HasAuth() {
			auth = &proxy.Auth{User: endpoint.Username, Password: endpoint.Password}
		}
		dialer, err := proxy.SOCKS5("tcp", endpoint.Address, auth, proxy.Direct)
		if err != nil {
			return nil, "", err
		}
		transport := &http.Transport{
			DisableKeepAlives: true,
		}
		if contextDialer, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = contextDialer.DialContext
		} else {
			transport.Dial = dialer.Dial
		}
		return &http.Client{Transport: transport, Timeout: e.timeout}, e.targetURL, nil

	case domain.KindStreamURL:
		transport := &http.Transport{
			DisableKeepAlives: true,
		}
		return &http.Client{Transport: transport, Timeout: e.timeout}, endpoint.Address, nil

	default:
		return nil, "", fmt.Errorf("unknown endpoint kind: %s", endpoint.Kind)
	}
}

func httpProxyURL(endpoint *domain.Endpoint) (*url.URL, error) {
	raw := endpoint.Address
	proxyURL, err := url.Parse("http://" + raw)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy address %q: %w", raw, err)
	}
	if endpoint.HasAuth() {
		proxyURL.User = url.UserPassword(endpoint.Username, endpoint.Password)
	}
	return proxyURL, nil
}

func truncate(message string) string {
	if len(message) > maxStatusMessageLength {
		return message[:maxStatusMessageLength]
	}
	return message
}
