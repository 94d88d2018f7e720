package httpclient

import (
	"context"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/bizsuite-hq/bizsuite/internal/pkg/circuitbreaker"
)

var (
	defaultClient     *PooledClient
	defaultClientOnce sync.Once
)

type Config struct {
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
	IdleConnTimeout     time.Duration
	TLSHandshakeTimeout time.Duration
	KeepAlive           time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		KeepAlive:           30 * time.Second,
	}
}

// PooledClient is a shared outbound HTTP client with a per-host circuit
// breaker. Per-call deadlines come from the request context, not the
// client, so test and delivery paths can use different timeouts.
type PooledClient struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.Manager
}

func NewPooledClient(config Config) *PooledClient {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: config.KeepAlive,
		}).DialContext,
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		MaxConnsPerHost:     config.MaxConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		TLSHandshakeTimeout: config.TLSHandshakeTimeout,
		ForceAttemptHTTP2:   true,
	}

	cbConfig := circuitbreaker.Config{
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
	}

	return &PooledClient{
		client:         &http.Client{Transport: transport},
		circuitBreaker: circuitbreaker.NewManager(cbConfig),
	}
}

func Default() *PooledClient {
	defaultClientOnce.Do(func() {
		defaultClient = NewPooledClient(DefaultConfig())
	})
	return defaultClient
}

func (p *PooledClient) Do(req *http.Request) (*http.Response, error) {
	cb := p.circuitBreaker.Get(req.URL.Host)

	result, err := cb.Execute(req.Context(), func(ctx context.Context) (interface{}, error) {
		return p.client.Do(req.WithContext(ctx))
	})
	if err != nil {
		return nil, err
	}
	return result.(*http.Response), nil
}

func (p *PooledClient) Post(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return p.Do(req)
}

func (p *PooledClient) CircuitStates() map[string]circuitbreaker.State {
	return p.circuitBreaker.States()
}

func (p *PooledClient) CloseIdleConnections() {
	p.client.CloseIdleConnections()
}
