package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var DefaultPorts = []int{5001, 5002, 5003, 5004, 5005}

const (
	DefaultHost         = "localhost"
	DefaultFallbackPort = 5001
	DefaultHealthPath   = "/api/health"
	DefaultProbeTimeout = 2 * time.Second
)

type DiscoveryOptions struct {
	Scheme       string
	Host         string
	Ports        []int
	Fallback     int
	HealthPath   string
	ProbeTimeout time.Duration
	HTTPClient   *http.Client
}

func (o DiscoveryOptions) withDefaults() DiscoveryOptions {
	if o.Scheme == "" {
		o.Scheme = "http"
	}
	if o.Host == "" {
		o.Host = DefaultHost
	}
	if len(o.Ports) == 0 {
		o.Ports = DefaultPorts
	}
	if o.Fallback == 0 {
		o.Fallback = DefaultFallbackPort
	}
	if o.HealthPath == "" {
		o.HealthPath = DefaultHealthPath
	}
	if o.ProbeTimeout <= 0 {
		o.ProbeTimeout = DefaultProbeTimeout
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return o
}

// Discover probes the candidate ports in order and returns the first one
// whose health endpoint answers 2xx. When none does, the fallback port is
// returned.
func Discover(ctx context.Context, opts DiscoveryOptions, log *slog.Logger) int {
	if log == nil {
		log = slog.Default()
	}
	opts = opts.withDefaults()

	for _, port := range opts.Ports {
		if ctx.Err() != nil {
			break
		}
		if probe(ctx, opts, port) {
			log.Info("backend discovered", slog.Int("port", port))
			return port
		}
		log.Debug("backend probe failed", slog.Int("port", port))
	}

	log.Warn("no backend answered, using fallback port", slog.Int("port", opts.Fallback))
	return opts.Fallback
}

func probe(ctx context.Context, opts DiscoveryOptions, port int) bool {
	ctx, cancel := context.WithTimeout(ctx, opts.ProbeTimeout)
	defer cancel()

	url := fmt.Sprintf("%s://%s:%d%s", opts.Scheme, opts.Host, port, opts.HealthPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := opts.HTTPClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// BaseURL is the API root for a discovered port.
func BaseURL(scheme, host string, port int) string {
	if scheme == "" {
		scheme = "http"
	}
	if host == "" {
		host = DefaultHost
	}
	return fmt.Sprintf("%s://%s:%d/api", scheme, host, port)
}
