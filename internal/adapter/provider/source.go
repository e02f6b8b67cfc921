package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/elchacal801/flame-fraud/internal/adapter/metrics"
	"github.com/elchacal801/flame-fraud/internal/config"
	"github.com/elchacal801/flame-fraud/internal/core/domain"
)

// browserUserAgent is sent to regulator pages that reject default clients.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// maxBodyBytes caps a single upstream download.
var maxBodyBytes int64 = 64 << 20

var ErrBodyTooLarge = errors.New("response body exceeds size limit")

// Doer is satisfied by *http.Client and *httpclient.ResilientClient.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Source is the two-phase contract of a regulatory adapter. Fetch does all
// I/O and may fail; Parse is pure and must not fail on empty or malformed
// input.
type Source[R any] interface {
	Name() string
	Fetch(ctx context.Context) (R, error)
	Parse(raw R) []domain.RegulatoryAlert
}

// Run executes fetch then parse. Any failure in either phase, panics
// included, is logged with the source name and yields an empty slice.
func Run[R any](ctx context.Context, src Source[R], logger zerolog.Logger) (alerts []domain.RegulatoryAlert) {
	name := src.Name()
	timer := metrics.StartTimer(name)
	defer timer.ObserveDuration()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Str("source", name).Interface("panic", r).Msg("source run failed")
			metrics.RecordSourceRun(name, "panic")
			alerts = []domain.RegulatoryAlert{}
		}
	}()

	raw, err := src.Fetch(ctx)
	if err != nil {
		logger.Error().Err(err).Str("source", name).Msg("source run failed")
		metrics.RecordSourceRun(name, "fetch_error")
		return []domain.RegulatoryAlert{}
	}

	alerts = src.Parse(raw)
	if alerts == nil {
		alerts = []domain.RegulatoryAlert{}
	}

	metrics.RecordSourceRun(name, "success")
	for _, a := range alerts {
		metrics.RecordAlert(name, string(a.Severity))
	}
	return alerts
}

// base carries what every concrete source shares.
type base struct {
	cfg    config.SourceConfig
	client Doer
	logger zerolog.Logger
}

func newBase(name string, cfg config.SourceConfig, client Doer, logger zerolog.Logger) base {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return base{
		cfg:    cfg,
		client: client,
		logger: logger.With().Str("source", name).Logger(),
	}
}

// MapCategoryToTPs returns the configured threat path ids for category. The
// result is a fresh slice and never nil.
func (b base) MapCategoryToTPs(category string) []string {
	ids := b.cfg.CategoryMapping[category]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

func (b base) userAgent() string {
	if b.cfg.UserAgent != "" {
		return b.cfg.UserAgent
	}
	return browserUserAgent
}

// get downloads url and returns the body. Non-2xx statuses are errors.
func (b base) get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", b.userAgent())
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code from %s: %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body from %s: %w", url, err)
	}
	if int64(len(body)) > maxBodyBytes {
		return nil, fmt.Errorf("%s: %w (%d bytes)", url, ErrBodyTooLarge, maxBodyBytes)
	}
	return body, nil
}
