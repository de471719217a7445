package council

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/okian/assessor/internal/domain/model"
	"github.com/okian/assessor/pkg/logger"
	"github.com/okian/assessor/pkg/metrics"
)

// Consultation bounds.
const (
	DefaultTimeout = 30 * time.Second
	MaxTimeout     = 30 * time.Second
	DefaultDomain  = "coding"
)

// Consultation outcomes reported to metrics.
const (
	outcomeOK      = "ok"
	outcomeError   = "error"
	outcomeTimeout = "timeout"
	outcomeEmpty   = "empty"
)

// Option applies a configuration option to the Adapter.
type Option func(*Adapter)

// WithDomain records the persona preset the consulter was built for.
func WithDomain(domain string) Option {
	return func(a *Adapter) {
		if domain != "" {
			a.domain = domain
		}
	}
}

// WithTimeout bounds a single consultation. Values above 30s are capped.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		if d > 0 {
			a.timeout = min(d, MaxTimeout)
		}
	}
}

// WithLogger sets the adapter logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// Adapter implements InsightProvider over a Consulter.
type Adapter struct {
	consulter Consulter
	domain    string
	timeout   time.Duration
	logger    logger.Logger
}

// NewAdapter wraps c. A nil consulter yields an adapter that is never
// available.
func NewAdapter(c Consulter, opts ...Option) *Adapter {
	a := &Adapter{
		consulter: c,
		domain:    DefaultDomain,
		timeout:   DefaultTimeout,
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Available reports whether a consulter is configured.
func (a *Adapter) Available() bool { return a != nil && a.consulter != nil }

// Domain returns the persona preset name.
func (a *Adapter) Domain() string { return a.domain }

// Timeout returns the per-consultation bound.
func (a *Adapter) Timeout() time.Duration { return a.timeout }

// GetInsights consults the council about content. Every failure is logged
// and reported as no insights.
func (a *Adapter) GetInsights(ctx context.Context, content map[string]any, path model.PathType) (*Insights, bool) {
	if !a.Available() {
		return nil, false
	}
	text := model.ExtractText(content)
	if strings.TrimSpace(text) == "" {
		return nil, false
	}

	cctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	res, err := a.consult(cctx, BuildQuery(text, path))
	if err != nil {
		outcome := outcomeError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(cctx.Err(), context.DeadlineExceeded) {
			outcome = outcomeTimeout
		}
		metrics.RecordCouncilOutcome(outcome)
		metrics.RecordErrorByComponent("council", outcome)
		a.logger.Warn(ctx, "council consultation failed",
			logger.String("path", string(path)),
			logger.String("outcome", outcome),
			logger.Duration("elapsed", time.Since(start)),
			logger.Error(err),
		)
		return nil, false
	}
	if strings.TrimSpace(res.Synthesis) == "" {
		metrics.RecordCouncilOutcome(outcomeEmpty)
		a.logger.Warn(ctx, "council returned empty synthesis", logger.String("path", string(path)))
		return nil, false
	}
	metrics.RecordCouncilOutcome(outcomeOK)

	insights := &Insights{
		Synthesis:  res.Synthesis,
		Responses:  res.Responses,
		Confidence: InsightConfidence,
	}
	if score, ok := ParseScore(res.Synthesis); ok {
		insights.Score = &score
	}
	a.logger.Debug(ctx, "council consultation complete",
		logger.String("path", string(path)),
		logger.String("domain", a.domain),
		logger.Int("responses", len(res.Responses)),
		logger.Duration("elapsed", time.Since(start)),
	)
	return insights, true
}

type consultResult struct {
	res Consultation
	err error
}

// consult returns once ctx is done even if the consulter ignores it.
func (a *Adapter) consult(ctx context.Context, query string) (Consultation, error) {
	done := make(chan consultResult, 1)
	go func() {
		res, err := a.consulter.Consult(ctx, query)
		done <- consultResult{res: res, err: err}
	}()
	select {
	case r := <-done:
		return r.res, r.err
	case <-ctx.Done():
		return Consultation{}, ctx.Err()
	}
}
