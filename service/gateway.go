// Package service runs a chat message through validation, rate limiting,
// keyword filtering, intent classification and the generator.
package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/egor/vicai/config"
	"github.com/egor/vicai/intent"
	"github.com/egor/vicai/llm"
	"github.com/egor/vicai/logging"
	"github.com/egor/vicai/models"
	"github.com/egor/vicai/ratelimit"
	"github.com/egor/vicai/safety"
)

// AuditSink stores request outcomes.
type AuditSink interface {
	Record(ctx context.Context, rec models.AuditRecord) error
}

type Options struct {
	Limiter   *ratelimit.Limiter
	Generator llm.Generator
	Keywords  config.Keywords

	MaxChars        int           // default 2000
	GenerateTimeout time.Duration // default 30s

	Audit        AuditSink // optional
	AuditTimeout time.Duration

	Logger    *logging.Logger
	Observers []Observer
}

// Request is one inbound message.
type Request struct {
	ClientID string
	Text     string
}

// Result is a successful reply.
type Result struct {
	Output string
	Intent intent.Label
}

type rules struct {
	keywords   config.Keywords
	filter     *safety.Filter
	classifier *intent.Classifier
}

func compile(k config.Keywords) *rules {
	return &rules{
		keywords:   k,
		filter:     safety.NewFilter(k.Safety),
		classifier: intent.NewClassifier(k.Classifier),
	}
}

// Gateway is safe for concurrent use.
type Gateway struct {
	opts    Options
	log     *logging.Logger
	rules   atomic.Pointer[rules]
	pending sync.WaitGroup
}

func New(opts Options) *Gateway {
	if opts.MaxChars <= 0 {
		opts.MaxChars = 2000
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = 30 * time.Second
	}
	if opts.AuditTimeout <= 0 {
		opts.AuditTimeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	g := &Gateway{opts: opts, log: opts.Logger}
	g.rules.Store(compile(opts.Keywords))
	return g
}

// Reload swaps the keyword lists. Requests in flight keep the old ones.
func (g *Gateway) Reload(k config.Keywords) {
	g.rules.Store(compile(k))
	g.log.Info("keywords reloaded", map[string]int{
		"illegal":   len(k.Safety.Illegal),
		"injection": len(k.Safety.Injection),
		"spam":      len(k.Safety.Spam),
		"unsafe":    len(k.Classifier.Unsafe),
		"code":      len(k.Classifier.Code),
		"teach":     len(k.Classifier.Teach),
	})
}

func (g *Gateway) Keywords() config.Keywords { return g.rules.Load().keywords }

// Inspect runs the filter and the classifier only; nothing is recorded.
func (g *Gateway) Inspect(text string) (safety.Verdict, intent.Analysis) {
	r := g.rules.Load()
	v := r.filter.Check(text)
	return v, r.classifier.Analyze(text)
}

// Handle processes req. Failures are one of *InputError, *RateLimited,
// *SafetyRejection or *DependencyError.
func (g *Gateway) Handle(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	rec := models.AuditRecord{
		ID:             uuid.New(),
		ClientID:       req.ClientID,
		Raw:            req.Text,
		DeclaredLength: utf8.RuneCountInString(req.Text),
	}

	res, err := g.handle(ctx, req, &rec)
	g.finish(rec, res, err, time.Since(start))
	return res, err
}

func (g *Gateway) handle(ctx context.Context, req Request, rec *models.AuditRecord) (Result, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return Result{}, errMessageRequired
	}
	if utf8.RuneCountInString(text) > g.opts.MaxChars {
		return Result{}, tooLong(g.opts.MaxChars)
	}

	d, err := g.opts.Limiter.CheckAndRecord(ctx, req.ClientID)
	if err != nil {
		return Result{}, &DependencyError{Dependency: DepRateStore, Err: err}
	}
	if !d.Allowed {
		return Result{}, &RateLimited{Window: g.opts.Limiter.Window()}
	}

	r := g.rules.Load()
	v := r.filter.Check(text)
	if !v.Allowed {
		return Result{}, &SafetyRejection{Reason: v.Reason, Matched: v.Matched}
	}
	rec.Clean = v.SanitizedText
	// input made only of stripped characters
	if v.SanitizedText == "" {
		return Result{}, errMessageRequired
	}

	label := r.classifier.Classify(v.SanitizedText)
	rec.Intent = string(label)

	gctx, cancel := context.WithTimeout(ctx, g.opts.GenerateTimeout)
	defer cancel()

	out, err := g.opts.Generator.Generate(gctx, llm.Request{
		ClientID: req.ClientID,
		Text:     v.SanitizedText,
		Intent:   label,
	})
	if err != nil {
		return Result{Intent: label}, &DependencyError{Dependency: DepGenerator, Err: err}
	}
	return Result{Output: out, Intent: label}, nil
}

func (g *Gateway) finish(rec models.AuditRecord, res Result, err error, latency time.Duration) {
	ev := Event{
		ID:       rec.ID,
		ClientID: rec.ClientID,
		Intent:   res.Intent,
		Latency:  latency,
		At:       time.Now().UTC(),
	}
	ev.Outcome, ev.Reason, ev.Status = classify(err)

	switch ev.Outcome {
	case OutcomeRejected:
		var sr *SafetyRejection
		errors.As(err, &sr)
		g.log.Warn("message rejected", map[string]string{
			"client": rec.ClientID, "reason": string(sr.Reason), "matched": sr.Matched,
		})
	case OutcomeGeneratorError, OutcomeStoreError:
		g.log.Error("dependency failed", map[string]string{
			"client": rec.ClientID, "error": err.Error(),
		})
	}

	rec.Reason = ev.Reason
	rec.Status = ev.Status
	rec.CreatedAt = ev.At
	g.audit(rec)

	for _, o := range g.opts.Observers {
		o.Observe(ev)
	}
}

// classify maps a Handle error to outcome, reason and HTTP status.
func classify(err error) (Outcome, string, int) {
	var (
		ie *InputError
		rl *RateLimited
		sr *SafetyRejection
		de *DependencyError
	)
	switch {
	case err == nil:
		return OutcomeOK, string(safety.ReasonSafe), http.StatusOK
	case errors.As(err, &ie):
		return OutcomeInvalid, "invalid_input", ie.Status
	case errors.As(err, &rl):
		return OutcomeRateLimited, "rate_limited", http.StatusTooManyRequests
	case errors.As(err, &sr):
		return OutcomeRejected, string(sr.Reason), http.StatusForbidden
	case errors.As(err, &de) && de.Dependency == DepRateStore:
		return OutcomeStoreError, "store_error", de.Status()
	default:
		return OutcomeGeneratorError, "generator_error", http.StatusInternalServerError
	}
}

// StatusOf is the HTTP status for an error returned by Handle.
func StatusOf(err error) int {
	_, _, status := classify(err)
	return status
}

// audit writes rec off the request path.
func (g *Gateway) audit(rec models.AuditRecord) {
	if g.opts.Audit == nil {
		return
	}
	g.pending.Add(1)
	go func() {
		defer g.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), g.opts.AuditTimeout)
		defer cancel()
		if err := g.opts.Audit.Record(ctx, rec); err != nil {
			g.log.Warn("audit write failed", map[string]string{"id": rec.ID.String(), "error": err.Error()})
		}
	}()
}

// Close waits for pending audit writes.
func (g *Gateway) Close() {
	g.pending.Wait()
}
