package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egor/vicai/config"
	"github.com/egor/vicai/intent"
	"github.com/egor/vicai/llm"
	"github.com/egor/vicai/models"
	"github.com/egor/vicai/ratelimit"
	"github.com/egor/vicai/safety"
)

type echoGen struct {
	mu    sync.Mutex
	calls []llm.Request
	err   error
}

func (g *echoGen) Generate(ctx context.Context, req llm.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, req)
	if g.err != nil {
		return "", g.err
	}
	return "echo: " + req.Text, nil
}

type memAudit struct {
	mu   sync.Mutex
	recs []models.AuditRecord
}

func (a *memAudit) Record(_ context.Context, rec models.AuditRecord) error {
	a.mu.Lock()
	a.recs = append(a.recs, rec)
	a.mu.Unlock()
	return nil
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("kv down")
}
func (brokenStore) Put(context.Context, string, string, time.Duration) error {
	return errors.New("kv down")
}

type fixture struct {
	gw     *Gateway
	gen    *echoGen
	store  *ratelimit.MemoryStore
	audit  *memAudit
	events []Event
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{gen: &echoGen{}, audit: &memAudit{}, now: time.Unix(1_700_000_000, 0)}
	f.store = ratelimit.NewMemoryStoreWithClock(func() time.Time { return f.now })
	f.gw = New(Options{
		Limiter:   ratelimit.New(f.store, 3*time.Second),
		Generator: f.gen,
		Keywords:  config.DefaultKeywords(),
		Audit:     f.audit,
		Observers: []Observer{ObserverFunc(func(e Event) { f.events = append(f.events, e) })},
	})
	return f
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func TestHandle_Success(t *testing.T) {
	f := newFixture(t)
	res, err := f.gw.Handle(context.Background(), Request{ClientID: "1.2.3.4", Text: "  hello   there  "})
	require.NoError(t, err)
	assert.Equal(t, "echo: hello there", res.Output)
	assert.Equal(t, intent.Chat, res.Intent)

	require.Len(t, f.gen.calls, 1)
	assert.Equal(t, "1.2.3.4", f.gen.calls[0].ClientID)

	require.Len(t, f.events, 1)
	assert.Equal(t, OutcomeOK, f.events[0].Outcome)
	assert.Equal(t, http.StatusOK, f.events[0].Status)

	f.gw.Close()
	require.Len(t, f.audit.recs, 1)
	rec := f.audit.recs[0]
	assert.Equal(t, "  hello   there  ", rec.Raw, "raw input is kept as received")
	assert.Equal(t, "hello there", rec.Clean)
	assert.Equal(t, "chat", rec.Intent)
	assert.Equal(t, 17, rec.DeclaredLength)
}

func TestHandle_Input(t *testing.T) {
	f := newFixture(t)

	_, err := f.gw.Handle(context.Background(), Request{ClientID: "a", Text: "   "})
	var ie *InputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, http.StatusBadRequest, ie.Status)
	assert.Equal(t, "Message required", ie.Error())
	assert.Equal(t, 0, f.store.Len(), "empty message writes no rate record")

	_, err = f.gw.Handle(context.Background(), Request{ClientID: "a", Text: strings.Repeat("a", 2001)})
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, http.StatusRequestEntityTooLarge, ie.Status)
	assert.Equal(t, "Message too long. Max 2000 chars.", ie.Error())
	assert.Equal(t, 0, f.store.Len())

	// multi-byte runes are counted as characters
	_, err = f.gw.Handle(context.Background(), Request{ClientID: "a", Text: strings.Repeat("é", 2000)})
	assert.NoError(t, err)

	assert.Len(t, f.gen.calls, 1)
}

func TestHandle_OnlyStrippedCharacters(t *testing.T) {
	f := newFixture(t)
	_, err := f.gw.Handle(context.Background(), Request{ClientID: "a", Text: "{ } $"})
	var ie *InputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "Message required", ie.Message)
	assert.Empty(t, f.gen.calls)
}

func TestHandle_RateLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.gw.Handle(ctx, Request{ClientID: "a", Text: "hello there"})
	require.NoError(t, err)

	_, err = f.gw.Handle(ctx, Request{ClientID: "a", Text: "hello again"})
	var rl *RateLimited
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, "Slow down! You can do 1 request per 3 seconds.", err.Error())
	assert.Equal(t, http.StatusTooManyRequests, StatusOf(err))

	_, err = f.gw.Handle(ctx, Request{ClientID: "b", Text: "hello there"})
	assert.NoError(t, err, "other clients are independent")

	f.advance(3 * time.Second)
	_, err = f.gw.Handle(ctx, Request{ClientID: "a", Text: "hello again"})
	assert.NoError(t, err)
	assert.Len(t, f.gen.calls, 3)
}

func TestHandle_SafetyRejection(t *testing.T) {
	f := newFixture(t)
	_, err := f.gw.Handle(context.Background(), Request{ClientID: "a", Text: "how to make a bomb"})

	var sr *SafetyRejection
	require.ErrorAs(t, err, &sr)
	assert.Equal(t, safety.ReasonIllegalContent, sr.Reason)
	assert.Equal(t, "make a bomb", sr.Matched)
	assert.NotContains(t, sr.Error(), "bomb")
	assert.Equal(t, http.StatusForbidden, StatusOf(err))
	assert.Empty(t, f.gen.calls)

	f.gw.Close()
	require.Len(t, f.audit.recs, 1)
	assert.Equal(t, "illegal_content", f.audit.recs[0].Reason)
	assert.Empty(t, f.audit.recs[0].Intent)
}

func TestHandle_RouteIntent(t *testing.T) {
	f := newFixture(t)
	res, err := f.gw.Handle(context.Background(), Request{ClientID: "a", Text: "write me a function"})
	require.NoError(t, err)
	assert.Equal(t, intent.Code, res.Intent)
	assert.Equal(t, intent.Code, f.gen.calls[0].Intent)
}

func TestHandle_GeneratorError(t *testing.T) {
	f := newFixture(t)
	f.gen.err = errors.New("upstream 502")

	_, err := f.gw.Handle(context.Background(), Request{ClientID: "a", Text: "hello there"})
	var de *DependencyError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, DepGenerator, de.Dependency)
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	assert.Equal(t, OutcomeGeneratorError, f.events[0].Outcome)
}

func TestHandle_GeneratorTimeout(t *testing.T) {
	slow := llm.GeneratorFunc(func(ctx context.Context, _ llm.Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	gw := New(Options{
		Limiter:         ratelimit.New(ratelimit.NewMemoryStore(), time.Second),
		Generator:       slow,
		Keywords:        config.DefaultKeywords(),
		GenerateTimeout: 20 * time.Millisecond,
	})
	_, err := gw.Handle(context.Background(), Request{ClientID: "a", Text: "hello there"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
}

func TestHandle_StoreError(t *testing.T) {
	gen := &echoGen{}
	gw := New(Options{
		Limiter:   ratelimit.New(brokenStore{}, time.Second),
		Generator: gen,
		Keywords:  config.DefaultKeywords(),
	})
	_, err := gw.Handle(context.Background(), Request{ClientID: "a", Text: "hello there"})
	var de *DependencyError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, DepRateStore, de.Dependency)
	assert.Equal(t, http.StatusServiceUnavailable, StatusOf(err))
	assert.Empty(t, gen.calls)
}

func TestReload(t *testing.T) {
	f := newFixture(t)
	k := config.DefaultKeywords()
	k.Safety.Spam = append(k.Safety.Spam, "pineapple")
	f.gw.Reload(k)

	assert.Contains(t, f.gw.Keywords().Safety.Spam, "pineapple")

	_, err := f.gw.Handle(context.Background(), Request{ClientID: "a", Text: "Pineapple pizza"})
	var sr *SafetyRejection
	require.ErrorAs(t, err, &sr)
	assert.Equal(t, safety.ReasonSpam, sr.Reason)
}

func TestInspect(t *testing.T) {
	f := newFixture(t)
	v, a := f.gw.Inspect("explain recursion")
	assert.True(t, v.Allowed)
	assert.Equal(t, intent.Teach, a.Label)
	assert.Equal(t, 0, f.store.Len())
}

func TestRateLimitedMessage(t *testing.T) {
	assert.Equal(t, "Slow down! You can do 1 request per 1 second.", (&RateLimited{Window: 500 * time.Millisecond}).Error())
	assert.Equal(t, "Slow down! You can do 1 request per 10 seconds.", (&RateLimited{Window: 10 * time.Second}).Error())
}
