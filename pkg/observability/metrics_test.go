package observability_test

import (
	"errors"
	"testing"

	"github.com/aretw0/stagehand/internal/runtime"
	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/merge"
	"github.com/aretw0/stagehand/pkg/observability"
	"github.com/aretw0/stagehand/pkg/transition"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	ID       string `json:"id"`
	Revision int    `json:"revision"`
}

var putDoc = transition.Must(transition.New("docs::put", transition.Builders[doc, doc]{
	Commit: transition.Identity[doc](),
}))

func newEngine(hooks domain.LifecycleHooks) *runtime.Engine[doc] {
	strategy := merge.New(
		func(d doc) string { return d.ID },
		func(existing, incoming doc) bool { return incoming.Revision > existing.Revision },
	)
	return runtime.NewEngine("docs", nil, strategy, func(ctx runtime.Context[doc], a domain.Action) domain.Entries[doc] {
		d, err := transition.DecodePayload[doc](a)
		if err != nil {
			return nil
		}
		return ctx.Create(d)
	}, runtime.WithLifecycleHooks(hooks))
}

func TestMetrics_RecordsLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	e := newEngine(m.Hooks())
	out := e.Initial()
	for _, a := range []domain.Action{
		putDoc.Commit("t0", doc{ID: "1", Revision: 2}),
		putDoc.Stage("t1", doc{ID: "1", Revision: 1}),
		putDoc.Stage("t2", doc{ID: "2"}),
		putDoc.Fail("t2", errors.New("offline")),
		putDoc.Stash("t9"),
	} {
		out = e.Process(out, a)
	}

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 6, count)

	samples, err := observability.Summary(reg)
	require.NoError(t, err)

	got := map[string]float64{}
	for _, s := range samples {
		got[s.Key()] = s.Value
	}
	assert.Equal(t, map[string]float64{
		`stagehand_conflicts_total{namespace="docs::put"}`:                           1,
		`stagehand_ignored_total{namespace="docs::put",reason="unknown_transition"}`: 1,
		`stagehand_pending_mutations{namespace="docs"}`:                              2,
		`stagehand_transitions_total{namespace="docs::put",operation="commit"}`:      1,
		`stagehand_transitions_total{namespace="docs::put",operation="fail"}`:        1,
		`stagehand_transitions_total{namespace="docs::put",operation="stage"}`:       2,
	}, got)
	assert.Len(t, out.Mutations, 2)
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	assert.ErrorContains(t, err, "failed to register metrics")
}

func TestSummary_SkipsForeignFamilies(t *testing.T) {
	reg := prometheus.NewRegistry()
	other := prometheus.NewCounter(prometheus.CounterOpts{Name: "other_total", Help: "x"})
	reg.MustRegister(other)
	other.Inc()

	samples, err := observability.Summary(reg)
	require.NoError(t, err)
	assert.Empty(t, samples)
}

func TestSample_Key(t *testing.T) {
	assert.Equal(t, "a", observability.Sample{Name: "a"}.Key())
	assert.Equal(t, `a{x="1",y="2"}`, observability.Sample{Name: "a", Labels: map[string]string{"y": "2", "x": "1"}}.Key())
}
