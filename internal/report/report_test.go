package report

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/and161185/monitoring-bot/internal/prometheus"
	"github.com/and161185/monitoring-bot/internal/utils"
	"github.com/and161185/monitoring-bot/model"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBackend struct {
	mu     sync.Mutex
	values map[string]float64
	errs   map[string]error
	calls  map[string]int
}

func (f *fakeBackend) Query(_ context.Context, expr string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[expr]++
	if err, ok := f.errs[expr]; ok {
		return 0, err
	}
	if v, ok := f.values[expr]; ok {
		return v, nil
	}
	return 0, prometheus.ErrNoData
}

var fixedNow = time.Date(2026, 10, 17, 12, 30, 45, 123, time.FixedZone("MSK", 3*60*60))

func newAggregator(b querier) *Aggregator {
	return NewAggregator(model.DefaultMetrics(), b, zap.NewNop().Sugar()).
		WithClock(func() time.Time { return fixedNow })
}

func TestFormatLine(t *testing.T) {
	require.Equal(t, "CPU: 42.7%", FormatLine(model.ReportLine{Name: "CPU", Value: utils.F64Ptr(42.7)}))
	require.Equal(t, "CPU: 42.7%", FormatLine(model.ReportLine{Name: "CPU", Value: utils.F64Ptr(42.66)}))
	require.Equal(t, "Disk: 0.0%", FormatLine(model.ReportLine{Name: "Disk", Value: utils.F64Ptr(0)}))
	require.Equal(t, "Memory: N/A%", FormatLine(model.ReportLine{Name: "Memory"}))
}

func TestBuild_MixedResults(t *testing.T) {
	defs := model.DefaultMetrics()
	b := &fakeBackend{
		values: map[string]float64{defs[0].Query: 55.3},
		errs:   map[string]error{defs[1].Query: errors.New("connection refused")},
	}

	rep := newAggregator(b).Build(context.Background())

	require.Equal(t, fixedNow.UTC(), rep.GeneratedAt)
	require.Len(t, rep.Lines, 4)
	for i, d := range defs {
		require.Equal(t, d.Name, rep.Lines[i].Name)
		require.Equal(t, 1, b.calls[d.Query], "metric %s must be queried exactly once", d.Name)
	}
	require.InDelta(t, 55.3, *rep.Lines[0].Value, 1e-9)
	require.Nil(t, rep.Lines[1].Value)
	require.Nil(t, rep.Lines[2].Value)
	require.Nil(t, rep.Lines[3].Value)
}

func TestBuild_NaNIsPlaceholder(t *testing.T) {
	defs := model.DefaultMetrics()
	b := &fakeBackend{values: map[string]float64{defs[3].Query: math.NaN()}}

	rep := newAggregator(b).Build(context.Background())
	require.Nil(t, rep.Lines[3].Value)
}

func TestText(t *testing.T) {
	defs := model.DefaultMetrics()
	b := &fakeBackend{values: map[string]float64{defs[0].Query: 55.3, defs[2].Query: 71.04}}

	text := newAggregator(b).Text(context.Background())
	lines := strings.Split(text, "\n")

	require.Equal(t, []string{
		"*System Status — 2026-10-17T09:30:45 UTC*",
		"CPU: 55.3%",
		"Memory: N/A%",
		"Disk: 71.0%",
		"Temperature: N/A%",
	}, lines)
}

func TestBuild_NoCaching(t *testing.T) {
	defs := model.DefaultMetrics()
	b := &fakeBackend{values: map[string]float64{defs[0].Query: 1}}
	a := newAggregator(b)

	a.Build(context.Background())
	a.Build(context.Background())

	for _, d := range defs {
		require.Equal(t, 2, b.calls[d.Query])
	}
}

type slowBackend struct {
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (s *slowBackend) Query(ctx context.Context, _ string) (float64, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		old := s.maxSeen.Load()
		if n <= old || s.maxSeen.CompareAndSwap(old, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	return 1, nil
}

func TestBuild_Parallelism(t *testing.T) {
	b := &slowBackend{}
	a := NewAggregator(model.DefaultMetrics(), b, zap.NewNop().Sugar()).WithParallelism(1)

	rep := a.Build(context.Background())
	require.Len(t, rep.Lines, 4)
	require.EqualValues(t, 1, b.maxSeen.Load())
	for _, l := range rep.Lines {
		require.NotNil(t, l.Value)
	}
}

func TestBuild_NoMetrics(t *testing.T) {
	a := NewAggregator(nil, &fakeBackend{}, zap.NewNop().Sugar()).WithClock(func() time.Time { return fixedNow })

	require.Equal(t, "*System Status — 2026-10-17T09:30:45 UTC*", a.Text(context.Background()))
}
