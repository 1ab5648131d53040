// Package report builds the /status text from metrics backend queries.
package report

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/and161185/monitoring-bot/internal/utils"
	"github.com/and161185/monitoring-bot/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Placeholder replaces a value that could not be obtained.
const Placeholder = "N/A"

type querier interface {
	Query(ctx context.Context, expr string) (float64, error)
}

// Aggregator queries every metric definition once per report.
type Aggregator struct {
	metrics  []model.MetricDefinition
	backend  querier
	logger   *zap.SugaredLogger
	now      func() time.Time
	parallel int
}

func NewAggregator(metrics []model.MetricDefinition, backend querier, logger *zap.SugaredLogger) *Aggregator {
	return &Aggregator{
		metrics:  append([]model.MetricDefinition(nil), metrics...),
		backend:  backend,
		logger:   logger,
		now:      time.Now,
		parallel: len(metrics),
	}
}

// WithClock replaces the time source used for report headers.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// WithParallelism limits the number of queries in flight; n <= 0 means one per metric.
func (a *Aggregator) WithParallelism(n int) *Aggregator {
	if n <= 0 {
		n = len(a.metrics)
	}
	a.parallel = n
	return a
}

// Build queries all metrics. A failed metric never fails the report: its value stays nil.
func (a *Aggregator) Build(ctx context.Context) model.Report {
	rep := model.Report{
		GeneratedAt: a.now().UTC(),
		Lines:       make([]model.ReportLine, len(a.metrics)),
	}

	var g errgroup.Group
	if a.parallel > 0 {
		g.SetLimit(a.parallel)
	}
	for i, m := range a.metrics {
		i, m := i, m
		rep.Lines[i].Name = m.Name
		g.Go(func() error {
			v, err := a.backend.Query(ctx, m.Query)
			if err != nil {
				a.logger.Warnw("metric query failed", "metric", m.Name, "error", err)
				return nil
			}
			if math.IsNaN(v) {
				a.logger.Warnw("metric query returned NaN", "metric", m.Name)
				return nil
			}
			rep.Lines[i].Value = utils.F64Ptr(v)
			return nil
		})
	}
	_ = g.Wait()

	return rep
}

// Text builds a report and renders it.
func (a *Aggregator) Text(ctx context.Context) string {
	return Format(a.Build(ctx))
}

// Format renders a report as Telegram Markdown: a bold header with the UTC
// timestamp, then "<name>: <value>%" per metric.
func Format(rep model.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*System Status — %s UTC*", rep.GeneratedAt.UTC().Format("2006-01-02T15:04:05"))
	for _, l := range rep.Lines {
		sb.WriteString("\n")
		sb.WriteString(FormatLine(l))
	}
	return sb.String()
}

func FormatLine(l model.ReportLine) string {
	if l.Value == nil {
		return fmt.Sprintf("%s: %s%%", l.Name, Placeholder)
	}
	return fmt.Sprintf("%s: %.1f%%", l.Name, *l.Value)
}
