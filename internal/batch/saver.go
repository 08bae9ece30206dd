package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/five82/tally/internal/api"
	"github.com/five82/tally/internal/edits"
)

// ResetPolicy decides what happens to the tracker once every row update has
// settled.
type ResetPolicy int

const (
	// ResetAfterSettle clears all pending edits, including those of rows whose
	// update failed.
	ResetAfterSettle ResetPolicy = iota
	// ResetOnFullSuccess clears only the rows that saved and keeps failed rows
	// pending for another attempt.
	ResetOnFullSuccess
)

// ParseResetPolicy maps a config value to a policy. Empty means ResetAfterSettle.
func ParseResetPolicy(s string) (ResetPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "after_settle":
		return ResetAfterSettle, nil
	case "full_success":
		return ResetOnFullSuccess, nil
	default:
		return ResetAfterSettle, fmt.Errorf("unknown reset policy %q (want after_settle or full_success)", s)
	}
}

func (p ResetPolicy) String() string {
	if p == ResetOnFullSuccess {
		return "full_success"
	}
	return "after_settle"
}

// Updater sends one partial row update.
type Updater interface {
	UpdateRow(ctx context.Context, req api.UpdateRequest) error
}

// Tracker is the part of edits.Tracker a flush needs.
type Tracker interface {
	Drain() edits.Set
	Reset()
	Forget(rowIDs ...string)
}

var _ Tracker = (*edits.Tracker)(nil)

// Options configure a Saver.
type Options struct {
	Policy      ResetPolicy
	MaxInFlight int // zero sends every row at once
	Logger      *slog.Logger
}

// Saver flushes pending edits as one update request per dirty row.
type Saver struct {
	updater     Updater
	policy      ResetPolicy
	maxInFlight int
	logger      *slog.Logger
}

// NewSaver returns a Saver that sends updates through u.
func NewSaver(u Updater, opts Options) *Saver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Saver{
		updater:     u,
		policy:      opts.Policy,
		maxInFlight: opts.MaxInFlight,
		logger:      logger,
	}
}

// Policy returns the configured reset policy.
func (s *Saver) Policy() ResetPolicy {
	return s.policy
}

// Flush drains tr and sends every dirty row concurrently. A failing row never
// cancels its siblings. The tracker is reset according to the policy only
// after all requests have settled.
func (s *Saver) Flush(ctx context.Context, table string, tr Tracker) Report {
	pending := tr.Drain()
	if len(pending) == 0 {
		return Report{Table: table, Nothing: true}
	}

	ids := make([]string, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}
	sortRowIDs(ids)

	results := make([]RowResult, len(ids))
	var g errgroup.Group
	if s.maxInFlight > 0 {
		g.SetLimit(s.maxInFlight)
	}
	for i, id := range ids {
		i, id := i, id
		changes := pending[id]
		g.Go(func() error {
			err := s.updater.UpdateRow(ctx, api.UpdateRequest{
				Table:   table,
				RowID:   id,
				Updates: changes,
			})
			results[i] = RowResult{RowID: id, Columns: columnsOf(changes), Err: err}
			if err != nil {
				s.logger.Warn("row update failed", "table", table, "row_id", id, "error", err)
			} else {
				s.logger.Info("row updated", "table", table, "row_id", id, "columns", len(changes))
			}
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Table: table, Results: results}
	report.Cleared = s.settle(tr, report)
	return report
}

func (s *Saver) settle(tr Tracker, report Report) bool {
	switch s.policy {
	case ResetOnFullSuccess:
		if len(report.Failed()) == 0 {
			tr.Reset()
			return true
		}
		var saved []string
		for _, r := range report.Results {
			if r.Err == nil {
				saved = append(saved, r.RowID)
			}
		}
		tr.Forget(saved...)
		return false
	default:
		tr.Reset()
		return true
	}
}

func columnsOf(changes map[string]string) []string {
	cols := make([]string, 0, len(changes))
	for c := range changes {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}
