package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/five82/tally/internal/api"
	"github.com/five82/tally/internal/batch"
	"github.com/five82/tally/internal/forms"
	"github.com/five82/tally/internal/grid"
	"github.com/five82/tally/internal/state"
)

const (
	defaultTimeout = 10 * time.Second
	categoryColumn = "category"
)

// ErrNotMounted is returned when saving a scope that has no table loaded.
var ErrNotMounted = errors.New("no table loaded for scope")

// Options configure a Syncer.
type Options struct {
	Role    grid.Role
	Timeout time.Duration // per fetch or mutation; zero uses 10s
	Saver   *batch.Saver  // nil builds one with default options
	Logger  *slog.Logger
}

// Syncer runs fetch-render cycles and re-syncs a scope after every mutation.
type Syncer struct {
	api     api.TableAPI
	store   *state.Store
	role    grid.Role
	saver   *batch.Saver
	timeout time.Duration
	logger  *slog.Logger
}

// New returns a Syncer mounting views into store.
func New(client api.TableAPI, store *state.Store, opts Options) *Syncer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	saver := opts.Saver
	if saver == nil {
		saver = batch.NewSaver(client, batch.Options{Logger: logger})
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Syncer{
		api:     client,
		store:   store,
		role:    opts.Role,
		saver:   saver,
		timeout: timeout,
		logger:  logger,
	}
}

// Role returns the acting role.
func (s *Syncer) Role() grid.Role {
	return s.role
}

// Store returns the mount store views are rendered into.
func (s *Syncer) Store() *state.Store {
	return s.store
}

// PolicyFor returns the editability policy of a scope's table.
func (s *Syncer) PolicyFor(scope api.Scope) grid.Policy {
	if scope.Kind == api.ScopeBudget {
		return grid.BudgetPolicy(s.role)
	}
	return grid.ExpensePolicy(s.role)
}

// Load fetches scope, renders it and mounts the result. On failure an error
// view is mounted and the error is returned as well.
func (s *Syncer) Load(ctx context.Context, scope api.Scope) (*grid.View, error) {
	return s.load(ctx, scope, nil)
}

// LoadFiltered is Load with a numeric filter applied to the fetched rows
// before rendering.
func (s *Syncer) LoadFiltered(ctx context.Context, scope api.Scope, f grid.Filter) (*grid.View, error) {
	return s.load(ctx, scope, &f)
}

func (s *Syncer) load(ctx context.Context, scope api.Scope, f *grid.Filter) (*grid.View, error) {
	view, err := s.render(ctx, scope, f)
	s.store.Mount(scope, view, f)
	return view, err
}

// Refresh fetches scope again with the filter it is mounted with and renders
// the result without mounting it. The caller decides whether the new view
// may replace the current one, which it must not while edits are pending.
func (s *Syncer) Refresh(ctx context.Context, scope api.Scope) (*grid.View, *grid.Filter, error) {
	var f *grid.Filter
	if m, ok := s.store.Get(scope); ok {
		f = m.Filter
	}
	view, err := s.render(ctx, scope, f)
	return view, f, err
}

func (s *Syncer) render(ctx context.Context, scope api.Scope, f *grid.Filter) (*grid.View, error) {
	policy := s.PolicyFor(scope)
	logger := s.logger.With("scope", scope.Key())

	env, err := s.fetch(ctx, scope)
	if err != nil {
		logger.Warn("load failed", "error", err)
		return grid.Failed(err, policy), err
	}

	ds := grid.FromEnvelope(env)
	if f != nil {
		ds = f.Apply(ds)
	}
	view := grid.Render(ds, policy)
	logger.Debug("table rendered", "rows", len(view.Rows), "columns", len(view.Columns), "filtered", f != nil)
	return view, nil
}

func (s *Syncer) fetch(ctx context.Context, scope api.Scope) (api.Envelope, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.api.Fetch(ctx, scope)
}

// Categories lists expense categories, taken from the budget table.
func (s *Syncer) Categories(ctx context.Context) ([]string, error) {
	env, err := s.fetch(ctx, api.BudgetScope())
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	cats := grid.FromEnvelope(env).Distinct(categoryColumn)
	sort.Strings(cats)
	return cats, nil
}

// Scopes returns the tabs for the role: budget, one per category, and the
// child-expenses tab for the privileged role.
func (s *Syncer) Scopes(ctx context.Context) ([]api.Scope, error) {
	scopes := []api.Scope{api.BudgetScope()}
	cats, err := s.Categories(ctx)
	for _, c := range cats {
		scopes = append(scopes, api.CategoryScope(c))
	}
	if s.role.Privileged() {
		scopes = append(scopes, api.ChildScope())
	}
	return scopes, err
}

// AddExpense validates the form, creates the expense and reloads scope.
func (s *Syncer) AddExpense(ctx context.Context, scope api.Scope, form forms.AddExpense) (*grid.View, error) {
	in, err := form.Validate()
	if err != nil {
		return nil, err
	}
	if err := s.mutate(ctx, func(ctx context.Context) error { return s.api.AddExpense(ctx, in) }); err != nil {
		return nil, fmt.Errorf("add expense: %w", err)
	}
	s.logger.Info("expense added", "category", in.Category, "amount", in.Amount)
	return s.Load(ctx, scope)
}

// DeleteRow deletes an expense row and reloads scope.
func (s *Syncer) DeleteRow(ctx context.Context, scope api.Scope, rowID string) (*grid.View, error) {
	if !s.role.Privileged() {
		return nil, fmt.Errorf("delete row %s: role %q may not delete", rowID, s.role)
	}
	if scope.Kind == api.ScopeBudget {
		return nil, fmt.Errorf("delete row %s: budget rows are removed by category", rowID)
	}
	if err := s.mutate(ctx, func(ctx context.Context) error { return s.api.DeleteExpense(ctx, rowID) }); err != nil {
		return nil, fmt.Errorf("delete row %s: %w", rowID, err)
	}
	s.logger.Info("expense deleted", "scope", scope.Key(), "row_id", rowID)
	return s.Load(ctx, scope)
}

// Save flushes the pending edits of scope's mounted view. When the tracker
// ends up empty the scope is reloaded so the table shows server truth; rows
// kept pending by the reset policy stay on screen instead.
func (s *Syncer) Save(ctx context.Context, scope api.Scope) (batch.Report, error) {
	view := s.store.View(scope)
	if view == nil || view.Failed() {
		return batch.Report{}, fmt.Errorf("save %s: %w", scope.Key(), ErrNotMounted)
	}

	flushCtx, cancel := context.WithTimeout(ctx, s.timeout)
	report := s.saver.Flush(flushCtx, scope.Table(), view.Tracker())
	cancel()

	if report.Nothing {
		return report, nil
	}
	s.logger.Info("batch save settled",
		"scope", scope.Key(),
		"rows", len(report.Results),
		"failed", len(report.Failed()),
		"policy", s.saver.Policy().String(),
	)
	if view.Tracker().Empty() {
		if _, err := s.Load(ctx, scope); err != nil {
			return report, fmt.Errorf("reload after save: %w", err)
		}
	}
	return report, nil
}

// UploadCSV checks the file name, then uploads the file. The caller reloads
// whichever scope is showing.
func (s *Syncer) UploadCSV(ctx context.Context, path string) error {
	if err := forms.CheckCSVName(path); err != nil {
		return err
	}
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := s.mutate(ctx, func(ctx context.Context) error {
		return s.api.UploadCSV(ctx, filepath.Base(path), file)
	}); err != nil {
		return fmt.Errorf("upload %s: %w", filepath.Base(path), err)
	}
	s.logger.Info("csv uploaded", "file", filepath.Base(path))
	return nil
}

func (s *Syncer) mutate(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return fn(ctx)
}
