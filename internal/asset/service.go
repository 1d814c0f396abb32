package asset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/JonMunkholm/assetrepo/internal/logging"
	"github.com/JonMunkholm/assetrepo/internal/table"
	"golang.org/x/sync/semaphore"
)

// TableStore loads and persists the whole inventory table.
// Satisfied by *table.Store.
type TableStore interface {
	Load(ctx context.Context) (*table.Table, error)
	LoadHeaders(ctx context.Context) (table.HeaderList, error)
	Save(ctx context.Context, t *table.Table) error
	Open(ctx context.Context) (*os.File, os.FileInfo, error)
}

// Service provides the asset operations.
type Service struct {
	store  TableStore
	audit  AuditRecorder
	writer *semaphore.Weighted
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithAuditRecorder sets where mutation events are recorded.
func WithAuditRecorder(r AuditRecorder) Option {
	return func(s *Service) {
		if r != nil {
			s.audit = r
		}
	}
}

// NewService creates a Service over store.
func NewService(store TableStore, opts ...Option) *Service {
	s := &Service{
		store:  store,
		audit:  nopRecorder{},
		writer: semaphore.NewWeighted(1),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckSchema loads the header list and returns the identity fields it lacks.
// Missing fields are logged; lookups on them can never match.
func (s *Service) CheckSchema(ctx context.Context) ([]string, error) {
	headers, err := s.store.LoadHeaders(ctx)
	if err != nil {
		return nil, fmt.Errorf("check schema: %w", err)
	}
	missing := headers.Missing(identityNames()...)
	if len(missing) > 0 {
		slog.Warn("asset table is missing identity columns", "missing", missing)
	}
	return missing, nil
}

// Search returns the first asset whose identity fields match query.
func (s *Service) Search(ctx context.Context, query string) (table.Row, error) {
	t, err := s.store.Load(ctx)
	if err != nil {
		return table.Row{}, err
	}
	row, ok := Find(t.Rows, query)
	if !ok {
		return table.Row{}, ErrNotFound
	}
	return row, nil
}

// Headers returns the column names of the table, in column order.
func (s *Service) Headers(ctx context.Context) ([]string, error) {
	headers, err := s.store.LoadHeaders(ctx)
	if err != nil {
		return nil, err
	}
	return headers.Names(), nil
}

// Update merges updated over the first asset matching query and saves the table.
// Identity uniqueness is not re-checked.
func (s *Service) Update(ctx context.Context, query string, updated table.Row) (table.Row, error) {
	var before, after table.Row
	err := s.mutate(ctx, func(t *table.Table) error {
		i := FindIndex(t.Rows, query)
		if i < 0 {
			return ErrNotFound
		}
		before = t.Rows[i]
		after = before.Merge(updated)
		t.Rows[i] = after
		return nil
	})
	if err != nil {
		return table.Row{}, err
	}

	old, changed := diff(before, after)
	logging.FromContext(ctx).Info("asset updated",
		"query", query,
		"asset", assetKey(after),
		"fields_changed", len(changed),
	)
	s.record(ctx, AuditEvent{
		Action:       ActionUpdate,
		Query:        query,
		AssetKey:     assetKey(after),
		RowData:      before.Map(),
		OldValues:    old,
		NewValues:    changed,
		RowsAffected: 1,
	})
	return after, nil
}

// Add appends newAsset unless one of its identity values already exists in
// the same field. The row is stored as given, without normalising its keys.
func (s *Service) Add(ctx context.Context, newAsset table.Row) error {
	if newAsset.Len() == 0 {
		return fmt.Errorf("%w: no fields", ErrInvalidRecord)
	}
	err := s.mutate(ctx, func(t *table.Table) error {
		if fields := conflicts(t.Rows, newAsset); len(fields) > 0 {
			return &ConflictError{Fields: fields}
		}
		t.Rows = append(t.Rows, newAsset.Clone())
		return nil
	})
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Info("asset added", "asset", assetKey(newAsset))
	s.record(ctx, AuditEvent{
		Action:       ActionAdd,
		AssetKey:     assetKey(newAsset),
		RowData:      newAsset.Map(),
		RowsAffected: 1,
	})
	return nil
}

// Delete removes every asset with an identity field equal to query and
// returns how many rows were removed.
func (s *Service) Delete(ctx context.Context, query string) (int, error) {
	var removed []table.Row
	err := s.mutate(ctx, func(t *table.Table) error {
		kept := t.Rows[:0:0]
		for _, row := range t.Rows {
			if Matches(row, query) {
				removed = append(removed, row)
				continue
			}
			kept = append(kept, row)
		}
		if len(removed) == 0 {
			return ErrNotFound
		}
		t.Rows = kept
		return nil
	})
	if err != nil {
		return 0, err
	}

	logging.FromContext(ctx).Info("asset deleted", "query", query, "rows", len(removed))
	s.record(ctx, AuditEvent{
		Action:       ActionDelete,
		Query:        query,
		AssetKey:     assetKey(removed[0]),
		RowData:      removed[0].Map(),
		RowsAffected: len(removed),
	})
	return len(removed), nil
}

// OpenTable opens the raw table file for download. The caller closes it.
func (s *Service) OpenTable(ctx context.Context) (*os.File, os.FileInfo, error) {
	return s.store.Open(ctx)
}

// mutate runs load, fn and save as one critical section. fn returning an
// error aborts without saving.
func (s *Service) mutate(ctx context.Context, fn func(t *table.Table) error) error {
	if err := s.writer.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.writer.Release(1)

	t, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(t); err != nil {
		return err
	}
	if err := s.store.Save(ctx, t); err != nil {
		return fmt.Errorf("save asset table: %w", err)
	}
	return nil
}

// record hands event to the audit recorder, filling request metadata.
// Failures are logged only.
func (s *Service) record(ctx context.Context, event AuditEvent) {
	event.IPAddress = IPAddressFromContext(ctx)
	event.UserAgent = UserAgentFromContext(ctx)
	event.OccurredAt = s.now()

	if err := s.audit.Record(ctx, event); err != nil {
		logging.FromContext(ctx).Warn("audit record failed",
			"action", event.Action,
			"asset", event.AssetKey,
			"error", err,
		)
	}
}
