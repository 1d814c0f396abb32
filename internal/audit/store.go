// Package audit persists asset mutation history in PostgreSQL.
//
// The audit log is optional. When no database is configured the asset
// service runs with a no-op recorder and nothing in this package is used.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/JonMunkholm/assetrepo/internal/asset"
	"github.com/JonMunkholm/assetrepo/internal/config"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS asset_audit_log (
	id            UUID PRIMARY KEY,
	action        TEXT NOT NULL,
	severity      TEXT NOT NULL,
	asset_key     TEXT,
	query         TEXT,
	ip_address    INET,
	user_agent    TEXT,
	row_data      JSONB,
	old_values    JSONB,
	new_values    JSONB,
	rows_affected INTEGER,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS asset_audit_log_created_at_idx ON asset_audit_log (created_at DESC);
CREATE INDEX IF NOT EXISTS asset_audit_log_asset_key_idx ON asset_audit_log (asset_key);
`

const selectColumns = `SELECT id, action, severity, asset_key, query, ip_address, user_agent,
	row_data, old_values, new_values, rows_affected, created_at
	FROM asset_audit_log`

// Entry is one stored audit record.
type Entry struct {
	ID           string              `json:"id"`
	Action       asset.AuditAction   `json:"action"`
	Severity     asset.AuditSeverity `json:"severity"`
	AssetKey     string              `json:"assetKey,omitempty"`
	Query        string              `json:"query,omitempty"`
	IPAddress    string              `json:"ipAddress,omitempty"`
	UserAgent    string              `json:"userAgent,omitempty"`
	RowData      map[string]string   `json:"rowData,omitempty"`
	OldValues    map[string]string   `json:"oldValues,omitempty"`
	NewValues    map[string]string   `json:"newValues,omitempty"`
	RowsAffected int                 `json:"rowsAffected,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
}

// Store records and queries audit entries.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store over pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens a connection pool for the audit database and pings it.
func Connect(ctx context.Context, cfg config.AuditConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse audit database url: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create audit pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping audit database: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the audit table and its indexes if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

// Record stores one mutation event. It satisfies asset.AuditRecorder.
func (s *Store) Record(ctx context.Context, event asset.AuditEvent) error {
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}

	_, err := s.pool.Exec(ctx, `INSERT INTO asset_audit_log
		(id, action, severity, asset_key, query, ip_address, user_agent,
		 row_data, old_values, new_values, rows_affected, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		pgtype.UUID{Bytes: uuid.New(), Valid: true},
		string(event.Action),
		string(asset.SeverityFor(event.Action)),
		toPgText(event.AssetKey),
		toPgText(event.Query),
		parseIP(event.IPAddress),
		toPgText(event.UserAgent),
		marshalValues(event.RowData),
		marshalValues(event.OldValues),
		marshalValues(event.NewValues),
		toPgInt4(event.RowsAffected),
		occurred,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// List returns entries matching filter, newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Entry, error) {
	where, args := filter.where()
	limit, offset := filter.page()
	q := selectColumns + where + fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	entries, err := pgx.CollectRows(rows, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("scan audit log: %w", err)
	}
	return entries, nil
}

// Purge deletes entries created before cutoff and returns how many went.
func (s *Store) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM asset_audit_log WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge audit log: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanEntry(row pgx.CollectableRow) (Entry, error) {
	var (
		id           pgtype.UUID
		action       string
		severity     string
		assetKey     pgtype.Text
		query        pgtype.Text
		ipAddress    *netip.Addr
		userAgent    pgtype.Text
		rowData      []byte
		oldValues    []byte
		newValues    []byte
		rowsAffected pgtype.Int4
		createdAt    pgtype.Timestamptz
	)
	err := row.Scan(&id, &action, &severity, &assetKey, &query, &ipAddress, &userAgent,
		&rowData, &oldValues, &newValues, &rowsAffected, &createdAt)
	if err != nil {
		return Entry{}, err
	}

	e := Entry{
		ID:        uuidString(id),
		Action:    asset.AuditAction(action),
		Severity:  asset.AuditSeverity(severity),
		AssetKey:  assetKey.String,
		Query:     query.String,
		UserAgent: userAgent.String,
		RowData:   unmarshalValues(rowData),
		OldValues: unmarshalValues(oldValues),
		NewValues: unmarshalValues(newValues),
		CreatedAt: createdAt.Time,
	}
	if ipAddress != nil {
		e.IPAddress = ipAddress.String()
	}
	if rowsAffected.Valid {
		e.RowsAffected = int(rowsAffected.Int32)
	}
	return e, nil
}

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgInt4(i int) pgtype.Int4 {
	if i == 0 {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(i), Valid: true}
}

func uuidString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}

// parseIP strips a port if present. Unparseable addresses are stored as NULL.
func parseIP(s string) *netip.Addr {
	if s == "" {
		return nil
	}
	host := s
	if h, _, err := net.SplitHostPort(s); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return nil
	}
	return &addr
}

// marshalValues encodes m as JSON, nil when empty.
func marshalValues(m map[string]string) []byte {
	if len(m) == 0 {
		return nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return b
}

func unmarshalValues(b []byte) map[string]string {
	if len(b) == 0 {
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}
