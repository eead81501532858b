package records

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"net/netip"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

//go:embed schema.sql
var schemaSQL string

// SQLiteProvider persists the record set in a single-table SQLite
// database. It honors the same full-snapshot contract as the file
// provider: SaveAll replaces the table contents in one transaction.
type SQLiteProvider struct {
	db   *sql.DB
	path string
}

// NewSQLiteProvider opens (or creates) the database at path.
func NewSQLiteProvider(path string) (*SQLiteProvider, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, wrapIO("open database", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return &SQLiteProvider{db: db, path: path}, nil
}

// Initialize applies the embedded schema. Idempotent.
func (p *SQLiteProvider) Initialize(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schemaSQL); err != nil {
		return wrapIO("apply schema", err)
	}
	slog.Info("record database ready", "path", p.path)
	return nil
}

// HealthCheck pings the database.
func (p *SQLiteProvider) HealthCheck(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return wrapIO("ping database", err)
	}
	return nil
}

// LoadAll reads every row. Rows that no longer parse, such as a
// hand-edited ip column, are logged and skipped.
func (p *SQLiteProvider) LoadAll(ctx context.Context) (map[string]Record, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, ip, ttl, record_type, class, value, created_at, updated_at
		FROM records
	`)
	if err != nil {
		return nil, wrapIO("query records", err)
	}
	defer rows.Close()

	recs := make(map[string]Record)
	for rows.Next() {
		var (
			rec              Record
			ip, value        sql.NullString
			created, updated string
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &ip, &rec.TTL, &rec.RecordType,
			&rec.Class, &value, &created, &updated); err != nil {
			return nil, fmt.Errorf("%w: scan record: %v", ErrSerialization, err)
		}
		if ip.Valid && ip.String != "" {
			addr, err := netip.ParseAddr(ip.String)
			if err != nil {
				slog.Warn("skipping record with invalid ip", "id", rec.ID, "ip", ip.String)
				continue
			}
			rec.IP = &addr
		}
		if value.Valid {
			v := value.String
			rec.Value = &v
		}
		rec.CreatedAt, err = parseStoredTime(created)
		if err != nil {
			slog.Warn("skipping record with invalid created_at", "id", rec.ID, "created_at", created)
			continue
		}
		rec.UpdatedAt, err = parseStoredTime(updated)
		if err != nil {
			slog.Warn("skipping record with invalid updated_at", "id", rec.ID, "updated_at", updated)
			continue
		}
		recs[rec.ID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, wrapIO("iterate records", err)
	}
	return recs, nil
}

// SaveAll replaces the table contents with exactly these records.
func (p *SQLiteProvider) SaveAll(ctx context.Context, recs map[string]Record) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapIO("begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return wrapIO("clear records", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (id, name, ip, ttl, record_type, class, value, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return wrapIO("prepare insert", err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		var ip, value any
		if rec.IP != nil {
			ip = rec.IP.String()
		}
		if rec.Value != nil {
			value = *rec.Value
		}
		if _, err := stmt.ExecContext(ctx, rec.ID, rec.Name, ip, rec.TTL,
			rec.RecordType, rec.Class, value,
			formatStoredTime(rec.CreatedAt), formatStoredTime(rec.UpdatedAt)); err != nil {
			return wrapIO(fmt.Sprintf("insert record %s", rec.ID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrapIO("commit", err)
	}
	return nil
}

// Close closes the underlying pool.
func (p *SQLiteProvider) Close() error { return p.db.Close() }

func formatStoredTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseStoredTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
