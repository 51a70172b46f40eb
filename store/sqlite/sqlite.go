/*
Package sqlite provides a SQLite-backed implementation of the payroll
collaborator interfaces.

PURPOSE:
  Persists imported operating days, the rate schedule and the history of
  generated reports. The payroll engine never reads the database itself;
  handlers load shifts and rates through the interfaces below and pass them
  in.

INTERFACES IMPLEMENTED:
  payroll.ShiftSource: Imported operating days by scope
  payroll.RateStore:   Role defaults and staff overrides

KEY TABLES:
  shift_days:     One row per (brand, outlet, day); payload is the provider
                  wire JSON, decoded with provider.Decode on read
  role_rates:     Role default rates
  rate_overrides: Staff overrides; a NULL field falls through to the role
  report_runs:    Audit trail of generated reports

MONEY:
  Rates and totals are stored as decimal TEXT, never REAL.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, on top of WAL mode.

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  shifts, err := store.LoadShifts(ctx, scope)
  schedule, err := store.LoadSchedule(ctx)

SEE ALSO:
  - payroll/store.go: Interface definitions
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/outlet-payroll/payroll"
	"github.com/warp/outlet-payroll/provider"
)

// Store implements the payroll storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ payroll.ShiftSource = (*Store)(nil)
	_ payroll.RateStore   = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	if strings.Contains(dbPath, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Imported operating days (provider wire JSON)
	CREATE TABLE IF NOT EXISTS shift_days (
		brand_id TEXT NOT NULL,
		outlet_id TEXT NOT NULL,
		day TEXT NOT NULL,
		payload_json TEXT NOT NULL,
		fetched_at TEXT NOT NULL,
		PRIMARY KEY (brand_id, outlet_id, day)
	);

	CREATE INDEX IF NOT EXISTS idx_shift_days_day
		ON shift_days(day);

	-- Role default rates
	CREATE TABLE IF NOT EXISTS role_rates (
		role TEXT PRIMARY KEY,
		regular TEXT NOT NULL,
		overtime TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Staff overrides
	CREATE TABLE IF NOT EXISTS rate_overrides (
		staff_id TEXT PRIMARY KEY,
		regular TEXT,
		overtime TEXT,
		updated_at TEXT NOT NULL
	);

	-- Generated reports
	CREATE TABLE IF NOT EXISTS report_runs (
		id TEXT PRIMARY KEY,
		brand_id TEXT,
		outlet_id TEXT,
		from_day TEXT NOT NULL,
		to_day TEXT NOT NULL,
		source TEXT NOT NULL,
		total_payroll TEXT NOT NULL,
		total_hours TEXT NOT NULL,
		total_shifts INTEGER NOT NULL,
		distinct_staff INTEGER NOT NULL,
		warnings INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_report_runs_created
		ON report_runs(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SHIFT DAYS - payroll.ShiftSource
// =============================================================================

// SaveShiftDay stores one operating day under its day key, replacing any
// earlier import of the same (brand, outlet, day).
func (s *Store) SaveShiftDay(ctx context.Context, day string, shift payroll.ShiftContext) error {
	payload, err := json.Marshal(provider.FromShift(shift))
	if err != nil {
		return fmt.Errorf("encode shift day: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO shift_days (brand_id, outlet_id, day, payload_json, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(brand_id, outlet_id, day) DO UPDATE SET
			payload_json = excluded.payload_json,
			fetched_at = excluded.fetched_at
	`
	_, err = s.db.ExecContext(ctx, query,
		shift.BrandID, shift.OutletID, day, string(payload),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// LoadShifts returns the stored days in scope ordered by day, brand, outlet.
func (s *Store) LoadShifts(ctx context.Context, scope payroll.Scope) ([]payroll.ShiftContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var where []string
	var args []any
	if scope.BrandID != "" {
		where = append(where, "brand_id = ?")
		args = append(args, scope.BrandID)
	}
	if scope.OutletID != "" {
		where = append(where, "outlet_id = ?")
		args = append(args, scope.OutletID)
	}
	if scope.From != "" {
		where = append(where, "day >= ?")
		args = append(args, scope.From)
	}
	if scope.To != "" {
		where = append(where, "day <= ?")
		args = append(args, scope.To)
	}

	query := "SELECT brand_id, outlet_id, day, payload_json FROM shift_days"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY day, brand_id, outlet_id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []payroll.ShiftContext
	for rows.Next() {
		var brandID, outletID, day, payload string
		if err := rows.Scan(&brandID, &outletID, &day, &payload); err != nil {
			return nil, err
		}
		shift, err := provider.Decode(bytes.NewReader([]byte(payload)), brandID, outletID)
		if err != nil {
			return nil, fmt.Errorf("shift day %s/%s/%s: %w", brandID, outletID, day, err)
		}
		shifts = append(shifts, shift)
	}
	return shifts, rows.Err()
}

// ShiftDayCount returns the number of stored days.
func (s *Store) ShiftDayCount(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM shift_days").Scan(&n)
	return n, err
}

// =============================================================================
// RATES - payroll.RateStore
// =============================================================================

// LoadSchedule reads role defaults and overrides into a RateSchedule.
func (s *Store) LoadSchedule(ctx context.Context) (payroll.RateSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schedule := payroll.RateSchedule{
		Roles:     make(map[string]payroll.Rate),
		Overrides: make(map[payroll.StaffID]payroll.RateOverride),
	}

	rows, err := s.db.QueryContext(ctx, "SELECT role, regular, overtime FROM role_rates")
	if err != nil {
		return payroll.RateSchedule{}, err
	}
	for rows.Next() {
		var role, regular, overtime string
		if err := rows.Scan(&role, &regular, &overtime); err != nil {
			rows.Close()
			return payroll.RateSchedule{}, err
		}
		r := payroll.Rate{Regular: parseDecimal(regular), Overtime: parseDecimal(overtime)}
		schedule.Roles[role] = r
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return payroll.RateSchedule{}, err
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx, "SELECT staff_id, regular, overtime FROM rate_overrides")
	if err != nil {
		return payroll.RateSchedule{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var staffID string
		var regular, overtime sql.NullString
		if err := rows.Scan(&staffID, &regular, &overtime); err != nil {
			return payroll.RateSchedule{}, err
		}
		schedule.Overrides[payroll.StaffID(staffID)] = payroll.NewOverride(
			nullDecimal(regular), nullDecimal(overtime),
		)
	}
	return schedule, rows.Err()
}

// SaveRoleRate upserts a role default.
func (s *Store) SaveRoleRate(ctx context.Context, role string, rate payroll.Rate) error {
	if err := payroll.ValidateRate("roles."+role, rate); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return saveRoleRate(ctx, s.db, role, rate)
}

func saveRoleRate(ctx context.Context, db interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}, role string, rate payroll.Rate) error {
	query := `
		INSERT INTO role_rates (role, regular, overtime, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(role) DO UPDATE SET
			regular = excluded.regular,
			overtime = excluded.overtime,
			updated_at = excluded.updated_at
	`
	_, err := db.ExecContext(ctx, query,
		role, rate.Regular.String(), rate.Overtime.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// ReplaceRoleRates swaps the whole role table in one transaction.
func (s *Store) ReplaceRoleRates(ctx context.Context, roles map[string]payroll.Rate) error {
	for role, r := range roles {
		if err := payroll.ValidateRate("roles."+role, r); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer sqlTx.Rollback()

	if _, err := sqlTx.ExecContext(ctx, "DELETE FROM role_rates"); err != nil {
		return err
	}
	for role, r := range roles {
		if err := saveRoleRate(ctx, sqlTx, role, r); err != nil {
			return err
		}
	}
	return sqlTx.Commit()
}

// DeleteRoleRate removes a role default. Staff with that role fall back to
// the global rate.
func (s *Store) DeleteRoleRate(ctx context.Context, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM role_rates WHERE role = ?", role)
	return err
}

// SaveOverride upserts a staff override. An empty override deletes it.
func (s *Store) SaveOverride(ctx context.Context, staffID payroll.StaffID, o payroll.RateOverride) error {
	if o.IsEmpty() {
		return s.DeleteOverride(ctx, staffID)
	}
	if err := (payroll.RateSchedule{Overrides: map[payroll.StaffID]payroll.RateOverride{staffID: o}}).Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO rate_overrides (staff_id, regular, overtime, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(staff_id) DO UPDATE SET
			regular = excluded.regular,
			overtime = excluded.overtime,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		string(staffID), decimalString(o.Regular), decimalString(o.Overtime),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// DeleteOverride removes a staff override.
func (s *Store) DeleteOverride(ctx context.Context, staffID payroll.StaffID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM rate_overrides WHERE staff_id = ?", string(staffID))
	return err
}

// =============================================================================
// REPORT RUNS
// =============================================================================

// ReportRun records one generated report.
type ReportRun struct {
	ID            string
	BrandID       string
	OutletID      string
	From          string
	To            string
	Source        string // store, provider
	TotalPayroll  decimal.Decimal
	TotalHours    decimal.Decimal
	TotalShifts   int
	DistinctStaff int
	Warnings      int
	CreatedAt     time.Time
}

// SaveReportRun saves a report run.
func (s *Store) SaveReportRun(ctx context.Context, r ReportRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO report_runs (id, brand_id, outlet_id, from_day, to_day, source,
			total_payroll, total_hours, total_shifts, distinct_staff, warnings, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		r.ID, nullString(r.BrandID), nullString(r.OutletID), r.From, r.To, r.Source,
		r.TotalPayroll.String(), r.TotalHours.String(),
		r.TotalShifts, r.DistinctStaff, r.Warnings,
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// ListReportRuns returns the most recent runs first. limit <= 0 returns all.
func (s *Store) ListReportRuns(ctx context.Context, limit int) ([]ReportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, brand_id, outlet_id, from_day, to_day, source,
			total_payroll, total_hours, total_shifts, distinct_staff, warnings, created_at
		FROM report_runs
		ORDER BY created_at DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []ReportRun
	for rows.Next() {
		var r ReportRun
		var brandID, outletID sql.NullString
		var totalPayroll, totalHours, createdAt string
		if err := rows.Scan(
			&r.ID, &brandID, &outletID, &r.From, &r.To, &r.Source,
			&totalPayroll, &totalHours, &r.TotalShifts, &r.DistinctStaff, &r.Warnings, &createdAt,
		); err != nil {
			return nil, err
		}
		r.BrandID = brandID.String
		r.OutletID = outletID.String
		r.TotalPayroll = parseDecimal(totalPayroll)
		r.TotalHours = parseDecimal(totalHours)
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"shift_days", "role_rates", "rate_overrides", "report_runs"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func decimalString(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func nullDecimal(ns sql.NullString) *decimal.Decimal {
	if !ns.Valid {
		return nil
	}
	d := parseDecimal(ns.String)
	return &d
}

// parseDecimal reads a value this package wrote; a corrupt value reads as zero.
func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
