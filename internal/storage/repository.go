// Package storage is the local SQLite backend. It implements the same Store
// ports as the remote client and additionally tracks a per-transaction sync
// status used by the background sync worker.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"deltafin/internal/core"
	"deltafin/internal/store"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrateSchema(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const categoryColumns = "id, name, icon, type, is_default, sort_order, description, created_at"

func scanCategory(row interface{ Scan(...any) error }) (core.Category, error) {
	var c core.Category
	var isDefault int
	err := row.Scan(&c.ID, &c.Name, &c.Icon, &c.Type, &isDefault, &c.Order, &c.Description, &c.CreatedAt)
	if err != nil {
		return core.Category{}, err
	}
	c.IsDefault = isDefault != 0
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	const op = "storage.ListCategories"
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+categoryColumns+" FROM categories ORDER BY name COLLATE NOCASE ASC")
	if err != nil {
		return nil, store.NewError(store.KindNetwork, op, err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, store.NewError(store.KindNetwork, op, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	const op = "storage.CreateCategory"
	if err := c.Validate(); err != nil {
		return core.Category{}, store.NewError(store.KindValidation, op, err)
	}
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (id, name, icon, type, is_default, sort_order, description, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		c.ID, c.Name, c.Icon, c.Type, boolToInt(c.IsDefault), c.Order, c.Description, c.CreatedAt)
	if err != nil {
		return core.Category{}, store.NewError(store.KindNetwork, op, err)
	}
	return c, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, id string, upd store.CategoryUpdate) (core.Category, error) {
	const op = "storage.UpdateCategory"
	c, err := r.getCategory(ctx, op, id)
	if err != nil {
		return core.Category{}, err
	}
	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.Icon != nil {
		c.Icon = *upd.Icon
	}
	if upd.Type != nil {
		c.Type = *upd.Type
	}
	if upd.IsDefault != nil {
		c.IsDefault = *upd.IsDefault
	}
	if upd.Order != nil {
		c.Order = *upd.Order
	}
	if upd.Description != nil {
		c.Description = *upd.Description
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, store.NewError(store.KindValidation, op, err)
	}
	_, err = r.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, icon = ?, type = ?, is_default = ?, sort_order = ?, description = ? WHERE id = ?",
		c.Name, c.Icon, c.Type, boolToInt(c.IsDefault), c.Order, c.Description, id)
	if err != nil {
		return core.Category{}, store.NewError(store.KindNetwork, op, err)
	}
	return c, nil
}

// DeleteCategory removes the category and clears the name on transactions
// that referenced it, in a single sqlite transaction.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	const op = "storage.DeleteCategory"
	c, err := r.getCategory(ctx, op, id)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return store.NewError(store.KindNetwork, op, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id); err != nil {
		return store.NewError(store.KindNetwork, op, err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE transactions SET category_name = '' WHERE category_name = ?", c.Name); err != nil {
		return store.NewError(store.KindNetwork, op, err)
	}
	if err := tx.Commit(); err != nil {
		return store.NewError(store.KindNetwork, op, err)
	}
	return nil
}

func (r *SQLiteRepository) getCategory(ctx context.Context, op, id string) (core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = ?", id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, store.NewError(store.KindNotFound, op, err)
	}
	if err != nil {
		return core.Category{}, store.NewError(store.KindNetwork, op, err)
	}
	return c, nil
}

const transactionColumns = "id, amount_cents, description, category_name, date, tags, type, created_at"

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var t core.Transaction
	var date, tags string
	err := row.Scan(&t.ID, &t.Amount.Cents, &t.Description, &t.CategoryName, &date, &tags, &t.Type, &t.CreatedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	d, err := core.ParseISODate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", t.ID, err)
	}
	t.Date = d
	if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s tags: %w", t.ID, err)
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, month *time.Time) ([]core.Transaction, error) {
	const op = "storage.ListTransactions"
	query := "SELECT " + transactionColumns + " FROM transactions"
	var args []any
	if month != nil {
		start := core.NewDate(month.Year(), int(month.Month()), 1)
		end := core.DateOf(time.Date(month.Year(), month.Month()+1, 0, 0, 0, 0, 0, time.UTC))
		query += " WHERE date >= ? AND date <= ?"
		args = append(args, start.ISO(), end.ISO())
	}
	query += " ORDER BY date DESC, created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewError(store.KindNetwork, op, err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, store.NewError(store.KindNetwork, op, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	const op = "storage.CreateTransaction"
	if err := t.Validate(); err != nil {
		return core.Transaction{}, store.NewError(store.KindValidation, op, err)
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	t.CreatedAt = time.Now().UTC()
	tags, err := json.Marshal(t.Tags)
	if err != nil {
		return core.Transaction{}, store.NewError(store.KindValidation, op, err)
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO transactions (id, amount_cents, description, category_name, date, tags, type, created_at, sync_status, version) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'pending', 1)",
		t.ID, t.Amount.Cents, t.Description, t.CategoryName, t.Date.ISO(), string(tags), t.Type, t.CreatedAt)
	if err != nil {
		return core.Transaction{}, store.NewError(store.KindNetwork, op, err)
	}
	return t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, id string, upd store.TransactionUpdate) (core.Transaction, error) {
	const op = "storage.UpdateTransaction"
	t, err := r.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if upd.Amount != nil {
		t.Amount = *upd.Amount
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.CategoryName != nil {
		t.CategoryName = *upd.CategoryName
	}
	if upd.Date != nil {
		t.Date = *upd.Date
	}
	if upd.Tags != nil {
		t.Tags = *upd.Tags
	}
	if upd.Type != nil {
		t.Type = *upd.Type
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, store.NewError(store.KindValidation, op, err)
	}
	tags, err := json.Marshal(t.Tags)
	if err != nil {
		return core.Transaction{}, store.NewError(store.KindValidation, op, err)
	}
	// Any edit re-queues the row for sync with a bumped version.
	_, err = r.db.ExecContext(ctx,
		"UPDATE transactions SET amount_cents = ?, description = ?, category_name = ?, date = ?, tags = ?, type = ?, sync_status = 'pending', version = version + 1 WHERE id = ?",
		t.Amount.Cents, t.Description, t.CategoryName, t.Date.ISO(), string(tags), t.Type, id)
	if err != nil {
		return core.Transaction{}, store.NewError(store.KindNetwork, op, err)
	}
	return t, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	const op = "storage.DeleteTransaction"
	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return store.NewError(store.KindNetwork, op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.NewError(store.KindNetwork, op, err)
	}
	if n == 0 {
		return store.NewError(store.KindNotFound, op, sql.ErrNoRows)
	}
	return nil
}

// GetTransaction retrieves a single transaction by ID.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	const op = "storage.GetTransaction"
	row := r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, store.NewError(store.KindNotFound, op, err)
	}
	if err != nil {
		return core.Transaction{}, store.NewError(store.KindNetwork, op, err)
	}
	return t, nil
}

const goalColumns = "id, name, target_amount_cents, current_amount_cents, target_date, description, created_at, updated_at"

func scanGoal(row interface{ Scan(...any) error }) (core.SavingsGoal, error) {
	var g core.SavingsGoal
	var targetDate string
	err := row.Scan(&g.ID, &g.Name, &g.TargetAmount.Cents, &g.CurrentAmount.Cents, &targetDate, &g.Description, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	d, err := core.ParseISODate(targetDate)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("goal %s: %w", g.ID, err)
	}
	g.TargetDate = d
	return g, nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	const op = "storage.ListGoals"
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+goalColumns+" FROM savings_goals ORDER BY created_at DESC")
	if err != nil {
		return nil, store.NewError(store.KindNetwork, op, err)
	}
	defer rows.Close()

	var out []core.SavingsGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, store.NewError(store.KindNetwork, op, err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	const op = "storage.CreateGoal"
	g.CurrentAmount = core.Money{}
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, store.NewError(store.KindValidation, op, err)
	}
	g.ID = uuid.NewString()
	g.CreatedAt = time.Now().UTC()
	g.UpdatedAt = g.CreatedAt
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO savings_goals (id, name, target_amount_cents, current_amount_cents, target_date, description, created_at, updated_at) VALUES (?, ?, ?, 0, ?, ?, ?, ?)",
		g.ID, g.Name, g.TargetAmount.Cents, g.TargetDate.ISO(), g.Description, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return core.SavingsGoal{}, store.NewError(store.KindNetwork, op, err)
	}
	return g, nil
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, id string, upd store.GoalUpdate) (core.SavingsGoal, error) {
	const op = "storage.UpdateGoal"
	g, err := r.getGoal(ctx, op, id)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	if upd.Name != nil {
		g.Name = *upd.Name
	}
	if upd.TargetAmount != nil {
		g.TargetAmount = *upd.TargetAmount
	}
	if upd.TargetDate != nil {
		g.TargetDate = *upd.TargetDate
	}
	if upd.Description != nil {
		g.Description = *upd.Description
	}
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, store.NewError(store.KindValidation, op, err)
	}
	g.UpdatedAt = time.Now().UTC()
	_, err = r.db.ExecContext(ctx,
		"UPDATE savings_goals SET name = ?, target_amount_cents = ?, target_date = ?, description = ?, updated_at = ? WHERE id = ?",
		g.Name, g.TargetAmount.Cents, g.TargetDate.ISO(), g.Description, g.UpdatedAt, id)
	if err != nil {
		return core.SavingsGoal{}, store.NewError(store.KindNetwork, op, err)
	}
	return g, nil
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id string) error {
	const op = "storage.DeleteGoal"
	res, err := r.db.ExecContext(ctx, "DELETE FROM savings_goals WHERE id = ?", id)
	if err != nil {
		return store.NewError(store.KindNetwork, op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.NewError(store.KindNetwork, op, err)
	}
	if n == 0 {
		return store.NewError(store.KindNotFound, op, sql.ErrNoRows)
	}
	return nil
}

// AddContribution appends the ledger row and bumps the goal in one sqlite
// transaction.
func (r *SQLiteRepository) AddContribution(ctx context.Context, goalID string, c core.GoalContribution) (core.SavingsGoal, error) {
	const op = "storage.AddContribution"
	c.GoalID = goalID
	if err := c.Validate(); err != nil {
		return core.SavingsGoal{}, store.NewError(store.KindValidation, op, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.SavingsGoal{}, store.NewError(store.KindNetwork, op, err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		"INSERT INTO goal_contributions (id, goal_id, amount_cents, description, created_at) VALUES (?, ?, ?, ?, ?)",
		uuid.NewString(), goalID, c.Amount.Cents, c.Description, now)
	if err != nil {
		return core.SavingsGoal{}, store.NewError(store.KindNetwork, op, err)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE savings_goals SET current_amount_cents = current_amount_cents + ?, updated_at = ? WHERE id = ?",
		c.Amount.Cents, now, goalID)
	if err != nil {
		return core.SavingsGoal{}, store.NewError(store.KindNetwork, op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.SavingsGoal{}, store.NewError(store.KindNetwork, op, err)
	}
	if n == 0 {
		return core.SavingsGoal{}, store.NewError(store.KindNotFound, op, sql.ErrNoRows)
	}

	row := tx.QueryRowContext(ctx,
		"SELECT "+goalColumns+" FROM savings_goals WHERE id = ?", goalID)
	g, err := scanGoal(row)
	if err != nil {
		return core.SavingsGoal{}, store.NewError(store.KindNetwork, op, err)
	}
	if err := tx.Commit(); err != nil {
		return core.SavingsGoal{}, store.NewError(store.KindNetwork, op, err)
	}
	return g, nil
}

func (r *SQLiteRepository) ListContributions(ctx context.Context, goalID string) ([]core.GoalContribution, error) {
	const op = "storage.ListContributions"
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, goal_id, amount_cents, description, created_at FROM goal_contributions WHERE goal_id = ? ORDER BY created_at DESC", goalID)
	if err != nil {
		return nil, store.NewError(store.KindNetwork, op, err)
	}
	defer rows.Close()

	var out []core.GoalContribution
	for rows.Next() {
		var c core.GoalContribution
		if err := rows.Scan(&c.ID, &c.GoalID, &c.Amount.Cents, &c.Description, &c.CreatedAt); err != nil {
			return nil, store.NewError(store.KindNetwork, op, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) getGoal(ctx context.Context, op, id string) (core.SavingsGoal, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+goalColumns+" FROM savings_goals WHERE id = ?", id)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SavingsGoal{}, store.NewError(store.KindNotFound, op, err)
	}
	if err != nil {
		return core.SavingsGoal{}, store.NewError(store.KindNetwork, op, err)
	}
	return g, nil
}

// PendingSyncTransaction carries the minimal data a sync queue message needs.
type PendingSyncTransaction struct {
	ID        string
	Version   int64
	CreatedAt time.Time
}

// GetPendingSyncTransactions returns transactions waiting to be pushed to the
// remote store, oldest first.
func (r *SQLiteRepository) GetPendingSyncTransactions(ctx context.Context, limit int) ([]PendingSyncTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, version, created_at FROM transactions WHERE sync_status = 'pending' ORDER BY created_at ASC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	defer rows.Close()

	var out []PendingSyncTransaction
	for rows.Next() {
		var p PendingSyncTransaction
		if err := rows.Scan(&p.ID, &p.Version, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending sync transaction: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkSynced marks a transaction as successfully pushed to the remote store.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET sync_status = 'synced', synced_at = ? WHERE id = ?",
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	return nil
}

// MarkSyncError marks a transaction as having failed to sync.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET sync_status = 'error' WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
