// Package state holds the in-memory snapshot of the three entity lists and
// coordinates store calls. Reads are served from the snapshot; every write
// goes through the store and then refreshes the affected list.
package state

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"deltafin/internal/core"
	"deltafin/internal/log"
	"deltafin/internal/store"
)

// Status is the per-entity load state.
type Status struct {
	Busy bool
	Err  error
}

// Container owns the entity snapshots. All methods are safe for concurrent
// use.
type Container struct {
	store  store.Store
	logger *log.Logger

	mu           sync.RWMutex
	categories   []core.Category
	transactions []core.Transaction
	goals        []core.SavingsGoal

	categoryStatus    Status
	transactionStatus Status
	goalStatus        Status
}

func NewContainer(s store.Store, logger *log.Logger) *Container {
	return &Container{
		store:  s,
		logger: logger.WithComponent(log.ComponentState),
	}
}

// LoadAll refreshes the three snapshots concurrently. The first error is
// returned, but every list that loaded successfully is still installed.
func (c *Container) LoadAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.loadCategories(ctx) })
	g.Go(func() error { return c.loadTransactions(ctx) })
	g.Go(func() error { return c.loadGoals(ctx) })
	return g.Wait()
}

func (c *Container) loadCategories(ctx context.Context) error {
	c.setCategoryStatus(Status{Busy: true})
	cats, err := c.store.ListCategories(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categoryStatus = Status{Err: err}
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to load categories", log.FieldError, err)
		return err
	}
	c.categories = cats
	return nil
}

func (c *Container) loadTransactions(ctx context.Context) error {
	c.setTransactionStatus(Status{Busy: true})
	txs, err := c.store.ListTransactions(ctx, nil)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transactionStatus = Status{Err: err}
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to load transactions", log.FieldError, err)
		return err
	}
	c.transactions = txs
	return nil
}

func (c *Container) loadGoals(ctx context.Context) error {
	c.setGoalStatus(Status{Busy: true})
	goals, err := c.store.ListGoals(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.goalStatus = Status{Err: err}
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to load goals", log.FieldError, err)
		return err
	}
	c.goals = goals
	return nil
}

func (c *Container) setCategoryStatus(s Status) {
	c.mu.Lock()
	c.categoryStatus = s
	c.mu.Unlock()
}

func (c *Container) setTransactionStatus(s Status) {
	c.mu.Lock()
	c.transactionStatus = s
	c.mu.Unlock()
}

func (c *Container) setGoalStatus(s Status) {
	c.mu.Lock()
	c.goalStatus = s
	c.mu.Unlock()
}

// Categories returns a copy of the category snapshot.
func (c *Container) Categories() []core.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]core.Category(nil), c.categories...)
}

// Transactions returns a copy of the transaction snapshot.
func (c *Container) Transactions() []core.Transaction {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]core.Transaction(nil), c.transactions...)
}

// Goals returns a copy of the goal snapshot.
func (c *Container) Goals() []core.SavingsGoal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]core.SavingsGoal(nil), c.goals...)
}

// CategoryStatus returns the category load state.
func (c *Container) CategoryStatus() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.categoryStatus
}

// TransactionStatus returns the transaction load state.
func (c *Container) TransactionStatus() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.transactionStatus
}

// GoalStatus returns the goal load state.
func (c *Container) GoalStatus() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.goalStatus
}

// TransactionsForMonth fetches one month directly from the store, bypassing
// the snapshot.
func (c *Container) TransactionsForMonth(ctx context.Context, month time.Time) ([]core.Transaction, error) {
	return c.store.ListTransactions(ctx, &month)
}

func (c *Container) CreateCategory(ctx context.Context, cat core.Category) (core.Category, error) {
	created, err := c.store.CreateCategory(ctx, cat)
	if err != nil {
		return core.Category{}, err
	}
	c.logger.InfoContext(ctx, "Category created",
		log.FieldOperation, log.OpCreate,
		log.FieldCategory, created.Name)
	return created, c.loadCategories(ctx)
}

func (c *Container) UpdateCategory(ctx context.Context, id string, upd store.CategoryUpdate) (core.Category, error) {
	updated, err := c.store.UpdateCategory(ctx, id, upd)
	if err != nil {
		return core.Category{}, err
	}
	return updated, c.loadCategories(ctx)
}

// DeleteCategory removes the category and refreshes both categories and
// transactions: the store clears the name on rows that referenced it.
func (c *Container) DeleteCategory(ctx context.Context, id string) error {
	if err := c.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.loadCategories(ctx) })
	g.Go(func() error { return c.loadTransactions(ctx) })
	return g.Wait()
}

// CreateTransaction persists the transaction and reloads the full list, so
// the snapshot picks up store-side ordering and defaults.
func (c *Container) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	created, err := c.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}
	c.logger.InfoContext(ctx, "Transaction created",
		log.FieldOperation, log.OpCreate,
		log.FieldTransactionID, created.ID,
		log.FieldAmountCents, created.Amount.Cents)
	return created, c.loadTransactions(ctx)
}

func (c *Container) UpdateTransaction(ctx context.Context, id string, upd store.TransactionUpdate) (core.Transaction, error) {
	updated, err := c.store.UpdateTransaction(ctx, id, upd)
	if err != nil {
		return core.Transaction{}, err
	}
	return updated, c.loadTransactions(ctx)
}

func (c *Container) DeleteTransaction(ctx context.Context, id string) error {
	if err := c.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	return c.loadTransactions(ctx)
}

func (c *Container) CreateGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	created, err := c.store.CreateGoal(ctx, g)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	c.logger.InfoContext(ctx, "Goal created",
		log.FieldOperation, log.OpCreate,
		log.FieldGoalID, created.ID)
	return created, c.loadGoals(ctx)
}

func (c *Container) UpdateGoal(ctx context.Context, id string, upd store.GoalUpdate) (core.SavingsGoal, error) {
	updated, err := c.store.UpdateGoal(ctx, id, upd)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	return updated, c.loadGoals(ctx)
}

func (c *Container) DeleteGoal(ctx context.Context, id string) error {
	if err := c.store.DeleteGoal(ctx, id); err != nil {
		return err
	}
	return c.loadGoals(ctx)
}

// AddContribution records a contribution and refreshes the goal snapshot.
func (c *Container) AddContribution(ctx context.Context, goalID string, contrib core.GoalContribution) (core.SavingsGoal, error) {
	goal, err := c.store.AddContribution(ctx, goalID, contrib)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	c.logger.InfoContext(ctx, "Contribution added",
		log.FieldGoalID, goalID,
		log.FieldAmountCents, contrib.Amount.Cents)
	return goal, c.loadGoals(ctx)
}

// ListContributions returns the ledger for one goal straight from the store.
func (c *Container) ListContributions(ctx context.Context, goalID string) ([]core.GoalContribution, error) {
	return c.store.ListContributions(ctx, goalID)
}
