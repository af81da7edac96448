// Package store defines the outbound ports for the remote data store and the
// error taxonomy shared by all backends.
package store

import (
	"context"
	"time"

	"deltafin/internal/core"
)

// Ports for outbound adapters. Listing is always fetch-all; callers replace
// their snapshot wholesale.
type (
	CategoryStore interface {
		// ListCategories returns all categories ordered by name.
		ListCategories(ctx context.Context) ([]core.Category, error)
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
		UpdateCategory(ctx context.Context, id string, upd CategoryUpdate) (core.Category, error)
		// DeleteCategory removes the category and clears the category name
		// on transactions that referenced it.
		DeleteCategory(ctx context.Context, id string) error
	}

	TransactionStore interface {
		// ListTransactions returns transactions ordered by date descending.
		// When month is non-nil the result is restricted to that calendar
		// month.
		ListTransactions(ctx context.Context, month *time.Time) ([]core.Transaction, error)
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, id string, upd TransactionUpdate) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id string) error
	}

	GoalStore interface {
		// ListGoals returns goals ordered by creation time descending.
		ListGoals(ctx context.Context) ([]core.SavingsGoal, error)
		CreateGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error)
		UpdateGoal(ctx context.Context, id string, upd GoalUpdate) (core.SavingsGoal, error)
		DeleteGoal(ctx context.Context, id string) error
		// AddContribution appends a ledger entry and increments the goal's
		// accumulated amount. It is the only path that mutates
		// CurrentAmount.
		AddContribution(ctx context.Context, goalID string, c core.GoalContribution) (core.SavingsGoal, error)
		// ListContributions returns the ledger for one goal, newest first.
		ListContributions(ctx context.Context, goalID string) ([]core.GoalContribution, error)
	}

	// Store is the unified backend interface.
	Store interface {
		CategoryStore
		TransactionStore
		GoalStore
	}
)

// Partial update payloads. Nil fields are left untouched.
type (
	CategoryUpdate struct {
		Name        *string
		Icon        *string
		Type        *core.TransactionType
		IsDefault   *bool
		Order       *int
		Description *string
	}

	TransactionUpdate struct {
		Amount       *core.Money
		Description  *string
		CategoryName *string
		Date         *core.Date
		Tags         *[]string
		Type         *core.TransactionType
	}

	GoalUpdate struct {
		Name         *string
		TargetAmount *core.Money
		TargetDate   *core.Date
		Description  *string
	}
)
