package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Credit TransactionType = "credit"
	Debit  TransactionType = "debit"
)

type (
	TransactionType string

	// Category is a user-defined bucket for transactions. Transactions
	// reference it by name, not by id.
	Category struct {
		ID          string          `json:"id"`
		Name        string          `json:"name"`
		Icon        string          `json:"icon"`
		Type        TransactionType `json:"type"`
		IsDefault   bool            `json:"is_default"`
		Order       int             `json:"order,omitempty"`
		Description string          `json:"description,omitempty"`
		CreatedAt   time.Time       `json:"created_at"`
	}

	// Transaction stores the amount as a positive magnitude; the sign is
	// carried by Type.
	Transaction struct {
		ID           string          `json:"id"`
		Amount       Money           `json:"amount"`
		Description  string          `json:"description,omitempty"`
		CategoryName string          `json:"category_name,omitempty"`
		Date         Date            `json:"date"`
		Tags         []string        `json:"tags"`
		Type         TransactionType `json:"type"`
		CreatedAt    time.Time       `json:"created_at"`
	}

	SavingsGoal struct {
		ID            string    `json:"id"`
		Name          string    `json:"name"`
		TargetAmount  Money     `json:"target_amount"`
		CurrentAmount Money     `json:"current_amount"`
		TargetDate    Date      `json:"target_date"`
		Description   string    `json:"description,omitempty"`
		CreatedAt     time.Time `json:"created_at"`
		UpdatedAt     time.Time `json:"updated_at"`
	}

	// GoalContribution is one entry of the contribution ledger. The ledger is
	// the only write path for a goal's CurrentAmount.
	GoalContribution struct {
		ID          string    `json:"id"`
		GoalID      string    `json:"goal_id"`
		Amount      Money     `json:"amount"`
		Description string    `json:"description,omitempty"`
		CreatedAt   time.Time `json:"created_at"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyName     = errors.New("empty name")
)

func (t TransactionType) Valid() bool {
	return t == Credit || t == Debit
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if err := g.TargetAmount.Validate(); err != nil {
		return err
	}
	if g.CurrentAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	if g.TargetDate.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (c GoalContribution) Validate() error {
	if strings.TrimSpace(c.GoalID) == "" {
		return errors.New("empty goal id")
	}
	return c.Amount.Validate()
}
