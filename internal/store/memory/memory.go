// Package memory provides an in-memory Store used for tests and local
// development without a configured backend.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"deltafin/internal/core"
	"deltafin/internal/store"
)

type Store struct {
	mu            sync.Mutex
	categories    []core.Category
	transactions  []core.Transaction
	goals         []core.SavingsGoal
	contributions []core.GoalContribution
	now           func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{now: time.Now}
}

// NewSeeded returns a store pre-populated with the given categories.
func NewSeeded(categories []core.Category) *Store {
	s := New()
	for _, c := range categories {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = s.now()
		}
		s.categories = append(s.categories, c)
	}
	return s
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Category(nil), s.categories...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, store.NewError(store.KindValidation, "memory.CreateCategory", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = uuid.NewString()
	c.CreatedAt = s.now()
	s.categories = append(s.categories, c)
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, id string, upd store.CategoryUpdate) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].ID != id {
			continue
		}
		c := s.categories[i]
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
			return core.Category{}, store.NewError(store.KindValidation, "memory.UpdateCategory", err)
		}
		s.categories[i] = c
		return c, nil
	}
	return core.Category{}, store.NewError(store.KindNotFound, "memory.UpdateCategory", errNotFound(id))
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].ID != id {
			continue
		}
		name := s.categories[i].Name
		s.categories = append(s.categories[:i], s.categories[i+1:]...)
		// Deletion policy: clear the name reference; aggregation's
		// fallback bucket absorbs the orphans.
		for j := range s.transactions {
			if s.transactions[j].CategoryName == name {
				s.transactions[j].CategoryName = ""
			}
		}
		return nil
	}
	return store.NewError(store.KindNotFound, "memory.DeleteCategory", errNotFound(id))
}

func (s *Store) ListTransactions(_ context.Context, month *time.Time) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		if month != nil {
			start := core.NewDate(month.Year(), int(month.Month()), 1)
			end := core.DateOf(time.Date(month.Year(), month.Month()+1, 0, 0, 0, 0, 0, time.UTC))
			if t.Date.Before(start.Time) || t.Date.After(end.Time) {
				continue
			}
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out, nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, store.NewError(store.KindValidation, "memory.CreateTransaction", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	t.CreatedAt = s.now()
	s.transactions = append(s.transactions, t)
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, id string, upd store.TransactionUpdate) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.transactions {
		if s.transactions[i].ID != id {
			continue
		}
		t := s.transactions[i]
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
			return core.Transaction{}, store.NewError(store.KindValidation, "memory.UpdateTransaction", err)
		}
		s.transactions[i] = t
		return t, nil
	}
	return core.Transaction{}, store.NewError(store.KindNotFound, "memory.UpdateTransaction", errNotFound(id))
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			return nil
		}
	}
	return store.NewError(store.KindNotFound, "memory.DeleteTransaction", errNotFound(id))
}

func (s *Store) ListGoals(_ context.Context) ([]core.SavingsGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.SavingsGoal(nil), s.goals...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) CreateGoal(_ context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	// Goals always start empty; the contribution ledger is the only way to
	// accumulate.
	g.CurrentAmount = core.Money{}
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, store.NewError(store.KindValidation, "memory.CreateGoal", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = uuid.NewString()
	g.CreatedAt = s.now()
	g.UpdatedAt = g.CreatedAt
	s.goals = append(s.goals, g)
	return g, nil
}

func (s *Store) UpdateGoal(_ context.Context, id string, upd store.GoalUpdate) (core.SavingsGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.goals {
		if s.goals[i].ID != id {
			continue
		}
		g := s.goals[i]
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
			return core.SavingsGoal{}, store.NewError(store.KindValidation, "memory.UpdateGoal", err)
		}
		g.UpdatedAt = s.now()
		s.goals[i] = g
		return g, nil
	}
	return core.SavingsGoal{}, store.NewError(store.KindNotFound, "memory.UpdateGoal", errNotFound(id))
}

func (s *Store) DeleteGoal(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.goals {
		if s.goals[i].ID == id {
			s.goals = append(s.goals[:i], s.goals[i+1:]...)
			return nil
		}
	}
	return store.NewError(store.KindNotFound, "memory.DeleteGoal", errNotFound(id))
}

func (s *Store) AddContribution(_ context.Context, goalID string, c core.GoalContribution) (core.SavingsGoal, error) {
	c.GoalID = goalID
	if err := c.Validate(); err != nil {
		return core.SavingsGoal{}, store.NewError(store.KindValidation, "memory.AddContribution", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.goals {
		if s.goals[i].ID != goalID {
			continue
		}
		c.ID = uuid.NewString()
		c.CreatedAt = s.now()
		s.contributions = append(s.contributions, c)
		s.goals[i].CurrentAmount.Cents += c.Amount.Cents
		s.goals[i].UpdatedAt = c.CreatedAt
		return s.goals[i], nil
	}
	return core.SavingsGoal{}, store.NewError(store.KindNotFound, "memory.AddContribution", errNotFound(goalID))
}

func (s *Store) ListContributions(_ context.Context, goalID string) ([]core.GoalContribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.GoalContribution
	for _, c := range s.contributions {
		if c.GoalID == goalID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

type errNotFound string

func (e errNotFound) Error() string {
	return "no row with id " + string(e)
}
