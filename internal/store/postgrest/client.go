// Package postgrest implements the Store ports against a Supabase PostgREST
// endpoint.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"deltafin/internal/core"
	"deltafin/internal/log"
	"deltafin/internal/store"
)

const (
	tableCategories    = "categories"
	tableTransactions  = "transactions"
	tableGoals         = "savings_goals"
	tableContributions = "goal_contributions"
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *log.Logger
}

var _ store.Store = (*Client)(nil)

func NewClient(baseURL, apiKey string, logger *log.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger.WithComponent("postgrest"),
	}
}

// do performs one REST round-trip. A non-nil body is sent as JSON with
// Prefer: return=representation so mutations echo the stored row back.
func (c *Client) do(ctx context.Context, op, method, table string, query url.Values, body, out any) error {
	u := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, table)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return store.NewError(store.KindValidation, op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return store.NewError(store.KindNetwork, op, err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return store.NewError(store.KindNetwork, op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return store.NewError(store.KindNetwork, op, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return store.NewError(store.KindNotFound, op, restError(resp.StatusCode, data))
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return store.NewError(store.KindValidation, op, restError(resp.StatusCode, data))
	case resp.StatusCode >= 500:
		return store.NewError(store.KindNetwork, op, restError(resp.StatusCode, data))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return store.NewError(store.KindNetwork, op, fmt.Errorf("decode response: %w", err))
		}
	}
	return nil
}

func restError(status int, body []byte) error {
	var pg struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &pg) == nil && pg.Message != "" {
		return fmt.Errorf("status %d: %s", status, pg.Message)
	}
	return fmt.Errorf("status %d", status)
}

// one extracts the single row a representation-returning mutation yields.
func one[T any](op string, rows []T) (T, error) {
	var zero T
	if len(rows) == 0 {
		return zero, store.NewError(store.KindNotFound, op, fmt.Errorf("no matching row"))
	}
	return rows[0], nil
}

func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "name.asc")
	var out []core.Category
	if err := c.do(ctx, "postgrest.ListCategories", http.MethodGet, tableCategories, q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, cat core.Category) (core.Category, error) {
	const op = "postgrest.CreateCategory"
	if err := cat.Validate(); err != nil {
		return core.Category{}, store.NewError(store.KindValidation, op, err)
	}
	body := map[string]any{
		"name":       cat.Name,
		"icon":       cat.Icon,
		"type":       cat.Type,
		"is_default": cat.IsDefault,
	}
	if cat.Order != 0 {
		body["order"] = cat.Order
	}
	if cat.Description != "" {
		body["description"] = cat.Description
	}
	var rows []core.Category
	if err := c.do(ctx, op, http.MethodPost, tableCategories, nil, body, &rows); err != nil {
		return core.Category{}, err
	}
	return one(op, rows)
}

func (c *Client) UpdateCategory(ctx context.Context, id string, upd store.CategoryUpdate) (core.Category, error) {
	const op = "postgrest.UpdateCategory"
	body := map[string]any{}
	if upd.Name != nil {
		body["name"] = *upd.Name
	}
	if upd.Icon != nil {
		body["icon"] = *upd.Icon
	}
	if upd.Type != nil {
		body["type"] = *upd.Type
	}
	if upd.IsDefault != nil {
		body["is_default"] = *upd.IsDefault
	}
	if upd.Order != nil {
		body["order"] = *upd.Order
	}
	if upd.Description != nil {
		body["description"] = *upd.Description
	}
	q := url.Values{}
	q.Set("id", "eq."+id)
	var rows []core.Category
	if err := c.do(ctx, op, http.MethodPatch, tableCategories, q, body, &rows); err != nil {
		return core.Category{}, err
	}
	return one(op, rows)
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	const op = "postgrest.DeleteCategory"
	q := url.Values{}
	q.Set("id", "eq."+id)
	q.Set("select", "name")
	var rows []core.Category
	if err := c.do(ctx, op, http.MethodDelete, tableCategories, q, struct{}{}, &rows); err != nil {
		return err
	}
	deleted, err := one(op, rows)
	if err != nil {
		return err
	}
	// Orphaned transactions keep working: the reporting fallback bucket
	// absorbs rows whose category name was cleared.
	cq := url.Values{}
	cq.Set("category_name", "eq."+deleted.Name)
	if err := c.do(ctx, op, http.MethodPatch, tableTransactions, cq, map[string]any{"category_name": nil}, nil); err != nil {
		c.logger.Warn("failed to clear category references",
			log.FieldCategory, deleted.Name,
			log.FieldError, err)
	}
	return nil
}

func (c *Client) ListTransactions(ctx context.Context, month *time.Time) ([]core.Transaction, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "date.desc")
	if month != nil {
		start := core.NewDate(month.Year(), int(month.Month()), 1)
		end := core.DateOf(time.Date(month.Year(), month.Month()+1, 0, 0, 0, 0, 0, time.UTC))
		q.Set("date", "gte."+start.ISO())
		q.Add("date", "lte."+end.ISO())
	}
	var out []core.Transaction
	if err := c.do(ctx, "postgrest.ListTransactions", http.MethodGet, tableTransactions, q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	const op = "postgrest.CreateTransaction"
	if err := t.Validate(); err != nil {
		return core.Transaction{}, store.NewError(store.KindValidation, op, err)
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	body := map[string]any{
		"amount": t.Amount,
		"date":   t.Date,
		"tags":   t.Tags,
		"type":   t.Type,
	}
	if t.ID != "" {
		body["id"] = t.ID
	}
	if t.Description != "" {
		body["description"] = t.Description
	}
	if t.CategoryName != "" {
		body["category_name"] = t.CategoryName
	}
	var rows []core.Transaction
	if err := c.do(ctx, op, http.MethodPost, tableTransactions, nil, body, &rows); err != nil {
		return core.Transaction{}, err
	}
	return one(op, rows)
}

func (c *Client) UpdateTransaction(ctx context.Context, id string, upd store.TransactionUpdate) (core.Transaction, error) {
	const op = "postgrest.UpdateTransaction"
	body := map[string]any{}
	if upd.Amount != nil {
		body["amount"] = *upd.Amount
	}
	if upd.Description != nil {
		body["description"] = *upd.Description
	}
	if upd.CategoryName != nil {
		body["category_name"] = *upd.CategoryName
	}
	if upd.Date != nil {
		body["date"] = *upd.Date
	}
	if upd.Tags != nil {
		body["tags"] = *upd.Tags
	}
	if upd.Type != nil {
		body["type"] = *upd.Type
	}
	q := url.Values{}
	q.Set("id", "eq."+id)
	var rows []core.Transaction
	if err := c.do(ctx, op, http.MethodPatch, tableTransactions, q, body, &rows); err != nil {
		return core.Transaction{}, err
	}
	return one(op, rows)
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	const op = "postgrest.DeleteTransaction"
	q := url.Values{}
	q.Set("id", "eq."+id)
	var rows []core.Transaction
	if err := c.do(ctx, op, http.MethodDelete, tableTransactions, q, struct{}{}, &rows); err != nil {
		return err
	}
	_, err := one(op, rows)
	return err
}

func (c *Client) ListGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "created_at.desc")
	var out []core.SavingsGoal
	if err := c.do(ctx, "postgrest.ListGoals", http.MethodGet, tableGoals, q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	const op = "postgrest.CreateGoal"
	g.CurrentAmount = core.Money{}
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, store.NewError(store.KindValidation, op, err)
	}
	body := map[string]any{
		"name":           g.Name,
		"target_amount":  g.TargetAmount,
		"current_amount": core.Money{},
		"target_date":    g.TargetDate,
	}
	if g.Description != "" {
		body["description"] = g.Description
	}
	var rows []core.SavingsGoal
	if err := c.do(ctx, op, http.MethodPost, tableGoals, nil, body, &rows); err != nil {
		return core.SavingsGoal{}, err
	}
	return one(op, rows)
}

func (c *Client) UpdateGoal(ctx context.Context, id string, upd store.GoalUpdate) (core.SavingsGoal, error) {
	const op = "postgrest.UpdateGoal"
	body := map[string]any{
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	}
	if upd.Name != nil {
		body["name"] = *upd.Name
	}
	if upd.TargetAmount != nil {
		body["target_amount"] = *upd.TargetAmount
	}
	if upd.TargetDate != nil {
		body["target_date"] = *upd.TargetDate
	}
	if upd.Description != nil {
		body["description"] = *upd.Description
	}
	q := url.Values{}
	q.Set("id", "eq."+id)
	var rows []core.SavingsGoal
	if err := c.do(ctx, op, http.MethodPatch, tableGoals, q, body, &rows); err != nil {
		return core.SavingsGoal{}, err
	}
	return one(op, rows)
}

func (c *Client) DeleteGoal(ctx context.Context, id string) error {
	const op = "postgrest.DeleteGoal"
	q := url.Values{}
	q.Set("id", "eq."+id)
	var rows []core.SavingsGoal
	if err := c.do(ctx, op, http.MethodDelete, tableGoals, q, struct{}{}, &rows); err != nil {
		return err
	}
	_, err := one(op, rows)
	return err
}

// AddContribution writes the ledger row first, then bumps the goal. The two
// writes are separate REST calls; if the second fails the ledger row is kept
// and the caller sees the error.
func (c *Client) AddContribution(ctx context.Context, goalID string, contrib core.GoalContribution) (core.SavingsGoal, error) {
	const op = "postgrest.AddContribution"
	contrib.GoalID = goalID
	if err := contrib.Validate(); err != nil {
		return core.SavingsGoal{}, store.NewError(store.KindValidation, op, err)
	}

	goal, err := c.getGoal(ctx, op, goalID)
	if err != nil {
		return core.SavingsGoal{}, err
	}

	body := map[string]any{
		"goal_id": goalID,
		"amount":  contrib.Amount,
	}
	if contrib.Description != "" {
		body["description"] = contrib.Description
	}
	if err := c.do(ctx, op, http.MethodPost, tableContributions, nil, body, nil); err != nil {
		return core.SavingsGoal{}, err
	}

	newAmount := core.Money{Cents: goal.CurrentAmount.Cents + contrib.Amount.Cents}
	q := url.Values{}
	q.Set("id", "eq."+goalID)
	patch := map[string]any{
		"current_amount": newAmount,
		"updated_at":     time.Now().UTC().Format(time.RFC3339),
	}
	var rows []core.SavingsGoal
	if err := c.do(ctx, op, http.MethodPatch, tableGoals, q, patch, &rows); err != nil {
		return core.SavingsGoal{}, err
	}
	return one(op, rows)
}

func (c *Client) ListContributions(ctx context.Context, goalID string) ([]core.GoalContribution, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("goal_id", "eq."+goalID)
	q.Set("order", "created_at.desc")
	var out []core.GoalContribution
	if err := c.do(ctx, "postgrest.ListContributions", http.MethodGet, tableContributions, q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getGoal(ctx context.Context, op, id string) (core.SavingsGoal, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("id", "eq."+id)
	var rows []core.SavingsGoal
	if err := c.do(ctx, op, http.MethodGet, tableGoals, q, nil, &rows); err != nil {
		return core.SavingsGoal{}, err
	}
	return one(op, rows)
}
