package api

import (
	"fmt"
	"strings"
)

// ScopeKind selects which server endpoint a load goes through.
type ScopeKind int

const (
	ScopeBudget ScopeKind = iota
	ScopeCategory
	ScopeChild
)

const (
	TableBudget   = "budget"
	TableExpenses = "expenses"
)

// Scope is the fetch context of a table: the whole budget table, one expense
// category, or the expenses added by children.
type Scope struct {
	Kind     ScopeKind
	Category string
}

// BudgetScope returns the whole-table budget scope.
func BudgetScope() Scope { return Scope{Kind: ScopeBudget} }

// CategoryScope returns the expense scope for a single category.
func CategoryScope(name string) Scope {
	return Scope{Kind: ScopeCategory, Category: strings.TrimSpace(name)}
}

// ChildScope returns the scope listing expenses added by other family members.
func ChildScope() Scope { return Scope{Kind: ScopeChild} }

// Endpoint returns the path that serves the scope.
func (s Scope) Endpoint() string {
	switch s.Kind {
	case ScopeCategory:
		return "/view_category_expenses"
	case ScopeChild:
		return "/view_child_expenses"
	default:
		return "/sync_budget"
	}
}

// Table returns the server table that updates for this scope are written to.
func (s Scope) Table() string {
	if s.Kind == ScopeBudget {
		return TableBudget
	}
	return TableExpenses
}

// Key identifies the scope in maps.
func (s Scope) Key() string {
	switch s.Kind {
	case ScopeCategory:
		return "category:" + s.Category
	case ScopeChild:
		return "child"
	default:
		return "budget"
	}
}

// Label is the human readable tab title.
func (s Scope) Label() string {
	switch s.Kind {
	case ScopeCategory:
		return s.Category
	case ScopeChild:
		return "Child expenses"
	default:
		return "Budget"
	}
}

func (s Scope) String() string { return s.Key() }

// body returns the JSON request body for a fetch, or nil when the endpoint
// takes none.
func (s Scope) body() any {
	if s.Kind == ScopeCategory {
		return map[string]string{"category": s.Category}
	}
	return nil
}

// Envelope mirrors the table payload returned by the fetch endpoints.
type Envelope struct {
	Success     bool             `json:"success"`
	Error       string           `json:"error,omitempty"`
	ColumnNames []string         `json:"column_names"`
	TableData   []map[string]any `json:"table_data"`
}

// Ack is the response of the mutation endpoints.
type Ack struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Err converts a negative acknowledgement into a ServerError.
func (a Ack) Err() error {
	if a.Success {
		return nil
	}
	return &ServerError{Message: a.Error}
}

// ServerError is an application level failure: the server answered with
// success=false and a message.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = "unknown error"
	}
	return msg
}

// UpdateRequest is one partial row update sent by a batch save.
type UpdateRequest struct {
	Table   string            `json:"table"`
	RowID   string            `json:"row_id"`
	Updates map[string]string `json:"updates"`
}

// Validate rejects requests the server would refuse as missing data.
func (r UpdateRequest) Validate() error {
	if strings.TrimSpace(r.Table) == "" {
		return fmt.Errorf("update: table required")
	}
	if strings.TrimSpace(r.RowID) == "" {
		return fmt.Errorf("update: row id required")
	}
	if len(r.Updates) == 0 {
		return fmt.Errorf("update: no columns for row %s", r.RowID)
	}
	return nil
}

// ExpenseInput is the add-expense payload. Amount is already numeric.
type ExpenseInput struct {
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	ExpenseType string  `json:"expense_type"`
}

type deleteRequest struct {
	ID string `json:"id"`
}
