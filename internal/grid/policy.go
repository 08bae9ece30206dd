package grid

import "strings"

// Role is the acting user's role. It is supplied by configuration, never derived.
type Role string

const (
	RoleParent Role = "parent"
	RoleChild  Role = "child"
)

// ParseRole normalises a configured role name. Unknown names are kept as-is
// and are therefore unprivileged.
func ParseRole(s string) Role {
	return Role(strings.ToLower(strings.TrimSpace(s)))
}

// Privileged reports whether the role may edit cells and delete rows.
func (r Role) Privileged() bool {
	return r == RoleParent
}

// Policy decides per column whether a cell is editable and whether the table
// gets a trailing Actions column.
type Policy struct {
	Role    Role
	Locked  []string
	Actions bool
}

// ExpensePolicy is used for expense tables. Besides id, the added_by column is
// never editable, and privileged users get a delete action per row.
func ExpensePolicy(role Role) Policy {
	return Policy{Role: role, Locked: []string{IDColumn, "added_by"}, Actions: true}
}

// BudgetPolicy is used for the budget table: only id is locked.
func BudgetPolicy(role Role) Policy {
	return Policy{Role: role, Locked: []string{IDColumn}}
}

// Editable reports whether cells of column can be edited under the policy.
func (p Policy) Editable(column string) bool {
	if !p.Role.Privileged() {
		return false
	}
	for _, locked := range p.Locked {
		if strings.EqualFold(locked, column) {
			return false
		}
	}
	return true
}

// ShowActions reports whether the Actions column is rendered.
func (p Policy) ShowActions() bool {
	return p.Actions && p.Role.Privileged()
}
