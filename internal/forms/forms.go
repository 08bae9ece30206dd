// Package forms validates user input before it is sent anywhere.
package forms

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/five82/tally/internal/api"
)

// ValidationError is a local input error. No request was made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// AddExpense is the raw add-expense form.
type AddExpense struct {
	Category    string
	Amount      string
	Date        string
	ExpenseType string
}

// Validate coerces the amount to a number and checks required fields.
func (f AddExpense) Validate() (api.ExpenseInput, error) {
	category := strings.TrimSpace(f.Category)
	if category == "" {
		return api.ExpenseInput{}, &ValidationError{Field: "category", Message: "category is required"}
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(f.Amount), 64)
	if err != nil {
		return api.ExpenseInput{}, &ValidationError{Field: "amount", Message: "Enter a valid number for the amount."}
	}
	date := strings.TrimSpace(f.Date)
	if date == "" {
		return api.ExpenseInput{}, &ValidationError{Field: "date", Message: "date is required"}
	}
	return api.ExpenseInput{
		Category:    category,
		Amount:      amount,
		Date:        date,
		ExpenseType: strings.TrimSpace(f.ExpenseType),
	}, nil
}

// CheckCSVName is the pre-upload guard: only names ending in .csv pass. The
// file's content is not inspected.
func CheckCSVName(name string) error {
	base := strings.TrimSpace(filepath.Base(strings.TrimSpace(name)))
	if name == "" || base == "." || base == string(filepath.Separator) {
		return &ValidationError{Field: "file", Message: "Please select a file before uploading."}
	}
	if !strings.HasSuffix(strings.ToLower(base), ".csv") {
		return &ValidationError{Field: "file", Message: "Only CSV files are allowed."}
	}
	return nil
}
