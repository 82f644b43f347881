package Settlement

import (
	"errors"
	"fmt"
)

var (
	// ErrConfirmationRequired is returned when fraud heuristics flagged the
	// sale and the operator has not acknowledged the warnings yet. Nothing is
	// committed; the caller retries with ConfirmWarnings set.
	ErrConfirmationRequired = errors.New("sale flagged, operator confirmation required")

	ErrCustomerNotFound = errors.New("customer not found")
	ErrOfferNotFound    = errors.New("offer not found or inactive")
)

// ValidationError covers missing or malformed sale inputs. Nothing is
// mutated when one is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// CreditLimitError aborts a credit sale before any mutation. It carries the
// figures the operator needs for the blocking prompt.
type CreditLimitError struct {
	Entity     string
	Limit      float64
	Balance    float64
	NewBalance float64
}

func (e *CreditLimitError) Error() string {
	return fmt.Sprintf("credit limit exceeded for %s: new balance %.2f over limit %.2f",
		e.Entity, e.NewBalance, e.Limit)
}

// ProfitMarginError hard-blocks a sale whose combined discounts exceed the
// margin earned on the fuel itself.
type ProfitMarginError struct {
	MarginPerLiter float64
	Quantity       float64
	Discount       float64
}

func (e *ProfitMarginError) Error() string {
	return fmt.Sprintf("discount %.2f exceeds sale margin %.2f (%.2f/L x %.2fL)",
		e.Discount, e.MarginPerLiter*e.Quantity, e.MarginPerLiter, e.Quantity)
}
