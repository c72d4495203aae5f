// Package service provides the business logic layer (use cases):
// the validation rules spanning banks, clients and credits, and the
// notification hook fired after a credit is created.
package service

import "fmt"

// effective returns the input value when supplied, else the existing one.
// This single merge backs every cross-field check, so partial updates see
// the same picture full writes do.
func effective[T any](input, existing *T) *T {
	if input != nil {
		return input
	}
	return existing
}

func deref[T any](p *T, fallback T) T {
	if p != nil {
		return *p
	}
	return fallback
}

// Validation messages use the exact wording existing API consumers
// match on; do not reword them.
const (
	msgRequired      = "This field is required."
	msgInvalidEmail  = "Enter a valid email address."
	msgAgeRange      = "Ensure this value is between 1 and 99."
	msgTermMin       = "Ensure this value is greater than or equal to 1."
	msgPaymentOrder  = "min_payment must be less than or equal to max_payment."
	msgBankMismatch  = "Credit bank must match the client bank."
	msgBankNameTaken = "bank with this name already exists."
)

func msgInvalidChoice(v string) string {
	return fmt.Sprintf("%q is not a valid choice.", v)
}

func msgInvalidPK(id int64) string {
	return fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)
}

func msgAgeMismatch(expected int) string {
	return fmt.Sprintf("Age does not match date of birth (expected %d).", expected)
}
