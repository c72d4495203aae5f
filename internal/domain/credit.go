package domain

import "time"

// CreditType classifies the purpose of a credit.
type CreditType string

const (
	CreditTypeAuto       CreditType = "AUTO"
	CreditTypeMortgage   CreditType = "MORTGAGE"
	CreditTypeCommercial CreditType = "COMMERCIAL"
)

// Valid reports whether t is a known credit type.
func (t CreditType) Valid() bool {
	return t == CreditTypeAuto || t == CreditTypeMortgage || t == CreditTypeCommercial
}

// Credit is a referred credit line. It always belongs to a client
// (cascade-deleted with it) and a bank (which cannot be deleted while
// the credit exists). CreatedAt is set once at creation and immutable.
type Credit struct {
	ID             int64      `json:"id"`
	ClientID       int64      `json:"client"`
	ClientFullName string     `json:"client_full_name"`
	Description    string     `json:"description"`
	MinPayment     Money      `json:"min_payment"`
	MaxPayment     Money      `json:"max_payment"`
	TermMonths     int        `json:"term_months"`
	CreatedAt      time.Time  `json:"created_at"`
	BankID         int64      `json:"bank"`
	BankName       string     `json:"bank_name"`
	CreditType     CreditType `json:"credit_type"`
}

// CreditInput is a proposed field set for a credit write.
type CreditInput struct {
	ClientID    *int64  `json:"client"`
	Description *string `json:"description"`
	MinPayment  *Money  `json:"min_payment"`
	MaxPayment  *Money  `json:"max_payment"`
	TermMonths  *int    `json:"term_months"`
	BankID      *int64  `json:"bank"`
	CreditType  *string `json:"credit_type"`
}

// CreditFilter narrows a credit list query. The payment and term filters
// match a substring of the value rendered as text, not a numeric range;
// an empty value is a pass-through.
type CreditFilter struct {
	ListParams
	Description    string
	BankName       string
	ClientFullName string
	CreditTypes    []string
	BankIDs        []int64
	MinPayment     string
	MaxPayment     string
	TermMonths     string
}

// CreditOrderings are the ordering keys the credit list accepts.
var CreditOrderings = []string{"created_at", "min_payment", "max_payment", "term_months", "id"}
