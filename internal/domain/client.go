package domain

import "time"

// PersonType classifies a client as a person or a company.
type PersonType string

const (
	PersonTypeNatural     PersonType = "NATURAL"
	PersonTypeLegalEntity PersonType = "LEGAL_ENTITY"
)

// Valid reports whether t is a known person type.
func (t PersonType) Valid() bool {
	return t == PersonTypeNatural || t == PersonTypeLegalEntity
}

// Client is a person or company referred for credit. It optionally
// belongs to a bank; deleting that bank clears the reference.
type Client struct {
	ID          int64      `json:"id"`
	FullName    string     `json:"full_name"`
	DateOfBirth Date       `json:"date_of_birth"`
	Age         *int       `json:"age"`
	Nationality string     `json:"nationality"`
	Address     string     `json:"address"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	PersonType  PersonType `json:"person_type"`
	BankID      *int64     `json:"bank"`
	BankName    *string    `json:"bank_name"`
}

// ClientInput is a proposed field set for a client write.
type ClientInput struct {
	FullName    *string `json:"full_name"`
	DateOfBirth *Date   `json:"date_of_birth"`
	Age         *int    `json:"age"`
	Nationality *string `json:"nationality"`
	Address     *string `json:"address"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	PersonType  *string `json:"person_type"`
	BankID      *int64  `json:"bank"`
}

// ClientFilter narrows a client list query.
type ClientFilter struct {
	ListParams
	FullName    string // substring, case-insensitive
	Email       string // substring, case-insensitive
	BankName    string // substring on the related bank's name
	PersonTypes []string
	BankIDs     []int64
}

// ClientOrderings are the ordering keys the client list accepts.
var ClientOrderings = []string{"id", "full_name"}

// CalculateAge returns the whole years between dob and today: the year
// difference, minus one when today's (month, day) precedes the birth
// (month, day).
func CalculateAge(dob Date, today time.Time) int {
	years := today.Year() - dob.Year()
	if today.Month() < dob.Month() ||
		(today.Month() == dob.Month() && today.Day() < dob.Day()) {
		years--
	}
	return years
}
