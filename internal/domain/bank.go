package domain

// BankType classifies a bank's ownership.
type BankType string

const (
	BankTypePrivate    BankType = "PRIVATE"
	BankTypeGovernment BankType = "GOVERNMENT"
)

// Valid reports whether t is a known bank type.
func (t BankType) Valid() bool {
	return t == BankTypePrivate || t == BankTypeGovernment
}

// Bank is a lending institution that credits are placed with.
// Name is unique case-insensitively.
type Bank struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	BankType BankType `json:"bank_type"`
	Address  string   `json:"address"`
}

// BankInput is a proposed field set for a bank write. Nil means
// "not supplied", so partial updates can tell absence from empty.
type BankInput struct {
	Name     *string `json:"name"`
	BankType *string `json:"bank_type"`
	Address  *string `json:"address"`
}

// BankFilter narrows a bank list query.
type BankFilter struct {
	ListParams
	Name      string   // substring, case-insensitive
	Address   string   // substring, case-insensitive
	BankTypes []string // exact match against this set when non-empty
}

// BankOrderings are the ordering keys the bank list accepts.
var BankOrderings = []string{"id", "name"}
