package ledger

import (
	"strings"
	"time"
)

// Intent is a tagged request to change the ledger. Reducer.Apply ignores
// intent types it does not know.
type Intent interface {
	Kind() string
}

// AccountFields carries caller-supplied account fields. Nil fields are
// left to the defaults (on add) or to the current value (on edit).
type AccountFields struct {
	Name               *string `json:"name,omitempty"`
	ShowRunningBalance *bool   `json:"showRunningBalance,omitempty"`
	IsDefault          *bool   `json:"isDefault,omitempty"`
}

// TransactionFields carries the caller-supplied fields of a transaction.
// The id is always assigned by the reducer.
type TransactionFields struct {
	Payee   string    `json:"payee"`
	Amount  int64     `json:"amount"`
	Cleared time.Time `json:"cleared"`
}

// Fields returns the editable fields of t, used to copy a transaction.
func (t Transaction) Fields() TransactionFields {
	return TransactionFields{Payee: t.Payee, Amount: t.Amount, Cleared: t.Cleared}
}

// AddAccount appends a new account with a zero balance.
type AddAccount struct {
	Account AccountFields
}

// EditAccount overlays the set fields onto an existing account.
type EditAccount struct {
	AccountID string
	Account   AccountFields
}

// DeleteAccount removes an account and its transactions.
type DeleteAccount struct {
	AccountID string
}

// AddTransaction inserts a transaction newest first and adjusts the balance.
type AddTransaction struct {
	AccountID   string
	Transaction TransactionFields
}

// EditTransaction replaces a transaction, keeping its id, and re-sorts it.
type EditTransaction struct {
	AccountID     string
	TransactionID string
	Transaction   TransactionFields
}

// DeleteTransaction removes a transaction and reverses its amount.
type DeleteTransaction struct {
	AccountID     string
	TransactionID string
}

func (AddAccount) Kind() string        { return "SIMPLE_BALANCE/ACCOUNT/ADD" }
func (EditAccount) Kind() string       { return "SIMPLE_BALANCE/ACCOUNT/EDIT" }
func (DeleteAccount) Kind() string     { return "SIMPLE_BALANCE/ACCOUNT/DELETE" }
func (AddTransaction) Kind() string    { return "SIMPLE_BALANCE/TRANSACTION/ADD" }
func (EditTransaction) Kind() string   { return "SIMPLE_BALANCE/TRANSACTION/EDIT" }
func (DeleteTransaction) Kind() string { return "SIMPLE_BALANCE/TRANSACTION/DELETE" }

// Ptr returns a pointer to v, for filling AccountFields.
func Ptr[T any](v T) *T {
	return &v
}

// merge overlays the set fields onto base.
func (f AccountFields) merge(base Account) Account {
	if f.Name != nil {
		base.Name = strings.TrimSpace(*f.Name)
	}
	if f.ShowRunningBalance != nil {
		base.ShowRunningBalance = *f.ShowRunningBalance
	}
	if f.IsDefault != nil {
		base.IsDefault = *f.IsDefault
	}
	if base.Transactions == nil {
		base.Transactions = []Transaction{}
	}
	return base
}

func (f TransactionFields) build(id string) Transaction {
	return Transaction{
		ID:      id,
		Payee:   strings.TrimSpace(f.Payee),
		Amount:  f.Amount,
		Cleared: f.Cleared,
	}
}
