package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Account is a named list of transactions with a running balance in pence.
type Account struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	Balance            int64         `json:"balance"`
	Transactions       []Transaction `json:"transactions"`
	ShowRunningBalance bool          `json:"showRunningBalance"`
	IsDefault          bool          `json:"isDefault"`
}

// Transaction is a dated movement of money. Positive amounts are income,
// negative amounts are expenses.
type Transaction struct {
	ID      string    `json:"id"`
	Payee   string    `json:"payee"`
	Amount  int64     `json:"amount"`
	Cleared time.Time `json:"cleared"`
}

// State is the whole ledger.
type State struct {
	Accounts []Account `json:"accounts"`
}

// NewState returns the empty ledger.
func NewState() State {
	return State{Accounts: []Account{}}
}

// Account returns the account with the given id.
func (s State) Account(id string) (Account, bool) {
	for _, a := range s.Accounts {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}

// Transaction returns the transaction with the given id.
func (a Account) Transaction(id string) (Transaction, bool) {
	for _, t := range a.Transactions {
		if t.ID == id {
			return t, true
		}
	}
	return Transaction{}, false
}

// DefaultAccount picks the account to open first: the only account when
// there is exactly one, otherwise the one flagged as default.
func DefaultAccount(s State) (Account, bool) {
	if len(s.Accounts) == 1 {
		return s.Accounts[0], true
	}
	for _, a := range s.Accounts {
		if a.IsDefault {
			return a, true
		}
	}
	return Account{}, false
}

// IDGenerator produces unique opaque identifiers.
type IDGenerator func() string

// NewUUID returns a random (version 4) UUID string.
func NewUUID() string {
	return uuid.NewString()
}
