package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// RootKey is the blob store key the encoded ledger is kept under.
const RootKey = "root"

// ClearedLayout is the textual form of a persisted cleared date.
const ClearedLayout = time.RFC3339Nano

type persistedState struct {
	Accounts []persistedAccount `json:"accounts"`
}

type persistedAccount struct {
	ID                 string                 `json:"id"`
	Name               string                 `json:"name"`
	Balance            int64                  `json:"balance"`
	Transactions       []persistedTransaction `json:"transactions"`
	ShowRunningBalance bool                   `json:"showRunningBalance"`
	IsDefault          bool                   `json:"isDefault"`
}

type persistedTransaction struct {
	ID      string `json:"id"`
	Payee   string `json:"payee"`
	Amount  int64  `json:"amount"`
	Cleared string `json:"cleared"`
}

// Encode serializes the whole ledger. Cleared dates are written as
// RFC 3339 timestamps in UTC.
func Encode(s State) ([]byte, error) {
	ps := persistedState{Accounts: make([]persistedAccount, 0, len(s.Accounts))}
	for _, a := range s.Accounts {
		pa := persistedAccount{
			ID:                 a.ID,
			Name:               a.Name,
			Balance:            a.Balance,
			Transactions:       make([]persistedTransaction, 0, len(a.Transactions)),
			ShowRunningBalance: a.ShowRunningBalance,
			IsDefault:          a.IsDefault,
		}
		for _, t := range a.Transactions {
			pa.Transactions = append(pa.Transactions, persistedTransaction{
				ID:      t.ID,
				Payee:   t.Payee,
				Amount:  t.Amount,
				Cleared: t.Cleared.UTC().Format(ClearedLayout),
			})
		}
		ps.Accounts = append(ps.Accounts, pa)
	}

	data, err := json.Marshal(ps)
	if err != nil {
		return nil, fmt.Errorf("encode ledger: %w", err)
	}
	return data, nil
}

// Decode parses bytes produced by Encode. Empty input is the empty ledger.
// Anything that cannot be parsed, or that breaks the balance or ordering
// invariants, fails with ErrCorruptState. A second default account is not
// an error: the first one keeps the flag.
func Decode(data []byte) (State, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return NewState(), nil
	}

	var ps persistedState
	if err := json.Unmarshal(data, &ps); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}

	s := State{Accounts: make([]Account, 0, len(ps.Accounts))}
	hasDefault := false
	for _, pa := range ps.Accounts {
		a := Account{
			ID:                 pa.ID,
			Name:               pa.Name,
			Balance:            pa.Balance,
			Transactions:       make([]Transaction, 0, len(pa.Transactions)),
			ShowRunningBalance: pa.ShowRunningBalance,
			IsDefault:          pa.IsDefault && !hasDefault,
		}
		hasDefault = hasDefault || a.IsDefault

		for _, pt := range pa.Transactions {
			cleared, err := time.Parse(ClearedLayout, pt.Cleared)
			if err != nil {
				return State{}, fmt.Errorf("%w: account %s transaction %s: %v", ErrCorruptState, pa.ID, pt.ID, err)
			}
			a.Transactions = append(a.Transactions, Transaction{
				ID:      pt.ID,
				Payee:   pt.Payee,
				Amount:  pt.Amount,
				Cleared: cleared,
			})
		}
		s.Accounts = append(s.Accounts, a)
	}

	if err := CheckInvariants(s); err != nil {
		return State{}, fmt.Errorf("%w: %w", ErrCorruptState, err)
	}
	return s, nil
}
