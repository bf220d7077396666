package ledger

import (
	"fmt"
	"slices"
)

// Reducer computes ledger state transitions. Apply never mutates the state
// it is given; every transition returns freshly built slices for the parts
// it changes.
type Reducer struct {
	NewID IDGenerator
}

// NewReducer returns a Reducer that assigns random UUIDs.
func NewReducer() *Reducer {
	return &Reducer{NewID: NewUUID}
}

// Apply returns the state that results from applying intent to s. When the
// intent references a missing account or transaction, s is returned
// unchanged together with an error matching IsNotFound.
func (r *Reducer) Apply(s State, intent Intent) (State, error) {
	var (
		accounts []Account
		err      error
	)

	switch in := intent.(type) {
	case AddAccount:
		accounts = r.addAccount(s.Accounts, in.Account)
	case EditAccount:
		accounts, err = updateAccount(s.Accounts, in.AccountID, func(a Account) (Account, error) {
			return in.Account.merge(a), nil
		})
	case DeleteAccount:
		accounts, err = deleteAccount(s.Accounts, in.AccountID)
	case AddTransaction:
		accounts, err = updateAccount(s.Accounts, in.AccountID, func(a Account) (Account, error) {
			t := in.Transaction.build(r.newID())
			a.Balance += t.Amount
			a.Transactions = insertTransaction(a.Transactions, t)
			return a, nil
		})
	case EditTransaction:
		accounts, err = updateAccount(s.Accounts, in.AccountID, func(a Account) (Account, error) {
			// Replace is an id-preserving remove and insert.
			rest, removed, err := removeTransaction(a.Transactions, in.TransactionID)
			if err != nil {
				return a, err
			}
			t := in.Transaction.build(removed.ID)
			a.Balance = a.Balance - removed.Amount + t.Amount
			a.Transactions = insertTransaction(rest, t)
			return a, nil
		})
	case DeleteTransaction:
		accounts, err = updateAccount(s.Accounts, in.AccountID, func(a Account) (Account, error) {
			rest, removed, err := removeTransaction(a.Transactions, in.TransactionID)
			if err != nil {
				return a, err
			}
			a.Balance -= removed.Amount
			a.Transactions = rest
			return a, nil
		})
	default:
		return s, nil
	}

	if err != nil {
		return s, err
	}
	return State{Accounts: accounts}, nil
}

func (r *Reducer) newID() string {
	if r.NewID == nil {
		return NewUUID()
	}
	return r.NewID()
}

func (r *Reducer) addAccount(accounts []Account, fields AccountFields) []Account {
	acct := fields.merge(Account{Transactions: []Transaction{}})
	acct.ID = r.newID()

	out := make([]Account, 0, len(accounts)+1)
	for _, a := range accounts {
		// Only one account may be the default.
		if acct.IsDefault {
			a.IsDefault = false
		}
		out = append(out, a)
	}
	return append(out, acct)
}

// updateAccount replaces the account with the given id by transform's
// result. If the result is the default account, every other account loses
// its default flag. All single-account intents go through here.
func updateAccount(accounts []Account, id string, transform func(Account) (Account, error)) ([]Account, error) {
	i := slices.IndexFunc(accounts, func(a Account) bool { return a.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
	}

	updated, err := transform(accounts[i])
	if err != nil {
		return nil, err
	}

	out := make([]Account, len(accounts))
	for j, a := range accounts {
		if j == i {
			out[j] = updated
			continue
		}
		if updated.IsDefault {
			a.IsDefault = false
		}
		out[j] = a
	}
	return out, nil
}

func deleteAccount(accounts []Account, id string) ([]Account, error) {
	i := slices.IndexFunc(accounts, func(a Account) bool { return a.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
	}
	out := make([]Account, 0, len(accounts)-1)
	out = append(out, accounts[:i]...)
	return append(out, accounts[i+1:]...), nil
}

// insertTransaction places t before the first transaction cleared on or
// before t.Cleared, keeping the list newest first. Most transactions are
// cleared near now, so a front scan usually stops early.
func insertTransaction(txns []Transaction, t Transaction) []Transaction {
	at := slices.IndexFunc(txns, func(x Transaction) bool { return !x.Cleared.After(t.Cleared) })

	out := make([]Transaction, 0, len(txns)+1)
	if at < 0 {
		out = append(out, txns...)
		return append(out, t)
	}
	out = append(out, txns[:at]...)
	out = append(out, t)
	return append(out, txns[at:]...)
}

// removeTransaction returns txns without the transaction with the given id,
// and the removed transaction.
func removeTransaction(txns []Transaction, id string) ([]Transaction, Transaction, error) {
	i := slices.IndexFunc(txns, func(t Transaction) bool { return t.ID == id })
	if i < 0 {
		return nil, Transaction{}, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}
	out := make([]Transaction, 0, len(txns)-1)
	out = append(out, txns[:i]...)
	out = append(out, txns[i+1:]...)
	return out, txns[i], nil
}
