package ledger

import "fmt"

// CheckInvariants verifies that every account balance equals the sum of
// its transactions, that transactions are newest first, that at most one
// account is the default and that ids are unique. Transaction ids only need
// to be unique within their account.
func CheckInvariants(s State) error {
	defaults := 0
	accountIDs := make(map[string]struct{}, len(s.Accounts))

	for _, a := range s.Accounts {
		if _, dup := accountIDs[a.ID]; dup {
			return fmt.Errorf("%w: account %s", ErrDuplicateID, a.ID)
		}
		accountIDs[a.ID] = struct{}{}

		if a.IsDefault {
			defaults++
		}

		txnIDs := make(map[string]struct{}, len(a.Transactions))
		var sum int64
		for i, t := range a.Transactions {
			sum += t.Amount
			if i > 0 && t.Cleared.After(a.Transactions[i-1].Cleared) {
				return fmt.Errorf("%w: account %s at transaction %s", ErrUnsortedAccount, a.ID, t.ID)
			}
			if _, dup := txnIDs[t.ID]; dup {
				return fmt.Errorf("%w: transaction %s", ErrDuplicateID, t.ID)
			}
			txnIDs[t.ID] = struct{}{}
		}
		if sum != a.Balance {
			return fmt.Errorf("%w: account %s has balance %d, transactions sum to %d",
				ErrUnbalancedAccount, a.ID, a.Balance, sum)
		}
	}

	if defaults > 1 {
		return fmt.Errorf("%w: %d accounts", ErrMultipleDefaults, defaults)
	}
	return nil
}
