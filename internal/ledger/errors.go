package ledger

import "errors"

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrCorruptState        = errors.New("corrupt ledger state")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrUnbalancedAccount   = errors.New("account balance does not match transactions")
	ErrUnsortedAccount     = errors.New("account transactions are out of order")
	ErrMultipleDefaults    = errors.New("more than one default account")
	ErrDuplicateID         = errors.New("duplicate id")
)

// IsNotFound reports whether err refers to a missing account or transaction.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) || errors.Is(err, ErrTransactionNotFound)
}
