package ledger

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// sequentialIDs returns a generator producing id-1, id-2, ...
func sequentialIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestReducer() *Reducer {
	return &Reducer{NewID: sequentialIDs()}
}

func mustApply(t *testing.T, r *Reducer, s State, intents ...Intent) State {
	t.Helper()
	for _, in := range intents {
		var err error
		s, err = r.Apply(s, in)
		require.NoError(t, err, "apply %s", in.Kind())
		require.NoError(t, CheckInvariants(s), "invariants after %s", in.Kind())
	}
	return s
}

func payees(a Account) []string {
	out := make([]string, len(a.Transactions))
	for i, t := range a.Transactions {
		out[i] = t.Payee
	}
	return out
}

type unknownIntent struct{}

func (unknownIntent) Kind() string { return "SOMETHING/ELSE" }

func TestAddAccount_Defaults(t *testing.T) {
	r := newTestReducer()
	s := mustApply(t, r, NewState(), AddAccount{Account: AccountFields{Name: Ptr("  Current ")}})

	require.Len(t, s.Accounts, 1)
	assert.Equal(t, Account{
		ID:           "id-1",
		Name:         "Current",
		Balance:      0,
		Transactions: []Transaction{},
	}, s.Accounts[0])
}

func TestAddAccount_NewDefaultClearsOthers(t *testing.T) {
	// GIVEN: an existing default account
	r := newTestReducer()
	s := mustApply(t, r, NewState(),
		AddAccount{Account: AccountFields{Name: Ptr("Current"), IsDefault: Ptr(true)}},
	)
	require.True(t, s.Accounts[0].IsDefault)

	// WHEN: another account is added as the default
	next := mustApply(t, r, s, AddAccount{Account: AccountFields{Name: Ptr("Savings"), IsDefault: Ptr(true)}})

	// THEN: the first one is no longer the default
	assert.False(t, next.Accounts[0].IsDefault)
	assert.True(t, next.Accounts[1].IsDefault)

	// and the previous state is untouched
	assert.True(t, s.Accounts[0].IsDefault)
	assert.Len(t, s.Accounts, 1)
}

func TestAddAccount_NonDefaultKeepsExistingDefault(t *testing.T) {
	r := newTestReducer()
	s := mustApply(t, r, NewState(),
		AddAccount{Account: AccountFields{Name: Ptr("Current"), IsDefault: Ptr(true)}},
		AddAccount{Account: AccountFields{Name: Ptr("Savings")}},
	)
	assert.True(t, s.Accounts[0].IsDefault)
	assert.False(t, s.Accounts[1].IsDefault)
}

func TestEditAccount_PartialFieldsKeepCurrentValues(t *testing.T) {
	r := newTestReducer()
	s := mustApply(t, r, NewState(),
		AddAccount{Account: AccountFields{Name: Ptr("Current"), ShowRunningBalance: Ptr(true)}},
		AddTransaction{AccountID: "id-1", Transaction: TransactionFields{Payee: "Salary", Amount: 1000, Cleared: day(2024, 1, 1)}},
	)

	s = mustApply(t, r, s, EditAccount{AccountID: "id-1", Account: AccountFields{Name: Ptr("Main")}})

	a := s.Accounts[0]
	assert.Equal(t, "Main", a.Name)
	assert.True(t, a.ShowRunningBalance)
	assert.Equal(t, int64(1000), a.Balance)
	assert.Len(t, a.Transactions, 1)
}

func TestEditAccount_ToggleDefault(t *testing.T) {
	r := newTestReducer()
	s := mustApply(t, r, NewState(),
		AddAccount{Account: AccountFields{Name: Ptr("Current"), IsDefault: Ptr(true)}},
		AddAccount{Account: AccountFields{Name: Ptr("Savings")}},
	)

	s = mustApply(t, r, s, EditAccount{AccountID: "id-2", Account: AccountFields{IsDefault: Ptr(true)}})
	assert.False(t, s.Accounts[0].IsDefault)
	assert.True(t, s.Accounts[1].IsDefault)

	s = mustApply(t, r, s, EditAccount{AccountID: "id-2", Account: AccountFields{IsDefault: Ptr(false)}})
	assert.False(t, s.Accounts[0].IsDefault)
	assert.False(t, s.Accounts[1].IsDefault)
}

func TestDeleteAccount(t *testing.T) {
	r := newTestReducer()
	s := mustApply(t, r, NewState(),
		AddAccount{Account: AccountFields{Name: Ptr("A")}},
		AddAccount{Account: AccountFields{Name: Ptr("B")}},
		AddAccount{Account: AccountFields{Name: Ptr("C")}},
	)

	next := mustApply(t, r, s, DeleteAccount{AccountID: "id-2"})
	require.Len(t, next.Accounts, 2)
	assert.Equal(t, "A", next.Accounts[0].Name)
	assert.Equal(t, "C", next.Accounts[1].Name)
	assert.Len(t, s.Accounts, 3)
}

func TestMissingIDsReportNotFound(t *testing.T) {
	r := newTestReducer()
	s := mustApply(t, r, NewState(), AddAccount{Account: AccountFields{Name: Ptr("Current")}})

	tests := []struct {
		name   string
		intent Intent
		want   error
	}{
		{"edit account", EditAccount{AccountID: "nope", Account: AccountFields{Name: Ptr("x")}}, ErrAccountNotFound},
		{"delete account", DeleteAccount{AccountID: "nope"}, ErrAccountNotFound},
		{"add transaction", AddTransaction{AccountID: "nope"}, ErrAccountNotFound},
		{"edit transaction, missing account", EditTransaction{AccountID: "nope", TransactionID: "t"}, ErrAccountNotFound},
		{"edit transaction, missing transaction", EditTransaction{AccountID: "id-1", TransactionID: "t"}, ErrTransactionNotFound},
		{"delete transaction", DeleteTransaction{AccountID: "id-1", TransactionID: "t"}, ErrTransactionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Apply(s, tt.intent)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsNotFound(err))
			assert.Equal(t, s, got)
		})
	}
}

func TestUnknownIntentIsIdentity(t *testing.T) {
	r := newTestReducer()
	s := mustApply(t, r, NewState(), AddAccount{Account: AccountFields{Name: Ptr("Current")}})

	got, err := r.Apply(s, unknownIntent{})
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestScenario_SalaryThenRent(t *testing.T) {
	r := newTestReducer()
	s := mustApply(t, r, NewState(), AddAccount{Account: AccountFields{Name: Ptr("Current")}})

	// Scenario 1
	s = mustApply(t, r, s, AddTransaction{AccountID: "id-1", Transaction: TransactionFields{
		Payee: "Salary", Amount: 250000, Cleared: day(2024, 1, 10),
	}})
	a := s.Accounts[0]
	assert.Equal(t, int64(250000), a.Balance)
	assert.Equal(t, []Transaction{{ID: "id-2", Payee: "Salary", Amount: 250000, Cleared: day(2024, 1, 10)}}, a.Transactions)

	// Scenario 2
	s = mustApply(t, r, s, AddTransaction{AccountID: "id-1", Transaction: TransactionFields{
		Payee: "Rent", Amount: -120000, Cleared: day(2024, 1, 5),
	}})
	a = s.Accounts[0]
	assert.Equal(t, int64(130000), a.Balance)
	assert.Equal(t, []string{"Salary", "Rent"}, payees(a))
}

func TestEditTransaction_PreservesIDAndAdjustsBalance(t *testing.T) {
	r := newTestReducer()
	s := mustApply(t, r, NewState(),
		AddAccount{Account: AccountFields{Name: Ptr("Current")}},
		AddTransaction{AccountID: "id-1", Transaction: TransactionFields{Payee: "Salary", Amount: 100000, Cleared: day(2024, 2, 1)}},
		AddTransaction{AccountID: "id-1", Transaction: TransactionFields{Payee: "Coffee", Amount: -5000, Cleared: day(2024, 2, 3)}},
	)
	before := s.Accounts[0].Balance

	// Scenario 4: -5000 -> -3000
	s = mustApply(t, r, s, EditTransaction{AccountID: "id-1", TransactionID: "id-3", Transaction: TransactionFields{
		Payee: "Coffee", Amount: -3000, Cleared: day(2024, 2, 3),
	}})

	a := s.Accounts[0]
	assert.Equal(t, int64(2000), a.Balance-before)
	txn, ok := a.Transaction("id-3")
	require.True(t, ok)
	assert.Equal(t, int64(-3000), txn.Amount)
}

func TestEditTransaction_MovesWhenDateChanges(t *testing.T) {
	r := newTestReducer()
	s := mustApply(t, r, NewState(),
		AddAccount{Account: AccountFields{Name: Ptr("Current")}},
		AddTransaction{AccountID: "id-1", Transaction: TransactionFields{Payee: "A", Amount: 1, Cleared: day(2024, 1, 1)}},
		AddTransaction{AccountID: "id-1", Transaction: TransactionFields{Payee: "B", Amount: 2, Cleared: day(2024, 1, 2)}},
		AddTransaction{AccountID: "id-1", Transaction: TransactionFields{Payee: "C", Amount: 3, Cleared: day(2024, 1, 3)}},
	)
	require.Equal(t, []string{"C", "B", "A"}, payees(s.Accounts[0]))

	s = mustApply(t, r, s, EditTransaction{AccountID: "id-1", TransactionID: "id-2", Transaction: TransactionFields{
		Payee: "A", Amount: 1, Cleared: day(2024, 1, 4),
	}})
	assert.Equal(t, []string{"A", "C", "B"}, payees(s.Accounts[0]))
	assert.Equal(t, "id-2", s.Accounts[0].Transactions[0].ID)
}

func TestDeleteTransaction_Twice(t *testing.T) {
	r := newTestReducer()
	s := mustApply(t, r, NewState(),
		AddAccount{Account: AccountFields{Name: Ptr("Current")}},
		AddTransaction{AccountID: "id-1", Transaction: TransactionFields{Payee: "Salary", Amount: 500, Cleared: day(2024, 1, 1)}},
		AddTransaction{AccountID: "id-1", Transaction: TransactionFields{Payee: "Lunch", Amount: -120, Cleared: day(2024, 1, 2)}},
	)

	once := mustApply(t, r, s, DeleteTransaction{AccountID: "id-1", TransactionID: "id-3"})
	assert.Equal(t, int64(500), once.Accounts[0].Balance)
	assert.Equal(t, []string{"Salary"}, payees(once.Accounts[0]))

	twice, err := r.Apply(once, DeleteTransaction{AccountID: "id-1", TransactionID: "id-3"})
	assert.ErrorIs(t, err, ErrTransactionNotFound)
	assert.Equal(t, once, twice)
}

func TestTransactionIntentsLeaveDefaultAlone(t *testing.T) {
	r := newTestReducer()
	s := mustApply(t, r, NewState(),
		AddAccount{Account: AccountFields{Name: Ptr("Current"), IsDefault: Ptr(true)}},
		AddAccount{Account: AccountFields{Name: Ptr("Savings")}},
		AddTransaction{AccountID: "id-2", Transaction: TransactionFields{Payee: "Interest", Amount: 12, Cleared: day(2024, 1, 1)}},
	)
	assert.True(t, s.Accounts[0].IsDefault)
	assert.False(t, s.Accounts[1].IsDefault)
}

func TestInsertTransaction_Order(t *testing.T) {
	base := []Transaction{
		{ID: "c", Cleared: day(2024, 1, 3)},
		{ID: "b", Cleared: day(2024, 1, 2)},
		{ID: "a", Cleared: day(2024, 1, 1)},
	}

	tests := []struct {
		name    string
		cleared time.Time
		want    []string
	}{
		{"newest goes first", day(2024, 1, 4), []string{"new", "c", "b", "a"}},
		{"middle", day(2024, 1, 2), []string{"c", "new", "b", "a"}},
		{"oldest is appended", day(2023, 12, 31), []string{"c", "b", "a", "new"}},
		{"tie with oldest goes before it", day(2024, 1, 1), []string{"c", "b", "new", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := insertTransaction(base, Transaction{ID: "new", Cleared: tt.cleared})
			ids := make([]string, len(got))
			for i, x := range got {
				ids[i] = x.ID
			}
			assert.Equal(t, tt.want, ids)
			assert.Len(t, base, 3, "input must not change")
			assert.Equal(t, "c", base[0].ID)
		})
	}
}

func TestInsertTransaction_EqualDatesNewestInsertionFirst(t *testing.T) {
	var txns []Transaction
	for _, id := range []string{"first", "second", "third"} {
		txns = insertTransaction(txns, Transaction{ID: id, Cleared: day(2024, 5, 1)})
	}
	require.Len(t, txns, 3)
	assert.Equal(t, "third", txns[0].ID)
	assert.Equal(t, "second", txns[1].ID)
	assert.Equal(t, "first", txns[2].ID)
}

func TestInsertTransaction_DoesNotShareBackingArray(t *testing.T) {
	base := make([]Transaction, 1, 8)
	base[0] = Transaction{ID: "a", Cleared: day(2024, 1, 2)}

	x := insertTransaction(base, Transaction{ID: "x", Cleared: day(2024, 1, 1)})
	y := insertTransaction(base, Transaction{ID: "y", Cleared: day(2024, 1, 1)})
	assert.Equal(t, "x", x[1].ID)
	assert.Equal(t, "y", y[1].ID)
}

func TestRemoveTransaction(t *testing.T) {
	base := []Transaction{{ID: "a", Amount: 1}, {ID: "b", Amount: 2}, {ID: "c", Amount: 3}}

	rest, removed, err := removeTransaction(base, "b")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed.Amount)
	assert.Equal(t, []Transaction{{ID: "a", Amount: 1}, {ID: "c", Amount: 3}}, rest)
	assert.Len(t, base, 3)

	_, _, err = removeTransaction(base, "zzz")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestUpdateAccount_SoleDefaultEnforcement(t *testing.T) {
	accounts := []Account{
		{ID: "a", IsDefault: true},
		{ID: "b"},
		{ID: "c"},
	}

	out, err := updateAccount(accounts, "c", func(a Account) (Account, error) {
		a.IsDefault = true
		return a, nil
	})
	require.NoError(t, err)
	assert.False(t, out[0].IsDefault)
	assert.False(t, out[1].IsDefault)
	assert.True(t, out[2].IsDefault)
	assert.True(t, accounts[0].IsDefault, "input must not change")
}

func TestInvariantsHoldOverRandomWorkload(t *testing.T) {
	r := newTestReducer()
	s := mustApply(t, r, NewState(),
		AddAccount{Account: AccountFields{Name: Ptr("A"), IsDefault: Ptr(true)}},
		AddAccount{Account: AccountFields{Name: Ptr("B")}},
	)

	// A deterministic mix of adds, edits and deletes across both accounts.
	for i := 0; i < 200; i++ {
		acct := s.Accounts[i%2]
		cleared := day(2024, time.Month(1+i%12), 1+(i*7)%28)
		switch {
		case i%5 == 4 && len(acct.Transactions) > 0:
			victim := acct.Transactions[(i/5)%len(acct.Transactions)]
			s = mustApply(t, r, s, DeleteTransaction{AccountID: acct.ID, TransactionID: victim.ID})
		case i%3 == 2 && len(acct.Transactions) > 0:
			victim := acct.Transactions[i%len(acct.Transactions)]
			s = mustApply(t, r, s, EditTransaction{AccountID: acct.ID, TransactionID: victim.ID, Transaction: TransactionFields{
				Payee: "edited", Amount: int64(i*13 - 700), Cleared: cleared,
			}})
		case i%17 == 0:
			s = mustApply(t, r, s, EditAccount{AccountID: acct.ID, Account: AccountFields{IsDefault: Ptr(true)}})
		default:
			s = mustApply(t, r, s, AddTransaction{AccountID: acct.ID, Transaction: TransactionFields{
				Payee: fmt.Sprintf("p%d", i), Amount: int64(i*31 - 1500), Cleared: cleared,
			}})
		}
	}
}
