package tui

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/simonvc/simplebalance/internal/book"
	"github.com/simonvc/simplebalance/internal/client"
	"github.com/simonvc/simplebalance/internal/ledger"
	"github.com/simonvc/simplebalance/internal/server"
	"github.com/simonvc/simplebalance/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 10, 30, 0, 0, time.Local)

func newTestClient(t *testing.T) *client.Client {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	b, err := book.Open(context.Background(), store.NewMemory(), book.WithLogger(log))
	require.NoError(t, err)
	srv := httptest.NewServer(server.New(b, "", log).Handler())
	t.Cleanup(func() {
		srv.Close()
		b.Close(context.Background())
	})
	return client.New(srv.URL)
}

// run executes cmd and feeds its messages back into a until nothing is left.
// Only use it for commands that talk to the server; input blink ticks
// would never finish.
func run(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			run(t, a, c)
		}
		return
	}
	_, next := a.Update(msg)
	run(t, a, next)
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

// press sends each key in turn and returns the command from the last one.
func press(a *App, ks ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range ks {
		_, cmd = a.Update(keyMsg(k))
	}
	return cmd
}

func startApp(t *testing.T, c *client.Client) *App {
	t.Helper()
	a := NewApp(c)
	a.now = func() time.Time { return fixedNow }
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	run(t, a, a.Init())
	return a
}

func TestApp_OpensSoleAccountOnStart(t *testing.T) {
	c := newTestClient(t)
	_, err := c.CreateAccount(context.Background(), ledger.AccountFields{Name: ledger.Ptr("Current")})
	require.NoError(t, err)

	a := startApp(t, c)
	assert.Equal(t, modeTransactionList, a.mode)
	assert.Equal(t, "Current", a.txnList.account.Name)
	assert.Contains(t, a.View(), "No transactions yet")
}

func TestApp_StaysOnListWithoutDefault(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	_, err := c.CreateAccount(ctx, ledger.AccountFields{Name: ledger.Ptr("Current")})
	require.NoError(t, err)
	_, err = c.CreateAccount(ctx, ledger.AccountFields{Name: ledger.Ptr("Savings")})
	require.NoError(t, err)

	a := startApp(t, c)
	assert.Equal(t, modeAccountList, a.mode)
	assert.Len(t, a.accountList.accounts, 2)

	// Star the second account.
	press(a, "j")
	run(t, a, press(a, "s"))
	require.Len(t, a.accountList.accounts, 2)
	assert.False(t, a.accountList.accounts[0].IsDefault)
	assert.True(t, a.accountList.accounts[1].IsDefault)
	assert.Contains(t, a.statusMsg, "starred")
	assert.Contains(t, a.View(), "★")
}

func TestApp_AccountFormCreatesAccount(t *testing.T) {
	c := newTestClient(t)
	a := startApp(t, c)
	require.Equal(t, modeAccountList, a.mode)

	press(a, "n")
	require.Equal(t, modeAccountForm, a.mode)

	// Empty names are refused.
	press(a, "enter")
	assert.Error(t, a.accountForm.err)

	press(a, "Joint", "enter", " ")
	assert.True(t, a.accountForm.runningBalance)
	run(t, a, press(a, "enter"))

	assert.Equal(t, modeAccountList, a.mode)
	require.Len(t, a.accountList.accounts, 1)
	assert.Equal(t, "Joint", a.accountList.accounts[0].Name)
	assert.True(t, a.accountList.accounts[0].ShowRunningBalance)
}

func TestApp_TransactionLifecycle(t *testing.T) {
	c := newTestClient(t)
	_, err := c.CreateAccount(context.Background(), ledger.AccountFields{Name: ledger.Ptr("Current")})
	require.NoError(t, err)
	a := startApp(t, c)
	require.Equal(t, modeTransactionList, a.mode)

	// Add an expense: payee, amount, direction (expense is preselected), date.
	press(a, "n")
	require.Equal(t, modeTxnForm, a.mode)
	press(a, "Coffee", "enter", "3.50", "enter", "enter", "enter")
	require.Equal(t, txnStepConfirm, a.txnForm.step)
	run(t, a, press(a, "y"))

	assert.Equal(t, modeTransactionList, a.mode)
	assert.Equal(t, int64(-350), a.txnList.account.Balance)
	require.Len(t, a.txnList.entries, 1)
	assert.Contains(t, a.statusMsg, "Coffee")
	assert.True(t, a.txnList.entries[0].Cleared.Equal(fixedNow))

	// Copy it.
	press(a, "c")
	require.Equal(t, modeTxnForm, a.mode)
	press(a, "enter", "enter", "enter", "enter")
	run(t, a, press(a, "y"))
	assert.Equal(t, int64(-700), a.txnList.account.Balance)
	require.Len(t, a.txnList.entries, 2)

	// Edit the newest into income.
	press(a, "e")
	require.Equal(t, txnFormEdit, a.txnForm.kind)
	press(a, "enter", "enter", "j", "enter", "enter")
	run(t, a, press(a, "y"))
	assert.Equal(t, int64(0), a.txnList.account.Balance)

	// Delete one.
	press(a, "d")
	require.True(t, a.txnList.confirmDelete)
	run(t, a, press(a, "y"))
	require.Len(t, a.txnList.entries, 1)

	// Running balance toggle persists on the account.
	run(t, a, press(a, "b"))
	assert.True(t, a.txnList.account.ShowRunningBalance)

	// Back to the account list.
	run(t, a, press(a, "esc"))
	assert.Equal(t, modeAccountList, a.mode)
	require.Len(t, a.accountList.accounts, 1)
	assert.Len(t, a.accountList.accounts[0].Transactions, 1)
}

func TestApp_CancelForm(t *testing.T) {
	c := newTestClient(t)
	a := startApp(t, c)

	press(a, "n", "esc")
	assert.Equal(t, modeAccountList, a.mode)
	assert.Equal(t, "Cancelled", a.statusMsg)
}

func TestTxnForm_Fields(t *testing.T) {
	m := newTxnForm("acct", fixedNow)
	m.payee.SetValue("  Salary ")
	m.amount.SetValue("1,250.00")
	m.expense = false
	m.date.SetValue("2024-05-28")

	f, err := m.fields()
	require.NoError(t, err)
	assert.Equal(t, "Salary", f.Payee)
	assert.Equal(t, int64(125000), f.Amount)
	assert.Equal(t, time.Date(2024, 5, 28, 10, 30, 0, 0, time.Local), f.Cleared)

	m.expense = true
	m.amount.SetValue("-4.20")
	f, err = m.fields()
	require.NoError(t, err)
	assert.Equal(t, int64(-420), f.Amount, "sign comes from the toggle")

	m.amount.SetValue("1.234")
	_, err = m.fields()
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	m.amount.SetValue("1")
	m.date.SetValue("28/05/2024")
	_, err = m.fields()
	assert.Error(t, err)
}

func TestTxnForm_EditPrefill(t *testing.T) {
	cleared := time.Date(2024, 2, 3, 8, 15, 0, 0, time.Local)
	m := editTxnForm("acct", ledger.Transaction{ID: "t1", Payee: "Rent", Amount: -95000, Cleared: cleared})

	assert.Equal(t, "Rent", m.payee.Value())
	assert.Equal(t, "950.00", m.amount.Value())
	assert.True(t, m.expense)
	assert.Equal(t, "2024-02-03", m.date.Value())

	f, err := m.fields()
	require.NoError(t, err)
	assert.Equal(t, int64(-95000), f.Amount)
	assert.True(t, f.Cleared.Equal(cleared), "unchanged date keeps the original time")
}

func TestTxnList_ViewGroupsByDay(t *testing.T) {
	acct := ledger.Account{
		Name:               "Current",
		Balance:            97500,
		ShowRunningBalance: true,
		Transactions: []ledger.Transaction{
			{ID: "b", Payee: "Lunch", Amount: -2500, Cleared: time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)},
			{ID: "a", Payee: "Salary", Amount: 100000, Cleared: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)},
		},
	}
	m := txnListModel{account: acct, height: 30}
	m.setDays(ledger.GroupByDay(acct, time.UTC))

	v := m.view()
	assert.Contains(t, v, "2 March 2024")
	assert.Contains(t, v, "1 March 2024")
	assert.Contains(t, v, "Lunch")
	assert.Contains(t, v, "-25.00")
	assert.Contains(t, v, "975.00")
	// Salary's signed amount and its running balance.
	assert.Equal(t, 2, strings.Count(v, "1,000.00"))
	assert.Contains(t, v, "2 transactions")

	e, ok := m.selected()
	require.True(t, ok)
	assert.Equal(t, "b", e.ID)
}
