package cmd

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/simonvc/simplebalance/internal/book"
	"github.com/simonvc/simplebalance/internal/client"
	"github.com/simonvc/simplebalance/internal/ledger"
	"github.com/simonvc/simplebalance/internal/server"
	"github.com/simonvc/simplebalance/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCleared(t *testing.T) {
	base := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)

	got, err := parseCleared("", base)
	require.NoError(t, err)
	assert.Equal(t, base, got)

	got, err = parseCleared("2024-05-20", base)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 20, 10, 30, 0, 0, time.UTC), got)

	got, err = parseCleared("2024-05-20T08:00:00Z", base)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC), got)

	_, err = parseCleared("20/05/2024", base)
	assert.Error(t, err)
}

func TestSignedAmount(t *testing.T) {
	tests := []struct {
		in      string
		expense bool
		want    int64
	}{
		{"12.50", false, 1250},
		{"12.50", true, -1250},
		{"-12.50", false, 1250},
		{"£1,000", true, -100000},
	}
	for _, tt := range tests {
		got, err := signedAmount(tt.in, tt.expense)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := signedAmount("lots", false)
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
}

func TestCommands_AgainstServer(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	b, err := book.Open(context.Background(), store.NewMemory(), book.WithLogger(log))
	require.NoError(t, err)
	srv := httptest.NewServer(server.New(b, "", log).Handler())
	defer srv.Close()
	defer b.Close(context.Background())

	execute := func(args ...string) error {
		resetFlags(rootCmd)
		rootCmd.SetArgs(append(args, "--server", srv.URL))
		return rootCmd.Execute()
	}

	require.NoError(t, execute("account", "add", "--name", "Current"))
	accounts := b.Snapshot().Accounts
	require.Len(t, accounts, 1)
	id := accounts[0].ID

	// The only account is the default, so --account can be left out.
	require.NoError(t, execute("txn", "add", "--payee", "Rent", "--amount", "950", "--expense", "--date", "2024-05-01"))
	require.NoError(t, execute("txn", "add", "--account", id, "--payee", "Salary", "--amount", "2,000.00", "--date", "2024-05-25"))

	acct, ok := b.Snapshot().Account(id)
	require.True(t, ok)
	assert.Equal(t, int64(105000), acct.Balance)
	require.Len(t, acct.Transactions, 2)
	assert.Equal(t, "Salary", acct.Transactions[0].Payee)

	rent := acct.Transactions[1]
	require.NoError(t, execute("txn", "copy", rent.ID, "--date", "2024-06-01"))
	require.NoError(t, execute("txn", "edit", rent.ID, "--amount", "900"))
	require.NoError(t, execute("txn", "list"))

	acct, _ = b.Snapshot().Account(id)
	assert.Equal(t, int64(200000-95000-90000), acct.Balance)
	edited, ok := acct.Transaction(rent.ID)
	require.True(t, ok)
	assert.Equal(t, int64(-90000), edited.Amount, "edit keeps the expense sign")

	require.NoError(t, execute("account", "edit", id, "--name", "Joint", "--running-balance"))
	require.NoError(t, execute("account", "default", id))
	acct, _ = b.Snapshot().Account(id)
	assert.Equal(t, "Joint", acct.Name)
	assert.True(t, acct.ShowRunningBalance)
	assert.True(t, acct.IsDefault)

	require.NoError(t, execute("txn", "delete", rent.ID))
	assert.Error(t, execute("txn", "delete", rent.ID))

	require.NoError(t, execute("account", "delete", id))
	assert.Empty(t, b.Snapshot().Accounts)

	c := client.New(srv.URL)
	_, err = c.DefaultAccount(context.Background())
	assert.True(t, client.IsNotFound(err))
}

// resetFlags puts every flag back to its default; cobra keeps values
// between Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}
