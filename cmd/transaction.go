package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/simonvc/simplebalance/internal/client"
	"github.com/simonvc/simplebalance/internal/ledger"
	"github.com/spf13/cobra"
)

var transactionCmd = &cobra.Command{
	Use:     "transaction",
	Aliases: []string{"txn"},
	Short:   "Manage transactions",
}

var (
	txnAccountID string
	txnPayee     string
	txnAmount    string
	txnExpense   bool
	txnDate      string
)

// resolveAccount returns --account, or the default account when it is not
// set.
func resolveAccount(ctx context.Context, c *client.Client) (string, error) {
	if txnAccountID != "" {
		return txnAccountID, nil
	}
	acct, err := c.DefaultAccount(ctx)
	if client.IsNotFound(err) {
		return "", fmt.Errorf("no default account: pass --account")
	}
	if err != nil {
		return "", err
	}
	return acct.ID, nil
}

// parseCleared reads --date as YYYY-MM-DD (keeping base's time of day) or
// RFC 3339. An empty value gives base.
func parseCleared(s string, base time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return base, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation("2006-01-02", s, base.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD or RFC 3339", s)
	}
	h, m, sec := base.Clock()
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, sec, base.Nanosecond(), base.Location()), nil
}

// signedAmount parses an unsigned amount and applies --expense.
func signedAmount(s string, expense bool) (int64, error) {
	pence, err := ledger.ParseAmount(s)
	if err != nil {
		return 0, err
	}
	if pence < 0 {
		pence = -pence
	}
	if expense {
		pence = -pence
	}
	return pence, nil
}

func printTransaction(verb string, t *ledger.Transaction) {
	fmt.Printf("Transaction %s: %s\n", verb, t.ID)
	fmt.Printf("  %s  %-30s %12s\n", t.Cleared.Local().Format("2006-01-02"), t.Payee, ledger.FormatSigned(t.Amount))
}

var transactionAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a transaction",
	Long:  "Add a transaction to --account (or the default account). Amounts are income unless --expense is set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(cfg.Server)
		ctx := context.Background()

		accountID, err := resolveAccount(ctx, c)
		if err != nil {
			return err
		}
		amount, err := signedAmount(txnAmount, txnExpense)
		if err != nil {
			return err
		}
		cleared, err := parseCleared(txnDate, time.Now())
		if err != nil {
			return err
		}

		created, err := c.CreateTransaction(ctx, accountID, ledger.TransactionFields{
			Payee:   txnPayee,
			Amount:  amount,
			Cleared: cleared,
		})
		if err != nil {
			return err
		}
		printTransaction("created", created)
		return nil
	},
}

var transactionEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit a transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(cfg.Server)
		ctx := context.Background()

		accountID, err := resolveAccount(ctx, c)
		if err != nil {
			return err
		}
		current, err := c.GetTransaction(ctx, accountID, args[0])
		if err != nil {
			return err
		}

		f := current.Fields()
		if cmd.Flags().Changed("payee") {
			f.Payee = txnPayee
		}
		if cmd.Flags().Changed("amount") || cmd.Flags().Changed("expense") {
			amt := txnAmount
			if !cmd.Flags().Changed("amount") {
				amt = ledger.FormatAmount(f.Amount)
			}
			expense := f.Amount < 0
			if cmd.Flags().Changed("expense") {
				expense = txnExpense
			}
			if f.Amount, err = signedAmount(amt, expense); err != nil {
				return err
			}
		}
		if f.Cleared, err = parseCleared(txnDate, current.Cleared.Local()); err != nil {
			return err
		}

		updated, err := c.EditTransaction(ctx, accountID, current.ID, f)
		if err != nil {
			return err
		}
		printTransaction("updated", updated)
		return nil
	},
}

var transactionCopyCmd = &cobra.Command{
	Use:   "copy [id]",
	Short: "Add a new transaction with the details of an existing one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(cfg.Server)
		ctx := context.Background()

		accountID, err := resolveAccount(ctx, c)
		if err != nil {
			return err
		}

		var cleared time.Time
		if txnDate != "" {
			if cleared, err = parseCleared(txnDate, time.Now()); err != nil {
				return err
			}
		}

		created, err := c.CopyTransaction(ctx, accountID, args[0], cleared)
		if err != nil {
			return err
		}
		printTransaction("created", created)
		return nil
	},
}

var transactionDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(cfg.Server)
		ctx := context.Background()

		accountID, err := resolveAccount(ctx, c)
		if err != nil {
			return err
		}
		if err := c.DeleteTransaction(ctx, accountID, args[0]); err != nil {
			return err
		}
		fmt.Printf("Transaction %s deleted\n", args[0])
		return nil
	},
}

var transactionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions by day, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(cfg.Server)
		ctx := context.Background()

		accountID, err := resolveAccount(ctx, c)
		if err != nil {
			return err
		}
		acct, err := c.GetAccount(ctx, accountID)
		if err != nil {
			return err
		}
		days, err := c.Days(ctx, accountID, time.Local)
		if err != nil {
			return err
		}

		fmt.Printf("%s  balance %s\n", acct.Name, ledger.FormatAmount(acct.Balance))
		if len(days) == 0 {
			fmt.Println("No transactions found.")
			return nil
		}
		for _, d := range days {
			fmt.Printf("\n%s\n", d.Key)
			for _, e := range d.Entries {
				line := fmt.Sprintf("  %-36s %-30s %12s", e.ID, e.Payee, ledger.FormatSigned(e.Amount))
				if acct.ShowRunningBalance {
					line += fmt.Sprintf("  %12s", ledger.FormatAmount(e.RunningBalance))
				}
				fmt.Println(line)
			}
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{transactionAddCmd, transactionEditCmd, transactionCopyCmd, transactionDeleteCmd, transactionListCmd} {
		c.Flags().StringVar(&txnAccountID, "account", "", "Account ID (default: the default account)")
	}
	for _, c := range []*cobra.Command{transactionAddCmd, transactionEditCmd} {
		c.Flags().StringVar(&txnPayee, "payee", "", "Who was paid or paid you")
		c.Flags().StringVar(&txnAmount, "amount", "", "Amount, e.g. 12.50")
		c.Flags().BoolVar(&txnExpense, "expense", false, "Money out rather than in")
	}
	for _, c := range []*cobra.Command{transactionAddCmd, transactionEditCmd, transactionCopyCmd} {
		c.Flags().StringVar(&txnDate, "date", "", "Date cleared, YYYY-MM-DD or RFC 3339 (default: now)")
	}
	transactionAddCmd.MarkFlagRequired("payee")
	transactionAddCmd.MarkFlagRequired("amount")

	transactionCmd.AddCommand(transactionAddCmd)
	transactionCmd.AddCommand(transactionEditCmd)
	transactionCmd.AddCommand(transactionCopyCmd)
	transactionCmd.AddCommand(transactionDeleteCmd)
	transactionCmd.AddCommand(transactionListCmd)

	rootCmd.AddCommand(transactionCmd)
}
