package cmd

import (
	"context"
	"fmt"

	"github.com/simonvc/simplebalance/internal/client"
	"github.com/simonvc/simplebalance/internal/ledger"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:     "account",
	Aliases: []string{"acct"},
	Short:   "Manage accounts",
}

// account add
var (
	acctName           string
	acctDefault        bool
	acctRunningBalance bool
)

var accountAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(cfg.Server)

		created, err := c.CreateAccount(context.Background(), ledger.AccountFields{
			Name:               &acctName,
			IsDefault:          &acctDefault,
			ShowRunningBalance: &acctRunningBalance,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Account created: %s (%s)\n", created.ID, created.Name)
		return nil
	},
}

// account edit
var accountEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Rename an account or change its settings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(cfg.Server)

		var f ledger.AccountFields
		if cmd.Flags().Changed("name") {
			f.Name = &acctName
		}
		if cmd.Flags().Changed("default") {
			f.IsDefault = &acctDefault
		}
		if cmd.Flags().Changed("running-balance") {
			f.ShowRunningBalance = &acctRunningBalance
		}
		if f == (ledger.AccountFields{}) {
			return fmt.Errorf("nothing to change: pass --name, --default or --running-balance")
		}

		acct, err := c.EditAccount(context.Background(), args[0], f)
		if err != nil {
			return err
		}
		printAccount(acct)
		return nil
	},
}

// account default toggles the star, like 's' in the TUI.
var accountDefaultCmd = &cobra.Command{
	Use:   "default [id]",
	Short: "Toggle whether an account opens on start",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(cfg.Server)
		ctx := context.Background()

		acct, err := c.GetAccount(ctx, args[0])
		if err != nil {
			return err
		}
		updated, err := c.EditAccount(ctx, acct.ID, ledger.AccountFields{IsDefault: ledger.Ptr(!acct.IsDefault)})
		if err != nil {
			return err
		}

		if updated.IsDefault {
			fmt.Printf("%s is now the default account\n", updated.Name)
		} else {
			fmt.Printf("%s is no longer the default account\n", updated.Name)
		}
		return nil
	},
}

var accountDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an account and all its transactions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(cfg.Server)
		if err := c.DeleteAccount(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Account %s deleted\n", args[0])
		return nil
	},
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(cfg.Server)

		accounts, err := c.ListAccounts(context.Background())
		if err != nil {
			return err
		}

		if len(accounts) == 0 {
			fmt.Println("No accounts found.")
			return nil
		}

		fmt.Printf("%-36s %1s %-30s %14s %5s\n", "ID", "", "NAME", "BALANCE", "TXNS")
		fmt.Printf("%-36s %1s %-30s %14s %5s\n", "--", "", "----", "-------", "----")
		for _, a := range accounts {
			star := ""
			if a.IsDefault {
				star = "*"
			}
			name := a.Name
			if len(name) > 28 {
				name = name[:28] + ".."
			}
			fmt.Printf("%-36s %1s %-30s %14s %5d\n", a.ID, star, name, ledger.FormatAmount(a.Balance), len(a.Transactions))
		}
		return nil
	},
}

var accountGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get account details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(cfg.Server)

		acct, err := c.GetAccount(context.Background(), args[0])
		if err != nil {
			return err
		}
		printAccount(acct)
		return nil
	},
}

func printAccount(a *ledger.Account) {
	fmt.Printf("ID:              %s\n", a.ID)
	fmt.Printf("Name:            %s\n", a.Name)
	fmt.Printf("Balance:         %s\n", ledger.FormatAmount(a.Balance))
	fmt.Printf("Transactions:    %d\n", len(a.Transactions))
	fmt.Printf("Default:         %v\n", a.IsDefault)
	fmt.Printf("Running balance: %v\n", a.ShowRunningBalance)
}

func init() {
	for _, c := range []*cobra.Command{accountAddCmd, accountEditCmd} {
		c.Flags().StringVar(&acctName, "name", "", "Account name")
		c.Flags().BoolVar(&acctDefault, "default", false, "Open this account on start")
		c.Flags().BoolVar(&acctRunningBalance, "running-balance", false, "Show the running balance")
	}
	accountAddCmd.MarkFlagRequired("name")

	accountCmd.AddCommand(accountAddCmd)
	accountCmd.AddCommand(accountEditCmd)
	accountCmd.AddCommand(accountDefaultCmd)
	accountCmd.AddCommand(accountDeleteCmd)
	accountCmd.AddCommand(accountListCmd)
	accountCmd.AddCommand(accountGetCmd)

	rootCmd.AddCommand(accountCmd)
}
