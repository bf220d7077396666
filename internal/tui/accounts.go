package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/simonvc/simplebalance/internal/client"
	"github.com/simonvc/simplebalance/internal/ledger"
)

type accountsLoadedMsg struct {
	accounts []ledger.Account
	err      error
}

// accountSavedMsg is sent after the server creates or updates an account.
type accountSavedMsg struct {
	account *ledger.Account
	verb    string
	err     error
}

// accountDeletedMsg is sent after the server processes the delete.
type accountDeletedMsg struct {
	name string
	err  error
}

type accountListModel struct {
	accounts      []ledger.Account
	cursor        int
	loading       bool
	err           error
	width         int
	height        int
	confirmDelete bool
	deleteTarget  ledger.Account
}

func (m *accountListModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		accounts, err := c.ListAccounts(context.Background())
		return accountsLoadedMsg{accounts: accounts, err: err}
	}
}

func (m accountListModel) update(msg tea.Msg, c *client.Client) (accountListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case accountsLoadedMsg:
		m.loading = false
		m.accounts = msg.accounts
		m.err = msg.err
		if m.cursor >= len(m.accounts) {
			m.cursor = max(len(m.accounts)-1, 0)
		}

	case accountDeletedMsg:
		m.confirmDelete = false
		if msg.err != nil {
			m.err = msg.err
		}

	case tea.KeyMsg:
		if m.confirmDelete {
			switch msg.String() {
			case "y", "Y":
				target := m.deleteTarget
				m.confirmDelete = false
				return m, func() tea.Msg {
					err := c.DeleteAccount(context.Background(), target.ID)
					return accountDeletedMsg{name: target.Name, err: err}
				}
			default:
				m.confirmDelete = false
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.accounts)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Delete):
			if a, ok := m.selected(); ok {
				m.confirmDelete = true
				m.deleteTarget = a
				m.err = nil
			}
		case key.Matches(msg, keys.Default):
			if a, ok := m.selected(); ok {
				return m, toggleDefault(c, a)
			}
		}
	}
	return m, nil
}

// toggleDefault stars a, or unstars it if it is already the default. The
// server unstars every other account.
func toggleDefault(c *client.Client, a ledger.Account) tea.Cmd {
	return func() tea.Msg {
		acct, err := c.EditAccount(context.Background(), a.ID, ledger.AccountFields{IsDefault: ledger.Ptr(!a.IsDefault)})
		verb := "starred"
		if a.IsDefault {
			verb = "unstarred"
		}
		return accountSavedMsg{account: acct, verb: verb, err: err}
	}
}

func (m *accountListModel) selected() (ledger.Account, bool) {
	if m.cursor >= 0 && m.cursor < len(m.accounts) {
		return m.accounts[m.cursor], true
	}
	return ledger.Account{}, false
}

func (m *accountListModel) view() string {
	if m.loading {
		return "Loading accounts..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if len(m.accounts) == 0 {
		return dimStyle.Render("No accounts yet. Press 'n' to create one.")
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Accounts"))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-2s %-30s %14s %6s", "", "NAME", "BALANCE", "TXNS")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	maxRows := m.height - 4
	if maxRows < 1 {
		maxRows = 10
	}

	start := 0
	if m.cursor >= maxRows {
		start = m.cursor - maxRows + 1
	}

	var total int64
	for _, a := range m.accounts {
		total += a.Balance
	}

	for i := start; i < len(m.accounts) && i < start+maxRows; i++ {
		a := m.accounts[i]
		name := truncate(a.Name, 30)

		star := " "
		if a.IsDefault {
			star = starStyle.Render("★")
		}
		line := fmt.Sprintf("%-30s %14s %6d", name, ledger.FormatAmount(a.Balance), len(a.Transactions))
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> ") + star + " " + selectedStyle.Render(line))
		} else {
			b.WriteString("  " + star + " " + line)
		}
		b.WriteString("\n")
	}

	if m.confirmDelete {
		b.WriteString("\n" + errorStyle.Render(fmt.Sprintf("  Delete account %q and all its transactions? (y/n)", m.deleteTarget.Name)))
	} else {
		b.WriteString(fmt.Sprintf("\n  %d accounts, total %s", len(m.accounts), ledger.FormatAmount(total)))
	}

	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-2]) + ".."
}
