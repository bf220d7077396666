package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/simonvc/simplebalance/internal/client"
	"github.com/simonvc/simplebalance/internal/ledger"
)

type daysLoadedMsg struct {
	account *ledger.Account
	days    []ledger.Day
	err     error
}

// txnSavedMsg is sent after the server creates or updates a transaction.
type txnSavedMsg struct {
	txn  *ledger.Transaction
	verb string
	err  error
}

type txnDeletedMsg struct {
	payee string
	err   error
}

// txnListModel shows one account's transactions grouped by day, newest
// first.
type txnListModel struct {
	accountID     string
	account       ledger.Account
	days          []ledger.Day
	entries       []ledger.Entry // days flattened, for the cursor
	cursor        int
	loading       bool
	err           error
	width         int
	height        int
	confirmDelete bool
}

func (m *txnListModel) init(c *client.Client, accountID string) tea.Cmd {
	if accountID != m.accountID {
		m.cursor = 0
	}
	m.accountID = accountID
	m.loading = true
	return func() tea.Msg {
		ctx := context.Background()
		acct, err := c.GetAccount(ctx, accountID)
		if err != nil {
			return daysLoadedMsg{err: err}
		}
		days, err := c.Days(ctx, accountID, time.Local)
		return daysLoadedMsg{account: acct, days: days, err: err}
	}
}

func (m txnListModel) update(msg tea.Msg, c *client.Client) (txnListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case daysLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.account = *msg.account
		m.setDays(msg.days)

	case txnDeletedMsg:
		m.confirmDelete = false
		if msg.err != nil {
			m.err = msg.err
		}

	case tea.KeyMsg:
		if m.confirmDelete {
			switch msg.String() {
			case "y", "Y":
				m.confirmDelete = false
				if e, ok := m.selected(); ok {
					accountID := m.accountID
					return m, func() tea.Msg {
						err := c.DeleteTransaction(context.Background(), accountID, e.ID)
						return txnDeletedMsg{payee: e.Payee, err: err}
					}
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
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Delete):
			if _, ok := m.selected(); ok {
				m.confirmDelete = true
				m.err = nil
			}
		case key.Matches(msg, keys.RunningBalance):
			show := !m.account.ShowRunningBalance
			accountID := m.accountID
			return m, func() tea.Msg {
				acct, err := c.EditAccount(context.Background(), accountID, ledger.AccountFields{ShowRunningBalance: &show})
				return accountSavedMsg{account: acct, verb: "updated", err: err}
			}
		}
	}
	return m, nil
}

func (m *txnListModel) setDays(days []ledger.Day) {
	m.days = days
	m.entries = nil
	for _, d := range days {
		m.entries = append(m.entries, d.Entries...)
	}
	if m.cursor >= len(m.entries) {
		m.cursor = max(len(m.entries)-1, 0)
	}
}

func (m *txnListModel) selected() (ledger.Entry, bool) {
	if m.cursor >= 0 && m.cursor < len(m.entries) {
		return m.entries[m.cursor], true
	}
	return ledger.Entry{}, false
}

func (m *txnListModel) view() string {
	if m.loading {
		return "Loading transactions..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}

	var b strings.Builder

	title := m.account.Name
	if m.account.IsDefault {
		title += " " + starStyle.Render("★")
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Balance") + amountStyle(m.account.Balance).Render(ledger.FormatAmount(m.account.Balance)))
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		b.WriteString(dimStyle.Render("No transactions yet. Press 'n' to add one."))
		return b.String()
	}

	// Lay out every line, then window around the cursor.
	var (
		lines   []string
		cursorL int
		i       int
	)
	for _, d := range m.days {
		lines = append(lines, dayStyle.Render(d.Key))
		for _, e := range d.Entries {
			amount := fmt.Sprintf("%12s", ledger.FormatSigned(e.Amount))
			line := fmt.Sprintf("%-32s %s", truncate(e.Payee, 32), amountStyle(e.Amount).Render(amount))
			if m.account.ShowRunningBalance {
				line += dimStyle.Render(fmt.Sprintf("  %12s", ledger.FormatAmount(e.RunningBalance)))
			}
			if i == m.cursor {
				cursorL = len(lines)
				lines = append(lines, selectedStyle.Render("> ")+line)
			} else {
				lines = append(lines, "  "+line)
			}
			i++
		}
	}

	maxRows := m.height - 6
	if maxRows < 1 {
		maxRows = 10
	}
	start := 0
	if cursorL >= maxRows {
		start = cursorL - maxRows + 1
	}
	end := min(start+maxRows, len(lines))
	b.WriteString(strings.Join(lines[start:end], "\n"))
	b.WriteString("\n")

	if m.confirmDelete {
		e, _ := m.selected()
		b.WriteString("\n" + errorStyle.Render(fmt.Sprintf("  Delete %q (%s)? (y/n)", e.Payee, ledger.FormatSigned(e.Amount))))
	} else {
		b.WriteString(fmt.Sprintf("\n  %d transactions", len(m.entries)))
	}
	return b.String()
}
