package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/simonvc/simplebalance/internal/client"
	"github.com/simonvc/simplebalance/internal/ledger"
)

type accountFormStep int

const (
	acctStepName accountFormStep = iota
	acctStepOptions
)

const (
	optRunningBalance = iota
	optDefault
)

// accountFormModel creates an account, or edits one when accountID is set.
type accountFormModel struct {
	accountID string

	step           accountFormStep
	name           textinput.Model
	optCursor      int
	runningBalance bool
	isDefault      bool

	err       error
	done      bool
	cancelled bool
	statusMsg string
	width     int
}

func newAccountForm() accountFormModel {
	name := textinput.New()
	name.Placeholder = "e.g. Current account"
	name.CharLimit = 100
	name.Focus()

	return accountFormModel{step: acctStepName, name: name}
}

func editAccountForm(a ledger.Account) accountFormModel {
	m := newAccountForm()
	m.accountID = a.ID
	m.name.SetValue(a.Name)
	m.runningBalance = a.ShowRunningBalance
	m.isDefault = a.IsDefault
	return m
}

func (m accountFormModel) update(msg tea.Msg, c *client.Client) (accountFormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case accountSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.done = true
		m.statusMsg = fmt.Sprintf("Account %q %s", msg.account.Name, msg.verb)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Escape) {
			m.cancelled = true
			return m, nil
		}

		switch m.step {
		case acctStepName:
			if key.Matches(msg, keys.Enter) {
				if strings.TrimSpace(m.name.Value()) == "" {
					m.err = fmt.Errorf("name is required")
					return m, nil
				}
				m.err = nil
				m.name.Blur()
				m.step = acctStepOptions
				return m, nil
			}
			var cmd tea.Cmd
			m.name, cmd = m.name.Update(msg)
			return m, cmd

		case acctStepOptions:
			switch {
			case key.Matches(msg, keys.Up), key.Matches(msg, keys.Down):
				m.optCursor = 1 - m.optCursor
			case key.Matches(msg, keys.Toggle):
				if m.optCursor == optRunningBalance {
					m.runningBalance = !m.runningBalance
				} else {
					m.isDefault = !m.isDefault
				}
			case key.Matches(msg, keys.Enter):
				return m, m.save(c)
			}
		}
	}
	return m, nil
}

func (m *accountFormModel) fields() ledger.AccountFields {
	return ledger.AccountFields{
		Name:               ledger.Ptr(strings.TrimSpace(m.name.Value())),
		ShowRunningBalance: ledger.Ptr(m.runningBalance),
		IsDefault:          ledger.Ptr(m.isDefault),
	}
}

func (m *accountFormModel) save(c *client.Client) tea.Cmd {
	fields, id := m.fields(), m.accountID
	return func() tea.Msg {
		ctx := context.Background()
		if id != "" {
			acct, err := c.EditAccount(ctx, id, fields)
			return accountSavedMsg{account: acct, verb: "updated", err: err}
		}
		acct, err := c.CreateAccount(ctx, fields)
		return accountSavedMsg{account: acct, verb: "created", err: err}
	}
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m *accountFormModel) view() string {
	var b strings.Builder

	title := "New Account"
	if m.accountID != "" {
		title = "Edit Account"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	switch m.step {
	case acctStepName:
		b.WriteString("  Account name:\n\n")
		b.WriteString("  " + m.name.View() + "\n")

	case acctStepOptions:
		b.WriteString(labelStyle.Render("  Name") + m.name.Value() + "\n\n")
		opts := []string{
			checkbox(m.runningBalance) + " Show running balance",
			checkbox(m.isDefault) + " Open this account on start",
		}
		for i, o := range opts {
			if i == m.optCursor {
				b.WriteString(selectedStyle.Render("  > "+o) + "\n")
			} else {
				b.WriteString("    " + o + "\n")
			}
		}
		b.WriteString("\n" + dimStyle.Render("  space:toggle  enter:save  esc:cancel") + "\n")
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("  "+m.err.Error()))
	}
	return b.String()
}
