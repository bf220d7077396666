package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/simonvc/simplebalance/internal/client"
	"github.com/simonvc/simplebalance/internal/ledger"
)

const dateLayout = "2006-01-02"

type txnFormStep int

const (
	txnStepPayee txnFormStep = iota
	txnStepAmount
	txnStepDirection
	txnStepDate
	txnStepConfirm
)

type txnFormKind int

const (
	txnFormAdd txnFormKind = iota
	txnFormEdit
	txnFormCopy
)

// txnFormModel adds, edits or copies one transaction. Amounts are typed
// unsigned; the income/expense toggle picks the sign.
type txnFormModel struct {
	kind      txnFormKind
	accountID string
	txnID     string
	// base supplies the time of day for the chosen date: now for new
	// transactions, the original clearing time when editing.
	base time.Time

	step    txnFormStep
	payee   textinput.Model
	amount  textinput.Model
	date    textinput.Model
	expense bool

	err       error
	done      bool
	cancelled bool
	statusMsg string
	width     int
}

func newTxnForm(accountID string, now time.Time) txnFormModel {
	payee := textinput.New()
	payee.Placeholder = "e.g. Tesco"
	payee.CharLimit = 200
	payee.Focus()

	amount := textinput.New()
	amount.Placeholder = "e.g. 12.50"
	amount.CharLimit = 20

	date := textinput.New()
	date.Placeholder = dateLayout
	date.CharLimit = len(dateLayout)
	date.SetValue(now.Format(dateLayout))

	return txnFormModel{
		kind:      txnFormAdd,
		accountID: accountID,
		base:      now,
		step:      txnStepPayee,
		payee:     payee,
		amount:    amount,
		date:      date,
		expense:   true,
	}
}

// editTxnForm prefills the form from t. Saving replaces t, keeping its id.
func editTxnForm(accountID string, t ledger.Transaction) txnFormModel {
	m := newTxnForm(accountID, t.Cleared.Local())
	m.kind = txnFormEdit
	m.txnID = t.ID
	m.prefill(t)
	return m
}

// copyTxnForm prefills the form from t but dates it now. Saving adds a new
// transaction.
func copyTxnForm(accountID string, t ledger.Transaction, now time.Time) txnFormModel {
	m := newTxnForm(accountID, now)
	m.kind = txnFormCopy
	m.prefill(t)
	return m
}

func (m *txnFormModel) prefill(t ledger.Transaction) {
	m.payee.SetValue(t.Payee)
	amt := t.Amount
	if amt < 0 {
		amt = -amt
	}
	m.amount.SetValue(ledger.FormatAmount(amt))
	m.expense = t.Amount < 0
}

func (m txnFormModel) update(msg tea.Msg, c *client.Client) (txnFormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case txnSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.step = txnStepConfirm
			return m, nil
		}
		m.done = true
		m.statusMsg = fmt.Sprintf("%q %s", msg.txn.Payee, msg.verb)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Escape) {
			m.cancelled = true
			return m, nil
		}

		switch m.step {
		case txnStepPayee:
			return m.updateInput(msg, func(m *txnFormModel) *textinput.Model { return &m.payee }, func(m *txnFormModel) error {
				if strings.TrimSpace(m.payee.Value()) == "" {
					return fmt.Errorf("payee is required")
				}
				return nil
			})
		case txnStepAmount:
			return m.updateInput(msg, func(m *txnFormModel) *textinput.Model { return &m.amount }, func(m *txnFormModel) error {
				_, err := m.pence()
				return err
			})
		case txnStepDirection:
			switch {
			case key.Matches(msg, keys.Up), key.Matches(msg, keys.Down), key.Matches(msg, keys.Toggle):
				m.expense = !m.expense
			case key.Matches(msg, keys.Enter):
				m.err = nil
				m.step = txnStepDate
				m.date.Focus()
			}
			return m, nil
		case txnStepDate:
			return m.updateInput(msg, func(m *txnFormModel) *textinput.Model { return &m.date }, func(m *txnFormModel) error {
				_, err := m.cleared()
				return err
			})
		case txnStepConfirm:
			return m.updateConfirm(msg, c)
		}
	}
	return m, nil
}

// updateInput feeds msg to the focused input until enter, then validates
// and moves on.
func (m txnFormModel) updateInput(msg tea.KeyMsg, input func(*txnFormModel) *textinput.Model, validate func(*txnFormModel) error) (txnFormModel, tea.Cmd) {
	in := input(&m)
	if key.Matches(msg, keys.Enter) {
		if err := validate(&m); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		in.Blur()
		m.step++
		switch m.step {
		case txnStepAmount:
			m.amount.Focus()
		case txnStepDate:
			m.date.Focus()
		}
		return m, nil
	}
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return m, cmd
}

func (m txnFormModel) updateConfirm(msg tea.KeyMsg, c *client.Client) (txnFormModel, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		fields, err := m.fields()
		if err != nil {
			m.err = err
			return m, nil
		}
		accountID, txnID, kind := m.accountID, m.txnID, m.kind
		return m, func() tea.Msg {
			ctx := context.Background()
			if kind == txnFormEdit {
				t, err := c.EditTransaction(ctx, accountID, txnID, fields)
				return txnSavedMsg{txn: t, verb: "updated", err: err}
			}
			t, err := c.CreateTransaction(ctx, accountID, fields)
			return txnSavedMsg{txn: t, verb: "added", err: err}
		}
	case "n", "N":
		m.cancelled = true
	}
	return m, nil
}

func (m *txnFormModel) pence() (int64, error) {
	p, err := ledger.ParseAmount(m.amount.Value())
	if err != nil {
		return 0, err
	}
	if p < 0 {
		p = -p
	}
	if m.expense {
		p = -p
	}
	return p, nil
}

// cleared combines the typed date with the time of day of base, so several
// transactions entered on one day keep their entry order.
func (m *txnFormModel) cleared() (time.Time, error) {
	loc := m.base.Location()
	d, err := time.ParseInLocation(dateLayout, strings.TrimSpace(m.date.Value()), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must look like %s", dateLayout)
	}
	hh, mm, ss := m.base.Clock()
	return time.Date(d.Year(), d.Month(), d.Day(), hh, mm, ss, m.base.Nanosecond(), loc), nil
}

func (m *txnFormModel) fields() (ledger.TransactionFields, error) {
	pence, err := m.pence()
	if err != nil {
		return ledger.TransactionFields{}, err
	}
	cleared, err := m.cleared()
	if err != nil {
		return ledger.TransactionFields{}, err
	}
	return ledger.TransactionFields{
		Payee:   strings.TrimSpace(m.payee.Value()),
		Amount:  pence,
		Cleared: cleared,
	}, nil
}

func (m *txnFormModel) title() string {
	switch m.kind {
	case txnFormEdit:
		return "Edit Transaction"
	case txnFormCopy:
		return "Copy Transaction"
	default:
		return "New Transaction"
	}
}

func (m *txnFormModel) direction() string {
	if m.expense {
		return "Expense"
	}
	return "Income"
}

func (m *txnFormModel) view() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title()))
	b.WriteString("\n\n")

	if m.step > txnStepPayee {
		b.WriteString(labelStyle.Render("  Payee") + m.payee.Value() + "\n")
	}
	if m.step > txnStepAmount {
		b.WriteString(labelStyle.Render("  Amount") + m.amount.Value() + "\n")
	}
	if m.step > txnStepDirection {
		b.WriteString(labelStyle.Render("  Type") + m.direction() + "\n")
	}
	if m.step > txnStepDate {
		b.WriteString(labelStyle.Render("  Date") + m.date.Value() + "\n")
	}
	if m.step > txnStepPayee {
		b.WriteString("\n")
	}

	switch m.step {
	case txnStepPayee:
		b.WriteString("  Who was it paid to or received from?\n\n")
		b.WriteString("  " + m.payee.View() + "\n")

	case txnStepAmount:
		b.WriteString("  Enter amount (e.g. 12.50):\n\n")
		b.WriteString("  " + m.amount.View() + "\n")

	case txnStepDirection:
		b.WriteString("  Money in or out?\n\n")
		if m.expense {
			b.WriteString("    Income\n")
			b.WriteString(selectedStyle.Render("  > Expense") + "\n")
		} else {
			b.WriteString(selectedStyle.Render("  > Income") + "\n")
			b.WriteString("    Expense\n")
		}

	case txnStepDate:
		b.WriteString("  Date cleared:\n\n")
		b.WriteString("  " + m.date.View() + "\n")

	case txnStepConfirm:
		pence, _ := m.pence()
		summary := fmt.Sprintf("%s  %s", m.payee.Value(), amountStyle(pence).Render(ledger.FormatSigned(pence)))
		b.WriteString(boxStyle.Render(summary) + "\n\n")
		b.WriteString("  Save? (y/n)\n")
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("  "+m.err.Error()))
	}
	return b.String()
}
