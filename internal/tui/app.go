package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/simonvc/simplebalance/internal/client"
	"github.com/simonvc/simplebalance/internal/ledger"
)

type mode int

const (
	modeAccountList mode = iota
	modeTransactionList
	modeAccountForm
	modeTxnForm
)

// defaultAccountMsg carries the account to open on start, if any.
type defaultAccountMsg struct {
	account *ledger.Account
}

type App struct {
	client        *client.Client
	mode          mode
	formReturn    mode
	width, height int
	err           error
	statusMsg     string
	now           func() time.Time

	accountList accountListModel
	txnList     txnListModel
	accountForm accountFormModel
	txnForm     txnFormModel
}

func NewApp(c *client.Client) *App {
	return &App{
		client: c,
		mode:   modeAccountList,
		now:    time.Now,
	}
}

func (a *App) Init() tea.Cmd {
	c := a.client
	return tea.Batch(
		a.accountList.init(c),
		func() tea.Msg {
			acct, err := c.DefaultAccount(context.Background())
			if err != nil {
				return defaultAccountMsg{}
			}
			return defaultAccountMsg{account: acct}
		},
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		a.width = msg.Width
		a.height = msg.Height
		a.accountList.width = msg.Width
		a.accountList.height = msg.Height - 6
		a.txnList.width = msg.Width
		a.txnList.height = msg.Height - 6
		a.accountForm.width = msg.Width
		a.txnForm.width = msg.Width
		return a, nil
	}

	// Route data messages to the owning sub-model regardless of the active
	// mode; loads started in one mode may finish in another.
	switch typedMsg := msg.(type) {
	case accountsLoadedMsg:
		var cmd tea.Cmd
		a.accountList, cmd = a.accountList.update(msg, a.client)
		return a, cmd

	case daysLoadedMsg:
		var cmd tea.Cmd
		a.txnList, cmd = a.txnList.update(msg, a.client)
		return a, cmd

	case defaultAccountMsg:
		if typedMsg.account == nil || a.mode != modeAccountList {
			return a, nil
		}
		a.mode = modeTransactionList
		return a, a.txnList.init(a.client, typedMsg.account.ID)

	case accountDeletedMsg:
		a.accountList, _ = a.accountList.update(msg, a.client)
		if typedMsg.err != nil {
			return a, nil
		}
		a.statusMsg = fmt.Sprintf("Account %q deleted", typedMsg.name)
		return a, a.accountList.init(a.client)

	case accountSavedMsg:
		if a.mode == modeAccountForm {
			a.accountForm, _ = a.accountForm.update(msg, a.client)
			if !a.accountForm.done {
				return a, nil
			}
			a.mode = a.formReturn
			a.statusMsg = a.accountForm.statusMsg
			return a, a.refresh()
		}
		if typedMsg.err != nil {
			a.err = typedMsg.err
			return a, nil
		}
		a.err = nil
		a.statusMsg = fmt.Sprintf("Account %q %s", typedMsg.account.Name, typedMsg.verb)
		return a, a.refresh()

	case txnSavedMsg:
		a.txnForm, _ = a.txnForm.update(msg, a.client)
		if !a.txnForm.done {
			return a, nil
		}
		a.mode = modeTransactionList
		a.statusMsg = a.txnForm.statusMsg
		return a, a.refresh()

	case txnDeletedMsg:
		a.txnList, _ = a.txnList.update(msg, a.client)
		if typedMsg.err != nil {
			return a, nil
		}
		a.statusMsg = fmt.Sprintf("%q deleted", typedMsg.payee)
		return a, a.refresh()
	}

	// Modal modes: delegate ALL message types (not just keys)
	switch a.mode {
	case modeAccountForm:
		var cmd tea.Cmd
		a.accountForm, cmd = a.accountForm.update(msg, a.client)
		if a.accountForm.cancelled {
			a.mode = a.formReturn
			a.statusMsg = "Cancelled"
		}
		return a, cmd

	case modeTxnForm:
		var cmd tea.Cmd
		a.txnForm, cmd = a.txnForm.update(msg, a.client)
		if a.txnForm.cancelled {
			a.mode = modeTransactionList
			a.statusMsg = "Cancelled"
		}
		return a, cmd
	}

	// Delete confirmations take the next key, whatever it is.
	if a.mode == modeAccountList && a.accountList.confirmDelete {
		var cmd tea.Cmd
		a.accountList, cmd = a.accountList.update(msg, a.client)
		return a, cmd
	}
	if a.mode == modeTransactionList && a.txnList.confirmDelete {
		var cmd tea.Cmd
		a.txnList, cmd = a.txnList.update(msg, a.client)
		return a, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		a.err = nil
		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit

		case key.Matches(msg, keys.Escape):
			if a.mode == modeTransactionList {
				a.mode = modeAccountList
				a.statusMsg = ""
				return a, a.accountList.init(a.client)
			}
			return a, nil

		case key.Matches(msg, keys.Enter):
			if a.mode == modeAccountList {
				if acct, ok := a.accountList.selected(); ok {
					a.mode = modeTransactionList
					a.statusMsg = ""
					return a, a.txnList.init(a.client, acct.ID)
				}
			}
			return a, nil

		case key.Matches(msg, keys.New):
			switch a.mode {
			case modeAccountList:
				a.openAccountForm(newAccountForm())
			case modeTransactionList:
				a.openTxnForm(newTxnForm(a.txnList.accountID, a.now()))
			}
			return a, nil

		case key.Matches(msg, keys.Edit):
			switch a.mode {
			case modeAccountList:
				if acct, ok := a.accountList.selected(); ok {
					a.openAccountForm(editAccountForm(acct))
				}
			case modeTransactionList:
				if e, ok := a.txnList.selected(); ok {
					a.openTxnForm(editTxnForm(a.txnList.accountID, e.Transaction))
				}
			}
			return a, nil

		case key.Matches(msg, keys.Copy):
			if a.mode == modeTransactionList {
				if e, ok := a.txnList.selected(); ok {
					a.openTxnForm(copyTxnForm(a.txnList.accountID, e.Transaction, a.now()))
				}
			}
			return a, nil

		case key.Matches(msg, keys.Default):
			if a.mode == modeTransactionList {
				return a, toggleDefault(a.client, a.txnList.account)
			}
		}
	}

	// Delegate update to active sub-model
	var cmd tea.Cmd
	switch a.mode {
	case modeAccountList:
		a.accountList, cmd = a.accountList.update(msg, a.client)
	case modeTransactionList:
		a.txnList, cmd = a.txnList.update(msg, a.client)
	}
	return a, cmd
}

func (a *App) openAccountForm(f accountFormModel) {
	f.width = a.width
	a.accountForm = f
	a.formReturn = a.mode
	a.mode = modeAccountForm
	a.statusMsg = ""
}

func (a *App) openTxnForm(f txnFormModel) {
	f.width = a.width
	a.txnForm = f
	a.mode = modeTxnForm
	a.statusMsg = ""
}

// refresh reloads whatever list is on screen.
func (a *App) refresh() tea.Cmd {
	switch a.mode {
	case modeTransactionList:
		return a.txnList.init(a.client, a.txnList.accountID)
	default:
		return a.accountList.init(a.client)
	}
}

func (a *App) helpText() string {
	switch a.mode {
	case modeAccountList:
		return "enter:open  n:new  e:edit  d:delete  s:star default  q:quit"
	case modeTransactionList:
		return "n:new  e:edit  c:copy  d:delete  b:running balance  s:star  esc:accounts  q:quit"
	default:
		return "enter:next  esc:cancel"
	}
}

func (a *App) View() string {
	header := titleStyle.Render("simplebalance")
	if a.mode == modeTransactionList {
		header += subtitleStyle.Render("  accounts / " + a.txnList.account.Name)
	}

	var content string
	switch a.mode {
	case modeAccountList:
		content = a.accountList.view()
	case modeTransactionList:
		content = a.txnList.view()
	case modeAccountForm:
		content = a.accountForm.view()
	case modeTxnForm:
		content = a.txnForm.view()
	}

	// Status bar
	status := ""
	if a.statusMsg != "" {
		status = successStyle.Render(a.statusMsg)
	}
	if a.err != nil {
		status = errorStyle.Render(a.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		content,
		"",
		status,
		dimStyle.Render(a.helpText()),
	)
}
