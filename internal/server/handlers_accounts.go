package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/simonvc/simplebalance/internal/ledger"
)

type createAccountRequest struct {
	Name               string `json:"name" validate:"required,max=100"`
	ShowRunningBalance *bool  `json:"showRunningBalance"`
	IsDefault          *bool  `json:"isDefault"`
}

type editAccountRequest struct {
	Name               *string `json:"name" validate:"omitnil,min=1,max=100"`
	ShowRunningBalance *bool   `json:"showRunningBalance"`
	IsDefault          *bool   `json:"isDefault"`
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.book.Snapshot().Accounts)
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := s.decode(r, &req); err != nil {
		s.writeDecodeError(w, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "validation: name failed required")
		return
	}

	state, err := s.book.Dispatch(ledger.AddAccount{Account: ledger.AccountFields{
		Name:               &name,
		ShowRunningBalance: req.ShowRunningBalance,
		IsDefault:          req.IsDefault,
	}})
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	// New accounts are appended.
	writeJSON(w, http.StatusCreated, state.Accounts[len(state.Accounts)-1])
}

func (s *Server) getDefaultAccount(w http.ResponseWriter, r *http.Request) {
	acct, ok := ledger.DefaultAccount(s.book.Snapshot())
	if !ok {
		writeError(w, http.StatusNotFound, "no default account")
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	acct, ok := s.book.Snapshot().Account(id)
	if !ok {
		writeError(w, http.StatusNotFound, ledger.ErrAccountNotFound.Error()+": "+id)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) editAccount(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	var req editAccountRequest
	if err := s.decode(r, &req); err != nil {
		s.writeDecodeError(w, err)
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeError(w, http.StatusBadRequest, "validation: name failed min")
		return
	}

	state, err := s.book.Dispatch(ledger.EditAccount{AccountID: id, Account: ledger.AccountFields{
		Name:               req.Name,
		ShowRunningBalance: req.ShowRunningBalance,
		IsDefault:          req.IsDefault,
	}})
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	acct, _ := state.Account(id)
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	if _, err := s.book.Dispatch(ledger.DeleteAccount{AccountID: param(r, "id")}); err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listDays returns the account's transactions grouped by calendar day in
// the zone named by ?tz= (server local time by default), each with its
// running balance.
func (s *Server) listDays(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	acct, ok := s.book.Snapshot().Account(id)
	if !ok {
		writeError(w, http.StatusNotFound, ledger.ErrAccountNotFound.Error()+": "+id)
		return
	}

	loc := time.Local
	if tz := r.URL.Query().Get("tz"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown time zone: "+tz)
			return
		}
		loc = l
	}
	writeJSON(w, http.StatusOK, ledger.GroupByDay(acct, loc))
}
