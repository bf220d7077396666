package server

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/simonvc/simplebalance/internal/ledger"
)

type transactionRequest struct {
	Payee  string `json:"payee" validate:"required,max=200"`
	Amount int64  `json:"amount"`
	// Cleared defaults to now.
	Cleared *time.Time `json:"cleared"`
}

func (req transactionRequest) fields() ledger.TransactionFields {
	cleared := time.Now()
	if req.Cleared != nil {
		cleared = *req.Cleared
	}
	return ledger.TransactionFields{
		Payee:   strings.TrimSpace(req.Payee),
		Amount:  req.Amount,
		Cleared: cleared,
	}
}

type copyTransactionRequest struct {
	Cleared *time.Time `json:"cleared"`
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	acct, ok := s.book.Snapshot().Account(id)
	if !ok {
		writeError(w, http.StatusNotFound, ledger.ErrAccountNotFound.Error()+": "+id)
		return
	}
	writeJSON(w, http.StatusOK, acct.Transactions)
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	id, txnID := param(r, "id"), param(r, "txnID")
	acct, ok := s.book.Snapshot().Account(id)
	if !ok {
		writeError(w, http.StatusNotFound, ledger.ErrAccountNotFound.Error()+": "+id)
		return
	}
	txn, ok := acct.Transaction(txnID)
	if !ok {
		writeError(w, http.StatusNotFound, ledger.ErrTransactionNotFound.Error()+": "+txnID)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := s.decode(r, &req); err != nil {
		s.writeDecodeError(w, err)
		return
	}
	if strings.TrimSpace(req.Payee) == "" {
		writeError(w, http.StatusBadRequest, "validation: payee failed required")
		return
	}
	s.addTransaction(w, param(r, "id"), req.fields())
}

func (s *Server) copyTransaction(w http.ResponseWriter, r *http.Request) {
	id, txnID := param(r, "id"), param(r, "txnID")

	var req copyTransactionRequest
	if err := s.decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
		s.writeDecodeError(w, err)
		return
	}

	acct, ok := s.book.Snapshot().Account(id)
	if !ok {
		writeError(w, http.StatusNotFound, ledger.ErrAccountNotFound.Error()+": "+id)
		return
	}
	src, ok := acct.Transaction(txnID)
	if !ok {
		writeError(w, http.StatusNotFound, ledger.ErrTransactionNotFound.Error()+": "+txnID)
		return
	}

	fields := src.Fields()
	if req.Cleared != nil {
		fields.Cleared = *req.Cleared
	}
	s.addTransaction(w, id, fields)
}

func (s *Server) addTransaction(w http.ResponseWriter, id string, fields ledger.TransactionFields) {
	before, after, err := s.book.Transition(ledger.AddTransaction{AccountID: id, Transaction: fields})
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}

	old, _ := before.Account(id)
	acct, _ := after.Account(id)
	writeJSON(w, http.StatusCreated, addedTransaction(old, acct))
}

func (s *Server) editTransaction(w http.ResponseWriter, r *http.Request) {
	id, txnID := param(r, "id"), param(r, "txnID")
	var req transactionRequest
	if err := s.decode(r, &req); err != nil {
		s.writeDecodeError(w, err)
		return
	}
	if strings.TrimSpace(req.Payee) == "" {
		writeError(w, http.StatusBadRequest, "validation: payee failed required")
		return
	}

	state, err := s.book.Dispatch(ledger.EditTransaction{AccountID: id, TransactionID: txnID, Transaction: req.fields()})
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	acct, _ := state.Account(id)
	txn, _ := acct.Transaction(txnID)
	writeJSON(w, http.StatusOK, txn)
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, txnID := param(r, "id"), param(r, "txnID")
	if _, err := s.book.Dispatch(ledger.DeleteTransaction{AccountID: id, TransactionID: txnID}); err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// addedTransaction finds the transaction present in after but not in before.
// Insertion keeps the order of the existing transactions, so the new one
// sits where the two lists first differ.
func addedTransaction(before, after ledger.Account) ledger.Transaction {
	for i, t := range after.Transactions {
		if i >= len(before.Transactions) || before.Transactions[i].ID != t.ID {
			return t
		}
	}
	return ledger.Transaction{}
}
