package store

import (
	"fmt"
	"time"

	"github.com/payoffplan/payoff/internal/model"
)

// Payment is one ledger entry.
type Payment struct {
	ID     int64
	LoanID int64
	PaidOn time.Time
	Amount float64
	model.PaymentResult
}

// RecordPayment applies amount to loan loanID as of date, saves the new loan
// state and appends the split to the ledger, all in one transaction.
func (s *Store) RecordPayment(loanID int64, amount float64, date time.Time) (model.PaymentResult, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return model.PaymentResult{}, err
	}
	defer func() { _ = tx.Rollback() }()

	loans, err := queryLoans(tx, "SELECT "+loanColumns+" FROM loans WHERE id = ?", loanID)
	if err != nil {
		return model.PaymentResult{}, fmt.Errorf("loading loan %d: %w", loanID, err)
	}
	if len(loans) == 0 {
		return model.PaymentResult{}, fmt.Errorf("loan %d: %w", loanID, ErrNotFound)
	}
	l := loans[0]
	res := l.ApplyPayment(amount, date)

	if _, err := tx.Exec(`UPDATE loans SET current_balance = ?, total_paid = ?, last_payment_date = ?
		WHERE id = ?`, l.CurrentBalance, l.TotalPaid, model.FormatDate(l.LastPaymentDate), loanID); err != nil {
		return model.PaymentResult{}, fmt.Errorf("updating loan %d: %w", loanID, err)
	}
	if _, err := tx.Exec(`INSERT INTO payments (loan_id, paid_on, amount, interest_paid, principal_paid,
		remaining_balance) VALUES (?, ?, ?, ?, ?, ?)`,
		loanID, model.FormatDate(date), amount, res.InterestPaid, res.PrincipalPaid, res.RemainingBalance); err != nil {
		return model.PaymentResult{}, fmt.Errorf("recording payment: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.PaymentResult{}, err
	}

	s.log.WithField("loan_id", loanID).WithField("amount", amount).Info("payment recorded")
	return res, nil
}

// Payments returns the ledger for loanID, oldest first.
func (s *Store) Payments(loanID int64) ([]Payment, error) {
	rows, err := s.db.Query(`SELECT id, loan_id, paid_on, amount, interest_paid, principal_paid,
		remaining_balance FROM payments WHERE loan_id = ? ORDER BY paid_on, id`, loanID)
	if err != nil {
		return nil, fmt.Errorf("loading payments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Payment
	for rows.Next() {
		var p Payment
		var paidOn string
		if err := rows.Scan(&p.ID, &p.LoanID, &paidOn, &p.Amount,
			&p.InterestPaid, &p.PrincipalPaid, &p.RemainingBalance); err != nil {
			return nil, err
		}
		if p.PaidOn, err = model.ParseDate("paid_on", paidOn); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
