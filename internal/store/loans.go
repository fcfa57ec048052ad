package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/payoffplan/payoff/internal/model"
)

const loanColumns = `id, name, principal, current_balance, interest_rate, monthly_min_payment,
	extra_payment, first_due_date, interest_change_rate, loan_term_months, lender, notes,
	forbearance_start_date, forbearance_end_date, total_paid, last_payment_date, created_at`

// prefixed qualifies every column in cols with prefix.
func prefixed(prefix, cols string) string {
	parts := strings.Split(cols, ",")
	for i, c := range parts {
		parts[i] = prefix + strings.TrimSpace(c)
	}
	return strings.Join(parts, ", ")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLoan(row scanner) (model.Loan, error) {
	var (
		r                                   model.Record
		term                                sql.NullInt64
		lender, notes, fbStart, fbEnd, last sql.NullString
	)
	if err := row.Scan(
		&r.ID, &r.Name, &r.Principal, &r.CurrentBalance, &r.InterestRate, &r.MonthlyMinPayment,
		&r.ExtraPayment, &r.FirstDueDate, &r.InterestChangeRate, &term, &lender, &notes,
		&fbStart, &fbEnd, &r.TotalPaid, &last, &r.CreatedAt,
	); err != nil {
		return model.Loan{}, err
	}
	r.LoanTermMonths = int(term.Int64)
	r.Lender = lender.String
	r.Notes = notes.String
	r.ForbearanceStart = fbStart.String
	r.ForbearanceEnd = fbEnd.String
	r.LastPaymentDate = last.String
	return model.NewLoan(r)
}

func queryLoans(q interface {
	Query(string, ...any) (*sql.Rows, error)
}, query string, args ...any) ([]model.Loan, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var loans []model.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

func loanArgs(r model.Record) []any {
	return []any{
		r.Name, r.Principal, r.CurrentBalance, r.InterestRate, r.MonthlyMinPayment,
		r.ExtraPayment, r.FirstDueDate, r.InterestChangeRate, nullInt(r.LoanTermMonths),
		nullString(r.Lender), nullString(r.Notes), nullString(r.ForbearanceStart),
		nullString(r.ForbearanceEnd), r.TotalPaid, nullString(r.LastPaymentDate), r.CreatedAt,
	}
}

// AddLoan inserts l and returns its new ID. l.ID is ignored.
func (s *Store) AddLoan(l model.Loan) (int64, error) {
	if strings.TrimSpace(l.Name) == "" {
		return 0, errors.New("adding loan: name is required")
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = model.Today()
	}
	res, err := s.db.Exec(`INSERT INTO loans (name, principal, current_balance, interest_rate,
		monthly_min_payment, extra_payment, first_due_date, interest_change_rate, loan_term_months,
		lender, notes, forbearance_start_date, forbearance_end_date, total_paid, last_payment_date,
		created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, loanArgs(l.Record())...)
	if err != nil {
		return 0, fmt.Errorf("adding loan %q: %w", l.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("adding loan %q: %w", l.Name, err)
	}
	s.log.WithField("loan_id", id).Debug("loan added")
	return id, nil
}

// UpdateLoan overwrites every column of loan l.ID.
func (s *Store) UpdateLoan(l model.Loan) error {
	args := append(loanArgs(l.Record()), l.ID)
	res, err := s.db.Exec(`UPDATE loans SET name = ?, principal = ?, current_balance = ?,
		interest_rate = ?, monthly_min_payment = ?, extra_payment = ?, first_due_date = ?,
		interest_change_rate = ?, loan_term_months = ?, lender = ?, notes = ?,
		forbearance_start_date = ?, forbearance_end_date = ?, total_paid = ?,
		last_payment_date = ?, created_at = ? WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("updating loan %d: %w", l.ID, err)
	}
	return expectOne(res, "updating loan", l.ID)
}

func expectOne(res sql.Result, op string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %d: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", op, id, ErrNotFound)
	}
	return nil
}

// GetLoan returns loan id.
func (s *Store) GetLoan(id int64) (model.Loan, error) {
	row := s.db.QueryRow("SELECT "+loanColumns+" FROM loans WHERE id = ?", id)
	l, err := scanLoan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Loan{}, fmt.Errorf("loan %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Loan{}, fmt.Errorf("loading loan %d: %w", id, err)
	}
	return l, nil
}

// ListLoans returns every loan in insertion order.
func (s *Store) ListLoans() ([]model.Loan, error) {
	loans, err := queryLoans(s.db, "SELECT "+loanColumns+" FROM loans ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing loans: %w", err)
	}
	return loans, nil
}

// DeleteLoan removes loan id along with its priorities and payments.
func (s *Store) DeleteLoan(id int64) error {
	res, err := s.db.Exec("DELETE FROM loans WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting loan %d: %w", id, err)
	}
	if err := expectOne(res, "deleting loan", id); err != nil {
		return err
	}
	s.log.WithField("loan_id", id).Debug("loan deleted")
	return nil
}

// LoanCount returns the number of stored loans.
func (s *Store) LoanCount() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM loans").Scan(&n)
	return n, err
}
