package store

import (
	"fmt"

	"github.com/payoffplan/payoff/internal/model"
)

// SetPriority replaces the loan order stored for strategyID.
func (s *Store) SetPriority(strategyID int, loanIDs []int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM loan_priority WHERE strategy_id = ?", strategyID); err != nil {
		return fmt.Errorf("clearing priority: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO loan_priority (strategy_id, loan_id, priority)
		VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing priority insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, id := range loanIDs {
		if _, err := stmt.Exec(strategyID, id, i+1); err != nil {
			return fmt.Errorf("setting priority of loan %d: %w", id, err)
		}
	}
	return tx.Commit()
}

// Priority returns the stored loan order for strategyID, or nil.
func (s *Store) Priority(strategyID int) ([]int64, error) {
	rows, err := s.db.Query(`SELECT loan_id FROM loan_priority WHERE strategy_id = ?
		ORDER BY priority, loan_id`, strategyID)
	if err != nil {
		return nil, fmt.Errorf("loading priority: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// LoansByStrategy returns the loans that have a priority under strategyID, in
// priority order.
func (s *Store) LoansByStrategy(strategyID int) ([]model.Loan, error) {
	loans, err := queryLoans(s.db, `SELECT `+prefixed("l.", loanColumns)+`
		FROM loans l JOIN loan_priority p ON p.loan_id = l.id
		WHERE p.strategy_id = ?
		ORDER BY p.priority, l.id`, strategyID)
	if err != nil {
		return nil, fmt.Errorf("loading loans for strategy %d: %w", strategyID, err)
	}
	return loans, nil
}
