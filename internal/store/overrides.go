package store

import "fmt"

// SaveOverride stores the extra cash for one period of a strategy's plan.
func (s *Store) SaveOverride(strategy string, periodIndex int, extra float64) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO plan_overrides (strategy, period_index, extra_payment)
		VALUES (?, ?, ?)`, strategy, periodIndex, extra)
	if err != nil {
		return fmt.Errorf("saving override for row %d: %w", periodIndex, err)
	}
	return nil
}

// DeleteOverride removes one period's override.
func (s *Store) DeleteOverride(strategy string, periodIndex int) error {
	_, err := s.db.Exec("DELETE FROM plan_overrides WHERE strategy = ? AND period_index = ?",
		strategy, periodIndex)
	return err
}

// ClearOverrides removes every override stored for strategy.
func (s *Store) ClearOverrides(strategy string) error {
	_, err := s.db.Exec("DELETE FROM plan_overrides WHERE strategy = ?", strategy)
	return err
}

// Overrides returns period index -> extra cash for strategy.
func (s *Store) Overrides(strategy string) (map[int]float64, error) {
	rows, err := s.db.Query("SELECT period_index, extra_payment FROM plan_overrides WHERE strategy = ?", strategy)
	if err != nil {
		return nil, fmt.Errorf("loading overrides: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[int]float64)
	for rows.Next() {
		var idx int
		var extra float64
		if err := rows.Scan(&idx, &extra); err != nil {
			return nil, err
		}
		out[idx] = extra
	}
	return out, rows.Err()
}
