package storage

// registry.go — implements ports.WalletRegistry.
//
// Hard deletion is refused while leader_trades reference the address:
// the audit trail outlives the wallet. Archival (active = 0) is the
// endorsed way to stop following someone.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alejandrodnm/polycopy/internal/domain"
)

// AddWallet registers a new leader wallet.
func (s *SQLiteStorage) AddWallet(ctx context.Context, address, nickname string, copyPct float64) (domain.LeaderWallet, error) {
	if err := domain.ValidateAddress(address); err != nil {
		return domain.LeaderWallet{}, fmt.Errorf("storage.AddWallet: %w", err)
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO leader_wallets (address, nickname, active, copy_pct, created_at)
		VALUES (?, ?, 1, ?, ?)`,
		address, nickname, copyPct, now,
	)
	if err != nil {
		if exists, checkErr := s.walletExists(ctx, address); checkErr == nil && exists {
			return domain.LeaderWallet{}, domain.ErrWalletExists
		}
		return domain.LeaderWallet{}, fmt.Errorf("storage.AddWallet: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.LeaderWallet{}, fmt.Errorf("storage.AddWallet: last insert id: %w", err)
	}

	return domain.LeaderWallet{
		ID:        id,
		Address:   address,
		Nickname:  nickname,
		Active:    true,
		CopyPct:   copyPct,
		CreatedAt: now,
	}, nil
}

// RemoveWallet hard-deletes a wallet if nothing references it.
func (s *SQLiteStorage) RemoveWallet(ctx context.Context, address string) error {
	var refs int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM leader_trades WHERE wallet_address = ?`, address,
	).Scan(&refs)
	if err != nil {
		return fmt.Errorf("storage.RemoveWallet: count refs: %w", err)
	}
	if refs > 0 {
		return domain.ErrWalletReferenced
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM leader_wallets WHERE address = ?`, address,
	)
	if err != nil {
		return fmt.Errorf("storage.RemoveWallet: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrWalletNotFound
	}
	return nil
}

// SetWalletActive toggles whether the wallet is followed.
func (s *SQLiteStorage) SetWalletActive(ctx context.Context, address string, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE leader_wallets SET active = ? WHERE address = ?`, active, address,
	)
	if err != nil {
		return fmt.Errorf("storage.SetWalletActive: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrWalletNotFound
	}
	return nil
}

// SetCopyPercentage changes the fraction of leader size replicated.
func (s *SQLiteStorage) SetCopyPercentage(ctx context.Context, address string, pct float64) error {
	if pct < 0 {
		return fmt.Errorf("storage.SetCopyPercentage: negative percentage %v", pct)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE leader_wallets SET copy_pct = ? WHERE address = ?`, pct, address,
	)
	if err != nil {
		return fmt.Errorf("storage.SetCopyPercentage: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrWalletNotFound
	}
	return nil
}

// ActiveWallets returns followed wallets in creation order. The order is
// not load-bearing but keeps cycle logs stable and comparable.
func (s *SQLiteStorage) ActiveWallets(ctx context.Context) ([]domain.LeaderWallet, error) {
	return s.queryWallets(ctx, `WHERE active = 1`)
}

// ListWallets returns every registered wallet, active or not.
func (s *SQLiteStorage) ListWallets(ctx context.Context) ([]domain.LeaderWallet, error) {
	return s.queryWallets(ctx, ``)
}

func (s *SQLiteStorage) queryWallets(ctx context.Context, where string) ([]domain.LeaderWallet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, address, nickname, active, copy_pct, created_at
		FROM leader_wallets `+where+` ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage.queryWallets: %w", err)
	}
	defer rows.Close()

	var wallets []domain.LeaderWallet
	for rows.Next() {
		var w domain.LeaderWallet
		if err := rows.Scan(&w.ID, &w.Address, &w.Nickname, &w.Active, &w.CopyPct, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage.queryWallets: scan: %w", err)
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

func (s *SQLiteStorage) walletExists(ctx context.Context, address string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM leader_wallets WHERE address = ?`, address,
	).Scan(&n)
	if err != nil && err != sql.ErrNoRows {
		return false, err
	}
	return n > 0, nil
}
