package domain

import "errors"

var (
	// ErrDuplicateTrade means a leader trade's hash is already in the
	// ledger. Expected during normal operation; treated as "already
	// handled", never fatal.
	ErrDuplicateTrade = errors.New("duplicate trade hash")

	// ErrWalletExists means the address is already registered.
	ErrWalletExists = errors.New("wallet already registered")

	// ErrWalletReferenced means the wallet cannot be hard-deleted
	// because recorded leader trades reference it. Archive it instead.
	ErrWalletReferenced = errors.New("wallet referenced by trade history")

	// ErrWalletNotFound means no wallet with that address is registered.
	ErrWalletNotFound = errors.New("wallet not found")
)
