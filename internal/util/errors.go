// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound             = errors.New("resource not found")
	ErrInvalidInput         = errors.New("invalid input provided")
	ErrUserNotFound         = errors.New("user not found")
	ErrDuplicateWallet      = errors.New("you have already added this wallet address for this blockchain")
	ErrWalletNotInPortfolio = errors.New("wallet not found in your portfolio")
	ErrNoWallets            = errors.New("no wallets found for this user")
	ErrProvider             = errors.New("token provider request failed")
)

// IsError reports whether err wraps target.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
