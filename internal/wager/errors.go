package wager

import "github.com/JoshBaneyCS/casino-wagers/internal/apperr"

var (
	ErrInvalidBet = apperr.Validation("INVALID_BET",
		"Bet amount must be positive, in whole cents, below the maximum")
	ErrInvalidGuess      = apperr.Validation("INVALID_GUESS", "Guess must be heads or tails")
	ErrMissingBetType    = apperr.Validation("INVALID_BET_TYPE", "Bet type is required")
	ErrNegativeBalance   = apperr.Validation("INVALID_BALANCE", "Balance must be zero or greater, in whole cents, below the maximum")
	ErrInsufficientFunds = apperr.New(apperr.KindInsufficientFunds, "INSUFFICIENT_FUNDS", "Insufficient funds")
	ErrUserNotFound      = apperr.New(apperr.KindNotFound, "USER_NOT_FOUND", "User not found")
	ErrContention        = apperr.New(apperr.KindConflict, "BALANCE_CONTENTION",
		"Balance changed while settling, please retry")
)
