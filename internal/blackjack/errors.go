package blackjack

import "github.com/JoshBaneyCS/casino-wagers/internal/apperr"

var (
	ErrRoundInProgress  = apperr.Validation("ROUND_IN_PROGRESS", "Finish the current round before dealing again")
	ErrNoRound          = apperr.New(apperr.KindNotFound, "NO_ROUND", "No active round")
	ErrActionNotAllowed = apperr.Validation("ACTION_NOT_ALLOWED", "That action is not allowed right now")
	ErrCannotDouble     = apperr.Validation("CANNOT_DOUBLE", "Double down needs exactly two cards")
	ErrCannotSplit      = apperr.Validation("CANNOT_SPLIT", "Split needs two cards of equal rank and no earlier split")
	ErrUnknownAction    = apperr.Validation("UNKNOWN_ACTION", "Unknown action")
	ErrCardSource       = apperr.New(apperr.KindUpstream, "CARD_SOURCE_UNAVAILABLE",
		"Card source unavailable, round ended and open stakes returned")
)
