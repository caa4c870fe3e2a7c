package apperrors

import "errors"

var (
	ErrRaffleNotFound          = errors.New("raffle not found")
	ErrTicketNotFound          = errors.New("ticket not found")
	ErrUserNotFound            = errors.New("user not found")
	ErrNumberOutOfRange        = errors.New("ticket number out of range")
	ErrNumberTaken             = errors.New("ticket number already taken")
	ErrRaffleClosed            = errors.New("raffle closed for purchases")
	ErrEmptyPool               = errors.New("no completed tickets to draw from")
	ErrAlreadyDrawn            = errors.New("raffle already drawn")
	ErrWinnerAlreadyClaimed    = errors.New("prize already claimed")
	ErrExceedsMaxPerUser       = errors.New("exceeds max tickets per user")
	ErrInvalidStatusTransition = errors.New("invalid raffle status transition")
	ErrInvalidInput            = errors.New("invalid input")
	ErrInternalServerError     = errors.New("internal server error")
)
