package service

import "errors"

// Preflight and validation errors, raised before any backend call.
// The backend remains the final authority: passing these checks does
// not guarantee the backend will accept the operation.
var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrAlreadyOwned       = errors.New("player already owned")
	ErrTeamLimitReached   = errors.New("team player limit reached")
	ErrNotOwned           = errors.New("player is not on your roster")
	ErrInvalidPrice       = errors.New("price must be greater than 0")
	ErrInvalidTargetUser  = errors.New("invalid target user id")
	ErrOfferNotFound      = errors.New("offer not found")
	ErrNotOfferTarget     = errors.New("offer is not addressed to you")
	ErrInvalidTransaction = errors.New("invalid transaction")
)
