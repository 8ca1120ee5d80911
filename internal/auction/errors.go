package auction

import "errors"

// Operation rejections. All are recoverable by the caller: the engine
// returns them without applying any state change.
var (
	// ErrInsufficientPurse is returned when a bid exceeds the bidding
	// team's remaining purse.
	ErrInsufficientPurse = errors.New("insufficient purse")

	// ErrNoActiveBidder is returned when a sale or raise is attempted
	// with no team currently leading.
	ErrNoActiveBidder = errors.New("no active bidder")

	// ErrNothingToUndo is returned when the undo history is empty.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNoCurrentPlayer is returned when bidding or a sale is attempted
	// past the end of the player queue.
	ErrNoCurrentPlayer = errors.New("no current player")

	// ErrAlreadyStarted is returned when Start is called on a session
	// that is already active.
	ErrAlreadyStarted = errors.New("auction already started")

	// ErrNotActive is returned when an operation requires a started
	// auction.
	ErrNotActive = errors.New("auction not active")

	// ErrPaused is returned when a bid is placed while the auction is
	// paused.
	ErrPaused = errors.New("auction paused")

	// ErrUnknownTeam is returned when a bid names a team that is not in
	// the roster.
	ErrUnknownTeam = errors.New("unknown team")

	// ErrInvalidAmount is returned for negative bid amounts and
	// non-positive increments.
	ErrInvalidAmount = errors.New("invalid amount")
)
