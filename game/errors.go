package game

import "fmt"

// GameError is an error kind with a stable code, so that callers can match
// on it instead of parsing messages.
type GameError struct {
	Code string
	Msg  string
}

func (e *GameError) ErrorCode() string { return e.Code }
func (e *GameError) Error() string     { return e.Msg }

var (
	// ErrPlayerExists means a player with the same name already is
	ErrPlayerExists = &GameError{"PLAYEREXISTS", "player exists"}
	// ErrNoPlayers means can't start the game with no players
	ErrNoPlayers = &GameError{"NOPLAYERS", "no players"}
	// ErrAlreadyStarted is only when calling Start() too much
	ErrAlreadyStarted = &GameError{"ALREADYSTARTED", "game has already started"}
	// ErrNotStarted means the game has not started
	ErrNotStarted = &GameError{"NOTSTARTED", "game has not started"}

	// ErrUnknownPlayer means an action referenced a player id that doesn't exist
	ErrUnknownPlayer = &GameError{"UNKNOWNPLAYER", "no such player"}
	// ErrUnknownProperty means an action referenced a property id that doesn't exist
	ErrUnknownProperty = &GameError{"UNKNOWNPROPERTY", "no such property"}
	// ErrNotOwner means the player doesn't own the property
	ErrNotOwner = &GameError{"NOTOWNER", "player does not own that property"}
	// ErrInsufficientFunds means the player can't cover a cost
	ErrInsufficientFunds = &GameError{"INSUFFICIENTFUNDS", "not enough money"}
	// ErrPropertyAlreadyOwned means the property already has an owner
	ErrPropertyAlreadyOwned = &GameError{"PROPERTYALREADYOWNED", "property already owned"}
	// ErrInvalidBuildingState means houses/hotels can't change like that
	ErrInvalidBuildingState = &GameError{"INVALIDBUILDINGSTATE", "invalid building state"}
	// ErrNotPlayersTurn means the action needs it to be the player's turn
	ErrNotPlayersTurn = &GameError{"NOTPLAYERSTURN", "it's not your turn"}
	// ErrPlayerInactive means the player is bankrupt and out of the game
	ErrPlayerInactive = &GameError{"PLAYERINACTIVE", "player is out of the game"}
	// ErrNotNow is for maybe valid actions that are not allowed now
	ErrNotNow = &GameError{"NOTNOW", "you cannot do that now"}
	// ErrNoBids means an auction was submitted with no bids at all
	ErrNoBids = &GameError{"NOBIDS", "auction needs at least one bid"}
	// ErrBadAction is for actions that are malformed regardless of state
	ErrBadAction = &GameError{"BADACTION", "bad action"}
)

// StateError is a GameError kind plus the ids and amounts involved, so a
// caller can see what was wrong without parsing the message. It matches its
// kind under errors.Is.
type StateError struct {
	Kind     *GameError
	Player   PlayerId
	Property PropertyId
	Amount   Money
	Detail   string
}

func (e *StateError) Error() string {
	if e.Detail != "" {
		return e.Kind.Msg + ": " + e.Detail
	}
	return e.Kind.Msg
}

func (e *StateError) ErrorCode() string { return e.Kind.Code }
func (e *StateError) Unwrap() error     { return e.Kind }

func (e *StateError) Is(target error) bool {
	return target == e.Kind
}

func errPlayer(kind *GameError, p PlayerId) error {
	return &StateError{Kind: kind, Player: p, Property: -1, Detail: fmt.Sprintf("player %d", p)}
}

func errProperty(kind *GameError, p PlayerId, pr PropertyId) error {
	return &StateError{Kind: kind, Player: p, Property: pr, Detail: fmt.Sprintf("player %d, property %d", p, pr)}
}

func errFunds(p PlayerId, need, have Money) error {
	return &StateError{Kind: ErrInsufficientFunds, Player: p, Property: -1, Amount: need,
		Detail: fmt.Sprintf("player %d needs %d, has %d", p, need, have)}
}

// ReError matches error codes back to error objects, for clients receiving
// errors over the wire.
func ReError(code, msg string) error {
	for _, e := range []*GameError{
		ErrPlayerExists, ErrNoPlayers, ErrAlreadyStarted, ErrNotStarted,
		ErrUnknownPlayer, ErrUnknownProperty, ErrNotOwner, ErrInsufficientFunds,
		ErrPropertyAlreadyOwned, ErrInvalidBuildingState, ErrNotPlayersTurn,
		ErrPlayerInactive, ErrNotNow, ErrNoBids, ErrBadAction,
	} {
		if e.Code == code {
			return e
		}
	}
	return &GameError{code, msg}
}
