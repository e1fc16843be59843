package comms

import (
	"encoding/json"

	"github.com/undeconstructed/landlord/game"
)

// CommsError is a game error flattened for the wire. Code round trips, so
// clients can rebuild a matchable error with game.ReError.
type CommsError struct {
	Code string `json:"code"`
	Msg  string `json:"message"`
}

func (e *CommsError) Error() string {
	return e.Msg
}

// WrapError flattens any error into a CommsError. Errors that carry a code
// keep it; anything else goes out as ERROR.
func WrapError(err error) *CommsError {
	if err == nil {
		return nil
	}
	if coded, ok := err.(interface{ ErrorCode() string }); ok {
		return &CommsError{Code: coded.ErrorCode(), Msg: err.Error()}
	}
	return &CommsError{Code: "ERROR", Msg: err.Error()}
}

// Unwrap turns a received CommsError back into a matchable game error.
func (e *CommsError) Unwrap() error {
	if e == nil {
		return nil
	}
	return game.ReError(e.Code, e.Msg)
}

// ConnectResponse answers the first message on a connection.
type ConnectResponse struct {
	GameID   string      `json:"gameId"`
	PlayerID string      `json:"playerId"`
	Err      *CommsError `json:"error,omitempty"`
}

// JoinResult answers a join request with the allocated player id.
type JoinResult struct {
	Id  game.PlayerId `json:"id"`
	Err *CommsError   `json:"error,omitempty"`
}

// StartResult answers a start request.
type StartResult struct {
	Turn game.TurnState `json:"turn"`
	Err  *CommsError    `json:"error,omitempty"`
}

// PlayResult answers a play request. Response is whatever the action
// produced, already encoded.
type PlayResult struct {
	Response json.RawMessage `json:"response,omitempty"`
	Next     game.TurnState  `json:"next"`
	Err      *CommsError     `json:"error,omitempty"`
}

// GameUpdate is broadcast to everyone in a game when something happens.
type GameUpdate struct {
	News  []game.Change  `json:"news"`
	State game.GameState `json:"state"`
}
