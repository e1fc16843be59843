package game

import "io"

// TurnState says whose turn it is and what's pending.
type TurnState struct {
	Number int      `json:"number"`
	Player string   `json:"player"`
	Id     PlayerId `json:"id"`

	// things the player can do now
	Can []string `json:"can"`
	// things outstanding before the turn should end
	Must []string `json:"must"`
}

// GameState is the queryable whole-game view.
type GameState struct {
	Status  string        `json:"status"`
	Playing string        `json:"playing"`
	Winner  string        `json:"winner"`
	Players []PlayerState `json:"players"`
}

// Game lifecycle status values.
const (
	StatusCollecting = "collecting"
	StatusPlaying    = "playing"
	StatusWon        = "won"
)

// PlayerState is one player's visible state.
type PlayerState struct {
	Id       PlayerId     `json:"id"`
	Name     string       `json:"name"`
	Cash     Money        `json:"cash"`
	Square   int          `json:"square"`
	InJail   bool         `json:"inJail"`
	JailCard int          `json:"jailCards"`
	Active   bool         `json:"active"`
	Owns     []PropertyId `json:"owns"`
}

// PropertyState is the mutable side of one property.
type PropertyState struct {
	Id        PropertyId `json:"id"`
	Owner     PlayerId   `json:"owner"`
	Mortgaged bool       `json:"mortgaged"`
	Houses    int        `json:"houses"`
	Hotel     bool       `json:"hotel"`
}

// Change is something that happened, described for people.
type Change struct {
	Who   string `json:"who"`
	What  string `json:"what"`
	Where int    `json:"where"`
}

// PlayResult is the result of applying one action.
type PlayResult struct {
	Response interface{} `json:"response"`
	News     []Change    `json:"news"`
	Next     TurnState   `json:"next"`
}

// Game is a single game session. Not safe for concurrent use; the owner
// must serialize calls, which keeps the reducer deterministic.
type Game interface {
	// activities
	AddPlayer(name string) (PlayerId, error)
	Start() (TurnState, error)
	Apply(a Action) (PlayResult, error)

	// general state
	GetGameState() GameState
	GetTurnState() TurnState
	GetPropertyState(id PropertyId) (PropertyState, error)
	Events() []Event
	RentAt(id PropertyId, roll RollResult) (Money, error)

	// admin
	WriteOut(io.Writer) error
}
