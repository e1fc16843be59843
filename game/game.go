package game

import (
	"encoding/json"
	"io"
)

type player struct {
	Name      string     `json:"name"`
	Cash      Money      `json:"cash"`
	OnSquare  int        `json:"onSquare"`
	InJail    bool       `json:"inJail"`
	JailCards []heldCard `json:"jailCards"`
	Active    bool       `json:"active"`
}

// heldCard is a retained get-out-of-jail card, remembered with its deck so
// it can go back to the right pile when spent.
type heldCard struct {
	Deck DeckType `json:"deck"`
	Card int      `json:"card"`
}

// ownership is the mutable side of one property.
type ownership struct {
	Owner     PlayerId `json:"owner"`
	Mortgaged bool     `json:"mortgaged"`
	Houses    int      `json:"houses"`
	Hotel     bool     `json:"hotel"`
}

// bank holds the building stock. Money-wise the bank is an unconstrained
// source and sink, so no balance is kept.
type bank struct {
	Houses int `json:"houses"`
	Hotels int `json:"hotels"`
}

type game struct {
	// static, shared by reference, never mutated
	settings Settings
	squares  []Square
	props    []Property
	chance   []Card
	chest    []Card

	// mutable
	chancePile CardStack
	chestPile  CardStack
	bank       bank
	players    []player
	owners     []ownership
	events     []Event

	started  bool
	turnNo   int
	playing  PlayerId
	winner   PlayerId
	rolled   bool
	doubles  int
	lastRoll RollResult
	must     []string
}

// NewGame makes a game over some fixed board data.
func NewGame(data GameData) Game {
	g := &game{
		settings: data.Settings,
		squares:  data.Squares,
		props:    data.Properties,
		chance:   data.Chance,
		chest:    data.CommunityChest,
		turnNo:   1,
		playing:  0,
		winner:   NoPlayer,
	}

	g.owners = make([]ownership, len(g.props))
	for i := range g.owners {
		g.owners[i] = ownership{Owner: NoPlayer}
	}

	g.bank = bank{
		Houses: data.Settings.Houses,
		Hotels: data.Settings.Hotels,
	}

	g.chancePile = NewCardStack(len(g.chance))
	g.chestPile = NewCardStack(len(g.chest))

	return g
}

// NewStandardGame makes a game on the classic board.
func NewStandardGame() Game {
	return NewGame(StandardData())
}

type gameSave struct {
	Players    []player    `json:"players"`
	Owners     []ownership `json:"owners"`
	Bank       bank        `json:"bank"`
	ChancePile []int       `json:"chancePile"`
	ChestPile  []int       `json:"chestPile"`
	Events     []Event     `json:"events"`
	Started    bool        `json:"started"`
	TurnNo     int         `json:"turnNo"`
	Playing    PlayerId    `json:"playing"`
	Winner     PlayerId    `json:"winner"`
	Rolled     bool        `json:"rolled"`
	Doubles    int         `json:"doubles"`
	LastRoll   RollResult  `json:"lastRoll"`
	Must       []string    `json:"must"`
}

// NewFromSaved restores a game from a WriteOut snapshot.
func NewFromSaved(data GameData, r io.Reader) (Game, error) {
	g := NewGame(data).(*game)

	save := gameSave{}
	if err := json.NewDecoder(r).Decode(&save); err != nil {
		return nil, err
	}

	g.players = save.Players
	g.owners = save.Owners
	g.bank = save.Bank
	g.chancePile = CardStack(save.ChancePile)
	g.chestPile = CardStack(save.ChestPile)
	g.events = save.Events
	g.started = save.Started
	g.turnNo = save.TurnNo
	g.playing = save.Playing
	g.winner = save.Winner
	g.rolled = save.Rolled
	g.doubles = save.Doubles
	g.lastRoll = save.LastRoll
	g.must = save.Must

	return g, nil
}

func (g *game) WriteOut(w io.Writer) error {
	out := gameSave{
		Players:    g.players,
		Owners:     g.owners,
		Bank:       g.bank,
		ChancePile: []int(g.chancePile),
		ChestPile:  []int(g.chestPile),
		Events:     g.events,
		Started:    g.started,
		TurnNo:     g.turnNo,
		Playing:    g.playing,
		Winner:     g.winner,
		Rolled:     g.rolled,
		Doubles:    g.doubles,
		LastRoll:   g.lastRoll,
		Must:       g.must,
	}

	jdata, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}

	_, err = w.Write(jdata)
	return err
}

// AddPlayer adds a player, before the game starts. Join order is turn order.
func (g *game) AddPlayer(name string) (PlayerId, error) {
	if g.started {
		return NoPlayer, ErrAlreadyStarted
	}
	for _, pl := range g.players {
		if pl.Name == name {
			return NoPlayer, ErrPlayerExists
		}
	}

	id := PlayerId(len(g.players))
	g.players = append(g.players, player{
		Name:   name,
		Cash:   g.settings.StartingCash,
		Active: true,
	})

	return id, nil
}

// Start closes the lobby: no more players can join. The reducer itself can
// be driven without it, from the moment players are registered.
func (g *game) Start() (TurnState, error) {
	if g.started {
		return TurnState{}, ErrAlreadyStarted
	}
	if len(g.players) < 1 {
		return TurnState{}, ErrNoPlayers
	}

	g.started = true

	return g.GetTurnState(), nil
}

func (g *game) GetTurnState() TurnState {
	if int(g.playing) < 0 || int(g.playing) >= len(g.players) {
		return TurnState{Number: -1, Id: NoPlayer}
	}

	p := &g.players[g.playing]

	var can []string
	if !g.rolled {
		can = append(can, "rolldice")
	}
	if p.InJail {
		can = append(can, "payjailfine")
	}

	return TurnState{
		Number: g.turnNo,
		Player: p.Name,
		Id:     g.playing,
		Can:    can,
		Must:   g.must,
	}
}

func (g *game) GetGameState() GameState {
	status := StatusCollecting
	playing := ""
	winner := ""
	if g.started {
		status = StatusPlaying
		if int(g.playing) >= 0 && int(g.playing) < len(g.players) {
			playing = g.players[g.playing].Name
		}
	}
	if g.winner != NoPlayer {
		status = StatusWon
		winner = g.players[g.winner].Name
		playing = ""
	}

	var players []PlayerState
	for i, pl := range g.players {
		var owns []PropertyId
		for pr, o := range g.owners {
			if o.Owner == PlayerId(i) {
				owns = append(owns, PropertyId(pr))
			}
		}
		players = append(players, PlayerState{
			Id:       PlayerId(i),
			Name:     pl.Name,
			Cash:     pl.Cash,
			Square:   pl.OnSquare,
			InJail:   pl.InJail,
			JailCard: len(pl.JailCards),
			Active:   pl.Active,
			Owns:     owns,
		})
	}

	return GameState{
		Status:  status,
		Playing: playing,
		Winner:  winner,
		Players: players,
	}
}

func (g *game) GetPropertyState(id PropertyId) (PropertyState, error) {
	if int(id) < 0 || int(id) >= len(g.props) {
		return PropertyState{}, errProperty(ErrUnknownProperty, NoPlayer, id)
	}
	o := g.owners[id]
	return PropertyState{
		Id:        id,
		Owner:     o.Owner,
		Mortgaged: o.Mortgaged,
		Houses:    o.Houses,
		Hotel:     o.Hotel,
	}, nil
}

// Events is the audit log: every successfully applied action, in order.
func (g *game) Events() []Event {
	out := make([]Event, len(g.events))
	copy(out, g.events)
	return out
}

// RentAt is what landing on a property costs right now, given the roll that
// got there. Unowned and mortgaged properties rent nothing.
func (g *game) RentAt(id PropertyId, roll RollResult) (Money, error) {
	if int(id) < 0 || int(id) >= len(g.props) {
		return 0, errProperty(ErrUnknownProperty, NoPlayer, id)
	}

	prop := &g.props[id]
	o := &g.owners[id]

	if o.Owner == NoPlayer || o.Mortgaged {
		return 0, nil
	}

	switch prop.Group {
	case GroupRailroad:
		n := g.countInGroup(o.Owner, GroupRailroad)
		return prop.Rents[n-1], nil
	case GroupUtility:
		n := g.countInGroup(o.Owner, GroupUtility)
		if n >= 2 {
			return Money(10 * roll.Total()), nil
		}
		return Money(4 * roll.Total()), nil
	default:
		if o.Hotel {
			return prop.Rents[5], nil
		}
		if o.Houses > 0 {
			return prop.Rents[o.Houses], nil
		}
		rent := prop.Rents[0]
		if g.ownsWholeGroup(o.Owner, prop.Group) {
			// unimproved lot in a monopoly rents double
			rent *= 2
		}
		return rent, nil
	}
}

func (g *game) groupMembers(group ColorGroup) []PropertyId {
	var out []PropertyId
	for i := range g.props {
		if g.props[i].Group == group {
			out = append(out, PropertyId(i))
		}
	}
	return out
}

func (g *game) countInGroup(owner PlayerId, group ColorGroup) int {
	n := 0
	for _, id := range g.groupMembers(group) {
		if g.owners[id].Owner == owner {
			n++
		}
	}
	return n
}

func (g *game) ownsWholeGroup(owner PlayerId, group ColorGroup) bool {
	for _, id := range g.groupMembers(group) {
		if g.owners[id].Owner != owner {
			return false
		}
	}
	return true
}

// findSquareAhead is the next square of a type, walking forward from a
// position, wrapping at the end of the board.
func (g *game) findSquareAhead(from int, t SquareType) int {
	for i := 1; i <= len(g.squares); i++ {
		at := (from + i) % len(g.squares)
		if g.squares[at].Type == t {
			return at
		}
	}
	return -1
}

func (g *game) jailSquare() int {
	for i, s := range g.squares {
		if s.Type == SquareJail {
			return i
		}
	}
	return 0
}

// toNextPlayer passes the turn to the next active player.
func (g *game) toNextPlayer() {
	np := g.playing
	for i := 0; i < len(g.players); i++ {
		np = (np + 1) % PlayerId(len(g.players))
		if g.players[np].Active {
			break
		}
	}

	g.turnNo++
	g.playing = np
	g.rolled = false
	g.doubles = 0
}

// checkWinner marks the game won when only one active player remains.
func (g *game) checkWinner() {
	last := NoPlayer
	n := 0
	for i := range g.players {
		if g.players[i].Active {
			last = PlayerId(i)
			n++
		}
	}
	if n == 1 && len(g.players) > 1 {
		g.winner = last
	}
}
