package game

import (
	"encoding/json"
	"fmt"
)

// ActionKind discriminates the closed set of action variants.
type ActionKind string

const (
	KindRollDice           ActionKind = "rolldice"
	KindMoveForward        ActionKind = "moveforward"
	KindBuyProperty        ActionKind = "buyproperty"
	KindSellProperty       ActionKind = "sellproperty"
	KindBuyHouse           ActionKind = "buyhouse"
	KindSellHouse          ActionKind = "sellhouse"
	KindBuyHotel           ActionKind = "buyhotel"
	KindSellHotel          ActionKind = "sellhotel"
	KindPayTaxes           ActionKind = "paytaxes"
	KindReceiveSalary      ActionKind = "receivesalary"
	KindDrawCard           ActionKind = "drawcard"
	KindGoToJail           ActionKind = "gotojail"
	KindPayJailFine        ActionKind = "payjailfine"
	KindAuctionProperty    ActionKind = "auctionproperty"
	KindMortgageProperty   ActionKind = "mortgageproperty"
	KindUnmortgageProperty ActionKind = "unmortgageproperty"
	KindTransactWithPlayer ActionKind = "transactwithplayer"
	KindDeclareBankruptcy  ActionKind = "declarebankruptcy"
)

// Action is one state-changing event submitted to the reducer. The set of
// variants is closed; the reducer dispatches on the concrete type so that a
// new variant breaks compilation until it is handled everywhere.
type Action interface {
	Kind() ActionKind
	// Subject is the player this action acts for, or NoPlayer when the
	// action isn't on behalf of a single player (auctions).
	Subject() PlayerId
}

// RollDice records a dice roll for the player whose turn it is. It does not
// move the player; movement is a separate MoveForward, so the roll and its
// consequence are independently auditable.
type RollDice struct {
	Player PlayerId   `json:"player"`
	Roll   RollResult `json:"roll"`
}

// MoveForward advances the player, wrapping at go and collecting salary as
// a caused ReceiveSalary event.
type MoveForward struct {
	Player PlayerId `json:"player"`
	Spaces int      `json:"spaces"`
}

// BuyProperty buys an unowned property from the bank.
type BuyProperty struct {
	Player   PlayerId   `json:"player"`
	Property PropertyId `json:"property"`
}

// SellProperty sells an owned, unimproved property back to the bank.
type SellProperty struct {
	Player   PlayerId   `json:"player"`
	Property PropertyId `json:"property"`
}

// BuyHouse puts one house on a street.
type BuyHouse struct {
	Player   PlayerId   `json:"player"`
	Property PropertyId `json:"property"`
}

// SellHouse removes one house from a street, at half price.
type SellHouse struct {
	Player   PlayerId   `json:"player"`
	Property PropertyId `json:"property"`
}

// BuyHotel upgrades four houses to a hotel.
type BuyHotel struct {
	Player   PlayerId   `json:"player"`
	Property PropertyId `json:"property"`
}

// SellHotel downgrades a hotel back to four houses, at half price.
type SellHotel struct {
	Player   PlayerId   `json:"player"`
	Property PropertyId `json:"property"`
}

// PayTaxes pays the bank.
type PayTaxes struct {
	Player PlayerId `json:"player"`
	Amount Money    `json:"amount"`
}

// ReceiveSalary credits the salary for passing or landing on go.
type ReceiveSalary struct {
	Player PlayerId `json:"player"`
}

// DrawCard draws the top card of a deck and resolves its effect.
type DrawCard struct {
	Player PlayerId `json:"player"`
	Deck   DeckType `json:"deck"`
}

// GoToJail puts the player in jail.
type GoToJail struct {
	Player PlayerId `json:"player"`
}

// PayJailFine gets the player out of jail, spending a held get-out-of-jail
// card if there is one, otherwise paying the fine.
type PayJailFine struct {
	Player PlayerId `json:"player"`
}

// AuctionProperty resolves an auction for an unowned property. The highest
// bid wins; ties go to the bid submitted first.
type AuctionProperty struct {
	Property PropertyId `json:"property"`
	Bids     []Bid      `json:"bids"`
}

// MortgageProperty mortgages to the bank for immediate cash.
type MortgageProperty struct {
	Player   PlayerId   `json:"player"`
	Property PropertyId `json:"property"`
}

// UnmortgageProperty pays off a mortgage, plus interest.
type UnmortgageProperty struct {
	Player   PlayerId   `json:"player"`
	Property PropertyId `json:"property"`
}

// TransactWithPlayer applies a priced interaction between two players.
type TransactWithPlayer struct {
	Payer       PlayerId    `json:"payer"`
	Payee       PlayerId    `json:"payee"`
	Transaction Transaction `json:"transaction"`
}

// DeclareBankruptcy liquidates the player to a creditor, or to the bank if
// none is named. Terminal for the player.
type DeclareBankruptcy struct {
	Player   PlayerId  `json:"player"`
	Creditor *PlayerId `json:"creditor,omitempty"`
}

func (a RollDice) Kind() ActionKind           { return KindRollDice }
func (a MoveForward) Kind() ActionKind        { return KindMoveForward }
func (a BuyProperty) Kind() ActionKind        { return KindBuyProperty }
func (a SellProperty) Kind() ActionKind       { return KindSellProperty }
func (a BuyHouse) Kind() ActionKind           { return KindBuyHouse }
func (a SellHouse) Kind() ActionKind          { return KindSellHouse }
func (a BuyHotel) Kind() ActionKind           { return KindBuyHotel }
func (a SellHotel) Kind() ActionKind          { return KindSellHotel }
func (a PayTaxes) Kind() ActionKind           { return KindPayTaxes }
func (a ReceiveSalary) Kind() ActionKind      { return KindReceiveSalary }
func (a DrawCard) Kind() ActionKind           { return KindDrawCard }
func (a GoToJail) Kind() ActionKind           { return KindGoToJail }
func (a PayJailFine) Kind() ActionKind        { return KindPayJailFine }
func (a AuctionProperty) Kind() ActionKind    { return KindAuctionProperty }
func (a MortgageProperty) Kind() ActionKind   { return KindMortgageProperty }
func (a UnmortgageProperty) Kind() ActionKind { return KindUnmortgageProperty }
func (a TransactWithPlayer) Kind() ActionKind { return KindTransactWithPlayer }
func (a DeclareBankruptcy) Kind() ActionKind  { return KindDeclareBankruptcy }

func (a RollDice) Subject() PlayerId           { return a.Player }
func (a MoveForward) Subject() PlayerId        { return a.Player }
func (a BuyProperty) Subject() PlayerId        { return a.Player }
func (a SellProperty) Subject() PlayerId       { return a.Player }
func (a BuyHouse) Subject() PlayerId           { return a.Player }
func (a SellHouse) Subject() PlayerId          { return a.Player }
func (a BuyHotel) Subject() PlayerId           { return a.Player }
func (a SellHotel) Subject() PlayerId          { return a.Player }
func (a PayTaxes) Subject() PlayerId           { return a.Player }
func (a ReceiveSalary) Subject() PlayerId      { return a.Player }
func (a DrawCard) Subject() PlayerId           { return a.Player }
func (a GoToJail) Subject() PlayerId           { return a.Player }
func (a PayJailFine) Subject() PlayerId        { return a.Player }
func (a AuctionProperty) Subject() PlayerId    { return NoPlayer }
func (a MortgageProperty) Subject() PlayerId   { return a.Player }
func (a UnmortgageProperty) Subject() PlayerId { return a.Player }
func (a TransactWithPlayer) Subject() PlayerId { return a.Payer }
func (a DeclareBankruptcy) Subject() PlayerId  { return a.Player }

// actionEnvelope is the wire and save format for actions.
type actionEnvelope struct {
	Kind ActionKind      `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// EncodeAction marshals an action with its kind tag.
func EncodeAction(a Action) ([]byte, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return json.Marshal(actionEnvelope{Kind: a.Kind(), Data: data})
}

// DecodeAction unmarshals a tagged action.
func DecodeAction(data []byte) (Action, error) {
	var env actionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}

	var a Action
	switch env.Kind {
	case KindRollDice:
		a = &RollDice{}
	case KindMoveForward:
		a = &MoveForward{}
	case KindBuyProperty:
		a = &BuyProperty{}
	case KindSellProperty:
		a = &SellProperty{}
	case KindBuyHouse:
		a = &BuyHouse{}
	case KindSellHouse:
		a = &SellHouse{}
	case KindBuyHotel:
		a = &BuyHotel{}
	case KindSellHotel:
		a = &SellHotel{}
	case KindPayTaxes:
		a = &PayTaxes{}
	case KindReceiveSalary:
		a = &ReceiveSalary{}
	case KindDrawCard:
		a = &DrawCard{}
	case KindGoToJail:
		a = &GoToJail{}
	case KindPayJailFine:
		a = &PayJailFine{}
	case KindAuctionProperty:
		a = &AuctionProperty{}
	case KindMortgageProperty:
		a = &MortgageProperty{}
	case KindUnmortgageProperty:
		a = &UnmortgageProperty{}
	case KindTransactWithPlayer:
		a = &TransactWithPlayer{}
	case KindDeclareBankruptcy:
		a = &DeclareBankruptcy{}
	default:
		return nil, fmt.Errorf("unknown action kind: %q", env.Kind)
	}

	if err := json.Unmarshal(env.Data, a); err != nil {
		return nil, err
	}

	return deref(a), nil
}

// deref returns the action as a value, so the reducer's type switch only
// deals in value types.
func deref(a Action) Action {
	switch a := a.(type) {
	case *RollDice:
		return *a
	case *MoveForward:
		return *a
	case *BuyProperty:
		return *a
	case *SellProperty:
		return *a
	case *BuyHouse:
		return *a
	case *SellHouse:
		return *a
	case *BuyHotel:
		return *a
	case *SellHotel:
		return *a
	case *PayTaxes:
		return *a
	case *ReceiveSalary:
		return *a
	case *DrawCard:
		return *a
	case *GoToJail:
		return *a
	case *PayJailFine:
		return *a
	case *AuctionProperty:
		return *a
	case *MortgageProperty:
		return *a
	case *UnmortgageProperty:
		return *a
	case *TransactWithPlayer:
		return *a
	case *DeclareBankruptcy:
		return *a
	}
	return a
}

// Event is one successfully applied action in the audit log. Seq is the
// position in the log, starting at 0.
type Event struct {
	Seq    int
	Action Action
}

type eventJSON struct {
	Seq    int             `json:"seq"`
	Kind   ActionKind      `json:"kind"`
	Action json.RawMessage `json:"action"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(e.Action)
	if err != nil {
		return nil, err
	}
	return json.Marshal(eventJSON{Seq: e.Seq, Kind: e.Action.Kind(), Action: data})
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var ej eventJSON
	if err := json.Unmarshal(data, &ej); err != nil {
		return err
	}
	env, err := json.Marshal(actionEnvelope{Kind: ej.Kind, Data: ej.Action})
	if err != nil {
		return err
	}
	a, err := DecodeAction(env)
	if err != nil {
		return err
	}
	e.Seq = ej.Seq
	e.Action = a
	return nil
}
