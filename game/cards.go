package game

import (
	"strconv"
	"strings"
)

// DeckType names a card deck.
type DeckType string

const (
	DeckChance         DeckType = "chance"
	DeckCommunityChest DeckType = "communitychest"
)

// Card is one chance or community chest card. The effect is a small code
// string, parsed on use. Retain cards stay with the player until spent.
type Card struct {
	Name   string `json:"name"`
	Code   string `json:"code"`
	Retain bool   `json:"retain"`
}

// CardCode is implemented by all parsed card effects.
type CardCode interface{ isCardCode() }

// CardCollect pays the player from the bank.
type CardCollect struct {
	Amount Money
}

// CardPay charges the player, to the bank.
type CardPay struct {
	Amount Money
}

// CardAdvance moves the player forward to the next square of a type,
// collecting salary if that passes go.
type CardAdvance struct {
	Dest SquareType
}

// CardMove moves the player relative to where they are. Negative is
// backwards, and never collects salary.
type CardMove struct {
	N int
}

// CardGoToJail sends the player to jail.
type CardGoToJail struct{}

// CardOutOfJail is retained and spent to leave jail for free.
type CardOutOfJail struct{}

// CardRepairs charges per building the player owns.
type CardRepairs struct {
	PerHouse Money
	PerHotel Money
}

// CardUnparsed is the fallback for codes nothing recognizes.
type CardUnparsed struct {
	Code string
}

func (CardCollect) isCardCode()  {}
func (CardPay) isCardCode()      {}
func (CardAdvance) isCardCode()  {}
func (CardMove) isCardCode()     {}
func (CardGoToJail) isCardCode() {}
func (CardOutOfJail) isCardCode() {}
func (CardRepairs) isCardCode()  {}
func (CardUnparsed) isCardCode() {}

// ParseCode turns the card's code string into a typed effect.
func (c Card) ParseCode() CardCode {
	parts := strings.Split(c.Code, ":")
	switch parts[0] {
	case "collect":
		if len(parts) == 2 {
			n, err := strconv.Atoi(parts[1])
			if err == nil {
				return CardCollect{Amount: Money(n)}
			}
		}
	case "pay":
		if len(parts) == 2 {
			n, err := strconv.Atoi(parts[1])
			if err == nil {
				return CardPay{Amount: Money(n)}
			}
		}
	case "advance":
		if len(parts) == 2 {
			return CardAdvance{Dest: SquareType(parts[1])}
		}
	case "move":
		if len(parts) == 2 {
			n, err := strconv.Atoi(parts[1])
			if err == nil {
				return CardMove{N: n}
			}
		}
	case "gotojail":
		return CardGoToJail{}
	case "outofjail":
		return CardOutOfJail{}
	case "repairs":
		if len(parts) == 3 {
			h, err1 := strconv.Atoi(parts[1])
			ho, err2 := strconv.Atoi(parts[2])
			if err1 == nil && err2 == nil {
				return CardRepairs{PerHouse: Money(h), PerHotel: Money(ho)}
			}
		}
	}
	return CardUnparsed{Code: c.Code}
}

func standardChance() []Card {
	return []Card{
		{Name: "Advance to Go", Code: "advance:go"},
		{Name: "Take a ride on the Reading", Code: "advance:railroad"},
		{Name: "Advance to the nearest utility", Code: "advance:utility"},
		{Name: "Bank pays you dividend of $50", Code: "collect:50"},
		{Name: "Go back 3 spaces", Code: "move:-3"},
		{Name: "Go directly to jail", Code: "gotojail"},
		{Name: "Make general repairs: $25 per house, $100 per hotel", Code: "repairs:25:100"},
		{Name: "Pay poor tax of $15", Code: "pay:15"},
		{Name: "Your building loan matures", Code: "collect:150"},
		{Name: "Get out of jail free", Code: "outofjail", Retain: true},
	}
}

func standardCommunityChest() []Card {
	return []Card{
		{Name: "Advance to Go", Code: "advance:go"},
		{Name: "Bank error in your favour", Code: "collect:200"},
		{Name: "Doctor's fee", Code: "pay:50"},
		{Name: "From sale of stock you get $45", Code: "collect:45"},
		{Name: "Go directly to jail", Code: "gotojail"},
		{Name: "Income tax refund", Code: "collect:20"},
		{Name: "Life insurance matures", Code: "collect:100"},
		{Name: "Pay hospital $100", Code: "pay:100"},
		{Name: "Street repairs: $40 per house, $115 per hotel", Code: "repairs:40:115"},
		{Name: "Get out of jail free", Code: "outofjail", Retain: true},
	}
}
