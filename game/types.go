package game

// PlayerId indexes into the game's player list. Ids are assigned in join
// order and stay valid for the life of the game, even after bankruptcy.
type PlayerId int

// NoPlayer is the absence of a player, e.g. an unowned property.
const NoPlayer = PlayerId(-1)

// PropertyId indexes into the board's property list.
type PropertyId int

// Money is an amount in currency units. A player's balance never persists
// below zero; the bank is unconstrained and is not tracked.
type Money int

// RollResult is the outcome of rolling two dice.
type RollResult struct {
	Die1 int `json:"die1"`
	Die2 int `json:"die2"`
}

func (r RollResult) Total() int {
	return r.Die1 + r.Die2
}

func (r RollResult) IsDoubles() bool {
	return r.Die1 == r.Die2
}

func (r RollResult) valid() bool {
	return r.Die1 >= 1 && r.Die1 <= 6 && r.Die2 >= 1 && r.Die2 <= 6
}

// Bid is one player's offer during an auction. Bids only exist inside an
// AuctionProperty action; nothing is held between auctions.
type Bid struct {
	Player PlayerId `json:"player"`
	Amount Money    `json:"amount"`
}

// TransactionType says what a player-to-player transaction is for.
type TransactionType string

const (
	// TransactionBuyProperty moves a property from payee to payer.
	TransactionBuyProperty TransactionType = "buyproperty"
	// TransactionSellProperty moves a property from payer to payee,
	// with the money flowing back to the payer.
	TransactionSellProperty TransactionType = "sellproperty"
	// TransactionPayRent is rent owed by the payer to the payee.
	TransactionPayRent TransactionType = "payrent"
	// TransactionBuyJailCard moves a get-out-of-jail card from payee to payer.
	TransactionBuyJailCard TransactionType = "buyjailcard"
)

// Transaction is a priced interaction between two players. It is applied
// atomically: either both sides change or neither does.
type Transaction struct {
	Type     TransactionType `json:"type"`
	Property PropertyId      `json:"property"`
	Cost     Money           `json:"cost"`
}
