package game

import (
	"fmt"
)

// applyResult is what a handler produces: a response for the caller, news
// for everyone, and any actions this one causes (e.g. salary on passing go).
type applyResult struct {
	response interface{}
	news     []Change
	caused   []Action
}

// RollResponse is the caller-facing result of RollDice.
type RollResponse struct {
	Total   int  `json:"total"`
	Doubles bool `json:"doubles"`
	CanMove bool `json:"canMove"`
}

// DrawResponse is the caller-facing result of DrawCard.
type DrawResponse struct {
	Card string `json:"card"`
}

// AuctionResponse is the caller-facing result of AuctionProperty.
type AuctionResponse struct {
	Winner PlayerId `json:"winner"`
	Amount Money    `json:"amount"`
}

// Apply validates one action against the current state, applies its effect,
// and records it in the event log. On failure nothing changes at all.
func (g *game) Apply(a Action) (PlayResult, error) {
	if g.winner != NoPlayer {
		return PlayResult{}, ErrNotNow
	}

	res, err := g.applyOne(a)
	if err != nil {
		return PlayResult{}, err
	}

	g.checkWinner()

	return PlayResult{Response: res.response, News: res.news, Next: g.GetTurnState()}, nil
}

// applyOne runs one action through validation and effect, then appends it to
// the log, then runs anything it caused. Caused actions are constructed from
// state that was just validated, so a failure there is a bug.
func (g *game) applyOne(a Action) (applyResult, error) {
	out, err := g.dispatch(a)
	if err != nil {
		return applyResult{}, err
	}

	g.events = append(g.events, Event{Seq: len(g.events), Action: a})

	for _, c := range out.caused {
		cres, err := g.applyOne(c)
		if err != nil {
			panic(fmt.Sprintf("caused action failed: %v: %v", c.Kind(), err))
		}
		out.news = append(out.news, cres.news...)
	}

	return out, nil
}

func (g *game) dispatch(a Action) (applyResult, error) {
	switch a := a.(type) {
	case RollDice:
		return g.applyRollDice(a)
	case MoveForward:
		return g.applyMoveForward(a)
	case BuyProperty:
		return g.applyBuyProperty(a)
	case SellProperty:
		return g.applySellProperty(a)
	case BuyHouse:
		return g.applyBuyHouse(a)
	case SellHouse:
		return g.applySellHouse(a)
	case BuyHotel:
		return g.applyBuyHotel(a)
	case SellHotel:
		return g.applySellHotel(a)
	case PayTaxes:
		return g.applyPayTaxes(a)
	case ReceiveSalary:
		return g.applyReceiveSalary(a)
	case DrawCard:
		return g.applyDrawCard(a)
	case GoToJail:
		return g.applyGoToJail(a)
	case PayJailFine:
		return g.applyPayJailFine(a)
	case AuctionProperty:
		return g.applyAuctionProperty(a)
	case MortgageProperty:
		return g.applyMortgageProperty(a)
	case UnmortgageProperty:
		return g.applyUnmortgageProperty(a)
	case TransactWithPlayer:
		return g.applyTransactWithPlayer(a)
	case DeclareBankruptcy:
		return g.applyDeclareBankruptcy(a)
	default:
		return applyResult{}, &StateError{Kind: ErrBadAction, Player: NoPlayer, Property: -1, Detail: "unhandled action"}
	}
}

// resolvePlayer is step one of validation: the id must exist.
func (g *game) resolvePlayer(id PlayerId) (*player, error) {
	if int(id) < 0 || int(id) >= len(g.players) {
		return nil, errPlayer(ErrUnknownPlayer, id)
	}
	return &g.players[id], nil
}

// resolveActive also rejects bankrupt players.
func (g *game) resolveActive(id PlayerId) (*player, error) {
	p, err := g.resolvePlayer(id)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, errPlayer(ErrPlayerInactive, id)
	}
	return p, nil
}

// resolveProperty is step two: the property id must exist.
func (g *game) resolveProperty(id PropertyId) (*Property, *ownership, error) {
	if int(id) < 0 || int(id) >= len(g.props) {
		return nil, nil, errProperty(ErrUnknownProperty, NoPlayer, id)
	}
	return &g.props[id], &g.owners[id], nil
}

func (g *game) requireFunds(id PlayerId, p *player, amount Money) error {
	if p.Cash < amount {
		return errFunds(id, amount, p.Cash)
	}
	return nil
}

func (g *game) newsFor(p *player, format string, args ...interface{}) Change {
	return Change{Who: p.Name, What: fmt.Sprintf(format, args...), Where: p.OnSquare}
}

func (g *game) addMust(p *player, s string) {
	g.must, _ = stringListWith(g.must, p.Name+"/"+s)
}

func (g *game) clearMust(p *player, s string) {
	g.must, _ = stringListWithout(g.must, p.Name+"/"+s)
}

func (g *game) clearMustPrefix(p *player, prefix string) {
	var out []string
	for _, s := range g.must {
		if len(s) >= len(p.Name)+1+len(prefix) && s[:len(p.Name)+1+len(prefix)] == p.Name+"/"+prefix {
			continue
		}
		out = append(out, s)
	}
	g.must = out
}

func (g *game) applyRollDice(a RollDice) (applyResult, error) {
	p, err := g.resolveActive(a.Player)
	if err != nil {
		return applyResult{}, err
	}
	if !a.Roll.valid() {
		return applyResult{}, &StateError{Kind: ErrBadAction, Player: a.Player, Property: -1, Detail: "dice out of range"}
	}
	if a.Player != g.playing {
		return applyResult{}, errPlayer(ErrNotPlayersTurn, a.Player)
	}
	if g.rolled {
		return applyResult{}, errPlayer(ErrNotNow, a.Player)
	}

	out := applyResult{}

	g.rolled = true
	g.lastRoll = a.Roll

	if p.InJail {
		if a.Roll.IsDoubles() {
			p.InJail = false
			out.news = append(out.news, g.newsFor(p, "rolls %d and %d, doubles, and walks free", a.Roll.Die1, a.Roll.Die2))
			out.response = RollResponse{Total: a.Roll.Total(), Doubles: true, CanMove: true}
		} else {
			out.news = append(out.news, g.newsFor(p, "rolls %d and %d and stays in jail", a.Roll.Die1, a.Roll.Die2))
			out.response = RollResponse{Total: a.Roll.Total(), Doubles: false, CanMove: false}
			g.toNextPlayer()
		}
		return out, nil
	}

	if a.Roll.IsDoubles() {
		g.doubles++
		if g.doubles >= 3 {
			// three doubles in a row: straight to jail, turn over
			out.news = append(out.news, g.newsFor(p, "rolls a third double"))
			out.caused = append(out.caused, GoToJail{Player: a.Player})
			out.response = RollResponse{Total: a.Roll.Total(), Doubles: true, CanMove: false}
			g.toNextPlayer()
			return out, nil
		}
	} else {
		g.doubles = 0
	}

	out.news = append(out.news, g.newsFor(p, "rolls %d and %d", a.Roll.Die1, a.Roll.Die2))
	out.response = RollResponse{Total: a.Roll.Total(), Doubles: a.Roll.IsDoubles(), CanMove: true}
	return out, nil
}

func (g *game) applyMoveForward(a MoveForward) (applyResult, error) {
	p, err := g.resolveActive(a.Player)
	if err != nil {
		return applyResult{}, err
	}
	if a.Spaces < 1 || a.Spaces >= len(g.squares) {
		return applyResult{}, &StateError{Kind: ErrBadAction, Player: a.Player, Property: -1, Detail: "bad move distance"}
	}
	if a.Player != g.playing {
		return applyResult{}, errPlayer(ErrNotPlayersTurn, a.Player)
	}
	if !g.rolled {
		// one move per roll, and no move without one
		return applyResult{}, errPlayer(ErrNotNow, a.Player)
	}
	if p.InJail {
		return applyResult{}, errPlayer(ErrNotNow, a.Player)
	}

	out := applyResult{}

	old := p.OnSquare
	p.OnSquare = (old + a.Spaces) % len(g.squares)

	if old+a.Spaces >= len(g.squares) {
		// passed or landed on go
		out.caused = append(out.caused, ReceiveSalary{Player: a.Player})
	}

	square := g.squares[p.OnSquare]
	out.news = append(out.news, g.newsFor(p, "walks %d squares to %s", a.Spaces, square.Name))

	landNews, landCaused := g.landOn(a.Player, p)
	out.news = append(out.news, landNews...)
	out.caused = append(out.caused, landCaused...)

	// moving settles the turn
	if g.doubles > 0 && square.Type != SquareGoToJail {
		// rolled doubles: may roll again
		g.rolled = false
	} else {
		g.toNextPlayer()
	}

	return out, nil
}

// landOn works out what arriving on a square means: obligations are noted
// for the host to act on, jail is caused immediately.
func (g *game) landOn(id PlayerId, p *player) ([]Change, []Action) {
	var news []Change
	var caused []Action

	square := g.squares[p.OnSquare]
	switch square.Type {
	case SquareGoToJail:
		caused = append(caused, GoToJail{Player: id})
	case SquareTax:
		g.addMust(p, fmt.Sprintf("paytaxes:%d", square.Tax))
	case SquareChance:
		g.addMust(p, "drawcard:"+string(DeckChance))
	case SquareCommunityChest:
		g.addMust(p, "drawcard:"+string(DeckCommunityChest))
	case SquareStreet, SquareRailroad, SquareUtility:
		o := g.owners[square.Property]
		if o.Owner != NoPlayer && o.Owner != id && !o.Mortgaged {
			rent, _ := g.RentAt(square.Property, g.lastRoll)
			if rent > 0 {
				g.addMust(p, fmt.Sprintf("payrent:%d:%d", square.Property, rent))
				news = append(news, g.newsFor(p, "owes %d rent to %s", rent, g.players[o.Owner].Name))
			}
		}
	}

	return news, caused
}

func (g *game) applyBuyProperty(a BuyProperty) (applyResult, error) {
	p, err := g.resolveActive(a.Player)
	if err != nil {
		return applyResult{}, err
	}
	prop, o, err := g.resolveProperty(a.Property)
	if err != nil {
		return applyResult{}, err
	}
	if o.Owner != NoPlayer {
		return applyResult{}, errProperty(ErrPropertyAlreadyOwned, a.Player, a.Property)
	}
	if p.OnSquare != prop.Square {
		return applyResult{}, errProperty(ErrNotNow, a.Player, a.Property)
	}
	if err := g.requireFunds(a.Player, p, prop.Price); err != nil {
		return applyResult{}, err
	}

	p.Cash -= prop.Price
	o.Owner = a.Player

	return applyResult{
		news: []Change{g.newsFor(p, "buys %s for %d", prop.Name, prop.Price)},
	}, nil
}

func (g *game) applySellProperty(a SellProperty) (applyResult, error) {
	p, err := g.resolveActive(a.Player)
	if err != nil {
		return applyResult{}, err
	}
	prop, o, err := g.resolveProperty(a.Property)
	if err != nil {
		return applyResult{}, err
	}
	if o.Owner != a.Player {
		return applyResult{}, errProperty(ErrNotOwner, a.Player, a.Property)
	}
	if o.Houses > 0 || o.Hotel {
		return applyResult{}, errProperty(ErrInvalidBuildingState, a.Player, a.Property)
	}
	if o.Mortgaged {
		return applyResult{}, errProperty(ErrNotNow, a.Player, a.Property)
	}

	p.Cash += prop.Price
	o.Owner = NoPlayer

	return applyResult{
		news: []Change{g.newsFor(p, "sells %s back to the bank for %d", prop.Name, prop.Price)},
	}, nil
}

// buildLevel is the improvement tier used for the even-building rule;
// a hotel counts above four houses.
func buildLevel(o ownership) int {
	if o.Hotel {
		return 5
	}
	return o.Houses
}

// checkStreetBuild covers the checks shared by all building actions: the
// property is a street the player fully controls, with nothing mortgaged.
func (g *game) checkStreetBuild(id PlayerId, prid PropertyId) (*Property, *ownership, error) {
	prop, o, err := g.resolveProperty(prid)
	if err != nil {
		return nil, nil, err
	}
	if o.Owner != id {
		return nil, nil, errProperty(ErrNotOwner, id, prid)
	}
	if prop.Group == GroupRailroad || prop.Group == GroupUtility {
		return nil, nil, errProperty(ErrInvalidBuildingState, id, prid)
	}
	if !g.ownsWholeGroup(id, prop.Group) {
		return nil, nil, errProperty(ErrInvalidBuildingState, id, prid)
	}
	for _, m := range g.groupMembers(prop.Group) {
		if g.owners[m].Mortgaged {
			return nil, nil, errProperty(ErrInvalidBuildingState, id, m)
		}
	}
	return prop, o, nil
}

func (g *game) applyBuyHouse(a BuyHouse) (applyResult, error) {
	p, err := g.resolveActive(a.Player)
	if err != nil {
		return applyResult{}, err
	}
	prop, o, err := g.checkStreetBuild(a.Player, a.Property)
	if err != nil {
		return applyResult{}, err
	}
	if o.Hotel || o.Houses >= 4 {
		return applyResult{}, errProperty(ErrInvalidBuildingState, a.Player, a.Property)
	}
	for _, m := range g.groupMembers(prop.Group) {
		if o.Houses+1 > buildLevel(g.owners[m])+1 {
			// must build evenly across the group
			return applyResult{}, errProperty(ErrInvalidBuildingState, a.Player, a.Property)
		}
	}
	if g.bank.Houses < 1 {
		return applyResult{}, errProperty(ErrInvalidBuildingState, a.Player, a.Property)
	}
	if err := g.requireFunds(a.Player, p, prop.HouseCost); err != nil {
		return applyResult{}, err
	}

	p.Cash -= prop.HouseCost
	o.Houses++
	g.bank.Houses--

	return applyResult{
		news: []Change{g.newsFor(p, "builds a house on %s", prop.Name)},
	}, nil
}

func (g *game) applySellHouse(a SellHouse) (applyResult, error) {
	p, err := g.resolveActive(a.Player)
	if err != nil {
		return applyResult{}, err
	}
	prop, o, err := g.resolveProperty(a.Property)
	if err != nil {
		return applyResult{}, err
	}
	if o.Owner != a.Player {
		return applyResult{}, errProperty(ErrNotOwner, a.Player, a.Property)
	}
	if o.Houses < 1 {
		return applyResult{}, errProperty(ErrInvalidBuildingState, a.Player, a.Property)
	}
	for _, m := range g.groupMembers(prop.Group) {
		if buildLevel(g.owners[m]) > o.Houses-1+1 {
			// must tear down evenly too
			return applyResult{}, errProperty(ErrInvalidBuildingState, a.Player, a.Property)
		}
	}

	p.Cash += prop.HouseCost / 2
	o.Houses--
	g.bank.Houses++

	return applyResult{
		news: []Change{g.newsFor(p, "sells a house from %s", prop.Name)},
	}, nil
}

func (g *game) applyBuyHotel(a BuyHotel) (applyResult, error) {
	p, err := g.resolveActive(a.Player)
	if err != nil {
		return applyResult{}, err
	}
	prop, o, err := g.checkStreetBuild(a.Player, a.Property)
	if err != nil {
		return applyResult{}, err
	}
	if o.Hotel {
		return applyResult{}, errProperty(ErrInvalidBuildingState, a.Player, a.Property)
	}
	if o.Houses != 4 {
		return applyResult{}, errProperty(ErrInvalidBuildingState, a.Player, a.Property)
	}
	for _, m := range g.groupMembers(prop.Group) {
		if buildLevel(g.owners[m]) < 4 {
			return applyResult{}, errProperty(ErrInvalidBuildingState, a.Player, a.Property)
		}
	}
	if g.bank.Hotels < 1 {
		return applyResult{}, errProperty(ErrInvalidBuildingState, a.Player, a.Property)
	}
	if err := g.requireFunds(a.Player, p, prop.HotelCost); err != nil {
		return applyResult{}, err
	}

	p.Cash -= prop.HotelCost
	o.Houses = 0
	o.Hotel = true
	g.bank.Houses += 4
	g.bank.Hotels--

	return applyResult{
		news: []Change{g.newsFor(p, "builds a hotel on %s", prop.Name)},
	}, nil
}

func (g *game) applySellHotel(a SellHotel) (applyResult, error) {
	p, err := g.resolveActive(a.Player)
	if err != nil {
		return applyResult{}, err
	}
	prop, o, err := g.resolveProperty(a.Property)
	if err != nil {
		return applyResult{}, err
	}
	if o.Owner != a.Player {
		return applyResult{}, errProperty(ErrNotOwner, a.Player, a.Property)
	}
	if !o.Hotel {
		return applyResult{}, errProperty(ErrInvalidBuildingState, a.Player, a.Property)
	}
	if g.bank.Houses < 4 {
		// the hotel breaks back into four houses, which must be in stock
		return applyResult{}, errProperty(ErrInvalidBuildingState, a.Player, a.Property)
	}

	p.Cash += prop.HotelCost / 2
	o.Hotel = false
	o.Houses = 4
	g.bank.Hotels++
	g.bank.Houses -= 4

	return applyResult{
		news: []Change{g.newsFor(p, "sells the hotel from %s", prop.Name)},
	}, nil
}

func (g *game) applyPayTaxes(a PayTaxes) (applyResult, error) {
	p, err := g.resolveActive(a.Player)
	if err != nil {
		return applyResult{}, err
	}
	if a.Amount <= 0 {
		return applyResult{}, &StateError{Kind: ErrBadAction, Player: a.Player, Property: -1, Amount: a.Amount, Detail: "bad tax amount"}
	}
	if err := g.requireFunds(a.Player, p, a.Amount); err != nil {
		return applyResult{}, err
	}

	p.Cash -= a.Amount
	g.clearMust(p, fmt.Sprintf("paytaxes:%d", a.Amount))

	return applyResult{
		news: []Change{g.newsFor(p, "pays %d in taxes", a.Amount)},
	}, nil
}

func (g *game) applyReceiveSalary(a ReceiveSalary) (applyResult, error) {
	p, err := g.resolveActive(a.Player)
	if err != nil {
		return applyResult{}, err
	}

	p.Cash += g.settings.Salary

	return applyResult{
		news: []Change{g.newsFor(p, "collects %d salary", g.settings.Salary)},
	}, nil
}

func (g *game) deckFor(deck DeckType) ([]Card, *CardStack, error) {
	switch deck {
	case DeckChance:
		return g.chance, &g.chancePile, nil
	case DeckCommunityChest:
		return g.chest, &g.chestPile, nil
	default:
		return nil, nil, &StateError{Kind: ErrBadAction, Player: NoPlayer, Property: -1, Detail: "no such deck"}
	}
}

func (g *game) applyDrawCard(a DrawCard) (applyResult, error) {
	p, err := g.resolveActive(a.Player)
	if err != nil {
		return applyResult{}, err
	}
	cards, pile, err := g.deckFor(a.Deck)
	if err != nil {
		return applyResult{}, err
	}

	cardId := pile.Peek()
	if cardId < 0 {
		// every card is in someone's hand
		return applyResult{}, errPlayer(ErrNotNow, a.Player)
	}
	card := cards[cardId]
	code := card.ParseCode()

	// anything that charges must be checked before the card leaves the pile
	switch code := code.(type) {
	case CardPay:
		if err := g.requireFunds(a.Player, p, code.Amount); err != nil {
			return applyResult{}, err
		}
	case CardRepairs:
		if err := g.requireFunds(a.Player, p, g.repairsOwed(a.Player, code)); err != nil {
			return applyResult{}, err
		}
	}

	_, rest := pile.Take()
	*pile = rest

	out := applyResult{response: DrawResponse{Card: card.Name}}
	out.news = append(out.news, g.newsFor(p, "draws a card: %s", card.Name))

	retained := false

	switch code := code.(type) {
	case CardCollect:
		p.Cash += code.Amount
	case CardPay:
		p.Cash -= code.Amount
	case CardAdvance:
		old := p.OnSquare
		at := g.findSquareAhead(old, code.Dest)
		if at >= 0 {
			p.OnSquare = at
			if at <= old {
				out.caused = append(out.caused, ReceiveSalary{Player: a.Player})
			}
			out.news = append(out.news, g.newsFor(p, "advances to %s", g.squares[at].Name))
			landNews, landCaused := g.landOn(a.Player, p)
			out.news = append(out.news, landNews...)
			out.caused = append(out.caused, landCaused...)
		}
	case CardMove:
		old := p.OnSquare
		at := (old + code.N) % len(g.squares)
		if at < 0 {
			at += len(g.squares)
		}
		p.OnSquare = at
		if code.N > 0 && old+code.N >= len(g.squares) {
			out.caused = append(out.caused, ReceiveSalary{Player: a.Player})
		}
		out.news = append(out.news, g.newsFor(p, "moves to %s", g.squares[at].Name))
		landNews, landCaused := g.landOn(a.Player, p)
		out.news = append(out.news, landNews...)
		out.caused = append(out.caused, landCaused...)
	case CardGoToJail:
		out.caused = append(out.caused, GoToJail{Player: a.Player})
	case CardOutOfJail:
		p.JailCards = append(p.JailCards, heldCard{Deck: a.Deck, Card: cardId})
		retained = true
	case CardRepairs:
		p.Cash -= g.repairsOwed(a.Player, code)
	case CardUnparsed:
		out.news = append(out.news, g.newsFor(p, "finds the card does nothing"))
	}

	if !retained {
		*pile = pile.Return(cardId)
	}

	g.clearMust(p, "drawcard:"+string(a.Deck))

	return out, nil
}

func (g *game) repairsOwed(id PlayerId, code CardRepairs) Money {
	owed := Money(0)
	for pr := range g.owners {
		o := g.owners[pr]
		if o.Owner != id {
			continue
		}
		owed += Money(o.Houses) * code.PerHouse
		if o.Hotel {
			owed += code.PerHotel
		}
	}
	return owed
}

func (g *game) applyGoToJail(a GoToJail) (applyResult, error) {
	p, err := g.resolveActive(a.Player)
	if err != nil {
		return applyResult{}, err
	}

	p.InJail = true
	p.OnSquare = g.jailSquare()

	return applyResult{
		news: []Change{g.newsFor(p, "goes to jail")},
	}, nil
}

func (g *game) applyPayJailFine(a PayJailFine) (applyResult, error) {
	p, err := g.resolveActive(a.Player)
	if err != nil {
		return applyResult{}, err
	}
	if !p.InJail {
		return applyResult{}, errPlayer(ErrNotNow, a.Player)
	}

	out := applyResult{}

	if len(p.JailCards) > 0 {
		held := p.JailCards[0]
		p.JailCards = p.JailCards[1:]
		_, pile, _ := g.deckFor(held.Deck)
		*pile = pile.Return(held.Card)
		out.news = append(out.news, g.newsFor(p, "plays a get out of jail free card"))
	} else {
		if err := g.requireFunds(a.Player, p, g.settings.JailFine); err != nil {
			return applyResult{}, err
		}
		p.Cash -= g.settings.JailFine
		out.news = append(out.news, g.newsFor(p, "pays the %d jail fine", g.settings.JailFine))
	}

	p.InJail = false

	return out, nil
}

func (g *game) applyAuctionProperty(a AuctionProperty) (applyResult, error) {
	prop, o, err := g.resolveProperty(a.Property)
	if err != nil {
		return applyResult{}, err
	}
	if o.Owner != NoPlayer {
		return applyResult{}, errProperty(ErrPropertyAlreadyOwned, NoPlayer, a.Property)
	}
	if len(a.Bids) == 0 {
		return applyResult{}, errProperty(ErrNoBids, NoPlayer, a.Property)
	}

	// every bid must be good before any is considered
	for _, b := range a.Bids {
		p, err := g.resolveActive(b.Player)
		if err != nil {
			return applyResult{}, err
		}
		if b.Amount <= 0 {
			return applyResult{}, &StateError{Kind: ErrBadAction, Player: b.Player, Property: a.Property, Amount: b.Amount, Detail: "bad bid"}
		}
		if err := g.requireFunds(b.Player, p, b.Amount); err != nil {
			return applyResult{}, err
		}
	}

	// highest wins, first submitted wins ties
	best := a.Bids[0]
	for _, b := range a.Bids[1:] {
		if b.Amount > best.Amount {
			best = b
		}
	}

	winner := &g.players[best.Player]
	winner.Cash -= best.Amount
	o.Owner = best.Player

	return applyResult{
		response: AuctionResponse{Winner: best.Player, Amount: best.Amount},
		news:     []Change{g.newsFor(winner, "wins the auction for %s at %d", prop.Name, best.Amount)},
	}, nil
}

func (g *game) applyMortgageProperty(a MortgageProperty) (applyResult, error) {
	p, err := g.resolveActive(a.Player)
	if err != nil {
		return applyResult{}, err
	}
	prop, o, err := g.resolveProperty(a.Property)
	if err != nil {
		return applyResult{}, err
	}
	if o.Owner != a.Player {
		return applyResult{}, errProperty(ErrNotOwner, a.Player, a.Property)
	}
	if o.Mortgaged {
		return applyResult{}, errProperty(ErrNotNow, a.Player, a.Property)
	}
	if o.Houses > 0 || o.Hotel {
		return applyResult{}, errProperty(ErrInvalidBuildingState, a.Player, a.Property)
	}

	p.Cash += prop.Mortgage
	o.Mortgaged = true

	return applyResult{
		news: []Change{g.newsFor(p, "mortgages %s for %d", prop.Name, prop.Mortgage)},
	}, nil
}

func (g *game) applyUnmortgageProperty(a UnmortgageProperty) (applyResult, error) {
	p, err := g.resolveActive(a.Player)
	if err != nil {
		return applyResult{}, err
	}
	prop, o, err := g.resolveProperty(a.Property)
	if err != nil {
		return applyResult{}, err
	}
	if o.Owner != a.Player {
		return applyResult{}, errProperty(ErrNotOwner, a.Player, a.Property)
	}
	if !o.Mortgaged {
		return applyResult{}, errProperty(ErrNotNow, a.Player, a.Property)
	}

	cost := prop.Mortgage + prop.Mortgage*Money(g.settings.InterestPct)/100
	if err := g.requireFunds(a.Player, p, cost); err != nil {
		return applyResult{}, err
	}

	p.Cash -= cost
	o.Mortgaged = false

	return applyResult{
		news: []Change{g.newsFor(p, "pays off the mortgage on %s for %d", prop.Name, cost)},
	}, nil
}

func (g *game) applyTransactWithPlayer(a TransactWithPlayer) (applyResult, error) {
	if a.Payer == a.Payee {
		return applyResult{}, &StateError{Kind: ErrBadAction, Player: a.Payer, Property: -1, Detail: "cannot transact with yourself"}
	}
	payer, err := g.resolveActive(a.Payer)
	if err != nil {
		return applyResult{}, err
	}
	payee, err := g.resolveActive(a.Payee)
	if err != nil {
		return applyResult{}, err
	}
	if a.Transaction.Cost < 0 {
		return applyResult{}, &StateError{Kind: ErrBadAction, Player: a.Payer, Property: -1, Amount: a.Transaction.Cost, Detail: "negative cost"}
	}

	cost := a.Transaction.Cost

	switch a.Transaction.Type {
	case TransactionPayRent:
		_, o, err := g.resolveProperty(a.Transaction.Property)
		if err != nil {
			return applyResult{}, err
		}
		if o.Owner != a.Payee {
			return applyResult{}, errProperty(ErrNotOwner, a.Payee, a.Transaction.Property)
		}
		if o.Mortgaged {
			return applyResult{}, errProperty(ErrNotNow, a.Payer, a.Transaction.Property)
		}
		if err := g.requireFunds(a.Payer, payer, cost); err != nil {
			return applyResult{}, err
		}

		payer.Cash -= cost
		payee.Cash += cost
		g.clearMustPrefix(payer, fmt.Sprintf("payrent:%d:", a.Transaction.Property))

		return applyResult{
			news: []Change{g.newsFor(payer, "pays %d rent to %s", cost, payee.Name)},
		}, nil

	case TransactionBuyProperty:
		prop, o, err := g.resolveProperty(a.Transaction.Property)
		if err != nil {
			return applyResult{}, err
		}
		if o.Owner != a.Payee {
			return applyResult{}, errProperty(ErrNotOwner, a.Payee, a.Transaction.Property)
		}
		if o.Houses > 0 || o.Hotel {
			return applyResult{}, errProperty(ErrInvalidBuildingState, a.Payer, a.Transaction.Property)
		}
		if err := g.requireFunds(a.Payer, payer, cost); err != nil {
			return applyResult{}, err
		}

		payer.Cash -= cost
		payee.Cash += cost
		o.Owner = a.Payer

		return applyResult{
			news: []Change{g.newsFor(payer, "buys %s from %s for %d", prop.Name, payee.Name, cost)},
		}, nil

	case TransactionSellProperty:
		prop, o, err := g.resolveProperty(a.Transaction.Property)
		if err != nil {
			return applyResult{}, err
		}
		if o.Owner != a.Payer {
			return applyResult{}, errProperty(ErrNotOwner, a.Payer, a.Transaction.Property)
		}
		if o.Houses > 0 || o.Hotel {
			return applyResult{}, errProperty(ErrInvalidBuildingState, a.Payer, a.Transaction.Property)
		}
		if err := g.requireFunds(a.Payee, payee, cost); err != nil {
			return applyResult{}, err
		}

		payee.Cash -= cost
		payer.Cash += cost
		o.Owner = a.Payee

		return applyResult{
			news: []Change{g.newsFor(payer, "sells %s to %s for %d", prop.Name, payee.Name, cost)},
		}, nil

	case TransactionBuyJailCard:
		if len(payee.JailCards) == 0 {
			return applyResult{}, errPlayer(ErrNotNow, a.Payee)
		}
		if err := g.requireFunds(a.Payer, payer, cost); err != nil {
			return applyResult{}, err
		}

		payer.Cash -= cost
		payee.Cash += cost
		held := payee.JailCards[0]
		payee.JailCards = payee.JailCards[1:]
		payer.JailCards = append(payer.JailCards, held)

		return applyResult{
			news: []Change{g.newsFor(payer, "buys a get out of jail free card from %s", payee.Name)},
		}, nil

	default:
		return applyResult{}, &StateError{Kind: ErrBadAction, Player: a.Payer, Property: -1, Detail: "unknown transaction type"}
	}
}

func (g *game) applyDeclareBankruptcy(a DeclareBankruptcy) (applyResult, error) {
	p, err := g.resolveActive(a.Player)
	if err != nil {
		return applyResult{}, err
	}

	var creditor *player
	if a.Creditor != nil {
		if *a.Creditor == a.Player {
			return applyResult{}, &StateError{Kind: ErrBadAction, Player: a.Player, Property: -1, Detail: "cannot owe yourself"}
		}
		creditor, err = g.resolveActive(*a.Creditor)
		if err != nil {
			return applyResult{}, err
		}
	}

	active := 0
	for i := range g.players {
		if g.players[i].Active {
			active++
		}
	}
	if active == 1 {
		// nobody would be left to play
		return applyResult{}, errPlayer(ErrNotNow, a.Player)
	}

	// buildings come off first, half price to the estate
	for pr := range g.owners {
		o := &g.owners[pr]
		if o.Owner != a.Player {
			continue
		}
		prop := &g.props[pr]
		if o.Houses > 0 {
			p.Cash += Money(o.Houses) * prop.HouseCost / 2
			g.bank.Houses += o.Houses
			o.Houses = 0
		}
		if o.Hotel {
			p.Cash += (prop.HotelCost + 4*prop.HouseCost) / 2
			g.bank.Hotels++
			o.Hotel = false
		}
	}

	// then everything goes to the creditor, or back to the bank
	for pr := range g.owners {
		o := &g.owners[pr]
		if o.Owner != a.Player {
			continue
		}
		if creditor != nil {
			o.Owner = *a.Creditor
		} else {
			o.Owner = NoPlayer
			o.Mortgaged = false
		}
	}

	for _, held := range p.JailCards {
		_, pile, _ := g.deckFor(held.Deck)
		*pile = pile.Return(held.Card)
	}
	p.JailCards = nil

	var news []Change
	if creditor != nil {
		creditor.Cash += p.Cash
		news = append(news, g.newsFor(p, "goes bankrupt, everything goes to %s", creditor.Name))
	} else {
		news = append(news, g.newsFor(p, "goes bankrupt, everything goes to the bank"))
	}

	p.Cash = 0
	p.Active = false
	p.InJail = false
	g.clearMustPrefix(p, "")

	if g.playing == a.Player {
		g.toNextPlayer()
	}

	return applyResult{news: news}, nil
}
