package game

import (
	"bytes"
	"errors"
	"testing"
)

func makeGame(t *testing.T, names ...string) *game {
	t.Helper()
	g := NewStandardGame().(*game)
	for _, n := range names {
		_, err := g.AddPlayer(n)
		if err != nil {
			t.Fatalf("add player: %v", err)
		}
	}
	return g
}

func propId(t *testing.T, g *game, name string) PropertyId {
	t.Helper()
	for i := range g.props {
		if g.props[i].Name == name {
			return PropertyId(i)
		}
	}
	t.Fatalf("no property called %s", name)
	return -1
}

func snapshot(t *testing.T, g *game) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := g.WriteOut(&buf); err != nil {
		t.Fatalf("write out: %v", err)
	}
	return buf.Bytes()
}

func TestApply_unknownPlayer(t *testing.T) {
	g := NewStandardGame().(*game)

	before := snapshot(t, g)

	_, err := g.Apply(RollDice{Player: 0, Roll: RollResult{1, 2}})
	if !errors.Is(err, ErrUnknownPlayer) {
		t.Errorf("want UNKNOWNPLAYER, got %v", err)
	}
	if len(g.Events()) != 0 {
		t.Errorf("log should be empty, has %d", len(g.Events()))
	}
	if !bytes.Equal(before, snapshot(t, g)) {
		t.Errorf("state changed on failed apply")
	}
}

func TestApply_rollLogged(t *testing.T) {
	g := makeGame(t, "phil")

	a := RollDice{Player: 0, Roll: RollResult{1, 2}}
	res, err := g.Apply(a)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	events := g.Events()
	if len(events) != 1 {
		t.Fatalf("want 1 event, got %d", len(events))
	}
	if events[0].Action != Action(a) {
		t.Errorf("last event is not the applied action: %v", events[0].Action)
	}

	roll, ok := res.Response.(RollResponse)
	if !ok {
		t.Fatalf("bad response type: %T", res.Response)
	}
	if roll.Total != 3 || roll.Doubles {
		t.Errorf("bad roll response: %+v", roll)
	}
}

func TestApply_rollOutOfTurn(t *testing.T) {
	g := makeGame(t, "phil", "bear")

	_, err := g.Apply(RollDice{Player: 1, Roll: RollResult{1, 2}})
	if !errors.Is(err, ErrNotPlayersTurn) {
		t.Errorf("want NOTPLAYERSTURN, got %v", err)
	}
}

func TestApply_buyInsufficientFunds(t *testing.T) {
	g := makeGame(t, "phil")
	med := propId(t, g, "Mediterranean Ave")

	g.players[0].Cash = 50
	g.players[0].OnSquare = g.props[med].Square

	before := snapshot(t, g)

	_, err := g.Apply(BuyProperty{Player: 0, Property: med})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("want INSUFFICIENTFUNDS, got %v", err)
	}
	if g.owners[med].Owner != NoPlayer {
		t.Errorf("ownership changed on failed buy")
	}
	if !bytes.Equal(before, snapshot(t, g)) {
		t.Errorf("state changed on failed apply")
	}

	var serr *StateError
	if !errors.As(err, &serr) {
		t.Fatalf("not a StateError: %v", err)
	}
	if serr.Amount != 60 || serr.Player != 0 {
		t.Errorf("bad error context: %+v", serr)
	}
}

func TestApply_buyAndSell(t *testing.T) {
	g := makeGame(t, "phil")
	med := propId(t, g, "Mediterranean Ave")

	g.players[0].OnSquare = g.props[med].Square

	_, err := g.Apply(BuyProperty{Player: 0, Property: med})
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if g.owners[med].Owner != 0 {
		t.Errorf("not owned after buy")
	}
	if g.players[0].Cash != 1500-60 {
		t.Errorf("bad cash after buy: %d", g.players[0].Cash)
	}

	_, err = g.Apply(BuyProperty{Player: 0, Property: med})
	if !errors.Is(err, ErrPropertyAlreadyOwned) {
		t.Errorf("want PROPERTYALREADYOWNED, got %v", err)
	}

	_, err = g.Apply(SellProperty{Player: 0, Property: med})
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if g.owners[med].Owner != NoPlayer {
		t.Errorf("still owned after sell")
	}
	if g.players[0].Cash != 1500 {
		t.Errorf("bad cash after sell: %d", g.players[0].Cash)
	}
}

func TestApply_sellNotOwner(t *testing.T) {
	g := makeGame(t, "phil", "bear")
	med := propId(t, g, "Mediterranean Ave")

	g.owners[med].Owner = 1

	_, err := g.Apply(SellProperty{Player: 0, Property: med})
	if !errors.Is(err, ErrNotOwner) {
		t.Errorf("want NOTOWNER, got %v", err)
	}
}

func TestApply_moveCollectsSalary(t *testing.T) {
	g := makeGame(t, "phil")

	g.players[0].OnSquare = 38
	g.rolled = true

	_, err := g.Apply(MoveForward{Player: 0, Spaces: 4})
	if err != nil {
		t.Fatalf("move: %v", err)
	}

	if g.players[0].OnSquare != 2 {
		t.Errorf("bad position: %d", g.players[0].OnSquare)
	}
	if g.players[0].Cash != 1500+200 {
		t.Errorf("no salary: %d", g.players[0].Cash)
	}

	// the move and the salary it caused are separate log entries, in order
	events := g.Events()
	if len(events) != 2 {
		t.Fatalf("want 2 events, got %d", len(events))
	}
	if events[0].Action.Kind() != KindMoveForward {
		t.Errorf("first event: %v", events[0].Action.Kind())
	}
	if events[1].Action.Kind() != KindReceiveSalary {
		t.Errorf("second event: %v", events[1].Action.Kind())
	}
}

func TestApply_moveToGoToJail(t *testing.T) {
	g := makeGame(t, "phil")

	g.players[0].OnSquare = 25
	g.rolled = true

	_, err := g.Apply(MoveForward{Player: 0, Spaces: 5})
	if err != nil {
		t.Fatalf("move: %v", err)
	}

	if !g.players[0].InJail {
		t.Errorf("not in jail")
	}
	if g.players[0].OnSquare != g.jailSquare() {
		t.Errorf("not on jail square: %d", g.players[0].OnSquare)
	}
}

func TestApply_taxes(t *testing.T) {
	g := makeGame(t, "phil")

	_, err := g.Apply(PayTaxes{Player: 0, Amount: 200})
	if err != nil {
		t.Fatalf("taxes: %v", err)
	}
	if g.players[0].Cash != 1300 {
		t.Errorf("bad cash: %d", g.players[0].Cash)
	}

	g.players[0].Cash = 10
	_, err = g.Apply(PayTaxes{Player: 0, Amount: 200})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("want INSUFFICIENTFUNDS, got %v", err)
	}
}

func TestApply_jailFine(t *testing.T) {
	g := makeGame(t, "phil")

	_, err := g.Apply(PayJailFine{Player: 0})
	if !errors.Is(err, ErrNotNow) {
		t.Errorf("fine while free: want NOTNOW, got %v", err)
	}

	_, err = g.Apply(GoToJail{Player: 0})
	if err != nil {
		t.Fatalf("go to jail: %v", err)
	}

	_, err = g.Apply(PayJailFine{Player: 0})
	if err != nil {
		t.Fatalf("fine: %v", err)
	}
	if g.players[0].InJail {
		t.Errorf("still in jail")
	}
	if g.players[0].Cash != 1500-50 {
		t.Errorf("bad cash: %d", g.players[0].Cash)
	}
}

func TestApply_jailCardSpentFirst(t *testing.T) {
	g := makeGame(t, "phil")

	g.players[0].JailCards = []heldCard{{Deck: DeckChance, Card: 0}}
	g.players[0].InJail = true

	pileBefore := len(g.chancePile)

	_, err := g.Apply(PayJailFine{Player: 0})
	if err != nil {
		t.Fatalf("fine: %v", err)
	}
	if g.players[0].Cash != 1500 {
		t.Errorf("paid money despite holding a card: %d", g.players[0].Cash)
	}
	if len(g.players[0].JailCards) != 0 {
		t.Errorf("card not spent")
	}
	if len(g.chancePile) != pileBefore+1 {
		t.Errorf("card not returned to pile")
	}
}

func TestApply_auction(t *testing.T) {
	g := makeGame(t, "phil", "bear", "fox")
	med := propId(t, g, "Mediterranean Ave")

	res, err := g.Apply(AuctionProperty{Property: med, Bids: []Bid{
		{Player: 0, Amount: 100},
		{Player: 1, Amount: 120},
		{Player: 2, Amount: 120},
	}})
	if err != nil {
		t.Fatalf("auction: %v", err)
	}

	// first submitted wins the tie
	ar := res.Response.(AuctionResponse)
	if ar.Winner != 1 || ar.Amount != 120 {
		t.Errorf("bad result: %+v", ar)
	}
	if g.owners[med].Owner != 1 {
		t.Errorf("bad owner: %d", g.owners[med].Owner)
	}
	if g.players[1].Cash != 1500-120 {
		t.Errorf("winner not charged: %d", g.players[1].Cash)
	}
	if g.players[0].Cash != 1500 || g.players[2].Cash != 1500 {
		t.Errorf("losers charged")
	}
}

func TestApply_auctionBadBid(t *testing.T) {
	g := makeGame(t, "phil", "bear")
	med := propId(t, g, "Mediterranean Ave")

	g.players[1].Cash = 10

	before := snapshot(t, g)

	_, err := g.Apply(AuctionProperty{Property: med, Bids: []Bid{
		{Player: 0, Amount: 50},
		{Player: 1, Amount: 60},
	}})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("want INSUFFICIENTFUNDS, got %v", err)
	}
	if !bytes.Equal(before, snapshot(t, g)) {
		t.Errorf("state changed on failed auction")
	}

	_, err = g.Apply(AuctionProperty{Property: med, Bids: nil})
	if !errors.Is(err, ErrNoBids) {
		t.Errorf("want NOBIDS, got %v", err)
	}
}

func TestApply_mortgage(t *testing.T) {
	g := makeGame(t, "phil")
	med := propId(t, g, "Mediterranean Ave")

	g.owners[med].Owner = 0

	_, err := g.Apply(MortgageProperty{Player: 0, Property: med})
	if err != nil {
		t.Fatalf("mortgage: %v", err)
	}
	if !g.owners[med].Mortgaged {
		t.Errorf("not mortgaged")
	}
	if g.players[0].Cash != 1500+30 {
		t.Errorf("bad cash: %d", g.players[0].Cash)
	}

	_, err = g.Apply(MortgageProperty{Player: 0, Property: med})
	if !errors.Is(err, ErrNotNow) {
		t.Errorf("double mortgage: want NOTNOW, got %v", err)
	}

	_, err = g.Apply(UnmortgageProperty{Player: 0, Property: med})
	if err != nil {
		t.Fatalf("unmortgage: %v", err)
	}
	if g.owners[med].Mortgaged {
		t.Errorf("still mortgaged")
	}
	// 30 back plus 10% interest
	if g.players[0].Cash != 1500+30-33 {
		t.Errorf("bad cash: %d", g.players[0].Cash)
	}
}

func TestApply_transactRentConservesMoney(t *testing.T) {
	g := makeGame(t, "phil", "bear")
	med := propId(t, g, "Mediterranean Ave")

	g.owners[med].Owner = 1

	total := g.players[0].Cash + g.players[1].Cash

	_, err := g.Apply(TransactWithPlayer{
		Payer: 0, Payee: 1,
		Transaction: Transaction{Type: TransactionPayRent, Property: med, Cost: 2},
	})
	if err != nil {
		t.Fatalf("rent: %v", err)
	}

	if g.players[0].Cash+g.players[1].Cash != total {
		t.Errorf("money not conserved")
	}
	if g.players[1].Cash != 1502 {
		t.Errorf("bad payee cash: %d", g.players[1].Cash)
	}
}

func TestApply_transactCannotCover(t *testing.T) {
	g := makeGame(t, "phil", "bear")
	med := propId(t, g, "Mediterranean Ave")

	g.owners[med].Owner = 1
	g.players[0].Cash = 5

	before := snapshot(t, g)

	_, err := g.Apply(TransactWithPlayer{
		Payer: 0, Payee: 1,
		Transaction: Transaction{Type: TransactionPayRent, Property: med, Cost: 100},
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("want INSUFFICIENTFUNDS, got %v", err)
	}
	if !bytes.Equal(before, snapshot(t, g)) {
		t.Errorf("partial transaction leaked")
	}
}

func TestApply_transactPropertySale(t *testing.T) {
	g := makeGame(t, "phil", "bear")
	med := propId(t, g, "Mediterranean Ave")

	g.owners[med].Owner = 1

	_, err := g.Apply(TransactWithPlayer{
		Payer: 0, Payee: 1,
		Transaction: Transaction{Type: TransactionBuyProperty, Property: med, Cost: 100},
	})
	if err != nil {
		t.Fatalf("trade: %v", err)
	}
	if g.owners[med].Owner != 0 {
		t.Errorf("property did not move")
	}
	if g.players[0].Cash != 1400 || g.players[1].Cash != 1600 {
		t.Errorf("bad balances: %d %d", g.players[0].Cash, g.players[1].Cash)
	}
}

func TestApply_ownershipExclusive(t *testing.T) {
	g := makeGame(t, "phil", "bear")
	med := propId(t, g, "Mediterranean Ave")
	bal := propId(t, g, "Baltic Ave")

	g.players[0].OnSquare = g.props[med].Square
	if _, err := g.Apply(BuyProperty{Player: 0, Property: med}); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := g.Apply(AuctionProperty{Property: bal, Bids: []Bid{{Player: 1, Amount: 90}}}); err != nil {
		t.Fatalf("auction: %v", err)
	}
	if _, err := g.Apply(SellProperty{Player: 0, Property: med}); err != nil {
		t.Fatalf("sell: %v", err)
	}
	g.players[1].OnSquare = g.props[med].Square
	if _, err := g.Apply(BuyProperty{Player: 1, Property: med}); err != nil {
		t.Fatalf("rebuy: %v", err)
	}

	counts := map[PropertyId]int{}
	for pr, o := range g.owners {
		if o.Owner != NoPlayer {
			counts[PropertyId(pr)]++
		}
	}
	if counts[med] != 1 || counts[bal] != 1 {
		t.Errorf("bad ownership counts: %v", counts)
	}
	if g.owners[med].Owner != 1 || g.owners[bal].Owner != 1 {
		t.Errorf("bad owners: %d %d", g.owners[med].Owner, g.owners[bal].Owner)
	}
}

func TestApply_buildHouses(t *testing.T) {
	g := makeGame(t, "phil")
	med := propId(t, g, "Mediterranean Ave")
	bal := propId(t, g, "Baltic Ave")

	_, err := g.Apply(BuyHouse{Player: 0, Property: med})
	if !errors.Is(err, ErrNotOwner) {
		t.Errorf("build unowned: want NOTOWNER, got %v", err)
	}

	g.owners[med].Owner = 0

	// one brown street isn't a monopoly
	_, err = g.Apply(BuyHouse{Player: 0, Property: med})
	if !errors.Is(err, ErrInvalidBuildingState) {
		t.Errorf("build without group: want INVALIDBUILDINGSTATE, got %v", err)
	}

	g.owners[bal].Owner = 0

	if _, err := g.Apply(BuyHouse{Player: 0, Property: med}); err != nil {
		t.Fatalf("first house: %v", err)
	}

	// second on the same street would be uneven
	_, err = g.Apply(BuyHouse{Player: 0, Property: med})
	if !errors.Is(err, ErrInvalidBuildingState) {
		t.Errorf("uneven build: want INVALIDBUILDINGSTATE, got %v", err)
	}

	if _, err := g.Apply(BuyHouse{Player: 0, Property: bal}); err != nil {
		t.Fatalf("evening up: %v", err)
	}

	if g.owners[med].Houses != 1 || g.owners[bal].Houses != 1 {
		t.Errorf("bad house counts: %d %d", g.owners[med].Houses, g.owners[bal].Houses)
	}
	if g.bank.Houses != 30 {
		t.Errorf("bank stock wrong: %d", g.bank.Houses)
	}
}

func TestApply_hotel(t *testing.T) {
	g := makeGame(t, "phil")
	med := propId(t, g, "Mediterranean Ave")
	bal := propId(t, g, "Baltic Ave")

	g.owners[med] = ownership{Owner: 0, Houses: 4}
	g.owners[bal] = ownership{Owner: 0, Houses: 3}
	g.players[0].Cash = 10000

	// group must be fully built first
	_, err := g.Apply(BuyHotel{Player: 0, Property: med})
	if !errors.Is(err, ErrInvalidBuildingState) {
		t.Errorf("want INVALIDBUILDINGSTATE, got %v", err)
	}

	g.owners[bal].Houses = 4

	if _, err := g.Apply(BuyHotel{Player: 0, Property: med}); err != nil {
		t.Fatalf("hotel: %v", err)
	}
	if !g.owners[med].Hotel || g.owners[med].Houses != 0 {
		t.Errorf("bad state after hotel: %+v", g.owners[med])
	}

	if _, err := g.Apply(SellHotel{Player: 0, Property: med}); err != nil {
		t.Fatalf("sell hotel: %v", err)
	}
	if g.owners[med].Hotel || g.owners[med].Houses != 4 {
		t.Errorf("bad state after selling hotel: %+v", g.owners[med])
	}
}

func TestApply_mortgagedGroupBlocksBuilding(t *testing.T) {
	g := makeGame(t, "phil")
	med := propId(t, g, "Mediterranean Ave")
	bal := propId(t, g, "Baltic Ave")

	g.owners[med].Owner = 0
	g.owners[bal] = ownership{Owner: 0, Mortgaged: true}

	_, err := g.Apply(BuyHouse{Player: 0, Property: med})
	if !errors.Is(err, ErrInvalidBuildingState) {
		t.Errorf("want INVALIDBUILDINGSTATE, got %v", err)
	}
}

func TestApply_drawCard(t *testing.T) {
	g := makeGame(t, "phil")

	collect := -1
	for i, c := range g.chance {
		if c.Code == "collect:50" {
			collect = i
		}
	}
	if collect < 0 {
		t.Fatalf("no collect card in deck")
	}

	g.chancePile = CardStack{collect}

	_, err := g.Apply(DrawCard{Player: 0, Deck: DeckChance})
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if g.players[0].Cash != 1550 {
		t.Errorf("bad cash: %d", g.players[0].Cash)
	}
	// non-retained cards go back under the pile
	if len(g.chancePile) != 1 || g.chancePile[0] != collect {
		t.Errorf("card not returned: %v", g.chancePile)
	}
}

func TestApply_drawCardCannotPay(t *testing.T) {
	g := makeGame(t, "phil")

	pay := -1
	for i, c := range g.chest {
		if c.Code == "pay:100" {
			pay = i
		}
	}
	if pay < 0 {
		t.Fatalf("no pay card in deck")
	}
	g.chestPile = CardStack{pay}
	g.players[0].Cash = 10

	before := snapshot(t, g)

	_, err := g.Apply(DrawCard{Player: 0, Deck: DeckCommunityChest})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("want INSUFFICIENTFUNDS, got %v", err)
	}
	if !bytes.Equal(before, snapshot(t, g)) {
		t.Errorf("state changed on failed draw")
	}
}

func TestApply_drawOutOfJailRetained(t *testing.T) {
	g := makeGame(t, "phil")

	keep := -1
	for i, c := range g.chance {
		if c.Code == "outofjail" {
			keep = i
		}
	}
	g.chancePile = CardStack{keep}

	_, err := g.Apply(DrawCard{Player: 0, Deck: DeckChance})
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if len(g.players[0].JailCards) != 1 {
		t.Errorf("card not retained")
	}
	if len(g.chancePile) != 0 {
		t.Errorf("retained card still in pile: %v", g.chancePile)
	}

	// pile is empty now, so drawing is not possible
	_, err = g.Apply(DrawCard{Player: 0, Deck: DeckChance})
	if !errors.Is(err, ErrNotNow) {
		t.Errorf("want NOTNOW, got %v", err)
	}
}

func TestApply_bankruptcyToCreditor(t *testing.T) {
	g := makeGame(t, "phil", "bear")
	med := propId(t, g, "Mediterranean Ave")

	g.owners[med] = ownership{Owner: 0, Houses: 2}
	g.players[0].Cash = 75

	creditor := PlayerId(1)
	_, err := g.Apply(DeclareBankruptcy{Player: 0, Creditor: &creditor})
	if err != nil {
		t.Fatalf("bankruptcy: %v", err)
	}

	if g.players[0].Active {
		t.Errorf("still active")
	}
	if g.players[0].Cash != 0 {
		t.Errorf("cash left: %d", g.players[0].Cash)
	}
	// 75 cash plus two houses at half of 50 each
	if g.players[1].Cash != 1500+75+50 {
		t.Errorf("creditor cash: %d", g.players[1].Cash)
	}
	if g.owners[med].Owner != 1 || g.owners[med].Houses != 0 {
		t.Errorf("bad property state: %+v", g.owners[med])
	}

	// last player standing wins
	if g.GetGameState().Status != StatusWon {
		t.Errorf("game not won: %v", g.GetGameState().Status)
	}
	if g.GetGameState().Winner != "bear" {
		t.Errorf("bad winner: %v", g.GetGameState().Winner)
	}
}

func TestApply_lastPlayerCannotBankrupt(t *testing.T) {
	g := makeGame(t, "phil")

	_, err := g.Apply(DeclareBankruptcy{Player: 0})
	if !errors.Is(err, ErrNotNow) {
		t.Errorf("want NOTNOW, got %v", err)
	}
	if !g.players[0].Active {
		t.Errorf("player deactivated")
	}

	// the game is still playable, not parked on an inactive player
	if _, err := g.Apply(RollDice{Player: 0, Roll: RollResult{1, 2}}); err != nil {
		t.Fatalf("roll: %v", err)
	}
}

func TestApply_bankruptcyToBank(t *testing.T) {
	g := makeGame(t, "phil", "bear", "fox")
	med := propId(t, g, "Mediterranean Ave")

	g.owners[med] = ownership{Owner: 0, Mortgaged: true}

	_, err := g.Apply(DeclareBankruptcy{Player: 0})
	if err != nil {
		t.Fatalf("bankruptcy: %v", err)
	}

	if g.owners[med].Owner != NoPlayer || g.owners[med].Mortgaged {
		t.Errorf("property not reset: %+v", g.owners[med])
	}
	if g.GetGameState().Status == StatusWon {
		t.Errorf("game won with two players left")
	}

	// bankrupt players are done, but their id still resolves
	_, err = g.Apply(RollDice{Player: 0, Roll: RollResult{1, 2}})
	if !errors.Is(err, ErrPlayerInactive) {
		t.Errorf("want PLAYERINACTIVE, got %v", err)
	}
}
