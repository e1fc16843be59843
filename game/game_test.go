package game

import (
	"bytes"
	"errors"
	"testing"
)

func TestAddPlayer(t *testing.T) {
	g := NewStandardGame()

	id1, err := g.AddPlayer("phil")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	id2, err := g.AddPlayer("bear")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if id1 != 0 || id2 != 1 {
		t.Errorf("bad ids: %d %d", id1, id2)
	}

	_, err = g.AddPlayer("phil")
	if !errors.Is(err, ErrPlayerExists) {
		t.Errorf("want PLAYEREXISTS, got %v", err)
	}

	gs := g.GetGameState()
	if gs.Status != StatusCollecting {
		t.Errorf("bad status: %v", gs.Status)
	}
	if gs.Players[0].Cash != 1500 {
		t.Errorf("bad starting cash: %d", gs.Players[0].Cash)
	}
}

func TestStart(t *testing.T) {
	g := NewStandardGame()

	_, err := g.Start()
	if !errors.Is(err, ErrNoPlayers) {
		t.Errorf("want NOPLAYERS, got %v", err)
	}

	g.AddPlayer("phil")

	ts, err := g.Start()
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if ts.Player != "phil" || ts.Number != 1 {
		t.Errorf("bad first turn: %+v", ts)
	}

	_, err = g.Start()
	if !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("want ALREADYSTARTED, got %v", err)
	}

	_, err = g.AddPlayer("bear")
	if !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("join after start: want ALREADYSTARTED, got %v", err)
	}

	if g.GetGameState().Status != StatusPlaying {
		t.Errorf("bad status: %v", g.GetGameState().Status)
	}
}

func TestTurnRotation(t *testing.T) {
	g := makeGame(t, "phil", "bear")

	if _, err := g.Apply(RollDice{Player: 0, Roll: RollResult{3, 4}}); err != nil {
		t.Fatalf("roll: %v", err)
	}

	// only one roll per turn
	_, err := g.Apply(RollDice{Player: 0, Roll: RollResult{1, 1}})
	if !errors.Is(err, ErrNotNow) {
		t.Errorf("second roll: want NOTNOW, got %v", err)
	}

	res, err := g.Apply(MoveForward{Player: 0, Spaces: 7})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if res.Next.Id != 1 || res.Next.Number != 2 {
		t.Errorf("turn did not pass: %+v", res.Next)
	}

	// doubles earn another roll
	if _, err := g.Apply(RollDice{Player: 1, Roll: RollResult{2, 2}}); err != nil {
		t.Fatalf("roll: %v", err)
	}
	res, err = g.Apply(MoveForward{Player: 1, Spaces: 4})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if res.Next.Id != 1 {
		t.Errorf("turn passed despite doubles: %+v", res.Next)
	}
	if !stringListContains(res.Next.Can, "rolldice") {
		t.Errorf("cannot roll again: %v", res.Next.Can)
	}

	// the extra roll not being doubles ends the turn on the move
	if _, err := g.Apply(RollDice{Player: 1, Roll: RollResult{1, 2}}); err != nil {
		t.Fatalf("roll: %v", err)
	}
	res, err = g.Apply(MoveForward{Player: 1, Spaces: 3})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if res.Next.Id != 0 {
		t.Errorf("turn did not pass back: %+v", res.Next)
	}
}

func TestMoveNeedsRoll(t *testing.T) {
	g := makeGame(t, "phil", "bear")

	_, err := g.Apply(MoveForward{Player: 1, Spaces: 39})
	if !errors.Is(err, ErrNotPlayersTurn) {
		t.Errorf("off-turn move: want NOTPLAYERSTURN, got %v", err)
	}

	// full laps without rolling must not mint salary
	for i := 0; i < 3; i++ {
		_, err = g.Apply(MoveForward{Player: 0, Spaces: 39})
		if !errors.Is(err, ErrNotNow) {
			t.Errorf("move before rolling: want NOTNOW, got %v", err)
		}
	}
	if g.players[0].Cash != 1500 || g.players[1].Cash != 1500 {
		t.Errorf("salary without rolling: %d %d", g.players[0].Cash, g.players[1].Cash)
	}
	if g.players[0].OnSquare != 0 {
		t.Errorf("moved without rolling: %d", g.players[0].OnSquare)
	}

	// one move per roll, even on doubles
	if _, err := g.Apply(RollDice{Player: 0, Roll: RollResult{2, 2}}); err != nil {
		t.Fatalf("roll: %v", err)
	}
	if _, err := g.Apply(MoveForward{Player: 0, Spaces: 4}); err != nil {
		t.Fatalf("move: %v", err)
	}
	_, err = g.Apply(MoveForward{Player: 0, Spaces: 4})
	if !errors.Is(err, ErrNotNow) {
		t.Errorf("second move: want NOTNOW, got %v", err)
	}
}

func TestThreeDoublesToJail(t *testing.T) {
	g := makeGame(t, "phil", "bear")

	for i := 0; i < 2; i++ {
		if _, err := g.Apply(RollDice{Player: 0, Roll: RollResult{2, 2}}); err != nil {
			t.Fatalf("roll %d: %v", i, err)
		}
		if _, err := g.Apply(MoveForward{Player: 0, Spaces: 4}); err != nil {
			t.Fatalf("move %d: %v", i, err)
		}
	}

	res, err := g.Apply(RollDice{Player: 0, Roll: RollResult{2, 2}})
	if err != nil {
		t.Fatalf("third roll: %v", err)
	}
	roll := res.Response.(RollResponse)
	if roll.CanMove {
		t.Errorf("allowed to move after third double")
	}
	if !g.players[0].InJail {
		t.Errorf("not in jail")
	}
	if res.Next.Id != 1 {
		t.Errorf("turn did not pass: %+v", res.Next)
	}
}

func TestJailRolls(t *testing.T) {
	g := makeGame(t, "phil", "bear")

	g.players[0].InJail = true
	g.players[0].OnSquare = g.jailSquare()

	// no doubles: stay in, turn over
	res, err := g.Apply(RollDice{Player: 0, Roll: RollResult{1, 2}})
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if res.Response.(RollResponse).CanMove {
		t.Errorf("allowed to move from jail")
	}
	if !g.players[0].InJail {
		t.Errorf("left jail without doubles")
	}
	if res.Next.Id != 1 {
		t.Errorf("turn did not pass: %+v", res.Next)
	}

	g2 := makeGame(t, "phil", "bear")
	g2.players[0].InJail = true
	g2.players[0].OnSquare = g2.jailSquare()

	// doubles: walk free and move
	res, err = g2.Apply(RollDice{Player: 0, Roll: RollResult{3, 3}})
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if !res.Response.(RollResponse).CanMove {
		t.Errorf("not allowed to move")
	}
	if g2.players[0].InJail {
		t.Errorf("still in jail after doubles")
	}
}

func TestMustHints(t *testing.T) {
	g := makeGame(t, "phil", "bear")

	// rolling a 4 from go lands on income tax
	if _, err := g.Apply(RollDice{Player: 0, Roll: RollResult{1, 3}}); err != nil {
		t.Fatalf("roll: %v", err)
	}
	res, err := g.Apply(MoveForward{Player: 0, Spaces: 4})
	if err != nil {
		t.Fatalf("move: %v", err)
	}

	// the obligation survives the turn passing
	if res.Next.Id != 1 {
		t.Errorf("turn did not pass: %+v", res.Next)
	}
	if !stringListContains(res.Next.Must, "phil/paytaxes:200") {
		t.Errorf("no tax hint: %v", res.Next.Must)
	}

	res, err = g.Apply(PayTaxes{Player: 0, Amount: 200})
	if err != nil {
		t.Fatalf("taxes: %v", err)
	}
	if stringListContains(res.Next.Must, "phil/paytaxes:200") {
		t.Errorf("hint not cleared: %v", res.Next.Must)
	}
}

func TestRentHint(t *testing.T) {
	g := makeGame(t, "phil", "bear")
	med := propId(t, g, "Mediterranean Ave")

	g.owners[med].Owner = 1

	if _, err := g.Apply(RollDice{Player: 0, Roll: RollResult{1, 1}}); err != nil {
		t.Fatalf("roll: %v", err)
	}
	res, err := g.Apply(MoveForward{Player: 0, Spaces: 1})
	if err != nil {
		t.Fatalf("move: %v", err)
	}

	// base rent of 2, doubled by the brown monopoly? no, bear only owns one
	if !stringListContains(res.Next.Must, "phil/payrent:0:2") {
		t.Errorf("no rent hint: %v", res.Next.Must)
	}

	res, err = g.Apply(TransactWithPlayer{
		Payer: 0, Payee: 1,
		Transaction: Transaction{Type: TransactionPayRent, Property: med, Cost: 2},
	})
	if err != nil {
		t.Fatalf("rent: %v", err)
	}
	if stringListContains(res.Next.Must, "phil/payrent:0:2") {
		t.Errorf("hint not cleared: %v", res.Next.Must)
	}
}

func TestSaveRestore(t *testing.T) {
	g := makeGame(t, "phil", "bear")
	med := propId(t, g, "Mediterranean Ave")

	g.players[0].OnSquare = g.props[med].Square
	if _, err := g.Apply(BuyProperty{Player: 0, Property: med}); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := g.Apply(RollDice{Player: 0, Roll: RollResult{3, 4}}); err != nil {
		t.Fatalf("roll: %v", err)
	}

	var buf bytes.Buffer
	if err := g.WriteOut(&buf); err != nil {
		t.Fatalf("write out: %v", err)
	}

	g2i, err := NewFromSaved(StandardData(), &buf)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	g2 := g2i.(*game)

	if !bytes.Equal(snapshot(t, g), snapshot(t, g2)) {
		t.Errorf("round trip not faithful")
	}
	if len(g2.Events()) != 2 {
		t.Errorf("events lost: %d", len(g2.Events()))
	}
	if g2.owners[med].Owner != 0 {
		t.Errorf("ownership lost")
	}

	// the restored game plays on
	res, err := g2.Apply(MoveForward{Player: 0, Spaces: 7})
	if err != nil {
		t.Fatalf("move after restore: %v", err)
	}
	if res.Next.Id != 1 {
		t.Errorf("turn did not pass: %+v", res.Next)
	}
}

func TestGetTurnStateNoPlayers(t *testing.T) {
	g := NewStandardGame()

	ts := g.GetTurnState()
	if ts.Number != -1 || ts.Id != NoPlayer {
		t.Errorf("bad empty turn state: %+v", ts)
	}
}

func TestEventsIsACopy(t *testing.T) {
	g := makeGame(t, "phil")

	if _, err := g.Apply(RollDice{Player: 0, Roll: RollResult{1, 2}}); err != nil {
		t.Fatalf("roll: %v", err)
	}

	ev := g.Events()
	ev[0] = Event{}
	if g.Events()[0].Action == nil {
		t.Errorf("internal log was writable")
	}
}
