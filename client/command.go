package client

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/undeconstructed/landlord/game"
)

// parseAction turns a REPL line into an action played as the given player.
// Dice are rolled locally unless given explicitly.
func parseAction(me game.PlayerId, cmd, rest string) (game.Action, error) {
	switch cmd {
	case "roll":
		if rest == "" {
			return game.RollDice{Player: me, Roll: game.RollResult{
				Die1: rand.Intn(6) + 1,
				Die2: rand.Intn(6) + 1,
			}}, nil
		}
		var d1, d2 int
		if _, err := fmt.Sscan(rest, &d1, &d2); err != nil {
			return nil, fmt.Errorf("roll [<die1> <die2>]")
		}
		return game.RollDice{Player: me, Roll: game.RollResult{Die1: d1, Die2: d2}}, nil
	case "move":
		n, err := strconv.Atoi(rest)
		if err != nil {
			return nil, fmt.Errorf("move <spaces>")
		}
		return game.MoveForward{Player: me, Spaces: n}, nil
	case "buy":
		id, err := propArg(rest)
		if err != nil {
			return nil, fmt.Errorf("buy <property>")
		}
		return game.BuyProperty{Player: me, Property: id}, nil
	case "sell":
		id, err := propArg(rest)
		if err != nil {
			return nil, fmt.Errorf("sell <property>")
		}
		return game.SellProperty{Player: me, Property: id}, nil
	case "house", "hotel":
		parts := strings.Fields(rest)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%s buy|sell <property>", cmd)
		}
		id, err := propArg(parts[1])
		if err != nil {
			return nil, fmt.Errorf("%s buy|sell <property>", cmd)
		}
		switch {
		case cmd == "house" && parts[0] == "buy":
			return game.BuyHouse{Player: me, Property: id}, nil
		case cmd == "house" && parts[0] == "sell":
			return game.SellHouse{Player: me, Property: id}, nil
		case cmd == "hotel" && parts[0] == "buy":
			return game.BuyHotel{Player: me, Property: id}, nil
		case cmd == "hotel" && parts[0] == "sell":
			return game.SellHotel{Player: me, Property: id}, nil
		}
		return nil, fmt.Errorf("%s buy|sell <property>", cmd)
	case "tax":
		n, err := strconv.Atoi(rest)
		if err != nil {
			return nil, fmt.Errorf("tax <amount>")
		}
		return game.PayTaxes{Player: me, Amount: game.Money(n)}, nil
	case "draw":
		switch rest {
		case "chance":
			return game.DrawCard{Player: me, Deck: game.DeckChance}, nil
		case "chest":
			return game.DrawCard{Player: me, Deck: game.DeckCommunityChest}, nil
		}
		return nil, fmt.Errorf("draw chance|chest")
	case "fine":
		return game.PayJailFine{Player: me}, nil
	case "mortgage":
		id, err := propArg(rest)
		if err != nil {
			return nil, fmt.Errorf("mortgage <property>")
		}
		return game.MortgageProperty{Player: me, Property: id}, nil
	case "unmortgage":
		id, err := propArg(rest)
		if err != nil {
			return nil, fmt.Errorf("unmortgage <property>")
		}
		return game.UnmortgageProperty{Player: me, Property: id}, nil
	case "auction":
		parts := strings.Fields(rest)
		if len(parts) < 2 {
			return nil, fmt.Errorf("auction <property> <player>:<amount> ...")
		}
		id, err := propArg(parts[0])
		if err != nil {
			return nil, fmt.Errorf("auction <property> <player>:<amount> ...")
		}
		var bids []game.Bid
		for _, b := range parts[1:] {
			bp := strings.Split(b, ":")
			if len(bp) != 2 {
				return nil, fmt.Errorf("bad bid: %s", b)
			}
			p, err1 := strconv.Atoi(bp[0])
			amt, err2 := strconv.Atoi(bp[1])
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("bad bid: %s", b)
			}
			bids = append(bids, game.Bid{Player: game.PlayerId(p), Amount: game.Money(amt)})
		}
		return game.AuctionProperty{Property: id, Bids: bids}, nil
	case "rent":
		var owner, prop, amt int
		if _, err := fmt.Sscan(rest, &owner, &prop, &amt); err != nil {
			return nil, fmt.Errorf("rent <owner> <property> <amount>")
		}
		return game.TransactWithPlayer{
			Payer: me, Payee: game.PlayerId(owner),
			Transaction: game.Transaction{
				Type:     game.TransactionPayRent,
				Property: game.PropertyId(prop),
				Cost:     game.Money(amt),
			},
		}, nil
	case "trade":
		parts := strings.Fields(rest)
		if len(parts) != 4 {
			return nil, fmt.Errorf("trade buy|sell <other> <property> <amount>")
		}
		other, err1 := strconv.Atoi(parts[1])
		prop, err2 := strconv.Atoi(parts[2])
		amt, err3 := strconv.Atoi(parts[3])
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, fmt.Errorf("trade buy|sell <other> <property> <amount>")
		}
		tx := game.Transaction{Property: game.PropertyId(prop), Cost: game.Money(amt)}
		switch parts[0] {
		case "buy":
			tx.Type = game.TransactionBuyProperty
			return game.TransactWithPlayer{Payer: me, Payee: game.PlayerId(other), Transaction: tx}, nil
		case "sell":
			tx.Type = game.TransactionSellProperty
			return game.TransactWithPlayer{Payer: me, Payee: game.PlayerId(other), Transaction: tx}, nil
		}
		return nil, fmt.Errorf("trade buy|sell <other> <property> <amount>")
	case "jailcard":
		var from, amt int
		if _, err := fmt.Sscan(rest, &from, &amt); err != nil {
			return nil, fmt.Errorf("jailcard <from> <amount>")
		}
		return game.TransactWithPlayer{
			Payer: me, Payee: game.PlayerId(from),
			Transaction: game.Transaction{
				Type: game.TransactionBuyJailCard,
				Cost: game.Money(amt),
			},
		}, nil
	case "bankrupt":
		if rest == "" {
			return game.DeclareBankruptcy{Player: me}, nil
		}
		n, err := strconv.Atoi(rest)
		if err != nil {
			return nil, fmt.Errorf("bankrupt [<creditor>]")
		}
		creditor := game.PlayerId(n)
		return game.DeclareBankruptcy{Player: me, Creditor: &creditor}, nil
	}
	return nil, fmt.Errorf("unknown action: %s", cmd)
}

func propArg(s string) (game.PropertyId, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return -1, err
	}
	return game.PropertyId(n), nil
}
