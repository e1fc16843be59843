package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/undeconstructed/landlord/client"
	"github.com/undeconstructed/landlord/game"
	"github.com/undeconstructed/landlord/server"

	"github.com/alecthomas/kong"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type CLI struct {
	Debug bool `help:"Enable debug logging." env:"LANDLORD_DEBUG"`

	Server ServerCmd `cmd:"" help:"Run a game server."`
	Client ClientCmd `cmd:"" help:"Connect to a game server."`
	Demo   DemoCmd   `cmd:"" help:"Play a local game between bots."`
}

type ServerCmd struct {
	TcpAddr string `help:"Address for the TCP gateway." default:"0.0.0.0:1234" env:"LANDLORD_TCP_ADDR"`
	WebAddr string `help:"Address for the web gateway." default:"0.0.0.0:1235" env:"LANDLORD_WEB_ADDR"`
}

func (c *ServerCmd) Run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	s := server.NewServer(c.TcpAddr, c.WebAddr)

	err := s.Run(ctx)
	log.Info().Err(err).Msg("server return")
	if err == context.Canceled {
		return nil
	}
	return err
}

type ClientCmd struct {
	Game   string `arg:"" help:"Game to connect to."`
	Name   string `arg:"" help:"Player name."`
	Server string `help:"Server address." default:"localhost:1234" env:"LANDLORD_SERVER"`
}

func (c *ClientCmd) Run() error {
	return client.NewClient(c.Game, c.Name, c.Server).Run()
}

type DemoCmd struct {
	Players int   `help:"Number of bots." default:"3"`
	Turns   int   `help:"Turn limit." default:"100"`
	Seed    int64 `help:"Dice seed, 0 for random." default:"0"`
}

func (c *DemoCmd) Run() error {
	if c.Players < 2 {
		return fmt.Errorf("need at least 2 players")
	}

	rng := rand.New(rand.NewSource(c.Seed))
	if c.Seed == 0 {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	d := &demo{
		game: game.NewStandardGame(),
		data: game.StandardData(),
		rng:  rng,
	}

	for i := 0; i < c.Players; i++ {
		name := fmt.Sprintf("bot%d", i+1)
		if _, err := d.game.AddPlayer(name); err != nil {
			return err
		}
	}
	if _, err := d.game.Start(); err != nil {
		return err
	}

	for turn := 0; turn < c.Turns; turn++ {
		state := d.game.GetGameState()
		if state.Status == game.StatusWon {
			log.Info().Msgf("%s wins", state.Winner)
			break
		}

		if err := d.playTurn(); err != nil {
			return err
		}
	}

	final := d.game.GetGameState()
	for _, p := range final.Players {
		log.Info().Msgf("%s: $%d, %d properties", p.Name, p.Cash, len(p.Owns))
	}
	log.Info().Msgf("%d events", len(d.game.Events()))

	return nil
}

// demo drives one local game with a simple bot policy: always move, settle
// every obligation, buy whatever it lands on if affordable, go bankrupt when
// it cannot pay.
type demo struct {
	game game.Game
	data game.GameData
	rng  *rand.Rand
}

func (d *demo) playTurn() error {
	ts := d.game.GetTurnState()
	if ts.Id == game.NoPlayer {
		return fmt.Errorf("no current player")
	}
	me := ts.Id

	roll := game.RollResult{Die1: d.rng.Intn(6) + 1, Die2: d.rng.Intn(6) + 1}
	res, err := d.apply(game.RollDice{Player: me, Roll: roll})
	if err != nil {
		return err
	}

	rr, _ := res.Response.(game.RollResponse)
	if rr.CanMove {
		res, err = d.apply(game.MoveForward{Player: me, Spaces: roll.Total()})
		if err != nil {
			return err
		}

		if err := d.settle(me, ts.Player); err != nil {
			return err
		}
		d.maybeBuy(me)
	}

	return nil
}

// settle clears this player's obligations, declaring bankruptcy if one
// cannot be paid.
func (d *demo) settle(me game.PlayerId, name string) error {
	for {
		must := d.myMust(name)
		if must == "" {
			return nil
		}

		var act game.Action
		var creditor *game.PlayerId

		parts := strings.Split(must, ":")
		switch parts[0] {
		case "paytaxes":
			n, _ := strconv.Atoi(parts[1])
			act = game.PayTaxes{Player: me, Amount: game.Money(n)}
		case "drawcard":
			act = game.DrawCard{Player: me, Deck: game.DeckType(parts[1])}
		case "payrent":
			prop, _ := strconv.Atoi(parts[1])
			amt, _ := strconv.Atoi(parts[2])
			ps, err := d.game.GetPropertyState(game.PropertyId(prop))
			if err != nil {
				return err
			}
			owner := ps.Owner
			creditor = &owner
			act = game.TransactWithPlayer{
				Payer: me, Payee: owner,
				Transaction: game.Transaction{
					Type:     game.TransactionPayRent,
					Property: game.PropertyId(prop),
					Cost:     game.Money(amt),
				},
			}
		default:
			log.Warn().Msgf("cannot settle: %s", must)
			return nil
		}

		_, err := d.apply(act)
		if err != nil {
			// broke: give everything up and be done with it
			log.Info().Msgf("%s cannot pay: %v", name, err)
			_, err = d.apply(game.DeclareBankruptcy{Player: me, Creditor: creditor})
			return err
		}
	}
}

// maybeBuy buys the square the player stands on, if it is for sale and the
// bot can keep some cash in hand.
func (d *demo) maybeBuy(me game.PlayerId) {
	state := d.game.GetGameState()
	var square int
	var cash game.Money
	for _, p := range state.Players {
		if p.Id == me {
			square, cash = p.Square, p.Cash
		}
	}

	propId := d.data.Squares[square].Property
	if propId < 0 {
		return
	}

	ps, err := d.game.GetPropertyState(propId)
	if err != nil || ps.Owner != game.NoPlayer {
		return
	}
	if cash < d.data.Properties[propId].Price+100 {
		return
	}

	d.apply(game.BuyProperty{Player: me, Property: propId})
}

func (d *demo) myMust(name string) string {
	for _, m := range d.game.GetTurnState().Must {
		if strings.HasPrefix(m, name+"/") {
			return strings.TrimPrefix(m, name+"/")
		}
	}
	return ""
}

func (d *demo) apply(a game.Action) (game.PlayResult, error) {
	res, err := d.game.Apply(a)
	if err != nil {
		return res, err
	}
	for _, n := range res.News {
		log.Info().Msgf("%s %s", n.Who, n.What)
	}
	return res, nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli)

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cli.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
