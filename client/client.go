// Package client is a terminal client speaking the comms protocol over TCP.
package client

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/undeconstructed/landlord/comms"
	"github.com/undeconstructed/landlord/game"

	rl "github.com/chzyer/readline"
)

type Client interface {
	Run() error
}

func NewClient(gameId, name, server string) Client {
	return &client{
		gameId:   gameId,
		name:     name,
		server:   server,
		locCh:    make(chan reqRep),
		updateCh: make(chan string),
		turn:     NewBox(),
		reqs:     map[string]reqRep{},
	}
}

type reqRep struct {
	cmd  string
	body interface{}
	rep  chan comms.Message
}

type client struct {
	gameId string
	name   string
	server string

	locCh  chan reqRep
	upCh   chan comms.Message
	downCh chan comms.Message

	turn *Box
	me   game.PlayerId

	// pending updates; written by the connection loop, drained by the UI
	updateCh chan string
	updateMu sync.Mutex
	updates  []string

	reqNo int
	reqs  map[string]reqRep
}

func (c *client) Run() error {
	conn, err := net.Dial("tcp", c.server)
	if err != nil {
		return err
	}
	defer conn.Close()

	dnStream := comms.NewDecoder(conn)
	upStream := comms.NewEncoder(conn)

	ccode := comms.EncodeConnectString(c.gameId, c.name)
	err = upStream.Encode("connect:"+ccode, nil)
	if err != nil {
		return err
	}

	msg1, err := dnStream.Decode()
	if err != nil {
		return err
	}
	res1 := comms.ConnectResponse{}
	if err := comms.Decode(msg1, &res1); err != nil {
		return err
	}
	if res1.Err != nil {
		return res1.Err.Unwrap()
	}

	c.me = game.NoPlayer

	c.upCh = make(chan comms.Message, 1)
	defer close(c.upCh)
	c.downCh = make(chan comms.Message, 1)

	go func() {
		// read upCh, write to conn
		for msg := range c.upCh {
			err := upStream.Send(msg)
			if err != nil {
				fmt.Printf("send error: %v\n", err)
				break
			}
		}
	}()

	go func() {
		defer close(c.downCh)

		// read conn, write to downCh
		for {
			msg, err := dnStream.Decode()
			if err != nil {
				if err != io.EOF {
					fmt.Printf("decode error: %v\n", err)
				}
				break
			}
			c.downCh <- msg
		}
	}()

	proxy := NewGameProxy(c)

	stopUI, err := c.startUI(proxy)
	if err != nil {
		return err
	}
	defer stopUI()

	// this is the client's main loop
loop:
	for {
		select {
		case rr, ok := <-c.locCh:
			if !ok {
				break loop
			}
			c.reqNo++
			id := fmt.Sprint(c.reqNo)
			c.reqs[id] = rr
			msg, err := comms.Encode("request:"+id+":"+rr.cmd, rr.body)
			if err != nil {
				delete(c.reqs, id)
				fmt.Printf("encode error: %v\n", err)
				continue
			}
			c.upCh <- msg
		case msg, ok := <-c.downCh:
			if !ok {
				fmt.Printf("down channel closed\n")
				break loop
			}
			c.handleDown(msg)
		}
	}

	return nil
}

func (c *client) handleDown(msg comms.Message) {
	f := msg.Head.Fields()
	switch f[0] {
	case "turn":
		turn := game.TurnState{}
		if err := comms.Decode(msg, &turn); err != nil {
			fmt.Printf("bad turn message: %v\n", err)
			return
		}
		c.turn.Put(&turn)
	case "update":
		update := comms.GameUpdate{}
		if err := comms.Decode(msg, &update); err != nil {
			fmt.Printf("bad update message: %v\n", err)
			return
		}
		for _, n := range update.News {
			text := n.Who + " " + n.What
			select {
			case c.updateCh <- text:
				// if ui is following
			default:
				c.updateMu.Lock()
				c.updates = append(c.updates, text)
				c.updateMu.Unlock()
			}
		}
	case "response":
		if len(f) < 2 {
			fmt.Printf("bad response head: %v\n", f)
			return
		}
		id := f[1]
		rr, ok := c.reqs[id]
		if !ok {
			return
		}
		delete(c.reqs, id)
		rr.rep <- msg
	default:
		fmt.Printf("junk from server: %v\n", f)
	}
}

// doRequest sends one request and decodes the matching response.
func (c *client) doRequest(cmd string, body, out interface{}) error {
	rr := reqRep{cmd: cmd, body: body, rep: make(chan comms.Message, 1)}
	c.locCh <- rr
	msg := <-rr.rep
	if out == nil {
		return nil
	}
	return comms.Decode(msg, out)
}

func (c *client) getTurn() *game.TurnState {
	t, _ := c.turn.Get().(*game.TurnState)
	return t
}

func (c *client) printUpdates() {
	c.updateMu.Lock()
	updates := c.updates
	c.updates = nil
	c.updateMu.Unlock()
	for _, u := range updates {
		fmt.Println(">", u)
	}
}

func (c *client) followUpdates() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	for {
		select {
		case m := <-c.updateCh:
			fmt.Println(">", m)
		case <-ctx.Done():
			return
		}
	}
}

func (c *client) startUI(g GameClient) (func() error, error) {
	completer := rl.NewPrefixCompleter(
		rl.PcItem("send"),
		rl.PcItem("follow"),
		rl.PcItem("join"),
		rl.PcItem("start"),
		rl.PcItem("state"),
		rl.PcItem("turn"),
		rl.PcItem("events"),
		rl.PcItem("prop"),
		rl.PcItem("do",
			rl.PcItem("roll"),
			rl.PcItem("move"),
			rl.PcItem("buy"),
			rl.PcItem("sell"),
			rl.PcItem("house"),
			rl.PcItem("hotel"),
			rl.PcItem("tax"),
			rl.PcItem("draw"),
			rl.PcItem("fine"),
			rl.PcItem("mortgage"),
			rl.PcItem("unmortgage"),
			rl.PcItem("auction"),
			rl.PcItem("rent"),
			rl.PcItem("trade"),
			rl.PcItem("jailcard"),
			rl.PcItem("bankrupt"),
		),
	)

	l, err := rl.NewEx(&rl.Config{
		Prompt:            "» ",
		HistoryFile:       "hist.txt",
		AutoComplete:      completer,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, err
	}

	go func() {
		defer l.Close()
		defer close(c.locCh)
		c.gameRepl(l, g)
	}()

	return l.Close, nil
}

func printTurn(state *game.TurnState) {
	fmt.Printf("Turn:   %d\n", state.Number)
	fmt.Printf("Player: %s\n", state.Player)
	fmt.Printf("Can:    %v\n", state.Can)
	fmt.Printf("Must:   %v\n", state.Must)
}

func printGame(state game.GameState) {
	fmt.Printf("Status:  %s\n", state.Status)
	if state.Winner != "" {
		fmt.Printf("Winner:  %s\n", state.Winner)
	} else {
		fmt.Printf("Playing: %s\n", state.Playing)
	}
	for _, p := range state.Players {
		active := ""
		if !p.Active {
			active = " (out)"
		}
		jail := ""
		if p.InJail {
			jail = " [jail]"
		}
		fmt.Printf("  %d %s%s%s: $%d at %d, owns %v\n",
			p.Id, p.Name, active, jail, p.Cash, p.Square, p.Owns)
	}
}

func printProperty(state game.PropertyState) {
	fmt.Printf("Property:  %d\n", state.Id)
	fmt.Printf("Owner:     %d\n", state.Owner)
	fmt.Printf("Mortgaged: %t\n", state.Mortgaged)
	fmt.Printf("Houses:    %d\n", state.Houses)
	fmt.Printf("Hotel:     %t\n", state.Hotel)
}

func (c *client) gameRepl(l *rl.Instance, g GameClient) {
	doPrompt := func() {
		state := c.getTurn()
		if state == nil {
			l.SetPrompt("» ")
			return
		}
		must := ""
		if len(state.Must) > 0 {
			must = " !"
		}
		if state.Player == c.name {
			l.SetPrompt(fmt.Sprintf("%d %s%s» ", state.Number, state.Player, must))
		} else {
			l.SetPrompt(fmt.Sprintf("%d » ", state.Number))
		}
	}

	for {
		doPrompt()
		c.printUpdates()

		line, err := l.Readline()
		if err == rl.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		}

		parts := strings.SplitN(strings.TrimSpace(line), " ", 2)
		cmd := parts[0]
		rest := ""
		if len(parts) == 2 {
			rest = parts[1]
		}

		switch cmd {
		case "send":
			msg, err := comms.Encode("text", rest)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			c.upCh <- msg
		case "follow":
			c.printUpdates()
			c.followUpdates()
		case "join":
			id, err := g.Join()
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			c.me = id
			fmt.Printf("Joined as player %d\n", id)
		case "start":
			turn, err := g.Start()
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			c.turn.Put(&turn)
		case "state":
			var state game.GameState
			if err := g.Query("game", &state); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			printGame(state)
		case "turn":
			var turn game.TurnState
			if err := g.Query("turn", &turn); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			printTurn(&turn)
		case "events":
			var events []game.Event
			if err := g.Query("events", &events); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			for _, e := range events {
				fmt.Printf("%4d %s\n", e.Seq, e.Action.Kind())
			}
		case "prop":
			var state game.PropertyState
			if err := g.Query("property:"+strings.TrimSpace(rest), &state); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			printProperty(state)
		case "do":
			if c.me == game.NoPlayer {
				fmt.Printf("join first\n")
				continue
			}
			ss := strings.SplitN(rest, " ", 2)
			args := ""
			if len(ss) > 1 {
				args = ss[1]
			}

			action, err := parseAction(c.me, ss[0], args)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}

			res, err := g.Play(action)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			if len(res) > 0 && string(res) != "null" {
				fmt.Printf("Result: %s\n", res)
			}
		case "":
			if t := c.getTurn(); t != nil {
				printTurn(t)
			}
		default:
			fmt.Printf("unknown\n")
		}
	}
}
