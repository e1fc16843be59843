// Package server hosts games and talks to clients over TCP and HTTP
// gateways. All game access goes through one core loop, so games never need
// their own locking.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/undeconstructed/landlord/comms"
	"github.com/undeconstructed/landlord/game"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Server hosts any number of games until the context ends.
type Server interface {
	Run(ctx context.Context) error
}

// NewServer makes a server listening on the given addresses, restoring any
// state-*.json saves in the working directory.
func NewServer(tcpAddr, webAddr string) Server {
	games := map[string]*oneGame{}

	files, err := os.ReadDir(".")
	if err != nil {
		log.Error().Err(err).Msg("not loading anything")
	} else {
		for _, f := range files {
			fname := f.Name()
			if !strings.HasPrefix(fname, "state-") || !strings.HasSuffix(fname, ".json") {
				continue
			}
			gameId := fname[6 : len(fname)-5]
			log := log.With().Str("game", gameId).Logger()

			file, err := os.Open(fname)
			if err != nil {
				log.Error().Err(err).Msg("cannot open state file")
				continue
			}

			g, err := game.NewFromSaved(game.StandardData(), file)
			file.Close()
			if err != nil {
				log.Error().Err(err).Msg("cannot restore state")
				continue
			}

			games[gameId] = newOneGame(gameId, g, log)
			log.Info().Msg("loaded state")
		}
	}

	return &server{
		tcpAddr: tcpAddr,
		webAddr: webAddr,
		games:   games,
		coreCh:  make(chan interface{}, 100),
	}
}

// oneGame is a hosted game plus everyone attached to it.
type oneGame struct {
	name    string
	game    game.Game
	players map[string]game.PlayerId
	clients map[string]clientBundle
	turn    *game.TurnState
	dirty   bool
	log     zerolog.Logger
}

func newOneGame(name string, g game.Game, log zerolog.Logger) *oneGame {
	og := &oneGame{
		name:    name,
		game:    g,
		players: map[string]game.PlayerId{},
		clients: map[string]clientBundle{},
		log:     log,
	}
	// rebuild the name index from the game itself
	for _, p := range g.GetGameState().Players {
		og.players[p.Name] = p.Id
	}
	return og
}

type server struct {
	tcpAddr string
	webAddr string
	games   map[string]*oneGame
	coreCh  chan interface{}
}

func (s *server) Run(ctx context.Context) error {
	log.Info().Msg("server running")
	defer log.Info().Msg("server stopping")

	grp, gctx := errgroup.WithContext(ctx)

	if err := runTcpGateway(gctx, s, s.tcpAddr); err != nil {
		return err
	}
	if err := runWebGateway(gctx, s, s.webAddr); err != nil {
		return err
	}

	grp.Go(func() error {
		return s.core(gctx)
	})

	return grp.Wait()
}

// core is the server's main loop; everything that touches a game goes
// through here.
func (s *server) core(ctx context.Context) error {
	for {
		var in interface{}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in = <-s.coreCh:
		}

		g, news := s.processMessage(in)

		if g != nil && g.dirty {
			s.saveGame(g)
			g.dirty = false
		}

		if g != nil && len(news) > 0 {
			update := comms.GameUpdate{News: news, State: g.game.GetGameState()}
			msg, err := comms.Encode("update", update)
			if err != nil {
				g.log.Error().Err(err).Msg("failed to encode update")
				continue
			}
			s.broadcast(g, msg, "")
		}

		if g != nil && g.turn != nil {
			s.notifyTurn(g)
		}
	}
}

// notifyTurn tells the player whose turn it is, if they are connected.
func (s *server) notifyTurn(g *oneGame) {
	c, ok := g.clients[g.turn.Player]
	if !ok {
		g.log.Info().Msgf("current player not connected: %s", g.turn.Player)
		g.turn = nil
		return
	}

	msg, err := comms.Encode("turn", g.turn)
	if err != nil {
		g.log.Error().Err(err).Msg("failed to encode turn")
		g.turn = nil
		return
	}

	if c.send(msg) {
		g.turn = nil
	} else {
		g.log.Info().Msgf("client lagging: %s", g.turn.Player)
	}
}

func (s *server) processMessage(in interface{}) (*oneGame, []game.Change) {
	switch msg := in.(type) {
	case listGamesMsg:
		list := []string{}
		for gameId := range s.games {
			list = append(list, gameId)
		}
		msg.Rep <- list
		return nil, nil
	case createGameMsg:
		log := log.With().Str("game", msg.Name).Logger()

		if _, exists := s.games[msg.Name]; exists {
			msg.Rep <- errors.New("name conflict")
			return nil, nil
		}

		g := newOneGame(msg.Name, game.NewStandardGame(), log)
		g.dirty = true
		s.games[msg.Name] = g

		log.Info().Msg("created")

		msg.Rep <- nil
		return g, nil
	case queryGameMsg:
		g, exists := s.games[msg.Name]
		if !exists {
			msg.Rep <- nil
			return nil, nil
		}

		msg.Rep <- g.game.GetGameState()
		return nil, nil
	case deleteGameMsg:
		g, exists := s.games[msg.Name]
		if !exists {
			msg.Rep <- nil
			return nil, nil
		}

		// XXX - doesn't disconnect anyone
		delete(s.games, msg.Name)
		s.wipeGame(g)

		log.Info().Msg("deleted")

		msg.Rep <- nil
		return nil, nil
	case connectMsg:
		g, ok := s.games[msg.Game]
		if !ok {
			msg.Rep <- errors.New("game not found")
			return nil, nil
		}

		g.clients[msg.Name] = msg.Client
		msg.Rep <- nil

		// if it's this player's turn, arrange for a turn message
		if turn := g.game.GetTurnState(); turn.Player == msg.Name {
			g.turn = &turn
		}

		return g, []game.Change{{Who: msg.Name, What: "connects"}}
	case disconnectMsg:
		g, ok := s.games[msg.Game]
		if !ok {
			return nil, nil
		}

		g.log.Info().Msgf("client gone: %s", msg.Name)

		delete(g.clients, msg.Name)
		return g, []game.Change{{Who: msg.Name, What: "disconnects"}}
	case textFromUser:
		g, ok := s.games[msg.Game]
		if !ok {
			return nil, nil
		}
		return g, []game.Change{{Who: msg.Who, What: "says " + msg.Text}}
	case requestFromUser:
		g, ok := s.games[msg.Game]
		if !ok {
			return nil, nil
		}

		news, turn := s.handleRequest(g, msg)
		if turn != nil {
			g.turn = turn
			g.dirty = true
		}

		return g, news
	default:
		log.Warn().Msgf("nonsense in core: %#v", in)
	}
	return nil, nil
}

// synchronous entry points for the gateways

func (s *server) Connect(game, name string, client clientBundle) error {
	resCh := make(chan error)
	s.coreCh <- connectMsg{game, name, client, resCh}
	return <-resCh
}

func (s *server) ListGames() []string {
	resCh := make(chan []string)
	s.coreCh <- listGamesMsg{resCh}
	return <-resCh
}

func (s *server) CreateGame(name string) error {
	resCh := make(chan error)
	s.coreCh <- createGameMsg{name, resCh}
	return <-resCh
}

func (s *server) QueryGame(name string) interface{} {
	resCh := make(chan interface{})
	s.coreCh <- queryGameMsg{name, resCh}
	return <-resCh
}

func (s *server) DeleteGame(name string) error {
	resCh := make(chan error)
	s.coreCh <- deleteGameMsg{name, resCh}
	return <-resCh
}

func (s *server) saveFileName(g *oneGame) string {
	return fmt.Sprintf("state-%s.json", g.name)
}

func (s *server) saveGame(g *oneGame) {
	outFile, err := os.Create(s.saveFileName(g))
	if err != nil {
		g.log.Error().Err(err).Msg("can't save")
		return
	}
	defer outFile.Close()

	if err := g.game.WriteOut(outFile); err != nil {
		g.log.Error().Err(err).Msg("can't save")
	}
}

func (s *server) wipeGame(g *oneGame) {
	err := os.Remove(s.saveFileName(g))
	if err != nil && !os.IsNotExist(err) {
		g.log.Error().Err(err).Msg("can't delete")
	}
}

func (s *server) handleRequest(g *oneGame, in requestFromUser) ([]game.Change, *game.TurnState) {
	f := s.parseRequest(g, in)
	res, news, turn := f()

	cres := responseToUser{ID: in.ID, Body: res}
	if c, ok := g.clients[in.Who]; ok {
		if !c.send(cres) {
			g.log.Info().Msgf("client lagging: %s", in.Who)
		}
	}

	return news, turn
}

type requestFunc func() (forUser interface{}, forEveryone []game.Change, forServer *game.TurnState)

func fail(err error) requestFunc {
	return func() (interface{}, []game.Change, *game.TurnState) {
		return comms.WrapError(err), nil, nil
	}
}

func (s *server) parseRequest(g *oneGame, in requestFromUser) requestFunc {
	f := in.Cmd
	if len(f) == 0 {
		return fail(errors.New("empty request"))
	}

	switch f[0] {
	case "join":
		return func() (interface{}, []game.Change, *game.TurnState) {
			id, err := g.game.AddPlayer(in.Who)
			if err != nil {
				return comms.JoinResult{Err: comms.WrapError(err)}, nil, nil
			}
			g.players[in.Who] = id
			g.dirty = true
			return comms.JoinResult{Id: id}, []game.Change{{Who: in.Who, What: "joins"}}, nil
		}
	case "start":
		return func() (interface{}, []game.Change, *game.TurnState) {
			turn, err := g.game.Start()
			if err != nil {
				return comms.StartResult{Err: comms.WrapError(err)}, nil, nil
			}
			g.dirty = true
			return comms.StartResult{Turn: turn}, []game.Change{{What: "the game starts"}}, &turn
		}
	case "query":
		return s.parseQuery(g, f[1:])
	case "play":
		action, err := game.DecodeAction(in.Body)
		if err != nil {
			return fail(fmt.Errorf("bad action: %w", err))
		}

		// players only act as themselves, and only after joining
		id, joined := g.players[in.Who]
		if sub := action.Subject(); !joined || (sub != game.NoPlayer && sub != id) {
			return fail(errors.New("action is not yours to play"))
		}

		return func() (interface{}, []game.Change, *game.TurnState) {
			res, err := g.game.Apply(action)
			if err != nil {
				return comms.PlayResult{Err: comms.WrapError(err)}, nil, nil
			}

			body, err := json.Marshal(res.Response)
			if err != nil {
				return comms.PlayResult{Err: comms.WrapError(err)}, nil, nil
			}

			return comms.PlayResult{Response: body, Next: res.Next}, res.News, &res.Next
		}
	default:
		return fail(fmt.Errorf("unknown request: %v", in.Cmd))
	}
}

func (s *server) parseQuery(g *oneGame, f []string) requestFunc {
	if len(f) == 0 {
		return fail(errors.New("empty query"))
	}

	switch f[0] {
	case "game":
		return func() (interface{}, []game.Change, *game.TurnState) {
			return g.game.GetGameState(), nil, nil
		}
	case "turn":
		return func() (interface{}, []game.Change, *game.TurnState) {
			return g.game.GetTurnState(), nil, nil
		}
	case "events":
		return func() (interface{}, []game.Change, *game.TurnState) {
			return g.game.Events(), nil, nil
		}
	case "property":
		if len(f) != 2 {
			return fail(errors.New("query property <id>"))
		}
		id, err := strconv.Atoi(f[1])
		if err != nil {
			return fail(fmt.Errorf("bad property id: %w", err))
		}
		return func() (interface{}, []game.Change, *game.TurnState) {
			ps, err := g.game.GetPropertyState(game.PropertyId(id))
			if err != nil {
				return comms.WrapError(err), nil, nil
			}
			return ps, nil, nil
		}
	default:
		return fail(fmt.Errorf("unknown query: %v", f))
	}
}

func (s *server) broadcast(g *oneGame, msg comms.Message, skip string) {
	for n, c := range g.clients {
		if n == skip {
			continue
		}
		if !c.send(msg) {
			g.log.Info().Msgf("client lagging: %s", n)
		}
	}
}
