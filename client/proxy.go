package client

import (
	"encoding/json"

	"github.com/undeconstructed/landlord/comms"
	"github.com/undeconstructed/landlord/game"
)

// GameClient is the typed face of the request/response protocol.
type GameClient interface {
	Join() (game.PlayerId, error)
	Start() (game.TurnState, error)
	Play(a game.Action) (json.RawMessage, error)
	Query(cmd string, resp interface{}) error
}

type gameProxy struct {
	client *client
}

func NewGameProxy(client *client) GameClient {
	return &gameProxy{client: client}
}

func (gp *gameProxy) Join() (game.PlayerId, error) {
	res := comms.JoinResult{}
	err := gp.client.doRequest("join", nil, &res)
	if err != nil {
		return game.NoPlayer, err
	}
	if res.Err != nil {
		return game.NoPlayer, res.Err.Unwrap()
	}
	return res.Id, nil
}

func (gp *gameProxy) Start() (game.TurnState, error) {
	res := comms.StartResult{}
	err := gp.client.doRequest("start", nil, &res)
	if err != nil {
		return game.TurnState{}, err
	}
	if res.Err != nil {
		return game.TurnState{}, res.Err.Unwrap()
	}
	return res.Turn, nil
}

func (gp *gameProxy) Play(a game.Action) (json.RawMessage, error) {
	body, err := game.EncodeAction(a)
	if err != nil {
		return nil, err
	}

	res := comms.PlayResult{}
	err = gp.client.doRequest("play", json.RawMessage(body), &res)
	if err != nil {
		return nil, err
	}
	if res.Err != nil {
		return nil, res.Err.Unwrap()
	}
	return res.Response, nil
}

func (gp *gameProxy) Query(cmd string, resp interface{}) error {
	return gp.client.doRequest("query:"+cmd, nil, resp)
}
