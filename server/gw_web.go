package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/undeconstructed/landlord/comms"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"
)

// WsJSONMessage is a comms message encapsulated in JSON, for websocket
// clients that can't speak gob.
type WsJSONMessage struct {
	Head string          `json:"head"`
	Data json.RawMessage `json:"data"`
}

func runWebGateway(ctx context.Context, server *server, addr string) error {
	log := log.With().Str("gw", "web").Logger()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	log.Info().Msgf("web listening on http://%v", ln.Addr())

	rh := restHandler{
		server: server,
		log:    log,
	}

	ch := commsHandler{
		server: server,
		log:    log,
	}

	r := gin.Default()
	a := r.Group("/api")
	a.GET("/games", rh.getGames)
	a.POST("/games", rh.makeGame)
	a.GET("/games/:id", rh.getGame)
	a.DELETE("/games/:id", rh.deleteGame)
	r.GET("/ws", ch.serveWS)

	s := &http.Server{
		Handler:      r,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
	}
	go func() {
		_ = s.Serve(ln)
	}()
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	return nil
}

type restHandler struct {
	server *server
	log    zerolog.Logger
}

func (rh *restHandler) getGames(c *gin.Context) {
	list := rh.server.ListGames()
	c.JSON(http.StatusOK, list)
}

func (rh *restHandler) makeGame(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		id = RandomString(8)
	}

	err := rh.server.CreateGame(id)
	if err != nil {
		rh.log.Error().Err(err).Msg("create game error")
		c.String(http.StatusInternalServerError, "error: %v", err)
		return
	}

	c.String(http.StatusOK, "ok: %s", id)
}

func (rh *restHandler) getGame(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.String(http.StatusBadRequest, "missing id")
		return
	}

	res := rh.server.QueryGame(id)
	if res == nil {
		c.JSON(http.StatusNotFound, nil)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (rh *restHandler) deleteGame(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.String(http.StatusBadRequest, "missing id")
		return
	}

	err := rh.server.DeleteGame(id)
	if err != nil {
		rh.log.Error().Err(err).Msg("delete game error")
		c.String(http.StatusInternalServerError, "error: %v", err)
		return
	}

	c.String(http.StatusOK, "ok: %s", id)
}

type commsHandler struct {
	server *server
	log    zerolog.Logger
}

func (ch *commsHandler) serveWS(c *gin.Context) {
	addr := c.Request.RemoteAddr

	log := ch.log.With().Str("client", addr).Logger()
	log.Info().Msgf("connecting")

	gameId := c.Query("game")
	name := c.Query("name")

	if gameId == "" || name == "" {
		c.String(http.StatusBadRequest, "missing params")
		return
	}

	server := ch.server

	socket, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		Subprotocols: []string{"comms"},
	})
	if err != nil {
		log.Info().Err(err).Msg("websocket accept error")
		return
	}
	defer socket.Close(websocket.StatusInternalError, "the sky is falling")

	if socket.Subprotocol() != "comms" {
		socket.Close(websocket.StatusPolicyViolation, "client must speak the comms subprotocol")
		return
	}

	downCh := make(chan interface{}, 100)

	err = server.Connect(gameId, name, clientBundle{downCh})
	if err != nil {
		log.Info().Msgf("refusing: %s", addr)
		msg, _ := comms.Encode("connected", comms.ConnectResponse{Err: comms.WrapError(err)})
		sendDownWs(socket, msg)
		socket.Close(websocket.StatusNormalClosure, "cannot connect")
		return
	}

	msg, _ := comms.Encode("connected", comms.ConnectResponse{GameID: gameId, PlayerID: name})
	sendDownWs(socket, msg)

	go func() {
		// read downCh, write to conn
		for down := range downCh {
			msg, err := encodeDown(down)
			if err != nil {
				log.Info().Err(err).Msg("encode error")
				break
			}
			err = sendDownWs(socket, msg)
			if err != nil {
				log.Info().Err(err).Msg("send error")
				break
			}
		}
	}()

	for {
		// read conn, despatch into server
		msg, err = readMessageWs(socket)
		if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
			server.coreCh <- disconnectMsg{gameId, name}
			return
		}
		if err != nil {
			log.Info().Err(err).Msgf("client read error: %v", addr)
			server.coreCh <- disconnectMsg{gameId, name}
			return
		}
		log.Info().Msgf("received: %s %s", msg.Head, string(msg.Data))

		f := msg.Head.Fields()
		switch f[0] {
		case "text":
			var text string
			err := comms.Decode(msg, &text)
			if err != nil {
				log.Info().Err(err).Msg("decode text error")
				return
			}
			server.coreCh <- textFromUser{gameId, name, text}
		case "request":
			if len(f) < 3 {
				log.Info().Msgf("short request head: %v", f)
				continue
			}
			id := f[1]
			rest := f[2:]
			server.coreCh <- requestFromUser{gameId, name, id, rest, msg.Data}
		default:
			log.Info().Msgf("junk from client: %v", f)
		}
	}
}

func sendDownWs(ws *websocket.Conn, msg comms.Message) error {
	w, err := ws.Writer(context.TODO(), websocket.MessageText)
	if err != nil {
		return err
	}
	defer w.Close()

	jmsg := WsJSONMessage{
		Head: string(msg.Head),
		Data: json.RawMessage(msg.Data),
	}

	tmsg, err := json.Marshal(jmsg)
	if err != nil {
		return err
	}

	_, err = w.Write(tmsg)
	if err != nil {
		return err
	}

	return w.Close()
}

func readMessageWs(c *websocket.Conn) (comms.Message, error) {
	typ, r, err := c.Reader(context.TODO())
	if err != nil {
		return comms.Message{}, err
	}

	if typ != websocket.MessageText {
		return comms.Message{}, fmt.Errorf("client sent a %v", typ)
	}

	// text type means fully encapsulated in JSON
	bytes, err := io.ReadAll(r)
	if err != nil {
		return comms.Message{}, err
	}
	msg := WsJSONMessage{}
	err = json.Unmarshal(bytes, &msg)
	if err != nil {
		return comms.Message{}, err
	}

	return comms.Message{Head: comms.Head(msg.Head), Data: msg.Data}, nil
}
