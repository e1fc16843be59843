package server

// messages into the core loop

type listGamesMsg struct {
	Rep chan []string
}

type createGameMsg struct {
	Name string
	Rep  chan error
}

type queryGameMsg struct {
	Name string
	Rep  chan interface{}
}

type deleteGameMsg struct {
	Name string
	Rep  chan error
}

type connectMsg struct {
	Game   string
	Name   string
	Client clientBundle
	Rep    chan error
}

type disconnectMsg struct {
	Game string
	Name string
}

type textFromUser struct {
	Game string
	Who  string
	Text string
}

type requestFromUser struct {
	Game string
	Who  string
	ID   string
	Cmd  []string
	Body []byte
}

// messages out to clients

type responseToUser struct {
	ID   string
	Body interface{}
}

type toSend struct {
	mtype string
	data  interface{}
}

type clientBundle struct {
	downCh chan interface{}
}

func (c clientBundle) send(msg interface{}) bool {
	select {
	case c.downCh <- msg:
		return true
	default:
		return false
	}
}
