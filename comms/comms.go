// Package comms is the wire protocol between server and clients. A message
// is a head string plus a JSON body; the head carries routing information in
// colon-separated fields, so the body needn't be decoded to route it.
package comms

import (
	"encoding/base64"
	"encoding/gob"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// Head is the routing part of a message, e.g. "request:123:play".
type Head string

func (h Head) Fields() []string {
	return strings.Split(string(h), ":")
}

// Message is one unit on the wire. Data is the JSON-encoded body.
type Message struct {
	Head Head
	Data []byte
}

// Type is the first field of the head.
func (m Message) Type() string {
	return m.Head.Fields()[0]
}

// Encode makes a message from a head and any JSON-encodable body.
func Encode(head string, body interface{}) (Message, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return Message{}, err
	}
	return Message{Head: Head(head), Data: data}, nil
}

// Decode unmarshals a message body.
func Decode(m Message, v interface{}) error {
	return json.Unmarshal(m.Data, v)
}

// wireMessage is the gob framing; exported fields only.
type wireMessage struct {
	Head string
	Data []byte
}

// Encoder writes messages onto a stream.
type Encoder struct {
	enc *gob.Encoder
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{enc: gob.NewEncoder(w)}
}

// Encode sends a head and body in one go.
func (e *Encoder) Encode(head string, body interface{}) error {
	msg, err := Encode(head, body)
	if err != nil {
		return err
	}
	return e.Send(msg)
}

// Send sends an already-formed message.
func (e *Encoder) Send(m Message) error {
	return e.enc.Encode(wireMessage{Head: string(m.Head), Data: m.Data})
}

// Decoder reads messages off a stream.
type Decoder struct {
	dec *gob.Decoder
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: gob.NewDecoder(r)}
}

func (d *Decoder) Decode() (Message, error) {
	var wm wireMessage
	if err := d.dec.Decode(&wm); err != nil {
		return Message{}, err
	}
	return Message{Head: Head(wm.Head), Data: wm.Data}, nil
}

// EncodeConnectString packs a game id and player name into the opaque code
// sent as the first message on a connection.
func EncodeConnectString(gameId, playerId string) string {
	s := gameId + "//" + playerId
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func DecodeConnectString(code string) (gameId, playerId string, err error) {
	s, err := base64.StdEncoding.DecodeString(code)
	if err != nil {
		return "", "", errors.New("bad code")
	}
	ss := strings.Split(string(s), "//")
	if len(ss) != 2 {
		return "", "", errors.New("bad code")
	}
	return ss[0], ss[1], nil
}
