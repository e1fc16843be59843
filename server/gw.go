package server

import (
	"fmt"

	"github.com/undeconstructed/landlord/comms"

	"github.com/rs/zerolog/log"
)

// encodeDown turns anything queued for a client into a wire message.
func encodeDown(down interface{}) (comms.Message, error) {
	switch msg := down.(type) {
	case comms.Message:
		// send preformatted message
		return msg, nil
	case responseToUser:
		// send response
		cmsg, err := comms.Encode("response:"+msg.ID, msg.Body)
		if err != nil {
			log.Warn().Err(err).Msg("encode error")
			return comms.Message{}, err
		}
		return cmsg, nil
	case toSend:
		// send anything
		cmsg, err := comms.Encode(msg.mtype, msg.data)
		if err != nil {
			log.Warn().Err(err).Msg("encode error")
			return comms.Message{}, err
		}
		return cmsg, nil
	default:
		log.Warn().Msgf("trying to send nonsense: %v", msg)
		return comms.Message{}, fmt.Errorf("cannot send: %#v", msg)
	}
}
