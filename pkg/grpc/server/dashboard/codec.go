package dashboard

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// jsonCodec serializes the plain Go message types of this service.
// It replaces the protobuf based json codec of connect.
type jsonCodec struct{}

var _ connect.Codec = jsonCodec{}

func Codec() connect.Codec {
	return jsonCodec{}
}

func (jsonCodec) Name() string {
	return "json"
}

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}
