package rpc

import (
	"github.com/goccy/go-json"
	"google.golang.org/grpc/encoding"
)

// codecName matches the name grpc-go looks up by default ("proto"),
// so registering this codec makes it the transport's marshaler without
// any client/server dial option plumbing.
const codecName = "proto"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec lets plain Go structs serve as gRPC wire messages without a
// protoc-generated descriptor, using goccy/go-json as the marshaler.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return codecName
}
