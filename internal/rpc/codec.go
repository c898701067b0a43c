// Package rpc describes the Orbit gRPC service shared by the server and the
// client: message types, the service descriptor and the wire codec.
//
// Messages are plain Go structs. On the wire each message is carried as a
// google.protobuf.Struct, so the service needs no generated stubs while
// still speaking protobuf over gRPC.
package rpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// CodecName is the gRPC content-subtype used by Codec.
const CodecName = "orbit-struct"

// Codec converts message structs to and from protobuf Struct bytes using
// their JSON field names.
type Codec struct{}

func (Codec) Name() string { return CodecName }

func (Codec) Marshal(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}

	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("message %T is not an object: %w", v, err)
	}

	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return proto.Marshal(s)
}

func (Codec) Unmarshal(data []byte, v any) error {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}

	raw, err := json.Marshal(s.AsMap())
	if err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	return json.Unmarshal(raw, v)
}

// DialOptions returns the client options required to talk to the service.
func DialOptions() []grpc.DialOption {
	return []grpc.DialOption{grpc.WithDefaultCallOptions(grpc.ForceCodec(Codec{}))}
}

// ServerOptions returns the server options required to serve the service.
func ServerOptions() []grpc.ServerOption {
	return []grpc.ServerOption{grpc.ForceServerCodec(Codec{})}
}
