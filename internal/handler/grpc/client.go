package grpc

import (
	"context"
	"fmt"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/TomasB/geolookup/pkg/geoip/database"
)

// Client calls the lookup service over a client connection.
type Client struct {
	cc gogrpc.ClientConnInterface
}

func NewClient(cc gogrpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Lookup calls the RPC serving kind for ip.
func (c *Client) Lookup(ctx context.Context, kind database.Kind, ip string, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	method := FullMethod(kind)
	if method == "" {
		return nil, fmt.Errorf("%w: %q", database.ErrUnknownKind, kind)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, wrapperspb.String(ip), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
