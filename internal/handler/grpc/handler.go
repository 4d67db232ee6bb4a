package grpc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/TomasB/geolookup/internal/data"
	"github.com/TomasB/geolookup/internal/metrics"
	"github.com/TomasB/geolookup/pkg/geoip"
	"github.com/TomasB/geolookup/pkg/geoip/database"
)

// ServiceName is the fully qualified name of the lookup service.
const ServiceName = "geoip.v1.LookupService"

// methods maps each RPC to the lookup kind it serves.
var methods = []struct {
	name string
	kind database.Kind
}{
	{"Country", database.KindCountry},
	{"City", database.KindCity},
	{"Enterprise", database.KindEnterprise},
	{"AnonymousIP", database.KindAnonymousIP},
	{"AnonymousPlus", database.KindAnonymousPlus},
	{"ASN", database.KindASN},
	{"ConnectionType", database.KindConnectionType},
	{"Domain", database.KindDomain},
	{"ISP", database.KindISP},
}

// LookupServer is implemented by Handler. Every RPC takes the address as a
// google.protobuf.StringValue and returns the model as a google.protobuf.Struct.
type LookupServer interface {
	Lookup(ctx context.Context, kind database.Kind, ip string) (*structpb.Struct, error)
}

// ServiceDesc describes the lookup service for grpc.Server.RegisterService.
var ServiceDesc = newServiceDesc()

func newServiceDesc() gogrpc.ServiceDesc {
	desc := gogrpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*LookupServer)(nil),
		Metadata:    "geoip/v1/lookup.proto",
	}
	for _, m := range methods {
		desc.Methods = append(desc.Methods, gogrpc.MethodDesc{
			MethodName: m.name,
			Handler:    unaryHandler(m.name, m.kind),
		})
	}
	return desc
}

func unaryHandler(name string, kind database.Kind) gogrpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor gogrpc.UnaryServerInterceptor) (any, error) {
		in := new(wrapperspb.StringValue)
		if err := dec(in); err != nil {
			return nil, err
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return srv.(LookupServer).Lookup(ctx, kind, req.(*wrapperspb.StringValue).GetValue())
		}
		if interceptor == nil {
			return handler(ctx, in)
		}
		info := &gogrpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + ServiceName + "/" + name,
		}
		return interceptor(ctx, in, info, handler)
	}
}

// FullMethod returns the RPC path of the lookup of kind, or "" for an unknown kind.
func FullMethod(kind database.Kind) string {
	for _, m := range methods {
		if m.kind == kind {
			return "/" + ServiceName + "/" + m.name
		}
	}
	return ""
}

// Handler implements the gRPC LookupService.
type Handler struct {
	lookup  data.GeoLookup
	metrics *metrics.Metrics
}

// NewHandler creates a new gRPC handler with the given GeoLookup. m may be nil.
func NewHandler(lookup data.GeoLookup, m *metrics.Metrics) *Handler {
	return &Handler{lookup: lookup, metrics: m}
}

// Register adds the lookup service to s.
func (h *Handler) Register(s gogrpc.ServiceRegistrar) {
	s.RegisterService(&ServiceDesc, h)
}

// Lookup implements LookupServer.
func (h *Handler) Lookup(_ context.Context, kind database.Kind, ip string) (*structpb.Struct, error) {
	if ip == "" {
		return nil, status.Error(codes.InvalidArgument, "ip is required")
	}

	start := time.Now()
	model, err := h.lookup.Lookup(kind, ip)
	if h.metrics != nil {
		h.metrics.ObserveLookup("grpc", kind.String(), time.Since(start), err)
	}
	if err != nil {
		return nil, statusFor(kind, ip, err)
	}

	resp, err := structpb.NewStruct(model.ToMap())
	if err != nil {
		slog.Error("failed to encode lookup response", "kind", kind, "ip", ip, "error", err)
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return resp, nil
}

func statusFor(kind database.Kind, ip string, err error) error {
	var (
		notFound *geoip.AddressNotFoundError
		mismatch *geoip.DatabaseTypeError
	)
	switch {
	case errors.As(err, &notFound):
		msg := notFound.Error()
		if network := notFound.Network(); network.IsValid() {
			msg += " (network " + network.String() + ")"
		}
		return status.Error(codes.NotFound, msg)
	case errors.Is(err, geoip.ErrInvalidAddress), errors.Is(err, database.ErrUnknownKind):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.As(err, &mismatch):
		return status.Error(codes.FailedPrecondition, mismatch.Error())
	default:
		slog.Error("lookup failed", "kind", kind, "ip", ip, "error", err)
		return status.Error(codes.Internal, "lookup failed")
	}
}
