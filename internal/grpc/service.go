package grpc

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
)

// The query service runs without generated stubs: requests and responses
// are plain structs carried by a JSON codec, and the service descriptor
// below makes the handlers reachable over the wire.

const queryServiceName = "auctiond.Query"

// QueryServer is the wire-facing surface registered under queryServiceName.
type QueryServer interface {
	GetListing(ctx context.Context, req *GetListingRequest) (*GetListingResponse, error)
	IsEnded(ctx context.Context, req *IsEndedRequest) (*IsEndedResponse, error)
	GetServiceConfig(ctx context.Context) (*GetServiceConfigResponse, error)
	GetFeeTotal(ctx context.Context) (*GetFeeTotalResponse, error)
}

// GetServiceConfigRequest is the empty query payload.
type GetServiceConfigRequest struct{}

// GetFeeTotalRequest is the empty query payload.
type GetFeeTotalRequest struct{}

// jsonCodec marshals the hand-written request and response structs.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string { return "json" }

func queryGetListingHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetListingRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(QueryServer).GetListing(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + queryServiceName + "/GetListing"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(QueryServer).GetListing(ctx, req.(*GetListingRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func queryIsEndedHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(IsEndedRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(QueryServer).IsEnded(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + queryServiceName + "/IsEnded"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(QueryServer).IsEnded(ctx, req.(*IsEndedRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func queryGetServiceConfigHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetServiceConfigRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(QueryServer).GetServiceConfig(ctx)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + queryServiceName + "/GetServiceConfig"}
	handler := func(ctx context.Context, _ interface{}) (interface{}, error) {
		return srv.(QueryServer).GetServiceConfig(ctx)
	}
	return interceptor(ctx, in, info, handler)
}

func queryGetFeeTotalHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetFeeTotalRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(QueryServer).GetFeeTotal(ctx)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + queryServiceName + "/GetFeeTotal"}
	handler := func(ctx context.Context, _ interface{}) (interface{}, error) {
		return srv.(QueryServer).GetFeeTotal(ctx)
	}
	return interceptor(ctx, in, info, handler)
}

var queryServiceDesc = grpc.ServiceDesc{
	ServiceName: queryServiceName,
	HandlerType: (*QueryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetListing", Handler: queryGetListingHandler},
		{MethodName: "IsEnded", Handler: queryIsEndedHandler},
		{MethodName: "GetServiceConfig", Handler: queryGetServiceConfigHandler},
		{MethodName: "GetFeeTotal", Handler: queryGetFeeTotalHandler},
	},
	Streams: []grpc.StreamDesc{},
}
