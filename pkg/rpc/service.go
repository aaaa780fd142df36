package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "cairn.peer.PeerBlocks"

// PeerBlocksServer is implemented by the node-side handler that backs
// the peer block RPCs (see Handler in server.go).
type PeerBlocksServer interface {
	PutBlock(ctx context.Context, req *PutBlockRequest) (*PutBlockResponse, error)
	GetBlock(ctx context.Context, req *GetBlockRequest) (*GetBlockResponse, error)
	NeedBlockQuery(ctx context.Context, req *NeedBlockQueryRequest) (*NeedBlockQueryResponse, error)
}

func _PeerBlocks_PutBlock_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PutBlockRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PeerBlocksServer).PutBlock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/PutBlock"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PeerBlocksServer).PutBlock(ctx, req.(*PutBlockRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PeerBlocks_GetBlock_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetBlockRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PeerBlocksServer).GetBlock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/GetBlock"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PeerBlocksServer).GetBlock(ctx, req.(*GetBlockRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PeerBlocks_NeedBlockQuery_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(NeedBlockQueryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PeerBlocksServer).NeedBlockQuery(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/NeedBlockQuery"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PeerBlocksServer).NeedBlockQuery(ctx, req.(*NeedBlockQueryRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var peerBlocksServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*PeerBlocksServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "PutBlock", Handler: _PeerBlocks_PutBlock_Handler},
		{MethodName: "GetBlock", Handler: _PeerBlocks_GetBlock_Handler},
		{MethodName: "NeedBlockQuery", Handler: _PeerBlocks_NeedBlockQuery_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pkg/rpc/service.go",
}

// RegisterPeerBlocksServer registers srv's handlers on s.
func RegisterPeerBlocksServer(s *grpc.Server, srv PeerBlocksServer) {
	s.RegisterService(&peerBlocksServiceDesc, srv)
}

// PeerBlocksClient is the generated-style client stub for the peer
// block RPCs.
type PeerBlocksClient interface {
	PutBlock(ctx context.Context, in *PutBlockRequest, opts ...grpc.CallOption) (*PutBlockResponse, error)
	GetBlock(ctx context.Context, in *GetBlockRequest, opts ...grpc.CallOption) (*GetBlockResponse, error)
	NeedBlockQuery(ctx context.Context, in *NeedBlockQueryRequest, opts ...grpc.CallOption) (*NeedBlockQueryResponse, error)
}

type peerBlocksClient struct {
	cc grpc.ClientConnInterface
}

// NewPeerBlocksClient wraps an established connection as a PeerBlocksClient.
func NewPeerBlocksClient(cc grpc.ClientConnInterface) PeerBlocksClient {
	return &peerBlocksClient{cc: cc}
}

func (c *peerBlocksClient) PutBlock(ctx context.Context, in *PutBlockRequest, opts ...grpc.CallOption) (*PutBlockResponse, error) {
	out := new(PutBlockResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/PutBlock", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *peerBlocksClient) GetBlock(ctx context.Context, in *GetBlockRequest, opts ...grpc.CallOption) (*GetBlockResponse, error) {
	out := new(GetBlockResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/GetBlock", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *peerBlocksClient) NeedBlockQuery(ctx context.Context, in *NeedBlockQueryRequest, opts ...grpc.CallOption) (*NeedBlockQueryResponse, error) {
	out := new(NeedBlockQueryResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/NeedBlockQuery", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
