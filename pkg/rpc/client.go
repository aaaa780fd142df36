package rpc

import (
	"context"
	"fmt"
	"sync"

	"github.com/cuemby/cairn/pkg/types"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client is a cached set of client connections to peer nodes, keyed by
// address. It implements blocks.Peer, dialing lazily and reusing the
// connection across calls to the same address.
type Client struct {
	mu    sync.Mutex
	conns map[string]*grpc.ClientConn
}

// NewClient returns an empty connection pool.
func NewClient() *Client {
	return &Client{conns: make(map[string]*grpc.ClientConn)}
}

// Close tears down every cached connection.
func (p *Client) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for addr, conn := range p.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("rpc: closing connection to %s: %w", addr, err)
		}
	}
	p.conns = make(map[string]*grpc.ClientConn)
	return firstErr
}

func (p *Client) clientFor(addr string) (PeerBlocksClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	conn, ok := p.conns[addr]
	if !ok {
		var err error
		conn, err = grpc.NewClient(addr,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
		)
		if err != nil {
			return nil, fmt.Errorf("rpc: dialing %s: %w", addr, err)
		}
		p.conns[addr] = conn
	}
	return NewPeerBlocksClient(conn), nil
}

// PutBlock implements blocks.Peer.
func (p *Client) PutBlock(ctx context.Context, addr string, hash types.Hash, data []byte) error {
	client, err := p.clientFor(addr)
	if err != nil {
		return err
	}
	_, err = client.PutBlock(ctx, &PutBlockRequest{Hash: hash, Data: data})
	if err != nil {
		return fmt.Errorf("rpc: PutBlock to %s: %w", addr, err)
	}
	return nil
}

// GetBlock implements blocks.Peer.
func (p *Client) GetBlock(ctx context.Context, addr string, hash types.Hash) ([]byte, error) {
	client, err := p.clientFor(addr)
	if err != nil {
		return nil, err
	}
	resp, err := client.GetBlock(ctx, &GetBlockRequest{Hash: hash})
	if err != nil {
		return nil, fmt.Errorf("rpc: GetBlock from %s: %w", addr, err)
	}
	return resp.Data, nil
}

// NeedBlockQuery implements blocks.Peer.
func (p *Client) NeedBlockQuery(ctx context.Context, addr string, hash types.Hash) (bool, error) {
	client, err := p.clientFor(addr)
	if err != nil {
		return false, err
	}
	resp, err := client.NeedBlockQuery(ctx, &NeedBlockQueryRequest{Hash: hash})
	if err != nil {
		return false, fmt.Errorf("rpc: NeedBlockQuery to %s: %w", addr, err)
	}
	return resp.Needed, nil
}
