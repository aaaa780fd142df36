package rpc

import (
	"context"
	"fmt"

	"github.com/cuemby/cairn/pkg/types"
)

// BlockStore is the local subset of blocks.Manager the peer RPC
// handler needs. Kept narrow so pkg/rpc does not import pkg/blocks.
type BlockStore interface {
	ReadBlock(hash types.Hash) ([]byte, error)
	WriteBlock(hash types.Hash, data []byte) error
	NeedBlock(hash types.Hash) (bool, error)
}

// Handler answers peer block RPCs against a local BlockStore.
type Handler struct {
	store BlockStore
}

// NewHandler wraps store as a PeerBlocksServer.
func NewHandler(store BlockStore) *Handler {
	return &Handler{store: store}
}

func (h *Handler) PutBlock(ctx context.Context, req *PutBlockRequest) (*PutBlockResponse, error) {
	if err := h.store.WriteBlock(req.Hash, req.Data); err != nil {
		return nil, fmt.Errorf("rpc: PutBlock %s: %w", req.Hash, err)
	}
	return &PutBlockResponse{}, nil
}

func (h *Handler) GetBlock(ctx context.Context, req *GetBlockRequest) (*GetBlockResponse, error) {
	data, err := h.store.ReadBlock(req.Hash)
	if err != nil {
		return nil, fmt.Errorf("rpc: GetBlock %s: %w", req.Hash, err)
	}
	return &GetBlockResponse{Data: data}, nil
}

func (h *Handler) NeedBlockQuery(ctx context.Context, req *NeedBlockQueryRequest) (*NeedBlockQueryResponse, error) {
	needed, err := h.store.NeedBlock(req.Hash)
	if err != nil {
		return nil, fmt.Errorf("rpc: NeedBlockQuery %s: %w", req.Hash, err)
	}
	return &NeedBlockQueryResponse{Needed: needed}, nil
}
