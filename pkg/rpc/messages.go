package rpc

import "github.com/cuemby/cairn/pkg/types"

// PutBlockRequest carries a block's raw bytes to a peer that should
// store it.
type PutBlockRequest struct {
	Hash types.Hash `json:"hash"`
	Data []byte     `json:"data"`
}

type PutBlockResponse struct{}

// GetBlockRequest asks a peer for a block's raw bytes.
type GetBlockRequest struct {
	Hash types.Hash `json:"hash"`
}

type GetBlockResponse struct {
	Data []byte `json:"data"`
}

// NeedBlockQueryRequest asks a peer whether it still needs a block,
// i.e. whether deleting the caller's own copy would leave the peer
// unable to satisfy a read.
type NeedBlockQueryRequest struct {
	Hash types.Hash `json:"hash"`
}

type NeedBlockQueryResponse struct {
	Needed bool `json:"needed"`
}
