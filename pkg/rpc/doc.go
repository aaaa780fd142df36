// Package rpc carries the PutBlock/GetBlock/NeedBlockQuery calls that
// blocks.Manager's resync workers make against peer nodes, over
// google.golang.org/grpc. No protobuf code generation toolchain is
// available in this environment, so request and response messages are
// plain Go structs marshaled through a small JSON encoding.Codec
// registered under the "json" content-subtype, and the service
// descriptor that would normally come out of protoc-gen-go-grpc is
// hand-written following the same shape (MethodDesc handlers, a
// ServiceDesc, a generated-style client stub).
package rpc
