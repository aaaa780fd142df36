// Package web implements the virtual-hosted-style routing rules for
// mapping an incoming HTTP Host header to a bucket name: stripping the
// optional port from the authority (IPv6-bracket aware) and then
// stripping a configured root domain suffix from what remains.
package web
