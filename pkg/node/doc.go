// Package node assembles a single node's storage stack: the block
// manager, version table, and replication policy, wiring the
// construction-order cycle between blocks.Manager and
// version.BlockRefTable through blocks.Manager.SetHandle once every
// collaborator exists.
package node
