package id

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// New generates a time-ordered unique ID and returns its string form, which
// is what transcript records carry. The node is initialised lazily; a
// single-process CLI is always node 0.
func New() string {
	once.Do(func() {
		node, _ = snowflake.NewNode(0)
	})
	return node.Generate().String()
}
