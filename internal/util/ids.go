package util

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// NewRequestID returns a time-sortable request id.
func NewRequestID() string {
	return ksuid.New().String()
}

// ReferenceGenerator issues snowflake references for records shown to users,
// such as contact message receipts.
type ReferenceGenerator struct {
	node *snowflake.Node
}

func NewReferenceGenerator(nodeID int64) (*ReferenceGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	return &ReferenceGenerator{node: node}, nil
}

func (g *ReferenceGenerator) Next() string {
	return g.node.Generate().String()
}
