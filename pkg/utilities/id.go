package utilities

import (
	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// NewUserID generates a globally unique, sortable KSUID string for user records.
func NewUserID() string {
	return ksuid.New().String()
}

// NewNotificationID generates a snowflake ID string for notification records.
// If the node cannot be initialized it falls back to a KSUID so a unique ID
// is always returned.
func NewNotificationID() string {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return ksuid.New().String()
	}
	return node.Generate().String()
}
