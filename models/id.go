package models

import (
	"strings"

	"github.com/google/uuid"
)

// NewID builds a prefixed short identifier like "p_3f9c01ab2d",
// matching the id format used throughout the database.
func NewID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "_" + raw[:10]
}
