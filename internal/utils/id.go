package utils

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// NewID returns a best-effort unique identifier for a client.
func NewID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}

	// Fallback to timestamp if the random source is unavailable.
	return "c" + strconv.FormatInt(time.Now().UnixNano(), 10)
}
