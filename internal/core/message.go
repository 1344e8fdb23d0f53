package core

import "time"

// Message is the domain model for a chat message.
type Message struct {
	Room   string
	From   string
	Text   string
	SentAt time.Time
}
