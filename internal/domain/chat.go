package domain

import "time"

// ChatEntry is one line of the conversation: a user question, an assistant
// answer, or an error notice. Entries are never mutated after creation.
type ChatEntry struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	FromUser  bool      `json:"isFromUser"`
	IsError   bool      `json:"isError"`
	CreatedAt time.Time `json:"createdAt"`
	RowCount  *int      `json:"rowCount,omitempty"`
}
