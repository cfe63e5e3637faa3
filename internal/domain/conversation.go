package domain

// Conversation is the ordered, append-only list of entries shown to the user.
// It is not safe for concurrent use; callers serialize access.
type Conversation struct {
	entries []ChatEntry
}

// NewConversation returns a conversation holding only the greeting entry.
func NewConversation(greeting ChatEntry) *Conversation {
	return &Conversation{entries: []ChatEntry{greeting}}
}

// Append adds an entry at the end of the conversation.
func (c *Conversation) Append(e ChatEntry) {
	c.entries = append(c.entries, e)
}

// Reset drops every entry and leaves only the given greeting.
func (c *Conversation) Reset(greeting ChatEntry) {
	c.entries = []ChatEntry{greeting}
}

// Entries returns a copy of the entries in display order.
func (c *Conversation) Entries() []ChatEntry {
	out := make([]ChatEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Conversation) Len() int {
	return len(c.entries)
}

// Last returns the most recent entry, if any.
func (c *Conversation) Last() (ChatEntry, bool) {
	if len(c.entries) == 0 {
		return ChatEntry{}, false
	}
	return c.entries[len(c.entries)-1], true
}
