package models

// Message is a single chat message. IsFromUser distinguishes the
// user's messages from the assistant's.
type Message struct {
	ID             string `json:"id"`
	Content        string `json:"content"`
	IsFromUser     bool   `json:"isFromUser"`
	ConversationID string `json:"conversationId"`
	CreatedAt      int64  `json:"createdAt"`
	LastModified   int64  `json:"lastModified"`
}
