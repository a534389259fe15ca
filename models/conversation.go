package models

// Conversation is a chat thread as stored by the Minted API.
// Timestamps are epoch milliseconds assigned by the server.
type Conversation struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	CreatedAt    int64  `json:"createdAt"`
	LastModified int64  `json:"lastModified"`
}
