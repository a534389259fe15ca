package models

// APIResponse is the uniform envelope every Minted API endpoint wraps
// its payload in. Exactly one of Data and Error is expected to be set.
type APIResponse[T any] struct {
	Data  *T      `json:"data"`
	Error *string `json:"error"`
}

// MessagePair is the payload returned when a message is posted: the
// echoed user message and the generated assistant reply.
type MessagePair struct {
	Message  Message `json:"message"`
	Response Message `json:"response"`
}

// TitleResult is the payload of the title generation endpoint.
type TitleResult struct {
	Title string `json:"title"`
}
