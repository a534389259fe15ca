package services

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mintedhq/minted-go/auth"
	"github.com/mintedhq/minted-go/models"
)

// EventKind identifies which part of the chat state changed.
type EventKind int

const (
	// EventConversationsChanged fires when the conversation list or the
	// current selection changes.
	EventConversationsChanged EventKind = iota
	// EventMessagesChanged fires when the current message list changes.
	EventMessagesChanged
	// EventStateChanged fires when the waiting flag or the error message
	// changes.
	EventStateChanged
	// EventFocusInput asks the presentation layer to focus the input field.
	EventFocusInput
)

type Event struct {
	Kind EventKind
}

// ChatService holds the local view of conversations and the active
// conversation's messages, and coordinates every call to the remote API.
//
// It is single-writer: state is only mutated under the store mutex, and the
// mutex is released across network round trips the way the original UI
// yields its main thread during an await. Results of a round trip are
// re-checked against the current selection before they are applied.
//
// Listeners are invoked synchronously after a mutation completes and its
// lock is released; they may read the store but must not mutate it.
type ChatService struct {
	api      ConversationAPI
	auth     auth.Provider
	snapshot *SnapshotStore
	now      func() int64

	mu              sync.Mutex
	conversations   []models.Conversation
	current         *models.Conversation
	currentMessages []models.Message
	messageText     string
	waiting         bool
	lastError       string

	listenerMu sync.Mutex
	listeners  []func(Event)
}

// NewChatService wires the store to its collaborators. snapshot may be nil
// to disable local persistence.
func NewChatService(api ConversationAPI, provider auth.Provider, snapshot *SnapshotStore) *ChatService {
	return &ChatService{
		api:      api,
		auth:     provider,
		snapshot: snapshot,
		now:      NowMillis,
	}
}

// Subscribe registers a listener for state change events.
func (s *ChatService) Subscribe(fn func(Event)) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *ChatService) notify(kind EventKind) {
	s.listenerMu.Lock()
	listeners := make([]func(Event), len(s.listeners))
	copy(listeners, s.listeners)
	s.listenerMu.Unlock()

	for _, fn := range listeners {
		fn(Event{Kind: kind})
	}
}

// Conversations returns a copy of the conversation list in API order.
// Ordering for display is the presentation layer's concern.
func (s *ChatService) Conversations() []models.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Conversation, len(s.conversations))
	copy(out, s.conversations)
	return out
}

// CurrentConversation returns the selected conversation, or nil.
func (s *ChatService) CurrentConversation() *models.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	conv := *s.current
	return &conv
}

// CurrentMessages returns a copy of the active conversation's messages.
func (s *ChatService) CurrentMessages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.currentMessages))
	copy(out, s.currentMessages)
	return out
}

// MessageText returns the pending input buffer.
func (s *ChatService) MessageText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messageText
}

// SetMessageText replaces the pending input buffer.
func (s *ChatService) SetMessageText(text string) {
	s.mu.Lock()
	s.messageText = text
	s.mu.Unlock()
}

// IsWaitingForResponse reports whether a send is in flight.
func (s *ChatService) IsWaitingForResponse() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waiting
}

// LastError returns the last user-visible error message, or "".
func (s *ChatService) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Load initializes the store: restore the snapshot, then, if a session
// exists, refresh from the API and select the first conversation. Without a
// session the store stays empty and no error is surfaced.
func (s *ChatService) Load(ctx context.Context) error {
	if s.snapshot != nil {
		cached, err := s.snapshot.LoadConversations()
		if err != nil {
			log.Printf("Failed to load conversation snapshot: %v", err)
		} else if len(cached) > 0 {
			s.mu.Lock()
			s.conversations = cached
			s.mu.Unlock()
			s.notify(EventConversationsChanged)
		}
	}

	if !s.auth.Loaded() || s.auth.Session() == nil {
		return nil
	}

	conversations, err := s.api.ListConversations(ctx)
	if err != nil {
		log.Printf("Failed to load conversations: %v", err)
		return err
	}

	var first *models.Conversation
	s.mu.Lock()
	s.conversations = conversations
	if len(conversations) > 0 {
		conv := conversations[0]
		s.current = &conv
		first = &conv
	}
	s.saveSnapshotLocked()
	s.mu.Unlock()
	s.notify(EventConversationsChanged)

	if first != nil {
		return s.loadMessages(ctx, first.ID)
	}
	return nil
}

// loadMessages fetches a conversation's messages and applies them only if
// that conversation is still the current one when the fetch returns.
func (s *ChatService) loadMessages(ctx context.Context, conversationID string) error {
	messages, err := s.api.ListMessages(ctx, conversationID)
	if err != nil {
		log.Printf("Failed to load messages for conversation %s: %v", conversationID, err)
		return err
	}

	s.mu.Lock()
	if s.current != nil && s.current.ID == conversationID {
		s.currentMessages = messages
	}
	s.mu.Unlock()
	s.notify(EventMessagesChanged)
	return nil
}

// CreateNewConversation creates a conversation on the server, appends it to
// the list and selects it with an empty message list.
func (s *ChatService) CreateNewConversation(ctx context.Context) (models.Conversation, error) {
	conversation, err := s.api.CreateConversation(ctx, nil)
	if err != nil {
		log.Printf("Failed to create conversation: %v", err)
		return models.Conversation{}, err
	}

	s.mu.Lock()
	s.conversations = append(s.conversations, conversation)
	conv := conversation
	s.current = &conv
	s.currentMessages = nil
	s.saveSnapshotLocked()
	s.mu.Unlock()

	s.notify(EventConversationsChanged)
	s.notify(EventMessagesChanged)
	s.notify(EventFocusInput)
	return conversation, nil
}

// SwitchToConversation selects a conversation and fetches its messages. The
// prior message list is kept until the fetch succeeds.
func (s *ChatService) SwitchToConversation(ctx context.Context, conversation models.Conversation) error {
	s.mu.Lock()
	conv := conversation
	s.current = &conv
	s.mu.Unlock()
	s.notify(EventConversationsChanged)

	return s.loadMessages(ctx, conversation.ID)
}

// DeleteCurrentConversation deletes the selected conversation on the server,
// then removes it locally and selects the first remaining one. A failed
// delete leaves local state untouched.
func (s *ChatService) DeleteCurrentConversation(ctx context.Context) error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil
	}
	id := s.current.ID
	s.mu.Unlock()

	if err := s.api.DeleteConversation(ctx, id); err != nil {
		log.Printf("Failed to delete conversation %s: %v", id, err)
		return err
	}

	var next *models.Conversation
	s.mu.Lock()
	kept := s.conversations[:0]
	for _, conv := range s.conversations {
		if conv.ID != id {
			kept = append(kept, conv)
		}
	}
	s.conversations = kept
	if s.current != nil && s.current.ID == id {
		if len(s.conversations) > 0 {
			conv := s.conversations[0]
			s.current = &conv
			next = &conv
		} else {
			s.current = nil
		}
		s.currentMessages = nil
	}
	s.saveSnapshotLocked()
	s.mu.Unlock()

	s.notify(EventConversationsChanged)
	s.notify(EventMessagesChanged)

	if next != nil {
		return s.loadMessages(ctx, next.ID)
	}
	return nil
}

// RenameCurrentConversation renames the selected conversation on the server
// and patches the local list on success.
func (s *ChatService) RenameCurrentConversation(ctx context.Context, title string) error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil
	}
	id := s.current.ID
	s.mu.Unlock()

	updated, err := s.api.UpdateConversation(ctx, id, title)
	if err != nil {
		log.Printf("Failed to rename conversation %s: %v", id, err)
		return err
	}

	s.mu.Lock()
	for i := range s.conversations {
		if s.conversations[i].ID == updated.ID {
			s.conversations[i] = updated
		}
	}
	if s.current != nil && s.current.ID == updated.ID {
		conv := updated
		s.current = &conv
	}
	s.saveSnapshotLocked()
	s.mu.Unlock()

	s.notify(EventConversationsChanged)
	return nil
}

// SendMessage sends the input buffer to the current conversation, creating
// one first when none is selected. The user message is shown optimistically
// while the request is in flight and replaced by the server-confirmed pair
// on success, or rolled back with a user-visible error on failure.
func (s *ChatService) SendMessage(ctx context.Context) error {
	s.mu.Lock()
	text := strings.TrimSpace(s.messageText)
	if text == "" {
		s.mu.Unlock()
		return nil
	}
	hasConversation := s.current != nil
	s.mu.Unlock()

	if !hasConversation {
		conversation, err := s.api.CreateConversation(ctx, nil)
		if err != nil {
			log.Printf("Failed to create conversation for send: %v", err)
			s.mu.Lock()
			// The input buffer is kept so the user can retry.
			s.lastError = "Could not start a conversation. Please try again."
			s.mu.Unlock()
			s.notify(EventStateChanged)
			return err
		}
		s.mu.Lock()
		s.conversations = append(s.conversations, conversation)
		conv := conversation
		s.current = &conv
		s.currentMessages = nil
		s.saveSnapshotLocked()
		s.mu.Unlock()
		s.notify(EventConversationsChanged)
	}

	tempID := "pending-" + uuid.NewString()
	now := s.now()

	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil
	}
	conversationID := s.current.ID
	s.currentMessages = append(s.currentMessages, models.Message{
		ID:             tempID,
		Content:        text,
		IsFromUser:     true,
		ConversationID: conversationID,
		CreatedAt:      now,
		LastModified:   now,
	})
	s.waiting = true
	s.messageText = ""
	s.lastError = ""
	s.mu.Unlock()
	s.notify(EventMessagesChanged)
	s.notify(EventStateChanged)

	userMessage, reply, err := s.api.SendMessage(ctx, conversationID, text)

	s.mu.Lock()
	s.removeMessageLocked(tempID)
	s.waiting = false
	if err != nil {
		s.lastError = "Failed to send message. Please try again."
		s.mu.Unlock()
		s.notify(EventMessagesChanged)
		s.notify(EventStateChanged)
		log.Printf("Failed to send message to conversation %s: %v", conversationID, err)
		return err
	}

	firstExchange := false
	if s.current != nil && s.current.ID == conversationID {
		s.currentMessages = append(s.currentMessages, userMessage, reply)
		firstExchange = s.userMessageCountLocked() == 1
	}
	s.mu.Unlock()
	s.notify(EventMessagesChanged)
	s.notify(EventStateChanged)

	if firstExchange {
		// Title generation starts only after the send's success path is
		// done, and patches the conversation in place when it resolves.
		go s.generateTitle(conversationID, text)
	}
	return nil
}

func (s *ChatService) generateTitle(conversationID, content string) {
	conversation, err := s.api.GenerateTitle(context.Background(), conversationID, content)
	if err != nil {
		log.Printf("Failed to generate title for conversation %s: %v", conversationID, err)
		return
	}

	s.mu.Lock()
	for i := range s.conversations {
		if s.conversations[i].ID == conversation.ID {
			s.conversations[i] = conversation
		}
	}
	if s.current != nil && s.current.ID == conversation.ID {
		conv := conversation
		s.current = &conv
	}
	s.saveSnapshotLocked()
	s.mu.Unlock()
	s.notify(EventConversationsChanged)
}

func (s *ChatService) removeMessageLocked(id string) {
	kept := s.currentMessages[:0]
	for _, msg := range s.currentMessages {
		if msg.ID != id {
			kept = append(kept, msg)
		}
	}
	s.currentMessages = kept
}

func (s *ChatService) userMessageCountLocked() int {
	count := 0
	for _, msg := range s.currentMessages {
		if msg.IsFromUser {
			count++
		}
	}
	return count
}

func (s *ChatService) saveSnapshotLocked() {
	if s.snapshot == nil {
		return
	}
	if err := s.snapshot.SaveConversations(s.conversations); err != nil {
		log.Printf("Failed to save conversation snapshot: %v", err)
	}
}
