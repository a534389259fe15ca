package controllers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mintedhq/minted-go/auth"
	"github.com/mintedhq/minted-go/controllers"
	"github.com/mintedhq/minted-go/models"
	"github.com/mintedhq/minted-go/routes"
	"github.com/mintedhq/minted-go/services"
)

type fixedSession struct{ token string }

func (s fixedSession) Token(ctx context.Context) (string, error) { return s.token, nil }

type fixedProvider struct {
	token     string
	signedOut bool
}

func (p *fixedProvider) Loaded() bool { return true }

func (p *fixedProvider) Session() auth.Session {
	if p.signedOut || p.token == "" {
		return nil
	}
	return fixedSession{token: p.token}
}

func (p *fixedProvider) SignOut() error {
	p.signedOut = true
	return nil
}

// memoryAPI serves conversations and messages from memory. An unauthorized
// flag makes every call fail the way an expired session would.
type memoryAPI struct {
	mu            sync.Mutex
	conversations []models.Conversation
	messages      map[string][]models.Message
	nextID        int
	unauthorized  bool
}

var _ services.ConversationAPI = (*memoryAPI)(nil)

func newMemoryAPI(conversations ...models.Conversation) *memoryAPI {
	return &memoryAPI{
		conversations: conversations,
		messages:      map[string][]models.Message{},
	}
}

func (m *memoryAPI) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unauthorized {
		return nil, services.ErrUnauthorized
	}
	out := make([]models.Conversation, len(m.conversations))
	copy(out, m.conversations)
	return out, nil
}

func (m *memoryAPI) CreateConversation(ctx context.Context, title *string) (models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unauthorized {
		return models.Conversation{}, services.ErrUnauthorized
	}
	m.nextID++
	name := "New Chat"
	if title != nil {
		name = *title
	}
	conv := models.Conversation{
		ID:           fmt.Sprintf("conv-%d", m.nextID),
		Title:        name,
		CreatedAt:    int64(m.nextID),
		LastModified: int64(m.nextID),
	}
	m.conversations = append(m.conversations, conv)
	return conv, nil
}

func (m *memoryAPI) UpdateConversation(ctx context.Context, id, title string) (models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unauthorized {
		return models.Conversation{}, services.ErrUnauthorized
	}
	for i := range m.conversations {
		if m.conversations[i].ID == id {
			m.conversations[i].Title = title
			return m.conversations[i], nil
		}
	}
	return models.Conversation{}, &services.ServerError{Code: http.StatusNotFound, Detail: "not found"}
}

func (m *memoryAPI) DeleteConversation(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unauthorized {
		return services.ErrUnauthorized
	}
	kept := m.conversations[:0]
	for _, conv := range m.conversations {
		if conv.ID != id {
			kept = append(kept, conv)
		}
	}
	m.conversations = kept
	return nil
}

func (m *memoryAPI) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unauthorized {
		return nil, services.ErrUnauthorized
	}
	out := make([]models.Message, len(m.messages[conversationID]))
	copy(out, m.messages[conversationID])
	return out, nil
}

func (m *memoryAPI) CreateMessage(ctx context.Context, conversationID, content string) (models.Message, models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unauthorized {
		return models.Message{}, models.Message{}, services.ErrUnauthorized
	}
	m.nextID++
	user := models.Message{
		ID:             fmt.Sprintf("msg-%d", m.nextID),
		Content:        content,
		IsFromUser:     true,
		ConversationID: conversationID,
	}
	m.nextID++
	reply := models.Message{
		ID:             fmt.Sprintf("msg-%d", m.nextID),
		Content:        "echo: " + content,
		ConversationID: conversationID,
	}
	m.messages[conversationID] = append(m.messages[conversationID], user, reply)
	return user, reply, nil
}

func (m *memoryAPI) SendMessage(ctx context.Context, conversationID, content string) (models.Message, models.Message, error) {
	return m.CreateMessage(ctx, conversationID, content)
}

func (m *memoryAPI) GenerateTitle(ctx context.Context, conversationID, content string) (models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, conv := range m.conversations {
		if conv.ID == conversationID {
			return conv, nil
		}
	}
	return models.Conversation{}, &services.ServerError{Code: http.StatusNotFound, Detail: "conversation not found"}
}

func setupRouter(t *testing.T, api services.ConversationAPI, provider auth.Provider, load bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := services.NewChatService(api, provider, nil)
	if load {
		if err := store.Load(context.Background()); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	}
	return routes.SetupRouter(controllers.NewChatController(store, provider), "")
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	router := setupRouter(t, newMemoryAPI(), &fixedProvider{token: "test-token"}, false)

	w := doJSON(t, router, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestGetConversationsSortedByLastModified(t *testing.T) {
	api := newMemoryAPI(
		models.Conversation{ID: "old", Title: "Old", LastModified: 100},
		models.Conversation{ID: "new", Title: "New", LastModified: 300},
		models.Conversation{ID: "mid", Title: "Mid", LastModified: 200},
	)
	router := setupRouter(t, api, &fixedProvider{token: "test-token"}, true)

	w := doJSON(t, router, http.MethodGet, "/conversations", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var response struct {
		Conversations []models.Conversation `json:"conversations"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Conversations) != 3 {
		t.Fatalf("expected 3 conversations, got %d", len(response.Conversations))
	}
	for i, want := range []string{"new", "mid", "old"} {
		if response.Conversations[i].ID != want {
			t.Fatalf("expected position %d to be %q, got %q", i, want, response.Conversations[i].ID)
		}
	}
}

func TestCreateConversation(t *testing.T) {
	router := setupRouter(t, newMemoryAPI(), &fixedProvider{token: "test-token"}, false)

	w := doJSON(t, router, http.MethodPost, "/conversations", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var response struct {
		Conversation models.Conversation `json:"conversation"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Conversation.ID == "" {
		t.Fatal("expected the created conversation in the response")
	}
}

func TestCreateConversationUnauthorized(t *testing.T) {
	api := newMemoryAPI()
	api.unauthorized = true
	router := setupRouter(t, api, &fixedProvider{token: "test-token"}, false)

	w := doJSON(t, router, http.MethodPost, "/conversations", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSelectUnknownConversation(t *testing.T) {
	router := setupRouter(t, newMemoryAPI(), &fixedProvider{token: "test-token"}, false)

	w := doJSON(t, router, http.MethodPost, "/conversations/missing/select", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSelectConversationReturnsMessages(t *testing.T) {
	api := newMemoryAPI(
		models.Conversation{ID: "a", Title: "A", LastModified: 200},
		models.Conversation{ID: "b", Title: "B", LastModified: 100},
	)
	api.messages["b"] = []models.Message{
		{ID: "m1", Content: "in b", IsFromUser: true, ConversationID: "b"},
	}
	router := setupRouter(t, api, &fixedProvider{token: "test-token"}, true)

	w := doJSON(t, router, http.MethodPost, "/conversations/b/select", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var response struct {
		Conversation models.Conversation `json:"conversation"`
		Messages     []models.Message    `json:"messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Conversation.ID != "b" {
		t.Fatalf("expected conversation b, got %+v", response.Conversation)
	}
	if len(response.Messages) != 1 || response.Messages[0].ID != "m1" {
		t.Fatalf("expected b's messages, got %+v", response.Messages)
	}
}

func TestRenameWithoutSelection(t *testing.T) {
	router := setupRouter(t, newMemoryAPI(), &fixedProvider{token: "test-token"}, false)

	w := doJSON(t, router, http.MethodPut, "/conversations/current", `{"title":"Renamed"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRenameMissingTitle(t *testing.T) {
	api := newMemoryAPI(models.Conversation{ID: "a", Title: "A"})
	router := setupRouter(t, api, &fixedProvider{token: "test-token"}, true)

	w := doJSON(t, router, http.MethodPut, "/conversations/current", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPostMessageMissingContent(t *testing.T) {
	router := setupRouter(t, newMemoryAPI(), &fixedProvider{token: "test-token"}, false)

	w := doJSON(t, router, http.MethodPost, "/messages", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPostMessageReturnsConfirmedPair(t *testing.T) {
	api := newMemoryAPI(models.Conversation{ID: "a", Title: "A"})
	router := setupRouter(t, api, &fixedProvider{token: "test-token"}, true)

	w := doJSON(t, router, http.MethodPost, "/messages", `{"content":"hello"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var response struct {
		Messages []models.Message `json:"messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Messages) != 2 {
		t.Fatalf("expected the confirmed pair, got %+v", response.Messages)
	}
	if response.Messages[0].Content != "hello" {
		t.Fatalf("unexpected user message: %+v", response.Messages[0])
	}
}

func TestGetSuggestions(t *testing.T) {
	router := setupRouter(t, newMemoryAPI(), &fixedProvider{token: "test-token"}, false)

	w := doJSON(t, router, http.MethodGet, "/suggestions", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var response struct {
		Suggestions []models.Suggestion `json:"suggestions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Suggestions) == 0 {
		t.Fatal("expected suggestion cards")
	}
}

func TestSignOut(t *testing.T) {
	provider := &fixedProvider{token: "test-token"}
	router := setupRouter(t, newMemoryAPI(), provider, false)

	w := doJSON(t, router, http.MethodPost, "/auth/signout", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if provider.Session() != nil {
		t.Fatal("expected the session to be cleared")
	}
}
