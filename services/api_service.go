package services

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/mintedhq/minted-go/auth"
	"github.com/mintedhq/minted-go/models"
)

// Request headers the production deployment validates. They have to match
// the values the hosted frontend sends or the API rejects the request.
const (
	apiHost      = "minted-api.vercel.app"
	apiOrigin    = "https://minted-api.vercel.app"
	apiReferer   = "https://minted-api.vercel.app"
	apiUserAgent = "MintedUI/1.0"
)

// ConversationAPI is the surface the chat store needs from the remote API.
type ConversationAPI interface {
	ListConversations(ctx context.Context) ([]models.Conversation, error)
	CreateConversation(ctx context.Context, title *string) (models.Conversation, error)
	UpdateConversation(ctx context.Context, id, title string) (models.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
	ListMessages(ctx context.Context, conversationID string) ([]models.Message, error)
	CreateMessage(ctx context.Context, conversationID, content string) (models.Message, models.Message, error)
	SendMessage(ctx context.Context, conversationID, content string) (models.Message, models.Message, error)
	GenerateTitle(ctx context.Context, conversationID, content string) (models.Conversation, error)
}

// APIService talks to the Minted conversations API. It is stateless: every
// call fetches a bearer token from the auth provider, issues one request and
// decodes the {data, error} envelope.
type APIService struct {
	client  *resty.Client
	baseURL string
	auth    auth.Provider
	now     func() int64
}

var _ ConversationAPI = (*APIService)(nil)

func NewAPIService(baseURL string, provider auth.Provider) *APIService {
	return &APIService{
		client:  resty.New(),
		baseURL: strings.TrimRight(baseURL, "/"),
		auth:    provider,
		now:     NowMillis,
	}
}

// newRequest builds an authenticated request, failing before any network
// traffic when there is no usable session.
func (s *APIService) newRequest(ctx context.Context) (*resty.Request, error) {
	sess := s.auth.Session()
	if sess == nil {
		return nil, ErrNoActiveSession
	}
	token, err := sess.Token(ctx)
	if err != nil || token == "" {
		return nil, ErrNoActiveSession
	}

	return s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetHeader("Host", apiHost).
		SetHeader("Origin", apiOrigin).
		SetHeader("Referer", apiReferer).
		SetHeader("Sec-Fetch-Dest", "empty").
		SetHeader("User-Agent", apiUserAgent).
		SetHeader("X-Forwarded-Host", apiHost).
		SetHeader("X-Forwarded-Proto", "https"), nil
}

func decodeEnvelope[T any](body []byte) (*models.APIResponse[T], error) {
	var env models.APIResponse[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &DecodingError{Err: err}
	}
	return &env, nil
}

func (s *APIService) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	req, err := s.newRequest(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := req.Get(s.baseURL + "/conversations")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, statusError(resp.StatusCode())
	}

	env, err := decodeEnvelope[[]models.Conversation](resp.Body())
	if err != nil {
		return nil, err
	}
	if env.Data == nil {
		return []models.Conversation{}, nil
	}
	return *env.Data, nil
}

func (s *APIService) CreateConversation(ctx context.Context, title *string) (models.Conversation, error) {
	req, err := s.newRequest(ctx)
	if err != nil {
		return models.Conversation{}, err
	}

	// The title key is omitted entirely when the caller has none, the
	// server then assigns its default.
	body := map[string]string{}
	if title != nil {
		body["title"] = *title
	}

	resp, err := req.SetBody(body).Post(s.baseURL + "/conversations")
	if err != nil {
		return models.Conversation{}, err
	}
	if resp.StatusCode() != http.StatusCreated {
		return models.Conversation{}, statusError(resp.StatusCode())
	}

	env, err := decodeEnvelope[models.Conversation](resp.Body())
	if err != nil {
		return models.Conversation{}, err
	}
	if env.Data == nil {
		return models.Conversation{}, ErrInvalidResponse
	}
	return *env.Data, nil
}

func (s *APIService) UpdateConversation(ctx context.Context, id, title string) (models.Conversation, error) {
	req, err := s.newRequest(ctx)
	if err != nil {
		return models.Conversation{}, err
	}

	resp, err := req.SetBody(map[string]string{"title": title}).Put(s.baseURL + "/conversations/" + id)
	if err != nil {
		return models.Conversation{}, err
	}
	if resp.StatusCode() != http.StatusOK {
		return models.Conversation{}, statusError(resp.StatusCode())
	}

	env, err := decodeEnvelope[models.Conversation](resp.Body())
	if err != nil {
		return models.Conversation{}, err
	}
	if env.Data == nil {
		return models.Conversation{}, ErrInvalidResponse
	}
	return *env.Data, nil
}

func (s *APIService) DeleteConversation(ctx context.Context, id string) error {
	req, err := s.newRequest(ctx)
	if err != nil {
		return err
	}

	resp, err := req.Delete(s.baseURL + "/conversations/" + id)
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return statusError(resp.StatusCode())
	}

	// The delete endpoint can report failure inside the envelope even on 200.
	env, err := decodeEnvelope[struct{}](resp.Body())
	if err != nil {
		return err
	}
	if env.Error != nil {
		return &ServerError{Code: resp.StatusCode(), Detail: *env.Error}
	}
	return nil
}

func (s *APIService) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	req, err := s.newRequest(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := req.Get(s.baseURL + "/conversations/" + conversationID + "/messages")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, statusError(resp.StatusCode())
	}

	env, err := decodeEnvelope[[]models.Message](resp.Body())
	if err != nil {
		return nil, err
	}
	if env.Data == nil {
		return []models.Message{}, nil
	}
	return *env.Data, nil
}

func (s *APIService) CreateMessage(ctx context.Context, conversationID, content string) (models.Message, models.Message, error) {
	req, err := s.newRequest(ctx)
	if err != nil {
		return models.Message{}, models.Message{}, err
	}

	resp, err := req.SetBody(map[string]string{"content": content}).
		Post(s.baseURL + "/conversations/" + conversationID + "/messages")
	if err != nil {
		return models.Message{}, models.Message{}, err
	}
	if resp.StatusCode() != http.StatusCreated {
		return models.Message{}, models.Message{}, statusError(resp.StatusCode())
	}

	env, err := decodeEnvelope[models.MessagePair](resp.Body())
	if err != nil {
		return models.Message{}, models.Message{}, err
	}
	if env.Data == nil {
		return models.Message{}, models.Message{}, ErrInvalidResponse
	}
	return env.Data.Message, env.Data.Response, nil
}

// SendMessage is the same request as CreateMessage. Both names are part of
// the client contract, so it stays a distinct operation.
func (s *APIService) SendMessage(ctx context.Context, conversationID, content string) (models.Message, models.Message, error) {
	return s.CreateMessage(ctx, conversationID, content)
}

// GenerateTitle asks the server for a title based on the first message, then
// re-fetches the conversation list to return the conversation carrying it.
func (s *APIService) GenerateTitle(ctx context.Context, conversationID, content string) (models.Conversation, error) {
	req, err := s.newRequest(ctx)
	if err != nil {
		return models.Conversation{}, err
	}

	resp, err := req.SetBody(map[string]string{"content": content}).
		Post(s.baseURL + "/conversations/" + conversationID + "/title")
	if err != nil {
		return models.Conversation{}, err
	}
	if resp.StatusCode() != http.StatusOK {
		return models.Conversation{}, statusError(resp.StatusCode())
	}

	env, err := decodeEnvelope[models.TitleResult](resp.Body())
	if err != nil {
		return models.Conversation{}, err
	}
	if env.Data == nil || env.Data.Title == "" {
		return models.Conversation{}, ErrInvalidResponse
	}

	conversations, err := s.ListConversations(ctx)
	if err != nil {
		return models.Conversation{}, err
	}
	for _, conv := range conversations {
		if conv.ID == conversationID {
			conv.Title = env.Data.Title
			conv.LastModified = s.now()
			return conv, nil
		}
	}
	return models.Conversation{}, &ServerError{Code: http.StatusNotFound, Detail: "conversation not found"}
}
