package controllers

import (
	"errors"
	"log"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/mintedhq/minted-go/auth"
	"github.com/mintedhq/minted-go/models"
	"github.com/mintedhq/minted-go/services"
)

// ChatController exposes the chat store to a thin UI as JSON endpoints.
type ChatController struct {
	store *services.ChatService
	auth  auth.Provider
}

func NewChatController(store *services.ChatService, provider auth.Provider) *ChatController {
	return &ChatController{store: store, auth: provider}
}

func (cc *ChatController) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (cc *ChatController) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"conversations":        sortedForDisplay(cc.store.Conversations()),
		"currentConversation":  cc.store.CurrentConversation(),
		"messages":             cc.store.CurrentMessages(),
		"isWaitingForResponse": cc.store.IsWaitingForResponse(),
		"lastError":            cc.store.LastError(),
	})
}

func (cc *ChatController) GetConversations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"conversations": sortedForDisplay(cc.store.Conversations())})
}

func (cc *ChatController) CreateConversation(c *gin.Context) {
	conversation, err := cc.store.CreateNewConversation(c.Request.Context())
	if err != nil {
		log.Printf("Error creating conversation: %v", err)
		c.JSON(errStatus(err), gin.H{"error": "Failed to create conversation"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"conversation": conversation})
}

func (cc *ChatController) SelectConversation(c *gin.Context) {
	id := c.Param("id")

	var target *models.Conversation
	for _, conv := range cc.store.Conversations() {
		if conv.ID == id {
			conv := conv
			target = &conv
			break
		}
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}

	if err := cc.store.SwitchToConversation(c.Request.Context(), *target); err != nil {
		log.Printf("Error switching to conversation %s: %v", id, err)
		c.JSON(errStatus(err), gin.H{"error": "Failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"conversation": cc.store.CurrentConversation(),
		"messages":     cc.store.CurrentMessages(),
	})
}

func (cc *ChatController) RenameCurrentConversation(c *gin.Context) {
	var request struct {
		Title string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	if cc.store.CurrentConversation() == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No conversation selected"})
		return
	}

	if err := cc.store.RenameCurrentConversation(c.Request.Context(), request.Title); err != nil {
		log.Printf("Error renaming conversation: %v", err)
		c.JSON(errStatus(err), gin.H{"error": "Failed to rename conversation"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversation": cc.store.CurrentConversation()})
}

func (cc *ChatController) DeleteCurrentConversation(c *gin.Context) {
	if cc.store.CurrentConversation() == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No conversation selected"})
		return
	}

	if err := cc.store.DeleteCurrentConversation(c.Request.Context()); err != nil {
		log.Printf("Error deleting conversation: %v", err)
		c.JSON(errStatus(err), gin.H{"error": "Failed to delete conversation"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Conversation deleted"})
}

func (cc *ChatController) GetMessages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"messages": cc.store.CurrentMessages()})
}

func (cc *ChatController) PostMessage(c *gin.Context) {
	var request struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content is required"})
		return
	}

	cc.store.SetMessageText(request.Content)
	if err := cc.store.SendMessage(c.Request.Context()); err != nil {
		log.Printf("Error sending message: %v", err)
		c.JSON(errStatus(err), gin.H{"error": cc.store.LastError()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"messages": cc.store.CurrentMessages()})
}

func (cc *ChatController) GetSuggestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"suggestions": models.Suggestions})
}

func (cc *ChatController) SignOut(c *gin.Context) {
	if err := cc.auth.SignOut(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign out"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// sortedForDisplay orders conversations most recently modified first, the
// order the side menu shows them in.
func sortedForDisplay(conversations []models.Conversation) []models.Conversation {
	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].LastModified > conversations[j].LastModified
	})
	return conversations
}

// errStatus maps a store failure to the gateway's response status.
func errStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrNoActiveSession), errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrBadRequest):
		return http.StatusBadRequest
	}
	var serverErr *services.ServerError
	if errors.As(err, &serverErr) && serverErr.Code == http.StatusNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}
