package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mintedhq/minted-go/controllers"
	"github.com/mintedhq/minted-go/middlewares"
)

// SetupRouter wires the gateway endpoints. frontendURL restricts CORS to the
// UI origin; leave it empty to allow any origin during development.
func SetupRouter(chat *controllers.ChatController, frontendURL string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.Logger())

	corsConfig := cors.DefaultConfig()
	if frontendURL != "" {
		corsConfig.AllowOrigins = []string{frontendURL}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", chat.Healthz)
	r.GET("/state", chat.GetState)

	r.GET("/conversations", chat.GetConversations)
	r.POST("/conversations", chat.CreateConversation)
	r.POST("/conversations/:id/select", chat.SelectConversation)
	r.PUT("/conversations/current", chat.RenameCurrentConversation)
	r.DELETE("/conversations/current", chat.DeleteCurrentConversation)
	r.GET("/conversations/current/messages", chat.GetMessages)

	r.POST("/messages", chat.PostMessage)

	r.GET("/suggestions", chat.GetSuggestions)
	r.POST("/auth/signout", chat.SignOut)

	return r
}
