package api

import (
	"github.com/gin-gonic/gin"

	"github.com/gamehaqqs/gamehaqqs/internal/handlers"
)

func registerContentRoutes(api *gin.RouterGroup, handler *handlers.ContentHandler) {
	api.POST("/reviews", handler.CreateReview)
	api.POST("/tips", handler.CreateTip)
	api.POST("/wikis", handler.CreateWiki)
	api.POST("/posts", handler.CreatePost)
	api.POST("/comments", handler.CreateComment)
	api.POST("/likes", handler.CreateLike)
}
