package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gamehaqqs/gamehaqqs/internal/services"
	"github.com/gamehaqqs/gamehaqqs/pkg/response"
)

// ContentHandler records community actions and reports their gamification outcome.
type ContentHandler struct {
	activity *services.ActivityService
}

// NewContentHandler constructs a ContentHandler.
func NewContentHandler(activity *services.ActivityService) *ContentHandler {
	return &ContentHandler{activity: activity}
}

type contentRequest struct {
	GameID string `json:"game_id" validate:"required,max=64"`
	Title  string `json:"title" validate:"required,max=200"`
	Body   string `json:"body" validate:"max=20000"`
}

type reviewRequest struct {
	contentRequest
	Rating int `json:"rating" validate:"min=0,max=10"`
}

type postRequest struct {
	GameID string `json:"game_id" validate:"max=64"`
	Title  string `json:"title" validate:"required,max=200"`
	Body   string `json:"body" validate:"max=20000"`
}

type commentRequest struct {
	EntityType string `json:"entity_type" validate:"required,entity_type"`
	EntityID   string `json:"entity_id" validate:"required,uuid"`
	Body       string `json:"body" validate:"required,max=5000"`
}

type likeRequest struct {
	EntityType string `json:"entity_type" validate:"required,entity_type"`
	EntityID   string `json:"entity_id" validate:"required,uuid"`
}

// actionResponse pairs the stored record with the actor's gamification outcome.
type actionResponse struct {
	Item    any               `json:"item"`
	Outcome *services.Outcome `json:"outcome"`
}

// POST /api/reviews
func (h *ContentHandler) CreateReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req reviewRequest
	if !bindAndValidate(c, &req) {
		return
	}

	review, outcome, err := h.activity.CreateReview(requestContext(c), services.ContentInput{
		UserID: userID,
		GameID: req.GameID,
		Title:  req.Title,
		Body:   req.Body,
		Rating: req.Rating,
	})
	respondAction(c, review, outcome, err)
}

// POST /api/tips
func (h *ContentHandler) CreateTip(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req contentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	tip, outcome, err := h.activity.CreateTip(requestContext(c), contentInput(userID, req))
	respondAction(c, tip, outcome, err)
}

// POST /api/wikis
func (h *ContentHandler) CreateWiki(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req contentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	wiki, outcome, err := h.activity.CreateWiki(requestContext(c), contentInput(userID, req))
	respondAction(c, wiki, outcome, err)
}

// POST /api/posts
func (h *ContentHandler) CreatePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req postRequest
	if !bindAndValidate(c, &req) {
		return
	}

	post, outcome, err := h.activity.CreatePost(requestContext(c), services.ContentInput{
		UserID: userID,
		GameID: req.GameID,
		Title:  req.Title,
		Body:   req.Body,
	})
	respondAction(c, post, outcome, err)
}

// POST /api/comments
func (h *ContentHandler) CreateComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req commentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	comment, outcome, err := h.activity.AddComment(requestContext(c), services.CommentInput{
		UserID:     userID,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		Body:       req.Body,
	})
	respondAction(c, comment, outcome, err)
}

// POST /api/likes
func (h *ContentHandler) CreateLike(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req likeRequest
	if !bindAndValidate(c, &req) {
		return
	}

	like, outcome, err := h.activity.AddLike(requestContext(c), services.LikeInput{
		UserID:     userID,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
	})
	respondAction(c, like, outcome, err)
}

func contentInput(userID string, req contentRequest) services.ContentInput {
	return services.ContentInput{UserID: userID, GameID: req.GameID, Title: req.Title, Body: req.Body}
}

// respondAction writes 201 whenever the record was stored, even if part of the reward cascade failed.
func respondAction[T any](c *gin.Context, item *T, outcome *services.Outcome, err error) {
	if item == nil || outcome == nil {
		response.Error(c, err)
		return
	}
	noteIncomplete(c, err)
	response.Success(c, http.StatusCreated, actionResponse{Item: item, Outcome: outcome})
}
