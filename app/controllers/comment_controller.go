package controllers

import (
	"net/http"

	"folio/app/logger"
	"folio/app/models"
	"folio/app/services"

	"github.com/gorilla/mux"
)

// CommentController handles HTTP requests for comments
type CommentController struct {
	commentService *services.CommentService
	log            *logger.Logger
}

// NewCommentController creates a new CommentController
func NewCommentController(commentService *services.CommentService, log *logger.Logger) *CommentController {
	return &CommentController{
		commentService: commentService,
		log:            log,
	}
}

// Index lists the approved comments of a post
func (cc *CommentController) Index(w http.ResponseWriter, r *http.Request) {
	comments, err := cc.commentService.ListComments(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		sendServiceError(w, cc.log, err, "Failed to fetch comments")
		return
	}
	sendJSON(w, http.StatusOK, comments)
}

// Create adds a comment to a post
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	var input models.CommentInput
	if err := decodeJSON(r, &input); err != nil {
		sendServiceError(w, cc.log, err, "Failed to add comment")
		return
	}

	comment, err := cc.commentService.AddComment(r.Context(), mux.Vars(r)["id"], &input)
	if err != nil {
		sendServiceError(w, cc.log, err, "Failed to add comment")
		return
	}
	sendJSON(w, http.StatusOK, comment)
}
