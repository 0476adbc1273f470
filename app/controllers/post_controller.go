package controllers

import (
	"net/http"
	"strconv"

	"folio/app/logger"
	"folio/app/models"
	"folio/app/services"

	"github.com/gorilla/mux"
)

// PostController handles HTTP requests for blog posts
type PostController struct {
	postService *services.PostService
	log         *logger.Logger
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService, log *logger.Logger) *PostController {
	return &PostController{
		postService: postService,
		log:         log,
	}
}

// Index lists published posts, or all posts with ?all=true
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))

	posts, err := pc.postService.ListPosts(r.Context(), all)
	if err != nil {
		sendServiceError(w, pc.log, err, "Failed to fetch posts")
		return
	}
	sendJSON(w, http.StatusOK, posts)
}

// Show returns a single post and counts the view
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	post, err := pc.postService.GetPost(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		sendServiceError(w, pc.log, err, "Failed to fetch post")
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Create handles creating a new post
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	var patch models.PostPatch
	if err := decodeJSON(r, &patch); err != nil {
		sendServiceError(w, pc.log, err, "Failed to create post")
		return
	}

	post, err := pc.postService.CreatePost(r.Context(), &patch)
	if err != nil {
		sendServiceError(w, pc.log, err, "Failed to create post")
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Edit merges the supplied fields into an existing post
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	var patch models.PostPatch
	if err := decodeJSON(r, &patch); err != nil {
		sendServiceError(w, pc.log, err, "Failed to update post")
		return
	}

	post, err := pc.postService.UpdatePost(r.Context(), mux.Vars(r)["id"], &patch)
	if err != nil {
		sendServiceError(w, pc.log, err, "Failed to update post")
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Delete handles deleting a post
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := pc.postService.DeletePost(r.Context(), mux.Vars(r)["id"]); err != nil {
		sendServiceError(w, pc.log, err, "Failed to delete post")
		return
	}
	sendJSON(w, http.StatusOK, map[string]string{"message": "Post deleted successfully"})
}

// Share records a share and returns the new count
func (pc *PostController) Share(w http.ResponseWriter, r *http.Request) {
	shares, err := pc.postService.SharePost(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		sendServiceError(w, pc.log, err, "Failed to increment share")
		return
	}
	sendJSON(w, http.StatusOK, map[string]int64{"shares": shares})
}
