package controllers

import (
	"io"
	"net/http"

	"folio/app/logger"
	"folio/app/services"
)

// FeedController serves the syndication feed
type FeedController struct {
	feedService *services.FeedService
	log         *logger.Logger
}

func NewFeedController(feedService *services.FeedService, log *logger.Logger) *FeedController {
	return &FeedController{feedService: feedService, log: log}
}

// Show renders the feed in the format named by ?format= (rss by default)
func (fc *FeedController) Show(w http.ResponseWriter, r *http.Request) {
	body, contentType, err := fc.feedService.Render(r.Context(), r.URL.Query().Get("format"))
	if err != nil {
		sendServiceError(w, fc.log, err, "Failed to build feed")
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, body)
}
