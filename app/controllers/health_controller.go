package controllers

import (
	"context"
	"net/http"
	"time"

	"folio/app/logger"
	"folio/app/repositories"
)

const healthTimeout = 5 * time.Second

// HealthResponse reports liveness and collection size.
type HealthResponse struct {
	Status         string `json:"status"`
	Storage        string `json:"storage"`
	Database       string `json:"database,omitempty"`
	Collection     string `json:"collection,omitempty"`
	Connected      bool   `json:"connected"`
	TotalPosts     int64  `json:"totalPosts"`
	PublishedPosts int64  `json:"publishedPosts"`
	Error          string `json:"error,omitempty"`
	Timestamp      string `json:"timestamp"`
}

// HealthController answers health checks. It always responds 200 so the
// body, not the status, says whether storage is reachable.
type HealthController struct {
	store repositories.PostStore
	log   *logger.Logger
	now   func() time.Time
}

func NewHealthController(store repositories.PostStore, log *logger.Logger) *HealthController {
	return &HealthController{store: store, log: log, now: time.Now}
}

func (hc *HealthController) Show(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:    "ok",
		Storage:   hc.store.Kind(),
		Connected: true,
	}
	if loc, ok := hc.store.(repositories.CollectionLocator); ok {
		resp.Database = loc.Database()
		resp.Collection = loc.Collection()
	}
	if pinger, ok := hc.store.(repositories.Pinger); ok {
		if err := pinger.Ping(ctx); err != nil {
			resp.Connected = false
		}
	}

	stats, err := hc.store.Stats(ctx)
	if err != nil {
		hc.log.Warn("Health check failed: %v", err)
		resp.Status = "error"
		resp.Error = err.Error()
		resp.Connected = false
	} else {
		resp.TotalPosts = stats.TotalPosts
		resp.PublishedPosts = stats.PublishedPosts
	}
	resp.Timestamp = hc.now().UTC().Format(time.RFC3339Nano)

	sendJSON(w, http.StatusOK, resp)
}
