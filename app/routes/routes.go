package routes

import (
	"net/http"

	"folio/app/config"
	"folio/app/controllers"
	"folio/app/logger"
	"folio/app/middleware"
	"folio/app/repositories"
	"folio/app/services"

	"github.com/gorilla/mux"
)

// Dependencies are the collaborators the route table is built from.
type Dependencies struct {
	Config *config.Config
	Store  repositories.PostStore
	Log    *logger.Logger
	// RateCounter limits comment and share submissions; nil disables limiting.
	RateCounter middleware.Counter
}

// SetupRoutes defines the application's routes and returns the handler to
// serve, CORS included.
func SetupRoutes(deps Dependencies) http.Handler {
	cfg, log := deps.Config, deps.Log
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recoverer(log))

	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	postService := services.NewPostService(deps.Store)
	commentService := services.NewCommentService(deps.Store, services.CommentPolicy{
		AutoApprove:      cfg.CommentsAutoApprove,
		StrictValidation: cfg.CommentsStrictValidation,
	})
	feedService := services.NewFeedService(deps.Store, services.SiteInfo{
		Title:       cfg.SiteTitle,
		URL:         cfg.SiteURL,
		Description: cfg.SiteDescription,
		Author:      cfg.SiteAuthor,
	})

	postController := controllers.NewPostController(postService, log)
	commentController := controllers.NewCommentController(commentService, log)
	healthController := controllers.NewHealthController(deps.Store, log)
	feedController := controllers.NewFeedController(feedService, log)

	limited := middleware.RateLimit(deps.RateCounter, cfg.RateLimit, cfg.RateLimitWindow, log)

	// API routes
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ContentTypeJSON)
	api.Use(middleware.RequireJSON)

	api.HandleFunc("/health", healthController.Show).Methods("GET")
	api.HandleFunc("/feed", feedController.Show).Methods("GET")

	// Posts API endpoints
	posts := api.PathPrefix("/posts").Subrouter()
	posts.HandleFunc("", postController.Index).Methods("GET")
	posts.HandleFunc("", postController.Create).Methods("POST")
	posts.HandleFunc("/", postController.Index).Methods("GET")
	posts.HandleFunc("/", postController.Create).Methods("POST")
	posts.HandleFunc("/{id}", postController.Show).Methods("GET")
	posts.HandleFunc("/{id}", postController.Edit).Methods("PUT")
	posts.HandleFunc("/{id}", postController.Delete).Methods("DELETE")
	posts.Handle("/{id}/share", limited(http.HandlerFunc(postController.Share))).Methods("POST")

	// Comments API endpoints
	posts.HandleFunc("/{id}/comments", commentController.Index).Methods("GET")
	posts.Handle("/{id}/comments", limited(http.HandlerFunc(commentController.Create))).Methods("POST")

	// Blog and admin pages
	if cfg.StaticDir != "" {
		router.PathPrefix("/").Methods("GET", "HEAD").Handler(staticFiles(cfg.StaticDir))
	}

	return middleware.CORS(cfg.AllowedOrigins)(router)
}

// staticFiles serves dir, answering unknown API paths with the JSON 404.
func staticFiles(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if middleware.IsAPIPath(r.URL.Path) {
			notFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	if middleware.IsAPIPath(r.URL.Path) {
		middleware.WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	http.NotFound(w, r)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
}
