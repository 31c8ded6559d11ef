package server

import (
	"net/http"

	"changelogd/internal/gateway/handler"
	"changelogd/internal/gateway/middleware"
)

func NewMux(
	commitsHandler *handler.CommitsHandler,
	changelogsHandler *handler.ChangelogsHandler,
	watchHandler *handler.WatchHandler,
	allowedOrigins []string,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/commits", commitsHandler.Handle)
	mux.HandleFunc("/api/changelogs", changelogsHandler.HandleCollection)
	mux.HandleFunc("/api/changelogs/status/", changelogsHandler.HandleStatus)
	mux.HandleFunc("/api/changelogs/watch/", watchHandler.Handle)

	return middleware.CORS(mux, allowedOrigins)
}
