package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"changelogd/internal/gateway/service/generation"
)

// JobWatcher exposes the orchestrator's subscription surface.
type JobWatcher interface {
	Subscribe(id string) (<-chan generation.Job, error)
}

const (
	watchWriteWait = 10 * time.Second
	watchPongWait  = 60 * time.Second
	watchPingEvery = (watchPongWait * 9) / 10
)

var watchUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// WatchHandler serves GET /api/changelogs/watch/{id}: a websocket that
// pushes the current job snapshot and then its terminal state, as an
// alternative to polling the status route.
type WatchHandler struct {
	jobs JobWatcher
}

func NewWatchHandler(jobs JobWatcher) *WatchHandler {
	return &WatchHandler{jobs: jobs}
}

func (h *WatchHandler) Handle(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/changelogs/watch/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "job id is required")
		return
	}

	sub, err := h.jobs.Subscribe(id)
	if err != nil {
		if errors.Is(err, generation.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "Job not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to watch job")
		return
	}

	conn, err := watchUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(watchPongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(watchPongWait))
	})

	// Reader goroutine only consumes control frames and detects a
	// client-side close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(watchPingEvery)
	defer ticker.Stop()

	for {
		select {
		case job, ok := <-sub:
			if !ok {
				return
			}
			if err := conn.SetWriteDeadline(time.Now().Add(watchWriteWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(job); err != nil {
				return
			}
			if job.Terminal() {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(watchWriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
