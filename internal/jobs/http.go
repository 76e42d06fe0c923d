// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package jobs

import (
	"errors"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/taibuivan/sleepora/internal/platform/apperr"
	"github.com/taibuivan/sleepora/internal/platform/middleware"
	"github.com/taibuivan/sleepora/internal/platform/respond"
)

// QueueInspector reads queue statistics. [*asynq.Inspector] implements it.
type QueueInspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

// QueueHealth summarises one queue.
type QueueHealth struct {
	Queue     string `json:"queue"`
	Size      int    `json:"size"`
	Pending   int    `json:"pending"`
	Active    int    `json:"active"`
	Scheduled int    `json:"scheduled"`
	Retry     int    `json:"retry"`
	Archived  int    `json:"archived"`
	Failed    int    `json:"failed_today"`
	Paused    bool   `json:"paused"`
}

// Handler exposes job queue observability.
type Handler struct {
	inspector QueueInspector
	guard     middleware.Authorizer
}

// NewHandler constructs a [Handler].
func NewHandler(inspector QueueInspector, guard middleware.Authorizer) *Handler {
	return &Handler{inspector: inspector, guard: guard}
}

// Routes mounts under /api/v1/admin/jobs.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.With(handler.guard.Require("jobs", "read")).Get("/health", handler.health)
	return router
}

// health handles GET /admin/jobs/health
func (handler *Handler) health(writer http.ResponseWriter, request *http.Request) {
	queues := make([]string, 0, len(Queues))
	for queue := range Queues {
		queues = append(queues, queue)
	}
	slices.Sort(queues)

	result := make([]QueueHealth, 0, len(queues))
	for _, queue := range queues {
		info, err := handler.inspector.GetQueueInfo(queue)
		switch {
		case errors.Is(err, asynq.ErrQueueNotFound):
			result = append(result, QueueHealth{Queue: queue})
			continue
		case err != nil:
			respond.Error(writer, request, apperr.Unavailable(err))
			return
		}

		result = append(result, QueueHealth{
			Queue:     info.Queue,
			Size:      info.Size,
			Pending:   info.Pending,
			Active:    info.Active,
			Scheduled: info.Scheduled,
			Retry:     info.Retry,
			Archived:  info.Archived,
			Failed:    info.Failed,
			Paused:    info.Paused,
		})
	}

	respond.OK(writer, result)
}
