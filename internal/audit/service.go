// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/sleepora/internal/platform/ctxutil"
	"github.com/taibuivan/sleepora/pkg/pagination"
	"github.com/taibuivan/sleepora/pkg/uuid"
)

// Service writes and lists audit entries.
type Service struct {
	repository Repository
	logger     *slog.Logger
}

// NewService constructs a [Service].
func NewService(repository Repository, logger *slog.Logger) *Service {
	return &Service{repository: repository, logger: logger}
}

// Record persists entry. Actor and IP default to the request's subject and
// address. The mutation being audited has already committed, so a write
// failure is logged at error level instead of failing the caller.
func (service *Service) Record(ctx context.Context, entry Entry) {
	if entry.ActorID == "" {
		entry.ActorID = ctxutil.SubjectID(ctx)
	}
	if entry.IPAddress == "" {
		entry.IPAddress = ctxutil.GetClientIP(ctx)
	}
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now().UTC()

	if err := service.repository.Insert(context.WithoutCancel(ctx), &entry); err != nil {
		service.logger.ErrorContext(ctx, "audit_record_failed",
			slog.String("action", entry.Action),
			slog.String("entity_type", entry.EntityType),
			slog.String("entity_id", entry.EntityID),
			slog.Any("error", err),
		)
	}
}

// List returns one page of entries, newest first.
func (service *Service) List(ctx context.Context, filter Filter, params pagination.Params) ([]Entry, int, error) {
	return service.repository.List(ctx, filter, params.Limit, params.Offset())
}
