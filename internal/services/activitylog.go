package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	auditrepo "github.com/bovipred/bovipred-backend/internal/data/repos/audit"
	types "github.com/bovipred/bovipred-backend/internal/domain"
	"github.com/bovipred/bovipred-backend/internal/platform/ctxutil"
	"github.com/bovipred/bovipred-backend/internal/platform/logger"
)

// ActivityLogService appends audit entries. Recording is best-effort:
// a failure is logged and swallowed so it never aborts the operation
// being audited.
type ActivityLogService interface {
	Record(ctx context.Context, action, entityType string, entityID *uuid.UUID, description string)
	RecordChange(ctx context.Context, action, entityType string, entityID *uuid.UUID, description string, before, after any)
}

type activityLogService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo auditrepo.ActivityLogRepo
}

func NewActivityLogService(db *gorm.DB, log *logger.Logger, repo auditrepo.ActivityLogRepo) ActivityLogService {
	return &activityLogService{
		db:   db,
		log:  log.With("service", "ActivityLogService"),
		repo: repo,
	}
}

func (s *activityLogService) Record(ctx context.Context, action, entityType string, entityID *uuid.UUID, description string) {
	s.RecordChange(ctx, action, entityType, entityID, description, nil, nil)
}

func (s *activityLogService) RecordChange(ctx context.Context, action, entityType string, entityID *uuid.UUID, description string, before, after any) {
	entry := &types.ActivityLog{
		ID:          uuid.New(),
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
	}

	if rd := ctxutil.GetRequestData(ctx); rd != nil {
		if rd.UserID != uuid.Nil {
			id := rd.UserID
			entry.UserID = &id
		}
		entry.IP = rd.IP
		entry.UserAgent = rd.UserAgent
	}

	entry.Before = marshalSnapshot(before)
	entry.After = marshalSnapshot(after)

	if err := s.repo.Create(ctx, nil, entry); err != nil {
		s.log.Warn("failed to record activity", "action", action, "entity", entityType, "error", err)
	}
}

func marshalSnapshot(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
