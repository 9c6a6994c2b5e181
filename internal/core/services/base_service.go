package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/budget_approval_app/internal/apperrors"
	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	portssvc "github.com/SscSPs/budget_approval_app/internal/core/ports/services"
	"github.com/SscSPs/budget_approval_app/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Hierarchy portssvc.OrganizationReaderSvc
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// LoadTree loads the unit hierarchy.
func (s *BaseService) LoadTree(ctx context.Context) (*domain.OrgTree, error) {
	tree, err := s.Hierarchy.Tree(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to load unit hierarchy")
		return nil, err
	}
	return tree, nil
}

// AuthorizeUnit checks that unitID is the actor's unit or lies below it.
// Admins may act on any unit.
func (s *BaseService) AuthorizeUnit(ctx context.Context, tree *domain.OrgTree, actor *domain.User, unitID string) error {
	if _, ok := tree.Unit(unitID); !ok {
		return apperrors.NewNotFoundError("unit not found")
	}
	if actor.IsAdmin() || tree.Covers(actor.UnitID, unitID) {
		return nil
	}
	s.LogDebug(ctx, "Unit outside of actor scope",
		slog.String("unit_id", unitID),
		slog.String("actor_unit_id", actor.UnitID))
	return apperrors.NewForbiddenError("unit is outside of your organizational scope")
}

// AuthorizeSuperior checks that the actor's unit lies strictly above unitID.
func (s *BaseService) AuthorizeSuperior(ctx context.Context, tree *domain.OrgTree, actor *domain.User, unitID string) error {
	if _, ok := tree.Unit(unitID); !ok {
		return apperrors.NewNotFoundError("unit not found")
	}
	if actor.IsAdmin() || tree.IsAncestor(actor.UnitID, unitID) {
		return nil
	}
	s.LogDebug(ctx, "Actor unit is not above target unit",
		slog.String("unit_id", unitID),
		slog.String("actor_unit_id", actor.UnitID))
	return apperrors.NewForbiddenError("only superior units may review this unit")
}

// RecordSnapshot records a version of unitID. Snapshots are an audit trail, so
// a failure is logged and does not undo the mutation that triggered it.
func (s *BaseService) RecordSnapshot(ctx context.Context, recorder portssvc.VersionRecorderSvc, actor *domain.User, unitID string, action domain.VersionAction) {
	if recorder == nil {
		return
	}
	if _, err := recorder.RecordSnapshot(ctx, actor, unitID, action); err != nil {
		s.LogError(ctx, err, "Failed to record version snapshot",
			slog.String("unit_id", unitID),
			slog.String("action", string(action)))
	}
}
