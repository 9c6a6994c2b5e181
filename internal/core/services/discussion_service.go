package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/budget_approval_app/internal/apperrors"
	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_approval_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_approval_app/internal/core/ports/services"
	"github.com/google/uuid"
)

// discussionService runs the clarification thread of an item. The unread flag
// is per item, not per reader.
type discussionService struct {
	BaseService
	commentRepo portsrepo.CommentRepositoryFacade
	itemRepo    portsrepo.BudgetItemRepositoryFacade
}

// NewDiscussionService creates a new discussion service
func NewDiscussionService(
	commentRepo portsrepo.CommentRepositoryFacade,
	itemRepo portsrepo.BudgetItemRepositoryFacade,
	hierarchy portssvc.OrganizationReaderSvc,
) portssvc.DiscussionSvcFacade {
	return &discussionService{
		BaseService: BaseService{Hierarchy: hierarchy},
		commentRepo: commentRepo,
		itemRepo:    itemRepo,
	}
}

var _ portssvc.DiscussionSvcFacade = (*discussionService)(nil)

// RequestClarification asks the owning unit about an item. Only units above the owner may ask.
func (s *discussionService) RequestClarification(ctx context.Context, actor *domain.User, itemID, content string) (*domain.BudgetComment, error) {
	item, tree, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.AuthorizeSuperior(ctx, tree, actor, item.UnitID); err != nil {
		return nil, err
	}

	comment, err := s.saveComment(ctx, actor, item.ItemID, content, nil)
	if err != nil {
		return nil, err
	}

	item.ClarificationStatus = domain.ClarificationRequested
	item.HasUnreadComments = true
	if err := s.updateItem(ctx, actor, item); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Clarification requested", slog.String("item_id", itemID))
	return comment, nil
}

// AddComment appends to the thread. The first top level comment from the owning
// unit after a request counts as the response.
func (s *discussionService) AddComment(ctx context.Context, actor *domain.User, itemID, content string, parentCommentID *string) (*domain.BudgetComment, error) {
	item, tree, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.AuthorizeUnit(ctx, tree, actor, item.UnitID); err != nil {
		return nil, err
	}

	if parentCommentID != nil && *parentCommentID == "" {
		parentCommentID = nil
	}
	if parentCommentID != nil {
		parent, err := s.commentRepo.FindCommentByID(ctx, *parentCommentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewValidationFailedError("parent comment does not exist")
			}
			s.LogError(ctx, err, "Failed to find parent comment", slog.String("comment_id", *parentCommentID))
			return nil, err
		}
		if parent.BudgetItemID != item.ItemID {
			return nil, apperrors.NewValidationFailedError("parent comment belongs to another item")
		}
		if parent.IsReply() {
			return nil, apperrors.NewValidationFailedError("replies cannot be nested")
		}
	}

	comment, err := s.saveComment(ctx, actor, item.ItemID, content, parentCommentID)
	if err != nil {
		return nil, err
	}

	if item.ClarificationStatus == domain.ClarificationRequested && parentCommentID == nil && actor.UnitID == item.UnitID {
		item.ClarificationStatus = domain.ClarificationResponded
	}
	item.HasUnreadComments = true
	if err := s.updateItem(ctx, actor, item); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *discussionService) ListComments(ctx context.Context, actor *domain.User, itemID string) ([]domain.BudgetComment, error) {
	item, tree, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.AuthorizeUnit(ctx, tree, actor, item.UnitID); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListCommentsByItem(ctx, itemID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list comments", slog.String("item_id", itemID))
		return nil, err
	}
	if comments == nil {
		return []domain.BudgetComment{}, nil
	}
	return comments, nil
}

func (s *discussionService) MarkCommentsRead(ctx context.Context, actor *domain.User, itemID string) error {
	item, tree, err := s.loadItem(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.AuthorizeUnit(ctx, tree, actor, item.UnitID); err != nil {
		return err
	}
	if !item.HasUnreadComments {
		return nil
	}
	item.HasUnreadComments = false
	return s.updateItem(ctx, actor, item)
}

// ResolveClarification closes the thread. Only units above the owner may resolve.
func (s *discussionService) ResolveClarification(ctx context.Context, actor *domain.User, itemID string) error {
	item, tree, err := s.loadItem(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.AuthorizeSuperior(ctx, tree, actor, item.UnitID); err != nil {
		return err
	}
	item.ClarificationStatus = domain.ClarificationResolved
	item.HasUnreadComments = false
	if err := s.updateItem(ctx, actor, item); err != nil {
		return err
	}
	s.LogInfo(ctx, "Clarification resolved", slog.String("item_id", itemID))
	return nil
}

func (s *discussionService) loadItem(ctx context.Context, itemID string) (*domain.BudgetItem, *domain.OrgTree, error) {
	tree, err := s.LoadTree(ctx)
	if err != nil {
		return nil, nil, err
	}
	item, err := s.itemRepo.FindItemByID(ctx, itemID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find item", slog.String("item_id", itemID))
		}
		return nil, nil, err
	}
	return item, tree, nil
}

func (s *discussionService) saveComment(ctx context.Context, actor *domain.User, itemID, content string, parentCommentID *string) (*domain.BudgetComment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationFailedError("comment content is required")
	}
	comment := domain.BudgetComment{
		CommentID:       uuid.NewString(),
		BudgetItemID:    itemID,
		AuthorID:        actor.UserID,
		AuthorName:      actor.Name,
		Content:         content,
		IsResponse:      parentCommentID != nil,
		ParentCommentID: parentCommentID,
		CreatedAt:       time.Now(),
	}
	if err := s.commentRepo.SaveComment(ctx, comment); err != nil {
		s.LogError(ctx, err, "Failed to save comment", slog.String("item_id", itemID))
		return nil, err
	}
	return &comment, nil
}

func (s *discussionService) updateItem(ctx context.Context, actor *domain.User, item *domain.BudgetItem) error {
	item.Touch(actor.UserID, time.Now())
	if err := s.itemRepo.UpdateItem(ctx, *item); err != nil {
		s.LogError(ctx, err, "Failed to update item discussion state", slog.String("item_id", item.ItemID))
		return err
	}
	return nil
}
