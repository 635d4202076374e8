// ===============================
// internal/services/comment.go - Episode comments
// ===============================

package services

import (
	"context"
	"strings"

	"animax/internal/models"
)

type AddCommentInput struct {
	AnimeID   string `json:"animeId" validate:"required"`
	EpisodeID string `json:"episodeId" validate:"required"`
	Comment   string `json:"comment" validate:"required,max=2000"`
}

type UpdateCommentInput struct {
	Comment string `json:"comment" validate:"required,max=2000"`
}

type CommentService struct {
	engagement EngagementStore
	catalog    CatalogStore
	authz      Authorizer
}

func NewCommentService(engagement EngagementStore, catalog CatalogStore, authz Authorizer) *CommentService {
	return &CommentService{
		engagement: engagement,
		catalog:    catalog,
		authz:      authz,
	}
}

func (s *CommentService) AddComment(ctx context.Context, identity models.Identity, input AddCommentInput) (*models.Comment, error) {
	if err := authorize(s.authz, identity, ResourceComment, ActionCreate); err != nil {
		return nil, err
	}
	input.Comment = strings.TrimSpace(input.Comment)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	episode, err := s.catalog.GetEpisodeByID(ctx, input.EpisodeID)
	if err != nil {
		return nil, storeError(err, "Episode not found")
	}
	if episode.AnimeID != input.AnimeID {
		return nil, NewValidationError("Episode does not belong to the given anime")
	}

	comment := &models.Comment{
		UserID:    identity.ID,
		AnimeID:   input.AnimeID,
		EpisodeID: episode.ID,
		Comment:   input.Comment,
	}
	if err := s.engagement.CreateComment(ctx, comment); err != nil {
		return nil, NewInternalError("failed to add comment", err)
	}
	return comment, nil
}

// GetCommentsByEpisode returns newest first with author details.
func (s *CommentService) GetCommentsByEpisode(ctx context.Context, episodeID string) ([]models.Comment, error) {
	if _, err := s.catalog.GetEpisodeByID(ctx, episodeID); err != nil {
		return nil, storeError(err, "Episode not found")
	}

	comments, err := s.engagement.ListCommentsByEpisode(ctx, episodeID)
	if err != nil {
		return nil, NewInternalError("failed to load comments", err)
	}
	return comments, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, identity models.Identity, commentID string, input UpdateCommentInput) (*models.Comment, error) {
	if err := authorize(s.authz, identity, ResourceComment, ActionUpdate); err != nil {
		return nil, err
	}
	input.Comment = strings.TrimSpace(input.Comment)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	comment, err := s.engagement.GetComment(ctx, commentID)
	if err != nil {
		return nil, storeError(err, "Comment not found")
	}
	if !comment.IsOwnedBy(identity.ID) {
		return nil, NewForbiddenError("You can only edit your own comments")
	}

	comment.Comment = input.Comment
	if err := s.engagement.UpdateComment(ctx, comment); err != nil {
		return nil, storeError(err, "Comment not found")
	}
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, identity models.Identity, commentID string) error {
	if err := authorize(s.authz, identity, ResourceComment, ActionDelete); err != nil {
		return err
	}

	comment, err := s.engagement.GetComment(ctx, commentID)
	if err != nil {
		return storeError(err, "Comment not found")
	}
	if !comment.IsOwnedBy(identity.ID) {
		return NewForbiddenError("You can only delete your own comments")
	}

	return storeError(s.engagement.DeleteComment(ctx, comment.ID), "Comment not found")
}
