package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quillfeed/quillfeed/internal/metrics"
	"github.com/quillfeed/quillfeed/internal/model"
	"github.com/quillfeed/quillfeed/internal/repository"
)

// Post service errors.
var (
	ErrTitleRequired   = errors.New("title is required")
	ErrTitleTooLong    = errors.New("title exceeds maximum length")
	ErrContentRequired = errors.New("content is required")
	// ErrPostNotFound covers a missing post and, on mutations, a post
	// owned by another user. The two are intentionally indistinguishable.
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotLiked        = errors.New("post not liked")
)

const maxTitleLength = 200

// PostService handles post, comment and like business logic.
type PostService struct {
	repo    *repository.Repository
	metrics metrics.Recorder
}

// NewPostService creates a new PostService.
func NewPostService(repo *repository.Repository, recorder metrics.Recorder) *PostService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &PostService{
		repo:    repo,
		metrics: recorder,
	}
}

// validatePostBody checks title and content before any database work.
func validatePostBody(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	if len(title) > maxTitleLength {
		return ErrTitleTooLong
	}
	if strings.TrimSpace(content) == "" {
		return ErrContentRequired
	}
	return nil
}

// CreatePost creates a post owned by authorID.
func (s *PostService) CreatePost(ctx context.Context, authorID uuid.UUID, title, content string) (*model.Post, error) {
	if err := validatePostBody(title, content); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	post := &model.Post{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	stored, err := s.repo.CreatePost(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.metrics.IncPostCreated()

	return stored, nil
}

// GetPost fetches a post and records the view. The view counter is best
// effort: a failed increment does not fail the read.
func (s *PostService) GetPost(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	post, err := s.repo.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	if err := s.repo.IncrementViews(ctx, id); err == nil {
		post.Views++
	}

	return post, nil
}

// ListPosts returns a page of posts, newest first.
func (s *PostService) ListPosts(ctx context.Context, page, limit int) ([]*model.Post, error) {
	page, limit = NormalizePage(page, limit)

	posts, err := s.repo.ListPosts(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// ListPostsByAuthor returns all posts owned by authorID, newest first.
func (s *PostService) ListPostsByAuthor(ctx context.Context, authorID uuid.UUID) ([]*model.Post, error) {
	posts, err := s.repo.ListPostsByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// UpdatePost rewrites a post on behalf of requesterID. The ownership check
// happens inside the repository's conditional UPDATE.
func (s *PostService) UpdatePost(ctx context.Context, postID, requesterID uuid.UUID, title, content string) (*model.Post, error) {
	if err := validatePostBody(title, content); err != nil {
		return nil, err
	}

	post, err := s.repo.UpdatePost(ctx, postID, requesterID, title, content)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	s.metrics.IncPostUpdated()

	return post, nil
}

// DeletePost deletes a post on behalf of requesterID.
func (s *PostService) DeletePost(ctx context.Context, postID, requesterID uuid.UUID) error {
	if err := s.repo.DeletePost(ctx, postID, requesterID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.metrics.IncPostDeleted()

	return nil
}

// AddComment creates a comment on a post.
func (s *PostService) AddComment(ctx context.Context, postID, authorID uuid.UUID, content string) (*model.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrContentRequired
	}

	now := time.Now().UTC()
	comment := &model.Comment{
		ID:        uuid.New(),
		PostID:    postID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	stored, err := s.repo.CreateComment(ctx, comment)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.metrics.IncCommentCreated()

	return stored, nil
}

// ListComments returns all comments on a post, oldest first.
func (s *PostService) ListComments(ctx context.Context, postID uuid.UUID) ([]*model.Comment, error) {
	comments, err := s.repo.ListCommentsByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// DeleteComment deletes a comment on behalf of requesterID.
func (s *PostService) DeleteComment(ctx context.Context, commentID, requesterID uuid.UUID) error {
	if err := s.repo.DeleteComment(ctx, commentID, requesterID); err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	s.metrics.IncCommentDeleted()

	return nil
}

// LikePost records a like; repeated likes are idempotent.
func (s *PostService) LikePost(ctx context.Context, userID, postID uuid.UUID) (*model.Like, error) {
	like, err := s.repo.LikePost(ctx, userID, postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to like post: %w", err)
	}
	return like, nil
}

// UnlikePost removes the requester's like.
func (s *PostService) UnlikePost(ctx context.Context, userID, postID uuid.UUID) error {
	if err := s.repo.UnlikePost(ctx, userID, postID); err != nil {
		if errors.Is(err, repository.ErrLikeNotFound) {
			return ErrNotLiked
		}
		return fmt.Errorf("failed to unlike post: %w", err)
	}
	return nil
}

// CountLikes returns the number of likes on a post.
func (s *PostService) CountLikes(ctx context.Context, postID uuid.UUID) (int64, error) {
	count, err := s.repo.CountLikes(ctx, postID)
	if err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}
