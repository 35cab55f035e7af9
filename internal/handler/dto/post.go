package dto

import (
	"time"

	"github.com/quillfeed/quillfeed/internal/model"
)

// CreatePostRequest represents the request body for creating a post.
type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdatePostRequest represents the request body for rewriting a post.
type UpdatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PostResponse represents a post in API responses.
type PostResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Views     int64     `json:"views"`
	Likes     *int64    `json:"likes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostListResponse represents a paginated list of posts.
type PostListResponse struct {
	Data []PostResponse `json:"data"`
	Page int            `json:"page"`
}

// CreateCommentRequest represents the request body for commenting on a post.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// CommentResponse represents a comment in API responses.
type CommentResponse struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentListResponse represents all comments on a post.
type CommentListResponse struct {
	Data []CommentResponse `json:"data"`
}

// LikeResponse represents a recorded like.
type LikeResponse struct {
	UserID    string    `json:"user_id"`
	PostID    string    `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPostResponse converts a Post model to PostResponse DTO.
func ToPostResponse(post *model.Post) *PostResponse {
	return &PostResponse{
		ID:        post.ID.String(),
		AuthorID:  post.AuthorID.String(),
		Title:     post.Title,
		Content:   post.Content,
		Views:     post.Views,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}

// ToPostListResponse converts a slice of Post models to PostListResponse.
func ToPostListResponse(posts []*model.Post, page int) *PostListResponse {
	responses := make([]PostResponse, len(posts))
	for i, post := range posts {
		responses[i] = *ToPostResponse(post)
	}
	return &PostListResponse{Data: responses, Page: page}
}

// ToCommentResponse converts a Comment model to CommentResponse DTO.
func ToCommentResponse(comment *model.Comment) *CommentResponse {
	return &CommentResponse{
		ID:        comment.ID.String(),
		PostID:    comment.PostID.String(),
		AuthorID:  comment.AuthorID.String(),
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}

// ToCommentListResponse converts a slice of Comment models.
func ToCommentListResponse(comments []*model.Comment) *CommentListResponse {
	responses := make([]CommentResponse, len(comments))
	for i, comment := range comments {
		responses[i] = *ToCommentResponse(comment)
	}
	return &CommentListResponse{Data: responses}
}

// ToLikeResponse converts a Like model to LikeResponse DTO.
func ToLikeResponse(like *model.Like) *LikeResponse {
	return &LikeResponse{
		UserID:    like.UserID.String(),
		PostID:    like.PostID.String(),
		CreatedAt: like.CreatedAt,
	}
}
