package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/quillfeed/quillfeed/internal/model"
)

// ErrCommentNotFound conflates "no such comment" with "comment owned by
// someone else", mirroring ErrPostNotFound.
var ErrCommentNotFound = errors.New("comment not found")

const commentColumns = "id, post_id, author_id, content, created_at, updated_at"

// CreateComment inserts a new comment and returns the stored row.
// A foreign key violation on post_id surfaces as ErrPostNotFound.
func (r *Repository) CreateComment(ctx context.Context, comment *model.Comment) (*model.Comment, error) {
	query := `
		INSERT INTO comments (id, post_id, author_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + commentColumns

	stored, err := scanComment(r.pool.QueryRow(ctx, query,
		comment.ID,
		comment.PostID,
		comment.AuthorID,
		comment.Content,
		comment.CreatedAt,
		comment.UpdatedAt,
	))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return stored, nil
}

// ListCommentsByPost retrieves all comments on a post, oldest first.
func (r *Repository) ListCommentsByPost(ctx context.Context, postID uuid.UUID) ([]*model.Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*model.Comment
	for rows.Next() {
		var comment model.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.PostID,
			&comment.AuthorID,
			&comment.Content,
			&comment.CreatedAt,
			&comment.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, &comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}

	return comments, nil
}

// DeleteComment deletes a comment on behalf of requesterID. The ownership
// predicate is part of the DELETE itself.
func (r *Repository) DeleteComment(ctx context.Context, commentID, requesterID uuid.UUID) error {
	query := `DELETE FROM comments WHERE id = $1 AND author_id = $2`

	result, err := r.pool.Exec(ctx, query, commentID, requesterID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrCommentNotFound
	}

	return nil
}

// scanComment scans a single row into a Comment model.
func scanComment(row pgx.Row) (*model.Comment, error) {
	var comment model.Comment
	err := row.Scan(
		&comment.ID,
		&comment.PostID,
		&comment.AuthorID,
		&comment.Content,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	return &comment, err
}
