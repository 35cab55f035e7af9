package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/quillfeed/quillfeed/internal/model"
)

// ErrLikeNotFound indicates the (user, post) like pair does not exist.
var ErrLikeNotFound = errors.New("like not found")

// LikePost records that a user liked a post. Liking an already-liked post
// is a no-op, so the operation is idempotent. A foreign key violation on
// post_id surfaces as ErrPostNotFound.
func (r *Repository) LikePost(ctx context.Context, userID, postID uuid.UUID) (*model.Like, error) {
	query := `
		INSERT INTO likes (user_id, post_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, post_id) DO NOTHING
		RETURNING created_at
	`

	like := &model.Like{UserID: userID, PostID: postID}

	err := r.pool.QueryRow(ctx, query, userID, postID).Scan(&like.CreatedAt)
	if err == nil {
		return like, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		if isForeignKeyViolation(err) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to like post: %w", err)
	}

	// Conflict path: the like already existed, so the INSERT returned no
	// row. Read the original timestamp back. A concurrent unlike can make
	// this read miss too; the like call still succeeded, so report the
	// idempotent result rather than an error.
	err = r.pool.QueryRow(ctx,
		`SELECT created_at FROM likes WHERE user_id = $1 AND post_id = $2`,
		userID, postID,
	).Scan(&like.CreatedAt)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to read like: %w", err)
	}

	return like, nil
}

// UnlikePost removes a user's like from a post. Ownership is inherent in
// the composite key: the DELETE predicate names the requester directly.
func (r *Repository) UnlikePost(ctx context.Context, userID, postID uuid.UUID) error {
	query := `DELETE FROM likes WHERE user_id = $1 AND post_id = $2`

	result, err := r.pool.Exec(ctx, query, userID, postID)
	if err != nil {
		return fmt.Errorf("failed to unlike post: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrLikeNotFound
	}

	return nil
}

// CountLikes returns the number of likes on a post.
func (r *Repository) CountLikes(ctx context.Context, postID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM likes WHERE post_id = $1`,
		postID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}

	return count, nil
}
