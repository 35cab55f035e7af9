package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/quillfeed/quillfeed/internal/model"
)

// Common errors for post repository operations.
//
// ErrPostNotFound covers both "no such post" and "post owned by someone
// else" on gated mutations: the conditional statement affects zero rows in
// either case, and keeping the outcomes indistinguishable avoids leaking
// resource existence to non-owners.
var ErrPostNotFound = errors.New("post not found")

const postColumns = "id, author_id, title, content, views, created_at, updated_at"

// CreatePost inserts a new post and returns the stored row.
// The author recorded here is immutable for the life of the post.
func (r *Repository) CreatePost(ctx context.Context, post *model.Post) (*model.Post, error) {
	query := `
		INSERT INTO posts (id, author_id, title, content, views, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + postColumns

	stored, err := scanPost(r.pool.QueryRow(ctx, query,
		post.ID,
		post.AuthorID,
		post.Title,
		post.Content,
		post.Views,
		post.CreatedAt,
		post.UpdatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return stored, nil
}

// GetPostByID retrieves a post by its ID. Reads are not ownership-gated.
func (r *Repository) GetPostByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	post, err := scanPost(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post by ID: %w", err)
	}

	return post, nil
}

// ListPosts retrieves a page of posts, newest first.
func (r *Repository) ListPosts(ctx context.Context, page, limit int) ([]*model.Post, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	query := `
		SELECT ` + postColumns + `
		FROM posts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	return r.queryPosts(ctx, query, limit, offset)
}

// ListPostsByAuthor retrieves all posts by a given author, newest first.
func (r *Repository) ListPostsByAuthor(ctx context.Context, authorID uuid.UUID) ([]*model.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE author_id = $1
		ORDER BY created_at DESC
	`

	return r.queryPosts(ctx, query, authorID)
}

// UpdatePost updates a post's title and content on behalf of requesterID.
// The ownership check and the mutation are a single conditional statement,
// so a concurrent delete or a non-owner request can never interleave
// between check and write.
func (r *Repository) UpdatePost(ctx context.Context, postID, requesterID uuid.UUID, title, content string) (*model.Post, error) {
	query := `
		UPDATE posts
		SET title = $3, content = $4, updated_at = NOW()
		WHERE id = $1 AND author_id = $2
		RETURNING ` + postColumns

	post, err := scanPost(r.pool.QueryRow(ctx, query, postID, requesterID, title, content))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	return post, nil
}

// DeletePost deletes a post on behalf of requesterID. Same single-statement
// ownership predicate as UpdatePost.
func (r *Repository) DeletePost(ctx context.Context, postID, requesterID uuid.UUID) error {
	query := `DELETE FROM posts WHERE id = $1 AND author_id = $2`

	result, err := r.pool.Exec(ctx, query, postID, requesterID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	return nil
}

// IncrementViews bumps the view counter for a post.
func (r *Repository) IncrementViews(ctx context.Context, postID uuid.UUID) error {
	query := `UPDATE posts SET views = views + 1 WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, postID); err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}

	return nil
}

// queryPosts runs a posts query and scans all rows.
func (r *Repository) queryPosts(ctx context.Context, query string, args ...any) ([]*model.Post, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []*model.Post
	for rows.Next() {
		post, err := scanPostFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	return posts, nil
}

// scanPost scans a single row into a Post model.
func scanPost(row pgx.Row) (*model.Post, error) {
	var post model.Post
	err := row.Scan(
		&post.ID,
		&post.AuthorID,
		&post.Title,
		&post.Content,
		&post.Views,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	return &post, err
}

// scanPostFromRows scans a row from pgx.Rows into a Post model.
func scanPostFromRows(rows pgx.Rows) (*model.Post, error) {
	var post model.Post
	err := rows.Scan(
		&post.ID,
		&post.AuthorID,
		&post.Title,
		&post.Content,
		&post.Views,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	return &post, err
}
