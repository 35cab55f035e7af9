package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quillfeed/quillfeed/internal/auth"
	"github.com/quillfeed/quillfeed/internal/handler/dto"
	"github.com/quillfeed/quillfeed/internal/middleware"
	"github.com/quillfeed/quillfeed/internal/service"
)

// PostHandler handles post, comment and like endpoints.
type PostHandler struct {
	svc    *service.PostService
	logger *slog.Logger
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(svc *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/v1/posts.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	var req dto.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	post, err := h.svc.CreatePost(r.Context(), identity.UserID, req.Title, req.Content)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("post_created",
		"post_id", post.ID.String(),
		"author_id", identity.UserID.String(),
		"request_id", middleware.GetRequestID(r.Context()),
	)

	writeJSON(w, http.StatusCreated, dto.ToPostResponse(post))
}

// Get handles GET /api/v1/posts/{id}. Public; records the view and
// includes the like count.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	post, err := h.svc.GetPost(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	response := dto.ToPostResponse(post)
	if likes, err := h.svc.CountLikes(r.Context(), id); err == nil {
		response.Likes = &likes
	}

	writeJSON(w, http.StatusOK, response)
}

// List handles GET /api/v1/posts. Public, paginated, newest first.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePage(r)

	posts, err := h.svc.ListPosts(r.Context(), page, limit)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToPostListResponse(posts, page))
}

// ListMine handles GET /api/v1/users/me/posts.
func (h *PostHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	posts, err := h.svc.ListPostsByAuthor(r.Context(), identity.UserID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToPostListResponse(posts, 1))
}

// Update handles PUT /api/v1/posts/{id}. The requester must own the post;
// a post that is missing or owned by someone else answers 404 either way.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req dto.UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	post, err := h.svc.UpdatePost(r.Context(), id, identity.UserID, req.Title, req.Content)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("post_updated",
		"post_id", post.ID.String(),
		"request_id", middleware.GetRequestID(r.Context()),
	)

	writeJSON(w, http.StatusOK, dto.ToPostResponse(post))
}

// Delete handles DELETE /api/v1/posts/{id}.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.DeletePost(r.Context(), id, identity.UserID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("post_deleted",
		"post_id", id.String(),
		"request_id", middleware.GetRequestID(r.Context()),
	)

	w.WriteHeader(http.StatusNoContent)
}

// CreateComment handles POST /api/v1/posts/{id}/comments.
func (h *PostHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	postID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	comment, err := h.svc.AddComment(r.Context(), postID, identity.UserID, req.Content)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("comment_created",
		"comment_id", comment.ID.String(),
		"post_id", postID.String(),
		"request_id", middleware.GetRequestID(r.Context()),
	)

	writeJSON(w, http.StatusCreated, dto.ToCommentResponse(comment))
}

// ListComments handles GET /api/v1/posts/{id}/comments. Public.
func (h *PostHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	comments, err := h.svc.ListComments(r.Context(), postID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToCommentListResponse(comments))
}

// DeleteComment handles DELETE /api/v1/posts/{id}/comments/{commentID}.
func (h *PostHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	commentID, ok := parseIDParam(w, r, "commentID")
	if !ok {
		return
	}

	if err := h.svc.DeleteComment(r.Context(), commentID, identity.UserID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Like handles PUT /api/v1/posts/{id}/like. Idempotent: liking twice
// answers the same as liking once.
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	postID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	like, err := h.svc.LikePost(r.Context(), identity.UserID, postID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToLikeResponse(like))
}

// Unlike handles DELETE /api/v1/posts/{id}/like.
func (h *PostHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	postID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.UnlikePost(r.Context(), identity.UserID, postID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps post service errors to HTTP responses.
func (h *PostHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrTitleRequired):
		writeError(w, http.StatusBadRequest, "TITLE_REQUIRED", "Title is required")
	case errors.Is(err, service.ErrTitleTooLong):
		writeError(w, http.StatusBadRequest, "TITLE_TOO_LONG", "Title exceeds maximum length")
	case errors.Is(err, service.ErrContentRequired):
		writeError(w, http.StatusBadRequest, "CONTENT_REQUIRED", "Content is required")
	case errors.Is(err, service.ErrPostNotFound):
		writeError(w, http.StatusNotFound, "POST_NOT_FOUND", "Post not found")
	case errors.Is(err, service.ErrCommentNotFound):
		writeError(w, http.StatusNotFound, "COMMENT_NOT_FOUND", "Comment not found")
	case errors.Is(err, service.ErrNotLiked):
		writeError(w, http.StatusNotFound, "NOT_LIKED", "Post not liked")
	default:
		h.logger.Error("internal_error",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// parseIDParam parses a UUID path parameter, answering 400 on failure.
func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid identifier")
		return uuid.Nil, false
	}
	return id, true
}
