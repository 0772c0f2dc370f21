package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/sopworks/sopflow/internal/service"
)

// Handler exposes the working-copy core over a JSON HTTP API. The acting
// user arrives in the X-User-ID header; authentication happens upstream.
type Handler struct {
	service  *service.WorkingCopyService
	validate *validator.Validate
}

func NewHandler(svc *service.WorkingCopyService) *Handler {
	return &Handler{
		service:  svc,
		validate: validator.New(),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestTimeMiddleware)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/documents", h.CreateDocument)
		r.Get("/documents", h.ListDocuments)
		r.Get("/documents/{documentID}", h.GetDocument)
		r.Get("/documents/{documentID}/versions", h.ListVersionSnapshots)
		r.Get("/documents/{documentID}/versions/{version}", h.GetVersionSnapshot)
		r.Get("/documents/{documentID}/working-copies", h.ListWorkingCopiesForDocument)

		r.Post("/working-copies", h.CreateWorkingCopy)
		r.Get("/working-copies/{workingCopyID}", h.GetWorkingCopy)
		r.Patch("/working-copies/{workingCopyID}", h.UpdateWorkingCopy)
		r.Delete("/working-copies/{workingCopyID}", h.DiscardWorkingCopy)
		r.Post("/working-copies/{workingCopyID}/submit", h.SubmitForReview)
		r.Get("/working-copies/{workingCopyID}/reviews", h.ListReviews)
		r.Post("/working-copies/{workingCopyID}/reviews/{reviewID}/decision", h.RecordReviewDecision)
		r.Get("/working-copies/{workingCopyID}/diff", h.DiffWorkingCopy)

		r.Get("/users/{userID}/working-copies", h.ListWorkingCopiesForUser)

		r.Post("/diff", h.DiffPreview)
	})

	return r
}

type createDocumentRequest struct {
	Title       string `json:"title" validate:"required"`
	Content     string `json:"content"`
	Description string `json:"description"`
	Department  string `json:"department"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
}

func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.actingUser(w, r)
	if !ok {
		return
	}

	var req createDocumentRequest
	if !h.decode(w, r, &req) {
		return
	}

	doc, err := h.service.CreateDocument(r.Context(), userID, service.DocumentFields{
		Title:       req.Title,
		Content:     req.Content,
		Description: req.Description,
		Department:  req.Department,
		Priority:    req.Priority,
		Category:    req.Category,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, doc)
}

func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	docID, ok := pathID(w, r, "documentID")
	if !ok {
		return
	}

	doc, err := h.service.GetDocument(r.Context(), docID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, total, err := h.service.ListDocuments(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"total":     total,
	})
}

func (h *Handler) ListVersionSnapshots(w http.ResponseWriter, r *http.Request) {
	docID, ok := pathID(w, r, "documentID")
	if !ok {
		return
	}

	snapshots, err := h.service.ListVersionSnapshots(r.Context(), docID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"versions": snapshots})
}

func (h *Handler) GetVersionSnapshot(w http.ResponseWriter, r *http.Request) {
	docID, ok := pathID(w, r, "documentID")
	if !ok {
		return
	}

	snapshot, err := h.service.GetVersionSnapshot(r.Context(), docID, chi.URLParam(r, "version"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

type createWorkingCopyRequest struct {
	DocumentID  string            `json:"document_id" validate:"required,uuid"`
	Title       *string           `json:"title"`
	Content     *string           `json:"content"`
	Description *string           `json:"description"`
	Changes     map[string]string `json:"changes"`
}

func (h *Handler) CreateWorkingCopy(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.actingUser(w, r)
	if !ok {
		return
	}

	var req createWorkingCopyRequest
	if !h.decode(w, r, &req) {
		return
	}

	copy, err := h.service.CreateWorkingCopy(r.Context(), uuid.MustParse(req.DocumentID), userID, service.WorkingCopyFields{
		Title:       req.Title,
		Content:     req.Content,
		Description: req.Description,
		Changes:     req.Changes,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, copy)
}

func (h *Handler) GetWorkingCopy(w http.ResponseWriter, r *http.Request) {
	copyID, ok := pathID(w, r, "workingCopyID")
	if !ok {
		return
	}

	copy, err := h.service.GetWorkingCopy(r.Context(), copyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, copy)
}

type updateWorkingCopyRequest struct {
	Revision    int64             `json:"revision" validate:"gte=0"`
	Title       *string           `json:"title"`
	Content     *string           `json:"content"`
	Description *string           `json:"description"`
	Changes     map[string]string `json:"changes"`
}

func (h *Handler) UpdateWorkingCopy(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.actingUser(w, r)
	if !ok {
		return
	}

	copyID, ok := pathID(w, r, "workingCopyID")
	if !ok {
		return
	}

	var req updateWorkingCopyRequest
	if !h.decode(w, r, &req) {
		return
	}

	copy, err := h.service.UpdateWorkingCopy(r.Context(), copyID, userID, req.Revision, service.WorkingCopyFields{
		Title:       req.Title,
		Content:     req.Content,
		Description: req.Description,
		Changes:     req.Changes,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, copy)
}

func (h *Handler) DiscardWorkingCopy(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.actingUser(w, r)
	if !ok {
		return
	}

	copyID, ok := pathID(w, r, "workingCopyID")
	if !ok {
		return
	}

	if err := h.service.DiscardWorkingCopy(r.Context(), copyID, userID); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type submitForReviewRequest struct {
	ReviewerIDs []string `json:"reviewer_ids" validate:"required,min=1,dive,uuid"`
	Summary     string   `json:"summary"`
}

func (h *Handler) SubmitForReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.actingUser(w, r)
	if !ok {
		return
	}

	copyID, ok := pathID(w, r, "workingCopyID")
	if !ok {
		return
	}

	var req submitForReviewRequest
	if !h.decode(w, r, &req) {
		return
	}

	reviewerIDs := make([]uuid.UUID, 0, len(req.ReviewerIDs))
	for _, id := range req.ReviewerIDs {
		reviewerIDs = append(reviewerIDs, uuid.MustParse(id))
	}

	copy, err := h.service.SubmitForReview(r.Context(), copyID, userID, reviewerIDs, req.Summary)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, copy)
}

func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	copyID, ok := pathID(w, r, "workingCopyID")
	if !ok {
		return
	}

	reviews, err := h.service.ListReviews(r.Context(), copyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"reviews": reviews})
}

type recordDecisionRequest struct {
	Status   string `json:"status" validate:"required,oneof=approved rejected changes_requested"`
	Comments string `json:"comments"`
}

func (h *Handler) RecordReviewDecision(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.actingUser(w, r)
	if !ok {
		return
	}

	copyID, ok := pathID(w, r, "workingCopyID")
	if !ok {
		return
	}

	reviewID, ok := pathID(w, r, "reviewID")
	if !ok {
		return
	}

	var req recordDecisionRequest
	if !h.decode(w, r, &req) {
		return
	}

	review, err := h.service.RecordReviewDecision(r.Context(), copyID, reviewID, userID, req.Status, req.Comments)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, review)
}

// DiffWorkingCopy previews a draft's changes against its published document.
func (h *Handler) DiffWorkingCopy(w http.ResponseWriter, r *http.Request) {
	copyID, ok := pathID(w, r, "workingCopyID")
	if !ok {
		return
	}

	copy, err := h.service.GetWorkingCopy(r.Context(), copyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	doc, err := h.service.GetDocument(r.Context(), uuid.MustParse(copy.DocumentID))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"lines": h.service.DiffPreview(doc.Content, copy.Content),
	})
}

type diffPreviewRequest struct {
	Original string `json:"original"`
	Modified string `json:"modified"`
}

func (h *Handler) DiffPreview(w http.ResponseWriter, r *http.Request) {
	var req diffPreviewRequest
	if !h.decode(w, r, &req) {
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"lines": h.service.DiffPreview(req.Original, req.Modified),
	})
}

func (h *Handler) ListWorkingCopiesForDocument(w http.ResponseWriter, r *http.Request) {
	docID, ok := pathID(w, r, "documentID")
	if !ok {
		return
	}

	copies, err := h.service.ListWorkingCopiesForDocument(r.Context(), docID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"working_copies": copies})
}

func (h *Handler) ListWorkingCopiesForUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	copies, err := h.service.ListWorkingCopiesForUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"working_copies": copies})
}

// actingUser reads the authenticated user from the X-User-ID header.
func (h *Handler) actingUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := uuid.Parse(r.Header.Get("X-User-ID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing or malformed X-User-ID header")
		return uuid.Nil, false
	}

	return userID, true
}

// decode unmarshals and validates a JSON request body.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return false
	}

	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return false
	}

	return true
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		respondError(w, http.StatusBadRequest, "malformed "+param)
		return uuid.Nil, false
	}

	return id, true
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrConflict):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalid):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
