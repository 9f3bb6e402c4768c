package documents

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"dockeeper-backend/internal/shared/server/middleware"
	"dockeeper-backend/internal/shared/server/respond"
	"dockeeper-backend/internal/shared/telemetry"
)

const maxUploadBytes = 10 << 20

// Handler serves the document endpoints.
type Handler struct {
	Service *Service
}

// RegisterRoutes mounts the document routes on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/process", h.process)
	rg.GET("/documents", h.list)
	rg.GET("/documents/search", h.search)
	rg.GET("/documents/categorize", h.categorize)
}

func (h *Handler) process(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		respond.Error(c, http.StatusBadRequest, "validation_error", "only PDF files are supported", nil)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "failed to read file", nil)
		return
	}
	defer f.Close()

	pdfBytes, err := io.ReadAll(f)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "failed to read file", nil)
		return
	}

	result, err := h.Service.Process(c.Request.Context(), userID, fileHeader.Filename, pdfBytes)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicate):
			respond.Error(c, http.StatusBadRequest, "duplicate_document", "document with this file name already exists", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			telemetry.Error("documents.process.failed", map[string]any{
				"err":        err.Error(),
				"user_id":    userID,
				"file_name":  fileHeader.Filename,
				"request_id": c.GetString("requestId"),
			})
			respond.Error(c, http.StatusInternalServerError, "internal_error", err.Error(), nil)
		}
		return
	}

	c.Set("documentId", result.DocumentID)
	respond.JSON(c, http.StatusOK, processResponse{
		DocumentID: result.DocumentID,
		Fields:     result.Fields,
		PDFURL:     result.PDFURL,
	})
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	docs, err := h.Service.List(c.Request.Context(), userID)
	if err != nil {
		telemetry.Error("documents.list.failed", map[string]any{
			"err":        err.Error(),
			"user_id":    userID,
			"request_id": c.GetString("requestId"),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}

	out := make([]documentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, documentResponse{
			ID:           doc.ID,
			FileName:     doc.FileName,
			DocumentType: doc.DocumentType,
			PDFURL:       doc.PDFURL,
			ProcessedAt:  doc.ProcessedAt,
			Fields:       doc.Fields,
		})
	}
	respond.JSON(c, http.StatusOK, out)
}

func (h *Handler) search(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "query is required", nil)
		return
	}

	minScore := DefaultMinScore
	if raw := strings.TrimSpace(c.Query("min_score")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 || parsed > 100 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "min_score must be an integer between 0 and 100", nil)
			return
		}
		minScore = parsed
	}

	results, err := h.Service.Search(c.Request.Context(), userID, query, minScore)
	if err != nil {
		telemetry.Error("documents.search.failed", map[string]any{
			"err":        err.Error(),
			"user_id":    userID,
			"request_id": c.GetString("requestId"),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to search documents", nil)
		return
	}

	out := make([]searchMatchResponse, 0, len(results))
	for _, r := range results {
		out = append(out, searchMatchResponse{
			FieldName:    r.FieldName,
			FieldValue:   r.FieldValue,
			DocumentName: r.DocumentName,
			PDFURL:       r.PDFURL,
			MatchScore:   r.MatchScore,
		})
	}
	respond.JSON(c, http.StatusOK, out)
}

func (h *Handler) categorize(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	categories, err := h.Service.Categorize(c.Request.Context(), userID)
	if err != nil {
		telemetry.Error("documents.categorize.failed", map[string]any{
			"err":        err.Error(),
			"user_id":    userID,
			"request_id": c.GetString("requestId"),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to categorize fields", nil)
		return
	}

	respond.JSON(c, http.StatusOK, categorizeResponse{Categories: categories})
}
