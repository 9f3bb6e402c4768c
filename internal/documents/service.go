package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"dockeeper-backend/internal/extraction"
	"dockeeper-backend/internal/llm"
	"dockeeper-backend/internal/shared/metrics"
	"dockeeper-backend/internal/shared/storage/object"
	"dockeeper-backend/internal/shared/telemetry"
	"dockeeper-backend/internal/shared/util"
)

// Service contains business logic for documents.
type Service struct {
	Repo  Repo
	Store object.ObjectStore
	LLM   llm.Client
}

// ProcessResult is the outcome of a successful upload/extraction.
type ProcessResult struct {
	DocumentID string
	Fields     map[string]string
	PDFURL     string
}

// DocumentWithFields pairs a document with its extracted field mapping.
type DocumentWithFields struct {
	Document
	Fields map[string]string
}

// Process runs the upload pipeline: duplicate check, model extraction,
// normalization, blob upload, and persistence of the document and its fields.
func (s *Service) Process(ctx context.Context, userID, fileName string, pdfBytes []byte) (ProcessResult, error) {
	if userID == "" {
		return ProcessResult{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	sanitizedName, err := util.SanitizeFileName(fileName)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if err := validatePDF(pdfBytes); err != nil {
		return ProcessResult{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	exists, err := s.Repo.ExistsByUserAndName(ctx, userID, fileName)
	if err != nil {
		return ProcessResult{}, err
	}
	if exists {
		return ProcessResult{}, ErrDuplicate
	}

	metrics.IncExtractionStarted()
	start := time.Now()

	raw, err := s.LLM.ExtractDocument(ctx, pdfBytes)
	if err != nil {
		metrics.IncExtractionFailed()
		return ProcessResult{}, fmt.Errorf("extract document: %w", err)
	}

	result, err := extraction.ParseExtraction(raw)
	if err != nil {
		metrics.IncExtractionFailed()
		return ProcessResult{}, err
	}

	metrics.IncExtractionCompleted()
	metrics.ObserveExtractionDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)

	storageKey := fmt.Sprintf("documents/%s_%s", time.Now().UTC().Format("20060102_150405"), sanitizedName)
	pdfURL, size, err := s.Store.Save(ctx, storageKey, "application/pdf", bytes.NewReader(pdfBytes))
	if err != nil {
		return ProcessResult{}, fmt.Errorf("upload pdf: %w", err)
	}

	doc := Document{
		ID:           uuid.NewString(),
		UserID:       userID,
		FileName:     fileName,
		DocumentType: result.DocumentType,
		PDFURL:       pdfURL,
		ProcessedAt:  time.Now().UTC(),
	}

	fields := make([]Field, 0, len(result.Fields))
	for name, value := range result.Fields {
		fields = append(fields, Field{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			UserID:     userID,
			Name:       name,
			Value:      value,
		})
	}

	if err := s.Repo.CreateWithFields(ctx, doc, fields); err != nil {
		return ProcessResult{}, err
	}

	telemetry.Info("document.processed", map[string]any{
		"user_id":       userID,
		"document_id":   doc.ID,
		"document_type": doc.DocumentType,
		"field_count":   len(fields),
		"size_bytes":    size,
	})

	return ProcessResult{
		DocumentID: doc.ID,
		Fields:     result.Fields,
		PDFURL:     pdfURL,
	}, nil
}

// List returns all documents for the user, newest first, each joined with
// its field mapping.
func (s *Service) List(ctx context.Context, userID string) ([]DocumentWithFields, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}

	docs, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	fields, err := s.Repo.ListFieldsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byDoc := make(map[string]map[string]string, len(docs))
	for _, f := range fields {
		m, ok := byDoc[f.DocumentID]
		if !ok {
			m = make(map[string]string)
			byDoc[f.DocumentID] = m
		}
		m[f.Name] = f.Value
	}

	out := make([]DocumentWithFields, 0, len(docs))
	for _, doc := range docs {
		m := byDoc[doc.ID]
		if m == nil {
			m = map[string]string{}
		}
		out = append(out, DocumentWithFields{Document: doc, Fields: m})
	}
	return out, nil
}

// Search fuzzy-matches the query against every field name and value the user
// owns and returns matches scoring at least minScore, best first.
func (s *Service) Search(ctx context.Context, userID, query string, minScore int) ([]SearchResult, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}

	metrics.IncSearchQueries()

	docs, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	fields, err := s.Repo.ListFieldsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return scoreFields(query, docs, fields, minScore), nil
}

// Categorize merges all of the user's fields by name and asks the model to
// group them into the fixed taxonomy. Any model or parse failure degrades to
// an empty category mapping.
func (s *Service) Categorize(ctx context.Context, userID string) (map[string]map[string]string, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}

	docs, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	fields, err := s.Repo.ListFieldsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Merge by field name; when a name repeats across documents the most
	// recently processed document wins.
	docOrder := make(map[string]int, len(docs))
	for i, doc := range docs {
		docOrder[doc.ID] = len(docs) - i
	}
	merged := make(map[string]string, len(fields))
	mergedFrom := make(map[string]int, len(fields))
	for _, f := range fields {
		rank := docOrder[f.DocumentID]
		if prev, ok := mergedFrom[f.Name]; ok && prev >= rank {
			continue
		}
		merged[f.Name] = f.Value
		mergedFrom[f.Name] = rank
	}

	if len(merged) == 0 {
		return map[string]map[string]string{}, nil
	}

	fieldsJSON, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return nil, err
	}

	raw, err := s.LLM.CategorizeFields(ctx, string(fieldsJSON))
	if err != nil {
		telemetry.Warn("categorize.model_failed", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		return map[string]map[string]string{}, nil
	}

	categories, err := extraction.ParseCategories(raw)
	if err != nil {
		telemetry.Warn("categorize.parse_failed", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		return map[string]map[string]string{}, nil
	}
	return categories, nil
}

// validatePDF rejects uploads the PDF parser cannot read, before any model
// call is spent on them.
func validatePDF(pdfBytes []byte) error {
	if len(pdfBytes) == 0 {
		return errors.New("file is empty")
	}
	if _, err := pdf.NewReader(bytes.NewReader(pdfBytes), int64(len(pdfBytes))); err != nil {
		return errors.New("file is not a valid PDF")
	}
	return nil
}
