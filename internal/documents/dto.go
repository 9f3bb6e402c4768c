package documents

import "time"

type processResponse struct {
	DocumentID string            `json:"document_id"`
	Fields     map[string]string `json:"fields"`
	PDFURL     string            `json:"pdf_url,omitempty"`
}

type documentResponse struct {
	ID           string            `json:"id"`
	FileName     string            `json:"file_name"`
	DocumentType string            `json:"document_type"`
	PDFURL       string            `json:"pdf_url,omitempty"`
	ProcessedAt  time.Time         `json:"processed_at"`
	Fields       map[string]string `json:"fields"`
}

type searchMatchResponse struct {
	FieldName    string `json:"field_name"`
	FieldValue   string `json:"field_value"`
	DocumentName string `json:"document_name"`
	PDFURL       string `json:"pdf_url,omitempty"`
	MatchScore   int    `json:"match_score"`
}

type categorizeResponse struct {
	Categories map[string]map[string]string `json:"categories"`
}
