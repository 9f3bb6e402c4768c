package documents

import "time"

// Document represents one uploaded PDF and its metadata, owned by a user.
type Document struct {
	ID           string
	UserID       string
	FileName     string
	DocumentType string
	PDFURL       string
	ProcessedAt  time.Time
}

// Field is one extracted key/value pair tied to a Document.
type Field struct {
	ID         string
	DocumentID string
	UserID     string
	Name       string
	Value      string
}
