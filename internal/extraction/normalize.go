package extraction

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Result is the structured outcome of normalizing a model extraction response.
type Result struct {
	Fields       map[string]string
	DocumentType string
}

type modelField struct {
	FieldName  string `json:"field_name"`
	FieldValue any    `json:"field_value"`
}

type extractionPayload struct {
	Fields       []modelField `json:"fields"`
	DocumentType string       `json:"document_type"`
}

// ParseExtraction normalizes a raw model response into a field mapping and a
// document type. The response is expected to be a JSON object, possibly
// wrapped in a Markdown code fence. Pairs with a missing or empty name or
// value are dropped.
func ParseExtraction(raw string) (Result, error) {
	cleaned := StripFences(raw)

	var payload extractionPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return Result{}, fmt.Errorf("parse extraction response: %w", err)
	}
	if strings.TrimSpace(payload.DocumentType) == "" {
		return Result{}, fmt.Errorf("extraction response missing document_type")
	}

	fields := make(map[string]string, len(payload.Fields))
	for _, f := range payload.Fields {
		name := strings.TrimSpace(f.FieldName)
		value := strings.TrimSpace(stringify(f.FieldValue))
		if name == "" || value == "" {
			continue
		}
		fields[name] = value
	}

	return Result{
		Fields:       fields,
		DocumentType: strings.TrimSpace(payload.DocumentType),
	}, nil
}

type categoriesPayload struct {
	Categories map[string]map[string]any `json:"categories"`
}

// ParseCategories normalizes a raw categorization response into a mapping
// from group name to field mapping. Line comments the model sometimes emits
// inside the JSON are dropped before parsing. A response that parses but does
// not carry the expected shape yields an empty mapping rather than an error.
func ParseCategories(raw string) (map[string]map[string]string, error) {
	cleaned := stripLineComments(StripFences(raw))

	var payload categoriesPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("parse categorization response: %w", err)
	}

	categories := make(map[string]map[string]string, len(payload.Categories))
	for group, fields := range payload.Categories {
		group = strings.TrimSpace(group)
		if group == "" || len(fields) == 0 {
			continue
		}
		mapped := make(map[string]string, len(fields))
		for name, value := range fields {
			name = strings.TrimSpace(name)
			v := strings.TrimSpace(stringify(value))
			if name == "" || v == "" {
				continue
			}
			mapped[name] = v
		}
		if len(mapped) > 0 {
			categories[group] = mapped
		}
	}
	return categories, nil
}

// StripFences removes Markdown code-fence delimiters surrounding embedded
// JSON. A response that starts with a fence (with or without a language tag)
// has its delimiters stripped; otherwise, if a fenced block appears anywhere,
// the substring between the first opening and last closing fence is kept.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.Contains(s, "```") {
		return s
	}

	if strings.HasPrefix(s, "```") {
		s = s[3:]
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && isFenceTag(s[:nl]) {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "json")
		}
		if end := strings.LastIndex(s, "```"); end >= 0 {
			s = s[:end]
		}
		return strings.TrimSpace(s)
	}

	start := strings.Index(s, "```")
	end := strings.LastIndex(s, "```")
	if end > start {
		inner := s[start+3 : end]
		inner = strings.TrimPrefix(strings.TrimSpace(inner), "json")
		return strings.TrimSpace(inner)
	}
	return s
}

// isFenceTag reports whether the text between an opening fence and the first
// newline is a language tag (or nothing) rather than content.
func isFenceTag(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) > 16 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

// stripLineComments drops lines that are nothing but a // comment, which the
// model occasionally inserts into otherwise valid JSON.
func stripLineComments(s string) string {
	if !strings.Contains(s, "//") {
		return s
	}
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "//") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// stringify renders a JSON value the way the persisted field values expect:
// numbers without a trailing exponent, booleans as true/false, nulls empty.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
