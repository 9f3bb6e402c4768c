package documents

import (
	"sort"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// DefaultMinScore is the search threshold applied when the caller does not
// provide one, on the 0-100 partial-ratio scale.
const DefaultMinScore = 60

// SearchResult is one field pair that matched a search query.
type SearchResult struct {
	FieldName    string
	FieldValue   string
	DocumentName string
	PDFURL       string
	MatchScore   int
}

// scoreFields fuzzy-compares the query against every field name and value and
// keeps pairs whose best score reaches minScore, sorted by score descending.
// Ties keep discovery order.
func scoreFields(query string, docs []Document, fields []Field, minScore int) []SearchResult {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []SearchResult{}
	}

	byDoc := make(map[string]Document, len(docs))
	for _, doc := range docs {
		byDoc[doc.ID] = doc
	}

	results := []SearchResult{}
	for _, f := range fields {
		doc, ok := byDoc[f.DocumentID]
		if !ok {
			continue
		}

		nameScore := fuzzy.PartialRatio(query, strings.ToLower(f.Name))
		valueScore := fuzzy.PartialRatio(query, strings.ToLower(f.Value))
		score := nameScore
		if valueScore > score {
			score = valueScore
		}
		if score < minScore {
			continue
		}

		results = append(results, SearchResult{
			FieldName:    f.Name,
			FieldValue:   f.Value,
			DocumentName: doc.FileName,
			PDFURL:       doc.PDFURL,
			MatchScore:   score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})
	return results
}
