package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dockeeper-backend/internal/documents"
	"dockeeper-backend/internal/shared/config"
	localstore "dockeeper-backend/internal/shared/storage/object/local"
	"dockeeper-backend/internal/users"
)

type stubModel struct {
	extractRaw    string
	categorizeRaw string
}

func (s *stubModel) ExtractDocument(ctx context.Context, pdf []byte) (string, error) {
	return s.extractRaw, nil
}

func (s *stubModel) CategorizeFields(ctx context.Context, fieldsJSON string) (string, error) {
	return s.categorizeRaw, nil
}

func newTestRouter(t *testing.T, model *stubModel) http.Handler {
	t.Helper()
	t.Setenv("JWT_SECRET", "router-test-secret")

	cfg := config.Config{
		Env:             "dev",
		CORSAllowOrigin: []string{"http://localhost:3000"},
	}
	dir := t.TempDir()
	store := localstore.New(dir, "http://localhost:8080")

	userHandler := &users.Handler{Service: &users.Service{Repo: users.NewMemoryRepo()}}
	docHandler := &documents.Handler{Service: &documents.Service{
		Repo:  documents.NewMemoryRepo(),
		Store: store,
		LLM:   model,
	}}

	return NewRouter(Deps{
		Config:        cfg,
		Users:         userHandler,
		Documents:     docHandler,
		LocalFilesDir: dir,
	})
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func signUpAndLogin(t *testing.T, router http.Handler, email string) string {
	t.Helper()
	creds := map[string]string{"email": email, "password": "a long password"}
	if rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/signup", "", creds); rec.Code != http.StatusOK {
		t.Fatalf("signup status = %d body = %s", rec.Code, rec.Body.String())
	}
	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", creds)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d body = %s", rec.Code, rec.Body.String())
	}
	var login struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, rec, &login)
	if login.AccessToken == "" {
		t.Fatal("empty access token")
	}
	return login.AccessToken
}

func uploadPDF(t *testing.T, router http.Handler, token, fileName string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(testPDF()); err != nil {
		t.Fatal(err)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/process", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// testPDF builds a minimal single-page PDF with a correct xref table.
func testPDF() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, 4)
	writeObj := func(n int, body string) {
		offsets[n] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, body)
	}
	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	writeObj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	xrefPos := buf.Len()
	buf.WriteString("xref\n0 4\n")
	buf.WriteString("0000000000 65535 f \n")
	for n := 1; n <= 3; n++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[n])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 4 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xrefPos)
	return buf.Bytes()
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t, &stubModel{})

	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := doJSON(t, router, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rec.Code)
		}
		var body map[string]string
		decode(t, rec, &body)
		if body["status"] != "ok" {
			t.Fatalf("%s body = %v", path, body)
		}
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t, &stubModel{})

	for _, path := range []string{"/api/v1/auth/me", "/api/v1/documents", "/api/v1/documents/search?query=x", "/api/v1/documents/categorize"} {
		rec := doJSON(t, router, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s status = %d, want 401", path, rec.Code)
		}
	}
}

func TestAuthFlow(t *testing.T) {
	router := newTestRouter(t, &stubModel{})
	token := signUpAndLogin(t, router, "jane@example.com")

	rec := doJSON(t, router, http.MethodGet, "/api/v1/auth/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d body = %s", rec.Code, rec.Body.String())
	}
	var me struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	decode(t, rec, &me)
	if me.Email != "jane@example.com" || me.ID == "" {
		t.Fatalf("me = %+v", me)
	}

	// Duplicate signup is rejected.
	creds := map[string]string{"email": "jane@example.com", "password": "a long password"}
	if rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/signup", "", creds); rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate signup status = %d", rec.Code)
	}
}

func TestDocumentLifecycle(t *testing.T) {
	model := &stubModel{
		extractRaw:    `{"fields":[{"field_name":"full_name","field_value":"John Doe"}],"document_type":"passport"}`,
		categorizeRaw: "this is not json at all",
	}
	router := newTestRouter(t, model)
	token := signUpAndLogin(t, router, "owner@example.com")

	rec := uploadPDF(t, router, token, "passport.pdf")
	if rec.Code != http.StatusOK {
		t.Fatalf("process status = %d body = %s", rec.Code, rec.Body.String())
	}
	var processed struct {
		DocumentID string            `json:"document_id"`
		Fields     map[string]string `json:"fields"`
		PDFURL     string            `json:"pdf_url"`
	}
	decode(t, rec, &processed)
	if processed.DocumentID == "" || processed.Fields["full_name"] != "John Doe" {
		t.Fatalf("process response = %+v", processed)
	}
	if !strings.Contains(processed.PDFURL, "/files/documents/") {
		t.Fatalf("pdf_url = %q", processed.PDFURL)
	}

	// Same name again is a duplicate.
	if rec := uploadPDF(t, router, token, "passport.pdf"); rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate upload status = %d body = %s", rec.Code, rec.Body.String())
	}

	// Listing returns the document with its fields.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/documents", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listed []struct {
		FileName     string            `json:"file_name"`
		DocumentType string            `json:"document_type"`
		Fields       map[string]string `json:"fields"`
	}
	decode(t, rec, &listed)
	if len(listed) != 1 || listed[0].DocumentType != "passport" || listed[0].Fields["full_name"] != "John Doe" {
		t.Fatalf("list response = %+v", listed)
	}

	// Fuzzy search finds the field by value.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/documents/search?query=john", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("search status = %d", rec.Code)
	}
	var matches []struct {
		FieldName  string `json:"field_name"`
		MatchScore int    `json:"match_score"`
	}
	decode(t, rec, &matches)
	if len(matches) == 0 || matches[0].FieldName != "full_name" || matches[0].MatchScore < 60 {
		t.Fatalf("search response = %+v", matches)
	}

	// Unparsable categorization degrades to an empty mapping.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/documents/categorize", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("categorize status = %d", rec.Code)
	}
	var categorized struct {
		Categories map[string]map[string]string `json:"categories"`
	}
	decode(t, rec, &categorized)
	if categorized.Categories == nil || len(categorized.Categories) != 0 {
		t.Fatalf("categorize response = %s", rec.Body.String())
	}
}

func TestListingIsolation(t *testing.T) {
	model := &stubModel{
		extractRaw: `{"fields":[{"field_name":"full_name","field_value":"John Doe"}],"document_type":"passport"}`,
	}
	router := newTestRouter(t, model)
	ownerToken := signUpAndLogin(t, router, "owner@example.com")
	otherToken := signUpAndLogin(t, router, "other@example.com")

	if rec := uploadPDF(t, router, ownerToken, "passport.pdf"); rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d", rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/v1/documents", otherToken, nil)
	var listed []json.RawMessage
	decode(t, rec, &listed)
	if len(listed) != 0 {
		t.Fatalf("other user sees %d documents", len(listed))
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/documents/search?query=john", otherToken, nil)
	var matches []json.RawMessage
	decode(t, rec, &matches)
	if len(matches) != 0 {
		t.Fatalf("other user search sees %d matches", len(matches))
	}
}

func TestSearchValidation(t *testing.T) {
	router := newTestRouter(t, &stubModel{})
	token := signUpAndLogin(t, router, "owner@example.com")

	if rec := doJSON(t, router, http.MethodGet, "/api/v1/documents/search", token, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing query status = %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodGet, "/api/v1/documents/search?query=x&min_score=abc", token, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad min_score status = %d", rec.Code)
	}
}

func TestAddr(t *testing.T) {
	cases := map[string]string{
		"":      ":8080",
		"9090":  ":9090",
		":7000": ":7000",
	}
	for in, want := range cases {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
