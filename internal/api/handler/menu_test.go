package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// fakeArchiveReader serves a canned document and optionally a public URL.
type fakeArchiveReader struct {
	doc       string
	publicURL string
	fetchErr  error
}

func (f *fakeArchiveReader) FetchMenu(ctx context.Context, tenantID, menuID string) (io.ReadCloser, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return io.NopCloser(strings.NewReader(f.doc)), nil
}

func (f *fakeArchiveReader) DocumentURL(tenantID, menuID string) string {
	if f.publicURL == "" {
		return ""
	}
	return f.publicURL + "/menus/" + tenantID + "/" + menuID + ".json"
}

func documentRouter(archive ArchiveReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewMenuHandler(nil, nil, archive)
	r.GET("/api/v1/menus/:id/document", h.GetMenuDocument)
	return r
}

// TestGetMenuDocumentStreams verifies the archived document is streamed
// back when no public URL is configured.
func TestGetMenuDocumentStreams(t *testing.T) {
	doc := `{"id":"menu-1","tenant_id":"tenant-1"}`
	r := documentRouter(&fakeArchiveReader{doc: doc})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/menus/menu-1/document?tenant_id=tenant-1", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status: got %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type: got %q", got)
	}
	if w.Body.String() != doc {
		t.Errorf("Body: got %q, want %q", w.Body.String(), doc)
	}
}

// TestGetMenuDocumentRedirects verifies a configured public URL turns the
// endpoint into a redirect.
func TestGetMenuDocumentRedirects(t *testing.T) {
	r := documentRouter(&fakeArchiveReader{publicURL: "https://cdn.example.com"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/menus/menu-1/document?tenant_id=tenant-1", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("Status: got %d, want %d", w.Code, http.StatusFound)
	}
	want := "https://cdn.example.com/menus/tenant-1/menu-1.json"
	if got := w.Header().Get("Location"); got != want {
		t.Errorf("Location: got %q, want %q", got, want)
	}
}

// TestGetMenuDocumentErrors covers the disabled-archive and missing-tenant
// cases.
func TestGetMenuDocumentErrors(t *testing.T) {
	testCases := []struct {
		name     string
		archive  ArchiveReader
		url      string
		wantCode int
	}{
		{
			name:     "missing tenant",
			archive:  &fakeArchiveReader{},
			url:      "/api/v1/menus/menu-1/document",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "archive disabled",
			archive:  nil,
			url:      "/api/v1/menus/menu-1/document?tenant_id=tenant-1",
			wantCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := documentRouter(tc.archive)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			r.ServeHTTP(w, req)

			if w.Code != tc.wantCode {
				t.Errorf("Status: got %d, want %d", w.Code, tc.wantCode)
			}
		})
	}
}
