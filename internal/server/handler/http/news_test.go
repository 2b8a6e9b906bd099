package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/akarpov/newsline/internal/middleware"
	"github.com/akarpov/newsline/internal/models"
)

// fakeContentService implements ContentService for testing.
type fakeContentService struct {
	submitID      int64
	submitCreated bool
	submitErr     error
	news          *models.News
	getErr        error

	gotTitle  string
	gotURL    string
	gotText   string
	gotAuthor int64
}

func (f *fakeContentService) Submit(ctx context.Context, title, url, text string, authorID int64) (int64, bool, error) {
	f.gotTitle, f.gotURL, f.gotText, f.gotAuthor = title, url, text, authorID
	return f.submitID, f.submitCreated, f.submitErr
}

func (f *fakeContentService) Get(ctx context.Context, id int64) (*models.News, error) {
	return f.news, f.getErr
}

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	ctx := middleware.WithUser(req.Context(), &models.User{ID: 7, Username: "alice"})
	return req.WithContext(ctx)
}

func TestNewsHandler_Submit(t *testing.T) {
	tests := []struct {
		name           string
		req            *http.Request
		service        *fakeContentService
		expectedCode   int
		expectedSubstr string
	}{
		{
			name:           "anonymous",
			req:            httptest.NewRequest("POST", "/api/submit", bytes.NewBufferString(`{}`)),
			service:        &fakeContentService{},
			expectedCode:   http.StatusUnauthorized,
			expectedSubstr: "Not authenticated.",
		},
		{
			name:           "invalid JSON",
			req:            authedRequest("POST", "/api/submit", `not a json`),
			service:        &fakeContentService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid request",
		},
		{
			name:           "validation failure",
			req:            authedRequest("POST", "/api/submit", `{"title":""}`),
			service:        &fakeContentService{submitErr: models.ErrValidation},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "Please specify a news title and address or text.",
		},
		{
			name:           "created",
			req:            authedRequest("POST", "/api/submit", `{"title":"Title","url":"http://x.com/a"}`),
			service:        &fakeContentService{submitID: 1, submitCreated: true},
			expectedCode:   http.StatusOK,
			expectedSubstr: `"created":true`,
		},
		{
			name:           "duplicate url",
			req:            authedRequest("POST", "/api/submit", `{"title":"Other","url":"http://x.com/a"}`),
			service:        &fakeContentService{submitID: 42, submitCreated: false},
			expectedCode:   http.StatusOK,
			expectedSubstr: `"news_id":42`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h := &NewsHandler{Content: tt.service}
			h.Submit(rec, tt.req)
			res := rec.Result()
			defer res.Body.Close()

			if res.StatusCode != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, res.StatusCode)
			}

			buf := new(bytes.Buffer)
			if _, err := buf.ReadFrom(res.Body); err != nil {
				t.Fatalf("failed to read body: %v", err)
			}
			if !strings.Contains(buf.String(), tt.expectedSubstr) {
				t.Errorf("body %q does not contain %q", buf.String(), tt.expectedSubstr)
			}
		})
	}
}

func TestNewsHandler_Submit_AuthorFromContext(t *testing.T) {
	service := &fakeContentService{submitID: 1, submitCreated: true}
	rec := httptest.NewRecorder()
	h := &NewsHandler{Content: service}
	h.Submit(rec, authedRequest("POST", "/api/submit", `{"title":"T","url":"","text":"hello"}`))

	if service.gotAuthor != 7 {
		t.Errorf("author id = %d; want the context user's id 7", service.gotAuthor)
	}
	if service.gotTitle != "T" || service.gotText != "hello" || service.gotURL != "" {
		t.Errorf("service received (%q, %q, %q)", service.gotTitle, service.gotURL, service.gotText)
	}
}

func TestNewsHandler_Get(t *testing.T) {
	newsReq := func(id string) *http.Request {
		req := httptest.NewRequest("GET", "/api/news/"+id, nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	t.Run("bad id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h := &NewsHandler{Content: &fakeContentService{}}
		h.Get(rec, newsReq("abc"))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h := &NewsHandler{Content: &fakeContentService{getErr: models.ErrNotFound}}
		h.Get(rec, newsReq("9"))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h := &NewsHandler{Content: &fakeContentService{news: &models.News{
			ID: 9, Title: "Title", URL: "http://x.com/a", AuthorID: 7,
		}}}
		h.Get(rec, newsReq("9"))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"title":"Title"`) {
			t.Errorf("body %q missing title", rec.Body.String())
		}
	})
}
