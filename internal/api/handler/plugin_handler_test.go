package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/cogere/artifact-host/internal/api/middleware"
	"github.com/cogere/artifact-host/internal/core/domain"
	"github.com/cogere/artifact-host/internal/core/ports"
)

type stubPluginService struct {
	uploadFn   func(ctx context.Context, id domain.Identity, meta ports.PluginMetadata, data []byte) (*domain.Plugin, error)
	downloadFn func(ctx context.Context, id domain.Identity, pluginID uuid.UUID) (*domain.Plugin, []byte, error)
	deleteFn   func(ctx context.Context, id domain.Identity, pluginID uuid.UUID) error
	listFn     func(ctx context.Context, id domain.Identity) ([]*domain.Plugin, error)
}

func (s *stubPluginService) Upload(ctx context.Context, id domain.Identity, meta ports.PluginMetadata, data []byte) (*domain.Plugin, error) {
	return s.uploadFn(ctx, id, meta, data)
}

func (s *stubPluginService) Download(ctx context.Context, id domain.Identity, pluginID uuid.UUID) (*domain.Plugin, []byte, error) {
	return s.downloadFn(ctx, id, pluginID)
}

func (s *stubPluginService) Delete(ctx context.Context, id domain.Identity, pluginID uuid.UUID) error {
	return s.deleteFn(ctx, id, pluginID)
}

func (s *stubPluginService) List(ctx context.Context, id domain.Identity) ([]*domain.Plugin, error) {
	return s.listFn(ctx, id)
}

var (
	alice     = domain.AuthenticatedUser{User: domain.User{Username: "alice", Role: domain.RoleUser}}
	pluginID  = uuid.MustParse("01890000-0000-7000-8000-000000000001")
	helloJar  = &domain.Plugin{ID: pluginID, ArtifactID: "hello", GroupID: "org.example", Version: "1.0.0", Size: 5, CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	emptyMeta = ""
)

func multipartBody(t *testing.T, metadata string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if metadata != emptyMeta {
		if err := w.WriteField("metadata", metadata); err != nil {
			t.Fatalf("write metadata: %v", err)
		}
	}
	if file != nil {
		fw, err := w.CreateFormFile("file", "hello.jar")
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := fw.Write(file); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestPluginHandler_Upload(t *testing.T) {
	e := newEcho()
	h := NewPluginHandler(&stubPluginService{
		uploadFn: func(_ context.Context, id domain.Identity, meta ports.PluginMetadata, data []byte) (*domain.Plugin, error) {
			if id.Identifier() != "user:alice" {
				t.Fatalf("unexpected identity %s", id.Identifier())
			}
			if meta.ArtifactID != "hello" || meta.GroupID != "org.example" || meta.Version != "1.0.0" {
				t.Fatalf("unexpected metadata %+v", meta)
			}
			if string(data) != "hello" {
				t.Fatalf("unexpected data %q", data)
			}
			return helloJar, nil
		},
	}, 1<<20)

	body, ct := multipartBody(t, `{"artifact_id":"hello","group_id":"org.example","version":"1.0.0"}`, []byte("hello"))
	req := httptest.NewRequest(http.MethodPost, "/plugins", body)
	req.Header.Set(echo.HeaderContentType, ct)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	middleware.SetIdentity(c, alice)

	if err := h.Upload(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != pluginID.String() || resp["artifact_id"] != "hello" || resp["version"] != "1.0.0" {
		t.Fatalf("unexpected response %v", resp)
	}
}

func TestPluginHandler_Upload_BadRequests(t *testing.T) {
	cases := []struct {
		name     string
		metadata string
		file     []byte
		want     int
	}{
		{"missing metadata", emptyMeta, []byte("x"), http.StatusBadRequest},
		{"metadata not json", "{", []byte("x"), http.StatusBadRequest},
		{"metadata incomplete", `{"artifact_id":"hello"}`, []byte("x"), http.StatusBadRequest},
		{"missing file", `{"artifact_id":"a","group_id":"g","version":"1"}`, nil, http.StatusBadRequest},
		{"too large", `{"artifact_id":"a","group_id":"g","version":"1"}`, bytes.Repeat([]byte("x"), 64), http.StatusRequestEntityTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEcho()
			h := NewPluginHandler(&stubPluginService{
				uploadFn: func(context.Context, domain.Identity, ports.PluginMetadata, []byte) (*domain.Plugin, error) {
					t.Fatalf("should not be called")
					return nil, nil
				},
			}, 32)

			body, ct := multipartBody(t, tc.metadata, tc.file)
			req := httptest.NewRequest(http.MethodPost, "/plugins", body)
			req.Header.Set(echo.HeaderContentType, ct)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			middleware.SetIdentity(c, alice)

			if err := h.Upload(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestPluginHandler_Upload_ServiceErrorsPropagate(t *testing.T) {
	e := newEcho()
	h := NewPluginHandler(&stubPluginService{
		uploadFn: func(context.Context, domain.Identity, ports.PluginMetadata, []byte) (*domain.Plugin, error) {
			return nil, domain.ErrForbidden
		},
	}, 0)

	body, ct := multipartBody(t, `{"artifact_id":"a","group_id":"g","version":"1"}`, []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/plugins", body)
	req.Header.Set(echo.HeaderContentType, ct)
	c := e.NewContext(req, httptest.NewRecorder())
	middleware.SetIdentity(c, alice)

	if err := h.Upload(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestPluginHandler_RequiresIdentity(t *testing.T) {
	e := newEcho()
	h := NewPluginHandler(&stubPluginService{}, 0)

	req := httptest.NewRequest(http.MethodGet, "/plugins", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.List(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestPluginHandler_Download(t *testing.T) {
	e := newEcho()
	h := NewPluginHandler(&stubPluginService{
		downloadFn: func(_ context.Context, _ domain.Identity, id uuid.UUID) (*domain.Plugin, []byte, error) {
			if id != pluginID {
				return nil, nil, domain.ErrPluginNotFound
			}
			return helloJar, []byte("hello"), nil
		},
	}, 0)

	req := httptest.NewRequest(http.MethodGet, "/plugins/"+pluginID.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(pluginID.String())
	middleware.SetIdentity(c, alice)

	if err := h.Download(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.String() != "hello" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(echo.HeaderContentDisposition); got != `attachment; filename="hello-1.0.0.jar"` {
		t.Fatalf("unexpected content disposition %q", got)
	}
}

func TestPluginHandler_InvalidID(t *testing.T) {
	e := newEcho()
	h := NewPluginHandler(&stubPluginService{}, 0)

	for _, handle := range []echo.HandlerFunc{h.Download, h.Delete} {
		req := httptest.NewRequest(http.MethodGet, "/plugins/nope", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("nope")
		middleware.SetIdentity(c, alice)

		if err := handle(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	}
}

func TestPluginHandler_DeleteAndList(t *testing.T) {
	e := newEcho()
	var deleted uuid.UUID
	h := NewPluginHandler(&stubPluginService{
		deleteFn: func(_ context.Context, _ domain.Identity, id uuid.UUID) error {
			deleted = id
			return nil
		},
		listFn: func(context.Context, domain.Identity) ([]*domain.Plugin, error) {
			return []*domain.Plugin{helloJar}, nil
		},
	}, 0)

	req := httptest.NewRequest(http.MethodDelete, "/plugins/"+pluginID.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(pluginID.String())
	middleware.SetIdentity(c, alice)
	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || deleted != pluginID {
		t.Fatalf("unexpected delete result %d %s", rec.Code, deleted)
	}

	req = httptest.NewRequest(http.MethodGet, "/plugins", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	middleware.SetIdentity(c, alice)
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 1 || resp[0]["created_at"] != "2026-01-01T00:00:00Z" {
		t.Fatalf("unexpected list %v", resp)
	}
}
