package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/rahulbrandimpetus/wheelspin-backend/internal/middleware"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/models"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/services"
)

type fakeSpinService struct {
	err      error
	identity string
}

func (f *fakeSpinService) Spin(_ context.Context, identity string) (*models.SpinResult, error) {
	f.identity = identity
	if f.err != nil {
		return nil, f.err
	}
	return &models.SpinResult{Prize: models.SpinPrize{ID: "grand", Label: "Grand Prize", Number: 1}}, nil
}

func (f *fakeSpinService) GetParticipant(_ context.Context, identity string) (*models.ParticipantResult, error) {
	f.identity = identity
	if f.err != nil {
		return nil, f.err
	}
	return &models.ParticipantResult{Found: false}, nil
}

type fakeAdminService struct {
	key string
}

func (f *fakeAdminService) check(key string) error {
	f.key = key
	if key != "good" {
		return services.ErrUnauthorized
	}
	return nil
}

func (f *fakeAdminService) ResetInventory(_ context.Context, key string) (*models.ResetResult, error) {
	if err := f.check(key); err != nil {
		return nil, err
	}
	return &models.ResetResult{Success: true}, nil
}

func (f *fakeAdminService) GetStats(_ context.Context, key string) ([]models.PrizeStat, error) {
	if err := f.check(key); err != nil {
		return nil, err
	}
	return []models.PrizeStat{{ID: "grand", Label: "Grand Prize", TotalDistributed: 1}}, nil
}

func (f *fakeAdminService) IssueToken(_ context.Context, key string) (*models.AdminTokenResponse, error) {
	if err := f.check(key); err != nil {
		return nil, err
	}
	return &models.AdminTokenResponse{Token: "a.b.c", ExpiresIn: 60}, nil
}

func newRouter(spin services.SpinService, admin services.AdminService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	sh := NewSpinHandler(spin)
	ah := NewAdminHandler(admin)
	r.POST("/spin", sh.Spin)
	r.GET("/participants/:phone", sh.GetParticipant)
	r.POST("/admin/token", ah.IssueToken)
	protected := r.Group("/admin", middleware.AdminCredentialMiddleware())
	protected.POST("/reset", ah.ResetInventory)
	protected.GET("/stats", ah.GetStats)
	return r
}

func do(r http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSpinHandler(t *testing.T) {
	t.Run("awards", func(t *testing.T) {
		spin := &fakeSpinService{}
		w := do(newRouter(spin, &fakeAdminService{}), http.MethodPost, "/spin", `{"phone":"+1 555 010 0123"}`, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body)
		}
		var res models.SpinResult
		if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
			t.Fatal(err)
		}
		if res.AlreadyPlayed || res.Prize.Label != "Grand Prize" || res.Prize.Number != 1 {
			t.Errorf("response = %+v", res)
		}
		if spin.identity != "+1 555 010 0123" {
			t.Errorf("identity passed = %q", spin.identity)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		w := do(newRouter(&fakeSpinService{}, &fakeAdminService{}), http.MethodPost, "/spin", `{"phone":`, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d", w.Code)
		}
	})

	cases := []struct {
		err         error
		status      int
		mustHave    string
		mustNotHave string
	}{
		{fmt.Errorf("%w: phone number is required", services.ErrValidation), http.StatusBadRequest, "phone number is required", ""},
		{fmt.Errorf("%w: prize catalog is empty", services.ErrConfiguration), http.StatusInternalServerError, "prize catalog is empty", ""},
		{fmt.Errorf("%w: loadAll: dial tcp 10.0.0.1", services.ErrUpstreamUnavailable), http.StatusInternalServerError, "unavailable", "10.0.0.1"},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			w := do(newRouter(&fakeSpinService{err: tc.err}, &fakeAdminService{}), http.MethodPost, "/spin", `{"phone":"1"}`, nil)
			if w.Code != tc.status {
				t.Errorf("status = %d, want %d", w.Code, tc.status)
			}
			body := w.Body.String()
			if !strings.Contains(body, tc.mustHave) {
				t.Errorf("body %s does not mention %q", body, tc.mustHave)
			}
			if tc.mustNotHave != "" && strings.Contains(body, tc.mustNotHave) {
				t.Errorf("body %s leaks %q", body, tc.mustNotHave)
			}
		})
	}

	t.Run("participant lookup", func(t *testing.T) {
		spin := &fakeSpinService{}
		w := do(newRouter(spin, &fakeAdminService{}), http.MethodGet, "/participants/15550100123", "", nil)
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"found":false`) {
			t.Errorf("status = %d, body %s", w.Code, w.Body)
		}
		if spin.identity != "15550100123" {
			t.Errorf("identity passed = %q", spin.identity)
		}
	})
}

func TestAdminHandler(t *testing.T) {
	credentials := []struct {
		name    string
		target  string
		body    string
		headers map[string]string
	}{
		{"header", "/admin/reset", "", map[string]string{"X-Admin-Key": "good"}},
		{"bearer", "/admin/reset", "", map[string]string{"Authorization": "Bearer good"}},
		{"query", "/admin/reset?key=good", "", nil},
		{"body", "/admin/reset", `{"key":"good"}`, nil},
	}
	for _, c := range credentials {
		t.Run("reset via "+c.name, func(t *testing.T) {
			admin := &fakeAdminService{}
			w := do(newRouter(&fakeSpinService{}, admin), http.MethodPost, c.target, c.body, c.headers)
			if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"success":true`) {
				t.Errorf("status = %d, body %s", w.Code, w.Body)
			}
			if admin.key != "good" {
				t.Errorf("credential passed = %q", admin.key)
			}
		})
	}

	t.Run("bad key", func(t *testing.T) {
		w := do(newRouter(&fakeSpinService{}, &fakeAdminService{}), http.MethodGet, "/admin/stats", "", map[string]string{"X-Admin-Key": "bad"})
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d", w.Code)
		}
	})

	t.Run("no key", func(t *testing.T) {
		admin := &fakeAdminService{key: "unset"}
		w := do(newRouter(&fakeSpinService{}, admin), http.MethodPost, "/admin/reset", "", nil)
		if w.Code != http.StatusUnauthorized || admin.key != "" {
			t.Errorf("status = %d, key %q", w.Code, admin.key)
		}
	})

	t.Run("stats", func(t *testing.T) {
		w := do(newRouter(&fakeSpinService{}, &fakeAdminService{}), http.MethodGet, "/admin/stats", "", map[string]string{"X-Admin-Key": "good"})
		var body struct {
			Prizes []models.PrizeStat `json:"prizes"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || len(body.Prizes) != 1 {
			t.Errorf("status = %d, body %s", w.Code, w.Body)
		}
	})

	t.Run("token requires key field", func(t *testing.T) {
		w := do(newRouter(&fakeSpinService{}, &fakeAdminService{}), http.MethodPost, "/admin/token", `{}`, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d", w.Code)
		}
		w = do(newRouter(&fakeSpinService{}, &fakeAdminService{}), http.MethodPost, "/admin/token", `{"key":"good"}`, nil)
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"token":"a.b.c"`) {
			t.Errorf("status = %d, body %s", w.Code, w.Body)
		}
	})
}
