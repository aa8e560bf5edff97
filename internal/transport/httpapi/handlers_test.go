package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kanon95/user-records/internal/domain"
	"github.com/kanon95/user-records/internal/repository"
	"github.com/kanon95/user-records/internal/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	repo := repository.NewUserRepo(gdb)
	require.NoError(t, repo.Migrate())
	return NewRouter(service.NewUserSvc(repo))
}

func do(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUserLifecycle(t *testing.T) {
	r := newTestRouter(t)

	// create
	w := do(t, r, http.MethodPost, "/api/users", `{"name":"Kim","email":"kim@test.com"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, uint(1), created.ID)

	// duplicate email
	w = do(t, r, http.MethodPost, "/api/users", `{"name":"Other","email":"kim@test.com"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, w.Body.String())

	// get
	w = do(t, r, http.MethodGet, "/api/users/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, uint(1), got.ID)
	require.Equal(t, "Kim", got.Name)
	require.Equal(t, "kim@test.com", got.Email)

	// delete
	w = do(t, r, http.MethodDelete, "/api/users/1", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Empty(t, w.Body.String())

	// gone
	w = do(t, r, http.MethodGet, "/api/users/1", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Empty(t, w.Body.String())
}

func TestCreateValidation(t *testing.T) {
	r := newTestRouter(t)

	for name, body := range map[string]string{
		"missing name":    `{"email":"kim@test.com"}`,
		"missing email":   `{"name":"Kim"}`,
		"malformed email": `{"name":"Kim","email":"not-an-email"}`,
		"not json":        `nope`,
	} {
		w := do(t, r, http.MethodPost, "/api/users", body)
		require.Equal(t, http.StatusBadRequest, w.Code, name)
		require.Empty(t, w.Body.String(), name)
	}

	// nothing reached the store
	w := do(t, r, http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "[]", w.Body.String())
}

func TestUpdate(t *testing.T) {
	r := newTestRouter(t)

	do(t, r, http.MethodPost, "/api/users", `{"name":"Kim","email":"kim@test.com"}`)

	w := do(t, r, http.MethodPut, "/api/users/1", `{"name":"Lee","email":"lee@test.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var got domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, uint(1), got.ID)
	require.Equal(t, "Lee", got.Name)

	w = do(t, r, http.MethodPut, "/api/users/99", `{"name":"Lee","email":"x@test.com"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Empty(t, w.Body.String())

	w = do(t, r, http.MethodPut, "/api/users/1", `{"name":""}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteMissing(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodDelete, "/api/users/99", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	// non-numeric ids can never match a record
	w = do(t, r, http.MethodDelete, "/api/users/abc", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchByEmail(t *testing.T) {
	r := newTestRouter(t)

	do(t, r, http.MethodPost, "/api/users", `{"name":"Kim","email":"kim@test.com"}`)

	w := do(t, r, http.MethodGet, "/api/users/search/email?email=kim@test.com", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "Kim", got.Name)

	w = do(t, r, http.MethodGet, "/api/users/search/email?email=nobody@test.com", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Empty(t, w.Body.String())
}

func TestSearchByName(t *testing.T) {
	r := newTestRouter(t)

	do(t, r, http.MethodPost, "/api/users", `{"name":"Anna","email":"anna@test.com"}`)
	do(t, r, http.MethodPost, "/api/users", `{"name":"Brandon","email":"brandon@test.com"}`)

	w := do(t, r, http.MethodGet, "/api/users/search/name?name=AN", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got []domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)

	// no match is 200 with an empty list, never 404
	w = do(t, r, http.MethodGet, "/api/users/search/name?name=zzz", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "[]", w.Body.String())
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/users/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "User API is running!", w.Body.String())
}
