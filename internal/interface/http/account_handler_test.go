package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projboard/projboard/internal/application"
	"github.com/projboard/projboard/internal/domain/entity"
	"github.com/projboard/projboard/pkg/helpers"
	"github.com/projboard/projboard/pkg/validation"
)

func newAccountRouter(t *testing.T) (*gin.Engine, *memAccountRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	logger := logrus.New()
	repo := &memAccountRepo{accounts: map[string]*entity.Account{}}
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	svc := application.NewAccountService(repo, jwt, nil, "", nil, logger, nil, "projboard", false)
	h := NewAccountHandler(svc, logger, "localhost", false)

	r := gin.New()
	r.POST("/api/register", h.Register)
	r.POST("/api/login", h.Login)
	return r, repo
}

func TestRegisterCreatesAccount(t *testing.T) {
	r, repo := newAccountRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/register", map[string]string{
		"name": "Maria", "email": "Maria@Example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "maria@example.com")

	a, err := repo.GetByEmail("maria@example.com")
	require.NoError(t, err)
	assert.True(t, helpers.CompareHashAndPassword(a.Password, "secret1"))
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	r, _ := newAccountRouter(t)
	body := map[string]string{"name": "Maria", "email": "maria@example.com", "password": "secret1"}

	w := doJSON(t, r, http.MethodPost, "/api/register", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/register", body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	r, _ := newAccountRouter(t)

	// Password below the minimum length.
	w := doJSON(t, r, http.MethodPost, "/api/register", map[string]string{
		"name": "Maria", "email": "maria@example.com", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "password")

	w = doJSON(t, r, http.MethodPost, "/api/register", map[string]string{
		"name": "Maria", "email": "not-an-email", "password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "email")
}

func TestLoginSetsCookiesAndRejectsBadCredentials(t *testing.T) {
	r, _ := newAccountRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/register", map[string]string{
		"name": "Maria", "email": "maria@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/login", map[string]string{
		"email": "maria@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var names []string
	for _, c := range w.Result().Cookies() {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "access_token")
	assert.Contains(t, names, "refresh_token")

	for _, creds := range []map[string]string{
		{"email": "maria@example.com", "password": "wrong"},
		{"email": "nobody@example.com", "password": "secret1"},
	} {
		w = doJSON(t, r, http.MethodPost, "/api/login", creds)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		// Same generic message either way.
		assert.Contains(t, w.Body.String(), "invalid credentials")
	}
}
