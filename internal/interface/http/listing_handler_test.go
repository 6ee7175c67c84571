package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projboard/projboard/internal/application"
	"github.com/projboard/projboard/internal/domain/entity"
	"github.com/projboard/projboard/internal/domain/repository"
	"github.com/projboard/projboard/pkg/validation"
)

type memListingRepo struct {
	listings []entity.Listing
	nextID   int
}

func (r *memListingRepo) Create(l *entity.Listing) error {
	r.nextID++
	l.ID = strconv.Itoa(r.nextID)
	l.CreatedAt = time.Now()
	r.listings = append(r.listings, *l)
	return nil
}

func (r *memListingRepo) GetByID(id string) (*entity.Listing, error) {
	for i := range r.listings {
		if r.listings[i].ID == id {
			return &r.listings[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memListingRepo) List() ([]entity.Listing, error) {
	out := make([]entity.Listing, len(r.listings))
	copy(out, r.listings)
	return out, nil
}

func (r *memListingRepo) Delete(id string) error {
	for i := range r.listings {
		if r.listings[i].ID == id {
			r.listings = append(r.listings[:i], r.listings[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type memAccountRepo struct {
	accounts map[string]*entity.Account
}

func (r *memAccountRepo) Create(a *entity.Account) error {
	for _, e := range r.accounts {
		if e.Email == a.Email {
			return repository.ErrDuplicateEmail
		}
	}
	a.ID = "acc-" + strconv.Itoa(len(r.accounts)+1)
	r.accounts[a.ID] = a
	return nil
}

func (r *memAccountRepo) GetByID(id string) (*entity.Account, error) {
	a, ok := r.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return a, nil
}

func (r *memAccountRepo) GetByEmail(email string) (*entity.Account, error) {
	for _, a := range r.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memAccountRepo) Update(a *entity.Account) error {
	r.accounts[a.ID] = a
	return nil
}

type testEnv struct {
	router   *gin.Engine
	accounts *memAccountRepo
	listings *memListingRepo
}

// asAccount fakes the auth middleware: the test account is already in
// the context like a validated session would leave it.
func asAccount(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("accountID", id)
		c.Next()
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	logger := logrus.New()
	accounts := &memAccountRepo{accounts: map[string]*entity.Account{}}
	listings := &memListingRepo{}

	listingSvc := application.NewListingService(listings, accounts, logger, nil, "")
	h := NewListingHandler(listingSvc, logger)

	r := gin.New()
	r.GET("/api/listings", h.Feed)
	r.POST("/api/listings", asAccount("acc-1"), h.Create)
	r.DELETE("/api/listings/:id", asAccount("acc-2"), h.Delete)

	return &testEnv{router: r, accounts: accounts, listings: listings}
}

func (e *testEnv) seedOwner(t *testing.T) *entity.Account {
	t.Helper()
	a := &entity.Account{Name: "Maria", Email: "maria@example.com"}
	require.NoError(t, e.accounts.Create(a))
	return a
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(b))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListingCreateAndFeed(t *testing.T) {
	env := newTestEnv(t)
	env.seedOwner(t)

	w := doJSON(t, env.router, http.MethodPost, "/api/listings", map[string]string{
		"title":       "Beach house",
		"description": "sea view",
		"price":       "1.500,00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, env.router, http.MethodGet, "/api/listings?sort=highest_value", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var env2 struct {
		Success bool `json:"success"`
		Data    []struct {
			Title        string  `json:"title"`
			DisplayPrice string  `json:"display_price"`
			Price        float64 `json:"price"`
			DisplayDate  string  `json:"display_date"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env2))
	assert.True(t, env2.Success)
	require.Len(t, env2.Data, 1)
	assert.Equal(t, "Beach house", env2.Data[0].Title)
	assert.Equal(t, "1.500,00", env2.Data[0].DisplayPrice)
	assert.Equal(t, 1500.0, env2.Data[0].Price)
	assert.Equal(t, time.Now().Format("02/01/2006"), env2.Data[0].DisplayDate)
}

func TestListingCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	env.seedOwner(t)

	w := doJSON(t, env.router, http.MethodPost, "/api/listings", map[string]string{
		"title": "no description or price",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "description")
}

func TestListingCreateWithDeletedAccount(t *testing.T) {
	// No account seeded: the session's acc-1 points at nothing.
	env := newTestEnv(t)

	w := doJSON(t, env.router, http.MethodPost, "/api/listings", map[string]string{
		"title": "Cabin", "description": "x", "price": "1,00",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "account no longer exists")
}

func TestListingDeleteForeignOwner(t *testing.T) {
	env := newTestEnv(t)
	env.seedOwner(t) // acc-1 creates, the delete route runs as acc-2

	w := doJSON(t, env.router, http.MethodPost, "/api/listings", map[string]string{
		"title": "Cabin", "description": "x", "price": "1,00",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, env.router, http.MethodDelete, "/api/listings/1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, env.router, http.MethodDelete, "/api/listings/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFeedSearchFilters(t *testing.T) {
	env := newTestEnv(t)
	env.seedOwner(t)

	for _, title := range []string{"Beach house", "Mountain cabin"} {
		w := doJSON(t, env.router, http.MethodPost, "/api/listings", map[string]string{
			"title": title, "description": "d", "price": "1,00",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, env.router, http.MethodGet, "/api/listings?search=BEACH", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Beach house")
	assert.NotContains(t, w.Body.String(), "Mountain cabin")
}
