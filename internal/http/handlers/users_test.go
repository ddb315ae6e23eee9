package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/userhub/internal/auth"
	"github.com/geocoder89/userhub/internal/cache"
	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/geocoder89/userhub/internal/http/handlers"
	"github.com/geocoder89/userhub/internal/http/middlewares"
	"github.com/geocoder89/userhub/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

func newUUID() string {
	return uuid.NewString()
}

// Fake repository implementation of the handlers.UsersStore interface

type fakeUsersRepo struct {
	createFn func(ctx context.Context, u user.User) (user.User, error)
	listFn   func(ctx context.Context) ([]user.User, error)
	getFn    func(ctx context.Context, id string) (user.User, error)
	updateFn func(ctx context.Context, id string, req user.UpdateUserRequest, passwordHash *string) (user.User, error)
	deleteFn func(ctx context.Context, id string) error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, u)
	}

	return user.User{}, nil
}

func (f *fakeUsersRepo) List(ctx context.Context) ([]user.User, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}

	return []user.User{}, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}

	return user.User{}, nil
}

func (f *fakeUsersRepo) Update(ctx context.Context, id string, req user.UpdateUserRequest, passwordHash *string) (user.User, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req, passwordHash)
	}

	return user.User{}, nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}

	return nil
}

// small helper function which returns the gin engine to mount one handler per test

func setupRouter(method, path string, h ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h...)

	return r
}

// Create user tests

func TestCreateUserHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*fakeUsersRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{
				"name": "Ann Lee",
				"email": "ann@example.com",
				"password": "password123",
				"role": "admin"
			}`,
			repoSetUp: func(f *fakeUsersRepo) {
				f.createFn = func(ctx context.Context, u user.User) (user.User, error) {
					u.CreatedAt = now
					u.UpdatedAt = now
					return u, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		// short names and passwords are allowed; presence is the only rule
		{
			name: "short_name_and_password",
			body: `{
				"name": "Ann",
				"email": "a@x.com",
				"password": "pw1",
				"role": "admin"
			}`,
			repoSetUp: func(f *fakeUsersRepo) {
				f.createFn = func(ctx context.Context, u user.User) (user.User, error) {
					u.CreatedAt = now
					u.UpdatedAt = now
					return u, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		// in the event that it is a bad request.
		{
			name: "validation_error",
			body: `{"name": "Ann Lee"}`, // missing email and password
			repoSetUp: func(f *fakeUsersRepo) {
				// since it is an invalid request the repo should not be called.
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "empty_name",
			body: `{"name": "", "email": "ann@example.com", "password": "pw1"}`,
			repoSetUp: func(f *fakeUsersRepo) {
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "bad_role",
			body: `{
				"name": "Ann Lee",
				"email": "ann@example.com",
				"password": "password123",
				"role": "superuser"
			}`,
			repoSetUp:      func(f *fakeUsersRepo) {},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "duplicate_email",
			body: `{
				"name": "Ann Lee",
				"email": "ann@example.com",
				"password": "password123"
			}`,
			repoSetUp: func(f *fakeUsersRepo) {
				f.createFn = func(ctx context.Context, u user.User) (user.User, error) {
					return user.User{}, user.ErrEmailTaken
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		// the legacy API reported create-save failures as 400, not 500
		{
			name: "repo_error",
			body: `{
				"name": "Ann Lee",
				"email": "ann@example.com",
				"password": "password123"
			}`,
			repoSetUp: func(f *fakeUsersRepo) {
				f.createFn = func(ctx context.Context, u user.User) (user.User, error) {
					return user.User{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeUsersRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(fakeRepo)
			}

			h := handlers.NewUsersHandler(fakeRepo)

			r := setupRouter(http.MethodPost, "/create", h.CreateUser)

			req := httptest.NewRequest(http.MethodPost, "/create", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestCreateUserHandler_PasswordStoredAsHash(t *testing.T) {
	const plain = "password123"

	var stored user.User

	fakeRepo := &fakeUsersRepo{
		createFn: func(ctx context.Context, u user.User) (user.User, error) {
			stored = u
			return u, nil
		},
	}

	h := handlers.NewUsersHandler(fakeRepo)
	r := setupRouter(http.MethodPost, "/create", h.CreateUser)

	body := `{"name":"Ann Lee","email":"ann@example.com","password":"` + plain + `"}`
	req := httptest.NewRequest(http.MethodPost, "/create", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	if stored.PasswordHash == plain {
		t.Fatalf("plaintext password reached the store")
	}

	if err := security.CheckPassword(stored.PasswordHash, plain); err != nil {
		t.Fatalf("stored hash does not verify against the original password: %v", err)
	}

	// role defaults when the payload omits it
	if stored.Role != user.RoleUser {
		t.Fatalf("expected default role %q, got %q", user.RoleUser, stored.Role)
	}

	if stored.ID == "" {
		t.Fatalf("expected a generated id")
	}
}

// Admin gate tests: the role comes from the verified token, never the payload.

func TestMutationRoutes_AdminGate(t *testing.T) {
	jwtManager := auth.NewManager("test-secret", time.Hour)

	adminToken, err := jwtManager.GenerateAccessToken(newUUID(), "admin@example.com", "admin")
	if err != nil {
		t.Fatalf("failed to issue admin token: %v", err)
	}

	userToken, err := jwtManager.GenerateAccessToken(newUUID(), "sam@example.com", "user")
	if err != nil {
		t.Fatalf("failed to issue user token: %v", err)
	}

	m := middlewares.NewAuthMiddleware(jwtManager)

	validBody := `{"name":"Ann Lee","email":"ann@example.com","password":"password123","role":"admin"}`

	tests := []struct {
		name           string
		authHeader     string
		wantStatusCode int
	}{
		{
			name:           "no_token",
			authHeader:     "",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "garbage_token",
			authHeader:     "Bearer not-a-jwt",
			wantStatusCode: http.StatusUnauthorized,
		},
		// a valid payload cannot buy its way past the gate with a user token
		{
			name:           "non_admin_token",
			authHeader:     "Bearer " + userToken,
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "admin_token",
			authHeader:     "Bearer " + adminToken,
			wantStatusCode: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeUsersRepo{
				createFn: func(ctx context.Context, u user.User) (user.User, error) {
					return u, nil
				},
			}

			h := handlers.NewUsersHandler(fakeRepo)

			r := setupRouter(http.MethodPost, "/create",
				m.RequireAuth(), m.RequireRole(user.RoleAdmin), h.CreateUser)

			req := httptest.NewRequest(http.MethodPost, "/create", bytes.NewBufferString(validBody))
			req.Header.Set("Content-Type", "application/json")

			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

// List user tests

func TestListUsersHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		repoSetup      func(*fakeUsersRepo)
		wantStatusCode int
		wantCount      int
	}{
		{
			name: "success",
			repoSetup: func(f *fakeUsersRepo) {
				f.listFn = func(ctx context.Context) ([]user.User, error) {
					return []user.User{
						{
							ID:           newUUID(),
							Name:         "Ann Lee",
							Email:        "ann@example.com",
							PasswordHash: "$2a$10$fakefakefakefakefakefake",
							Role:         "user",
							CreatedAt:    now,
							UpdatedAt:    now,
						},
					}, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantCount:      1,
		},
		{
			name: "empty",
			repoSetup: func(f *fakeUsersRepo) {
				f.listFn = func(ctx context.Context) ([]user.User, error) {
					return []user.User{}, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantCount:      0,
		},
		{
			name: "repo_error",
			repoSetup: func(f *fakeUsersRepo) {
				f.listFn = func(ctx context.Context) ([]user.User, error) {
					return nil, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeUsersRepo{}
			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewUsersHandler(fakeRepo)
			r := setupRouter(http.MethodGet, "/all", h.ListUsers)

			req := httptest.NewRequest(http.MethodGet, "/all", nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusOK {
				var resp []map[string]interface{}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if len(resp) != tt.wantCount {
					t.Fatalf("got %d users, want %d", len(resp), tt.wantCount)
				}

				// the hash rides along under "password", as the legacy API did
				if tt.wantCount > 0 {
					if _, ok := resp[0]["password"]; !ok {
						t.Fatalf("expected the password hash field in the list response")
					}
				}
			}
		})
	}
}

// Get by id tests

func TestGetUserByIdHandler(t *testing.T) {
	now := time.Now().UTC()
	validID := newUUID()
	missingID := newUUID()

	tests := []struct {
		name           string
		url            string
		repoSetup      func(*fakeUsersRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/byId/" + validID,
			repoSetup: func(f *fakeUsersRepo) {
				f.getFn = func(ctx context.Context, id string) (user.User, error) {
					return user.User{
						ID:           id,
						Name:         "Ann Lee",
						Email:        "ann@example.com",
						PasswordHash: "$2a$10$fakefakefakefakefakefake",
						Role:         "user",
						CreatedAt:    now.Add(-time.Hour),
						UpdatedAt:    now,
					}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			url:  "/byId/" + missingID,
			repoSetup: func(f *fakeUsersRepo) {
				f.getFn = func(ctx context.Context, id string) (user.User, error) {
					return user.User{}, user.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "repo_error",
			url:  "/byId/" + validID,
			repoSetup: func(f *fakeUsersRepo) {
				f.getFn = func(ctx context.Context, id string) (user.User, error) {
					return user.User{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeUsersRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewUsersHandler(fakeRepo)
			r := setupRouter(http.MethodGet, "/byId/:id", h.GetUserById)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

// Update tests

func TestUpdateUserHandler(t *testing.T) {
	now := time.Now().UTC()
	validID := newUUID()
	missingID := newUUID()

	tests := []struct {
		name           string
		url            string
		body           string
		repoSetup      func(*fakeUsersRepo)
		wantStatusCode int
	}{
		// a patch may carry any subset of fields
		{
			name: "success_partial",
			url:  "/update/" + validID,
			body: `{"name": "Updated Name"}`,
			repoSetup: func(f *fakeUsersRepo) {
				f.updateFn = func(ctx context.Context, id string, req user.UpdateUserRequest, passwordHash *string) (user.User, error) {
					if req.Name == nil || *req.Name != "Updated Name" {
						return user.User{}, errors.New("name patch not passed through")
					}
					if req.Email != nil || passwordHash != nil || req.Role != nil {
						return user.User{}, errors.New("unexpected fields in patch")
					}
					return user.User{
						ID:        id,
						Name:      *req.Name,
						Email:     "ann@example.com",
						Role:      "user",
						CreatedAt: now.Add(-time.Hour),
						UpdatedAt: now,
					}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "empty_patch",
			url:  "/update/" + validID,
			body: `{}`,
			repoSetup: func(f *fakeUsersRepo) {
				// repo should not be called at all in this case.
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "invalid_email",
			url:  "/update/" + validID,
			body: `{"email": "not-an-email"}`,
			repoSetup: func(f *fakeUsersRepo) {
				// repo should not be called at all in this case.
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "not_found",
			url:  "/update/" + missingID,
			body: `{"name": "Updated Name"}`,
			repoSetup: func(f *fakeUsersRepo) {
				f.updateFn = func(ctx context.Context, id string, req user.UpdateUserRequest, passwordHash *string) (user.User, error) {
					return user.User{}, user.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "email_taken",
			url:  "/update/" + validID,
			body: `{"email": "taken@example.com"}`,
			repoSetup: func(f *fakeUsersRepo) {
				f.updateFn = func(ctx context.Context, id string, req user.UpdateUserRequest, passwordHash *string) (user.User, error) {
					return user.User{}, user.ErrEmailTaken
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		// db error: same 400 mapping as create-save failures
		{
			name: "repo_error",
			url:  "/update/" + validID,
			body: `{"name": "Updated Name"}`,
			repoSetup: func(f *fakeUsersRepo) {
				f.updateFn = func(ctx context.Context, id string, req user.UpdateUserRequest, passwordHash *string) (user.User, error) {
					return user.User{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeUsersRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewUsersHandler(fakeRepo)

			r := setupRouter(http.MethodPut, "/update/:id", h.UpdateUser)
			req := httptest.NewRequest(http.MethodPut, tt.url, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestUpdateUserHandler_RehashesPassword(t *testing.T) {
	const plain = "new-password-123"

	validID := newUUID()

	var gotHash *string

	fakeRepo := &fakeUsersRepo{
		updateFn: func(ctx context.Context, id string, req user.UpdateUserRequest, passwordHash *string) (user.User, error) {
			gotHash = passwordHash
			return user.User{ID: id}, nil
		},
	}

	h := handlers.NewUsersHandler(fakeRepo)
	r := setupRouter(http.MethodPut, "/update/:id", h.UpdateUser)

	body := `{"password":"` + plain + `"}`
	req := httptest.NewRequest(http.MethodPut, "/update/"+validID, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	if gotHash == nil {
		t.Fatalf("expected the handler to pass a password hash to the repo")
	}

	if *gotHash == plain {
		t.Fatalf("plaintext password reached the repo")
	}

	if err := security.CheckPassword(*gotHash, plain); err != nil {
		t.Fatalf("hash does not verify against the new password: %v", err)
	}
}

// Delete tests

func TestDeleteUserHandler(t *testing.T) {
	validID := newUUID()
	missingID := newUUID()

	tests := []struct {
		name           string
		url            string
		repoSetup      func(*fakeUsersRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/delete/" + validID,
			repoSetup: func(f *fakeUsersRepo) {
				f.deleteFn = func(ctx context.Context, id string) error {
					return nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			url:  "/delete/" + missingID,
			repoSetup: func(f *fakeUsersRepo) {
				f.deleteFn = func(ctx context.Context, id string) error {
					return user.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "repo_error",
			url:  "/delete/" + validID,
			repoSetup: func(f *fakeUsersRepo) {
				f.deleteFn = func(ctx context.Context, id string) error {
					return errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeUsersRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewUsersHandler(fakeRepo)

			r := setupRouter(http.MethodDelete, "/delete/:id", h.DeleteUser)

			req := httptest.NewRequest(http.MethodDelete, tt.url, nil)

			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusOK && !strings.Contains(w.Body.String(), "deleted") {
				t.Fatalf("expected a text confirmation, got %q", w.Body.String())
			}
		})
	}
}

func TestListUsersHandler_CacheHit(t *testing.T) {
	now := time.Now().UTC()

	fakeRepo := &fakeUsersRepo{}
	c := cache.New[[]user.User](30 * time.Second)

	calls := 0
	fakeRepo.listFn = func(ctx context.Context) ([]user.User, error) {
		calls++
		return []user.User{
			{ID: newUUID(), Name: "Ann Lee", Email: "ann@example.com", Role: "user", CreatedAt: now, UpdatedAt: now},
		}, nil
	}

	h := handlers.NewUsersHandlerWithCache(fakeRepo, c)
	r := setupRouter(http.MethodGet, "/all", h.ListUsers)

	// First request: cache miss -> repo called
	w1 := httptest.NewRecorder()
	req1 := httptest.NewRequest(http.MethodGet, "/all", nil)
	r.ServeHTTP(w1, req1)

	if w1.Code != http.StatusOK {
		t.Fatalf("first call got %d body=%s", w1.Code, w1.Body.String())
	}

	// Second request: cache hit -> repo should NOT be called again
	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/all", nil)
	r.ServeHTTP(w2, req2)

	if w2.Code != http.StatusOK {
		t.Fatalf("second call got %d body=%s", w2.Code, w2.Body.String())
	}

	if calls != 1 {
		t.Fatalf("expected repo calls=1, got %d", calls)
	}
}

func TestListUsersHandler_CacheInvalidatedByMutation(t *testing.T) {
	fakeRepo := &fakeUsersRepo{}
	c := cache.New[[]user.User](30 * time.Second)

	listCalls := 0
	fakeRepo.listFn = func(ctx context.Context) ([]user.User, error) {
		listCalls++
		return []user.User{}, nil
	}
	fakeRepo.deleteFn = func(ctx context.Context, id string) error {
		return nil
	}

	h := handlers.NewUsersHandlerWithCache(fakeRepo, c)

	r := gin.New()
	r.GET("/all", h.ListUsers)
	r.DELETE("/delete/:id", h.DeleteUser)

	// prime the cache
	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/all", nil))

	// mutation should clear it
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodDelete, "/delete/"+newUUID(), nil))

	// next list hits the repo again
	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, httptest.NewRequest(http.MethodGet, "/all", nil))

	if listCalls != 2 {
		t.Fatalf("expected repo list calls=2 after invalidation, got %d", listCalls)
	}
}

func TestListUsersHandler_ETagNotModified(t *testing.T) {
	now := time.Now().UTC()

	fakeRepo := &fakeUsersRepo{}
	c := cache.New[[]user.User](30 * time.Second)
	calls := 0

	fakeRepo.listFn = func(ctx context.Context) ([]user.User, error) {
		calls++
		return []user.User{
			{ID: "id-1", Name: "Ann Lee", Email: "ann@example.com", Role: "user", CreatedAt: now, UpdatedAt: now},
		}, nil
	}

	h := handlers.NewUsersHandlerWithCache(fakeRepo, c)
	r := setupRouter(http.MethodGet, "/all", h.ListUsers)

	w1 := httptest.NewRecorder()
	req1 := httptest.NewRequest(http.MethodGet, "/all", nil)
	r.ServeHTTP(w1, req1)

	if w1.Code != http.StatusOK {
		t.Fatalf("first call got %d body=%s", w1.Code, w1.Body.String())
	}

	etag := w1.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("expected ETag header in first response")
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/all", nil)
	req2.Header.Set("If-None-Match", etag)
	r.ServeHTTP(w2, req2)

	if w2.Code != http.StatusNotModified {
		t.Fatalf("second call got %d, want %d, body=%s", w2.Code, http.StatusNotModified, w2.Body.String())
	}

	if w2.Body.Len() != 0 {
		t.Fatalf("expected empty body for 304, got %q", w2.Body.String())
	}

	if calls != 1 {
		t.Fatalf("expected repo calls=1 due cache hit, got %d", calls)
	}
}
