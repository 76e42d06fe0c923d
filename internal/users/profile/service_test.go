// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sleepora/internal/access"
	"github.com/taibuivan/sleepora/internal/audit"
	"github.com/taibuivan/sleepora/internal/platform/apperr"
	"github.com/taibuivan/sleepora/internal/platform/ctxutil"
	"github.com/taibuivan/sleepora/internal/platform/sec"
	"github.com/taibuivan/sleepora/internal/users/profile"
)

// # Fakes

type memoryRepository struct {
	mu       sync.Mutex
	profiles map[string]*profile.Profile
	created  int
}

func newMemoryRepository(seed ...profile.Profile) *memoryRepository {
	repository := &memoryRepository{profiles: map[string]*profile.Profile{}}
	for i := range seed {
		stored := seed[i]
		repository.profiles[stored.ID] = &stored
	}
	return repository
}

func (repository *memoryRepository) FindByID(_ context.Context, id string) (*profile.Profile, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if found, ok := repository.profiles[id]; ok {
		copied := *found
		return &copied, nil
	}
	return nil, apperr.NotFound("Profile")
}

func (repository *memoryRepository) FindBySubject(_ context.Context, subject string) (*profile.Profile, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	for _, found := range repository.profiles {
		if found.Subject == subject {
			copied := *found
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Profile")
}

func (repository *memoryRepository) Create(ctx context.Context, created *profile.Profile) (*profile.Profile, error) {
	repository.mu.Lock()
	repository.created++
	stored := *created
	repository.profiles[stored.ID] = &stored
	repository.mu.Unlock()
	return repository.FindByID(ctx, stored.ID)
}

func (repository *memoryRepository) SyncIdentity(ctx context.Context, identity profile.Identity) (*profile.Profile, error) {
	found, err := repository.FindBySubject(ctx, identity.Subject)
	if err != nil {
		return nil, err
	}
	repository.mu.Lock()
	stored := repository.profiles[found.ID]
	stored.Email, stored.DisplayName, stored.IsVerified = identity.Email, identity.DisplayName, identity.IsVerified
	repository.mu.Unlock()
	return repository.FindByID(ctx, found.ID)
}

func (repository *memoryRepository) UpdateRole(ctx context.Context, id string, role access.Role) (*profile.Profile, error) {
	repository.mu.Lock()
	if stored, ok := repository.profiles[id]; ok {
		stored.Role = role
	}
	repository.mu.Unlock()
	return repository.FindByID(ctx, id)
}

func (repository *memoryRepository) Deactivate(ctx context.Context, id string) (*profile.Profile, error) {
	repository.mu.Lock()
	if stored, ok := repository.profiles[id]; ok {
		stored.IsActive = false
	}
	repository.mu.Unlock()
	return repository.FindByID(ctx, id)
}

func (repository *memoryRepository) List(_ context.Context, filter profile.Filter, _, _ int) ([]profile.Profile, int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	result := make([]profile.Profile, 0)
	for _, stored := range repository.profiles {
		if filter.Role != "" && stored.Role != filter.Role {
			continue
		}
		result = append(result, *stored)
	}
	return result, len(result), nil
}

type memoryRules struct{}

func (memoryRules) FindRule(context.Context, string, string, string) (*access.Rule, error) {
	return nil, apperr.NotFound("Access rule")
}
func (memoryRules) ListRules(context.Context, access.RuleFilter, int, int) ([]access.Rule, int, error) {
	return nil, 0, nil
}
func (memoryRules) UpsertRule(context.Context, *access.Rule) error { return nil }
func (memoryRules) DeleteRule(context.Context, string) (*access.Rule, error) {
	return nil, apperr.NotFound("Access rule")
}

type recorder struct{ entries []audit.Entry }

func (r *recorder) Record(_ context.Context, entry audit.Entry) { r.entries = append(r.entries, entry) }

func staff() []profile.Profile {
	return []profile.Profile{
		{ID: "p-root", Subject: "idp|root", Role: access.RoleSuperAdmin, IsActive: true},
		{ID: "p-admin", Subject: "idp|admin", Role: access.RoleAdmin, IsActive: true},
		{ID: "p-seller", Subject: "idp|seller", Role: access.RoleSeller, IsActive: true},
	}
}

func newService(repository profile.Repository) (*profile.Service, *recorder) {
	rec := &recorder{}
	return profile.NewService(repository, rec, slog.New(slog.NewTextHandler(io.Discard, nil))), rec
}

func as(ctx context.Context, subject string) context.Context {
	return ctxutil.WithAuthUser(ctx, &sec.AuthClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: subject}})
}

// # Tests

/*
TestEnsure creates once and then only syncs identity fields.
*/
func TestEnsure(t *testing.T) {
	repository := newMemoryRepository()
	service, _ := newService(repository)
	ctx := context.Background()

	first, err := service.Ensure(ctx, profile.Identity{Subject: "idp|sam", Email: "sam@sleepora.shop"})
	require.NoError(t, err)
	assert.Equal(t, access.RoleCustomer, first.Role)
	assert.True(t, first.IsActive)
	assert.False(t, first.IsVerified)

	again, err := service.Ensure(ctx, profile.Identity{Subject: "idp|sam", Email: "sam@sleepora.shop"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 1, repository.created)

	synced, err := service.Ensure(ctx, profile.Identity{Subject: "idp|sam", Email: "sam@sleepora.shop", IsVerified: true})
	require.NoError(t, err)
	assert.True(t, synced.IsVerified)
	assert.Equal(t, access.RoleCustomer, synced.Role)

	_, err = service.Ensure(ctx, profile.Identity{Subject: " "})
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
}

/*
TestAccessProfile_FeedsEvaluator wires profiles into the access service.
*/
func TestAccessProfile_FeedsEvaluator(t *testing.T) {
	repository := newMemoryRepository(staff()...)
	service, _ := newService(repository)
	evaluator := access.NewService(service, memoryRules{}, &recorder{})
	ctx := context.Background()

	decision, err := evaluator.CheckAccess(ctx, "idp|seller", "store", "delete")
	require.NoError(t, err)
	assert.Equal(t, access.Decision{Allowed: true, Reason: "role-table:manage_store"}, decision)

	decision, err = evaluator.CheckAccess(ctx, "idp|nobody", "store", "delete")
	require.NoError(t, err)
	assert.Equal(t, access.ReasonProfileNotFound, decision.Reason)

	_, err = service.Deactivate(as(ctx, "idp|admin"), "p-seller")
	require.NoError(t, err)

	decision, err = evaluator.CheckAccess(ctx, "idp|seller", "store", "delete")
	require.NoError(t, err)
	assert.Equal(t, access.Decision{Allowed: false, Reason: access.ReasonProfileInactive}, decision)
}

/*
TestChangeRole enforces the super admin and self-change restrictions.
*/
func TestChangeRole(t *testing.T) {
	repository := newMemoryRepository(staff()...)
	service, rec := newService(repository)
	ctx := context.Background()

	_, err := service.ChangeRole(as(ctx, "idp|admin"), "p-seller", access.Role("Admin"))
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = service.ChangeRole(as(ctx, "idp|admin"), "p-seller", access.RoleSuperAdmin)
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))

	_, err = service.ChangeRole(as(ctx, "idp|admin"), "p-root", access.RoleCustomer)
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))

	_, err = service.ChangeRole(as(ctx, "idp|admin"), "p-admin", access.RoleCustomer)
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))

	updated, err := service.ChangeRole(as(ctx, "idp|admin"), "p-seller", access.RoleArchitect)
	require.NoError(t, err)
	assert.Equal(t, access.RoleArchitect, updated.Role)

	promoted, err := service.ChangeRole(as(ctx, "idp|root"), "p-admin", access.RoleSuperAdmin)
	require.NoError(t, err)
	assert.Equal(t, access.RoleSuperAdmin, promoted.Role)

	_, err = service.ChangeRole(as(ctx, "idp|admin"), "p-missing", access.RoleSeller)
	assert.True(t, apperr.IsNotFound(err))

	require.Len(t, rec.entries, 2)
	assert.Equal(t, audit.ActionUpdateRole, rec.entries[0].Action)
	assert.Equal(t, map[string]any{"from": "seller", "to": "architect"}, rec.entries[0].Metadata)
}

/*
TestAssignRole promotes by subject without a caller profile.
*/
func TestAssignRole(t *testing.T) {
	repository := newMemoryRepository(staff()...)
	service, rec := newService(repository)
	ctx := as(context.Background(), "sleeporactl")

	promoted, err := service.AssignRole(ctx, "idp|seller", access.RoleSuperAdmin)
	require.NoError(t, err)
	assert.Equal(t, access.RoleSuperAdmin, promoted.Role)

	unchanged, err := service.AssignRole(ctx, "idp|seller", access.RoleSuperAdmin)
	require.NoError(t, err)
	assert.Equal(t, promoted.ID, unchanged.ID)
	assert.Len(t, rec.entries, 1)

	_, err = service.AssignRole(ctx, "idp|nobody", access.RoleAdmin)
	assert.True(t, apperr.IsNotFound(err))

	_, err = service.AssignRole(ctx, "idp|seller", access.Role("owner"))
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

/*
TestHandler_Me creates the profile from token claims.
*/
func TestHandler_Me(t *testing.T) {
	service, _ := newService(newMemoryRepository())
	router := profile.NewHandler(service, nil).MeRoutes()

	anonymous := httptest.NewRecorder()
	router.ServeHTTP(anonymous, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, anonymous.Code)

	claims := &sec.AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "idp|kim"},
		Email:            "kim@sleepora.shop",
		Name:             "Kim",
		EmailVerified:    true,
	}
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request = request.WithContext(ctxutil.WithAuthUser(request.Context(), claims))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, strings.Contains(recorder.Body.String(), `"role":"customer"`))
	assert.True(t, strings.Contains(recorder.Body.String(), `"is_verified":true`))
}
