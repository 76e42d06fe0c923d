// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/sleepora/internal/access"
	"github.com/taibuivan/sleepora/internal/audit"
	"github.com/taibuivan/sleepora/internal/platform/apperr"
	"github.com/taibuivan/sleepora/internal/platform/ctxutil"
	"github.com/taibuivan/sleepora/pkg/pagination"
	"github.com/taibuivan/sleepora/pkg/uuid"
)

// Service manages profiles and serves them to the access evaluator.
type Service struct {
	repository Repository
	recorder   audit.Recorder
	logger     *slog.Logger
}

// NewService constructs a [Service].
func NewService(repository Repository, recorder audit.Recorder, logger *slog.Logger) *Service {
	return &Service{repository: repository, recorder: recorder, logger: logger}
}

// # Access Evaluation

// AccessProfile implements [access.ProfileReader].
func (service *Service) AccessProfile(ctx context.Context, subject string) (*access.Profile, error) {
	profile, err := service.repository.FindBySubject(ctx, subject)
	if err != nil {
		return nil, err
	}
	return &access.Profile{Subject: profile.Subject, Role: profile.Role, IsActive: profile.IsActive}, nil
}

// # Identity Sync

/*
Ensure returns the profile for identity, creating it on first login.

Description: New profiles start as an active customer. On later calls the
email, display name and verified flag are refreshed from the token when they
have changed; role and activity are never touched here.
*/
func (service *Service) Ensure(ctx context.Context, identity Identity) (*Profile, error) {
	if strings.TrimSpace(identity.Subject) == "" {
		return nil, apperr.Unauthorized("Authentication required")
	}

	existing, err := service.repository.FindBySubject(ctx, identity.Subject)
	switch {
	case err == nil:
		if existing.Email == identity.Email && existing.DisplayName == identity.DisplayName && existing.IsVerified == identity.IsVerified {
			return existing, nil
		}
		return service.repository.SyncIdentity(ctx, identity)

	case !apperr.IsNotFound(err):
		return nil, err
	}

	created, err := service.repository.Create(ctx, &Profile{
		ID:          uuid.New(),
		Subject:     identity.Subject,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		Role:        access.RoleCustomer,
		IsActive:    true,
		IsVerified:  identity.IsVerified,
	})
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "profile_created",
		slog.String("profile_id", created.ID),
		slog.String("subject", created.Subject),
	)
	return created, nil
}

// # Administration

// Get returns profile id.
func (service *Service) Get(ctx context.Context, id string) (*Profile, error) {
	return service.repository.FindByID(ctx, id)
}

// GetBySubject returns the profile of subject.
func (service *Service) GetBySubject(ctx context.Context, subject string) (*Profile, error) {
	return service.repository.FindBySubject(ctx, subject)
}

// List returns one page of profiles.
func (service *Service) List(ctx context.Context, filter Filter, params pagination.Params) ([]Profile, int, error) {
	return service.repository.List(ctx, filter, params.Limit, params.Offset())
}

/*
ChangeRole moves profile id to role.

Description: The route guard has already checked the "user/update_role"
capability. On top of that only a super_admin may grant or revoke super_admin,
and nobody changes their own role.

Errors:
  - apperr.ValidationError: role is not a known role
  - apperr.Forbidden: the super_admin or self-change restriction applies
*/
func (service *Service) ChangeRole(ctx context.Context, id string, role access.Role) (*Profile, error) {
	if !role.Valid() {
		return nil, apperr.ValidationError("Validation failed", apperr.FieldError{Field: "role", Message: "Unknown role"})
	}

	target, err := service.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	actor, err := service.actor(ctx)
	if err != nil {
		return nil, err
	}
	if actor.ID == target.ID {
		return nil, apperr.Forbidden("You cannot change your own role")
	}
	if (role == access.RoleSuperAdmin || target.Role == access.RoleSuperAdmin) && actor.Role != access.RoleSuperAdmin {
		return nil, apperr.Forbidden("Only a super admin can grant or revoke super admin")
	}

	if target.Role == role {
		return target, nil
	}

	updated, err := service.repository.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}

	service.recorder.Record(ctx, audit.Entry{
		Action:     audit.ActionUpdateRole,
		EntityType: "user",
		EntityID:   id,
		Metadata:   map[string]any{"from": string(target.Role), "to": string(role)},
	})
	return updated, nil
}

// AssignRole sets the role of the profile behind subject without the caller
// checks of [Service.ChangeRole]. It is the operator path used by sleeporactl
// to bootstrap the first super admin; the audit actor is taken from ctx.
func (service *Service) AssignRole(ctx context.Context, subject string, role access.Role) (*Profile, error) {
	if !role.Valid() {
		return nil, apperr.ValidationError("Validation failed", apperr.FieldError{Field: "role", Message: "Unknown role"})
	}

	target, err := service.repository.FindBySubject(ctx, subject)
	if err != nil {
		return nil, err
	}
	if target.Role == role {
		return target, nil
	}

	updated, err := service.repository.UpdateRole(ctx, target.ID, role)
	if err != nil {
		return nil, err
	}

	service.recorder.Record(ctx, audit.Entry{
		Action:     audit.ActionUpdateRole,
		EntityType: "user",
		EntityID:   target.ID,
		Metadata:   map[string]any{"from": string(target.Role), "to": string(role)},
	})
	service.logger.InfoContext(ctx, "role_assigned",
		slog.String("profile_id", target.ID), slog.String("role", string(role)))
	return updated, nil
}

// Deactivate soft-deletes profile id. The profile is kept so order history and
// commissions stay attributable; every later access check denies it.
func (service *Service) Deactivate(ctx context.Context, id string) (*Profile, error) {
	target, err := service.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	actor, err := service.actor(ctx)
	if err != nil {
		return nil, err
	}
	if actor.ID == target.ID {
		return nil, apperr.Forbidden("You cannot deactivate yourself")
	}
	if target.Role == access.RoleSuperAdmin && actor.Role != access.RoleSuperAdmin {
		return nil, apperr.Forbidden("Only a super admin can deactivate a super admin")
	}
	if !target.IsActive {
		return target, nil
	}

	updated, err := service.repository.Deactivate(ctx, id)
	if err != nil {
		return nil, err
	}

	service.recorder.Record(ctx, audit.Entry{Action: audit.ActionDeactivate, EntityType: "user", EntityID: id})
	return updated, nil
}

// actor loads the caller's own profile.
func (service *Service) actor(ctx context.Context) (*Profile, error) {
	subject := ctxutil.SubjectID(ctx)
	if subject == "" {
		return nil, apperr.Unauthorized("Authentication required")
	}

	actor, err := service.repository.FindBySubject(ctx, subject)
	if apperr.IsNotFound(err) {
		return nil, apperr.Forbidden("Caller has no profile")
	}
	return actor, err
}
