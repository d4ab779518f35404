// Package service resolves authenticated users to actors.
package service

import (
	"context"
	"errors"

	"leadflow_backend/internal/identity"
	"leadflow_backend/internal/identity/repository"
	"leadflow_backend/platform/httpkit"
)

// Service resolves the actor for a request. Called immediately before every
// transition so the stamped name reflects the directory at that moment.
type Service struct {
	repo *repository.Repository
}

func New(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// FetchActor resolves the acting user to a display name plus optional
// employee id. The employee directory wins over token claims; the token's
// full_name claim is the fallback for users without an employee row.
func (s *Service) FetchActor(ctx context.Context, id httpkit.Identity) (identity.Actor, error) {
	if s.repo != nil {
		employee, err := s.repo.GetByUserID(ctx, id.UserID())
		if err == nil {
			empID := employee.ID
			return identity.Actor{FullName: employee.FullName, EmployeeID: &empID}, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return identity.Actor{}, err
		}
	}

	actor := identity.Actor{FullName: id.FullName()}
	if empID, ok := id.EmployeeID(); ok {
		actor.EmployeeID = &empID
	}
	if actor.FullName == "" {
		actor.FullName = id.UserID().String()
	}
	return actor, nil
}
