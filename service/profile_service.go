package service

import (
	"context"
	"strings"

	"github.com/sparkbytes/sparkbytes"
	"github.com/sparkbytes/sparkbytes/auth"
	"github.com/sparkbytes/sparkbytes/errors"
)

// Onboarding form messages.
const (
	msgNameRequired = "Please enter your name"
	msgDietRequired = "Please select at least one dietary preference"
)

func validateProfile(op errors.Op, in sparkbytes.ProfileInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.E(op, errors.Invalid, msgNameRequired)
	}
	if in.Dietary.Empty() {
		return errors.E(op, errors.Invalid, msgDietRequired)
	}
	return nil
}

// ProfileGet returns the current user's profile. A NotExist error means the
// user still has to onboard.
func (s *Service) ProfileGet(ctx context.Context) (sparkbytes.UserProfile, error) {
	const op errors.Op = "Service.ProfileGet"

	userID, err := currentUser(ctx, op)
	if err != nil {
		return sparkbytes.UserProfile{}, err
	}

	profile, err := s.Profiles.Load(ctx, userID)
	if err != nil {
		return sparkbytes.UserProfile{}, errors.E(op, err)
	}
	return profile, nil
}

// ProfileOnboard creates the current user's profile. The email comes from
// the identity provider, not the form.
func (s *Service) ProfileOnboard(ctx context.Context, in sparkbytes.ProfileInput) (sparkbytes.UserProfile, error) {
	const op errors.Op = "Service.ProfileOnboard"

	userID, err := currentUser(ctx, op)
	if err != nil {
		return sparkbytes.UserProfile{}, err
	}
	if err := validateProfile(op, in); err != nil {
		return sparkbytes.UserProfile{}, err
	}

	_, err = s.Profiles.Load(ctx, userID)
	switch {
	case err == nil:
		return sparkbytes.UserProfile{}, errors.E(op, errors.Exist, userID, "profile already exists")
	case !errors.Is(errors.NotExist, err):
		return sparkbytes.UserProfile{}, errors.E(op, err)
	}

	profile := sparkbytes.UserProfile{
		ID:        userID,
		Name:      strings.TrimSpace(in.Name),
		Email:     auth.User(ctx).Email,
		Dietary:   in.Dietary,
		Events:    []sparkbytes.EventID{},
		CreatedAt: s.now().UTC(),
	}
	if err := s.Profiles.Save(ctx, profile); err != nil {
		return sparkbytes.UserProfile{}, errors.E(op, err)
	}
	return profile, nil
}

// ProfileUpdate replaces the name, email and dietary preferences of the
// current user's profile. The event list and creation time are kept.
func (s *Service) ProfileUpdate(ctx context.Context, in sparkbytes.ProfileInput) (sparkbytes.UserProfile, error) {
	const op errors.Op = "Service.ProfileUpdate"

	userID, err := currentUser(ctx, op)
	if err != nil {
		return sparkbytes.UserProfile{}, err
	}
	if err := validateProfile(op, in); err != nil {
		return sparkbytes.UserProfile{}, err
	}

	profile, err := s.Profiles.Load(ctx, userID)
	if err != nil {
		return sparkbytes.UserProfile{}, errors.E(op, err)
	}

	profile.Name = strings.TrimSpace(in.Name)
	profile.Dietary = in.Dietary
	if in.Email != "" {
		profile.Email = in.Email
	}

	if err := s.Profiles.Save(ctx, profile); err != nil {
		return sparkbytes.UserProfile{}, errors.E(op, err)
	}
	return profile, nil
}
