package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/sparkbytes/sparkbytes"
	"github.com/sparkbytes/sparkbytes/auth"
	"github.com/sparkbytes/sparkbytes/errors"
	"github.com/sparkbytes/sparkbytes/log"
)

// SessionBegin completes a sign-in. Failures reported by the browser become
// Session errors carrying the message for the failure code. Accounts outside
// the institution's domain are signed out again and rejected.
func (s *Service) SessionBegin(ctx context.Context, req sparkbytes.SessionRequest) (sparkbytes.Session, error) {
	const op errors.Op = "Service.SessionBegin"

	var sess sparkbytes.Session

	if req.Error != "" {
		log.FromContext(ctx).Info("sign-in failed", zap.String("code", req.Error))
		return sess, errors.E(op, errors.Session, auth.SignInMessage(req.Error))
	}
	if req.IDToken == "" {
		return sess, errors.E(op, errors.Invalid, "missing id token")
	}

	info, err := s.Auth.Verify(ctx, req.IDToken)
	if err != nil {
		return sess, errors.E(op, errors.NotLoggedIn, err)
	}
	userID := sparkbytes.UserID(info.ID)

	if !auth.InDomain(info.Email, s.Domain) {
		if err := s.Auth.SignOut(ctx, info.ID); err != nil {
			log.FromContext(ctx).Warn("sign out rejected user",
				zap.String("userid", info.ID), zap.Error(err))
		}
		return sess, errors.E(op, errors.Rejected, userID, auth.DomainMessage)
	}

	sess.UserID = userID
	sess.Email = info.Email

	profile, err := s.Profiles.Load(ctx, userID)
	switch {
	case errors.Is(errors.NotExist, err):
		sess.NeedsOnboarding = true
		sess.Next = sparkbytes.RouteSignup
	case err != nil:
		return sparkbytes.Session{}, errors.E(op, userID, err)
	default:
		sess.Profile = &profile
		sess.Next = sparkbytes.RouteHome
	}

	return sess, nil
}

// SessionEnd signs the current user out. Without a current user, eg when
// the session token has already expired, there's nothing to revoke and it
// succeeds.
func (s *Service) SessionEnd(ctx context.Context) error {
	const op errors.Op = "Service.SessionEnd"

	userID := sparkbytes.UserID(auth.User(ctx).ID)
	if userID == "" {
		return nil
	}
	if err := s.Auth.SignOut(ctx, string(userID)); err != nil {
		return errors.E(op, errors.Internal, userID, err)
	}
	return nil
}
