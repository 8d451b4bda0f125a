package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Engarr/Windmill-backend/internal/apperr"
	"github.com/Engarr/Windmill-backend/internal/hash"
	"github.com/Engarr/Windmill-backend/internal/logging"
	"github.com/Engarr/Windmill-backend/internal/mail"
	"github.com/Engarr/Windmill-backend/internal/models"
	"github.com/Engarr/Windmill-backend/internal/repo"
	"github.com/Engarr/Windmill-backend/internal/tokens"
)

// AuthService orchestrates signup, login, credential changes and the
// password-reset flow over the store adapters.
type AuthService struct {
	Users    *repo.UserRepo
	Resets   *repo.ResetRepo
	Sessions *tokens.SessionService
	Mailer   mail.Sender
}

type LoginResult struct {
	Token  string `json:"token"`
	Email  string `json:"email"`
	UserID uint   `json:"userId"`
}

func (s *AuthService) Signup(ctx context.Context, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("signup failed", "reason", "cannot hash password", "error", err)
		return nil, apperr.Internal("could not create user", err)
	}

	user := models.User{
		Email:        strings.ToLower(email),
		PasswordHash: pwHash,
	}
	if err := s.Users.Create(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			l.Warn("signup rejected", "reason", "email already registered")
			return nil, apperr.Conflict("email already registered")
		}
		l.Error("signup failed", "error", err)
		return nil, apperr.Internal("could not create user", err)
	}

	l.Info("user created", "user_id", user.ID)
	return &user, nil
}

// Login deliberately returns the same error for an unknown email and a
// wrong password so the response cannot be used to enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.Authentication("invalid email or password")
		}
		l.Error("login failed", "error", err)
		return nil, apperr.Internal("could not log in", err)
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, apperr.Authentication("invalid email or password")
	}

	token, err := s.Sessions.Issue(user.ID, user.Email)
	if err != nil {
		l.Error("login failed", "reason", "cannot sign session token", "error", err)
		return nil, apperr.Internal("could not log in", err)
	}

	l.Info("login successful", "user_id", user.ID)
	return &LoginResult{Token: token, Email: user.Email, UserID: user.ID}, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	l := logging.FromContext(ctx).With("svc", "auth.change_password", "user_id", userID)

	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.Authentication("not authenticated")
		}
		return apperr.Internal("could not change password", err)
	}

	if !hash.CheckPassword(user.PasswordHash, oldPassword) {
		l.Warn("change password rejected", "reason", "old password mismatch")
		return apperr.Authentication("wrong password")
	}

	pwHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal("could not change password", err)
	}
	user.PasswordHash = pwHash

	if err := s.Users.Save(ctx, user); err != nil {
		return apperr.Internal("could not change password", err)
	}
	l.Info("password changed")
	return nil
}

func (s *AuthService) ChangeEmail(ctx context.Context, userID uint, password, newEmail string) error {
	l := logging.FromContext(ctx).With("svc", "auth.change_email", "user_id", userID)

	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.Authentication("not authenticated")
		}
		return apperr.Internal("could not change email", err)
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("change email rejected", "reason", "password mismatch")
		return apperr.Authentication("wrong password")
	}

	newEmail = strings.ToLower(newEmail)
	taken, err := s.Users.EmailInUse(ctx, newEmail, user.ID)
	if err != nil {
		return apperr.Internal("could not change email", err)
	}
	if taken {
		return apperr.Conflict("email already registered")
	}

	user.Email = newEmail
	if err := s.Users.Save(ctx, user); err != nil {
		return apperr.Internal("could not change email", err)
	}
	l.Info("email changed")
	return nil
}
