package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/Engarr/Windmill-backend/internal/apperr"
	"github.com/Engarr/Windmill-backend/internal/hash"
	"github.com/Engarr/Windmill-backend/internal/logging"
	"github.com/Engarr/Windmill-backend/internal/repo"
)

const (
	// ResetCodeTTL bounds how long a code stays usable regardless of use.
	ResetCodeTTL = time.Hour

	resetCodeLength   = 6
	resetCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// newResetCode draws a human-enterable code from a 36^6 space, large
// enough that guessing within the one-hour window is not practical.
func newResetCode() (string, error) {
	buf := make([]byte, resetCodeLength)
	max := big.NewInt(int64(len(resetCodeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = resetCodeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// RequestReset issues a reset code for email and dispatches it out of
// band. Delivery is the entire purpose here, so a failed send fails the
// operation. An unknown email reports not-found; see the enumeration
// note in DESIGN.md.
func (s *AuthService) RequestReset(ctx context.Context, email string) error {
	l := logging.FromContext(ctx).With("svc", "auth.request_reset")

	user, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("no account registered for that email")
		}
		l.Error("reset request failed", "error", err)
		return apperr.Internal("could not issue reset code", err)
	}

	code, err := newResetCode()
	if err != nil {
		l.Error("reset request failed", "reason", "cannot generate code", "error", err)
		return apperr.Internal("could not issue reset code", err)
	}

	if err := s.Resets.Create(ctx, user.ID, code, ResetCodeTTL); err != nil {
		l.Error("reset request failed", "reason", "cannot store code", "error", err)
		return apperr.Internal("could not issue reset code", err)
	}

	subject := "Resetowanie hasła"
	text := fmt.Sprintf("Twój kod resetowania hasła: %s", code)
	html := fmt.Sprintf("<p>Twój kod resetowania hasła: <strong>%s</strong></p>", code)
	if err := s.Mailer.Send(ctx, user.Email, subject, text, html); err != nil {
		l.Error("reset request failed", "reason", "cannot send email", "error", err)
		return apperr.Internal("could not send reset email", err)
	}

	l.Info("reset code issued", "user_id", user.ID)
	return nil
}

// VerifyResetCode resolves a code to its owner without consuming it;
// consumption happens when the new password lands.
func (s *AuthService) VerifyResetCode(ctx context.Context, code string) (uint, error) {
	token, err := s.Resets.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repo.ErrCodeInvalid) {
			return 0, apperr.Authentication("invalid or expired reset code")
		}
		return 0, apperr.Internal("could not verify reset code", err)
	}
	return token.UserID, nil
}

// SetNewPassword completes the reset flow. Every outstanding code for the
// user is removed afterwards, so a consumed code cannot be replayed.
func (s *AuthService) SetNewPassword(ctx context.Context, userID uint, newPassword string) error {
	l := logging.FromContext(ctx).With("svc", "auth.set_new_password", "user_id", userID)

	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.Authentication("account no longer exists")
		}
		return apperr.Internal("could not set new password", err)
	}

	pwHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal("could not set new password", err)
	}
	user.PasswordHash = pwHash

	if err := s.Users.Save(ctx, user); err != nil {
		return apperr.Internal("could not set new password", err)
	}

	if err := s.Resets.DeleteByUser(ctx, userID); err != nil {
		// The password change already landed; leftover codes die by TTL.
		l.Warn("could not delete reset codes", "error", err)
	}

	l.Info("password reset completed")
	return nil
}

// SweepResetTokens runs the periodic expiry sweep until ctx is done.
func (s *AuthService) SweepResetTokens(ctx context.Context, every time.Duration) {
	l := logging.FromContext(ctx).With("svc", "auth.reset_sweep")
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Resets.Sweep(ctx)
			if err != nil {
				l.Warn("sweep failed", "error", err)
				continue
			}
			if n > 0 {
				l.Info("expired reset codes removed", "count", n)
			}
		}
	}
}
