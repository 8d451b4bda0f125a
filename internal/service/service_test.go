package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/Engarr/Windmill-backend/internal/models"
	"github.com/Engarr/Windmill-backend/internal/repo"
	"github.com/Engarr/Windmill-backend/internal/tokens"
)

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.ResetToken{},
		&models.Product{},
		&models.CartItem{},
		&models.WishlistItem{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

type sentMail struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// fakeMailer records outbound mail; Fail makes the next send error.
type fakeMailer struct {
	mu   sync.Mutex
	Sent []sentMail
	Fail bool
}

func (m *fakeMailer) Send(_ context.Context, to, subject, textBody, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return errors.New("smtp boom")
	}
	m.Sent = append(m.Sent, sentMail{To: to, Subject: subject, Text: textBody, HTML: htmlBody})
	return nil
}

func (m *fakeMailer) last(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		t.Fatal("no mail was sent")
	}
	return m.Sent[len(m.Sent)-1]
}

// fakeStorage pretends to be the image bucket.
type fakeStorage struct {
	mu      sync.Mutex
	Objects map[string]string
	Fail    bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{Objects: make(map[string]string)}
}

func (s *fakeStorage) Upload(_ context.Context, key, contentType string, body io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail {
		return "", errors.New("s3 boom")
	}
	s.Objects[key] = contentType
	return "https://cdn.test/" + key, nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, key)
	return nil
}

func newTestAuthService(t *testing.T) (*AuthService, *fakeMailer, *gorm.DB) {
	t.Helper()
	db := initTestDB(t)
	mailer := &fakeMailer{}
	svc := &AuthService{
		Users:    &repo.UserRepo{DB: db},
		Resets:   &repo.ResetRepo{DB: db},
		Sessions: tokens.NewSessionService([]byte("test-jwt-secret"), 48*time.Hour),
		Mailer:   mailer,
	}
	return svc, mailer, db
}
