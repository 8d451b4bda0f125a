package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Engarr/Windmill-backend/internal/models"
	"github.com/Engarr/Windmill-backend/internal/repo"
	"github.com/Engarr/Windmill-backend/internal/service"
	"github.com/Engarr/Windmill-backend/internal/tokens"
)

type sentMail struct {
	To      string
	Subject string
	Text    string
}

type fakeMailer struct {
	mu   sync.Mutex
	Sent []sentMail
	Fail bool
}

func (m *fakeMailer) Send(_ context.Context, to, subject, textBody, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return errors.New("smtp boom")
	}
	m.Sent = append(m.Sent, sentMail{To: to, Subject: subject, Text: textBody})
	return nil
}

type fakeStorage struct {
	mu      sync.Mutex
	Objects map[string]bool
}

func (s *fakeStorage) Upload(_ context.Context, key, _ string, _ io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Objects[key] = true
	return "https://cdn.test/" + key, nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, key)
	return nil
}

// fakeSearch plays both index and query sides of the search stack with a
// plain substring match over product names.
type fakeSearch struct {
	mu   sync.Mutex
	docs map[uint]models.Product
}

func newFakeSearch() *fakeSearch {
	return &fakeSearch{docs: make(map[uint]models.Product)}
}

func (f *fakeSearch) IndexProduct(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[p.ID] = *p
	return nil
}

func (f *fakeSearch) DeleteProduct(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	return nil
}

func (f *fakeSearch) Query(_ context.Context, q string, from, size int) (int64, []models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	hits := make([]models.Product, 0, len(f.docs))
	for _, p := range f.docs {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(q)) {
			hits = append(hits, p)
		}
	}
	total := int64(len(hits))
	if from >= len(hits) {
		return total, nil, nil
	}
	end := from + size
	if end > len(hits) {
		end = len(hits)
	}
	return total, hits[from:end], nil
}

type testApp struct {
	Echo     *echo.Echo
	DB       *gorm.DB
	Mailer   *fakeMailer
	Storage  *fakeStorage
	Search   *fakeSearch
	Sessions *tokens.SessionService
	Auth     *service.AuthService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.ResetToken{},
		&models.Product{},
		&models.CartItem{},
		&models.WishlistItem{},
		&models.Order{},
		&models.OrderItem{},
	))

	mailer := &fakeMailer{}
	store := &fakeStorage{Objects: make(map[string]bool)}
	searcher := newFakeSearch()
	sessions := tokens.NewSessionService([]byte("test-jwt-secret"), 48*time.Hour)

	users := &repo.UserRepo{DB: db}
	authSvc := &service.AuthService{
		Users:    users,
		Resets:   &repo.ResetRepo{DB: db},
		Sessions: sessions,
		Mailer:   mailer,
	}
	products := &repo.ProductRepo{DB: db}
	catalog := &service.CatalogService{Products: products, Storage: store, Index: searcher}
	cartSvc := &service.CartService{
		Cart:     &repo.CartRepo{DB: db},
		Wishlist: &repo.WishlistRepo{DB: db},
		Products: products,
	}
	orderSvc := &service.OrderService{DB: db, Orders: &repo.OrderRepo{DB: db}}
	contact := &service.ContactService{Mailer: mailer, Inbox: "shop@windmill.test"}

	e := echo.New()
	Register(e, &Deps{
		Sessions:    sessions,
		AuthHandler: &AuthHandler{Svc: authSvc, Contact: contact, Orders: orderSvc},
		FeedHandler: &FeedHandler{Catalog: catalog, Products: products, Search: searcher},
		CartHandler: &CartHandler{Cart: cartSvc, Orders: orderSvc},
	})

	return &testApp{Echo: e, DB: db, Mailer: mailer, Storage: store, Search: searcher, Sessions: sessions, Auth: authSvc}
}

func (a *testApp) do(t *testing.T, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// signup registers a user through the API and returns id plus a live token.
func (a *testApp) signup(t *testing.T, email, password string) (uint, string) {
	t.Helper()
	rec := a.do(t, http.MethodPut, "/auth/signup", "",
		`{"email":"`+email+`","password":"`+password+`","repeatPassword":"`+password+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	userID := uint(decodeBody(t, rec)["userId"].(float64))
	token, err := a.Sessions.Issue(userID, email)
	require.NoError(t, err)
	return userID, token
}
