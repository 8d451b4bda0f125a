package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Engarr/Windmill-backend/internal/models"
)

func TestUserRepo_CreateEnforcesUniqueEmail(t *testing.T) {
	t.Parallel()
	r := &UserRepo{DB: initTestDB(t)}
	ctx := context.Background()

	first := models.User{Email: "A@x.com", PasswordHash: "h1"}
	require.NoError(t, r.Create(ctx, &first))
	assert.Equal(t, "a@x.com", first.Email)
	assert.NotZero(t, first.ID)

	dup := models.User{Email: "a@X.COM", PasswordHash: "h2"}
	err := r.Create(ctx, &dup)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserRepo_CreateTranslatesDuplicateKey(t *testing.T) {
	t.Parallel()
	db := initTestDB(t)
	r := &UserRepo{DB: db}
	ctx := context.Background()

	// A row inserted behind the repo's back still yields ErrEmailTaken:
	// the unique index decides, not a lookup before the insert.
	require.NoError(t, db.Create(&models.User{Email: "a@x.com", PasswordHash: "h1"}).Error)

	dup := models.User{Email: "a@x.com", PasswordHash: "h2"}
	assert.ErrorIs(t, r.Create(ctx, &dup), ErrEmailTaken)
}

func TestUserRepo_FindByEmail(t *testing.T) {
	t.Parallel()
	r := &UserRepo{DB: initTestDB(t)}
	ctx := context.Background()

	u := models.User{Email: "a@x.com", PasswordHash: "h"}
	require.NoError(t, r.Create(ctx, &u))

	found, err := r.FindByEmail(ctx, "A@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = r.FindByEmail(ctx, "ghost@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepo_EmailInUse(t *testing.T) {
	t.Parallel()
	r := &UserRepo{DB: initTestDB(t)}
	ctx := context.Background()

	a := models.User{Email: "a@x.com", PasswordHash: "h"}
	b := models.User{Email: "b@x.com", PasswordHash: "h"}
	require.NoError(t, r.Create(ctx, &a))
	require.NoError(t, r.Create(ctx, &b))

	taken, err := r.EmailInUse(ctx, "B@x.com", a.ID)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = r.EmailInUse(ctx, "a@x.com", a.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = r.EmailInUse(ctx, "free@x.com", a.ID)
	require.NoError(t, err)
	assert.False(t, taken)
}
