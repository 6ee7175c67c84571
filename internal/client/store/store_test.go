package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/projboard/projboard/internal/domain/entity"
)

func openTestStores(t *testing.T) *Stores {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCredentialStoreCreateAndAuthenticate(t *testing.T) {
	s := openTestStores(t)
	ctx := context.Background()

	id, err := s.Credentials.Create(ctx, "Maria", "maria@example.com", "secret1", "11 99999-0000")
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	a, err := s.Credentials.Authenticate(ctx, "maria@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Maria", a.Name)
	assert.Equal(t, "maria@example.com", a.Email)
	assert.NotEqual(t, "secret1", a.Password, "password must be stored hashed")
}

func TestCredentialStoreAuthenticateWrongPassword(t *testing.T) {
	s := openTestStores(t)
	ctx := context.Background()

	_, err := s.Credentials.Create(ctx, "Maria", "maria@example.com", "secret1", "")
	require.NoError(t, err)

	_, err = s.Credentials.Authenticate(ctx, "maria@example.com", "wrong")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Credentials.Authenticate(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCredentialStoreDuplicateEmail(t *testing.T) {
	s := openTestStores(t)
	ctx := context.Background()

	_, err := s.Credentials.Create(ctx, "Maria", "maria@example.com", "secret1", "")
	require.NoError(t, err)

	_, err = s.Credentials.Create(ctx, "Other", "maria@example.com", "secret2", "")
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	// Emails are case-normalized, so a different casing is still a dup.
	_, err = s.Credentials.Create(ctx, "Other", "MARIA@example.com", "secret2", "")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestCredentialStoreValidation(t *testing.T) {
	s := openTestStores(t)
	ctx := context.Background()

	cases := []struct {
		name, email, password string
	}{
		{"", "maria@example.com", "secret1"},
		{"Maria", "", "secret1"},
		{"Maria", "maria@example.com", ""},
		{"Maria", "not-an-email", "secret1"},
		{"Maria", "maria@nodot", "secret1"},
	}
	for _, c := range cases {
		_, err := s.Credentials.Create(ctx, c.name, c.email, c.password, "")
		assert.ErrorIs(t, err, ErrValidation, "name=%q email=%q", c.name, c.email)
	}
}

func TestSessionStoreRoundTrip(t *testing.T) {
	s := openTestStores(t)
	ctx := context.Background()

	sess, err := s.Session.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Session{}, sess, "signed-out state reads as zero values")

	require.NoError(t, s.Session.SaveSession(ctx, Session{
		Name:  "Maria",
		Email: "maria@example.com",
		Phone: "11 99999-0000",
	}))

	sess, err = s.Session.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Maria", sess.Name)
	assert.Equal(t, "maria@example.com", sess.Email)
	assert.Equal(t, "11 99999-0000", sess.Phone)

	require.NoError(t, s.Session.ClearSession(ctx))
	sess, err = s.Session.LoadSession(ctx)
	require.NoError(t, err)
	assert.Empty(t, sess.Name)
	assert.Empty(t, sess.Email)
	assert.Empty(t, sess.Phone)
}

func TestSessionStoreClearDropsAvatar(t *testing.T) {
	s := openTestStores(t)
	ctx := context.Background()

	require.NoError(t, s.Session.SaveSession(ctx, Session{Name: "Maria", Email: "maria@example.com"}))
	require.NoError(t, s.Session.SaveAvatar(ctx, "maria@example.com", "avatars/maria.png"))

	ref, err := s.Session.LoadAvatar(ctx, "maria@example.com")
	require.NoError(t, err)
	assert.Equal(t, "avatars/maria.png", ref)

	require.NoError(t, s.Session.ClearSession(ctx))
	ref, err = s.Session.LoadAvatar(ctx, "maria@example.com")
	require.NoError(t, err)
	assert.Empty(t, ref, "missing avatar reads back as empty, not an error")
}

func TestListingStoreAppendAssignsID(t *testing.T) {
	s := openTestStores(t)
	ctx := context.Background()

	l, err := s.Listings.Append(ctx, entity.Listing{Title: "Beach house"})
	require.NoError(t, err)
	assert.NotEmpty(t, l.ID)
	assert.False(t, l.CreatedAt.IsZero())

	all, err := s.Listings.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, l.ID, all[0].ID)
}

func TestListingStoreRemove(t *testing.T) {
	s := openTestStores(t)
	ctx := context.Background()

	a, err := s.Listings.Append(ctx, entity.Listing{Title: "A"})
	require.NoError(t, err)
	b, err := s.Listings.Append(ctx, entity.Listing{Title: "B"})
	require.NoError(t, err)

	require.NoError(t, s.Listings.Remove(ctx, a.ID))
	all, err := s.Listings.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, b.ID, all[0].ID)

	// Unknown ids are a no-op.
	require.NoError(t, s.Listings.Remove(ctx, "does-not-exist"))
	all, err = s.Listings.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestListingStoreReplaceAll(t *testing.T) {
	s := openTestStores(t)
	ctx := context.Background()

	_, err := s.Listings.Append(ctx, entity.Listing{Title: "stale"})
	require.NoError(t, err)

	require.NoError(t, s.Listings.ReplaceAll(ctx, []entity.Listing{
		{ID: "10", Title: "fresh one"},
		{ID: "20", Title: "fresh two"},
	}))

	all, err := s.Listings.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "fresh one", all[0].Title)
}

func TestListingStoreEmpty(t *testing.T) {
	s := openTestStores(t)

	all, err := s.Listings.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}
