package share

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securevault.org/internal/auth"
	"securevault.org/internal/document"
)

type fixture struct {
	svc   *Service
	store *InMemory
	docs  *document.InMemory
	users auth.Store
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: NewInMemory(),
		docs:  document.NewInMemory(),
		users: auth.NewInMemory(),
		now:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.store, f.docs, f.users.Users(), WithClock(func() time.Time { return f.now }))
	return f
}

func (f *fixture) addUser(t *testing.T, id, email string) {
	t.Helper()
	err := f.users.Users().Create(context.Background(), &auth.User{
		ID: id, Email: email, Role: auth.RoleUser, Active: true,
	})
	require.NoError(t, err)
}

func (f *fixture) addDocument(t *testing.T, id, ownerID string) {
	t.Helper()
	err := f.docs.Create(context.Background(), &document.Document{
		ID: id, OwnerID: ownerID, Name: "doc.pdf",
		Category: document.CategoryOther, MIMEType: "application/pdf",
		CreatedAt: f.now, UpdatedAt: f.now,
	})
	require.NoError(t, err)
}

func TestGrantAndRegrantKeepsOneRow(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "owner", "owner@vault.test")
	f.addUser(t, "grantee", "grantee@vault.test")
	f.addDocument(t, "doc-1", "owner")

	v, err := f.svc.Grant(context.Background(), "owner", "doc-1", GrantInput{
		GranteeID: "grantee", Permission: PermissionRead,
	})
	require.NoError(t, err)
	assert.Equal(t, PermissionRead, v.Permission)
	assert.False(t, v.IsExpired)
	assert.Equal(t, "grantee@vault.test", v.Grantee.Email)

	later := f.now.Add(48 * time.Hour)
	v2, err := f.svc.Grant(context.Background(), "owner", "doc-1", GrantInput{
		GranteeID: "grantee", Permission: PermissionReadWrite, ExpiresAt: &later,
	})
	require.NoError(t, err)
	assert.Equal(t, v.ID, v2.ID, "re-grant must update the existing row")
	assert.Equal(t, PermissionReadWrite, v2.Permission)

	views, err := f.svc.ListForDocument(context.Background(), "owner", "doc-1")
	require.NoError(t, err)
	require.Len(t, views, 1)
}

func TestGrantGuards(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "owner", "owner@vault.test")
	f.addUser(t, "grantee", "grantee@vault.test")
	f.addDocument(t, "doc-1", "owner")

	_, err := f.svc.Grant(context.Background(), "owner", "doc-1", GrantInput{
		GranteeID: "owner", Permission: PermissionRead,
	})
	assert.ErrorIs(t, err, ErrSelfShare)

	past := f.now.Add(-time.Minute)
	_, err = f.svc.Grant(context.Background(), "owner", "doc-1", GrantInput{
		GranteeID: "grantee", Permission: PermissionRead, ExpiresAt: &past,
	})
	assert.ErrorIs(t, err, ErrExpiryInPast)

	_, err = f.svc.Grant(context.Background(), "owner", "doc-1", GrantInput{
		GranteeID: "ghost", Permission: PermissionRead,
	})
	assert.ErrorIs(t, err, ErrUnknownGrantee)

	_, err = f.svc.Grant(context.Background(), "grantee", "doc-1", GrantInput{
		GranteeID: "owner", Permission: PermissionRead,
	})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Grant(context.Background(), "owner", "missing", GrantInput{
		GranteeID: "grantee", Permission: PermissionRead,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListForDocumentFlagsExpiredShares(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "owner", "owner@vault.test")
	f.addUser(t, "grantee", "grantee@vault.test")
	f.addDocument(t, "doc-1", "owner")

	soon := f.now.Add(time.Hour)
	_, err := f.svc.Grant(context.Background(), "owner", "doc-1", GrantInput{
		GranteeID: "grantee", Permission: PermissionRead, ExpiresAt: &soon,
	})
	require.NoError(t, err)

	f.now = f.now.Add(2 * time.Hour)
	views, err := f.svc.ListForDocument(context.Background(), "owner", "doc-1")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].IsExpired)
}

func TestSharedWithMeFiltersExpired(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "owner", "owner@vault.test")
	f.addUser(t, "grantee", "grantee@vault.test")
	f.addDocument(t, "doc-live", "owner")
	f.addDocument(t, "doc-stale", "owner")

	soon := f.now.Add(time.Hour)
	_, err := f.svc.Grant(context.Background(), "owner", "doc-live", GrantInput{
		GranteeID: "grantee", Permission: PermissionRead,
	})
	require.NoError(t, err)
	_, err = f.svc.Grant(context.Background(), "owner", "doc-stale", GrantInput{
		GranteeID: "grantee", Permission: PermissionRead, ExpiresAt: &soon,
	})
	require.NoError(t, err)

	f.now = f.now.Add(2 * time.Hour)
	docs, err := f.svc.SharedWithMe(context.Background(), "grantee")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "doc-live", docs[0].DocumentID)
	assert.Equal(t, "owner@vault.test", docs[0].Owner.Email)

	// The expired share still satisfies a direct-access check until revoked.
	ok, err := f.svc.Exists(context.Background(), "doc-stale", "grantee")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRevokeRejectsForeignDocumentPath(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "owner", "owner@vault.test")
	f.addUser(t, "grantee", "grantee@vault.test")
	f.addDocument(t, "doc-1", "owner")
	f.addDocument(t, "doc-2", "owner")

	v, err := f.svc.Grant(context.Background(), "owner", "doc-1", GrantInput{
		GranteeID: "grantee", Permission: PermissionRead,
	})
	require.NoError(t, err)

	err = f.svc.Revoke(context.Background(), "owner", "doc-2", v.ID)
	assert.ErrorIs(t, err, ErrDocumentMismatch)
	_, err = f.svc.UpdatePermission(context.Background(), "owner", "doc-2", v.ID, PermissionReadWrite)
	assert.ErrorIs(t, err, ErrDocumentMismatch)

	// The share itself survives a misaddressed revoke.
	views, err := f.svc.ListForDocument(context.Background(), "owner", "doc-1")
	require.NoError(t, err)
	require.Len(t, views, 1)
}

func TestExpiredBoundaryIsExclusive(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sh := &Share{ExpiresAt: &now}

	assert.False(t, sh.Expired(now), "a share expiring exactly now is still live")
	assert.True(t, sh.Expired(now.Add(time.Nanosecond)))
	assert.False(t, (&Share{}).Expired(now))
}

func TestRevokeAndUpdatePermission(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "owner", "owner@vault.test")
	f.addUser(t, "grantee", "grantee@vault.test")
	f.addDocument(t, "doc-1", "owner")

	v, err := f.svc.Grant(context.Background(), "owner", "doc-1", GrantInput{
		GranteeID: "grantee", Permission: PermissionRead,
	})
	require.NoError(t, err)

	_, err = f.svc.UpdatePermission(context.Background(), "grantee", "doc-1", v.ID, PermissionReadWrite)
	assert.ErrorIs(t, err, ErrForbidden)

	v2, err := f.svc.UpdatePermission(context.Background(), "owner", "doc-1", v.ID, PermissionReadWrite)
	require.NoError(t, err)
	assert.Equal(t, PermissionReadWrite, v2.Permission)

	require.NoError(t, f.svc.Revoke(context.Background(), "owner", "doc-1", v.ID))
	err = f.svc.Revoke(context.Background(), "owner", "doc-1", v.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := f.svc.Exists(context.Background(), "doc-1", "grantee")
	require.NoError(t, err)
	assert.False(t, ok)
}
