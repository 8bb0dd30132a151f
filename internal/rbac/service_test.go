package rbac

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossworks/glossworks/internal/platform/httpx"
)

type stubStore struct {
	memberships map[[2]int64]Role
}

func (s *stubStore) GetMembership(ctx context.Context, userID, orgID int64) (*Membership, error) {
	role, ok := s.memberships[[2]int64{userID, orgID}]
	if !ok {
		return nil, ErrNoMembership
	}
	return &Membership{UserID: userID, OrgID: orgID, Role: role}, nil
}

func TestAuthorizeHierarchy(t *testing.T) {
	store := &stubStore{memberships: map[[2]int64]Role{
		{1, 10}: RoleAdmin,
		{2, 10}: RoleStaff,
		{3, 10}: RoleTechnician,
		{4, 10}: RoleClient,
	}}
	svc := NewService(store)
	ctx := context.Background()

	cases := []struct {
		name     string
		userID   int64
		required Role
		wantErr  bool
	}{
		{"admin passes admin", 1, RoleAdmin, false},
		{"admin passes client", 1, RoleClient, false},
		{"staff passes staff", 2, RoleStaff, false},
		{"staff fails admin", 2, RoleAdmin, true},
		{"technician passes technician", 3, RoleTechnician, false},
		{"technician fails staff", 3, RoleStaff, true},
		{"client passes client", 4, RoleClient, false},
		{"client fails technician", 4, RoleTechnician, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Authorize(ctx, tc.userID, 10, tc.required)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, httpx.ErrForbidden))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAuthorizeFailsClosed(t *testing.T) {
	svc := NewService(&stubStore{memberships: map[[2]int64]Role{}})
	ctx := context.Background()

	err := svc.Authorize(ctx, 99, 10, RoleClient)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrForbidden), "non-members must be denied even at the lowest level")

	err = svc.Authorize(ctx, 0, 10, RoleClient)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrUnauthorized))
}

func TestRoleAtLeastUnknownRole(t *testing.T) {
	assert.False(t, Role("owner").AtLeast(RoleClient))
	assert.False(t, RoleAdmin.AtLeast(Role("owner")))
}
