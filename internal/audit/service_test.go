package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossworks/glossworks/internal/platform/httpx"
	"github.com/glossworks/glossworks/internal/rbac"
)

type memRepo struct {
	entries []Entry
}

func (m *memRepo) Timeline(ctx context.Context, orgID int64, filters TimelineFilters, limit, offset int) ([]Entry, error) {
	var matched []Entry
	for _, e := range m.entries {
		if filters.ActorID > 0 && e.ActorID != filters.ActorID {
			continue
		}
		if filters.Entity != "" && e.Entity != filters.Entity {
			continue
		}
		if filters.Action != "" && e.Action != filters.Action {
			continue
		}
		matched = append(matched, e)
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

type roleStore map[int64]rbac.Role

func (s roleStore) GetMembership(ctx context.Context, userID, orgID int64) (*rbac.Membership, error) {
	role, ok := s[userID]
	if !ok {
		return nil, rbac.ErrNoMembership
	}
	return &rbac.Membership{UserID: userID, OrgID: orgID, Role: role}, nil
}

func seededService(count int) (*Service, *memRepo) {
	repo := &memRepo{}
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < count; i++ {
		repo.entries = append(repo.entries, Entry{
			ID:       int64(i + 1),
			ActorID:  2,
			Action:   "booking.created",
			Entity:   "booking",
			EntityID: fmt.Sprintf("%d", i+1),
			At:       base.Add(time.Duration(i) * time.Minute),
		})
	}
	authorizer := rbac.NewService(roleStore{
		1: rbac.RoleClient,
		2: rbac.RoleStaff,
	})
	return NewService(repo, authorizer), repo
}

func TestTimelineStaffOnly(t *testing.T) {
	svc, _ := seededService(3)

	_, err := svc.Timeline(context.Background(), 1, 7, TimelineFilters{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrForbidden))
}

func TestTimelinePaging(t *testing.T) {
	svc, _ := seededService(25)
	ctx := context.Background()

	first, err := svc.Timeline(ctx, 2, 7, TimelineFilters{})
	require.NoError(t, err)
	assert.Len(t, first.Rows, 20)
	assert.True(t, first.Paging.HasNext)
	assert.Equal(t, 1, first.Paging.Page)

	second, err := svc.Timeline(ctx, 2, 7, TimelineFilters{Page: 2})
	require.NoError(t, err)
	assert.Len(t, second.Rows, 5)
	assert.False(t, second.Paging.HasNext)
}

func TestTimelineClampsPageSize(t *testing.T) {
	svc, _ := seededService(60)

	result, err := svc.Timeline(context.Background(), 2, 7, TimelineFilters{PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, result.Rows, maxPageSize)
	assert.Equal(t, maxPageSize, result.Paging.PageSize)
}

func TestExportCSV(t *testing.T) {
	svc, _ := seededService(2)

	payload, err := svc.ExportCSV(context.Background(), 2, 7, TimelineFilters{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "at,actor_id,action,entity,entity_id,meta", lines[0])
	assert.Contains(t, lines[1], "booking.created")

	_, err = svc.ExportCSV(context.Background(), 1, 7, TimelineFilters{})
	assert.True(t, errors.Is(err, httpx.ErrForbidden))
}
