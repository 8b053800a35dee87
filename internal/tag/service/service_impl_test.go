package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tokenlens/tokenlens/internal/clock"
	"github.com/tokenlens/tokenlens/internal/tag/domain"
	"github.com/tokenlens/tokenlens/internal/tag/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Tag{}))
	return db
}

func newTagService(t *testing.T) (domain.Service, *snowflake.Node) {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	svc := New(Params{
		DB:    newTestDB(t),
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
	return svc, node
}

func TestSetUserTags_ReplaceAndDedupe(t *testing.T) {
	svc, node := newTagService(t)
	ctx := context.Background()
	userID := node.Generate()

	require.NoError(t, svc.SetUserTags(ctx, userID, []string{"Frontend", " frontend ", "backend"}))

	names, err := svc.GetUserTags(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Frontend", "backend"}, names)

	// A second set replaces the whole set, it never merges.
	require.NoError(t, svc.SetUserTags(ctx, userID, []string{"devops"}))
	names, err = svc.GetUserTags(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"devops"}, names)

	// Empty input clears all tags.
	require.NoError(t, svc.SetUserTags(ctx, userID, nil))
	names, err = svc.GetUserTags(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestSetUserTags_ValidatesBeforeAnyWrite(t *testing.T) {
	svc, node := newTagService(t)
	ctx := context.Background()
	userID := node.Generate()

	require.NoError(t, svc.SetUserTags(ctx, userID, []string{"frontend"}))

	tests := []struct {
		name string
		tags []string
	}{
		{"too short", []string{"backend", "x"}},
		{"too long", []string{strings.Repeat("a", 65)}},
		{"bad characters", []string{"back#end"}},
		{"blank", []string{"   "}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.SetUserTags(ctx, userID, tc.tags)
			assert.ErrorIs(t, err, domain.ErrInvalidTagName)
		})
	}

	// Nothing was applied by the failed calls.
	names, err := svc.GetUserTags(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"frontend"}, names)
}

func TestRemoveTag_CaseInsensitiveAndIdempotent(t *testing.T) {
	svc, node := newTagService(t)
	ctx := context.Background()
	userID := node.Generate()

	require.NoError(t, svc.SetUserTags(ctx, userID, []string{"Frontend", "backend"}))
	require.NoError(t, svc.RemoveTag(ctx, userID, "FRONTEND"))

	names, err := svc.GetUserTags(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"backend"}, names)

	// Removing an absent tag is not an error.
	require.NoError(t, svc.RemoveTag(ctx, userID, "FRONTEND"))
}

func TestResolveUsersWithAllTags(t *testing.T) {
	svc, node := newTagService(t)
	ctx := context.Background()

	bob := node.Generate()
	carol := node.Generate()
	require.NoError(t, svc.SetUserTags(ctx, bob, []string{"frontend", "backend"}))
	require.NoError(t, svc.SetUserTags(ctx, carol, []string{"Frontend"}))

	ids, err := svc.ResolveUsersWithAllTags(ctx, []string{"frontend", "backend"})
	require.NoError(t, err)
	assert.Equal(t, []snowflake.ID{bob}, ids)

	// Matching is case-insensitive on both sides.
	ids, err = svc.ResolveUsersWithAllTags(ctx, []string{"FRONTEND"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []snowflake.ID{bob, carol}, ids)

	// A strictly larger requested set excludes users missing any tag.
	ids, err = svc.ResolveUsersWithAllTags(ctx, []string{"frontend", "backend", "devops"})
	require.NoError(t, err)
	assert.Empty(t, ids)

	// Empty input is "no filter requested": the caller branches on input
	// length, so the resolver just returns nothing without querying.
	ids, err = svc.ResolveUsersWithAllTags(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, ids)
}

func TestListAllTagNames_StoreErrorDegradesToEmpty(t *testing.T) {
	db := newTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})

	// This feeds filter pickers: a broken store must degrade to an empty
	// list instead of failing the whole request.
	require.NoError(t, db.Exec(`DROP TABLE tags`).Error)

	names, err := svc.ListAllTagNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{}, names)
}

func TestListAllTagNames_CanonicalSpelling(t *testing.T) {
	svc, node := newTagService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetUserTags(ctx, node.Generate(), []string{"Frontend", "zeta"}))
	require.NoError(t, svc.SetUserTags(ctx, node.Generate(), []string{"frontend", "Backend"}))

	names, err := svc.ListAllTagNames(ctx)
	require.NoError(t, err)
	// One spelling per case-insensitive group, the lexicographically-first
	// original, sorted case-insensitively.
	assert.Equal(t, []string{"Backend", "Frontend", "zeta"}, names)
}
