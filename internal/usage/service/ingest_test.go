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
	tagdomain "github.com/tokenlens/tokenlens/internal/tag/domain"
	tagrepository "github.com/tokenlens/tokenlens/internal/tag/repository"
	tagservice "github.com/tokenlens/tokenlens/internal/tag/service"
	"github.com/tokenlens/tokenlens/internal/usage/domain"
	"github.com/tokenlens/tokenlens/internal/usage/repository"
	userdomain "github.com/tokenlens/tokenlens/internal/user/domain"
	userrepository "github.com/tokenlens/tokenlens/internal/user/repository"
	userservice "github.com/tokenlens/tokenlens/internal/user/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	clock    *clock.FakeClock
	tagSvc   tagdomain.Service
	userSvc  userdomain.Service
	usageSvc domain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&userdomain.User{},
		&tagdomain.Tag{},
		&domain.DailyUsage{},
		&domain.ModelBreakdown{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	tagSvc := tagservice.New(tagservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: fake,
		Repo:  tagrepository.Provide(),
	})
	userSvc := userservice.New(userservice.Params{
		DB:     db,
		Log:    log,
		GenID:  node,
		Clock:  fake,
		Repo:   userrepository.Provide(),
		TagSvc: tagSvc,
	})
	usageSvc := New(Params{
		DB:      db,
		Log:     log,
		GenID:   node,
		Clock:   fake,
		Repo:    repository.Provide(),
		UserSvc: userSvc,
		TagSvc:  tagSvc,
	})
	return &fixture{db: db, clock: fake, tagSvc: tagSvc, userSvc: userSvc, usageSvc: usageSvc}
}

func (f *fixture) createUser(t *testing.T, username string) userdomain.User {
	t.Helper()
	user, err := f.userSvc.Create(context.Background(), userdomain.CreateUserRequest{Username: username})
	require.NoError(t, err)
	return user
}

func TestMerge_RejectsMalformedPayload(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "alice")
	ctx := context.Background()

	tests := []struct {
		name string
		raw  string
	}{
		{"not an object", `[]`},
		{"missing daily", `{"totals":{}}`},
		{"daily not an array", `{"daily":42}`},
		{"not json", `daily`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := f.usageSvc.Merge(ctx, "alice", []byte(tc.raw))
			assert.ErrorIs(t, err, domain.ErrInvalidFormat)
		})
	}
}

func TestMerge_UnknownUser(t *testing.T) {
	f := newFixture(t)

	err := f.usageSvc.Merge(context.Background(), "ghost", []byte(`{"daily":[]}`))
	require.ErrorIs(t, err, userdomain.ErrUserNotFound)
	assert.Equal(t, "User not found: ghost", err.Error())
}

func TestMerge_ReingestReplacesDay(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "alice")
	ctx := context.Background()

	first := `{"daily":[{"date":"2024-01-15","inputTokens":1000,"outputTokens":500,"totalTokens":1500,"totalCost":0.015,
		"modelBreakdowns":[{"modelName":"claude-sonnet-4","provider":"anthropic","inputTokens":1000,"outputTokens":500,"cost":0.015}]}]}`
	require.NoError(t, f.usageSvc.Merge(ctx, "alice", []byte(first)))

	second := `{"daily":[{"date":"2024-01-15","inputTokens":2000,"outputTokens":1000,"totalTokens":3000,"totalCost":0.030,
		"modelBreakdowns":[{"modelName":"claude-3-opus","provider":"anthropic","inputTokens":2000,"outputTokens":1000,"cost":0.030}]}]}`
	require.NoError(t, f.usageSvc.Merge(ctx, "alice", []byte(second)))

	resp, err := f.usageSvc.QueryRange(ctx, "2024-01-15", "2024-01-15", domain.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, resp.Stats, 1)

	row := resp.Stats[0]
	assert.Equal(t, "2024-01-15", row.Date)
	assert.Equal(t, "alice", row.Username)
	assert.Equal(t, int64(3000), row.TotalTokens)
	assert.InDelta(t, 0.030, row.TotalCost, 1e-9)

	// The breakdown set is the second payload's, not the union.
	require.Len(t, row.Models, 1)
	assert.Equal(t, "claude-3-opus", row.Models[0].Name)
}

func TestMerge_DefaultsAndSkippedEntries(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "alice")
	ctx := context.Background()

	payload := `{"daily":[
		{"date":"2024-01-15","modelBreakdowns":[{"inputTokens":10}]},
		{"inputTokens":999},
		{"date":"not-a-date","inputTokens":999}
	]}`
	require.NoError(t, f.usageSvc.Merge(ctx, "alice", []byte(payload)))

	resp, err := f.usageSvc.QueryAll(ctx, domain.QueryFilter{})
	require.NoError(t, err)
	// Entries without a usable date are skipped silently.
	require.Len(t, resp.Stats, 1)

	row := resp.Stats[0]
	assert.Equal(t, "2024-01-15", row.Date)
	assert.Zero(t, row.TotalTokens)
	assert.Zero(t, row.TotalCost)

	require.Len(t, row.Models, 1)
	assert.Equal(t, "unknown", row.Models[0].Name)
	assert.Equal(t, "anthropic", row.Models[0].Provider)
	assert.Equal(t, int64(10), row.Models[0].InputTokens)
}

func TestMerge_MultipleDays(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "alice")
	ctx := context.Background()

	payload := `{"daily":[
		{"date":"2024-01-14","totalTokens":100,"totalCost":0.001},
		{"date":"2024-01-15","totalTokens":200,"totalCost":0.002},
		{"date":"2024-01-16","totalTokens":300,"totalCost":0.003}
	]}`
	require.NoError(t, f.usageSvc.Merge(ctx, "alice", []byte(payload)))

	resp, err := f.usageSvc.QueryRange(ctx, "2024-01-14", "2024-01-16", domain.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, resp.Stats, 3)

	// Newest date first.
	assert.Equal(t, "2024-01-16", resp.Stats[0].Date)
	assert.Equal(t, "2024-01-14", resp.Stats[2].Date)

	assert.Equal(t, int64(600), resp.Summary.TotalTokens)
	assert.InDelta(t, 0.006, resp.Summary.TotalCost, 1e-9)
	assert.Equal(t, 1, resp.Summary.UniqueUsers)
	assert.Equal(t, 3, resp.Summary.TotalDays)
}
