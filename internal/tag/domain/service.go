package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Name constraints for a tag.
const (
	MinNameLen = 2
	MaxNameLen = 64
)

// Service manages per-user tags and answers tag-based user filters.
//
// ResolveUsersWithAllTags treats its input as a filter that the user's tag
// set must fully contain (AND semantics, case-insensitive). An empty names
// slice means "no filter was requested": callers must branch on
// len(names) == 0 before calling instead of interpreting an empty result,
// because "no filter" and "filter matched nobody" are indistinguishable in
// the returned slice.
type Service interface {
	SetUserTags(ctx context.Context, userID snowflake.ID, names []string) error
	GetUserTags(ctx context.Context, userID snowflake.ID) ([]string, error)
	RemoveTag(ctx context.Context, userID snowflake.ID, name string) error
	ResolveUsersWithAllTags(ctx context.Context, names []string) ([]snowflake.ID, error)
	ListAllTagNames(ctx context.Context) ([]string, error)
	TagsForUsers(ctx context.Context, userIDs []snowflake.ID) (map[snowflake.ID][]string, error)
}

var (
	ErrInvalidUser    = errors.New("invalid user id")
	ErrInvalidTagName = errors.New("invalid tag name")
)
