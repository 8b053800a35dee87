package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/tokenlens/tokenlens/pkg/db/pagination"
)

// Username constraints.
const (
	MinUsernameLen = 3
	MaxUsernameLen = 128
)

// Roster listing defaults and bounds.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Sort keys accepted by ListRequest.SortBy.
const (
	SortByUsername  = "username"
	SortByCreatedAt = "createdAt"
	SortByUpdatedAt = "updatedAt"
)

type CreateUserRequest struct {
	Username string         `json:"username"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ListRequest filters and pages the user roster. Tags use AND semantics:
// a user must carry every requested tag to match.
type ListRequest struct {
	Search string   `json:"search"`
	Tags   []string `json:"tags"`
	Page   int      `json:"page"`
	Limit  int      `json:"limit"`
	SortBy string   `json:"sortBy"`
	Order  string   `json:"order"`
}

// ListFilter is the repository-level predicate derived from a ListRequest.
// A nil UserIDs means no tag filter; an empty non-nil slice never occurs
// (the service short-circuits before querying).
type ListFilter struct {
	Search  string
	UserIDs []snowflake.ID
}

// RosterUser is a user plus their tags, sorted by name.
type RosterUser struct {
	User
	Tags []string `json:"tags"`
}

type ListFilters struct {
	Search string   `json:"search"`
	Tags   []string `json:"tags"`
}

type ListResponse struct {
	Users      []RosterUser        `json:"users"`
	Pagination pagination.PageInfo `json:"pagination"`
	Filters    ListFilters         `json:"filters"`
}

type Service interface {
	Create(ctx context.Context, req CreateUserRequest) (User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id snowflake.ID) (*User, error)
	Delete(ctx context.Context, id snowflake.ID) error
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}

var (
	ErrInvalidUsername = errors.New("invalid username")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrUserNotFound    = errors.New("User not found")
	ErrInvalidID       = errors.New("invalid user id")
)
