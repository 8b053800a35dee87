package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/tokenlens/tokenlens/internal/clock"
	tagdomain "github.com/tokenlens/tokenlens/internal/tag/domain"
	"github.com/tokenlens/tokenlens/internal/user/domain"
	"github.com/tokenlens/tokenlens/pkg/db"
	"github.com/tokenlens/tokenlens/pkg/db/pagination"
	"github.com/tokenlens/tokenlens/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Allowed sort keys mapped to their column. Anything else falls back to
// the createdAt default.
var sortColumns = map[string]string{
	domain.SortByUsername:  "username",
	domain.SortByCreatedAt: "created_at",
	domain.SortByUpdatedAt: "updated_at",
}

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	TagSvc  tagdomain.Service
	Metrics *telemetry.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	tagSvc  tagdomain.Service
	metrics *telemetry.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("user.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		tagSvc:  p.TagSvc,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateUserRequest) (domain.User, error) {
	username := strings.TrimSpace(req.Username)
	if err := validateUsername(username); err != nil {
		return domain.User{}, err
	}

	now := s.clock.Now()
	user := domain.User{
		ID:        s.genID.Generate(),
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Metadata != nil {
		user.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := s.repo.Insert(ctx, s.db, &user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.User{}, fmt.Errorf("%w: %s", domain.ErrUsernameTaken, username)
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.ErrInvalidUsername
	}
	user, err := s.repo.FindByUsername(ctx, s.db, username)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, username)
	}
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.User, error) {
	if id == 0 {
		return nil, domain.ErrInvalidID
	}
	user, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %d", domain.ErrUserNotFound, id)
	}
	return user, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	if id == 0 {
		return domain.ErrInvalidID
	}
	user, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("%w: %d", domain.ErrUserNotFound, id)
	}
	if err := s.repo.DeleteCascade(ctx, s.db, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.log.Info("user deleted",
		zap.String("username", user.Username),
		zap.Int64("user_id", int64(id)),
	)
	return nil
}

// List pages the roster under the combined search + tag-AND filter.
// Tags are fetched in a second phase for the returned page only, never
// for the whole table.
func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	s.metrics.AddRosterQuery()

	page := pagination.Pagination{Page: req.Page, Limit: req.Limit}.
		Normalize(domain.DefaultPageLimit, domain.MaxPageLimit)

	resp := domain.ListResponse{
		Users: make([]domain.RosterUser, 0),
		Filters: domain.ListFilters{
			Search: strings.TrimSpace(req.Search),
			Tags:   req.Tags,
		},
	}

	filter := domain.ListFilter{Search: resp.Filters.Search}
	if len(req.Tags) > 0 {
		ids, err := s.tagSvc.ResolveUsersWithAllTags(ctx, req.Tags)
		if err != nil {
			return domain.ListResponse{}, err
		}
		if len(ids) == 0 {
			resp.Pagination = pagination.BuildPageInfo(page, 0)
			return resp, nil
		}
		filter.UserIDs = ids
	}

	total, err := s.repo.Count(ctx, s.db, filter)
	if err != nil {
		return domain.ListResponse{}, fmt.Errorf("count users: %w", err)
	}
	resp.Pagination = pagination.BuildPageInfo(page, total)

	users, err := s.repo.ListPage(ctx, s.db, filter, orderClause(req.SortBy, req.Order), page.Limit, page.Offset())
	if err != nil {
		return domain.ListResponse{}, fmt.Errorf("list users: %w", err)
	}

	pageIDs := make([]snowflake.ID, 0, len(users))
	for _, u := range users {
		pageIDs = append(pageIDs, u.ID)
	}
	tagsByUser, err := s.tagSvc.TagsForUsers(ctx, pageIDs)
	if err != nil {
		return domain.ListResponse{}, err
	}

	for _, u := range users {
		tags := tagsByUser[u.ID]
		if tags == nil {
			tags = []string{}
		}
		resp.Users = append(resp.Users, domain.RosterUser{User: u, Tags: tags})
	}
	return resp, nil
}

func orderClause(sortBy, order string) string {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = sortColumns[domain.SortByCreatedAt]
	}
	direction := "DESC"
	if strings.EqualFold(order, "asc") {
		direction = "ASC"
	}
	return column + " " + direction
}

func validateUsername(username string) error {
	if len(username) < domain.MinUsernameLen || len(username) > domain.MaxUsernameLen {
		return fmt.Errorf("%w: %q must be %d-%d characters", domain.ErrInvalidUsername, username, domain.MinUsernameLen, domain.MaxUsernameLen)
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("%w: %q may only contain letters, digits, dots, hyphens and underscores", domain.ErrInvalidUsername, username)
	}
	return nil
}
