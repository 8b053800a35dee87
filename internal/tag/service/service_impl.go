package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/tokenlens/tokenlens/internal/clock"
	"github.com/tokenlens/tokenlens/internal/tag/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var tagNamePattern = regexp.MustCompile(`^[0-9A-Za-z .\-_]+$`)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("tag.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// SetUserTags validates every name before any write, then replaces the
// user's whole tag set transactionally. Input is trimmed and de-duplicated
// case-insensitively (the first spelling wins) so the per-user
// (user, lower(name)) invariant holds regardless of store collation.
func (s *Service) SetUserTags(ctx context.Context, userID snowflake.ID, names []string) error {
	if userID == 0 {
		return domain.ErrInvalidUser
	}

	cleaned := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if err := validateTagName(name); err != nil {
			return err
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, name)
	}

	now := s.clock.Now()
	tags := make([]domain.Tag, 0, len(cleaned))
	for _, name := range cleaned {
		tags = append(tags, domain.Tag{
			ID:        s.genID.Generate(),
			UserID:    userID,
			Name:      name,
			CreatedAt: now,
		})
	}

	if err := s.repo.ReplaceForUser(ctx, s.db, userID, tags); err != nil {
		return fmt.Errorf("replace tags: %w", err)
	}
	return nil
}

func (s *Service) GetUserTags(ctx context.Context, userID snowflake.ID) ([]string, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}
	tags, err := s.repo.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names, nil
}

// RemoveTag deletes the matching tag case-insensitively. Removing a tag
// the user does not have is not an error.
func (s *Service) RemoveTag(ctx context.Context, userID snowflake.ID, name string) error {
	if userID == 0 {
		return domain.ErrInvalidUser
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidTagName)
	}
	if err := s.repo.DeleteByName(ctx, s.db, userID, strings.ToLower(name)); err != nil {
		return fmt.Errorf("remove tag: %w", err)
	}
	return nil
}

func (s *Service) ResolveUsersWithAllTags(ctx context.Context, names []string) ([]snowflake.ID, error) {
	lowered := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		lowered = append(lowered, name)
	}
	if len(lowered) == 0 {
		return nil, nil
	}

	ids, err := s.repo.UserIDsWithAll(ctx, s.db, lowered)
	if err != nil {
		return nil, fmt.Errorf("resolve tagged users: %w", err)
	}
	return ids, nil
}

// ListAllTagNames returns one canonical spelling per case-insensitive
// group (the lexicographically-first original), sorted case-insensitively.
// This feeds filter pickers, so a store failure degrades to an empty list.
func (s *Service) ListAllTagNames(ctx context.Context) ([]string, error) {
	names, err := s.repo.AllNames(ctx, s.db)
	if err != nil {
		s.log.Warn("list tag names failed", zap.Error(err))
		return []string{}, nil
	}

	canonical := make(map[string]string, len(names))
	for _, name := range names {
		key := strings.ToLower(name)
		if current, ok := canonical[key]; !ok || name < current {
			canonical[key] = name
		}
	}

	out := make([]string, 0, len(canonical))
	for _, name := range canonical {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := strings.ToLower(out[i]), strings.ToLower(out[j])
		if li == lj {
			return out[i] < out[j]
		}
		return li < lj
	})
	return out, nil
}

func (s *Service) TagsForUsers(ctx context.Context, userIDs []snowflake.ID) (map[snowflake.ID][]string, error) {
	out := make(map[snowflake.ID][]string, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	tags, err := s.repo.ListByUsers(ctx, s.db, userIDs)
	if err != nil {
		return nil, fmt.Errorf("list tags for users: %w", err)
	}
	for _, t := range tags {
		out[t.UserID] = append(out[t.UserID], t.Name)
	}
	for id := range out {
		sort.Strings(out[id])
	}
	return out, nil
}

func validateTagName(name string) error {
	if len(name) < domain.MinNameLen || len(name) > domain.MaxNameLen {
		return fmt.Errorf("%w: %q must be %d-%d characters", domain.ErrInvalidTagName, name, domain.MinNameLen, domain.MaxNameLen)
	}
	if !tagNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q contains characters outside letters, digits, spaces, dots, hyphens and underscores", domain.ErrInvalidTagName, name)
	}
	return nil
}
