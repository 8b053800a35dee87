package service

import (
	"github.com/bwmarrin/snowflake"
	"github.com/tokenlens/tokenlens/internal/clock"
	tagdomain "github.com/tokenlens/tokenlens/internal/tag/domain"
	"github.com/tokenlens/tokenlens/internal/usage/domain"
	userdomain "github.com/tokenlens/tokenlens/internal/user/domain"
	"github.com/tokenlens/tokenlens/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	UserSvc userdomain.Service
	TagSvc  tagdomain.Service
	Metrics *telemetry.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	userSvc userdomain.Service
	tagSvc  tagdomain.Service
	metrics *telemetry.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("usage.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		userSvc: p.UserSvc,
		tagSvc:  p.TagSvc,
		metrics: p.Metrics,
	}
}
