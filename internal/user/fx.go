package user

import (
	"github.com/tokenlens/tokenlens/internal/user/repository"
	"github.com/tokenlens/tokenlens/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
