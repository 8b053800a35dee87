package usage

import (
	"github.com/tokenlens/tokenlens/internal/usage/repository"
	"github.com/tokenlens/tokenlens/internal/usage/service"
	"go.uber.org/fx"
)

var Module = fx.Module("usage.service",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
