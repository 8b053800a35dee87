package tag

import (
	"github.com/tokenlens/tokenlens/internal/tag/repository"
	"github.com/tokenlens/tokenlens/internal/tag/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tag.service",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
