package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/tokenlens/tokenlens/internal/clock"
	"github.com/tokenlens/tokenlens/internal/config"
	"github.com/tokenlens/tokenlens/internal/logger"
	"github.com/tokenlens/tokenlens/internal/migration"
	"github.com/tokenlens/tokenlens/internal/tag"
	"github.com/tokenlens/tokenlens/internal/usage"
	"github.com/tokenlens/tokenlens/internal/user"
	"github.com/tokenlens/tokenlens/pkg/db"
	"github.com/tokenlens/tokenlens/pkg/telemetry"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		fx.Provide(config.Load),
		fx.Provide(RegisterSnowflake),
		logger.Module,
		db.Module,
		clock.Module,
		telemetry.Module,

		// Functional domains
		migration.Module,
		tag.Module,
		user.Module,
		usage.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
