package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	collectorx "github.com/abcfin/collectcall/agent/agents/collector"
	orchestratorx "github.com/abcfin/collectcall/agent/agents/orchestrator"
	commitmentx "github.com/abcfin/collectcall/agent/commitment"
	contractx "github.com/abcfin/collectcall/agent/contract"
	directoryx "github.com/abcfin/collectcall/agent/directory"
	statex "github.com/abcfin/collectcall/agent/state"
	toolx "github.com/abcfin/collectcall/agent/tool"
	"github.com/abcfin/collectcall/api"
	configx "github.com/abcfin/collectcall/pkg/config"
	_ "github.com/abcfin/collectcall/pkg/logger/autoload"
	openrouterx "github.com/abcfin/collectcall/pkg/openrouter"
)

type AppConfig struct {
	Addr         string        `envconfig:"ADDR" default:":8080"`
	CustomerFile string        `envconfig:"CUSTOMER_FILE" split_words:"true" default:"data/customers.json"`
	PostgresDSN  string        `envconfig:"POSTGRES_DSN" split_words:"true"`
	TurnTimeout  time.Duration `envconfig:"TURN_TIMEOUT" split_words:"true" default:"60s"`
	MaxToolCalls int           `envconfig:"MAX_TOOL_CALLS" split_words:"true" default:"8"`
	Preflight    bool          `envconfig:"PREFLIGHT" split_words:"true" default:"false"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("")
	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")

	if appCfg.Preflight {
		client := openrouterx.NewClient(*openRouterCfg)
		if err := openrouterx.Preflight(ctx, client, openRouterCfg.Model); err != nil {
			log.Fatal().Err(err).Msg("model preflight failed")
		}
		log.Info().Str("model", openRouterCfg.Model).Msg("model preflight ok")
	}

	chatModel, err := openRouterCfg.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("create chat model")
	}
	boundModel, err := chatModel.WithTools(toolx.Infos())
	if err != nil {
		log.Fatal().Err(err).Msg("bind tool catalog")
	}

	var (
		directory   contractx.Directory
		commitments contractx.CommitmentRecorder
	)
	if appCfg.PostgresDSN != "" {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(appCfg.PostgresDSN)))
		db := bun.NewDB(sqldb, pgdialect.New())

		directory, err = directoryx.NewPostgresDirectory(db)
		if err != nil {
			log.Fatal().Err(err).Msg("create postgres directory")
		}
		commitments, err = commitmentx.NewPostgresRecorder(ctx, db)
		if err != nil {
			log.Fatal().Err(err).Msg("create postgres commitment recorder")
		}
		log.Info().Msg("using postgres directory and commitment ledger")
	} else {
		fileDir, err := directoryx.LoadFile(appCfg.CustomerFile)
		if err != nil {
			log.Fatal().Err(err).Str("path", appCfg.CustomerFile).Msg("load customer file")
		}
		directory = fileDir
		commitments = commitmentx.NewMemoryRecorder()
		log.Info().Int("customers", fileDir.Len()).Str("path", appCfg.CustomerFile).Msg("loaded customer file")
	}

	gateway, err := toolx.NewGateway(directory, commitments)
	if err != nil {
		log.Fatal().Err(err).Msg("create tool gateway")
	}

	agent, err := collectorx.New(boundModel, gateway,
		collectorx.WithTurnTimeout(appCfg.TurnTimeout),
		collectorx.WithMaxToolCalls(appCfg.MaxToolCalls),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("create collector agent")
	}

	orch, err := orchestratorx.New(statex.NewStore(), agent, directory)
	if err != nil {
		log.Fatal().Err(err).Msg("create orchestrator")
	}

	handler := api.NewHandler(orch)
	log.Info().Str("addr", appCfg.Addr).Msg("collection call agent listening")
	if err := http.ListenAndServe(appCfg.Addr, handler.Routes()); err != nil {
		log.Fatal().Err(err).Msg("http server stopped")
	}
}
