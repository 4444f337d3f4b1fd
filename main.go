package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/agents/orchestrator"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/agents/specialist"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/api"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/catalog"
	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/extract"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/intent"
	llmx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/llm"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/notify"
	statex "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/state"
	configx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/pkg/config"
	_ "github.com/tanpawarit/Chative-Sales-Order-Dialogue/pkg/logger/autoload"
	openrouterx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/pkg/openrouter"
	qstashx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/pkg/qstash"
)

type AppConfig struct {
	// Store is memory, redis or upstash.
	Store string `split_words:"true" default:"memory"`
	// Catalog is static or postgres.
	Catalog         string        `split_words:"true" default:"static"`
	RequirePayment  bool          `split_words:"true" default:"false"`
	ClassifyTimeout time.Duration `split_words:"true" default:"10s"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.Logger.WithContext(ctx)

	if err := run(ctx); err != nil {
		log.Fatal().Err(err).Msg("service stopped")
	}
}

func run(ctx context.Context) error {
	appCfg := configx.MustNew[AppConfig]("APP")
	llmCfg := configx.MustNew[llmx.Config]("LLM")
	apiCfg := configx.MustNew[api.Config]("HTTP")
	logger := zerolog.Ctx(ctx)

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				logger.Warn().Err(err).Msg("close resource")
			}
		}
	}()

	store, err := newStore(ctx, appCfg.Store)
	if err != nil {
		return err
	}
	if c, ok := store.(io.Closer); ok {
		closers = append(closers, c)
	}

	query, timeout, err := newCatalog(ctx, appCfg.Catalog, &closers)
	if err != nil {
		return err
	}
	resolver, err := catalog.NewResolver(query, catalog.WithTimeout(timeout))
	if err != nil {
		return err
	}

	registry, err := specialist.NewRegistry(ctx, *llmCfg)
	if err != nil {
		return err
	}
	if registry.Online() && llmCfg.ProbeModel {
		if err := openrouterx.Probe(ctx, llmCfg.OpenRouterFor(contractx.AgentTypeSales)); err != nil {
			return fmt.Errorf("probe model: %w", err)
		}
	}

	deps := orchestrator.Dependencies{
		Store:      store,
		Resolver:   resolver,
		Quantities: extract.NewPatternExtractor(),
		Classifier: intent.KeywordClassifier{},
		Slots:      extract.PatternSlots{},
		Agent:      registry.Sales(),
		Notifier:   newNotifier(ctx, *configx.MustNew[qstashx.Config]("QSTASH")),
	}
	if registry.Online() {
		oracle := registry.Oracle()
		quantities, err := extract.NewOracleExtractor(oracle, deps.Quantities, extract.WithOracleTimeout(llmCfg.OracleTimeout))
		if err != nil {
			return err
		}
		slots, err := extract.NewOracleSlots(oracle, deps.Slots, extract.WithOracleTimeout(llmCfg.OracleTimeout))
		if err != nil {
			return err
		}
		deps.Classifier = oracle
		deps.Quantities = quantities
		deps.Slots = slots
	}

	orch, err := orchestrator.New(deps, orchestrator.Config{
		RequirePayment:  appCfg.RequirePayment,
		ClassifyTimeout: appCfg.ClassifyTimeout,
	})
	if err != nil {
		return err
	}

	logger.Info().
		Bool("llm", registry.Online()).
		Str("store", appCfg.Store).
		Str("catalog", appCfg.Catalog).
		Bool("require_payment", appCfg.RequirePayment).
		Msg("dialogue service ready")

	server := api.NewServer(api.NewRouter(orch, *apiCfg, *logger), *apiCfg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})
	return g.Wait()
}

func newStore(ctx context.Context, kind string) (statex.Store, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "memory":
		return statex.NewMemoryStore(), nil
	case "redis":
		cfg := configx.MustNew[statex.RedisConfig]("REDIS")
		return statex.NewRedisStore(ctx, *cfg)
	case "upstash":
		cfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
		return statex.NewUpstashRedisStore(*cfg)
	default:
		return nil, fmt.Errorf("unknown session store %q", kind)
	}
}

func newCatalog(ctx context.Context, kind string, closers *[]io.Closer) (contractx.CatalogQuery, time.Duration, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "static":
		return catalog.DefaultMenu(), catalog.DefaultTimeout, nil
	case "postgres":
		cfg := configx.MustNew[catalog.PostgresConfig]("CATALOG")
		db, err := catalog.OpenPostgres(ctx, *cfg)
		if err != nil {
			return nil, 0, err
		}
		*closers = append(*closers, db)
		if err := catalog.Migrate(ctx, db); err != nil {
			return nil, 0, err
		}
		if cfg.Seed {
			if _, err := catalog.Seed(ctx, db, catalog.DefaultMenu()); err != nil {
				return nil, 0, err
			}
		}
		query, err := catalog.NewBunCatalog(db)
		if err != nil {
			return nil, 0, err
		}
		return query, cfg.Timeout, nil
	default:
		return nil, 0, fmt.Errorf("unknown catalog %q", kind)
	}
}

// newNotifier publishes finalized orders through QStash when configured and
// logs them otherwise.
func newNotifier(ctx context.Context, cfg qstashx.Config) contractx.OrderNotifier {
	logger := zerolog.Ctx(ctx)
	if !cfg.Enabled() {
		if strings.TrimSpace(cfg.Token) != "" || strings.TrimSpace(cfg.Destination) != "" {
			logger.Warn().Msg("qstash needs both token and destination, logging finalized orders instead")
		}
		return notify.LogNotifier{}
	}
	n, err := newQStashNotifier(cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("qstash notifier disabled, logging finalized orders instead")
		return notify.LogNotifier{}
	}
	logger.Info().Str("destination", cfg.Destination).Msg("publishing finalized orders to qstash")
	return n
}

func newQStashNotifier(cfg qstashx.Config) (*notify.QStashNotifier, error) {
	client, err := qstashx.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return notify.NewQStashNotifier(client, cfg.Destination)
}
