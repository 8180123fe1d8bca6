package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"dcaengine/internal/adapter/cache"
	"dcaengine/internal/adapter/exchange"
	"dcaengine/internal/adapter/in_memory"
	"dcaengine/internal/adapter/oracle"
	"dcaengine/internal/adapter/pg"
	"dcaengine/internal/agent"
	"dcaengine/internal/api/dto"
	httpapi "dcaengine/internal/api/http"
	"dcaengine/internal/config"
	"dcaengine/internal/core"
	"dcaengine/internal/domain"
	"dcaengine/internal/logging"
	"dcaengine/internal/port"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	slog.SetDefault(logging.New(cfg.Logging.Level))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var repo port.Repository
	if cfg.DB.DSN != "" {
		pgRepo, err := pg.NewPgRepo(ctx, cfg.DB.DSN)
		if err != nil {
			slog.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer pgRepo.Close(ctx)
		repo = pgRepo
	} else {
		repo = in_memory.NewMemoryRepo()
		slog.Warn("no db.dsn configured, order journal is in-memory")
	}

	var orderCache port.Cache
	if cfg.Redis.Addr != "" {
		orderCache = cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSeconds)*time.Second)
	} else {
		orderCache = in_memory.NewCache()
	}

	priceOracle := oracle.NewHTTPOracle(cfg.Oracle.URL, time.Duration(cfg.Oracle.PollIntervalSeconds)*time.Second)
	priceOracle.Start(ctx)

	ledger := in_memory.NewLedger()
	swapper := exchange.NewSimulator(priceOracle, cfg.Exchange.SpreadBps)
	pubsub := in_memory.NewPubSub()

	eng := core.NewEngine(cfg.Engine.Admin, repo, orderCache, ledger, swapper, pubsub)

	fee, err := decimal.NewFromString(cfg.Engine.Fee)
	if err != nil {
		slog.Error("parse engine.fee", slog.Any("error", err))
		os.Exit(1)
	}
	if err := eng.Initialize(cfg.Engine.Admin, cfg.Engine.Agent, fee, core.PairConfig{
		FundingAsset: cfg.Engine.FundingAsset,
		TargetAsset:  cfg.Engine.TargetAsset,
	}); err != nil {
		slog.Error("initialize engine", slog.Any("error", err))
		os.Exit(1)
	}
	if err := eng.RestoreFromRepo(ctx); err != nil {
		slog.Error("restore orders", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("engine ready", slog.Int("active_orders", eng.Count()))

	// Mirror lifecycle events into the log.
	events := pubsub.Subscribe(64)
	go func() {
		for ev := range events {
			slog.Info("lifecycle event",
				slog.String("type", string(ev.Type)),
				slog.String("order_id", ev.OrderID),
				slog.String("owner", ev.Owner),
			)
		}
	}()

	runner := &agent.Agent{
		Engine:   eng,
		Oracle:   priceOracle,
		ID:       cfg.Engine.Agent,
		Interval: time.Duration(cfg.Agent.IntervalSeconds) * time.Second,
	}
	go runner.Run(ctx)

	server := httpapi.NewHTTPServer(eng, priceOracle)
	server.DepositFunc = func(req dto.DepositRequest) error {
		return ledger.Deposit(req.Account, req.Amount)
	}
	server.PriceOverrideFunc = func(caller string, price decimal.Decimal) error {
		if caller != cfg.Engine.Admin {
			return domain.ErrUnauthorized
		}
		priceOracle.SetPrice(price, time.Now())
		return nil
	}

	slog.Info("starting HTTP server", slog.String("addr", cfg.Server.Addr))
	if err := server.Run(cfg.Server.Addr); err != nil {
		slog.Error("http server failed", slog.Any("error", err))
		os.Exit(1)
	}
}
