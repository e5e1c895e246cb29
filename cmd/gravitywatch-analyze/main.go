package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"gravitywatch/internal/modkit"
	"gravitywatch/internal/platform/config"
	"gravitywatch/internal/platform/logger"
	"gravitywatch/internal/platform/store"

	"gravitywatch/internal/adapters/notify/smtp"
	"gravitywatch/internal/adapters/oracle/llm"
	"gravitywatch/internal/adapters/oracle/threatintel"
	"gravitywatch/internal/adapters/source/chlog"
	"gravitywatch/internal/adapters/source/pihole"

	adom "gravitywatch/internal/services/alerts/domain"
	cldom "gravitywatch/internal/services/classify/domain"
	pdom "gravitywatch/internal/services/pipeline/domain"
	pipelinemod "gravitywatch/internal/services/pipeline/module"
)

func main() {
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")
	caCfg := root.Prefix("CORE_ANALYZE_")
	l := logger.Get()

	var (
		loop     = flag.Duration("loop", 0, "run continuously with this interval (0 = one cycle)")
		source   = flag.String("source", caCfg.MayString("SOURCE", "pihole"), "query log source: pihole or clickhouse")
		lookback = flag.Duration("lookback", 0, "first-run window override, e.g. 48h")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		AppName: "gravitywatch-analyze",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
		CH: store.CHConfig{
			Enabled: *source == "clickhouse",
			URL:     chCfg.MayString("DBURL", ""),
			Role:    "analyze",
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// query log source
	var src pdom.SourcePort
	switch *source {
	case "pihole":
		src = pihole.New(pihole.FromConfig(root))
	case "clickhouse":
		src = chlog.New(st.CH, chlog.FromConfig(root))
	default:
		l.Fatal().Str("source", *source).Msg("unknown source, want pihole or clickhouse")
	}

	// oracles
	llmBackend, err := llm.New(ctx, llm.FromConfig(root))
	if err != nil {
		l.Fatal().Err(err).Msg("llm oracle init failed")
	}
	var intel cldom.Backend
	if root.Prefix("ORACLE_INTEL_").MayString("BASE_URL", "") != "" {
		intel = threatintel.New(threatintel.FromConfig(root))
	}

	// notification sink, optional
	var notifier adom.NotifierPort
	if root.Prefix("NOTIFY_SMTP_").MayString("HOST", "") != "" {
		n, err := smtp.New(smtp.FromConfig(root))
		if err != nil {
			l.Fatal().Err(err).Msg("smtp notifier init failed")
		}
		notifier = n
	} else {
		l.Warn().Msg("NOTIFY_SMTP_HOST not set, alerts will only be logged")
	}

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		Log: *l,
	}

	pm := pipelinemod.New(
		deps,
		pipelinemod.Options{Lookback: *lookback},
		modkit.WithPorts(pipelinemod.Wiring{
			Source:   src,
			LLM:      llmBackend,
			Intel:    intel,
			Notifier: notifier,
		}),
	)
	runner := pm.Ports().(pipelinemod.Ports).Runner

	runOnce := func() {
		if _, err := runner.Run(ctx); err != nil {
			l.Error().Err(err).Msg("analysis cycle failed")
		}
	}

	runOnce()
	if *loop <= 0 {
		return
	}

	l.Info().Dur("interval", *loop).Msg("running in loop mode")
	ticker := time.NewTicker(*loop)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			l.Info().Msg("shutting down")
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
