package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/abhisek/cadence/internal/config"
	"github.com/abhisek/cadence/internal/halflife"
	"github.com/abhisek/cadence/internal/llm"
	"github.com/abhisek/cadence/internal/logging"
	"github.com/abhisek/cadence/internal/review"
	"github.com/abhisek/cadence/internal/spacedrep"
	"github.com/abhisek/cadence/internal/store"
	"github.com/spf13/cobra"
)

// deps holds everything a command needs. Close releases it.
type deps struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.Store
	service *review.Service
	closers []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// loadConfig reads the config file and applies the logging flags. Logs go to
// --log-file when set, otherwise to stderr. The TUI owns the terminal, so it
// discards logs unless --log-file is given.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if f, _ := cmd.Flags().GetString("log-format"); f != "" {
		cfg.Log.Format = f
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}

	w, err := logWriter(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(w, level, format)
	logging.SetDefault(logger)
	return cfg, logger, nil
}

// logWriter picks the log destination for cmd. The command without a parent
// is the TUI.
func logWriter(cmd *cobra.Command) (io.Writer, error) {
	if path, _ := cmd.Flags().GetString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		// The file stays open for the life of the process.
		return f, nil
	}
	if !cmd.HasParent() {
		return io.Discard, nil
	}
	return os.Stderr, nil
}

// openStore loads config and opens the database without building the
// scheduler.
func openStore(cmd *cobra.Command) (*deps, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Debug("database opened", slog.String("path", dbPath))
	return &deps{
		cfg:     cfg,
		logger:  logger,
		store:   st,
		closers: []func(){func() { st.Close() }},
	}, nil
}

// setup opens the store and builds the predictor, scheduler and review
// service from config.
func setup(cmd *cobra.Command) (*deps, error) {
	d, err := openStore(cmd)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	predictor, err := buildPredictor(ctx, d)
	if err != nil {
		d.Close()
		return nil, err
	}

	sched, err := spacedrep.New(d.cfg.SchedulerConfig(),
		spacedrep.WithPredictor(predictor),
		spacedrep.WithLogger(d.logger),
	)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("build scheduler: %w", err)
	}
	d.service = review.NewService(d.store.ItemRepo(), sched, d.logger)
	return d, nil
}

func buildPredictor(ctx context.Context, d *deps) (halflife.Predictor, error) {
	kind := d.cfg.Predictor.Kind
	opts := d.cfg.PredictorOptions()

	switch kind {
	case halflife.KindRegression:
		items, err := d.store.ItemRepo().ListItems(ctx)
		if err != nil {
			return nil, err
		}
		opts.Samples = spacedrep.TrainingSamples(items)
	case halflife.KindLLM:
		settings, ok, err := d.cfg.LLM.Resolve(os.Getenv)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("predictor kind llm needs llm.vendor in the config or a vendor API key such as ANTHROPIC_API_KEY")
		}
		provider, err := llm.Open(ctx, settings,
			llm.WithCallLog(d.store.CallRepo()),
			llm.WithLogger(d.logger))
		if err != nil {
			return nil, err
		}
		d.logger.Debug("llm provider ready",
			slog.String("vendor", string(settings.Vendor)),
			slog.String("model", provider.ModelID()),
			slog.Any("settings", settings))
		opts.Provider = provider
	}

	p, err := halflife.New(ctx, kind, opts)
	if err != nil && kind == halflife.KindRegression {
		// A fresh database has nothing to fit yet.
		d.logger.Warn("regression predictor unavailable, using heuristic",
			slog.Int("samples", len(opts.Samples)),
			logging.ErrAttr(err))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if c, ok := p.(*halflife.Cached); ok {
		d.closers = append(d.closers, c.Close)
	}
	d.logger.Debug("predictor ready", slog.String("kind", kind), slog.Bool("enabled", p != nil))
	return p, nil
}
