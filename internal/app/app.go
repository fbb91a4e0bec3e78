// Package app assembles the engine from configuration: the document backend,
// the derived-stat hooks and update queue, chat transport, scripted
// callbacks, the item catalog and the public System.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/cory-johannsen/taberneiros/internal/chat"
	"github.com/cory-johannsen/taberneiros/internal/config"
	cdterr "github.com/cory-johannsen/taberneiros/internal/errors"
	"github.com/cory-johannsen/taberneiros/internal/game/action"
	"github.com/cory-johannsen/taberneiros/internal/game/catalog"
	"github.com/cory-johannsen/taberneiros/internal/game/character"
	"github.com/cory-johannsen/taberneiros/internal/game/check"
	"github.com/cory-johannsen/taberneiros/internal/game/dice"
	"github.com/cory-johannsen/taberneiros/internal/game/rules"
	"github.com/cory-johannsen/taberneiros/internal/hooks"
	"github.com/cory-johannsen/taberneiros/internal/queue"
	"github.com/cory-johannsen/taberneiros/internal/scripting"
	"github.com/cory-johannsen/taberneiros/internal/server"
	"github.com/cory-johannsen/taberneiros/internal/storage"
	"github.com/cory-johannsen/taberneiros/internal/storage/memory"
	"github.com/cory-johannsen/taberneiros/internal/storage/postgres"
	"github.com/cory-johannsen/taberneiros/internal/storage/redisstore"
	"github.com/cory-johannsen/taberneiros/internal/storage/sqlite"
	"github.com/cory-johannsen/taberneiros/internal/system"
)

// Options override collaborators that normally come from the environment.
type Options struct {
	// Confirmer answers yes/no questions; defaults to always yes.
	Confirmer chat.Confirmer
	// Source rolls dice; defaults to crypto/rand.
	Source dice.Source
	// Sink receives chat cards in addition to the configured transports.
	Sink chat.Sink
}

// App is an assembled engine.
type App struct {
	Config    config.Config
	Logger    *zap.Logger
	Documents *storage.Documents
	Updates   *queue.Updates
	Hooks     *hooks.Dispatcher
	Catalog   *catalog.Registry
	Scripts   *scripting.Manager
	System    *system.System

	backend storage.Backend
	discord *discordgo.Session
}

// OpenBackend opens the storage backend named by cfg.Storage.Backend,
// migrating SQL schemas first.
//
// Postcondition: Returns an open Backend or a non-nil error.
func OpenBackend(ctx context.Context, cfg config.Config) (storage.Backend, error) {
	switch cfg.Storage.Backend {
	case "memory":
		return memory.New(), nil
	case "sqlite":
		return sqlite.Open(ctx, cfg.Storage.SQLitePath)
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(cfg.Database.DSN()); err != nil {
			pool.Close()
			return nil, err
		}
		return postgres.NewStore(pool), nil
	case "redis":
		return redisstore.Dial(ctx, cfg.Redis)
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

// New assembles an App from cfg.
//
// Precondition: cfg has passed Validate; logger must be non-nil.
// Postcondition: Returns a ready App or a non-nil error; call Close when done.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts Options) (*App, error) {
	backend, err := OpenBackend(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening %s backend: %w", cfg.Storage.Backend, err)
	}
	a := &App{Config: cfg, Logger: logger, backend: backend}
	if err := a.assemble(cfg, opts); err != nil {
		_ = a.Close()
		return nil, err
	}
	logger.Info("engine assembled",
		zap.String("backend", cfg.Storage.Backend),
		zap.Bool("discord", a.discord != nil),
		zap.Bool("scripts", a.Scripts != nil),
		zap.Int("catalog_items", len(a.Catalog.All())),
	)
	return a, nil
}

func (a *App) assemble(cfg config.Config, opts Options) error {
	logger := a.Logger
	a.Documents = storage.NewDocuments(a.backend, logger)
	a.Updates = queue.NewUpdates(a.Documents, cfg.Queue.DrainConcurrency, logger)
	a.Hooks = hooks.NewDispatcher(a.Documents, a.Updates, cfg.Queue.ItemDebounce, logger)
	a.Documents.Subscribe(a.Hooks)

	sinks := chat.Fanout{chat.NewLogSink(logger, chat.Renderer{ShowFormulas: cfg.Rules.ShowFormulas})}
	var notifier chat.Notifier = chat.NewLogNotifier(logger)
	if cfg.Discord.Enabled {
		session, err := discordgo.New("Bot " + cfg.Discord.Token)
		if err != nil {
			return fmt.Errorf("creating discord session: %w", err)
		}
		a.discord = session
		sinks = append(sinks, chat.NewDiscordSink(session, cfg.Discord.ChannelID, cfg.Rules.ShowFormulas))
		notifier = chat.NewDiscordNotifier(session, cfg.Discord.ChannelID, notifier)
	}
	if opts.Sink != nil {
		sinks = append(sinks, opts.Sink)
	}

	confirmer := opts.Confirmer
	if confirmer == nil {
		confirmer = chat.StaticConfirmer(true)
	}
	src := opts.Source
	if src == nil {
		src = dice.NewCryptoSource()
	}
	roller := dice.NewLoggedRoller(src, logger)
	checks := check.NewResolver(roller, sinks, logger)
	actions := action.NewResolver(a.Documents, checks, roller, sinks, notifier, confirmer,
		action.Settings{SpendPMAlways: cfg.Rules.SpendPMAlways}, logger)

	a.Catalog = catalog.NewRegistry()
	if dir := cfg.Content.ItemsDir; dir != "" {
		if _, err := os.Stat(dir); err == nil {
			reg, err := catalog.LoadRegistry(dir)
			if err != nil {
				return fmt.Errorf("loading item catalog: %w", err)
			}
			a.Catalog = reg
		} else {
			logger.Warn("item catalog not found", zap.String("dir", dir))
		}
	}

	if cfg.Rules.AutoMacros {
		m, err := a.loadScripts(cfg.Scripting, roller, notifier)
		if err != nil {
			return err
		}
		a.Scripts = m
		actions.Scripts = action.Scripts{
			OnCriticalSuccess: m.Callback(scripting.HookCriticalSuccess),
			OnCriticalFailure: m.Callback(scripting.HookCriticalFailure),
		}
	}

	a.System = system.New(a.Documents, actions, a.Catalog, notifier, logger)
	return nil
}

func (a *App) loadScripts(cfg config.ScriptingConfig, roller *dice.Roller, notifier chat.Notifier) (*scripting.Manager, error) {
	m := scripting.NewManager(roller, cfg.InstructionLimit, a.Logger)
	m.Notify = func(ctx context.Context, text string) { notifier.Notify(ctx, chat.Info, text) }
	m.Restore = a.restorePool
	if err := m.LoadDir(context.Background(), cfg.ScriptDir); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

// restorePool adds amount to the "pv" or "pm" pool of actorID, capped at max.
func (a *App) restorePool(ctx context.Context, actorID, pool string, amount int) error {
	field := character.PVValue
	if pool == "pm" {
		field = character.PMValue
	}
	c, err := a.Documents.Character(ctx, actorID)
	if err != nil {
		return err
	}
	p := rules.HealPatch(c, field, amount)
	if p.IsEmpty() {
		return nil
	}
	_, err = a.Documents.UpdateCharacter(ctx, actorID, p)
	return err
}

// Services returns the long-running parts of the App for a server.Lifecycle.
func (a *App) Services() map[string]server.Service {
	svcs := map[string]server.Service{
		"updates": server.FuncService{
			StartFn: func(ctx context.Context) error {
				if err := a.Updates.Run(ctx); err != nil && ctx.Err() == nil {
					return err
				}
				return nil
			},
		},
	}
	if a.discord != nil {
		svcs["discord"] = server.FuncService{
			StartFn: func(ctx context.Context) error {
				if err := a.discord.Open(); err != nil {
					return fmt.Errorf("opening discord session: %w", err)
				}
				<-ctx.Done()
				return nil
			},
			StopFn: func() { _ = a.discord.Close() },
		}
	}
	return svcs
}

// Settle fires pending item recomputations and drains the update queue.
func (a *App) Settle(ctx context.Context) error {
	a.Hooks.Flush()
	return a.Updates.Drain(ctx)
}

// Close flushes pending work and releases every resource.
//
// Postcondition: the backend is closed; pending updates were attempted once.
func (a *App) Close() error {
	var errs []error
	if a.Hooks != nil {
		a.Hooks.Stop()
		if err := a.Updates.Drain(context.Background()); err != nil {
			errs = append(errs, err)
		}
	}
	if a.Scripts != nil {
		a.Scripts.Close()
	}
	if err := a.backend.Close(); err != nil {
		errs = append(errs, cdterr.Persistence(err, "closing backend"))
	}
	return errors.Join(errs...)
}
