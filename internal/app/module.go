// Package app composes the core into a running daemon.
package app

import (
	"context"

	"github.com/rafiq-app/rafiq/internal/bus"
	"github.com/rafiq-app/rafiq/internal/config"
	"github.com/rafiq-app/rafiq/internal/feed"
	"github.com/rafiq-app/rafiq/internal/geo"
	"github.com/rafiq-app/rafiq/internal/group"
	"github.com/rafiq-app/rafiq/internal/groupstore"
	"github.com/rafiq-app/rafiq/internal/location"
	"github.com/rafiq-app/rafiq/internal/lock"
	"github.com/rafiq-app/rafiq/internal/logging"
	"github.com/rafiq-app/rafiq/internal/meeting"
	"github.com/rafiq-app/rafiq/internal/notify"
	"github.com/rafiq-app/rafiq/internal/paths"
	"github.com/rafiq-app/rafiq/internal/prefs"
	"github.com/rafiq-app/rafiq/internal/presence"
	"github.com/rafiq-app/rafiq/internal/session"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved runtime settings passed to the fx module.
type Params struct {
	ConfigPath string
	// DatabaseURL points at the remote group store. Empty runs the daemon
	// against an in-process store (single-device mode, useful for demos and
	// tests).
	DatabaseURL  string
	DatabaseAuth string
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("rafiqd",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			providePrefs,
			provideLogger,
			provideLock,
			provideBus,
			provideMachine,
			provideRemoteStore,
			provideLocation,
			provideNotifier,
			provideSuppressFilter,
			provideManager,
			provideSessionView,
			providePresenceSubscriber,
			providePresencePublisher,
			provideMeetingCoordinator,
			provideFeedChannel,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig(p Params) (*config.Config, error) {
	path := p.ConfigPath
	if path == "" {
		path = paths.ConfigPath()
	}
	return config.Load(path)
}

func providePrefs() (*prefs.DB, error) {
	if err := paths.EnsureDirs(); err != nil {
		return nil, err
	}
	db, err := prefs.Open(paths.PrefsDBPath())
	if err != nil {
		return nil, err
	}
	if _, err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func provideLogger(db *prefs.DB) (*zap.Logger, error) {
	id, err := db.MemberID()
	if err != nil {
		return nil, err
	}
	return logging.New(paths.LogPath(), id)
}

func provideLock(logger *zap.Logger) (*lock.Lock, error) {
	logger.Info("acquiring daemon lock")
	l, err := lock.Acquire(paths.BaseDir())
	if err != nil {
		return nil, err
	}
	logger.Info("daemon lock acquired")
	return l, nil
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideMachine(b *bus.Bus) *session.Machine {
	return session.NewMachine(b)
}

func provideRemoteStore(p Params, logger *zap.Logger) groupstore.Store {
	if p.DatabaseURL == "" {
		logger.Warn("no database URL configured, using in-process store")
		return groupstore.NewMemory()
	}
	return groupstore.NewRTDB(p.DatabaseURL, p.DatabaseAuth, logger)
}

func provideLocation(cfg *config.Config) location.Provider {
	if cfg.Latitude == 0 && cfg.Longitude == 0 {
		// No position configured; presence and panic degrade.
		return location.NewUnavailable()
	}
	return location.NewStatic(geo.Coordinate{Latitude: cfg.Latitude, Longitude: cfg.Longitude})
}

func provideNotifier(logger *zap.Logger) notify.Notifier {
	return notify.NewLogger(logger)
}

func provideSuppressFilter(cfg *config.Config) *feed.SuppressFilter {
	return feed.NewSuppressFilter(cfg.AlertFreshness())
}

func provideManager(db *prefs.DB, store groupstore.Store, machine *session.Machine, loc location.Provider, logger *zap.Logger) *session.Manager {
	return session.NewManager(db, store, machine, loc, logger)
}

func provideSessionView(m *session.Manager) group.Session {
	return m
}

func providePresenceSubscriber(store groupstore.Store, b *bus.Bus, logger *zap.Logger) *presence.Subscriber {
	return presence.NewSubscriber(store, b, logger)
}

func providePresencePublisher(store groupstore.Store, sess group.Session, loc location.Provider, cfg *config.Config, logger *zap.Logger) *presence.Publisher {
	opts := location.WatchOptions{
		Interval:     cfg.PublishInterval(),
		Displacement: cfg.DisplacementMeters,
	}
	return presence.NewPublisher(store, sess, loc, opts, logger)
}

func provideMeetingCoordinator(store groupstore.Store, sess group.Session, b *bus.Bus, logger *zap.Logger) *meeting.Coordinator {
	return meeting.NewCoordinator(store, sess, b, logger)
}

func provideFeedChannel(store groupstore.Store, sess group.Session, b *bus.Bus, notifier notify.Notifier, filter *feed.SuppressFilter, loc location.Provider, logger *zap.Logger) *feed.Channel {
	return feed.NewChannel(store, sess, b, notifier, filter, loc, logger)
}

func registerLifecycle(
	lc fx.Lifecycle,
	lk *lock.Lock,
	db *prefs.DB,
	mgr *session.Manager,
	pub *presence.Publisher,
	sub *presence.Subscriber,
	coord *meeting.Coordinator,
	ch *feed.Channel,
	logger *zap.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Group-scoped subscriptions follow the session: the manager
			// attaches them on create/join/load and detaches on leave.
			mgr.SetAttachments(sub, coord, ch)
			if err := mgr.Load(ctx); err != nil {
				return err
			}

			pub.Start(context.Background())

			logger.Info("daemon started")
			return nil
		},
		OnStop: func(_ context.Context) error {
			pub.Stop()
			mgr.Shutdown()
			if err := db.Close(); err != nil {
				logger.Warn("error closing preference store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
