// Package app assembles the console's stores and clients from configuration.
package app

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/suPer8Hu/mall-console/internal/api"
	"github.com/suPer8Hu/mall-console/internal/apiclient"
	"github.com/suPer8Hu/mall-console/internal/besteffort"
	"github.com/suPer8Hu/mall-console/internal/catalog"
	"github.com/suPer8Hu/mall-console/internal/chat"
	"github.com/suPer8Hu/mall-console/internal/config"
	"github.com/suPer8Hu/mall-console/internal/goodspublish"
	"github.com/suPer8Hu/mall-console/internal/logger"
	"github.com/suPer8Hu/mall-console/internal/permission"
	"github.com/suPer8Hu/mall-console/internal/persist"
	"github.com/suPer8Hu/mall-console/internal/route"
	"github.com/suPer8Hu/mall-console/internal/session"
	"github.com/suPer8Hu/mall-console/internal/socket"
	"github.com/suPer8Hu/mall-console/internal/store/rabbitmq"
)

type App struct {
	Cfg     config.Config
	Persist *persist.Store
	Runner  *besteffort.Runner

	API     *api.Client
	ChatAPI *api.ChatClient
	Socket  *socket.Client

	Session    *session.Store
	Permission *permission.Store
	Guard      *permission.Guard
	Chat       *chat.Cache
	Categories *catalog.Categories
	Units      *catalog.Units
	Draft      *goodspublish.Draft

	closers []func() error
}

type Option func(*options)

type options struct {
	backend persist.Backend
	reads   chat.ReadMarker
	dialer  socket.Dialer
}

// WithBackend overrides the backend chosen by PERSIST_DRIVER.
func WithBackend(b persist.Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithReadMarker overrides how mark-read calls leave the console.
func WithReadMarker(r chat.ReadMarker) Option {
	return func(o *options) { o.reads = r }
}

func WithSocketDialer(d socket.Dialer) Option {
	return func(o *options) { o.dialer = d }
}

// New builds every store, then restores whatever state was persisted.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Cfg: cfg, Runner: besteffort.NewRunner(context.Background(), cfg.HTTPTimeout)}

	backend := o.backend
	if backend == nil {
		b, closer, err := openBackend(ctx, cfg)
		if err != nil {
			return nil, err
		}
		backend = b
		a.closers = append(a.closers, closer)
	}
	sealer, err := persist.NewSealer(cfg.PersistSecret)
	if err != nil {
		return nil, err
	}
	a.Persist = persist.New(backend, sealer, cfg.PersistNamespace)

	a.Session = session.NewStore(a.Persist, cfg.JWTSecret)

	// A 401 from upstream ends the console session. Logout runs off the
	// request path since the guard may be the caller.
	onUnauthorized := func(token string) {
		a.Runner.Go("force_logout", func(ctx context.Context) error {
			_, err := a.logoutIfCurrent(ctx, token)
			return err
		})
	}
	clientOpts := []apiclient.Option{
		apiclient.WithTokenSource(a.Session),
		apiclient.WithImageBase(cfg.ImageBaseURL),
		apiclient.WithUnauthorizedHook(onUnauthorized),
	}
	a.API = api.NewClient(apiclient.New(cfg.APIBaseURL, cfg.HTTPTimeout, clientOpts...))
	a.ChatAPI = api.NewChatClient(apiclient.New(cfg.IMBaseURL, cfg.HTTPTimeout, clientOpts...))

	var sockOpts []socket.Option
	if o.dialer != nil {
		sockOpts = append(sockOpts, socket.WithDialer(o.dialer))
	}
	a.Socket = socket.New(cfg.IMWSURL, a.Session, sockOpts...)

	reads := o.reads
	if reads == nil {
		if reads, err = a.readMarker(cfg, sealer); err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	a.Permission = permission.NewStore(a.API, a.Session, a.Persist)
	a.Guard = permission.NewGuard(a.Permission, a.Session, route.NewStaticTable(), permission.DefaultRegistry())
	a.Chat = chat.NewCache(a.ChatAPI, reads, a.Socket, a.Runner, cfg.ChatPageSize,
		chat.WithSelf(func() string { return a.Session.Snapshot().UID }))
	a.Categories = catalog.NewCategories(a.API)
	a.Units = catalog.NewUnits(a.API)
	a.Draft = goodspublish.NewDraft(a.API, a.Persist)

	for name, restore := range map[string]func(context.Context) error{
		"session":      a.Session.Restore,
		"permission":   a.Permission.Restore,
		"goodsPublish": a.Draft.Restore,
	} {
		if err := restore(ctx); err != nil {
			// a corrupt or unreadable record must not keep the console down
			logger.Warnf("[app] restore %s failed, starting empty: %v", name, err)
		}
	}
	return a, nil
}

func openBackend(ctx context.Context, cfg config.Config) (persist.Backend, func() error, error) {
	switch cfg.PersistDriver {
	case "memory":
		return persist.NewMemoryBackend(), func() error { return nil }, nil
	case "redis":
		rb := persist.NewRedisBackend(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rb.Ping(ctx); err != nil {
			_ = rb.Close()
			return nil, nil, errors.Wrap(err, "redis ping")
		}
		return rb, rb.Close, nil
	case "mysql", "sqlite":
		db, err := persist.OpenDB(cfg.PersistDriver, cfg.DBDSN)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open state db")
		}
		b, err := persist.NewDBBackend(db)
		if err != nil {
			return nil, nil, errors.Wrap(err, "migrate state db")
		}
		closer := func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
		return b, closer, nil
	default:
		return nil, nil, fmt.Errorf("unsupported PERSIST_DRIVER=%q", cfg.PersistDriver)
	}
}

func (a *App) readMarker(cfg config.Config, sealer rabbitmq.TokenSealer) (chat.ReadMarker, error) {
	switch cfg.BestEffortMode {
	case "", "inline":
		return a.ChatAPI, nil
	case "rabbit":
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			return nil, errors.Wrap(err, "rabbit publisher")
		}
		a.closers = append(a.closers, pub.Close)
		return rabbitmq.NewReadReceipts(pub, a.Session, sealer), nil
	default:
		return nil, fmt.Errorf("unsupported BESTEFFORT_MODE=%q", cfg.BestEffortMode)
	}
}

// logoutIfCurrent ends the session only while it still holds token. A 401 for
// a request made before a re-login must not end the newer session.
func (a *App) logoutIfCurrent(ctx context.Context, token string) (bool, error) {
	if token == "" || a.Session.Token() != token {
		logger.Infof("[app] ignoring 401 for a replaced token")
		return false, nil
	}
	logger.Warnf("[app] upstream rejected token, logging out")
	return true, a.Logout(ctx)
}

// Login authenticates against the marketplace and starts a fresh route load
// on the next navigation.
func (a *App) Login(ctx context.Context, username, password string) (session.State, error) {
	prevRole := a.Session.Role()
	st, err := a.Session.Login(ctx, a.API, username, password)
	if err != nil {
		return session.State{}, err
	}
	if prevRole != "" && prevRole != st.Role {
		a.Categories.Reset()
		a.Units.Reset()
	}
	return st, nil
}

// Logout clears the session, the dynamic routes, the chat caches and the
// socket.
func (a *App) Logout(ctx context.Context) error {
	a.Chat.Cleanup()
	a.Chat.ClearAll()
	a.Categories.Reset()
	a.Units.Reset()

	var errs []error
	if err := a.Guard.Reset(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.Draft.Reset(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.Session.Clear(ctx); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs[0]
	}
	logger.Infof("[app] logged out")
	return nil
}

// Close waits for best-effort work, then releases connections.
func (a *App) Close() error {
	a.Socket.Reset()
	a.Runner.Wait()
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}
