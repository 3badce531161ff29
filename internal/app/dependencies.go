package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/boredapes/ctaplanner/internal/config"
	"github.com/boredapes/ctaplanner/internal/event_bus"
	"github.com/boredapes/ctaplanner/internal/utils"
	"github.com/boredapes/ctaplanner/pkg/event"
	"github.com/boredapes/ctaplanner/pkg/google"
	"github.com/boredapes/ctaplanner/pkg/session"
	"github.com/boredapes/ctaplanner/pkg/submission"
	"github.com/boredapes/ctaplanner/pkg/user"
	"github.com/boredapes/ctaplanner/pkg/workspace"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Bus   *event_bus.EventBus
	Clock utils.Clock
	Ids   utils.IdGenerator

	Catalog        *event.Catalog
	CatalogHandler *event.Handler

	Store submission.Store

	UserRepo    user.Repository
	UserService user.Service

	Authenticator   session.Authenticator
	SessionProvider *session.Provider
	SessionGate     *session.Gate
	SessionHandler  *session.Handler

	Registry         *workspace.Registry
	Reaper           *workspace.Reaper
	WorkspaceHandler *workspace.Handler

	Mirror            *google.Mirror
	unsubscribeMirror func()
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(ctx context.Context, db *pgxpool.Pool, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Bus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}
	deps.Ids = utils.UUIDGenerator{}

	catalog, err := event.NewCatalog(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	if mismatch := catalog.Mismatch(); !mismatch.Empty() {
		log.Warnf("form and legend categories differ: form only %v, legend only %v, team required but not offered %v",
			mismatch.FormOnly, mismatch.LegendOnly, mismatch.TeamRequiredNotOffered)
	}
	deps.Catalog = catalog
	deps.CatalogHandler = event.NewHandler(catalog)

	store, err := newStore(db, cfg.Store)
	if err != nil {
		return nil, err
	}
	deps.Store = store

	deps.UserRepo = user.NewRepository(db)
	deps.UserService = user.NewService(deps.UserRepo)

	authenticator, err := newAuthenticator(deps.UserService, cfg.Auth)
	if err != nil {
		return nil, err
	}
	deps.Authenticator = authenticator
	deps.SessionProvider = session.NewProvider(deps.Authenticator, deps.Clock, deps.Ids, deps.Bus, cfg.Auth.SessionTtl)
	deps.SessionHandler = session.NewHandler(deps.SessionProvider)

	deps.Registry = workspace.NewRegistry(workspace.Deps{
		Catalog:  deps.Catalog,
		Store:    deps.Store,
		Clock:    deps.Clock,
		Ids:      deps.Ids,
		Bus:      deps.Bus,
		Sessions: deps.SessionProvider,
	})
	deps.SessionGate = session.NewGate(deps.SessionProvider, deps.Registry)
	deps.SessionGate.Init()
	deps.WorkspaceHandler = workspace.NewHandler(deps.Registry)

	deps.Reaper, err = workspace.NewReaper(deps.SessionProvider, deps.Clock, cfg.Workspace.ReapInterval)
	if err != nil {
		return nil, err
	}

	if cfg.Google.CalendarId != "" && cfg.Google.CredentialsFile != "" {
		service, err := google.NewCalendarService(ctx, cfg.Google.CredentialsFile)
		if err != nil {
			return nil, err
		}
		deps.Mirror = google.NewMirror(google.NewCalendarInserter(service), cfg.Google.CalendarId)
		deps.unsubscribeMirror = deps.Mirror.Subscribe(deps.Bus)
		log.Infof("Mirroring submitted schedules to Google Calendar %s", cfg.Google.CalendarId)
	}

	return deps, nil
}

// Close releases background resources in reverse order of creation.
func (d *Dependencies) Close() {
	if d.unsubscribeMirror != nil {
		d.unsubscribeMirror()
		d.Mirror.Wait()
	}
	d.Reaper.Stop()
	d.SessionGate.Teardown()
	d.Registry.CloseAll()
}

func newStore(db *pgxpool.Pool, cfg config.Store) (submission.Store, error) {
	switch cfg.Kind {
	case config.StorePostgres:
		log.Info("Storing schedules in Postgres")
		return submission.NewPostgresStore(db), nil
	case config.StorePostgREST:
		if cfg.PostgREST.Url == "" {
			return nil, fmt.Errorf("store.postgrest.url is required for the %q store", config.StorePostgREST)
		}
		log.Infof("Storing schedules through %s", cfg.PostgREST.Url)
		return submission.NewPostgRESTStore(cfg.PostgREST, &http.Client{Timeout: cfg.PostgREST.Timeout}), nil
	default:
		return nil, fmt.Errorf("unknown store kind %q", cfg.Kind)
	}
}

func newAuthenticator(accounts user.Service, cfg config.Auth) (session.Authenticator, error) {
	switch cfg.Provider {
	case config.AuthLocal:
		return session.NewLocalAuthenticator(accounts), nil
	case config.AuthOAuth:
		if cfg.OAuth.TokenUrl == "" {
			return nil, fmt.Errorf("auth.oauth.tokenurl is required for the %q provider", config.AuthOAuth)
		}
		return session.NewOAuthAuthenticator(cfg.OAuth, http.DefaultClient), nil
	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.Provider)
	}
}
