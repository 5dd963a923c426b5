package main

import (
	"context"
	"encoding/gob"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/donseba/go-htmx"
	"github.com/evidenx/evidenx/internal/ai"
	"github.com/evidenx/evidenx/internal/broker"
	"github.com/evidenx/evidenx/internal/caseapi"
	"github.com/evidenx/evidenx/internal/chat"
	"github.com/evidenx/evidenx/internal/envstruct"
	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/knowledge"
	"github.com/evidenx/evidenx/internal/logging"
	"github.com/evidenx/evidenx/internal/pprofserver"
	"github.com/evidenx/evidenx/internal/repositories"
	"github.com/evidenx/evidenx/internal/sqlite"
	"github.com/evidenx/evidenx/internal/ssr"
	"github.com/evidenx/evidenx/ui"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func init() {
	gob.Register([]chat.VideoExchange{})
}

const (
	sessionCleanupInterval = 24 * time.Hour
	// sessionLifetime covers a working shift.
	sessionLifetime = 12 * time.Hour
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	htmx           *htmx.HTMX
	files          fs.FS
	expander       ssr.Expander
	apiTokens      apiTokens

	cases      *repositories.CaseRepository
	evidence   *repositories.EvidenceRepository
	timeline   *repositories.TimelineRepository
	comparison *repositories.ComparisonRepository
	incidents  *repositories.IncidentRepository
	media      *repositories.MediaRepository

	knowledge knowledge.Querier
	assistant *chat.Assistant
	followUps *chat.FollowUps
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"EVIDENX_ADDR" envDefault:"localhost:4000"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"EVIDENX_SQLITE_URL" envDefault:"./evidenx.sqlite3"`
	// Fixtures seeds an empty database with the demo cases.
	Fixtures bool `env:"EVIDENX_FIXTURES" envDefault:"true"`
	// PprofAddr starts a pprof server on the given private address when set, e.g. localhost:6060.
	PprofAddr string `env:"EVIDENX_PPROF_ADDR" envDefault:""`
	// APITokens are the investigator tokens as name:token pairs. They sign in to the dashboard and authorise
	// the REST API.
	APITokens []string `env:"EVIDENX_API_TOKENS" envDefault:""`
	// BackendURL is the case backend answering knowledge base queries.
	BackendURL   string `env:"EVIDENX_BACKEND_URL" envDefault:""`
	BackendToken string `env:"EVIDENX_BACKEND_TOKEN" envDefault:""`
	// RedisURL enables caching of knowledge base answers.
	RedisURL string        `env:"EVIDENX_REDIS_URL" envDefault:""`
	CacheTTL time.Duration `env:"EVIDENX_CACHE_TTL" envDefault:"24h"`
	// OpenAIKey enables answering from the local case file with a language model when there's no backend.
	OpenAIKey     string `env:"OPENAI_API_KEY" envDefault:""`
	OpenAIBaseURL string `env:"EVIDENX_OPENAI_BASE_URL" envDefault:""`
	// TemplatePath reads the ui directory with templates and static files from disk instead of the embedded
	// copy, useful while editing them.
	TemplatePath string `env:"EVIDENX_TEMPLATE_PATH" envDefault:""`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		err    error
		cancel context.CancelFunc
	)
	ctx, cancel = context.WithCancel(ctx)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	tokens, err := parseAPITokens(cfg.APITokens)
	if err != nil {
		return errors.Wrap(err, "parse API tokens")
	}

	if cfg.PprofAddr != "" {
		pprofserver.Launch(ctx, cfg.PprofAddr, logger)
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, cfg.SqliteURL, cfg.Fixtures, logger); err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "close database", errors.SlogError(closeErr))
		}
	}()

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(db.SessionDB(), sessionCleanupInterval)
	sessionManager.Lifetime = sessionLifetime
	sessionManager.Cookie.Secure = true

	var files fs.FS = ui.Files
	if cfg.TemplatePath != "" {
		files = os.DirFS(cfg.TemplatePath)
	}

	chatBroker := broker.NewChannelBroker[string, string]()
	go chatBroker.Start()
	defer chatBroker.Stop()

	app := application{
		logger:         logger,
		sessionManager: sessionManager,
		htmx:           htmx.New(),
		files:          files,
		expander:       newExpander(),
		apiTokens:      tokens,
		cases:          repositories.NewCaseRepository(db, logger),
		evidence:       repositories.NewEvidenceRepository(db, logger),
		timeline:       repositories.NewTimelineRepository(db, logger),
		comparison:     repositories.NewComparisonRepository(db, logger),
		incidents:      repositories.NewIncidentRepository(db, logger),
		media:          repositories.NewMediaRepository(db, logger),
	}
	if app.knowledge, err = app.newQuerier(ctx, cfg); err != nil {
		return errors.Wrap(err, "configure knowledge base")
	}
	app.assistant = chat.NewAssistant(app.knowledge, repositories.NewChatRepository(db, logger), chatBroker, logger)
	app.followUps = chat.NewFollowUps(app.media)

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

// newQuerier chooses the knowledge base: the case backend, a language model over the local case file, or none.
// Answers are cached in Redis when it's configured.
func (app *application) newQuerier(ctx context.Context, cfg config) (knowledge.Querier, error) {
	var querier knowledge.Querier
	switch {
	case cfg.BackendURL != "":
		client, err := caseapi.New(caseapi.Config{
			BaseURL: cfg.BackendURL,
			Token:   cfg.BackendToken,
		}, app.logger)
		if err != nil {
			return nil, errors.Wrap(err, "new backend client")
		}
		querier = knowledge.NewRemoteQuerier(client)
		app.logger.LogAttrs(ctx, slog.LevelInfo, "answering from case backend", slog.String("url", cfg.BackendURL))
	case cfg.OpenAIKey != "":
		loader := knowledge.RepositoryLoader{Cases: app.cases, Evidence: app.evidence, Timeline: app.timeline}
		client := ai.NewClient(ai.Config{APIKey: cfg.OpenAIKey, BaseURL: cfg.OpenAIBaseURL})
		querier = knowledge.NewAIQuerier(client, loader, app.logger)
		app.logger.LogAttrs(ctx, slog.LevelInfo, "answering from language model")
	default:
		app.logger.LogAttrs(ctx, slog.LevelWarn, "no knowledge base configured, the assistant can't answer")
		return knowledge.Unconfigured{}, nil
	}

	if cfg.RedisURL == "" {
		return querier, nil
	}
	var (
		client *redis.Client
		err    error
	)
	if client, err = knowledge.NewRedisClient(ctx, cfg.RedisURL); err != nil {
		return nil, errors.Wrap(err, "connect knowledge cache")
	}
	go func() {
		<-ctx.Done()
		_ = client.Close()
	}()
	return knowledge.NewCachedQuerier(querier, client, cfg.CacheTTL, app.logger), nil
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)

	// A missing .env file is fine, the environment is used as is.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.LogAttrs(ctx, slog.LevelError, "failure loading .env", errors.SlogError(err))
		os.Exit(1)
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
