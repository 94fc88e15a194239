package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	googleauth "autoapply-backend/internal/auth"
	"autoapply-backend/internal/autoapply"
	"autoapply-backend/internal/generate"
	genopenai "autoapply-backend/internal/generate/openai"
	"autoapply-backend/internal/jobs"
	"autoapply-backend/internal/personas"
	"autoapply-backend/internal/queue"
	"autoapply-backend/internal/resumes"
	"autoapply-backend/internal/rules"
	"autoapply-backend/internal/shared/config"
	"autoapply-backend/internal/shared/server"
	"autoapply-backend/internal/shared/storage/db"
	"autoapply-backend/internal/shared/storage/object"
	localstore "autoapply-backend/internal/shared/storage/object/local"
	s3store "autoapply-backend/internal/shared/storage/object/s3"
	"autoapply-backend/internal/shared/telemetry"
	"autoapply-backend/internal/users"
)

// App holds shared dependencies for all entrypoints.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Redis  *redis.Client
	Queue  queue.Client

	RulesRepo    rules.Repo
	PersonasRepo personas.Repo
	ResumesRepo  resumes.Repo
	JobsRepo     jobs.JobRepo
	MatchesRepo  jobs.MatchRepo
	QueueRepo    autoapply.QueueRepo
	LogRepo      autoapply.LogRepo
	UsersRepo    users.Repo

	RulesService     *rules.Service
	PersonasService  *personas.Service
	ResumesService   *resumes.Service
	JobsService      *jobs.Service
	AutoApplyService *autoapply.Service
	GenerateService  *generate.Service
	UsersService     *users.Service
	Builder          *autoapply.Builder
	GoogleAuth       *googleauth.GoogleService
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	rdb := buildRedis(ctx, cfg)
	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Redis:  rdb,
		Queue:  queueClient,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		RulesHandler:     rules.NewHandler(app.RulesService),
		PersonasHandler:  personas.NewHandler(app.PersonasService),
		ResumesHandler:   resumes.NewHandler(app.ResumesService),
		JobsHandler:      jobs.NewHandler(app.JobsService),
		AutoApplyHandler: autoapply.NewHandler(app.AutoApplyService),
		GenerateHandler:  generate.NewHandler(app.GenerateService),
		UsersHandler:     users.NewHandler(app.UsersService),
		GoogleAuth:       app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildRedis(ctx context.Context, cfg config.Config) *redis.Client {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("bootstrap: invalid REDIS_URL, continuing without redis: %v", err)
		return nil
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("bootstrap: redis ping failed, continuing without redis: %v", err)
		return nil
	}
	return client
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.SubmissionQueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	if app.DB != nil {
		app.RulesRepo = &rules.PGRepo{DB: app.DB}
		app.PersonasRepo = &personas.PGRepo{DB: app.DB}
		app.ResumesRepo = &resumes.PGRepo{DB: app.DB}
		app.JobsRepo = &jobs.PGJobRepo{DB: app.DB}
		app.MatchesRepo = &jobs.PGMatchRepo{DB: app.DB}
		app.QueueRepo = &autoapply.PGQueueRepo{DB: app.DB}
		app.LogRepo = &autoapply.PGLogRepo{DB: app.DB}
		app.UsersRepo = &users.PGRepo{DB: app.DB}
	} else {
		app.RulesRepo = rules.NewMemoryRepo()
		app.PersonasRepo = personas.NewMemoryRepo()
		app.ResumesRepo = resumes.NewMemoryRepo()
		app.JobsRepo = jobs.NewMemoryJobRepo()
		app.MatchesRepo = jobs.NewMemoryMatchRepo()
		app.QueueRepo = autoapply.NewMemoryQueueRepo()
		app.LogRepo = autoapply.NewMemoryLogRepo()
		app.UsersRepo = users.NewMemoryRepo()
	}

	var seen jobs.SeenStore
	if app.Redis != nil {
		seen = jobs.NewRedisSeenStore(app.Redis)
	} else {
		seen = jobs.NewMemorySeenStore()
	}

	app.RulesService = &rules.Service{Repo: app.RulesRepo}
	app.ResumesService = &resumes.Service{
		Store: app.Store,
		Repo:  app.ResumesRepo,
		Log:   telemetry.NewLogger("resumes"),
	}
	app.PersonasService = &personas.Service{
		Repo:    app.PersonasRepo,
		Resumes: app.ResumesRepo,
	}
	app.JobsService = &jobs.Service{
		Jobs:     app.JobsRepo,
		Matches:  app.MatchesRepo,
		Seen:     seen,
		Detector: jobs.NewATSDetector(),
		Log:      telemetry.NewLogger("jobs"),
	}

	var publisher autoapply.Publisher
	if app.Queue != nil {
		publisher = &autoapply.QueuePublisher{Client: app.Queue}
	}
	app.Builder = &autoapply.Builder{
		Rules:     app.RulesRepo,
		Personas:  app.PersonasRepo,
		Jobs:      app.JobsRepo,
		Matches:   app.MatchesRepo,
		Queue:     app.QueueRepo,
		Log:       app.LogRepo,
		Publisher: publisher,
		Logger:    telemetry.NewLogger("builder"),
	}
	app.AutoApplyService = &autoapply.Service{
		Queue:   app.QueueRepo,
		Log:     app.LogRepo,
		Builder: app.Builder,
	}

	genClient := generate.Client(generate.PlaceholderClient{})
	if app.Config.LLMProvider == "openai" && strings.TrimSpace(os.Getenv("OPENAI_API_KEY")) != "" {
		openaiClient, err := genopenai.NewClient(os.Getenv("OPENAI_API_KEY"), app.Config.LLMModel)
		if err != nil {
			return err
		}
		genClient = openaiClient
	}
	app.GenerateService = &generate.Service{
		Client:   genClient,
		Personas: app.PersonasRepo,
		Resumes:  app.ResumesRepo,
		Jobs:     app.JobsRepo,
	}

	app.UsersService = users.NewService(app.UsersRepo)
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		app.UsersService,
	)

	return nil
}
