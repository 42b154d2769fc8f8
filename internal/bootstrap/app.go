package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "resume-builder/internal/auth"
	"resume-builder/internal/documents"
	"resume-builder/internal/fragments"
	"resume-builder/internal/jobads"
	"resume-builder/internal/llm"
	openai "resume-builder/internal/llm/openai"
	"resume-builder/internal/profiles"
	"resume-builder/internal/queue"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/server"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/storage/object"
	localstore "resume-builder/internal/shared/storage/object/local"
	s3store "resume-builder/internal/shared/storage/object/s3"
	"resume-builder/internal/users"
)

// App holds shared dependencies for the API server and the worker.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	DocumentsRepo documents.DocumentsRepo
	FragmentsRepo fragments.Repo
	ProfilesRepo  profiles.ProfilesRepo
	JobAdsRepo    jobads.Repo
	UsersRepo     users.Repo

	DocumentsService *documents.Service
	FragmentsService *fragments.Service
	ProfilesService  *profiles.Service
	JobAdsService    *jobads.Service
	UsersService     *users.Service

	DocumentsHandler *documents.Handler
	FragmentsHandler *fragments.Handler
	ProfilesHandler  *profiles.Handler
	JobAdsHandler    *jobads.Handler
	UsersHandler     *users.Handler
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

	queueClient, err := buildQueue(ctx)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		DocumentsHandler: app.DocumentsHandler,
		FragmentsHandler: app.FragmentsHandler,
		ProfilesHandler:  app.ProfilesHandler,
		JobAdsHandler:    app.JobAdsHandler,
		UsersHandler:     app.UsersHandler,
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

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
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
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context) (queue.Client, error) {
	if strings.TrimSpace(os.Getenv("RB_SQS_QUEUE_URL")) == "" {
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
	var docRepo documents.DocumentsRepo
	var fragRepo fragments.Repo
	var profileRepo profiles.ProfilesRepo
	var adRepo jobads.Repo
	var userRepo users.Repo

	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		fragRepo = &fragments.PGRepo{DB: app.DB}
		profileRepo = &profiles.PGRepo{DB: app.DB}
		adRepo = &jobads.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		fragRepo = fragments.NewMemoryRepo()
		profileRepo = profiles.NewMemoryRepo()
		adRepo = jobads.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
	}

	llmClient := llm.Client(llm.PlaceholderClient{})
	if app.Config.LLMProvider == "openai" {
		openaiClient, err := openai.NewClient(os.Getenv("OPENAI_API_KEY"), app.Config.LLMModel)
		if err != nil {
			if !isDevLike(app.Config.Env) {
				return err
			}
			log.Printf("bootstrap: llm client unavailable, using placeholder: %v", err)
		} else {
			llmClient = openaiClient
		}
	}

	docSvc := &documents.Service{
		Store:           app.Store,
		Repo:            docRepo,
		StorageProvider: app.Config.ObjectStoreType,
	}

	fragSvc := &fragments.Service{
		Repo:    fragRepo,
		DocRepo: docRepo,
		Docs:    docSvc,
		Store:   app.Store,
		LLM:     llmClient,
		Queue:   app.Queue,
		Model:   app.Config.LLMModel,
	}

	profileSvc := profiles.NewService(profileRepo)
	adSvc := &jobads.Service{Repo: adRepo, LLM: llmClient}
	userSvc := users.NewService(userRepo)

	googleAuthSvc := googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userSvc,
	)

	app.DocumentsRepo = docRepo
	app.FragmentsRepo = fragRepo
	app.ProfilesRepo = profileRepo
	app.JobAdsRepo = adRepo
	app.UsersRepo = userRepo
	app.DocumentsService = docSvc
	app.FragmentsService = fragSvc
	app.ProfilesService = profileSvc
	app.JobAdsService = adSvc
	app.UsersService = userSvc
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.FragmentsHandler = fragments.NewHandler(fragSvc)
	app.ProfilesHandler = profiles.NewHandler(profileSvc, fragmentAdapter{svc: fragSvc})
	app.JobAdsHandler = jobads.NewHandler(adSvc)
	app.UsersHandler = users.NewHandler(userSvc)
	app.GoogleAuth = googleAuthSvc

	return nil
}

// fragmentAdapter translates fragment errors into the sentinels the
// profiles package understands.
type fragmentAdapter struct {
	svc *fragments.Service
}

func (a fragmentAdapter) CompletedFragment(ctx context.Context, userID, fragmentID string) (profiles.Fragment, error) {
	frag, err := a.svc.CompletedFragment(ctx, userID, fragmentID)
	if err != nil {
		switch {
		case errors.Is(err, fragments.ErrNotFound):
			return profiles.Fragment{}, profiles.ErrNotFound
		case errors.Is(err, fragments.ErrNotReady):
			return profiles.Fragment{}, profiles.ErrFragmentNotReady
		case errors.Is(err, fragments.ErrParseFailed):
			return profiles.Fragment{}, fmt.Errorf("%w: %v", profiles.ErrParseFailure, err)
		default:
			return profiles.Fragment{}, err
		}
	}
	return frag, nil
}

var _ profiles.FragmentSource = fragmentAdapter{}
