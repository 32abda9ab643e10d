package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/donseba/go-htmx"
	"github.com/joho/godotenv"
	"github.com/opencrew/pitchboard/internal/ai"
	"github.com/opencrew/pitchboard/internal/capture"
	"github.com/opencrew/pitchboard/internal/db"
	"github.com/opencrew/pitchboard/internal/envstruct"
	"github.com/opencrew/pitchboard/internal/errors"
	"github.com/opencrew/pitchboard/internal/hostmedia"
	"github.com/opencrew/pitchboard/internal/hunter"
	"github.com/opencrew/pitchboard/internal/logging"
	"github.com/opencrew/pitchboard/internal/mailer"
	"github.com/opencrew/pitchboard/internal/models"
	"github.com/opencrew/pitchboard/internal/pitch"
	"github.com/opencrew/pitchboard/internal/pprofserver"
	"github.com/opencrew/pitchboard/internal/repositories"
	"github.com/opencrew/pitchboard/internal/tracker"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	htmx           *htmx.HTMX
	investors      *repositories.InvestorRepository
	tracker        *tracker.Tracker
	pitches        *pitch.Manager
	resolver       pitch.Resolver
	tips           pitch.TipSource
	sender         mailer.Sender
}

type config struct {
	Addr      string `env:"PITCHBOARD_ADDR" envDefault:"localhost:4000"`
	SQLiteURL string `env:"PITCHBOARD_SQLITE_URL" envDefault:"./pitchboard.sqlite"`
	PprofPort string `env:"PITCHBOARD_PPROF_PORT" envDefault:""`

	HunterAPIKey  string `env:"HUNTER_API_KEY" envDefault:""`
	HunterBaseURL string `env:"HUNTER_BASE_URL" envDefault:"https://api.hunter.io"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY" envDefault:""`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" envDefault:""`
	UploadURL     string `env:"CLOUDINARY_UPLOAD_URL" envDefault:"https://api.cloudinary.com/v1_1/demo/video/upload"`
	UploadPreset  string `env:"CLOUDINARY_UPLOAD_PRESET" envDefault:"pitchboard"`

	SMTPHost      string `env:"SMTP_HOST" envDefault:"smtpout.secureserver.net"`
	SMTPPort      string `env:"SMTP_PORT" envDefault:"465"`
	FromEmail     string `env:"PITCH_FROM_EMAIL" envDefault:""`
	EmailPassword string `env:"PITCH_EMAIL_PASSWORD" envDefault:""`

	CompanySectors string `env:"COMPANY_SECTORS" envDefault:"AI, SaaS"`
	CompanyStage   string `env:"COMPANY_STAGE" envDefault:"Pre-Seed"`

	VideoDevice string `env:"PITCH_VIDEO_DEVICE" envDefault:"/dev/video0"`
	AudioDevice string `env:"PITCH_AUDIO_DEVICE" envDefault:"default"`
}

func main() {
	ctx := context.Background()
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	})))

	// A missing .env file is fine, the environment may be configured directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.LogAttrs(ctx, slog.LevelWarn, "load .env", errors.SlogError(err))
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server failed", errors.SlogError(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "parse config")
	}

	if cfg.PprofPort != "" {
		// pprof listens on localhost so that it's not open to the world.
		pprofserver.Launch(cfg.PprofPort, logger)
	}

	database, err := db.NewDatabase(ctx, cfg.SQLiteURL, logger)
	if err != nil {
		return errors.Wrap(err, "connect database")
	}
	defer func() {
		if err = database.Close(); err != nil {
			logger.LogAttrs(ctx, slog.LevelError, "close database", errors.SlogError(err))
		}
	}()
	go database.StartOptimizer(ctx)

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(database.ReadWrite.DB, 24*time.Hour)
	sessionManager.Lifetime = 12 * time.Hour

	smtpPort, err := strconv.Atoi(cfg.SMTPPort)
	if err != nil {
		return errors.Wrap(err, "parse SMTP port", slog.String("port", cfg.SMTPPort))
	}

	investors := repositories.NewInvestorRepository(database, logger)
	profile := models.ParseCompanyProfile(cfg.CompanySectors, cfg.CompanyStage)
	investorTracker := tracker.New(investors, profile, logger)
	if err = investorTracker.Refresh(ctx); err != nil {
		return errors.Wrap(err, "load investors")
	}

	resolver := hunter.NewClient(cfg.HunterBaseURL, cfg.HunterAPIKey, logger)
	tips := ai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, logger)
	sender := mailer.NewSMTPSender(cfg.SMTPHost, smtpPort, cfg.FromEmail, cfg.EmailPassword, logger)
	pitchDeps := pitch.Deps{
		Device:   capture.NewFFmpegDevice(cfg.VideoDevice, cfg.AudioDevice, logger),
		Uploader: hostmedia.NewClient(cfg.UploadURL, cfg.UploadPreset, logger),
		Resolver: resolver,
		Tips:     tips,
		Sender:   sender,
	}

	app := application{
		logger:         logger,
		sessionManager: sessionManager,
		htmx:           htmx.New(),
		investors:      investors,
		tracker:        investorTracker,
		pitches:        pitch.NewManager(pitchDeps, logger),
		resolver:       resolver,
		tips:           tips,
		sender:         sender,
	}

	return app.serve(ctx, cfg.Addr)
}
