package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/careerpilot/internal/config"
	"github.com/jonathan/careerpilot/internal/events"
	"github.com/jonathan/careerpilot/internal/githubprofile"
	"github.com/jonathan/careerpilot/internal/mailer"
	"github.com/jonathan/careerpilot/internal/metrics"
	"github.com/jonathan/careerpilot/internal/pipeline"
	"github.com/jonathan/careerpilot/internal/provision"
	"github.com/jonathan/careerpilot/internal/server"
	"github.com/jonathan/careerpilot/internal/server/ratelimit"
	"github.com/jonathan/careerpilot/internal/storage"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the candidate, job, dashboard, webhook and recruiter auth endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	if servePort != 0 {
		cfg.Port = servePort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	m := metrics.New()

	blobs, err := newBlobStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	var transport mailer.Transport
	if cfg.SendGrid.APIKey != "" {
		transport = mailer.NewSendGridTransport(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail)
	} else {
		logger.Warn("SENDGRID_API_KEY not set; emails are logged instead of sent")
	}
	dispatcher := mailer.NewDispatcher(transport, logger, m)

	var provisioner provision.Provisioner = provision.NewLocalProvisioner()
	if cfg.ClerkSecretKey != "" {
		provisioner = provision.NewClerkProvisioner(cfg.ClerkSecretKey, logger)
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.RabbitMQURL != "" {
		amqpPublisher, err := events.DialAMQP(cfg.RabbitMQURL, logger, m)
		if err != nil {
			return err
		}
		publisher = amqpPublisher
	}

	var github *githubprofile.Summarizer
	if cfg.GitHub.Enabled {
		github = githubprofile.NewSummarizer(githubprofile.NewClient(ctx, cfg.GitHub.Token), logger)
	}

	k, err := config.Env()
	if err != nil {
		return err
	}
	limiter := ratelimit.NewLimiter(ratelimit.LoadConfig(k))

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to load JWT config: %w", err)
	}
	passwords, err := config.NewPasswordConfig()
	if err != nil {
		return fmt.Errorf("failed to load password config: %w", err)
	}

	p := pipeline.New(pipeline.Deps{
		Store:           database,
		Blobs:           blobs,
		Provisioner:     provisioner,
		Mailer:          dispatcher,
		Events:          publisher,
		Metrics:         m,
		Logger:          logger,
		FrontendBaseURL: cfg.FrontendURL(),
		Concurrency:     cfg.UploadConcurrency,
	})

	srv, err := server.New(server.Config{
		Port:           cfg.Port,
		AuthRequired:   cfg.AuthRequired,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	}, server.Deps{
		Store:       database,
		Pipeline:    p,
		Recruiters:  server.NewRecruiterService(database, passwords, dispatcher, cfg.SignupCodeTTL, logger),
		JWT:         server.NewJWTService(jwtConfig),
		GitHub:      github,
		Events:      publisher,
		Metrics:     m,
		RateLimiter: limiter,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("starting server",
		zap.Int("port", cfg.Port),
		zap.Bool("auth_required", cfg.AuthRequired),
		zap.Bool("amqp", cfg.RabbitMQURL != ""),
		zap.Bool("github", github != nil),
	)
	return srv.Start(ctx)
}

func newBlobStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Store, error) {
	if cfg.S3.Bucket == "" {
		logger.Info("storing resumes on local disk", zap.String("dir", cfg.UploadDir))
		return storage.NewLocalStore(cfg.UploadDir)
	}
	logger.Info("storing resumes in object storage", zap.String("bucket", cfg.S3.Bucket))
	return storage.NewS3Store(ctx, storage.S3Config{
		Bucket:    cfg.S3.Bucket,
		Endpoint:  cfg.S3.Endpoint,
		Region:    cfg.S3.Region,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
	})
}
