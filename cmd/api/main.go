package main

import (
	"context"
	"expvar"
	"fmt"
	"os"
	"runtime"

	"gamehub/internal/auth"
	"gamehub/internal/db"
	"gamehub/internal/domain/storage"
	"gamehub/internal/mailer"
	"gamehub/internal/notifications"
	"gamehub/internal/ratelimiter"

	"github.com/cloudinary/cloudinary-go/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a console zap logger with colored levels.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(os.Stdout), zapcore.InfoLevel)

	return zap.New(core).Sugar(), nil
}

var version = "1.0.0"

//	@title			GameHub API
//	@description	API for GameHub: game reviews, events, posts and comments.

//	@contact.name	API Support
//	@contact.url	http://www.swagger.io/support
//	@contact.email	support@swagger.io

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@BasePath					/api
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description

func main() {
	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatalw("invalid configuration", "error", err)
	}

	// Database
	pool, err := db.New(cfg.DB.Addr, int32(cfg.DB.MaxOpenConns), cfg.DB.MaxIdleTime)
	if err != nil {
		logger.Fatal(err)
	}
	defer pool.Close()
	logger.Info("database connection pool established")

	applied, err := db.Migrate(context.Background(), pool)
	if err != nil {
		logger.Fatalw("database migration failed", "error", err)
	}
	logger.Infow("database schema up to date", "applied", applied)

	store := storage.NewContainer(pool)

	app := &application{
		config:        cfg,
		logger:        logger,
		store:         store,
		authenticator: auth.NewJWTAuthenticator(cfg.Auth.Token.Secret, cfg.Auth.Token.Iss, cfg.Auth.Token.Iss, cfg.Auth.Token.Exp),
		notifier:      notifications.NopPublisher{},
	}

	//cloudinary
	if cfg.Cloudinary.URL != "" {
		cld, err := cloudinary.NewFromURL(cfg.Cloudinary.URL)
		if err != nil {
			logger.Fatal(err)
		}
		app.avatars = newCloudinaryUploader(cld)
	} else {
		logger.Warn("CLOUDINARY_URL not set, avatar upload disabled")
	}

	// welcome mails are best effort
	if m, err := mailer.NewSMTPMailer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.FromEmail); err == nil {
		app.mailer = m
	} else {
		logger.Warnw("mailer disabled", "error", err)
	}

	// Rate limiter
	if cfg.RateLimiter.Enabled {
		rl := ratelimiter.NewFixedWindowLimiter(cfg.RateLimiter.RequestsPerTimeFrame, cfg.RateLimiter.TimeFrame)
		stop := make(chan struct{})
		defer close(stop)
		go rl.Cleanup(stop)
		app.rateLimiter = rl
	}

	// Post broadcast
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sinks []notifications.Sink
	if cfg.Push.ExpoAccessToken != "" {
		sinks = append(sinks, notifications.NewExpoBroadcaster(notifications.NewExpoAdapter(cfg.Push.ExpoAccessToken), store.PushTokens))
		app.pruneStalePushTokens(ctx, cfg.Push.PruneEvery, cfg.Push.TokenMaxAge)
	}
	if cfg.Kafka.Brokers != "" {
		kp := notifications.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.PostsTopic)
		defer kp.Close()
		sinks = append(sinks, kp)
	}
	if len(sinks) > 0 {
		dispatcher := notifications.NewDispatcher(logger, cfg.Push.QueueSize, sinks...)
		go dispatcher.Run(ctx)
		app.notifier = dispatcher
	}

	//Metrics collected http://localhost:8080/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("database", expvar.Func(func() any {
		s := pool.Stat()
		return map[string]int32{
			"max_conns":      s.MaxConns(),
			"total_conns":    s.TotalConns(),
			"idle_conns":     s.IdleConns(),
			"acquired_conns": s.AcquiredConns(),
		}
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	if err := app.run(mux); err != nil {
		logger.Errorw("server error", "error", err)
	}
}
