package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/springlegal/website/backend/internal/config"
	"github.com/springlegal/website/backend/internal/events"
	"github.com/springlegal/website/backend/internal/handler"
	"github.com/springlegal/website/backend/internal/handler/pages"
	"github.com/springlegal/website/backend/internal/middleware"
	"github.com/springlegal/website/backend/internal/model/contact"
	captchaService "github.com/springlegal/website/backend/internal/service/captcha"
	contactService "github.com/springlegal/website/backend/internal/service/contact"
	"github.com/springlegal/website/backend/internal/service/notify"
	"github.com/springlegal/website/backend/internal/session"
	"github.com/springlegal/website/backend/internal/store/postgres"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

// run builds every dependency and serves until a shutdown signal. Deferred
// closes run on every return path.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 提交记录存储
	var store contact.Store
	switch cfg.Database.Driver {
	case "memory":
		store = contact.NewMemoryStore()
		log.Println("STORE_DRIVER=memory, submissions will not survive a restart")
	default:
		pg, err := postgres.New(cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to initialize postgres store: %w", err)
		}
		defer pg.Close()
		store = pg
		log.Println("Connected to PostgreSQL database")
	}

	// 会话存储
	var sessionStore session.Store
	switch cfg.Session.Store {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Session.RedisAddr,
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis at %s: %w", cfg.Session.RedisAddr, err)
		}
		sessionStore = session.NewRedisStore(rdb)
		log.Printf("Session store: redis (%s)", cfg.Session.RedisAddr)
	default:
		mem := session.NewMemoryStore()
		go mem.Run(ctx, time.Minute)
		sessionStore = mem
		log.Println("Session store: memory")
	}
	sessions := session.NewManager(sessionStore, cfg.Session.SecretKey, session.Options{
		TTL:    cfg.Session.TTL,
		Secure: cfg.Session.SecureCookie,
	})

	// Mail transport is optional; without it notices are skipped.
	var sender notify.Sender
	if cfg.Mail.Enabled() {
		smtpSender, err := notify.NewSMTPSender(cfg.Mail)
		if err == nil {
			verifyCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err = smtpSender.Verify(verifyCtx)
			cancel()
		}
		if err != nil {
			log.Printf("warning: email transporter verification failed: %v", err)
			log.Println("continuing without email notifications")
		} else {
			sender = smtpSender
			log.Println("Email transporter verified")
		}
	} else {
		log.Println("SMTP 凭证未配置，跳过邮件通知")
	}
	dispatcher := notify.NewDispatcher(sender, notify.Addresses{
		From:     cfg.Mail.From,
		To:       cfg.Mail.To,
		SiteName: cfg.Server.SiteName,
	})

	var publisher events.Publisher = &events.NoopPublisher{}
	if cfg.Events.NATSURL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.Events.NATSURL)
		if err != nil {
			log.Printf("warning: %v", err)
			log.Println("continuing without event publishing")
		} else {
			publisher = natsPublisher
			log.Printf("Publishing submission events to %s", cfg.Events.NATSURL)
		}
	}
	defer publisher.Close()

	contactSvc := contactService.NewService(store, contactService.Options{
		Notifier:         dispatcher,
		Publisher:        publisher,
		SingleUseCaptcha: cfg.Session.CaptchaSingleUse,
	})

	pageServer, err := pages.New(os.DirFS(cfg.Server.ContentRoot), pages.DefaultTable())
	if err != nil {
		return fmt.Errorf("content root %s is incomplete: %w", cfg.Server.ContentRoot, err)
	}

	var limiter *middleware.LimiterStore
	if cfg.Server.Production() {
		limiter = middleware.NewLimiterStore(cfg.Security.RateLimitMax, cfg.Security.RateLimitWindow)
		go limiter.Run(ctx, time.Minute)
	}

	router := handler.NewRouter(handler.Dependencies{
		Contact:        contactSvc,
		Issuer:         captchaService.NewIssuer(captchaService.DefaultOptions()),
		Sessions:       sessions,
		Pages:          pageServer,
		SiteName:       cfg.Server.SiteName,
		APIVersion:     cfg.Server.APIVersion,
		AllowedOrigins: cfg.Security.AllowedOrigins,
		Production:     cfg.Server.Production(),
		TrustProxy:     cfg.Security.TrustProxy,
		Limiter:        limiter,
	})

	return startServer(ctx, cfg, dispatcher.Enabled(), router)
}

func startServer(ctx context.Context, cfg *config.Config, mailEnabled bool, router http.Handler) error {
	addr := cfg.Server.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("%s backend listening on %s (%s)", cfg.Server.SiteName, addr, cfg.Server.Env)
	log.Printf("API available at %s/api", baseURL(addr))
	log.Printf("Website available at %s", baseURL(addr))
	if mailEnabled {
		log.Printf("Email notifications will be sent to %s", cfg.Mail.To)
	} else {
		log.Println("Email notifications disabled")
	}

	if err := runServer(ctx, srv); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func baseURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
