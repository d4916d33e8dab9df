// Package app wires the accounts server runtime: config, logging, storage,
// activation mail delivery, and HTTP routes.
package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"accounts/cmd/account"
	accountsapi "accounts/cmd/internal/accounts/api"
	"accounts/cmd/internal/activation"
	"accounts/cmd/internal/mail"
	"accounts/cmd/internal/telemetry"
	"accounts/cmd/security/credential"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App is the accounts server runtime: it owns the HTTP server, the activation
// dispatcher and the store lifecycle.
type App struct {
	cfg Config
	log Logger

	store      storeHandle
	dispatcher *activation.Dispatcher
	handler    http.Handler
}

// New constructs a fully wired App instance from config and logger.
func New(ctx context.Context, cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := telemetry.NewMetrics(reg)
	if err != nil {
		return nil, err
	}

	codec, err := newCodec(cfg)
	if err != nil {
		return nil, err
	}

	transport, err := newMailTransport(cfg, log)
	if err != nil {
		return nil, err
	}

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	svc, err := account.NewService(st.store, codec, account.WithLogger(log))
	if err != nil {
		_ = st.Close(context.Background())
		return nil, err
	}

	dispatcher, err := activation.NewDispatcher(log, svc, transport, activation.Config{
		QueueSize:   cfg.MailQueueSize,
		Workers:     cfg.MailWorkers,
		TaskTimeout: cfg.MailTimeout,
	}, activation.WithMetrics(metrics))
	if err != nil {
		_ = st.Close(context.Background())
		return nil, err
	}

	accounts, err := accountsapi.NewHandler(log, svc, dispatcher, accountsapi.Config{MaxBodyBytes: cfg.MaxBodyBytes}, accountsapi.WithMetrics(metrics))
	if err != nil {
		_ = st.Close(context.Background())
		return nil, err
	}

	router := newRouter(log, readiness{
		requireDB: cfg.ReadinessRequireDB,
		dbEnabled: st.kind != storeMemory,
		ping:      st.ping,
	}, reg, metrics, accounts)

	return &App{
		cfg:        cfg,
		log:        log,
		store:      st,
		dispatcher: dispatcher,
		handler:    WithRequestLogging(WithSecurityHeaders(router), log),
	}, nil
}

// Handler returns the fully wrapped HTTP handler.
func (a *App) Handler() http.Handler { return a.handler }

// Run starts the workers and the HTTP server and blocks until context
// cancellation or fatal server error. Shutdown order: HTTP, mail queue, store.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.dispatcher.Start()
	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "store", a.store.kind)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case runErr = <-errCh:
		a.log.Error("server.fail", "err", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), nonZeroDuration(a.cfg.ShutdownTimeout, 10*time.Second))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		runErr = errors.Join(runErr, err)
	}

	if err := a.dispatcher.Close(shutdownCtx); err != nil {
		a.log.Error("activation.dispatcher.close.fail", "err", err)
	}

	if err := a.store.Close(shutdownCtx); err != nil {
		a.log.Error("store.close.fail", "err", err)
	}

	a.log.Info("server.stopped")
	return runErr
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func newCodec(cfg Config) (credential.Codec, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.CredentialCodec))
	if name != credential.CodecArgon2id {
		return credential.New(name, credential.Argon2idParams{})
	}
	params, err := credential.Argon2idParamsFromEnv()
	if err != nil {
		return nil, err
	}
	return credential.New(name, params)
}

func newMailTransport(cfg Config, log Logger) (mail.Transport, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.MailTransport)) {
	case MailTransportSMTP:
		log.Info("mail.transport.smtp", "addr", cfg.SMTPAddr)
		t, err := mail.NewSMTPTransport(mail.SMTPConfig{
			Addr:     cfg.SMTPAddr,
			From:     cfg.SMTPFrom,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			Timeout:  cfg.MailTimeout,
		})
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return mail.NewLogTransport(os.Stdout, log), nil
	}
}
