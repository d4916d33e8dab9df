package accountsapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"accounts/cmd/account"
	"accounts/cmd/internal/telemetry"

	"github.com/julienschmidt/httprouter"
)

// Route paths.
const (
	PathRegister       = "/users"
	PathActivate       = "/users/me/activate"
	PathActivationCode = "/users/me/activation-code"
)

// Service is the account use-case surface the handlers call.
type Service interface {
	Register(ctx context.Context, email, password string) (account.Account, error)
	Activate(ctx context.Context, email, password, code string) error
	AuthorizeReissue(ctx context.Context, email, password string) error
}

// Enqueuer schedules the deferred activation mail for an email.
// It must not block; false means the task was dropped.
type Enqueuer interface {
	Enqueue(email string) bool
}

// Handler wires HTTP account endpoints to the account service.
type Handler struct {
	log     *slog.Logger
	cfg     Config
	svc     Service
	queue   Enqueuer
	metrics *telemetry.Metrics
}

// HandlerOption configures optional handler dependencies.
type HandlerOption func(*Handler)

// WithMetrics records registration and activation outcomes.
func WithMetrics(m *telemetry.Metrics) HandlerOption {
	return func(h *Handler) {
		if h == nil {
			return
		}
		h.metrics = m
	}
}

// NewHandler constructs a Handler.
func NewHandler(log *slog.Logger, svc Service, queue Enqueuer, cfg Config, opts ...HandlerOption) (*Handler, error) {
	if svc == nil {
		return nil, errors.New("accounts api: nil service")
	}
	if queue == nil {
		return nil, errors.New("accounts api: nil activation queue")
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	h := &Handler{log: log, cfg: cfg, svc: svc, queue: queue}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(h)
	}
	return h, nil
}

// Wrapper decorates a route handler; route is the registered pattern.
type Wrapper func(route string, next http.Handler) http.Handler

// Register wires account routes onto router. wrap may be nil.
func (h *Handler) Register(router *httprouter.Router, wrap Wrapper) {
	if h == nil || router == nil {
		return
	}
	if wrap == nil {
		wrap = func(_ string, next http.Handler) http.Handler { return next }
	}
	router.Handler(http.MethodPost, PathRegister, wrap(PathRegister, http.HandlerFunc(h.handleRegister)))
	router.Handler(http.MethodPost, PathActivate, wrap(PathActivate, http.HandlerFunc(h.handleActivate)))
	router.Handler(http.MethodPost, PathActivationCode, wrap(PathActivationCode, http.HandlerFunc(h.handleReissue)))
}

// ---- handlers ----

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		h.metrics.Registration("invalid")
		writeDetailList(w, http.StatusUnprocessableEntity, []string{labelInvalidBody})
		return
	}

	email := deref(req.Email)
	acct, err := h.svc.Register(r.Context(), email, deref(req.Password))
	if err != nil {
		if labels, ok := account.ValidationLabels(err); ok {
			h.metrics.Registration("invalid")
			writeDetailList(w, http.StatusUnprocessableEntity, labels)
			return
		}
		h.metrics.Registration("error")
		h.log.Error("accounts.register.fail", "err", err)
		writeDetail(w, http.StatusInternalServerError, detailInternal)
		return
	}

	h.metrics.Registration("created")
	if !h.queue.Enqueue(email) {
		h.log.Warn("accounts.register.activation_dropped", "account_id", acct.ID)
	}

	writeJSON(w, http.StatusCreated, messageResponse{Message: msgCheckEmails})
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	email, password, ok := requireBasicAuth(w, r)
	if !ok {
		h.metrics.Activation("unauthenticated")
		return
	}

	var code string
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &code); err != nil {
		h.metrics.Activation("invalid")
		writeDetailList(w, http.StatusUnprocessableEntity, []string{labelInvalidCode})
		return
	}

	err := h.svc.Activate(r.Context(), email, password, code)
	if err == nil {
		h.metrics.Activation("activated")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	result := h.writeActivationError(w, "accounts.activate.fail", err)
	h.metrics.Activation(result)
}

func (h *Handler) handleReissue(w http.ResponseWriter, r *http.Request) {
	email, password, ok := requireBasicAuth(w, r)
	if !ok {
		h.metrics.Reissue("unauthenticated")
		return
	}

	if err := h.svc.AuthorizeReissue(r.Context(), email, password); err != nil {
		h.metrics.Reissue(h.writeActivationError(w, "accounts.reissue.fail", err))
		return
	}

	if !h.queue.Enqueue(email) {
		h.metrics.Reissue("dropped")
		h.log.Warn("accounts.reissue.dropped")
		writeDetail(w, http.StatusServiceUnavailable, detailQueueFull)
		return
	}
	h.metrics.Reissue("queued")
	writeJSON(w, http.StatusAccepted, messageResponse{Message: msgCheckEmails})
}

// writeActivationError maps activation outcomes to status codes and returns
// the metric result label.
func (h *Handler) writeActivationError(w http.ResponseWriter, event string, err error) string {
	switch {
	case errors.Is(err, account.ErrInvalidCredentials):
		writeDetail(w, http.StatusUnauthorized, detailInvalidCredentials)
		return "invalid_credentials"
	case errors.Is(err, account.ErrAlreadyActivated):
		writeDetail(w, http.StatusBadRequest, detailAlreadyActivated)
		return "already_activated"
	case errors.Is(err, account.ErrCodeExpired):
		writeDetail(w, http.StatusGone, detailCodeExpired)
		return "code_expired"
	case errors.Is(err, account.ErrWrongCode):
		writeDetail(w, http.StatusForbidden, detailWrongCode)
		return "wrong_code"
	default:
		h.log.Error(event, "err", err)
		writeDetail(w, http.StatusInternalServerError, detailInternal)
		return "error"
	}
}

// requireBasicAuth extracts HTTP Basic credentials. When they are missing or
// malformed it writes 401 with a Basic challenge.
func requireBasicAuth(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	email, password, ok := r.BasicAuth()
	if !ok {
		w.Header().Set("WWW-Authenticate", "Basic")
		writeDetail(w, http.StatusUnauthorized, detailNotAuthenticated)
		return "", "", false
	}
	return email, password, true
}
