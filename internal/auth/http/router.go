package http

import (
	"net/http"
	"time"

	"github.com/AlibekovAA/inference-auth/internal/auth/service"
	authdto "github.com/AlibekovAA/inference-auth/internal/auth/service/dto"
	"github.com/AlibekovAA/inference-auth/internal/common/constants"
	commonhttp "github.com/AlibekovAA/inference-auth/internal/common/http"
	"github.com/AlibekovAA/inference-auth/internal/common/jwtverify"
	"github.com/AlibekovAA/inference-auth/internal/common/logger"
)

const (
	pathRegister = "/api/auth/register"
	pathLogin    = "/api/auth/login"
	pathMe       = "/api/auth/me"
	pathLogout   = "/api/auth/logout"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password"`
	Name     string `json:"name" validate:"max=128"`
}

// loginRequest carries no validation tags: any malformed credential is
// answered as invalid credentials by the service.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresAt   time.Time       `json:"expires_at"`
	User        authdto.Account `json:"user"`
}

type meResponse struct {
	Sub    string `json:"sub"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Exp    int64  `json:"exp"`
}

type Options struct {
	RequestTimeout time.Duration
	RateLimiter    *commonhttp.StrictRateLimiter
	Store          commonhttp.Pinger
}

type Handler struct {
	auth *service.AuthService
	log  *logger.Logger
}

func NewHandler(auth *service.AuthService, opts Options, log *logger.Logger) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = constants.DefaultAuthRequestTimeout
	}

	h := &Handler{auth: auth, log: log}
	withTimeout := commonhttp.WithTimeout(opts.RequestTimeout)
	requireAuth := jwtverify.Middleware(auth, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", commonhttp.HealthHandler(log, opts.Store))

	routes := []struct {
		path    string
		method  string
		handler http.Handler
	}{
		{pathRegister, http.MethodPost, withTimeout(h.register)},
		{pathLogin, http.MethodPost, withTimeout(h.login)},
		{pathMe, http.MethodGet, requireAuth(http.HandlerFunc(h.me))},
		{pathLogout, http.MethodPost, requireAuth(withTimeout(h.logout))},
	}

	for _, rt := range routes {
		handler := rt.handler
		if opts.RateLimiter != nil {
			handler = opts.RateLimiter.MiddlewareForPath(rt.path)(handler)
		}
		mux.Handle(rt.path, commonhttp.RequireMethod(rt.method)(handler.ServeHTTP))
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		commonhttp.WriteErrorEnvelope(w, http.StatusNotFound, commonhttp.CodeNotFound, "not found", nil, commonhttp.TraceIDFromContext(r.Context()))
	})

	return mux
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := commonhttp.DecodeAndValidate(r, &req); err != nil {
		h.log.WithFields(r.Context(), logger.Fields{"action": "register_bad_request"}).Debugf("register rejected: %v", err)
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	result, err := h.auth.Register(r.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.Name,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, toTokenResponse(result))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := commonhttp.DecodeAndValidate(r, &req); err != nil {
		h.log.WithFields(r.Context(), logger.Fields{"action": "login_bad_request"}).Debugf("login rejected: %v", err)
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	result, err := h.auth.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toTokenResponse(result))
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.HandleError(w, r, service.ErrUnauthenticated, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, meResponse{
		Sub:    claims.Email,
		UserID: claims.AccountID,
		Name:   claims.DisplayName,
		Exp:    claims.ExpiresAt.Unix(),
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.HandleError(w, r, service.ErrUnauthenticated, h.log)
		return
	}

	if err := h.auth.Logout(r.Context(), claims); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, commonhttp.MessageResponse{Message: "Successfully logged out"})
}

func toTokenResponse(result service.AuthResult) tokenResponse {
	return tokenResponse{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
		ExpiresAt:   result.ExpiresAt,
		User:        result.Account,
	}
}
