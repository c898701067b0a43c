// Package httpapi serves the HTTP side of the backend: health checks and
// the browser leg of OAuth sign-in, which ends with a redirect carrying the
// session tokens in the URL fragment.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/orbit/internal/logging"
	"github.com/dmitrijs2005/orbit/internal/server/auth"
	"github.com/dmitrijs2005/orbit/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	CallbackPath      = "/auth/v1/callback"
	DefaultRedirectTo = "orbit://auth/callback"
)

type signInService interface {
	SignInWithProvider(ctx context.Context, id services.ProviderIdentity) (*services.AuthResult, error)
}

type Handler struct {
	providers map[string]Provider
	users     signInService
	publicURL *url.URL
	jwtSecret []byte
	logger    logging.Logger
}

func NewHandler(providers map[string]Provider, users signInService, publicBaseURL, secretKey string, logger logging.Logger) (*Handler, error) {
	u, err := url.Parse(publicBaseURL)
	if err != nil {
		return nil, err
	}
	return &Handler{
		providers: providers,
		users:     users,
		publicURL: u,
		jwtSecret: []byte(secretKey),
		logger:    logger.With("module", "http_api"),
	}, nil
}

// Router mounts the routes:
//
//	GET /healthz
//	GET /auth/v1/authorize?provider=..&redirect_to=..
//	GET /auth/v1/callback?code=..&state=..
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogging)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)
	r.Route("/auth/v1", func(r chi.Router) {
		r.Get("/authorize", h.Authorize)
		r.Get("/callback", h.Callback)
	})

	return r
}

func (h *Handler) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Info(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
}

func (h *Handler) Authorize(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(r.URL.Query().Get("provider"))
	p, ok := h.providers[name]
	if !ok {
		http.Error(w, "Unsupported provider", http.StatusBadRequest)
		return
	}

	redirectTo := r.URL.Query().Get("redirect_to")
	if redirectTo == "" {
		redirectTo = DefaultRedirectTo
	}
	if !h.allowedRedirect(redirectTo) {
		http.Error(w, "redirect_to is not allowed", http.StatusBadRequest)
		return
	}

	state, err := auth.SignState(name, redirectTo, h.jwtSecret)
	if err != nil {
		h.logger.Error(r.Context(), "sign state", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, p.AuthCodeURL(state), http.StatusFound)
}

func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	st, err := auth.ParseState(q.Get("state"), h.jwtSecret)
	if err != nil {
		http.Error(w, "Invalid state parameter.", http.StatusBadRequest)
		return
	}
	p, ok := h.providers[st.Provider]
	if !ok {
		http.Error(w, "Unsupported provider", http.StatusBadRequest)
		return
	}

	if e := q.Get("error"); e != "" {
		h.fail(w, r, st.RedirectTo, e, q.Get("error_description"))
		return
	}

	id, err := p.Identify(r.Context(), q.Get("code"))
	if err != nil {
		h.logger.Warn(r.Context(), "provider sign-in failed", "provider", st.Provider, "error", err)
		h.fail(w, r, st.RedirectTo, "server_error", "Unable to exchange external code")
		return
	}

	res, err := h.users.SignInWithProvider(r.Context(), *id)
	if err != nil {
		var se *services.Error
		if errors.As(err, &se) {
			h.fail(w, r, st.RedirectTo, "access_denied", se.Msg)
			return
		}
		h.logger.Error(r.Context(), "sign in with provider", "provider", st.Provider, "error", err)
		h.fail(w, r, st.RedirectTo, "server_error", "Database error saving new user")
		return
	}

	frag := url.Values{}
	frag.Set("access_token", res.AccessToken)
	frag.Set("refresh_token", res.RefreshToken)
	frag.Set("expires_in", strconv.Itoa(int(time.Until(res.ExpiresAt).Seconds())))
	frag.Set("token_type", "bearer")
	redirectWithFragment(w, r, st.RedirectTo, frag)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, redirectTo, code, description string) {
	frag := url.Values{}
	frag.Set("error", code)
	frag.Set("error_description", description)
	redirectWithFragment(w, r, redirectTo, frag)
}

func redirectWithFragment(w http.ResponseWriter, r *http.Request, target string, frag url.Values) {
	u, err := url.Parse(target)
	if err != nil {
		http.Error(w, "bad redirect target", http.StatusBadRequest)
		return
	}
	u.Fragment = ""
	u.RawFragment = ""
	http.Redirect(w, r, u.String()+"#"+frag.Encode(), http.StatusFound)
}

// allowedRedirect accepts app deep links and pages of this server. Other
// web origins would receive the tokens, so they are refused.
func (h *Handler) allowedRedirect(target string) bool {
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return strings.EqualFold(u.Host, h.publicURL.Host)
	case "javascript", "data", "file":
		return false
	default:
		return true
	}
}
