package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/justestif/spotify-iot-server/internal/auth"
	"github.com/justestif/spotify-iot-server/internal/led"
	"github.com/justestif/spotify-iot-server/internal/resolver"
	"github.com/justestif/spotify-iot-server/internal/spotify"
)

const stateCookieName = "oauth_state"

// ContextResolver produces the device color context.
type ContextResolver interface {
	Resolve(ctx context.Context, req resolver.Request) resolver.Context
}

// Player controls playback on the account's active device.
type Player interface {
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	TogglePlayback(ctx context.Context) (string, error)
	Volume(ctx context.Context) (int, error)
	SetVolume(ctx context.Context, percent int) (int, error)
}

// Authorizer runs the OAuth authorization code flow.
type Authorizer interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, expectedState string, r *http.Request) (*oauth2.Token, error)
}

// TokenSession receives the token obtained on callback.
type TokenSession interface {
	Install(ctx context.Context, token *oauth2.Token) error
	Authorized() bool
}

// Deps are the collaborators the handlers need. Publisher and Genres are optional.
type Deps struct {
	Resolver  ContextResolver
	Player    Player
	Auth      Authorizer
	Session   TokenSession
	Publisher led.Publisher
	Genres    interface{ Len() int }
	Logger    *slog.Logger

	// PublishTimeout bounds the LED publish on /update_context.
	// Zero means led.DefaultPublishTimeout.
	PublishTimeout time.Duration
}

// Handlers contains HTTP handlers for the device API.
type Handlers struct {
	resolver  ContextResolver
	player    Player
	auth      Authorizer
	session   TokenSession
	publisher led.Publisher
	genres    interface{ Len() int }
	logger    *slog.Logger

	publishTimeout time.Duration
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(d Deps) *Handlers {
	h := &Handlers{
		resolver:  d.Resolver,
		player:    d.Player,
		auth:      d.Auth,
		session:   d.Session,
		publisher: d.Publisher,
		genres:    d.Genres,
		logger:    d.Logger,

		publishTimeout: d.PublishTimeout,
	}
	if h.publishTimeout <= 0 {
		h.publishTimeout = led.DefaultPublishTimeout
	}
	if h.publisher == nil {
		h.publisher = led.Noop{}
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}

// Home reports that the server is up (GET /).
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Spotify IoT Server is Running!"))
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string   `json:"status"`
	Timestamp string   `json:"timestamp"`
	Services  Services `json:"services"`
}

// Services reports the state of the server's collaborators.
type Services struct {
	Spotify    string `json:"spotify"`
	MQTT       string `json:"mqtt"`
	GenreCache int    `json:"genre_cache"`
}

// Health reports process and dependency status (GET /health).
// It always answers 200 while the process is alive.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	services := Services{Spotify: "unauthorized", MQTT: "disabled"}

	if h.session != nil && h.session.Authorized() {
		services.Spotify = "authorized"
	}
	if _, disabled := h.publisher.(led.Noop); !disabled {
		services.MQTT = "disconnected"
		if h.publisher.Connected() {
			services.MQTT = "connected"
		}
	}
	if h.genres != nil {
		services.GenreCache = h.genres.Len()
	}

	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Services:  services,
	})
}

// Login redirects to the Spotify consent page (GET /login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	// Generate state for CSRF protection
	state, err := auth.GenerateState()
	if err != nil {
		http.Error(w, "Failed to generate state", http.StatusInternalServerError)
		return
	}

	// Store state in cookie for validation on callback
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300, // 5 minutes
	})

	http.Redirect(w, r, h.auth.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback handles the OAuth callback from Spotify (GET /callback).
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil {
		http.Error(w, "Missing state cookie", http.StatusBadRequest)
		return
	}

	// Clear state cookie
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	token, err := h.auth.Exchange(r.Context(), stateCookie.Value, r)
	if errors.Is(err, auth.ErrStateMismatch) {
		http.Error(w, "State mismatch", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Error("OAuth exchange failed", "error", err)
		http.Error(w, "Authentication failed", http.StatusBadRequest)
		return
	}

	if err := h.session.Install(r.Context(), token); err != nil {
		h.logger.Error("Failed to install token", "error", err)
		http.Error(w, "Failed to store token", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Spotify account authorized", "expires_at", token.Expiry)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Authentication successful. You can close this window."))
}

// UpdateContext returns the color context for the current track (GET /update_context).
// It always answers 200 so the device has something to render.
func (h *Handlers) UpdateContext(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := resolver.Request{Mode: resolver.ParseMode(q.Get("mode"))}
	if v := q.Get("temp"); v != "" {
		if temp, err := strconv.ParseFloat(v, 64); err == nil {
			req.Temp = &temp
		}
	}

	result := h.resolver.Resolve(r.Context(), req)

	frame := led.Frame{
		R:      result.R,
		G:      result.G,
		B:      result.B,
		Song:   result.Song,
		Artist: result.Artist,
		Mode:   string(req.Mode),
		Temp:   req.Temp,
	}
	pubCtx, cancel := context.WithTimeout(r.Context(), h.publishTimeout)
	defer cancel()
	if _, err := h.publisher.Publish(pubCtx, frame); err != nil {
		h.logger.Warn("Failed to publish LED frame", "error", err)
	}

	h.writeJSON(w, http.StatusOK, result)
}

type actionResponse struct {
	Status string `json:"status"`
	Action string `json:"action"`
}

type volumeResponse struct {
	Status string `json:"status"`
	Volume int    `json:"volume"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Next skips to the next track (GET /next).
func (h *Handlers) Next(w http.ResponseWriter, r *http.Request) {
	if err := h.player.Next(r.Context()); err != nil {
		h.playbackError(w, "next", err)
		return
	}
	h.writeJSON(w, http.StatusOK, actionResponse{Status: "success", Action: "next"})
}

// Previous skips to the previous track (GET /previous).
func (h *Handlers) Previous(w http.ResponseWriter, r *http.Request) {
	if err := h.player.Previous(r.Context()); err != nil {
		h.playbackError(w, "previous", err)
		return
	}
	h.writeJSON(w, http.StatusOK, actionResponse{Status: "success", Action: "previous"})
}

// PlayPause toggles playback (GET /playpause).
func (h *Handlers) PlayPause(w http.ResponseWriter, r *http.Request) {
	action, err := h.player.TogglePlayback(r.Context())
	if err != nil {
		h.playbackError(w, "playpause", err)
		return
	}
	h.writeJSON(w, http.StatusOK, actionResponse{Status: "success", Action: action})
}

// Volume sets the volume with ?set=N or adjusts it with ?delta=±N (GET /volume).
func (h *Handlers) Volume(w http.ResponseWriter, r *http.Request) {
	current, err := h.player.Volume(r.Context())
	if errors.Is(err, spotify.ErrNoActiveDevice) {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Status: "error", Message: "No active device"})
		return
	}
	if err != nil {
		h.playbackError(w, "volume", err)
		return
	}

	q := r.URL.Query()
	var target int
	if set, err := strconv.Atoi(q.Get("set")); err == nil {
		target = set
	} else if delta, err := strconv.Atoi(q.Get("delta")); err == nil {
		target = current + delta
	} else {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Status: "error", Message: "Missing parameters: use set or delta"})
		return
	}

	applied, err := h.player.SetVolume(r.Context(), target)
	if err != nil {
		h.playbackError(w, "volume", err)
		return
	}
	h.writeJSON(w, http.StatusOK, volumeResponse{Status: "success", Volume: applied})
}

// playbackError maps a playback control failure to a JSON error response.
func (h *Handlers) playbackError(w http.ResponseWriter, action string, err error) {
	h.logger.Warn("Playback control failed", "action", action, "error", err)

	if errors.Is(err, auth.ErrNotAuthorized) {
		h.writeJSON(w, http.StatusUnauthorized, errorResponse{Status: "error", Message: auth.ErrNotAuthorized.Error()})
		return
	}
	h.writeJSON(w, http.StatusBadGateway, errorResponse{Status: "error", Message: err.Error()})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}
