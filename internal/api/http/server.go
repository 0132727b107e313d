package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appAuth "github.com/barterhub/barterhub/internal/application/auth"
	appItem "github.com/barterhub/barterhub/internal/application/item"
	appLocation "github.com/barterhub/barterhub/internal/application/location"
	appTrade "github.com/barterhub/barterhub/internal/application/trade"
	appUser "github.com/barterhub/barterhub/internal/application/user"
	"github.com/barterhub/barterhub/internal/domain/apperr"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	tradeSvc            *appTrade.Service
	authSvc             *appAuth.Service
	userSvc             *appUser.Service
	itemSvc             *appItem.Service
	locationSvc         *appLocation.Service
	sessionCookieName   string
	sessionCookieSecure bool
}

func NewServer(
	tradeSvc *appTrade.Service,
	authSvc *appAuth.Service,
	userSvc *appUser.Service,
	itemSvc *appItem.Service,
	locationSvc *appLocation.Service,
	sessionCookieName string,
	sessionCookieSecure bool,
) *Server {
	return &Server{
		tradeSvc:            tradeSvc,
		authSvc:             authSvc,
		userSvc:             userSvc,
		itemSvc:             itemSvc,
		locationSvc:         locationSvc,
		sessionCookieName:   sessionCookieName,
		sessionCookieSecure: sessionCookieSecure,
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.register)
			r.Post("/login", s.login)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/logout", s.logout)
				r.Get("/me", s.me)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/trade/statuses", s.listStatuses)

			r.Route("/offers", func(r chi.Router) {
				r.Post("/", s.createOffer)
				r.Get("/", s.listOffers)
				r.Get("/{offerId}", s.getOffer)
				r.Get("/{offerId}/history", s.offerHistory)
				r.Get("/{offerId}/counters", s.offerCounters)
				r.Post("/{offerId}/accept", s.acceptOffer)
				r.Post("/{offerId}/reject", s.rejectOffer)
				r.Post("/{offerId}/cancel", s.cancelOffer)
				r.Post("/{offerId}/complete", s.completeOffer)
			})

			r.Route("/items", func(r chi.Router) {
				r.Post("/", s.createItem)
				r.Get("/", s.listItems)
				r.Get("/{itemId}", s.getItem)
				r.Delete("/{itemId}", s.deleteItem)
			})

			r.Route("/locations", func(r chi.Router) {
				r.Post("/", s.createLocation)
				r.Get("/", s.listLocations)
			})
		})
	})

	return r
}

// Helpers
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

// respondDomainError maps a classified application error to its HTTP
// status, carrying field-level messages for validation failures.
func respondDomainError(w http.ResponseWriter, err error) {
	ae, ok := apperr.As(err)
	if !ok {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
		return
	}
	status := http.StatusInternalServerError
	switch ae.Kind {
	case apperr.KindValidation, apperr.KindInvalidState:
		status = http.StatusBadRequest
	case apperr.KindPermission:
		status = http.StatusForbidden
	case apperr.KindNotFound:
		status = http.StatusNotFound
	}
	body := map[string]interface{}{
		"error":   ae.Kind.Code(),
		"message": ae.Message,
	}
	if len(ae.Fields) > 0 {
		body["fields"] = ae.Fields
	}
	respondJSON(w, status, body)
}

func parseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	val := chi.URLParam(r, key)
	return uuid.Parse(val)
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
