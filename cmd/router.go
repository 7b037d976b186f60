package cmd

import (
	"context"
	"net/http"

	"travel-discovery-backend/internal/baas"
	"travel-discovery-backend/internal/config"
	"travel-discovery-backend/internal/handlers"
	"travel-discovery-backend/internal/middleware"
	"travel-discovery-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// app holds the wired services behind the router
type app struct {
	auth      *services.AuthService
	network   *services.NetworkGate
	hub       *services.WSHub
	profiles  *services.ProfileAdapter
	itinerary *services.ItineraryService
	photos    *services.PhotoService
}

func newApp(ctx context.Context, cfg *config.Config, identities services.IdentityStore, docs baas.DocumentStore) (*app, error) {
	network := services.NewNetworkGate(docs)
	a := &app{
		auth:    services.NewAuthService(network.Identities(identities), cfg.JWT.Secret, cfg.JWT.TokenTTL),
		network: network,
		hub:     services.NewWSHub(),
	}
	a.profiles = services.NewProfileAdapter(a.auth, a.network, a.hub, cfg.Profile.RevisionCheck)
	a.itinerary = services.NewItineraryService(a.profiles)

	if cfg.AWS.PhotosEnabled() {
		photos, err := services.NewPhotoService(ctx, a.profiles, services.AWSOptions{
			Region:    cfg.AWS.Region,
			Bucket:    cfg.AWS.S3Bucket,
			AccessKey: cfg.AWS.AccessKey,
			SecretKey: cfg.AWS.SecretKey,
			Endpoint:  cfg.AWS.Endpoint,
		})
		if err != nil {
			return nil, err
		}
		a.photos = photos
	} else {
		log.Warn().Msg("No S3 bucket configured; profile photo uploads are disabled")
	}
	return a, nil
}

func (a *app) router(cfg *config.Config) http.Handler {
	authHandler := handlers.NewAuthHandler(a.profiles)
	destinationHandler := handlers.NewDestinationHandler(a.profiles)
	profileHandler := handlers.NewProfileHandler(a.profiles, a.itinerary)
	itineraryHandler := handlers.NewItineraryHandler(a.itinerary)
	networkHandler := handlers.NewNetworkHandler(a.network)
	wsHandler := handlers.NewWebSocketHandler(a.hub, a.profiles, cfg.CORS.AllowedOrigins)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.ControlTokenHeader},
		MaxAge:         300,
	}))

	authLimit := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimit.AuthRequests > 0 {
		authLimit = httprate.Limit(cfg.RateLimit.AuthRequests, cfg.RateLimit.Window, httprate.WithKeyFuncs(httprate.KeyByIP))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authLimit)
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
		})

		r.Get("/destinations", destinationHandler.List)
		r.Get("/destinations/trending", destinationHandler.Trending)
		r.Get("/destinations/search", destinationHandler.Search)
		r.Get("/destinations/{id}", destinationHandler.Get)
		r.Get("/destinations/{id}/draft", destinationHandler.Draft)
		r.With(middleware.OptionalAuth(a.profiles)).Get("/recommendations", destinationHandler.Recommend)

		r.Get("/network", networkHandler.Status)
		if cfg.Network.ControlToken != "" {
			r.Group(func(r chi.Router) {
				r.Use(authLimit)
				r.Use(middleware.ControlToken(cfg.Network.ControlToken))
				r.Post("/network/online", networkHandler.Online)
				r.Post("/network/offline", networkHandler.Offline)
			})
		} else {
			log.Warn().Msg("No network control token configured; connectivity toggles are disabled")
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(a.profiles))
			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/session", authHandler.Session)

			r.Get("/profile", profileHandler.Get)
			r.Patch("/profile", profileHandler.Update)
			r.Get("/profile/stats", profileHandler.Stats)
			r.Get("/profile/saved", profileHandler.Saved)
			r.Post("/profile/saved/{destination_id}", profileHandler.ToggleSaved)
			r.Put("/profile/preferences", profileHandler.CompleteSurvey)

			r.Get("/itinerary", itineraryHandler.List)
			r.Post("/itinerary", itineraryHandler.Add)
			r.Patch("/itinerary/{item_id}", itineraryHandler.Update)
			r.Delete("/itinerary/{item_id}", itineraryHandler.Remove)

			if a.photos != nil {
				photoHandler := handlers.NewPhotoHandler(a.photos)
				r.Post("/profile/photo/upload", photoHandler.UploadPhoto)
				r.Post("/profile/photo/confirm", photoHandler.ConfirmUpload)
			}
		})
	})

	r.Get("/ws", wsHandler.HandleWebSocket)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	return r
}
