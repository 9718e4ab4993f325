package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/monterra-as/installer-api/internal/config"
	"go.uber.org/zap"
)

// CORS builds the cross-origin policy from config. An explicit origin list
// wins; a "*" entry or an empty list in development opens up to any origin;
// an empty list anywhere else denies cross-origin requests outright.
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	isDev := environment == "development" || environment == "local" || environment == ""

	allowAny := func(r *http.Request, origin string) bool { return origin != "" }
	denyAll := func(r *http.Request, origin string) bool { return false }

	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	switch {
	case hasWildcard(cfg.AllowedOrigins):
		if !isDev {
			logger.Warn("CORS wildcard origin outside development",
				zap.String("environment", environment))
		}
		options.AllowOriginFunc = allowAny

	case len(cfg.AllowedOrigins) > 0:
		options.AllowedOrigins = cfg.AllowedOrigins
		logger.Info("CORS origins configured",
			zap.Strings("origins", cfg.AllowedOrigins))

	case isDev:
		options.AllowOriginFunc = allowAny
		logger.Info("CORS open to all origins in development")

	default:
		// An empty AllowedOrigins list would default to "*" in the cors
		// package, deny explicitly instead.
		options.AllowOriginFunc = denyAll
		logger.Warn("CORS has no allowed origins, cross-origin requests will be denied",
			zap.String("environment", environment))
	}

	return cors.Handler(options)
}

func hasWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
