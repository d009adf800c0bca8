package server

import (
	"net/http"
	"strings"
)

// Handler returns the fully wrapped HTTP handler: routes, CORS and tracing
func (s *Server) Handler() http.Handler {
	mux := s.setupRoutes()
	return s.deps.Observability.HTTPMiddleware()(s.corsMiddleware(mux))
}

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	resumeLimited := s.rateLimitMiddleware(scopeResume)
	contactLimited := s.rateLimitMiddleware(scopeContact)
	sized := s.requestSizeLimitMiddleware()

	mux.HandleFunc("GET /{$}", s.rootHandler)
	mux.HandleFunc("GET /api/{$}", s.helloHandler)
	mux.HandleFunc("GET /api/health", s.healthHandler)
	mux.HandleFunc("GET /api/stats", s.statsHandler)

	mux.HandleFunc("POST /api/resume-builder/parse", resumeLimited(sized(s.parseHandler)))
	mux.HandleFunc("POST /api/resume-builder/analyze", resumeLimited(sized(s.analyzeHandler)))
	mux.HandleFunc("POST /api/resume-builder/optimize", resumeLimited(sized(s.optimizeHandler)))

	mux.HandleFunc("GET /api/blogs", s.listBlogsHandler)
	mux.HandleFunc("GET /api/blogs/{slug}", s.getBlogHandler)
	mux.HandleFunc("POST /api/blogs", s.authMiddleware(sized(s.createBlogHandler)))
	mux.HandleFunc("PUT /api/blogs/{id}", s.authMiddleware(sized(s.updateBlogHandler)))
	mux.HandleFunc("DELETE /api/blogs/{id}", s.authMiddleware(s.deleteBlogHandler))

	mux.HandleFunc("POST /api/contact", contactLimited(sized(s.submitContactHandler)))
	mux.HandleFunc("GET /api/contact", s.authMiddleware(s.listContactsHandler))

	return mux
}

// authMiddleware provides API key authentication
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Skip authentication if no API keys are configured
		if s.keys.empty() {
			next(w, r)
			return
		}

		apiKey := requestAPIKey(r)
		if apiKey == "" {
			s.Logger.Info("Authentication failed: missing API key",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r))
			writeErrorResponse(w, "Missing API key", "X-API-Key header or Authorization Bearer token required", http.StatusUnauthorized)
			return
		}

		if !s.keys.valid(apiKey) {
			s.Logger.Info("Authentication failed: invalid API key",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r),
				"api_key_prefix", maskAPIKey(apiKey))
			writeErrorResponse(w, "Invalid API key", "Unauthorized access", http.StatusUnauthorized)
			return
		}

		s.Logger.Debug("API authentication successful",
			"endpoint", r.URL.Path,
			"api_key_prefix", maskAPIKey(apiKey))

		next(w, r)
	}
}

// requestAPIKey reads X-API-Key, falling back to an Authorization Bearer token
func requestAPIKey(r *http.Request) string {
	if apiKey := r.Header.Get("X-API-Key"); apiKey != "" {
		return apiKey
	}
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return after
	}
	return ""
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if s.MaxRequestSize > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
			}
			next(w, r)
		}
	}
}

// corsMiddleware answers preflight requests and tags responses for allowed origins.
// Credentials are allowed, so a wildcard configuration echoes the request origin.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (s.corsAny || s.corsOrigins[origin]) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
				if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
					h.Set("Access-Control-Allow-Headers", reqHeaders)
				}
				h.Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusOK)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// maskAPIKey masks an API key for logging (shows only first 8 characters)
func maskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "****"
	}
	return apiKey[:8] + "****"
}
