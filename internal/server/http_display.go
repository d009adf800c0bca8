package server

import "folio/internal/utils"

// displayServerInfo logs the effective server configuration at startup
func (s *Server) displayServerInfo() {
	s.displayAuthInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
}

func (s *Server) displayAuthInfo() {
	if n := s.keys.count(); n > 0 {
		s.Logger.Info("API authentication enabled for blog mutations and contact listing", "keys", n)
	} else {
		s.Logger.Warn("API authentication disabled: admin endpoints are publicly accessible")
	}
}

func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		s.Logger.Info("Request size limit", "limit", utils.FormatFileSize(s.MaxRequestSize))
	} else {
		s.Logger.Warn("Request size limit disabled")
	}
}

func (s *Server) displayRateLimitInfo() {
	if s.RateLimiter == nil {
		s.Logger.Warn("Rate limiting disabled for AI and contact endpoints")
		return
	}
	s.Logger.Info("Rate limiting enabled for AI and contact endpoints",
		"requests_per_min", s.RateLimit.RequestsPerMin,
		"burst", s.RateLimit.BurstCapacity,
		"by_api_key", s.RateLimit.ByAPIKey,
		"by_ip", s.RateLimit.ByIP)
}
