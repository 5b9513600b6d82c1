package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api/v1")
	api.Use(s.middleware.RateLimit.Handler())

	api.GET("/weather", s.getWeatherByQuery)
	api.GET("/weather/:city", s.getWeather)
	api.GET("/cache", s.getCacheState)
}
