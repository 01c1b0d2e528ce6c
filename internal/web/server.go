package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/danielsht/flightclaims/internal/flight"
	"github.com/danielsht/flightclaims/internal/provider"
	"github.com/danielsht/flightclaims/internal/service"
)

// Server exposes the resolve call to the web layer over HTTP.
type Server struct {
	svc    *service.FlightData
	chain  *provider.Chain
	router *gin.Engine
}

// NewServer wires the API routes.
func NewServer(svc *service.FlightData, chain *provider.Chain) *Server {
	router := gin.Default()

	s := &Server{svc: svc, chain: chain, router: router}

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api/v1")
	{
		api.GET("/flights/:number/:date", s.handleResolve)
		api.GET("/providers/status", s.handleProviderStatus)
	}

	return s
}

// Run starts the HTTP server.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleResolve(c *gin.Context) {
	number := c.Param("number")
	date := c.Param("date")

	if _, err := flight.ParseDate(date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	res, err := s.svc.Resolve(c.Request.Context(), number, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if res == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "flight not found"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleProviderStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.chain.Statuses())
}
