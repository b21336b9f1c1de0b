package http

import (
	"github.com/gin-gonic/gin"
)

const defaultAddress = ":8080"

// Server owns the configured gin engine. The app layer builds one and
// hands its lifetime to Run.
type Server struct {
	Engine *gin.Engine
}

func NewServer(cfg RouterConfig) *Server {
	return &Server{Engine: NewRouter(cfg)}
}

// Run blocks serving requests. An empty address falls back to
// defaultAddress.
func (s *Server) Run(address string) error {
	if address == "" || address == ":" {
		address = defaultAddress
	}
	return s.Engine.Run(address)
}
