package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/contentpilot/cps/internal/model"
)

// swagger:route GET / misc getRoot
//
// Service Information
//
// Returns the name, title, and version of the service.
//
// responses:
//   200: rootResponse

// RootHandler handles GET requests to the / endpoint. It doubles as the health
// check.
func (s Server) RootHandler(ctx echo.Context) error {
	resp := model.ServiceInfo{
		Service: s.Service,
		Title:   s.Title,
		Version: s.Version,
	}
	return model.Success(ctx, resp, http.StatusOK)
}

// swagger:route GET /v1 misc getV1Root
//
// Service Information
//
// Returns the name, title, and version of the service.
//
// responses:
//   200: rootResponse

// V1RootHandler handles GET requests to the /v1 endpoint.
func (s Server) V1RootHandler(ctx echo.Context) error {
	resp := model.ServiceInfo{
		Service: s.Service,
		Title:   s.Title,
		Version: s.Version,
	}
	return model.Success(ctx, resp, http.StatusOK)
}
