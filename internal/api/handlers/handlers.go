// Package handlers wires the HTTP surface to the service layer. Each handler
// method returns an http.HandlerFunc closure so routes read declaratively in
// main.
package handlers

import (
	"net/http"

	"github.com/farma-ya/pharmacy-platform/internal/api/middleware"
	"github.com/farma-ya/pharmacy-platform/internal/errors"
	"github.com/farma-ya/pharmacy-platform/internal/models"
	"github.com/farma-ya/pharmacy-platform/internal/utils/response"
)

// requireClaims pulls the authenticated claims or writes a 401.
func requireClaims(w http.ResponseWriter, r *http.Request) (*models.Claims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		middleware.LoggerFromContext(r.Context()).Warn("Unauthenticated request reached protected handler")
		response.Error(w, errors.UnauthorizedError("Authentication required"))
		return nil, false
	}

	return claims, true
}

// requireRole layers a role check on top of requireClaims.
func requireRole(w http.ResponseWriter, r *http.Request, role models.Role) (*models.Claims, bool) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return nil, false
	}

	if claims.Role != role {
		middleware.LoggerFromContext(r.Context()).Warn("Role check failed")
		response.Error(w, errors.ForbiddenError("Insufficient permissions"))
		return nil, false
	}

	return claims, true
}
