package middleware

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/edumitra/edumitra-backend/internal/response"
	"github.com/edumitra/edumitra-backend/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	// ContextKeyInstitute is the Gin context key for the resolved tenant.
	ContextKeyInstitute = "institute"

	// HeaderInstitute overrides subdomain resolution. Needed for local
	// development and native clients that talk to the apex domain.
	HeaderInstitute = "X-Institute"
)

// ResolveInstitute maps the request's subdomain to an institute and aborts
// requests for unknown or deactivated tenants. Every API route runs behind
// this; handlers can assume GetInstitute never returns nil.
func ResolveInstitute(instituteService *service.InstituteService, baseDomain string) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := instituteCode(c, baseDomain)
		if code == "" {
			response.AbortFail(c, http.StatusNotFound, response.ErrUnknownInstitute)
			return
		}

		inst, err := instituteService.ResolveCode(c.Request.Context(), code)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrUnknownInstitute):
				response.AbortFail(c, http.StatusNotFound, response.ErrUnknownInstitute)
			case errors.Is(err, service.ErrInstituteInactive):
				response.AbortFail(c, http.StatusForbidden, response.ErrInstituteInactive)
			default:
				response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
			}
			return
		}

		c.Set(ContextKeyInstitute, inst)
		c.Next()
	}
}

// GetInstitute retrieves the resolved tenant from the Gin context.
func GetInstitute(c *gin.Context) *model.Institute {
	val, exists := c.Get(ContextKeyInstitute)
	if !exists {
		return nil
	}
	inst, ok := val.(*model.Institute)
	if !ok {
		return nil
	}
	return inst
}

func instituteCode(c *gin.Context, baseDomain string) string {
	if header := strings.TrimSpace(c.GetHeader(HeaderInstitute)); header != "" {
		return strings.ToLower(header)
	}

	host := c.Request.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(host)

	suffix := "." + strings.ToLower(baseDomain)
	if !strings.HasSuffix(host, suffix) {
		return ""
	}
	sub := strings.TrimSuffix(host, suffix)
	// Nested subdomains (a.b.example.com) don't map to a tenant.
	if sub == "" || strings.Contains(sub, ".") {
		return ""
	}
	return sub
}
