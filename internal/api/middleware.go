package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
)

type contextKey string

const contextKeyTenant = contextKey("tenant")

var errCantRetrieveTenant = errors.New("can't retrieve tenant id")

// tenantCtx resolves the calling tenant from the X-Tenant-ID header. Tenant
// authentication itself lives in the gateway in front of this service.
func (a *Api) tenantCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("X-Tenant-ID")
		if header == "" {
			a.badRequestResponse(w, r, errors.New("X-Tenant-ID header must be provided"))
			return
		}

		tenantID, err := strconv.ParseInt(header, 10, 64)
		if err != nil {
			a.badRequestResponse(w, r, errors.New("X-Tenant-ID header must be an integer"))
			return
		}

		tenantContext := context.WithValue(r.Context(), contextKeyTenant, tenantID)
		next.ServeHTTP(w, r.WithContext(tenantContext))
	})
}

func (a *Api) tenantFromContext(r *http.Request) (int64, error) {
	tenantID, ok := r.Context().Value(contextKeyTenant).(int64)
	if !ok {
		return 0, errCantRetrieveTenant
	}
	return tenantID, nil
}
