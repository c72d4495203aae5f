package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/tucredito/tu-credito-api-go/internal/domain"
	"github.com/tucredito/tu-credito-api-go/internal/service"
)

// ============================================================
// Auth — /v1/auth
// ============================================================

func authTokenHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/token")
		defer span.End()

		var req domain.TokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		fe := domain.FieldErrors{}
		if req.Username == "" {
			fe.Add("username", "This field is required.")
		}
		if req.Password == "" {
			fe.Add("password", "This field is required.")
		}
		if len(fe) > 0 {
			writeJSON(w, http.StatusBadRequest, fe)
			return
		}

		pair, err := authSvc.IssueTokens(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, pair)
	}
}

func authRefreshHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/token/refresh")
		defer span.End()

		var req domain.RefreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Refresh == "" {
			writeJSON(w, http.StatusBadRequest, domain.FieldErrors{
				"refresh": {"This field is required."},
			})
			return
		}

		pair, err := authSvc.Refresh(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, pair)
	}
}
