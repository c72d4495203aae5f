package handler

import (
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/tucredito/tu-credito-api-go/internal/domain"
	"github.com/tucredito/tu-credito-api-go/internal/service"
)

// ============================================================
// Banks — /v1/banks
// ============================================================

func listBanksHandler(svc *service.BankService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/banks")
		defer span.End()

		q := r.URL.Query()
		f := domain.BankFilter{
			ListParams: parseListParams(r),
			Name:       q.Get("name"),
			Address:    q.Get("address"),
			BankTypes:  splitList(q.Get("bank_type")),
		}

		page, err := svc.List(ctx, f)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func getBankHandler(svc *service.BankService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/banks/{id}")
		defer span.End()

		id, err := idParam(r)
		if err != nil {
			writeError(w, http.StatusNotFound, "Not found.")
			return
		}
		span.SetAttributes(attribute.Int64("bank.id", id))

		bank, err := svc.Get(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, bank)
	}
}

func createBankHandler(svc *service.BankService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/banks")
		defer span.End()

		var in domain.BankInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		bank, err := svc.Create(ctx, &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, bank)
	}
}

func updateBankHandler(svc *service.BankService, logger *zap.Logger, partial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), r.Method+" /v1/banks/{id}")
		defer span.End()

		id, err := idParam(r)
		if err != nil {
			writeError(w, http.StatusNotFound, "Not found.")
			return
		}
		span.SetAttributes(attribute.Int64("bank.id", id))

		var in domain.BankInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		bank, err := svc.Update(ctx, id, &in, partial)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, bank)
	}
}

func deleteBankHandler(svc *service.BankService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/banks/{id}")
		defer span.End()

		id, err := idParam(r)
		if err != nil {
			writeError(w, http.StatusNotFound, "Not found.")
			return
		}
		span.SetAttributes(attribute.Int64("bank.id", id))

		if err := svc.Delete(ctx, id); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
