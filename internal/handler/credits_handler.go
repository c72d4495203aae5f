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
// Credits — /v1/credits
// ============================================================

func listCreditsHandler(svc *service.CreditService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/credits")
		defer span.End()

		q := r.URL.Query()
		fe := domain.FieldErrors{}
		f := domain.CreditFilter{
			ListParams:     parseListParams(r),
			Description:    q.Get("description"),
			BankName:       q.Get("bank_name"),
			ClientFullName: q.Get("client_full_name"),
			CreditTypes:    splitList(q.Get("credit_type")),
			BankIDs:        splitIDList("bank", q.Get("bank"), fe),
			MinPayment:     q.Get("min_payment"),
			MaxPayment:     q.Get("max_payment"),
			TermMonths:     q.Get("term_months"),
		}
		if len(fe) > 0 {
			writeJSON(w, http.StatusBadRequest, fe)
			return
		}

		page, err := svc.List(ctx, f)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func getCreditHandler(svc *service.CreditService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/credits/{id}")
		defer span.End()

		id, err := idParam(r)
		if err != nil {
			writeError(w, http.StatusNotFound, "Not found.")
			return
		}
		span.SetAttributes(attribute.Int64("credit.id", id))

		credit, err := svc.Get(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, credit)
	}
}

func createCreditHandler(svc *service.CreditService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/credits")
		defer span.End()

		var in domain.CreditInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		credit, err := svc.Create(ctx, &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, credit)
	}
}

func updateCreditHandler(svc *service.CreditService, logger *zap.Logger, partial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), r.Method+" /v1/credits/{id}")
		defer span.End()

		id, err := idParam(r)
		if err != nil {
			writeError(w, http.StatusNotFound, "Not found.")
			return
		}
		span.SetAttributes(attribute.Int64("credit.id", id))

		var in domain.CreditInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		credit, err := svc.Update(ctx, id, &in, partial)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, credit)
	}
}

func deleteCreditHandler(svc *service.CreditService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/credits/{id}")
		defer span.End()

		id, err := idParam(r)
		if err != nil {
			writeError(w, http.StatusNotFound, "Not found.")
			return
		}
		span.SetAttributes(attribute.Int64("credit.id", id))

		if err := svc.Delete(ctx, id); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
