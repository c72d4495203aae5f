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
// Clients — /v1/clients
// ============================================================

func listClientsHandler(svc *service.ClientService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/clients")
		defer span.End()

		q := r.URL.Query()
		fe := domain.FieldErrors{}
		f := domain.ClientFilter{
			ListParams:  parseListParams(r),
			FullName:    q.Get("full_name"),
			Email:       q.Get("email"),
			BankName:    q.Get("bank_name"),
			PersonTypes: splitList(q.Get("person_type")),
			BankIDs:     splitIDList("bank", q.Get("bank"), fe),
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

func getClientHandler(svc *service.ClientService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/clients/{id}")
		defer span.End()

		id, err := idParam(r)
		if err != nil {
			writeError(w, http.StatusNotFound, "Not found.")
			return
		}
		span.SetAttributes(attribute.Int64("client.id", id))

		client, err := svc.Get(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, client)
	}
}

func createClientHandler(svc *service.ClientService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/clients")
		defer span.End()

		var in domain.ClientInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		client, err := svc.Create(ctx, &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, client)
	}
}

func updateClientHandler(svc *service.ClientService, logger *zap.Logger, partial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), r.Method+" /v1/clients/{id}")
		defer span.End()

		id, err := idParam(r)
		if err != nil {
			writeError(w, http.StatusNotFound, "Not found.")
			return
		}
		span.SetAttributes(attribute.Int64("client.id", id))

		var in domain.ClientInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		client, err := svc.Update(ctx, id, &in, partial)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, client)
	}
}

func deleteClientHandler(svc *service.ClientService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/clients/{id}")
		defer span.End()

		id, err := idParam(r)
		if err != nil {
			writeError(w, http.StatusNotFound, "Not found.")
			return
		}
		span.SetAttributes(attribute.Int64("client.id", id))

		if err := svc.Delete(ctx, id); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
