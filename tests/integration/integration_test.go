package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tucredito/tu-credito-api-go/internal/domain"
	"github.com/tucredito/tu-credito-api-go/internal/handler"
	"github.com/tucredito/tu-credito-api-go/internal/infra/memory"
	"github.com/tucredito/tu-credito-api-go/internal/infra/observability"
	"github.com/tucredito/tu-credito-api-go/internal/service"
)

// recordingNotifier captures outgoing mail instead of dialing SMTP.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (n *recordingNotifier) Send(ctx context.Context, to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, body)
	return nil
}

func (n *recordingNotifier) bodies() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.sent...)
}

// TestIntegration_FullFlow drives the whole stack over real HTTP:
// login, bank and client setup, credit creation with its notification,
// filtered listing and the delete rules between the three resources.
func TestIntegration_FullFlow(t *testing.T) {
	store := memory.NewStore()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	store.SeedUser(domain.User{Username: "admin", PasswordHash: string(hash)})

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	notifier := &recordingNotifier{}
	notified := make(chan struct{}, 4)

	creditSvc := service.NewCreditService(store, store, store, notifier, metrics, logger).
		WithNotifyListener(notified)

	router := handler.NewRouter(handler.Services{
		Banks:   service.NewBankService(store, metrics, logger),
		Clients: service.NewClientService(store, store, metrics, logger),
		Credits: creditSvc,
		Auth:    service.NewAuthService(store, "integration-secret", 15*time.Minute, 24*time.Hour, logger),
	}, nil, metrics, logger, []string{"*"})

	srv := httptest.NewServer(router)
	defer srv.Close()

	client := &http.Client{Timeout: 5 * time.Second}

	call := func(method, path, token string, payload any) (*http.Response, []byte) {
		t.Helper()
		var buf bytes.Buffer
		if payload != nil {
			if err := json.NewEncoder(&buf).Encode(payload); err != nil {
				t.Fatalf("encode payload: %v", err)
			}
		}
		req, err := http.NewRequest(method, srv.URL+path, &buf)
		if err != nil {
			t.Fatalf("build request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", method, path, err)
		}
		defer resp.Body.Close()
		var body bytes.Buffer
		body.ReadFrom(resp.Body)
		return resp, body.Bytes()
	}

	// --- Login ---
	resp, body := call(http.MethodPost, "/v1/auth/token", "",
		map[string]string{"username": "admin", "password": "s3cret"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", resp.StatusCode, body)
	}
	var pair domain.TokenPair
	if err := json.Unmarshal(body, &pair); err != nil {
		t.Fatalf("decode token pair: %v", err)
	}
	token := pair.Access

	// --- Unauthenticated access is rejected ---
	resp, _ = call(http.MethodGet, "/v1/banks", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list: expected 401, got %d", resp.StatusCode)
	}

	// --- Create bank and client ---
	resp, body = call(http.MethodPost, "/v1/banks", token, map[string]any{
		"name": "Banorte", "bank_type": "PRIVATE", "address": "Av. Revolucion 3000",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create bank: expected 201, got %d: %s", resp.StatusCode, body)
	}
	var bank domain.Bank
	json.Unmarshal(body, &bank)

	resp, body = call(http.MethodPost, "/v1/clients", token, map[string]any{
		"full_name":     "Carlos Rivera",
		"date_of_birth": "1988-11-02",
		"email":         "carlos@example.com",
		"person_type":   "NATURAL",
		"bank":          bank.ID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create client: expected 201, got %d: %s", resp.StatusCode, body)
	}
	var cl domain.Client
	json.Unmarshal(body, &cl)
	if cl.BankName == nil || *cl.BankName != "Banorte" {
		t.Errorf("expected client bank_name Banorte, got %v", cl.BankName)
	}

	// --- Create credit, then its notification fires ---
	resp, body = call(http.MethodPost, "/v1/credits", token, map[string]any{
		"client":      cl.ID,
		"description": "Home improvement loan",
		"min_payment": "2500.00",
		"max_payment": "5000.00",
		"term_months": 48,
		"bank":        bank.ID,
		"credit_type": "MORTGAGE",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create credit: expected 201, got %d: %s", resp.StatusCode, body)
	}
	var credit domain.Credit
	json.Unmarshal(body, &credit)

	select {
	case <-notified:
	case <-time.After(2 * time.Second):
		t.Fatal("notification did not resolve")
	}
	bodies := notifier.bodies()
	if len(bodies) != 1 || !strings.Contains(bodies[0], "Hello Carlos Rivera,") {
		t.Errorf("unexpected notification mail: %v", bodies)
	}

	// --- A mismatching bank on the credit is rejected ---
	resp, body = call(http.MethodPost, "/v1/banks", token, map[string]any{
		"name": "Azteca", "bank_type": "PRIVATE",
	})
	var otherBank domain.Bank
	json.Unmarshal(body, &otherBank)

	resp, body = call(http.MethodPost, "/v1/credits", token, map[string]any{
		"client":      cl.ID,
		"description": "Second loan",
		"min_payment": "100.00",
		"max_payment": "200.00",
		"term_months": 12,
		"bank":        otherBank.ID,
		"credit_type": "COMMERCIAL",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("mismatched bank: expected 400, got %d: %s", resp.StatusCode, body)
	}
	var fields map[string][]string
	json.Unmarshal(body, &fields)
	if len(fields["bank"]) == 0 {
		t.Errorf("expected bank field error, got %s", body)
	}

	// --- Filtered listing ---
	resp, body = call(http.MethodGet, "/v1/credits?description=improvement", token, nil)
	var page domain.Page[domain.Credit]
	json.Unmarshal(body, &page)
	if page.Count != 1 || page.Results[0].ID != credit.ID {
		t.Errorf("filtered list: expected the one credit, got %s", body)
	}

	// --- Delete rules ---
	resp, _ = call(http.MethodDelete, fmt.Sprintf("/v1/banks/%d", bank.ID), token, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("bank with credits: expected 409, got %d", resp.StatusCode)
	}

	resp, _ = call(http.MethodDelete, fmt.Sprintf("/v1/clients/%d", cl.ID), token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete client: expected 204, got %d", resp.StatusCode)
	}
	resp, _ = call(http.MethodGet, fmt.Sprintf("/v1/credits/%d", credit.ID), token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("cascaded credit: expected 404, got %d", resp.StatusCode)
	}
	resp, _ = call(http.MethodDelete, fmt.Sprintf("/v1/banks/%d", bank.ID), token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete bank after cascade: expected 204, got %d", resp.StatusCode)
	}
}

// TestIntegration_RefreshRotation exercises the refresh endpoint over HTTP.
func TestIntegration_RefreshRotation(t *testing.T) {
	store := memory.NewStore()
	hash, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	store.SeedUser(domain.User{Username: "admin", PasswordHash: string(hash)})

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	router := handler.NewRouter(handler.Services{
		Banks:   service.NewBankService(store, metrics, logger),
		Clients: service.NewClientService(store, store, metrics, logger),
		Credits: service.NewCreditService(store, store, store, nil, metrics, logger),
		Auth:    service.NewAuthService(store, "integration-secret", 15*time.Minute, 24*time.Hour, logger),
	}, nil, metrics, logger, []string{"*"})

	srv := httptest.NewServer(router)
	defer srv.Close()

	login, _ := json.Marshal(map[string]string{"username": "admin", "password": "pw"})
	resp, err := http.Post(srv.URL+"/v1/auth/token", "application/json", bytes.NewReader(login))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	var pair domain.TokenPair
	json.NewDecoder(resp.Body).Decode(&pair)
	resp.Body.Close()

	refresh, _ := json.Marshal(map[string]string{"refresh": pair.Refresh})
	resp, err = http.Post(srv.URL+"/v1/auth/token/refresh", "application/json", bytes.NewReader(refresh))
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d", resp.StatusCode)
	}
	var rotated domain.TokenPair
	json.NewDecoder(resp.Body).Decode(&rotated)
	if rotated.Access == "" || rotated.Refresh == "" {
		t.Error("expected a rotated pair")
	}

	// The access token cannot be used for refresh.
	wrong, _ := json.Marshal(map[string]string{"refresh": pair.Access})
	resp, err = http.Post(srv.URL+"/v1/auth/token/refresh", "application/json", bytes.NewReader(wrong))
	if err != nil {
		t.Fatalf("refresh with access token: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("refresh with access token: expected 401, got %d", resp.StatusCode)
	}
}
