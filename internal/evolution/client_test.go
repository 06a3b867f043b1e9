package evolution

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fisiogestor/whatsapp-confirm/pkg/logging"
)

func TestSendText(t *testing.T) {
	var gotPath, gotAPIKey string
	var gotBody sendTextRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("apikey")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"key":{"id":"BAE5F4C2"},"status":"PENDING"}`))
	}))
	defer srv.Close()

	client, err := New(Config{BaseURL: srv.URL, Logger: logging.Default()})
	require.NoError(t, err)

	msgID, err := client.SendText(context.Background(), "clinica-centro", "secret", "5566999516222", "Sua sessão foi confirmada.")
	require.NoError(t, err)
	assert.Equal(t, "BAE5F4C2", msgID)
	assert.Equal(t, "/message/sendText/clinica-centro", gotPath)
	assert.Equal(t, "secret", gotAPIKey)
	assert.Equal(t, "5566999516222", gotBody.Number)
}

func TestSendTextGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"instance not connected"}`, http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.SendText(context.Background(), "clinica-centro", "secret", "5566999516222", "oi")
	assert.Error(t, err)
}

func TestSendTextValidation(t *testing.T) {
	client, err := New(Config{BaseURL: "http://gateway.local", Timeout: time.Second})
	require.NoError(t, err)

	_, err = client.SendText(context.Background(), "", "key", "5566999516222", "oi")
	assert.Error(t, err)
	_, err = client.SendText(context.Background(), "inst", "key", "", "oi")
	assert.Error(t, err)
	_, err = client.SendText(context.Background(), "inst", "key", "5566999516222", "  ")
	assert.Error(t, err)
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestTemplates(t *testing.T) {
	startsAt := time.Date(2026, 9, 2, 14, 30, 0, 0, time.UTC)

	req := ConfirmationRequest("Maria Souza", startsAt)
	assert.Contains(t, req, "Maria")
	assert.Contains(t, req, "02/09/2026")
	assert.Contains(t, req, "14:30")

	assert.Contains(t, PatientFeedback(true, startsAt), "confirmada")
	assert.Contains(t, PatientFeedback(false, startsAt), "cancelada")

	notice := ProfessionalNotice("Maria Souza", false, startsAt)
	assert.Contains(t, notice, "CANCELOU")
	assert.Contains(t, notice, "Maria Souza")
}
