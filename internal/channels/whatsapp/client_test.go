package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/salon-bot/pkg/logging"
)

func TestClientSendText(t *testing.T) {
	var got SendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/106540352242922/messages", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messaging_product":"whatsapp","messages":[{"id":"wamid.out"}]}`))
	}))
	defer srv.Close()

	client := NewClient("token-123", "106540352242922")
	client.SetGraphAPIBase(srv.URL + "/")

	resp, err := client.SendText(context.Background(), "+5213312345678", "¡Hola!")
	require.NoError(t, err)
	assert.Equal(t, "wamid.out", resp.MessageID())

	assert.Equal(t, "whatsapp", got.MessagingProduct)
	assert.Equal(t, "5213312345678", got.To)
	assert.Equal(t, "text", got.Type)
	assert.Equal(t, "¡Hola!", got.Text.Body)
}

func TestClientTruncatesLongBodies(t *testing.T) {
	var got SendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"messages":[{"id":"x"}]}`))
	}))
	defer srv.Close()

	client := NewClient("t", "p")
	client.SetGraphAPIBase(srv.URL)
	_, err := client.SendText(context.Background(), "521", strings.Repeat("ñ", MaxBodyRunes+50))
	require.NoError(t, err)
	assert.Len(t, []rune(got.Text.Body), MaxBodyRunes)
}

func TestClientSurfacesGraphErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid parameter","type":"OAuthException","code":100}}`))
	}))
	defer srv.Close()

	client := NewClient("t", "p")
	client.SetGraphAPIBase(srv.URL)
	_, err := client.SendText(context.Background(), "521", "hola")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error 100")
}

func TestClientSurfacesUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	client := NewClient("t", "p")
	client.SetGraphAPIBase(srv.URL)
	_, err := client.SendText(context.Background(), "521", "hola")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")
}

func TestClientValidatesInput(t *testing.T) {
	_, err := NewClient("t", "p").SendText(context.Background(), " ", "hola")
	assert.Error(t, err)
	_, err = NewClient("t", "p").SendText(context.Background(), "521", "  ")
	assert.Error(t, err)
	_, err = NewClient("", "p").SendText(context.Background(), "521", "hola")
	assert.Error(t, err)
}

func TestAdapterDeliver(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	client := NewClient("t", "p")
	client.SetGraphAPIBase(srv.URL)
	adapter := NewAdapter(client, logging.Discard())

	require.NoError(t, adapter.Deliver(context.Background(), "521", "hola"))
	assert.Equal(t, 1, calls)
}
