package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayload(t *testing.T) {
	now := time.Date(2025, 7, 21, 2, 0, 0, 0, time.Local)
	p := NewPayload("MyProject", "myproject_20250721_020000.zip", now)

	assert.Equal(t, "MyProject", p.Project)
	assert.Equal(t, "2025-07-21 02:00:00", p.Date)
	assert.Equal(t, StatusBackupSuccessful, p.Status)
	assert.Equal(t, "myproject_20250721_020000.zip", p.Filename)
}

func TestWebhookOptions(t *testing.T) {
	tests := []struct {
		name       string
		opt        Option
		wantErr    bool
		assertFunc func(w *Webhook) bool
	}{
		{"valid http client", WithHTTPClient(http.DefaultClient), false, func(w *Webhook) bool { return w.client == http.DefaultClient }},
		{"nil http client", WithHTTPClient(nil), true, nil},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			w, err := NewWebhook("http://127.0.0.1/notify", tc.opt)
			requireFunc := require.NoError
			if tc.wantErr {
				requireFunc = require.Error
			}
			requireFunc(t, err)
			if tc.assertFunc != nil {
				assert.True(t, tc.assertFunc(w))
			}
		})
	}
}

func TestWebhookSend(t *testing.T) {
	var got Payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer server.Close()

	w, err := NewWebhook(server.URL)
	require.NoError(t, err)

	p := NewPayload("myproject", "myproject_20250721_020000.zip", time.Date(2025, 7, 21, 2, 0, 0, 0, time.Local))
	require.NoError(t, w.Send(context.Background(), p))
	assert.Equal(t, p, got)
}

func TestWebhookSendNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	w, err := NewWebhook(server.URL)
	require.NoError(t, err)

	err = w.Send(context.Background(), Payload{})
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
}

func TestWebhookSendTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	w, err := NewWebhook(server.URL)
	require.NoError(t, err)

	err = w.Send(context.Background(), Payload{})
	require.Error(t, err)
	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr))
}
