package notifier

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendTextPostsMessage(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tg := NewTelegram("token", "chat")
	tg.baseURL = srv.URL
	require.NoError(t, tg.SendText("buy filled"))
	assert.Equal(t, "chat", got["chat_id"])
	assert.Equal(t, "buy filled", got["text"])
}

func TestSendTextRequiresConfig(t *testing.T) {
	tg := NewTelegram("", "")
	assert.Error(t, tg.SendText("anything"))
}
