package twiliohttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_Send_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "AC123", user)
		require.Equal(t, "secret", pass)

		require.NoError(t, r.ParseForm())
		require.Equal(t, "+15551112222", r.PostForm.Get("To"))
		require.Equal(t, "Load LD-1: hi", r.PostForm.Get("Body"))
		require.Equal(t, "MG1", r.PostForm.Get("MessagingServiceSid"))
		require.Empty(t, r.PostForm.Get("From"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM42","status":"queued"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "AC123", "secret", "MG1", "+15550000000")
	res, err := c.Send(context.Background(), "+15551112222", "Load LD-1: hi")
	require.NoError(t, err)
	require.Equal(t, "SM42", res.SID)
	require.False(t, res.Skipped)
}

func TestClient_Send_FromNumber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "+15550000000", r.PostForm.Get("From"))
		require.Empty(t, r.PostForm.Get("MessagingServiceSid"))
		_, _ = w.Write([]byte(`{"sid":"SM1"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "AC123", "secret", "", "+15550000000")
	res, err := c.Send(context.Background(), "+15551112222", "x")
	require.NoError(t, err)
	require.Equal(t, "SM1", res.SID)
}

func TestClient_Send_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"Invalid 'To' Phone Number","status":400}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "AC123", "secret", "MG1", "")
	_, err := c.Send(context.Background(), "+1", "x")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Invalid 'To' Phone Number")
}

func TestClient_Send_SkippedWhenNotConfigured(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := New(srv.URL, "", "", "", "")
	require.False(t, c.Ready())
	res, err := c.Send(context.Background(), "+15551112222", "x")
	require.NoError(t, err)
	require.True(t, res.Skipped)

	c = New(srv.URL, "AC123", "secret", "MG1", "")
	res, err = c.Send(context.Background(), "", "x")
	require.NoError(t, err)
	require.True(t, res.Skipped)

	require.Zero(t, calls.Load())
}
