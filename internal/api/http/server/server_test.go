package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/farmgate-identity/internal/mocks"
)

func TestHTTPServer_Address(t *testing.T) {
	s := NewHTTPServer(http.NewServeMux(), ":3000")
	assert.Equal(t, ":3000", s.Address())
	assert.Equal(t, "http", s.Name())
}

func TestHTTPServer_StartServeStop(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	srv := NewHTTPServer(mux, ":0")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	sec := mocks.NewSecurityLayer(t)
	sec.On("Listen", "tcp", ":0").Return(ln, nil)

	done := make(chan error, 1)
	go func() { done <- srv.Start(sec) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + ln.Addr().String() + "/healthz")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	require.NoError(t, srv.Stop(context.Background()))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestHTTPServer_StartListenError(t *testing.T) {
	srv := NewHTTPServer(http.NewServeMux(), ":0")
	sec := mocks.NewSecurityLayer(t)
	sec.On("Listen", "tcp", ":0").Return(nil, assert.AnError)

	err := srv.Start(sec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}
