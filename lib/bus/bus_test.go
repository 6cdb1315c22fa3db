package bus

import (
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInProcessPublishSubscribe(t *testing.T) {
	s, err := Start(Options{InProcess: true})
	require.NoError(t, err)

	nc, err := s.ConnectInProcess()
	require.NoError(t, err)

	got := make(chan string, 1)
	_, err = nc.Subscribe("casos.test", func(m *nats.Msg) {
		got <- string(m.Data)
	})
	require.NoError(t, err)
	require.NoError(t, nc.Publish("casos.test", []byte("hola")))

	select {
	case msg := <-got:
		assert.Equal(t, "hola", msg)
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}
	assert.NoError(t, Shutdown(nc, s))
}

func TestListeningServer(t *testing.T) {
	s, err := Start(Options{Host: "127.0.0.1", Port: -1})
	require.NoError(t, err)

	nc, err := Connect(s.ClientURL())
	require.NoError(t, err)
	assert.True(t, nc.IsConnected())
	assert.NoError(t, Shutdown(nc, s))
}

func TestConnectRequiresURL(t *testing.T) {
	_, err := Connect("")
	assert.Error(t, err)
}

func TestShutdownNil(t *testing.T) {
	assert.NoError(t, Shutdown(nil, nil))
}
