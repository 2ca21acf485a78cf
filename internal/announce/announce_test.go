package announce

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/extbind/internal/bootstrap"
	"github.com/vk/extbind/modules/hello"
	sio "github.com/zishang520/socket.io/v2/socket"
)

func newHandle(t *testing.T) *bootstrap.Handle {
	t.Helper()
	h, err := bootstrap.New(&hello.Module{}).Initialize(context.Background())
	require.NoError(t, err)
	return h
}

func TestNewPayload(t *testing.T) {
	got := NewPayload(newHandle(t).Exports())

	want := Payload{Exports: []ExportInfo{
		{Path: "Servactory", Kind: "namespace"},
		{Path: "Servactory::HelloRust", Kind: "namespace"},
		{Path: "Servactory::HelloRust::VERSION", Kind: "constant"},
		{Path: "Servactory::HelloRust::hello", Kind: "function", Arity: 1},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}

	wire := got.toWire()
	exports, ok := wire["exports"].([]any)
	require.True(t, ok)
	require.Len(t, exports, 4)
	assert.Equal(t, map[string]any{
		"path":  "Servactory::HelloRust::hello",
		"kind":  "function",
		"arity": 1,
	}, exports[3])
}

func TestNewPayload_Empty(t *testing.T) {
	p := NewPayload(nil)
	require.NotNil(t, p.Exports)
	assert.Empty(t, p.Exports)
}

func TestAnnounce_ConfigErrors(t *testing.T) {
	h := newHandle(t)

	err := Announce(context.Background(), Config{}, h)
	require.ErrorIs(t, err, ErrNoURL)

	err = Announce(context.Background(), Config{URL: "not a url"}, h)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse URL")
}

func TestAnnounce_UnreachableEndpoint(t *testing.T) {
	h := newHandle(t)

	start := time.Now()
	err := Announce(context.Background(), Config{
		URL:     "http://127.0.0.1:1/socket.io/",
		Timeout: 2 * time.Second,
	}, h)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)
}

// newEndpoint starts a socket.io server that records the first
// "extension:loaded" event and, when ack is set, replies with
// "extension:ack".
func newEndpoint(t *testing.T, ack bool) (string, <-chan []any) {
	t.Helper()

	received := make(chan []any, 1)
	io := sio.NewServer(nil, nil)
	io.On("connection", func(clients ...any) {
		client := clients[0].(*sio.Socket)
		client.On("extension:loaded", func(args ...any) {
			select {
			case received <- args:
			default:
			}
			if ack {
				client.Emit("extension:ack", "ok")
			}
		})
	})

	srv := httptest.NewServer(io.ServeHandler(nil))
	t.Cleanup(srv.Close)
	return srv.URL + "/socket.io/", received
}

func TestAnnounce_DeliversPayload(t *testing.T) {
	url, received := newEndpoint(t, false)

	err := Announce(context.Background(), Config{URL: url, Timeout: 5 * time.Second}, newHandle(t))
	require.NoError(t, err)

	var args []any
	select {
	case args = <-received:
	case <-time.After(5 * time.Second):
		t.Fatal("endpoint never received the announcement")
	}
	require.Len(t, args, 1)

	body, ok := args[0].(map[string]any)
	require.True(t, ok, "got %T", args[0])
	exports, ok := body["exports"].([]any)
	require.True(t, ok, "got %T", body["exports"])
	require.Len(t, exports, 4)

	fn, ok := exports[3].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Servactory::HelloRust::hello", fn["path"])
	assert.Equal(t, "function", fn["kind"])
	assert.EqualValues(t, 1, fn["arity"])
}

func TestAnnounce_WaitsForAck(t *testing.T) {
	url, received := newEndpoint(t, true)

	err := Announce(context.Background(), Config{
		URL:      url,
		Event:    DefaultEvent,
		AckEvent: "extension:ack",
		Timeout:  5 * time.Second,
	}, newHandle(t))
	require.NoError(t, err)
	assert.Len(t, received, 1)
}

func TestAnnounce_AckTimeout(t *testing.T) {
	url, _ := newEndpoint(t, false)

	err := Announce(context.Background(), Config{
		URL:      url,
		AckEvent: "extension:ack",
		Timeout:  time.Second,
	}, newHandle(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "waiting for event 'extension:ack'")
}

func TestAnnounce_CustomEventIsNotTheDefault(t *testing.T) {
	url, received := newEndpoint(t, true)

	err := Announce(context.Background(), Config{
		URL:      url,
		Event:    "extension:other",
		AckEvent: "extension:ack",
		Timeout:  time.Second,
	}, newHandle(t))
	require.Error(t, err, "the endpoint only acknowledges extension:loaded")
	assert.Empty(t, received)
}
