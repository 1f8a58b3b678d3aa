package lspserver

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sargunv/jvl/internal/rpc"
)

// testClient drives a Server over an in-process pipe, the same framing
// the real stdio transport uses but without a subprocess. Writes go
// through rpc.Conn (already covered by internal/rpc's own tests); reads
// are pumped continuously into a channel by a background goroutine, so
// the server is always free to keep writing (server-to-client requests
// like client/registerCapability, log messages, diagnostics) without
// ever blocking on a slow or inattentive test.
type testClient struct {
	t *testing.T

	out    *rpc.Conn // client -> server
	frames chan rawFrame
	nextID int64
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()

	clientToServerR, clientToServerW := io.Pipe()
	serverToClientR, serverToClientW := io.Pipe()

	serverConn := rpc.NewConn(clientToServerR, serverToClientW)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := NewServer(serverConn, logger)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = server.Run()
	}()

	frames := make(chan rawFrame, 256)
	go pumpFrames(bufio.NewReader(serverToClientR), frames)

	t.Cleanup(func() {
		_ = clientToServerW.Close()
		_ = serverToClientR.Close()
		<-done
	})

	return &testClient{
		t:      t,
		out:    rpc.NewConn(nil, clientToServerW),
		frames: frames,
	}
}

type rawFrame struct {
	ID     json.RawMessage  `json:"id,omitempty"`
	Method string           `json:"method,omitempty"`
	Params json.RawMessage  `json:"params,omitempty"`
	Result json.RawMessage  `json:"result,omitempty"`
	Error  *rpc.ErrorObject `json:"error,omitempty"`
}

// pumpFrames reads Content-Length-framed JSON-RPC messages off r until
// it hits an error (the pipe closing at test cleanup), decoding each
// into a rawFrame and sending it to out. It exits silently on any read
// error rather than failing the test, since by the time the pipe closes
// the test has already finished.
func pumpFrames(r *bufio.Reader, out chan<- rawFrame) {
	for {
		frame, err := readOneFrame(r)
		if err != nil {
			return
		}
		out <- frame
	}
}

func readOneFrame(r *bufio.Reader) (rawFrame, error) {
	var contentLength int
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return rawFrame{}, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if rest, ok := strings.CutPrefix(line, "Content-Length:"); ok {
			n, err := strconv.Atoi(strings.TrimSpace(rest))
			if err != nil {
				return rawFrame{}, err
			}
			contentLength = n
		}
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(r, body); err != nil {
		return rawFrame{}, err
	}

	var frame rawFrame
	if err := json.Unmarshal(body, &frame); err != nil {
		return rawFrame{}, err
	}
	return frame, nil
}

func (c *testClient) nextRequestID() json.RawMessage {
	id := atomic.AddInt64(&c.nextID, 1)
	raw, _ := json.Marshal(id)
	return raw
}

// request sends method as a request and waits (up to 5s) for its
// matching response, discarding any notifications or server-to-client
// requests received in the meantime.
func (c *testClient) request(method string, params any) rawFrame {
	c.t.Helper()
	id := c.nextRequestID()
	if err := c.out.WriteRequest(id, method, params); err != nil {
		c.t.Fatalf("send %s: %v", method, err)
	}
	deadline := time.After(5 * time.Second)
	for {
		select {
		case frame := <-c.frames:
			if string(frame.ID) == string(id) && frame.Method == "" {
				return frame
			}
		case <-deadline:
			c.t.Fatalf("timed out waiting for response to %s", method)
			return rawFrame{}
		}
	}
}

func (c *testClient) notify(method string, params any) {
	c.t.Helper()
	if err := c.out.WriteNotification(method, params); err != nil {
		c.t.Fatalf("send %s: %v", method, err)
	}
}

func (c *testClient) initialize(capabilities map[string]any) map[string]any {
	c.t.Helper()
	return c.initializeWithRoot(capabilities, "")
}

func (c *testClient) initializeWithRoot(capabilities map[string]any, rootURI string) map[string]any {
	c.t.Helper()
	var rootURIValue any
	if rootURI != "" {
		rootURIValue = rootURI
	}
	frame := c.request("initialize", map[string]any{
		"processId":    nil,
		"rootUri":      rootURIValue,
		"capabilities": capabilities,
	})
	if frame.Error != nil {
		c.t.Fatalf("initialize error: %s", frame.Error.Message)
	}
	var result map[string]any
	if err := json.Unmarshal(frame.Result, &result); err != nil {
		c.t.Fatalf("decode initialize result: %v", err)
	}
	c.notify("initialized", map[string]any{})
	return result
}

func (c *testClient) didOpen(uri string, version int32, text string) {
	c.notify("textDocument/didOpen", map[string]any{
		"textDocument": map[string]any{
			"uri":        uri,
			"languageId": "json",
			"version":    version,
			"text":       text,
		},
	})
}

func (c *testClient) didChange(uri string, version int32, text string) {
	c.notify("textDocument/didChange", map[string]any{
		"textDocument":   map[string]any{"uri": uri, "version": version},
		"contentChanges": []map[string]any{{"text": text}},
	})
}

func (c *testClient) didClose(uri string) {
	c.notify("textDocument/didClose", map[string]any{
		"textDocument": map[string]any{"uri": uri},
	})
}

func (c *testClient) hover(uri string, line, character uint32) rawFrame {
	return c.request("textDocument/hover", map[string]any{
		"textDocument": map[string]any{"uri": uri},
		"position":     map[string]any{"line": line, "character": character},
	})
}

// recvNotification reads frames until it finds one with the given
// method, ignoring everything else (log messages, server-to-client
// requests, unrelated notifications), or fails the test after timeout.
func (c *testClient) recvNotification(method string, timeout time.Duration) map[string]any {
	c.t.Helper()
	obj, ok := c.tryRecvNotification(method, timeout)
	if !ok {
		c.t.Fatalf("timed out waiting for notification %q", method)
	}
	return obj
}

// tryRecvNotification is recvNotification without failing the test on
// timeout, for tests asserting a notification does NOT arrive.
func (c *testClient) tryRecvNotification(method string, timeout time.Duration) (map[string]any, bool) {
	c.t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case frame := <-c.frames:
			if frame.Method != method {
				continue
			}
			obj := map[string]any{"method": frame.Method}
			if len(frame.Params) > 0 {
				var params any
				_ = json.Unmarshal(frame.Params, &params)
				obj["params"] = params
			}
			return obj, true
		case <-deadline:
			return nil, false
		}
	}
}
