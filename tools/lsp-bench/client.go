package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// LSPClient drives a language server over stdio
type LSPClient struct {
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	reader    *bufio.Reader
	cancel    context.CancelFunc
	writeMu   sync.Mutex
	mu        sync.Mutex
	nextID    int
	responses map[int]chan jsonrpcMessage
	timeout   time.Duration
}

type jsonrpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type jsonrpcNotification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type jsonrpcResponse struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Result  any    `json:"result"`
}

// jsonrpcMessage is any incoming message; Method is set for server
// requests and notifications
type jsonrpcMessage struct {
	ID     *int            `json:"id"`
	Method string          `json:"method"`
	Result json.RawMessage `json:"result"`
	Error  *jsonrpcError   `json:"error"`
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *jsonrpcError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
}

// NewLSPClient starts serverCmd and begins reading its output
func NewLSPClient(serverCmd string) (*LSPClient, error) {
	parts := strings.Fields(serverCmd)
	if len(parts) == 0 {
		return nil, errors.New("empty server command")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...) //nolint:gosec // G204: the command is the benchmark's input
	cmd.Stderr = io.Discard

	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start server: %w", err)
	}

	client := &LSPClient{
		cmd:       cmd,
		stdin:     stdin,
		reader:    bufio.NewReader(stdout),
		cancel:    cancel,
		responses: make(map[int]chan jsonrpcMessage),
		timeout:   5 * time.Second,
	}
	go client.readLoop()

	return client, nil
}

// readMessage reads one framed message. Header names are case-insensitive
// and headers other than Content-Length are ignored.
func readMessage(r *bufio.Reader) ([]byte, error) {
	length := -1
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			continue
		}
		length, err = strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid Content-Length %q: %w", value, err)
		}
	}
	if length < 0 {
		return nil, errors.New("missing Content-Length header")
	}

	content := make([]byte, length)
	if _, err := io.ReadFull(r, content); err != nil {
		return nil, err
	}
	return content, nil
}

// writeMessage frames msg as JSON with a Content-Length header
func writeMessage(w io.Writer, msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Content-Length: %d\r\n\r\n", len(data))
	buf.Write(data)
	_, err = w.Write(buf.Bytes())
	return err
}

func (c *LSPClient) send(msg any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return writeMessage(c.stdin, msg)
}

func (c *LSPClient) readLoop() {
	for {
		content, err := readMessage(c.reader)
		if err != nil {
			return
		}

		var msg jsonrpcMessage
		if err := json.Unmarshal(content, &msg); err != nil {
			continue
		}

		switch {
		case msg.Method != "" && msg.ID != nil:
			// Accept client/registerCapability and friends
			go func(id int) {
				_ = c.send(jsonrpcResponse{JSONRPC: "2.0", ID: id})
			}(*msg.ID)
		case msg.Method != "":
			// Notifications such as publishDiagnostics are not measured
		case msg.ID != nil:
			c.mu.Lock()
			ch, ok := c.responses[*msg.ID]
			delete(c.responses, *msg.ID)
			c.mu.Unlock()
			if ok {
				ch <- msg
			}
		}
	}
}

// Request sends a request and waits for its result
func (c *LSPClient) Request(method string, params any) (json.RawMessage, error) {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	ch := make(chan jsonrpcMessage, 1)
	c.responses[id] = ch
	c.mu.Unlock()

	if err := c.send(jsonrpcRequest{JSONRPC: "2.0", ID: id, Method: method, Params: params}); err != nil {
		return nil, err
	}

	select {
	case msg := <-ch:
		if msg.Error != nil {
			return nil, msg.Error
		}
		return msg.Result, nil
	case <-time.After(c.timeout):
		c.mu.Lock()
		delete(c.responses, id)
		c.mu.Unlock()
		return nil, fmt.Errorf("timeout waiting for %s", method)
	}
}

// Notify sends a notification
func (c *LSPClient) Notify(method string, params any) error {
	return c.send(jsonrpcNotification{JSONRPC: "2.0", Method: method, Params: params})
}

// Initialize performs the initialize handshake, declaring pull diagnostics
// support so that textDocument/diagnostic can be measured
func (c *LSPClient) Initialize(rootURI string) error {
	_, err := c.Request("initialize", map[string]any{
		"processId": os.Getpid(),
		"rootUri":   rootURI,
		"capabilities": map[string]any{
			"textDocument": map[string]any{
				"diagnostic":     map[string]any{},
				"documentSymbol": map[string]any{"hierarchicalDocumentSymbolSupport": true},
			},
		},
	})
	if err != nil {
		return err
	}
	return c.Notify("initialized", map[string]any{})
}

// DidOpen opens an html document
func (c *LSPClient) DidOpen(uri, text string) error {
	return c.Notify("textDocument/didOpen", map[string]any{
		"textDocument": map[string]any{
			"uri":        uri,
			"languageId": "html",
			"version":    1,
			"text":       text,
		},
	})
}

// Close shuts the server down
func (c *LSPClient) Close() error {
	_, _ = c.Request("shutdown", nil)
	_ = c.Notify("exit", nil)
	_ = c.stdin.Close()
	err := c.cmd.Wait()
	c.cancel()
	return err
}

// ProcessMemory returns the server's resident set size. Only Linux is
// supported.
func (c *LSPClient) ProcessMemory() (uint64, error) {
	if c.cmd.Process == nil {
		return 0, errors.New("process not started")
	}
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/status", c.cmd.Process.Pid))
	if err != nil {
		return 0, err
	}
	return parseVmRSS(data)
}

func parseVmRSS(status []byte) (uint64, error) {
	for line := range bytes.Lines(status) {
		rest, ok := bytes.CutPrefix(line, []byte("VmRSS:"))
		if !ok {
			continue
		}
		fields := strings.Fields(string(rest))
		if len(fields) != 2 || fields[1] != "kB" {
			return 0, fmt.Errorf("unexpected VmRSS line %q", line)
		}
		kb, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return 0, err
		}
		return kb * 1024, nil
	}
	return 0, errors.New("VmRSS not found")
}
