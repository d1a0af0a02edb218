package integration_test

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// LSPClient is a test client that communicates with an LSP server via stdio
type LSPClient struct {
	cmd           *exec.Cmd
	stdin         io.WriteCloser
	stdout        io.ReadCloser
	reader        *bufio.Reader
	msgID         int
	responses     map[int]chan json.RawMessage
	notifications chan notification
	mu            sync.Mutex
	writeMu       sync.Mutex
	t             *testing.T
}

type notification struct {
	Method string
	Params json.RawMessage
}

// NewLSPClient builds the server binary and starts it
func NewLSPClient(t *testing.T) *LSPClient {
	t.Helper()
	if testing.Short() {
		t.Skip("builds and runs the server binary")
	}

	cwd, err := os.Getwd()
	require.NoError(t, err)
	projectRoot := filepath.Join(cwd, "..", "..")

	// Build with -cover so integration runs count towards coverage
	binary := filepath.Join(t.TempDir(), "embedded-language-server")
	cmd := exec.Command("go", "build", "-cover", "-o", binary, "./cmd/embedded-language-server")
	cmd.Dir = projectRoot
	output, buildErr := cmd.CombinedOutput()
	require.NoError(t, buildErr, "Failed to build server: %s", string(output))

	coverDir := filepath.Join(projectRoot, "coverage", "integration")
	require.NoError(t, os.MkdirAll(coverDir, 0o755))

	serverCmd := exec.Command(binary, "--stdio")
	serverCmd.Env = append(os.Environ(), fmt.Sprintf("GOCOVERDIR=%s", coverDir))
	stdin, err := serverCmd.StdinPipe()
	require.NoError(t, err)
	stdout, err := serverCmd.StdoutPipe()
	require.NoError(t, err)
	stderr, err := serverCmd.StderrPipe()
	require.NoError(t, err)

	require.NoError(t, serverCmd.Start())

	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			t.Logf("[SERVER] %s", scanner.Text())
		}
	}()

	client := &LSPClient{
		cmd:           serverCmd,
		stdin:         stdin,
		stdout:        stdout,
		reader:        bufio.NewReader(stdout),
		responses:     make(map[int]chan json.RawMessage),
		notifications: make(chan notification, 64),
		t:             t,
	}
	go client.readMessages()
	t.Cleanup(client.Close)

	return client
}

// Close shuts the server down
func (c *LSPClient) Close() {
	id := c.sendRequest("shutdown", nil)
	_, _ = c.waitForResponse(id, 2*time.Second)
	c.sendNotification("exit", nil)
	_ = c.stdin.Close()
	_ = c.cmd.Wait()
}

// Request sends a request and decodes its result into result
func (c *LSPClient) Request(method string, params, result any) error {
	id := c.sendRequest(method, params)
	response, err := c.waitForResponse(id, 5*time.Second)
	if err != nil {
		return err
	}
	if result == nil || string(response) == "null" {
		return nil
	}
	return json.Unmarshal(response, result)
}

// Notify sends a notification
func (c *LSPClient) Notify(method string, params any) {
	c.sendNotification(method, params)
}

// WaitForNotification returns the next notification with the given method
func (c *LSPClient) WaitForNotification(method string, timeout time.Duration) (json.RawMessage, error) {
	deadline := time.After(timeout)
	for {
		select {
		case n := <-c.notifications:
			if n.Method == method {
				return n.Params, nil
			}
		case <-deadline:
			return nil, fmt.Errorf("timeout waiting for %s", method)
		}
	}
}

func (c *LSPClient) sendRequest(method string, params any) int {
	c.mu.Lock()
	c.msgID++
	id := c.msgID
	c.responses[id] = make(chan json.RawMessage, 1)
	c.mu.Unlock()

	c.sendMessage(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
		"params":  params,
	})
	return id
}

func (c *LSPClient) sendNotification(method string, params any) {
	c.sendMessage(map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	})
}

func (c *LSPClient) sendMessage(msg any) {
	data, err := json.Marshal(msg)
	require.NoError(c.t, err)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err = fmt.Fprintf(c.stdin, "Content-Length: %d\r\n\r\n%s", len(data), data)
	if err != nil {
		c.t.Logf("Error writing message: %v", err)
	}
}

func (c *LSPClient) waitForResponse(id int, timeout time.Duration) (json.RawMessage, error) {
	c.mu.Lock()
	ch, ok := c.responses[id]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no response channel for message ID %d", id)
	}

	select {
	case response := <-ch:
		return response, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("timeout waiting for response to message %d", id)
	}
}

// readMessages routes responses, answers server requests and queues
// notifications
func (c *LSPClient) readMessages() {
	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			return
		}

		var contentLength int
		if _, err := fmt.Sscanf(line, "Content-Length: %d", &contentLength); err != nil {
			continue
		}
		if _, err := c.reader.ReadString('\n'); err != nil {
			return
		}

		content := make([]byte, contentLength)
		if _, err := io.ReadFull(c.reader, content); err != nil {
			return
		}

		var message struct {
			ID     *int            `json:"id"`
			Method *string         `json:"method"`
			Params json.RawMessage `json:"params"`
			Result json.RawMessage `json:"result"`
			Error  json.RawMessage `json:"error"`
		}
		if err := json.Unmarshal(content, &message); err != nil {
			continue
		}

		switch {
		case message.Method != nil && message.ID != nil:
			// Server requests such as client/registerCapability
			id := *message.ID
			go c.sendMessage(map[string]any{"jsonrpc": "2.0", "id": id, "result": nil})
		case message.Method != nil:
			select {
			case c.notifications <- notification{Method: *message.Method, Params: message.Params}:
			default:
			}
		case message.ID != nil:
			c.mu.Lock()
			if ch, ok := c.responses[*message.ID]; ok {
				if message.Error != nil {
					ch <- message.Error
				} else {
					ch <- message.Result
				}
			}
			c.mu.Unlock()
		}
	}
}
