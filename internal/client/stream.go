package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// StreamEvent is one incremental update from a streamed command execution.
// Exactly one terminal event is sent: either Result or Err is set.
type StreamEvent struct {
	Delta  string
	Result *CommandResult
	Err    error
}

// streamFrame is the wire format of the streaming endpoint.
type streamFrame struct {
	Delta  string         `json:"delta,omitempty"`
	Done   bool           `json:"done,omitempty"`
	Result *CommandResult `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// ExecuteStream sends a command over the websocket endpoint and emits reply
// deltas as they arrive. The returned channel is closed after the terminal
// event. Cancelling ctx tears down the connection.
func (c *Client) ExecuteStream(ctx context.Context, text string) (<-chan StreamEvent, error) {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/api/commands/stream"

	header := http.Header{}
	if c.token != nil {
		if t := c.token(); t != "" {
			header.Set("Authorization", "Bearer "+t)
		}
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return nil, fmt.Errorf("dial stream: %w", err)
	}

	if err := conn.WriteJSON(commandRequest{Text: text}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send command: %w", err)
	}

	events := make(chan StreamEvent)
	done := make(chan struct{})

	// Close the connection when ctx ends so the read loop unblocks. The
	// watcher itself exits once the stream finishes, whichever comes first.
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	go func() {
		defer close(events)
		defer close(done)
		defer conn.Close()

		for {
			var frame streamFrame
			if err := conn.ReadJSON(&frame); err != nil {
				if ctx.Err() != nil {
					events <- StreamEvent{Err: ctx.Err()}
				} else {
					events <- StreamEvent{Err: fmt.Errorf("read stream: %w", err)}
				}
				return
			}

			if frame.Error != "" {
				events <- StreamEvent{Err: fmt.Errorf("stream error: %s", frame.Error)}
				return
			}
			if frame.Delta != "" {
				events <- StreamEvent{Delta: frame.Delta}
			}
			if frame.Done {
				result := frame.Result
				if result == nil {
					// Streams without a trailing result are plain
					// conversations; the deltas were the reply.
					result = &CommandResult{Success: true, Type: TypeConversation}
				}
				events <- StreamEvent{Result: result}
				return
			}
		}
	}()

	return events, nil
}
