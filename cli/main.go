// Package main provides a terminal client for the state service's WebSocket endpoint.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/RL8/mb-final/internal/domain"
	"github.com/RL8/mb-final/internal/protocol"
)

// Client represents a WebSocket client.
type Client struct {
	conn      *websocket.Conn
	sessionID string
	done      chan struct{}
}

// NewClient creates a new client and connects to the server.
func NewClient(addr string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	return &Client{
		conn: conn,
		done: make(chan struct{}),
	}, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	close(c.done)
	return c.conn.Close()
}

// SendHello sends a hello message and waits for hello_ack.
func (c *Client) SendHello(apiKey, sessionID string) error {
	msg := protocol.HelloMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeHello,
			Ts:        time.Now().UnixMilli(),
			SessionID: sessionID,
		},
		APIKey: apiKey,
		ClientMeta: map[string]string{
			"client": "mindbridge-cli",
		},
	}

	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("write hello: %w", err)
	}

	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("read hello_ack: %w", err)
	}

	var base protocol.BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		return fmt.Errorf("unmarshal hello_ack: %w", err)
	}

	if base.Type == protocol.TypeError {
		var errMsg protocol.ErrorMessage
		_ = json.Unmarshal(data, &errMsg)
		return fmt.Errorf("hello failed: %s - %s", errMsg.Code, errMsg.Message)
	}

	if base.Type != protocol.TypeHelloAck {
		return fmt.Errorf("expected hello_ack, got: %s", base.Type)
	}

	c.sessionID = base.SessionID
	return nil
}

// Send writes a frame to the server.
func (c *Client) Send(v any) error {
	return c.conn.WriteJSON(v)
}

// ReadMessages reads and prints messages from the server.
func (c *Client) ReadMessages() {
	for {
		select {
		case <-c.done:
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					log.Error().Err(err).Msg("read error")
				}
				return
			}
			fmt.Println(formatFrame(data))
		}
	}
}

// formatFrame renders a server frame for the terminal.
func formatFrame(data []byte) string {
	var base protocol.BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		return "unreadable frame: " + string(data)
	}

	switch base.Type {
	case protocol.TypeChange:
		var msg protocol.ChangeMessage
		if err := json.Unmarshal(data, &msg); err == nil {
			return fmt.Sprintf("[change] %s %v (%d messages, %d exchanges)",
				msg.Change.Kind, msg.Change.Fields, len(msg.Change.State.Messages), len(msg.Change.State.Exchanges))
		}
	case protocol.TypeError:
		var msg protocol.ErrorMessage
		if err := json.Unmarshal(data, &msg); err == nil {
			return fmt.Sprintf("[error] %s: %s", msg.Code, msg.Message)
		}
	}

	var pretty map[string]any
	_ = json.Unmarshal(data, &pretty)
	formatted, _ := json.MarshalIndent(pretty, "", "  ")
	return fmt.Sprintf("[%s]\n%s", base.Type, formatted)
}

// frameForInput turns a line of user input into the frame to send.
// It returns nil for blank lines.
func frameForInput(input string, now time.Time) (any, error) {
	input = strings.TrimSpace(input)
	base := protocol.BaseMessage{Ts: now.UnixMilli()}

	switch {
	case input == "":
		return nil, nil
	case input == "/clear":
		base.Type = protocol.TypeClearConversation
		return base, nil
	case input == "/state":
		base.Type = protocol.TypeGetState
		return base, nil
	case strings.HasPrefix(input, "/sideboard "):
		title, content, ok := strings.Cut(strings.TrimPrefix(input, "/sideboard "), ":")
		if !ok {
			return nil, fmt.Errorf("usage: /sideboard <title>: <content>")
		}
		base.Type = protocol.TypeUpdateSideboard
		return protocol.UpdateSideboardMessage{
			BaseMessage: base,
			DisplayID:   fmt.Sprintf("cli_%d", now.UnixNano()),
			Data: domain.SideboardUpdate{
				Title:   strings.TrimSpace(title),
				Content: strings.TrimSpace(content),
			},
		}, nil
	case strings.HasPrefix(input, "/"):
		return nil, fmt.Errorf("unknown command: %s", input)
	}

	base.Type = protocol.TypeAddMessage
	return protocol.AddMessageMessage{
		BaseMessage: base,
		Message: domain.Message{
			Sender:    domain.SenderUser,
			Timestamp: now,
			Content:   input,
		},
	}, nil
}

// chatLoop sends a frame for every input line until /quit, EOF or ctx is
// done. Lines are read in their own goroutine so cancellation does not wait
// for the next line.
func chatLoop(ctx context.Context, in io.Reader, out io.Writer, send func(any) error) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if strings.TrimSpace(line) == "/quit" {
				fmt.Fprintln(out, "Bye!")
				return nil
			}

			frame, err := frameForInput(line, time.Now())
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			if frame == nil {
				continue
			}
			if err := send(frame); err != nil {
				log.Error().Err(err).Msg("send error")
			}
		}
	}
}

func newChatCommand() *cobra.Command {
	var (
		addr      string
		apiKey    string
		sessionID string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Join a session and send user messages from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Connecting to %s...\n", addr)

			client, err := NewClient(addr)
			if err != nil {
				return fmt.Errorf("failed to connect: %w", err)
			}
			defer client.Close()

			if err := client.SendHello(apiKey, sessionID); err != nil {
				return err
			}

			fmt.Printf("Session established: %s\n", client.sessionID)
			fmt.Println("Type a message and press Enter to send.")
			fmt.Println("Commands: /clear, /state, /sideboard <title>: <content>, /quit")

			go client.ReadMessages()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			err = chatLoop(ctx, os.Stdin, os.Stdout, client.Send)
			if ctx.Err() != nil {
				fmt.Println("\nInterrupted")
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "ws://localhost:8090/ws", "WebSocket server address")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key for authentication")
	cmd.Flags().StringVar(&sessionID, "session", "", "Session to join; empty opens a new one")

	return cmd
}

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	rootCmd := &cobra.Command{
		Use:   "mindbridge-cli",
		Short: "Terminal client for the MindBridge state service",
	}
	rootCmd.AddCommand(newChatCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
