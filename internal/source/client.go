package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goran-ethernal/subindex/internal/codec"
	"github.com/goran-ethernal/subindex/internal/logger"
	"github.com/goran-ethernal/subindex/internal/types"
	"github.com/goran-ethernal/subindex/pkg/config"
	"github.com/gorilla/websocket"
)

// maxReconnectDelay caps the linear backoff between stream reconnect
// attempts during a long gateway outage.
const maxReconnectDelay = 30 * time.Second

// Client implements Source against the sync collaborator's gateway:
// a WebSocket stream for finalized head announcements and HTTP
// endpoints for block content and runtime metadata.
type Client struct {
	config config.SourceConfig
	http   *http.Client
	log    *logger.Logger
}

// NewClient creates a new gateway client.
func NewClient(cfg config.SourceConfig, log *logger.Logger) *Client {
	return &Client{
		config: cfg,
		http: &http.Client{
			Timeout: cfg.FetchTimeout.Duration,
		},
		log: log.WithComponent("source"),
	}
}

// FinalizedHeaders implements Source. It blocks until ctx is cancelled,
// reconnecting with capped linear backoff whenever the stream drops.
// The attempt counter resets after every successful connection, and only
// context cancellation ends the loop; missed announcements during an
// outage are recovered by the consumer from the next head it receives.
func (c *Client) FinalizedHeaders(ctx context.Context, out chan<- types.FinalizedHeader) error {
	wsURL, err := c.buildStreamURL()
	if err != nil {
		return fmt.Errorf("build stream url: %w", err)
	}

	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		c.log.Infof("Connecting to finalized head stream %s (attempt %d)", wsURL, attempt)

		conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
		if err == nil {
			if resp != nil && resp.Body != nil {
				resp.Body.Close()
			}

			connectedAt := time.Now()
			c.log.Info("Finalized head stream connected")

			// ReadMessage does not observe ctx; closing the connection
			// unblocks it when the context ends.
			watchDone := make(chan struct{})
			go func() {
				select {
				case <-ctx.Done():
					conn.Close()
				case <-watchDone:
				}
			}()

			err = c.readHeaders(ctx, conn, out)
			close(watchDone)
			conn.Close()

			if ctx.Err() != nil {
				return ctx.Err()
			}

			StreamDisconnectInc()
			c.log.Warnf("Finalized head stream disconnected after %v: %v",
				time.Since(connectedAt).Round(time.Second), err)

			// Reset attempt counter on successful connection
			attempt = 0
			continue
		}

		c.log.Warnf("Failed to connect to finalized head stream (attempt %d): %v", attempt, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.reconnectDelay(attempt)):
		}
	}
}

// reconnectDelay returns the linear backoff for the given attempt,
// capped at maxReconnectDelay.
func (c *Client) reconnectDelay(attempt int) time.Duration {
	delay := time.Duration(attempt) * c.config.ReconnectDelay.Duration
	if delay > maxReconnectDelay {
		delay = maxReconnectDelay
	}
	return delay
}

// readHeaders reads head announcements until the connection fails.
func (c *Client) readHeaders(ctx context.Context, conn *websocket.Conn, out chan<- types.FinalizedHeader) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		var header types.FinalizedHeader
		if err := json.Unmarshal(data, &header); err != nil {
			c.log.Warnf("Dropping malformed head announcement (%d bytes): %v", len(data), err)
			continue
		}

		HeadersReceivedInc()
		c.log.Debugf("Finalized head announced: %d (%s)", header.Number, header.Hash.Hex())

		select {
		case out <- header:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// BlockByNumber implements Source. Each attempt is bounded by the
// configured fetch timeout; retryable failures back off exponentially.
func (c *Client) BlockByNumber(ctx context.Context, number uint64) (*RawBlock, error) {
	var block *RawBlock

	start := time.Now()
	err := retryWithBackoff(ctx, c.config.Retry, "block_by_number", func() error {
		// A failed attempt can leave partially decoded fields behind, so
		// every attempt decodes into a fresh value.
		var fetched RawBlock
		if err := c.getJSON(ctx, fmt.Sprintf("%s/block/%d", strings.TrimSuffix(c.config.URL, "/"), number), &fetched); err != nil {
			return err
		}
		block = &fetched
		return nil
	})
	FetchDurationLog(time.Since(start))

	if err != nil {
		return nil, fmt.Errorf("fetch block %d: %w", number, err)
	}

	if block.Header.Number != number {
		return nil, fmt.Errorf("fetch block %d: gateway returned block %d", number, block.Header.Number)
	}

	return block, nil
}

// Metadata implements Source.
func (c *Client) Metadata(ctx context.Context) (*codec.Metadata, error) {
	var meta *codec.Metadata

	err := retryWithBackoff(ctx, c.config.Retry, "metadata", func() error {
		var fetched codec.Metadata
		if err := c.getJSON(ctx, strings.TrimSuffix(c.config.URL, "/")+"/metadata", &fetched); err != nil {
			return err
		}
		meta = &fetched
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}

	return meta, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, target any) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.FetchTimeout.Duration)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// buildStreamURL derives the WebSocket subscription URL from the
// configured stream address.
func (c *Client) buildStreamURL() (string, error) {
	parsed, err := url.Parse(c.config.WSURL)
	if err != nil {
		return "", err
	}

	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported stream scheme %q", parsed.Scheme)
	}

	if parsed.Path == "" || parsed.Path == "/" {
		parsed.Path = "/finalized"
	}

	return parsed.String(), nil
}
