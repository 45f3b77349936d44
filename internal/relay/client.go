// Package relay implements the client side of the encrypted peer
// messaging relay used to exchange transaction slates.
//
// The wire shape is a small HTTP API: the client fetches a challenge,
// signs it with the wallet's relay identity, subscribes, and then polls
// its address for incoming messages from a background goroutine.
package relay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/leapstack-labs/leapwallet/internal/keys"
)

// ErrNotStarted indicates an operation that needs a started client.
var ErrNotStarted = errors.New("relay: client is not listening, use `listen` first")

const pollInterval = 5 * time.Second

// Message is one relayed payload addressed to this wallet.
type Message struct {
	From    string `json:"from"`
	Payload string `json:"payload"`
}

// Client maintains the relay connection. All lifecycle methods are safe
// for concurrent use; the poll goroutine shares the client with the
// foreground dispatcher.
type Client struct {
	http *http.Client
	log  *slog.Logger

	// OnMessage, when set before Start, is invoked from the poll
	// goroutine for every incoming message.
	OnMessage func(Message)

	mu        sync.Mutex
	uri       string
	address   string
	challenge string
	quit      chan struct{}
	done      chan struct{}
}

// NewClient builds a stopped relay client.
func NewClient(logger *slog.Logger) *Client {
	return &Client{
		http: &http.Client{Timeout: 30 * time.Second},
		log:  logger,
	}
}

// Start connects to the relay at uri: it derives the wallet's relay
// address, fetches and signs the challenge, subscribes, and spawns the
// poll loop. Starting a started client is an error; `stop` first.
func (c *Client) Start(uri, secretHex string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.quit != nil {
		return errors.New("relay: client already listening")
	}

	address, err := keys.AddressFromSecret(secretHex)
	if err != nil {
		return err
	}

	challenge, err := c.fetchChallenge(uri)
	if err != nil {
		return err
	}
	sig, err := keys.Sign(secretHex, []byte(challenge))
	if err != nil {
		return err
	}
	if err := c.post(uri+"/subscribe", subscribeRequest{Address: address, Signature: sig}); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	c.uri = uri
	c.address = address
	c.challenge = challenge
	c.quit = make(chan struct{})
	c.done = make(chan struct{})
	go c.poll(uri, address, c.quit, c.done)

	c.log.Debug("relay client started", "uri", uri, "address", address)
	return nil
}

// Stop disconnects from the relay. Stopping a stopped client is a no-op.
func (c *Client) Stop() {
	c.mu.Lock()
	if c.quit == nil {
		c.mu.Unlock()
		return
	}
	quit, done := c.quit, c.done
	uri, address := c.uri, c.address
	c.quit = nil
	c.done = nil
	c.mu.Unlock()

	close(quit)
	<-done
	// Best effort: the subscription expires server-side anyway.
	_ = c.post(uri+"/unsubscribe", subscribeRequest{Address: address})
	c.log.Debug("relay client stopped", "address", address)
}

// Subscribe re-arms the relay subscription using the stored challenge.
func (c *Client) Subscribe() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.quit == nil {
		return ErrNotStarted
	}
	return c.post(c.uri+"/subscribe", subscribeRequest{Address: c.address})
}

// Unsubscribe drops the relay subscription but keeps the connection.
func (c *Client) Unsubscribe() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.quit == nil {
		return ErrNotStarted
	}
	return c.post(c.uri+"/unsubscribe", subscribeRequest{Address: c.address})
}

// Challenge returns the challenge string presented by the relay, or the
// empty string when the client has never connected.
func (c *Client) Challenge() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.challenge
}

// Listening reports whether the poll loop is running.
func (c *Client) Listening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quit != nil
}

// Address returns the subscribed relay address, if any.
func (c *Client) Address() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.address
}

type subscribeRequest struct {
	Address   string `json:"address"`
	Signature string `json:"signature,omitempty"`
}

func (c *Client) poll(uri, address string, quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
			msgs, err := c.fetchMessages(uri, address)
			if err != nil {
				c.log.Warn("relay poll failed", "err", err)
				continue
			}
			for _, m := range msgs {
				if c.OnMessage != nil {
					c.OnMessage(m)
				}
			}
		}
	}
}

func (c *Client) fetchChallenge(uri string) (string, error) {
	resp, err := c.http.Get(uri + "/challenge")
	if err != nil {
		return "", fmt.Errorf("fetch challenge: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch challenge: relay returned %s", resp.Status)
	}
	var out struct {
		Challenge string `json:"challenge"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode challenge: %w", err)
	}
	return out.Challenge, nil
}

func (c *Client) fetchMessages(uri, address string) ([]Message, error) {
	resp, err := c.http.Get(uri + "/poll?address=" + address)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("relay returned %s", resp.Status)
	}
	var msgs []Message
	if err := json.NewDecoder(resp.Body).Decode(&msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *Client) post(url string, in any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	resp, err := c.http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("relay returned %s: %s", resp.Status, bytes.TrimSpace(msg))
	}
	return nil
}
