// Package node provides the JSON-over-HTTP client for the wallet's
// backing node API.
package node

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// passwordHeader carries the wallet password through to the node. The
// value is opaque to this client; it is never validated locally.
const passwordHeader = "X-Wallet-Password"

// Client talks to a wallet node's owner API.
type Client struct {
	base   string
	secret string
	http   *http.Client
	log    *slog.Logger
}

// New builds a client for the node at base. secret, when non-empty, is
// sent as HTTP basic auth.
func New(base, secret string, logger *slog.Logger) *Client {
	return &Client{
		base:   base,
		secret: secret,
		http:   &http.Client{Timeout: 30 * time.Second},
		log:    logger,
	}
}

// Summary is the wallet balance summary reported by the node.
type Summary struct {
	Height             uint64 `json:"height"`
	Total              uint64 `json:"total"`
	AwaitingConf       uint64 `json:"awaiting_confirmation"`
	Immature           uint64 `json:"immature"`
	CurrentlySpendable uint64 `json:"currently_spendable"`
	Locked             uint64 `json:"locked"`
}

// Tx is one transaction log entry.
type Tx struct {
	ID           uint32    `json:"id"`
	SlateID      string    `json:"slate_id,omitempty"`
	Type         string    `json:"type"`
	Amount       uint64    `json:"amount"`
	Fee          uint64    `json:"fee"`
	Confirmed    bool      `json:"confirmed"`
	CreationTime time.Time `json:"creation_time"`
}

// Output is one wallet output.
type Output struct {
	Commit string `json:"commit"`
	Height uint64 `json:"height"`
	Value  uint64 `json:"value"`
	Status string `json:"status"`
	TxID   uint32 `json:"tx_id"`
}

// Slate identifies an in-progress transaction exchange.
type Slate struct {
	ID     uuid.UUID `json:"id"`
	Amount uint64    `json:"amount"`
}

// SendRequest is the payload for constructing an outgoing transaction.
type SendRequest struct {
	Account           string `json:"account"`
	Dest              string `json:"dest"`
	Amount            uint64 `json:"amount"`
	MinConfirmations  uint64 `json:"min_confirmations"`
	SelectionStrategy string `json:"selection_strategy"`
	ChangeOutputs     uint32 `json:"change_outputs"`
	LockHeight        uint64 `json:"lock_height"`
}

// Init creates the wallet's seed and storage on the node side.
func (c *Client) Init(password string) error {
	return c.do(http.MethodPost, "/v1/wallet/init", password, nil, nil)
}

// Summary fetches the balance summary for an account.
func (c *Client) Summary(password, account string) (*Summary, error) {
	var out Summary
	if err := c.do(http.MethodGet, "/v1/wallet/summary?account="+account, password, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Txs fetches the transaction log for an account.
func (c *Client) Txs(password, account string) ([]Tx, error) {
	var out []Tx
	if err := c.do(http.MethodGet, "/v1/wallet/txs?account="+account, password, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Outputs fetches wallet outputs, optionally including spent ones.
func (c *Client) Outputs(password, account string, showSpent bool) ([]Output, error) {
	path := fmt.Sprintf("/v1/wallet/outputs?account=%s&show_spent=%t", account, showSpent)
	var out []Output
	if err := c.do(http.MethodGet, path, password, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Repost rebroadcasts a stored transaction.
func (c *Client) Repost(password string, id uint32, fluff bool) error {
	path := fmt.Sprintf("/v1/wallet/txs/%d/repost?fluff=%t", id, fluff)
	return c.do(http.MethodPost, path, password, nil, nil)
}

// Cancel cancels an unconfirmed transaction and unlocks its inputs.
func (c *Client) Cancel(password string, id uint32) error {
	return c.do(http.MethodPost, fmt.Sprintf("/v1/wallet/txs/%d/cancel", id), password, nil, nil)
}

// Send constructs and posts a transaction, returning its slate.
func (c *Client) Send(password string, req SendRequest) (*Slate, error) {
	var out Slate
	if err := c.do(http.MethodPost, "/v1/wallet/send", password, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Restore rescans the chain for the wallet's outputs.
func (c *Client) Restore(password string) error {
	return c.do(http.MethodPost, "/v1/wallet/restore", password, nil, nil)
}

func (c *Client) do(method, path, password string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if password != "" {
		req.Header.Set(passwordHeader, password)
	}
	if c.secret != "" {
		req.SetBasicAuth("leapwallet", c.secret)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("node request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Debug("node request failed", "method", method, "path", path, "status", resp.StatusCode)
		return fmt.Errorf("node returned %s: %s", resp.Status, bytes.TrimSpace(msg))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
