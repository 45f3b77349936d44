// Package wallet implements the wallet capability consumed by the
// interactive session: account operations against the backing node and
// the relay client lifecycle.
package wallet

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/leapwallet/internal/node"
	"github.com/leapstack-labs/leapwallet/internal/relay"
)

// Slate is re-exported for callers that only import this package.
type Slate = node.Slate

// Wallet bundles the node client with the relay client. A single Wallet
// lives for the whole session.
type Wallet struct {
	node  *node.Client
	relay *relay.Client
	out   io.Writer
	log   *slog.Logger
}

// New builds a wallet over the given node client. Incoming relay
// messages are reported on out.
func New(nodeClient *node.Client, out io.Writer, logger *slog.Logger) *Wallet {
	w := &Wallet{
		node:  nodeClient,
		relay: relay.NewClient(logger),
		out:   out,
		log:   logger,
	}
	w.relay.OnMessage = func(m relay.Message) {
		fmt.Fprintf(w.out, "incoming slate from [%s]\n", m.From)
		w.log.Debug("relay message", "from", m.From)
	}
	return w
}

// Init initializes the wallet storage and seed.
func (w *Wallet) Init(password string) error {
	if err := w.node.Init(password); err != nil {
		return err
	}
	fmt.Fprintln(w.out, "wallet initialized")
	return nil
}

// Info prints the balance summary for an account.
func (w *Wallet) Info(password, account string) error {
	s, err := w.node.Summary(password, account)
	if err != nil {
		return err
	}
	t := table.NewWriter()
	t.SetOutputMirror(w.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"field", "value"})
	t.AppendRows([]table.Row{
		{"chain height", s.Height},
		{"total", FormatAmount(s.Total)},
		{"awaiting confirmation", FormatAmount(s.AwaitingConf)},
		{"immature coinbase", FormatAmount(s.Immature)},
		{"currently spendable", FormatAmount(s.CurrentlySpendable)},
		{"locked", FormatAmount(s.Locked)},
	})
	t.Render()
	return nil
}

// Txs prints the transaction log for an account.
func (w *Wallet) Txs(password, account string) error {
	txs, err := w.node.Txs(password, account)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		fmt.Fprintln(w.out, "no transactions")
		return nil
	}
	t := table.NewWriter()
	t.SetOutputMirror(w.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"id", "type", "amount", "fee", "confirmed", "slate id"})
	for _, tx := range txs {
		t.AppendRow(table.Row{tx.ID, tx.Type, FormatAmount(tx.Amount), FormatAmount(tx.Fee), tx.Confirmed, tx.SlateID})
	}
	t.Render()
	return nil
}

// Outputs prints the wallet outputs for an account.
func (w *Wallet) Outputs(password, account string, showSpent bool) error {
	outputs, err := w.node.Outputs(password, account, showSpent)
	if err != nil {
		return err
	}
	if len(outputs) == 0 {
		fmt.Fprintln(w.out, "no outputs")
		return nil
	}
	t := table.NewWriter()
	t.SetOutputMirror(w.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"commit", "height", "value", "status", "tx id"})
	for _, o := range outputs {
		t.AppendRow(table.Row{o.Commit, o.Height, FormatAmount(o.Value), o.Status, o.TxID})
	}
	t.Render()
	return nil
}

// Repost rebroadcasts transaction id.
func (w *Wallet) Repost(password string, id uint32, fluff bool) error {
	return w.node.Repost(password, id, fluff)
}

// Cancel cancels transaction id.
func (w *Wallet) Cancel(password string, id uint32) error {
	return w.node.Cancel(password, id)
}

// Send constructs and posts a transaction of amount smallest units to
// dest, returning the resulting slate.
func (w *Wallet) Send(password, account, dest string, amount, minConf uint64, strategy string, changeOutputs uint32, lockHeight uint64) (*Slate, error) {
	slate, err := w.node.Send(password, node.SendRequest{
		Account:           account,
		Dest:              dest,
		Amount:            amount,
		MinConfirmations:  minConf,
		SelectionStrategy: strategy,
		ChangeOutputs:     changeOutputs,
		LockHeight:        lockHeight,
	})
	if err != nil {
		return nil, err
	}
	w.log.Debug("slate created", "slate", slate.ID, "dest", dest)
	return slate, nil
}

// Restore rescans the chain for the wallet's outputs.
func (w *Wallet) Restore(password string) error {
	if err := w.node.Restore(password); err != nil {
		return err
	}
	fmt.Fprintln(w.out, "wallet restored")
	return nil
}

// StartClient connects the relay client. The password is accepted for
// contract parity with the other operations; the relay itself
// authenticates with the signed challenge.
func (w *Wallet) StartClient(_, relayURI, relayKey string) error {
	if err := w.relay.Start(relayURI, relayKey); err != nil {
		return err
	}
	fmt.Fprintf(w.out, "listening on [%s]\n", w.relay.Address())
	return nil
}

// StopClient disconnects the relay client; a no-op when disconnected.
func (w *Wallet) StopClient() {
	w.relay.Stop()
}

// Subscribe re-arms the relay subscription.
func (w *Wallet) Subscribe() error {
	return w.relay.Subscribe()
}

// Unsubscribe drops the relay subscription.
func (w *Wallet) Unsubscribe() error {
	return w.relay.Unsubscribe()
}

// Challenge returns the relay's current challenge string.
func (w *Wallet) Challenge() string {
	return w.relay.Challenge()
}

// Listening reports whether the relay client is connected.
func (w *Wallet) Listening() bool {
	return w.relay.Listening()
}
