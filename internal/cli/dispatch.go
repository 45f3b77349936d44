package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/leapwallet/internal/cli/interp"
	"github.com/leapstack-labs/leapwallet/internal/config"
	"github.com/leapstack-labs/leapwallet/internal/contacts"
	"github.com/leapstack-labs/leapwallet/internal/relay"
	"github.com/leapstack-labs/leapwallet/internal/wallet"
)

// Transaction construction defaults applied when `send` is given only a
// destination and an amount.
const (
	defaultAccount       = "default"
	defaultMinConf       = 10
	defaultStrategy      = "all"
	defaultChangeOutputs = 1
	defaultLockHeight    = 500
)

// walletAPI is the wallet surface the dispatcher drives. *wallet.Wallet
// satisfies it; tests substitute a recording fake.
type walletAPI interface {
	Init(password string) error
	Info(password, account string) error
	Txs(password, account string) error
	Outputs(password, account string, showSpent bool) error
	Repost(password string, id uint32, fluff bool) error
	Cancel(password string, id uint32) error
	Send(password, account, dest string, amount, minConf uint64, strategy string, changeOutputs uint32, lockHeight uint64) (*wallet.Slate, error)
	Restore(password string) error
	StartClient(password, relayURI, relayKey string) error
	StopClient()
	Subscribe() error
	Unsubscribe() error
	Challenge() string
	Listening() bool
}

// dispatcher routes parsed commands to their handlers. It owns the
// session's view of the configuration record.
type dispatcher struct {
	cfgPath string
	cfg     *config.Config
	wallet  walletAPI
	book    *contacts.Book
	out     io.Writer
	log     *slog.Logger
}

// dispatch runs one command. It returns true when the session should
// end. Handler errors are reported to the caller; the session survives
// all of them.
func (d *dispatcher) dispatch(cmd interp.Command) (bool, error) {
	switch c := cmd.(type) {
	case nil:
		return false, nil
	case interp.ConfigCmd:
		return false, d.handleConfig(c)
	case interp.InitCmd:
		return false, d.wallet.Init(c.Password)
	case interp.ListenCmd:
		return false, d.handleListen(c)
	case interp.SubscribeCmd:
		return false, d.wallet.Subscribe()
	case interp.UnsubscribeCmd:
		return false, d.wallet.Unsubscribe()
	case interp.StopCmd:
		d.wallet.StopClient()
		return false, nil
	case interp.InfoCmd:
		return false, d.wallet.Info(c.Password, defaultAccount)
	case interp.TxsCmd:
		return false, d.wallet.Txs(c.Password, defaultAccount)
	case interp.OutputsCmd:
		return false, d.wallet.Outputs(c.Password, defaultAccount, c.ShowSpent)
	case interp.RepostCmd:
		return false, d.wallet.Repost(c.Password, c.ID, false)
	case interp.CancelCmd:
		return false, d.handleCancel(c)
	case interp.SendCmd:
		return false, d.handleSend(c)
	case interp.RestoreCmd:
		return false, d.wallet.Restore(c.Password)
	case interp.ContactsCmd:
		return false, d.handleContacts(c)
	case interp.ChallengeCmd:
		return false, d.handleChallenge()
	case interp.HelpCmd:
		fmt.Fprint(d.out, helpText)
		return false, nil
	case interp.ExitCmd:
		d.wallet.StopClient()
		return true, nil
	case interp.UnknownCmd:
		fmt.Fprintf(d.out, "command `%s` not implemented\n", c.Name)
		return false, nil
	default:
		return false, fmt.Errorf("unhandled command %T", cmd)
	}
}

// handleConfig prints the record when no option was given; otherwise it
// applies the options and persists silently.
func (d *dispatcher) handleConfig(c interp.ConfigCmd) error {
	if c.Show {
		fmt.Fprintln(d.out, d.cfg.String())
		return nil
	}
	if err := config.ApplyFlags(d.cfg, c.Flags); err != nil {
		return err
	}
	if err := d.cfg.Save(d.cfgPath); err != nil {
		return err
	}
	d.log.Debug("configuration saved", "path", d.cfgPath)
	return nil
}

// handleListen re-reads the persisted record so that edits made outside
// the session take effect, then starts the relay client.
func (d *dispatcher) handleListen(c interp.ListenCmd) error {
	cfg, err := config.Load(d.cfgPath)
	if err != nil {
		return err
	}
	d.cfg = cfg
	if d.cfg.RelayPrivateKey == "" {
		return config.ErrMissingKeys
	}
	if d.cfg.RelayURI == "" {
		return &config.MissingValueError{Field: "relay uri"}
	}
	return d.wallet.StartClient(c.Password, d.cfg.RelayURI, d.cfg.RelayPrivateKey)
}

func (d *dispatcher) handleCancel(c interp.CancelCmd) error {
	if err := d.wallet.Cancel(c.Password, c.ID); err != nil {
		return err
	}
	fmt.Fprintf(d.out, "transaction %d canceled\n", c.ID)
	return nil
}

// handleSend resolves @name destinations through the address book, then
// posts the transaction with the session defaults.
func (d *dispatcher) handleSend(c interp.SendCmd) error {
	dest := c.To
	if name, ok := strings.CutPrefix(dest, "@"); ok {
		contact, err := d.book.Get(name)
		if err != nil {
			return err
		}
		dest = contact.PublicKey
	}
	slate, err := d.wallet.Send(c.Password, defaultAccount, dest, c.Amount,
		defaultMinConf, defaultStrategy, defaultChangeOutputs, defaultLockHeight)
	if err != nil {
		return err
	}
	fmt.Fprintf(d.out, "slate [%s] for [%s] sent successfully to [%s]\n",
		slate.ID, wallet.FormatAmount(c.Amount), c.To)
	return nil
}

func (d *dispatcher) handleContacts(c interp.ContactsCmd) error {
	switch c.Action {
	case interp.ContactAdd:
		if err := d.book.Add(contacts.Contact{Name: c.Name, PublicKey: c.Key}); err != nil {
			return err
		}
		fmt.Fprintf(d.out, "contact %s added\n", c.Name)
		return nil
	case interp.ContactRemove:
		if err := d.book.Remove(c.Name); err != nil {
			return err
		}
		fmt.Fprintf(d.out, "contact %s removed\n", c.Name)
		return nil
	default:
		return d.listContacts()
	}
}

func (d *dispatcher) listContacts() error {
	n, err := d.book.Len()
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(d.out, "your contact list is empty. to add a contact use `contacts add <name> <public-key>`")
		return nil
	}
	t := table.NewWriter()
	t.SetOutputMirror(d.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"name", "public key"})
	err = d.book.ForEach(func(c contacts.Contact) error {
		t.AppendRow(table.Row{c.Name, c.PublicKey})
		return nil
	})
	if err != nil {
		return err
	}
	t.Render()
	return nil
}

func (d *dispatcher) handleChallenge() error {
	if !d.wallet.Listening() {
		return relay.ErrNotStarted
	}
	fmt.Fprintln(d.out, d.wallet.Challenge())
	return nil
}

const helpText = `supported commands:
  config       print or update the configuration
  init         initialize the wallet
  listen       connect to the relay and listen for slates
  subscribe    re-arm the relay subscription
  unsubscribe  stop receiving slates without disconnecting
  stop         disconnect from the relay
  info         print the wallet balance summary
  txs          print the transaction log
  outputs      print wallet outputs
  send         send funds: send [password] --to <dest> --amount <coins>
  repost       rebroadcast an unconfirmed transaction: repost [password] <id>
  cancel       cancel a transaction: cancel [password] <id>
  restore      rescan the chain for wallet outputs
  contacts     manage the address book: contacts [add <name> <key> | remove <name>]
  challenge    print the current relay challenge
  help         print this message
  exit         leave the session
`
