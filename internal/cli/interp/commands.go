package interp

import "github.com/spf13/pflag"

// Command is the closed set of parsed session commands. A successfully
// parsed command has every required field present and type-checked;
// handlers only perform domain validation.
type Command interface {
	command()
}

// ConfigCmd shows or updates the persisted configuration. Flags carries
// the parsed option set; only explicitly set flags override record
// fields. Show is set when no option was given.
type ConfigCmd struct {
	Flags *pflag.FlagSet
	Show  bool
}

// InitCmd initializes the wallet.
type InitCmd struct {
	Password string
}

// ListenCmd connects the relay client.
type ListenCmd struct {
	Password string
}

// SubscribeCmd re-arms the relay subscription.
type SubscribeCmd struct{}

// UnsubscribeCmd drops the relay subscription.
type UnsubscribeCmd struct{}

// StopCmd disconnects the relay client.
type StopCmd struct{}

// InfoCmd prints the balance summary.
type InfoCmd struct {
	Password string
}

// TxsCmd prints the transaction log.
type TxsCmd struct {
	Password string
}

// OutputsCmd prints wallet outputs.
type OutputsCmd struct {
	Password  string
	ShowSpent bool
}

// RepostCmd rebroadcasts a transaction.
type RepostCmd struct {
	Password string
	ID       uint32
}

// CancelCmd cancels a transaction.
type CancelCmd struct {
	Password string
	ID       uint32
}

// SendCmd sends funds. Amount is already converted to smallest units.
type SendCmd struct {
	Password string
	To       string
	Amount   uint64
}

// RestoreCmd rescans the chain for wallet outputs.
type RestoreCmd struct {
	Password string
}

// ContactAction selects the contacts subcommand.
type ContactAction int

const (
	ContactList ContactAction = iota
	ContactAdd
	ContactRemove
)

// ContactsCmd manages the address book.
type ContactsCmd struct {
	Action ContactAction
	Name   string
	Key    string
}

// ChallengeCmd prints the relay challenge string.
type ChallengeCmd struct{}

// HelpCmd lists the available commands.
type HelpCmd struct{}

// ExitCmd terminates the session.
type ExitCmd struct{}

// UnknownCmd carries a command name the grammar does not recognize. The
// dispatcher reports it without aborting the session.
type UnknownCmd struct {
	Name string
}

func (ConfigCmd) command()      {}
func (InitCmd) command()        {}
func (ListenCmd) command()      {}
func (SubscribeCmd) command()   {}
func (UnsubscribeCmd) command() {}
func (StopCmd) command()        {}
func (InfoCmd) command()        {}
func (TxsCmd) command()         {}
func (OutputsCmd) command()     {}
func (RepostCmd) command()      {}
func (CancelCmd) command()      {}
func (SendCmd) command()        {}
func (RestoreCmd) command()     {}
func (ContactsCmd) command()    {}
func (ChallengeCmd) command()   {}
func (HelpCmd) command()        {}
func (ExitCmd) command()        {}
func (UnknownCmd) command()     {}
