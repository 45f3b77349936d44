// Package interp turns one line of session input into a typed command.
//
// The grammar is a command name followed by space-separated flags and
// positional arguments, with one level of subcommand nesting for
// `contacts`. Only syntax and type coercion are checked here; whether a
// contact or transaction actually exists is the handlers' business.
package interp

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/leapstack-labs/leapwallet/internal/wallet"
)

// SyntaxError reports a malformed command line, identifying the
// offending token.
type SyntaxError struct {
	Token string
	Msg   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %q", e.Msg, e.Token)
}

// InvalidTxIDError reports a transaction ID that is not an integer.
type InvalidTxIDError struct {
	Raw string
}

func (e *InvalidTxIDError) Error() string {
	return fmt.Sprintf("invalid transaction id %q", e.Raw)
}

// Parse converts a line of input into a command. A blank line yields
// (nil, nil): no command, no output.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}
	name, args := fields[0], fields[1:]

	switch name {
	case "config":
		return parseConfig(args)
	case "init":
		pw, err := optionalPassword(name, args)
		return InitCmd{Password: pw}, err
	case "listen":
		pw, err := optionalPassword(name, args)
		return ListenCmd{Password: pw}, err
	case "subscribe":
		return SubscribeCmd{}, noArgs(name, args)
	case "unsubscribe":
		return UnsubscribeCmd{}, noArgs(name, args)
	case "stop":
		return StopCmd{}, noArgs(name, args)
	case "info":
		pw, err := optionalPassword(name, args)
		return InfoCmd{Password: pw}, err
	case "txs":
		pw, err := optionalPassword(name, args)
		return TxsCmd{Password: pw}, err
	case "outputs":
		return parseOutputs(args)
	case "repost":
		pw, id, err := passwordAndID(name, args)
		return RepostCmd{Password: pw, ID: id}, err
	case "cancel":
		pw, id, err := passwordAndID(name, args)
		return CancelCmd{Password: pw, ID: id}, err
	case "send":
		return parseSend(args)
	case "restore":
		pw, err := optionalPassword(name, args)
		return RestoreCmd{Password: pw}, err
	case "contacts":
		return parseContacts(args)
	case "challenge":
		return ChallengeCmd{}, noArgs(name, args)
	case "help":
		return HelpCmd{}, noArgs(name, args)
	case "exit", "quit":
		return ExitCmd{}, noArgs(name, args)
	default:
		return UnknownCmd{Name: name}, nil
	}
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	return fs
}

func parseConfig(args []string) (Command, error) {
	fs := newFlagSet("config")
	fs.String("data-path", "", "wallet data location")
	fs.String("uri", "", "relay uri")
	fs.String("private-key", "", "relay private key")
	fs.String("node-uri", "", "node api uri")
	fs.String("node-secret", "", "node api secret")
	fs.Bool("generate-keys", false, "generate a fresh relay keypair")
	if err := fs.Parse(args); err != nil {
		return nil, flagError("config", err)
	}
	if len(fs.Args()) > 0 {
		return nil, &SyntaxError{Token: fs.Args()[0], Msg: "unexpected argument"}
	}
	return ConfigCmd{Flags: fs, Show: fs.NFlag() == 0}, nil
}

func parseOutputs(args []string) (Command, error) {
	fs := newFlagSet("outputs")
	showSpent := fs.Bool("show-spent", false, "include spent outputs")
	if err := fs.Parse(args); err != nil {
		return nil, flagError("outputs", err)
	}
	pw, err := optionalPassword("outputs", fs.Args())
	if err != nil {
		return nil, err
	}
	return OutputsCmd{Password: pw, ShowSpent: *showSpent}, nil
}

func parseSend(args []string) (Command, error) {
	fs := newFlagSet("send")
	to := fs.String("to", "", "destination address or contact")
	amount := fs.String("amount", "", "amount in whole coins")
	if err := fs.Parse(args); err != nil {
		return nil, flagError("send", err)
	}
	pw, err := optionalPassword("send", fs.Args())
	if err != nil {
		return nil, err
	}
	if !fs.Changed("to") {
		return nil, &SyntaxError{Token: "--to", Msg: "missing required option"}
	}
	if !fs.Changed("amount") {
		return nil, &SyntaxError{Token: "--amount", Msg: "missing required option"}
	}
	units, err := wallet.ParseAmount(*amount)
	if err != nil {
		return nil, err
	}
	return SendCmd{Password: pw, To: *to, Amount: units}, nil
}

func parseContacts(args []string) (Command, error) {
	if len(args) == 0 {
		return ContactsCmd{Action: ContactList}, nil
	}
	switch args[0] {
	case "add":
		if len(args) < 3 {
			missing := "name"
			if len(args) == 2 {
				missing = "public-key"
			}
			return nil, &SyntaxError{Token: missing, Msg: "missing required argument"}
		}
		if len(args) > 3 {
			return nil, &SyntaxError{Token: args[3], Msg: "unexpected argument"}
		}
		return ContactsCmd{Action: ContactAdd, Name: args[1], Key: args[2]}, nil
	case "remove":
		if len(args) < 2 {
			return nil, &SyntaxError{Token: "name", Msg: "missing required argument"}
		}
		if len(args) > 2 {
			return nil, &SyntaxError{Token: args[2], Msg: "unexpected argument"}
		}
		return ContactsCmd{Action: ContactRemove, Name: args[1]}, nil
	default:
		return nil, &SyntaxError{Token: args[0], Msg: "unknown contacts subcommand"}
	}
}

// optionalPassword parses commands of the form `name [password]`. The
// password defaults to the empty string.
func optionalPassword(name string, args []string) (string, error) {
	switch len(args) {
	case 0:
		return "", nil
	case 1:
		return args[0], nil
	default:
		return "", &SyntaxError{Token: args[1], Msg: "unexpected argument"}
	}
}

// passwordAndID parses commands of the form `name [password] <id>`.
func passwordAndID(name string, args []string) (string, uint32, error) {
	var pw, raw string
	switch len(args) {
	case 1:
		raw = args[0]
	case 2:
		pw, raw = args[0], args[1]
	case 0:
		return "", 0, &SyntaxError{Token: "id", Msg: "missing required argument"}
	default:
		return "", 0, &SyntaxError{Token: args[2], Msg: "unexpected argument"}
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return "", 0, &InvalidTxIDError{Raw: raw}
	}
	return pw, uint32(id), nil
}

func noArgs(name string, args []string) error {
	if len(args) > 0 {
		return &SyntaxError{Token: args[0], Msg: "unexpected argument"}
	}
	return nil
}

func flagError(name string, err error) error {
	token := name
	if msg := err.Error(); strings.Contains(msg, "--") {
		if i := strings.Index(msg, "--"); i >= 0 {
			token = strings.Fields(msg[i:])[0]
		}
	}
	return &SyntaxError{Token: token, Msg: "invalid option"}
}
