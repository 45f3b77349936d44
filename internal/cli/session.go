package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapwallet/internal/cli/interp"
	"github.com/leapstack-labs/leapwallet/internal/config"
	"github.com/leapstack-labs/leapwallet/internal/contacts"
	"github.com/leapstack-labs/leapwallet/internal/keys"
	"github.com/leapstack-labs/leapwallet/internal/node"
	"github.com/leapstack-labs/leapwallet/internal/wallet"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	addressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// runSession starts the interactive wallet session and blocks until the
// user exits.
func runSession(cmd *cobra.Command, cfgPath string) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	logger := newLogger(errOut)

	cfg, err := config.LoadOrCreate(cfgPath)
	if err != nil {
		return err
	}

	address, err := keys.AddressFromSecret(cfg.RelayPrivateKey)
	if err != nil {
		return fmt.Errorf("derive relay address: %w", err)
	}

	// A broken address book is a hard failure: contact resolution and
	// storage are useless without it.
	book, err := contacts.Open(cfg.DataPath, logger)
	if err != nil {
		return fmt.Errorf("open address book: %w", err)
	}
	defer func() { _ = book.Close() }()

	numContacts, err := book.Len()
	if err != nil {
		return fmt.Errorf("open address book: %w", err)
	}
	printWelcome(out, address, numContacts)

	w := wallet.New(node.New(cfg.NodeURI, cfg.NodeSecret, logger), out, logger)
	defer w.StopClient()

	d := &dispatcher{
		cfgPath: cfgPath,
		cfg:     cfg,
		wallet:  w,
		book:    book,
		out:     out,
		log:     logger,
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "leapwallet> ",
		HistoryFile:     filepath.Join(cfg.DataPath, "history"),
		AutoComplete:    newCommandCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize session: %w", err)
	}
	defer func() { _ = rl.Close() }()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		command, err := interp.Parse(line)
		if err != nil {
			printError(errOut, err)
			continue
		}
		quit, err := d.dispatch(command)
		if err != nil {
			printError(errOut, err)
			continue
		}
		if quit {
			return nil
		}
	}
}

func printWelcome(out io.Writer, address string, numContacts int) {
	_, _ = fmt.Fprintln(out, titleStyle.Render("Welcome to leapwallet"))
	_, _ = fmt.Fprintf(out, "your relay address: %s\n", addressStyle.Render(address))
	if numContacts > 0 {
		_, _ = fmt.Fprintf(out, "address book: %d contacts\n", numContacts)
	}
	_, _ = fmt.Fprintln(out, "type `help` for a list of commands")
	_, _ = fmt.Fprintln(out)
}

func printError(out io.Writer, err error) {
	_, _ = fmt.Fprintf(out, "%s %v\n", errorStyle.Render("error:"), err)
}

// newCommandCompleter builds tab completion for the session grammar.
func newCommandCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("config",
			readline.PcItem("--data-path"),
			readline.PcItem("--uri"),
			readline.PcItem("--private-key"),
			readline.PcItem("--node-uri"),
			readline.PcItem("--node-secret"),
			readline.PcItem("--generate-keys"),
		),
		readline.PcItem("init"),
		readline.PcItem("listen"),
		readline.PcItem("subscribe"),
		readline.PcItem("unsubscribe"),
		readline.PcItem("stop"),
		readline.PcItem("info"),
		readline.PcItem("txs"),
		readline.PcItem("outputs", readline.PcItem("--show-spent")),
		readline.PcItem("send", readline.PcItem("--to"), readline.PcItem("--amount")),
		readline.PcItem("repost"),
		readline.PcItem("cancel"),
		readline.PcItem("restore"),
		readline.PcItem("contacts",
			readline.PcItem("add"),
			readline.PcItem("remove"),
		),
		readline.PcItem("challenge"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}
