// Command install writes the editor snippet file for this crate.
//
// It merges extra_snippets.json with the output of `cargo snippet -t vscode`
// and writes the result to the destination given on the command line:
//
//	install ~/.config/Code/User/snippets/rust.json
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alanbuscaglia/snipinstall/internal/generator"
	"github.com/alanbuscaglia/snipinstall/internal/setup"

	"github.com/spf13/cobra"
)

var version = "dev"

const (
	usageLine       = "Usage: install DEST_FILE"
	overwritePrompt = "Are you sure to overwrite existing file? [Y/n]: "
)

var errUsage = errors.New("missing destination")

var (
	exitFunc = os.Exit
	getwd    = os.Getwd

	checkDestination = setup.CheckDestination
	installSnippets  = setup.Install
	readAnswer       = func() (string, error) {
		return bufio.NewReader(os.Stdin).ReadString('\n')
	}
)

type options struct {
	root    string
	extra   string
	yes     bool
	verbose bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		handleError(err)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:     "install [flags] DEST_FILE",
		Short:   "Install VSCode snippets merged with extra_snippets.json",
		Version: version,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errUsage
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			return run(opts, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.root, "root", "r", "", "repository root the generator runs in (default: current directory)")
	flags.StringVarP(&opts.extra, "extra", "e", "", "extra snippets file (default: <root>/"+setup.ExtraSnippetsFile+")")
	flags.BoolVarP(&opts.yes, "yes", "y", false, "overwrite an existing destination without asking")
	flags.BoolVar(&opts.verbose, "verbose", false, "print a summary of the merged snippets")

	return cmd
}

func run(opts *options, dest string) error {
	root := opts.root
	if root == "" {
		wd, err := getwd()
		if err != nil {
			return fmt.Errorf("resolve working directory: %w", err)
		}
		root = wd
	}

	cfg := setup.DefaultConfig(root)
	if opts.extra != "" {
		cfg.ExtraPath = opts.extra
	}

	exists, err := checkDestination(dest)
	if err != nil {
		return err
	}
	if exists && !opts.yes {
		ok, err := confirmOverwrite()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	result, err := installSnippets(cfg, dest)
	if err != nil {
		return err
	}

	if opts.verbose {
		fmt.Printf("Wrote %d snippets to %s (%d extra, %d generated, %d overridden)\n",
			result.Total, result.Destination, result.Extra, result.Generated, result.Overridden)
	}
	fmt.Println("Done.")
	return nil
}

// confirmOverwrite asks before replacing an existing destination. Only "y" or
// "Y" confirms; the line terminator is the only thing stripped from the answer.
func confirmOverwrite() (bool, error) {
	fmt.Print(overwritePrompt)

	answer, err := readAnswer()
	if err != nil && (!errors.Is(err, io.EOF) || answer == "") {
		return false, fmt.Errorf("read answer: %w", err)
	}
	answer = strings.TrimSuffix(strings.TrimSuffix(answer, "\n"), "\r")
	return strings.EqualFold(answer, "y"), nil
}

func handleError(err error) {
	var exitErr *generator.ExitError
	switch {
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, usageLine)
		exitFunc(1)
	case errors.As(err, &exitErr):
		fmt.Fprintln(os.Stderr, string(exitErr.Stderr))
		exitFunc(1)
	default:
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "install: %s\n", err)
	exitFunc(1)
}
