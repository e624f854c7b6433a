package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kartikmehra/flowprompt/internal/capture"
	"github.com/kartikmehra/flowprompt/internal/cli"
	"github.com/kartikmehra/flowprompt/internal/clipboard"
	"github.com/kartikmehra/flowprompt/internal/config"
	apperrors "github.com/kartikmehra/flowprompt/internal/errors"
	"github.com/kartikmehra/flowprompt/internal/paste"
	"github.com/kartikmehra/flowprompt/internal/service"
	"github.com/kartikmehra/flowprompt/internal/ui"
)

var version = "1.0.0"

func printHelp() {
	fmt.Printf(`flowprompt - Prompt launcher for the terminal

USAGE:
    flowprompt [OPTIONS] [COMMAND]

OPTIONS:
    --help          Show this help information
    --version       Print version information
    --init          Initialize the prompt library and exit
    --dir           Library directory (default: ~/.flowprompt, or $FLOWPROMPT_DIR)

COMMANDS:
    (no command)       Start the interactive launcher
    list, ls           List all prompts
    search <query>     Ranked search across the library
    show <id>          Show a prompt
    copy <id>          Copy a prompt to the clipboard
    paste <id>         Paste a prompt into the focused app
    capture            Capture the focused app's selection
    categories         Manage categories
    help               Show CLI command help

Run 'flowprompt help' for the full command list.
`)
}

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help information")
		showVersion = flag.Bool("version", false, "Print version information")
		initLibrary = flag.Bool("init", false, "Initialize the prompt library")
		libraryDir  = flag.String("dir", "", "Library directory")
	)
	flag.Parse()

	if *showHelp {
		printHelp()
		return
	}

	if *showVersion {
		fmt.Printf("flowprompt %s\n", version)
		return
	}

	svc, err := service.NewService(*libraryDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *initLibrary {
		fmt.Printf("Initialized prompt library at %s\n", svc.RootPath())
		return
	}

	cfg, err := config.Load(svc.RootPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config, using defaults: %v\n", err)
		cfg = &config.Config{Settings: config.DefaultSettings()}
	}

	// Fall back to the in-process clipboard when no utility exists so
	// headless commands still work; pastes then only reach this process.
	var cb clipboard.Clipboard
	if clipboard.IsAvailable() {
		cb = clipboard.NewSystem()
	} else {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", clipboard.NewClipboardError())
		cb = clipboard.NewMemory()
	}
	guard := clipboard.NewGuard(cb)

	capturer := capture.New(guard, cfg.Settings.CaptureDelay())
	paster := paste.New(guard, cfg.Settings.PasteDelay())

	args := flag.Args()
	if len(args) > 0 {
		c := cli.NewCLI(svc, capturer, paster)
		if err := c.ExecuteCommand(args); err != nil {
			fmt.Fprintln(os.Stderr, apperrors.FormatCLI(err))
			os.Exit(1)
		}
		return
	}

	model, err := ui.NewModel(svc, capturer, paster, cli.SimulateCopyKeystroke, cli.SimulatePasteKeystroke)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// A quit mid-restore (ctrl+c during the delay window) must not
	// strand the pending clipboard restore.
	paster.Wait()
}
