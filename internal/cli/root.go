package cli

import (
	"errors"
	"os"

	"github.com/amterp/ra"
)

// CommandContext holds parsed values and used flags for all commands.
type CommandContext struct {
	// Global flags
	NonInteractive *bool
	Json           *bool
	ConfigPath     *string

	// list command
	ListUsed *bool

	// show command
	ShowUsed *bool
	ShowCard *string

	// add command
	AddUsed        *bool
	AddTitle       *string
	AddDescription *string

	// edit command
	EditUsed        *bool
	EditCard        *string
	EditTitle       *string
	EditDescription *string
	EditEditor      *bool

	// delete command
	DeleteUsed  *bool
	DeleteCard  *string
	DeleteForce *bool

	// serve command
	ServeUsed   *bool
	ServePort   *int
	ServeNoOpen *bool

	// doctor command
	DoctorUsed   *bool
	DoctorFix    *bool
	DoctorDryRun *bool

	// completion command
	CompletionUsed  *bool
	CompletionShell *string
}

// errUnhealthy makes the process exit 1 without printing anything more.
var errUnhealthy = errors.New("unhealthy")

// Run is the main entry point for the CLI.
func Run() {
	ctx := &CommandContext{}

	cmd := ra.NewCmd("cardman")
	cmd.SetDescription("Keep a small list of cards from the terminal or the browser")

	ctx.NonInteractive, _ = ra.NewBool("non-interactive").
		SetShort("I").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Fail instead of prompting for missing input").
		Register(cmd, ra.WithGlobal(true))

	ctx.Json, _ = ra.NewBool("json").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Print machine-readable JSON").
		Register(cmd, ra.WithGlobal(true))

	ctx.ConfigPath, _ = ra.NewString("config").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Config file (default: ~/.config/cardman/config.toml)").
		Register(cmd, ra.WithGlobal(true))

	registerList(cmd, ctx)
	registerShow(cmd, ctx)
	registerAdd(cmd, ctx)
	registerEdit(cmd, ctx)
	registerDelete(cmd, ctx)
	registerServe(cmd, ctx)
	registerDoctor(cmd, ctx)
	registerCompletion(cmd, ctx)

	cmd.ParseOrExit(os.Args[1:])

	if *ctx.CompletionUsed {
		runCompletion(*ctx.CompletionShell, cmd)
		return
	}

	if err := executeCommand(ctx); err != nil {
		if errors.Is(err, errUnhealthy) {
			os.Exit(1)
		}
		Fatal(err)
	}
}

func executeCommand(ctx *CommandContext) error {
	app, err := NewApp(*ctx.ConfigPath, !*ctx.NonInteractive)
	if err != nil && *ctx.DoctorUsed {
		PrintWarning(os.Stderr, "Config not loaded (%v); checking with defaults", err)
		app, err = NewDefaultsApp(*ctx.ConfigPath, !*ctx.NonInteractive)
	}
	if err != nil {
		return err
	}
	defer app.Close()

	jsonOutput := *ctx.Json

	switch {
	case *ctx.ListUsed:
		return runList(app, jsonOutput)

	case *ctx.ShowUsed:
		return runShow(app, *ctx.ShowCard, jsonOutput)

	case *ctx.AddUsed:
		return runAdd(app, *ctx.AddTitle, *ctx.AddDescription, jsonOutput)

	case *ctx.EditUsed:
		return runEdit(app, *ctx.EditCard, EditInput{
			Title:       *ctx.EditTitle,
			Description: *ctx.EditDescription,
			UseEditor:   *ctx.EditEditor,
		}, jsonOutput)

	case *ctx.DeleteUsed:
		return runDelete(app, *ctx.DeleteCard, *ctx.DeleteForce)

	case *ctx.ServeUsed:
		return runServe(app, *ctx.ServePort, *ctx.ServeNoOpen)

	case *ctx.DoctorUsed:
		return runDoctor(app, *ctx.DoctorFix, *ctx.DoctorDryRun, jsonOutput)
	}
	return nil
}
