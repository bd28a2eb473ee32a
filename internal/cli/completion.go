package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/amterp/cardman/internal/config"
	"github.com/amterp/cardman/internal/kv"
	"github.com/amterp/cardman/internal/model"
	"github.com/amterp/cardman/internal/store"
	"github.com/amterp/ra"
)

// completionCtx provides read-only card access for shell completion.
// Completion functions run during ParseOrExit, before NewApp() is called,
// and must never seed or rewrite storage.
type completionCtx struct {
	once  sync.Once
	cards []model.Card
	err   error
}

var compCtx completionCtx

func initCompletionCtx() {
	compCtx.once.Do(func() {
		cfg, err := store.NewConfigStore(configFromArgs(os.Args)).Load()
		if err != nil {
			compCtx.err = err
			return
		}

		storage, err := kv.Open(cfg.Backend, config.NewPaths(cfg.DataDir), cfg.Quota())
		if err != nil {
			compCtx.err = err
			return
		}
		defer storage.Close()

		cards, _, err := store.NewCardStore(storage, cfg.StorageKey).Load()
		compCtx.cards, compCtx.err = cards, err
	})
}

// completeCards returns card IDs matching the given prefix.
func completeCards(toComplete string) ([]string, ra.CompletionDirective) {
	initCompletionCtx()
	if compCtx.err != nil {
		return nil, ra.CompletionDirectiveNoFileComp
	}
	return matchCardIDs(compCtx.cards, toComplete), ra.CompletionDirectiveNoFileComp
}

func matchCardIDs(cards []model.Card, prefix string) []string {
	var result []string
	for _, card := range cards {
		id := strconv.Itoa(card.ID)
		if strings.HasPrefix(id, prefix) {
			result = append(result, id)
		}
	}
	return result
}

// configFromArgs scans the argument list for an explicit --config value.
func configFromArgs(args []string) string {
	for i, arg := range args {
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// registerCompletion adds the "cardman completion <shell>" command.
func registerCompletion(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("completion")
	cmd.SetDescription("Output shell completion script")

	ctx.CompletionShell, _ = ra.NewString("shell").
		SetUsage("Shell type").
		SetEnumConstraint([]string{"bash", "zsh"}).
		Register(cmd)

	ctx.CompletionUsed, _ = parent.RegisterCmd(cmd)
}

// runCompletion outputs the shell completion script to stdout.
func runCompletion(shell string, rootCmd *ra.Cmd) {
	var err error
	switch shell {
	case "bash":
		err = rootCmd.GenBashCompletion(os.Stdout)
	case "zsh":
		err = rootCmd.GenZshCompletion(os.Stdout)
	default:
		Fatal(fmt.Errorf("unsupported shell: %s (supported: bash, zsh)", shell))
	}
	if err != nil {
		Fatal(fmt.Errorf("failed to generate completion script: %w", err))
	}
}
