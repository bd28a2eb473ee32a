package cli

import (
	"errors"
	"fmt"

	"github.com/amterp/cardman/internal/prompt"
	"github.com/amterp/ra"
)

func registerDelete(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("delete")
	cmd.SetDescription("Delete a card")

	ctx.DeleteCard, _ = ra.NewString("card").
		SetUsage("Card ID").
		SetCompletionFunc(completeCards).
		Register(cmd)

	ctx.DeleteForce, _ = ra.NewBool("force").
		SetShort("f").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Skip confirmation (required in non-interactive mode)").
		Register(cmd)

	ctx.DeleteUsed, _ = parent.RegisterCmd(cmd)
}

func runDelete(app *App, idArg string, force bool) error {
	id, err := parseCardID(idArg)
	if err != nil {
		return err
	}

	cards := app.CardService()
	card, ok := cards.GetCardByID(id)
	if !ok {
		PrintInfo(app.Out, "No card %s, nothing to delete", RenderID(id))
		return nil
	}

	if force {
		if err := cards.DeleteCard(id); err != nil {
			return err
		}
	} else {
		deleted, err := app.Board().RequestDelete(id)
		if errors.Is(err, prompt.ErrNonInteractive) {
			return fmt.Errorf("deleting card %d %q requires --force in non-interactive mode", id, card.Title)
		}
		if err != nil {
			return err
		}
		if !deleted {
			PrintInfo(app.Out, "Cancelled")
			return nil
		}
	}
	app.WarnIfUnsaved()

	PrintSuccess(app.Out, "Deleted card %s %q", RenderID(id), card.Title)
	return nil
}
