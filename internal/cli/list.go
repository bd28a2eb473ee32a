package cli

import (
	"fmt"

	"github.com/amterp/ra"
)

func registerList(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("list")
	cmd.SetDescription("List cards in display order")

	ctx.ListUsed, _ = parent.RegisterCmd(cmd)
}

func runList(app *App, jsonOutput bool) error {
	cards := app.CardService().Cards()

	if jsonOutput {
		return printJson(app.Out, NewListOutput(cards))
	}

	if len(cards) == 0 {
		PrintInfo(app.Out, "No cards")
		return nil
	}

	for _, card := range cards {
		fmt.Fprintf(app.Out, "%s  %s\n", RenderID(card.ID), RenderBold(card.Title))
		if card.Description != "" {
			fmt.Fprintf(app.Out, "      %s\n", RenderMuted(Truncate(card.Description, 72)))
		}
	}
	return nil
}
