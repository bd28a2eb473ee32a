package cli

import (
	"fmt"
	"io"

	kanerr "github.com/amterp/cardman/internal/errors"
	"github.com/amterp/cardman/internal/model"
	"github.com/amterp/ra"
)

func registerShow(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("show")
	cmd.SetDescription("Display card details")

	ctx.ShowCard, _ = ra.NewString("card").
		SetUsage("Card ID").
		SetCompletionFunc(completeCards).
		Register(cmd)

	ctx.ShowUsed, _ = parent.RegisterCmd(cmd)
}

func runShow(app *App, idArg string, jsonOutput bool) error {
	id, err := parseCardID(idArg)
	if err != nil {
		return err
	}

	card, ok := app.CardService().GetCardByID(id)
	if !ok {
		return kanerr.CardNotFound(id)
	}

	if jsonOutput {
		return printJson(app.Out, CardOutput{Card: card})
	}
	printCard(app.Out, card)
	return nil
}

func printCard(w io.Writer, card model.Card) {
	const labelWidth = 6

	fmt.Fprintln(w, TitleBox(card.Title))
	fmt.Fprintln(w)
	fmt.Fprintln(w, LabelValue("ID", RenderID(card.ID), labelWidth))
	fmt.Fprintln(w)
	fmt.Fprintln(w, RenderMuted("Description:"))
	fmt.Fprintln(w, Indent(card.Description))
}
