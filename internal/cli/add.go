package cli

import (
	kanerr "github.com/amterp/cardman/internal/errors"
	"github.com/amterp/cardman/internal/model"
	"github.com/amterp/cardman/internal/service"
	"github.com/amterp/ra"
)

func registerAdd(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("add")
	cmd.SetDescription("Add a new card (prompts for anything missing)")

	ctx.AddTitle, _ = ra.NewString("title").
		SetOptional(true).
		SetUsage("Card title").
		Register(cmd)

	ctx.AddDescription, _ = ra.NewString("description").
		SetOptional(true).
		SetUsage("Card description (at least 10 characters)").
		Register(cmd)

	ctx.AddUsed, _ = parent.RegisterCmd(cmd)
}

func runAdd(app *App, title, description string, jsonOutput bool) error {
	board := app.Board()
	board.StartAdd()

	f := board.Form()
	f.SetTitle(title)
	f.SetDescription(description)

	if (title == "" || description == "") && app.Interactive {
		draft, err := app.Prompter.CardForm("New card", f.Draft())
		if err != nil {
			return err
		}
		f.SetTitle(draft.Title)
		f.SetDescription(draft.Description)
	}

	card, err := submitCard(board)
	if err != nil {
		return err
	}
	app.WarnIfUnsaved()

	if jsonOutput {
		return printJson(app.Out, CardOutput{Card: card})
	}
	PrintSuccess(app.Out, "Added card %s %q", RenderID(card.ID), card.Title)
	return nil
}

// submitCard saves the open form, turning a failed validation into the
// form's field errors.
func submitCard(board *service.BoardController) (model.Card, error) {
	card, saved, err := board.Submit()
	if err != nil {
		return model.Card{}, err
	}
	if !saved {
		return model.Card{}, kanerr.FieldErrors(board.Form().Errors())
	}
	return card, nil
}
