package cli

import (
	"fmt"

	"github.com/amterp/cardman/internal/form"
	"github.com/amterp/ra"
)

// EditInput carries the edit command's optional field changes.
// Empty strings leave the field as it is.
type EditInput struct {
	Title       string
	Description string
	UseEditor   bool
}

func (in EditInput) hasFieldFlags() bool {
	return in.Title != "" || in.Description != ""
}

func registerEdit(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("edit")
	cmd.SetDescription("Edit a card")

	ctx.EditCard, _ = ra.NewString("card").
		SetUsage("Card ID").
		SetCompletionFunc(completeCards).
		Register(cmd)

	ctx.EditTitle, _ = ra.NewString("title").
		SetShort("t").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("New title").
		Register(cmd)

	ctx.EditDescription, _ = ra.NewString("description").
		SetShort("d").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("New description").
		Register(cmd)

	ctx.EditEditor, _ = ra.NewBool("editor").
		SetShort("e").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Edit the description in $EDITOR").
		Register(cmd)

	ctx.EditUsed, _ = parent.RegisterCmd(cmd)
}

func runEdit(app *App, idArg string, input EditInput, jsonOutput bool) error {
	id, err := parseCardID(idArg)
	if err != nil {
		return err
	}

	board := app.Board()
	if err := board.StartEdit(id); err != nil {
		return err
	}
	f := board.Form()
	original := f.Draft()

	if input.Title != "" {
		f.SetTitle(input.Title)
	}
	if input.Description != "" {
		f.SetDescription(input.Description)
	}

	switch {
	case input.UseEditor:
		edited, err := app.Editor.Edit(f.Draft().Description)
		if err != nil {
			return fmt.Errorf("editor failed: %w", err)
		}
		f.SetDescription(edited)

	case !input.hasFieldFlags():
		if !app.Interactive {
			return fmt.Errorf("nothing to change for card %d: pass --title or --description in non-interactive mode", id)
		}
		draft, err := app.Prompter.CardForm(fmt.Sprintf("Edit card #%d", id), f.Draft())
		if err != nil {
			return err
		}
		f.SetTitle(draft.Title)
		f.SetDescription(draft.Description)
	}

	if draft := f.Draft(); form.Trim(draft.Title) == original.Title &&
		form.Trim(draft.Description) == original.Description {
		board.Cancel()
		PrintInfo(app.Out, "No changes made")
		return nil
	}

	card, err := submitCard(board)
	if err != nil {
		return err
	}
	app.WarnIfUnsaved()

	if jsonOutput {
		return printJson(app.Out, CardOutput{Card: card})
	}
	PrintSuccess(app.Out, "Updated card %s %q", RenderID(card.ID), card.Title)
	return nil
}
