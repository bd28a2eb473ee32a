package prompt

import (
	"github.com/charmbracelet/huh"

	"github.com/amterp/cardman/internal/form"
	"github.com/amterp/cardman/internal/model"
)

// HuhPrompter implements Prompter using the charmbracelet/huh library.
type HuhPrompter struct{}

// NewHuhPrompter creates a new huh-based prompter.
func NewHuhPrompter() *HuhPrompter {
	return &HuhPrompter{}
}

func (p *HuhPrompter) Input(title, defaultValue string, validate func(string) error) (string, error) {
	result := defaultValue

	input := huh.NewInput().
		Title(title).
		Value(&result)
	if validate != nil {
		input = input.Validate(validate)
	}

	err := input.Run()
	return result, err
}

func (p *HuhPrompter) Confirm(title string, defaultValue bool) (bool, error) {
	result := defaultValue

	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&result).
		Run()

	return result, err
}

func (p *HuhPrompter) CardForm(heading string, draft model.Card) (model.Card, error) {
	title := draft.Title
	description := draft.Description

	f := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title(heading),
			huh.NewInput().
				Title("Title").
				Value(&title).
				Validate(form.ValidateTitle),
			huh.NewText().
				Title("Description").
				Description("At least 10 characters").
				Value(&description).
				Validate(form.ValidateDescription),
		),
	)
	if err := f.Run(); err != nil {
		return model.Card{}, err
	}

	draft.Title = title
	draft.Description = description
	return draft, nil
}
