package prompt

import (
	"errors"

	"github.com/amterp/cardman/internal/model"
)

// ErrNonInteractive is returned when prompting in non-interactive mode.
var ErrNonInteractive = errors.New("cannot prompt in non-interactive mode")

// Prompter defines the interface for interactive user prompts.
type Prompter interface {
	// Input prompts for one line of text. validate may be nil.
	Input(title, defaultValue string, validate func(string) error) (string, error)

	// Confirm prompts for yes/no.
	Confirm(title string, defaultValue bool) (bool, error)

	// CardForm asks for a card's title and description, starting from
	// draft. Fields are validated with the card form rules before the
	// form can be submitted.
	CardForm(heading string, draft model.Card) (model.Card, error)
}

// NoopPrompter returns errors for all prompts (non-interactive mode).
type NoopPrompter struct{}

func (p *NoopPrompter) Input(string, string, func(string) error) (string, error) {
	return "", ErrNonInteractive
}

func (p *NoopPrompter) Confirm(string, bool) (bool, error) {
	return false, ErrNonInteractive
}

func (p *NoopPrompter) CardForm(string, model.Card) (model.Card, error) {
	return model.Card{}, ErrNonInteractive
}
