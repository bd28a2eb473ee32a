// Package form implements the add/edit card form: a draft copy of a card,
// per-field validation and the open/closed lifecycle around it.
package form

import (
	"maps"

	"github.com/amterp/cardman/internal/model"
)

// Mode is the form's lifecycle state.
type Mode int

const (
	ModeClosed Mode = iota
	ModeAdd
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeAdd:
		return "add"
	case ModeEdit:
		return "edit"
	default:
		return "closed"
	}
}

// SaveHandler receives a validated draft with trimmed fields. The id is left
// as opened: 0 in add mode, the edited card's id in edit mode.
// Returning an error keeps the form open.
type SaveHandler func(draft model.Card, mode Mode) error

// Controller holds the form state. It isn't safe for concurrent use; each
// frontend session owns its own.
type Controller struct {
	mode   Mode
	draft  model.Card
	errors map[string]string
	onSave SaveHandler
}

// NewController creates a closed form that hands saved drafts to onSave.
func NewController(onSave SaveHandler) *Controller {
	return &Controller{
		errors: map[string]string{},
		onSave: onSave,
	}
}

// Open starts editing a copy of card, or a blank draft when card is nil.
// Any previous draft and errors are dropped.
func (c *Controller) Open(card *model.Card) {
	if card == nil {
		c.mode = ModeAdd
		c.draft = model.Card{}
	} else {
		c.mode = ModeEdit
		c.draft = *card
	}
	c.errors = map[string]string{}
}

// Cancel closes the form, discarding the draft and errors.
func (c *Controller) Cancel() {
	c.reset()
}

func (c *Controller) reset() {
	c.mode = ModeClosed
	c.draft = model.Card{}
	c.errors = map[string]string{}
}

// Mode returns the current lifecycle state.
func (c *Controller) Mode() Mode {
	return c.mode
}

// IsOpen reports whether a draft is being edited.
func (c *Controller) IsOpen() bool {
	return c.mode != ModeClosed
}

// Draft returns a copy of the working card.
func (c *Controller) Draft() model.Card {
	return c.draft
}

// SetTitle replaces the draft title.
func (c *Controller) SetTitle(title string) {
	c.draft.Title = title
}

// SetDescription replaces the draft description.
func (c *Controller) SetDescription(description string) {
	c.draft.Description = description
}

// Errors returns a copy of the field -> message mapping from the last
// validation.
func (c *Controller) Errors() map[string]string {
	return maps.Clone(c.errors)
}

// Validate checks the draft, replacing the error mapping.
// Returns true only if no field failed.
func (c *Controller) Validate() bool {
	errs := Validate(c.draft.Title, c.draft.Description)
	c.errors = map[string]string{}
	for field, msg := range errs {
		c.errors[field] = msg
	}
	return len(c.errors) == 0
}

// Save validates the draft and, when valid, emits it with trimmed fields and
// closes the form. It reports whether the draft was emitted and accepted.
// An invalid draft emits nothing and leaves the errors in place. A handler
// error keeps the form open and is returned.
func (c *Controller) Save() (bool, error) {
	if !c.IsOpen() {
		return false, nil
	}
	if !c.Validate() {
		return false, nil
	}

	out := c.draft
	out.Title = Trim(out.Title)
	out.Description = Trim(out.Description)

	if c.onSave != nil {
		if err := c.onSave(out, c.mode); err != nil {
			return false, err
		}
	}

	c.reset()
	return true, nil
}
