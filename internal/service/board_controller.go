package service

import (
	"fmt"

	kanerr "github.com/amterp/cardman/internal/errors"
	"github.com/amterp/cardman/internal/form"
	"github.com/amterp/cardman/internal/model"
)

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(title string, defaultValue bool) (bool, error)
}

// BoardController connects a card form and delete confirmation to the
// card service, the way an interactive board screen drives them.
type BoardController struct {
	cards     *CardService
	confirmer Confirmer
	form      *form.Controller
	lastSaved model.Card
}

// NewBoardController creates a controller with a closed form.
func NewBoardController(cards *CardService, confirmer Confirmer) *BoardController {
	c := &BoardController{
		cards:     cards,
		confirmer: confirmer,
	}
	c.form = form.NewController(c.save)
	return c
}

// Form exposes the form so frontends can fill in the draft.
func (c *BoardController) Form() *form.Controller {
	return c.form
}

// StartAdd opens the form with a blank draft.
func (c *BoardController) StartAdd() {
	c.form.Open(nil)
}

// StartEdit opens the form on a copy of the card with the given id.
func (c *BoardController) StartEdit(id int) error {
	card, ok := c.cards.GetCardByID(id)
	if !ok {
		return kanerr.CardNotFound(id)
	}
	c.form.Open(&card)
	return nil
}

// Cancel closes the form without saving.
func (c *BoardController) Cancel() {
	c.form.Cancel()
}

// Submit saves the form. saved is false when validation failed; the form
// stays open with its errors. On success it returns the stored card.
func (c *BoardController) Submit() (card model.Card, saved bool, err error) {
	saved, err = c.form.Save()
	if err != nil || !saved {
		return model.Card{}, false, err
	}
	return c.lastSaved, true, nil
}

func (c *BoardController) save(draft model.Card, mode form.Mode) error {
	switch mode {
	case form.ModeAdd:
		card, err := c.cards.AddCard(draft.Title, draft.Description)
		if err != nil {
			return err
		}
		c.lastSaved = card
	case form.ModeEdit:
		if err := c.cards.UpdateCard(draft); err != nil {
			return err
		}
		c.lastSaved = draft
	default:
		return fmt.Errorf("form saved in %s mode", mode)
	}
	return nil
}

// DeleteQuestion is the confirmation asked before deleting a card.
func DeleteQuestion(title string) string {
	return fmt.Sprintf("Are you sure you want to delete \"%s\"?", title)
}

// RequestDelete asks for confirmation and deletes the card only on yes.
// A missing card does nothing. It reports whether the card was deleted.
func (c *BoardController) RequestDelete(id int) (bool, error) {
	card, ok := c.cards.GetCardByID(id)
	if !ok {
		return false, nil
	}

	confirmed, err := c.confirmer.Confirm(DeleteQuestion(card.Title), false)
	if err != nil {
		return false, err
	}
	if !confirmed {
		return false, nil
	}

	if err := c.cards.DeleteCard(id); err != nil {
		return false, err
	}
	return true, nil
}
