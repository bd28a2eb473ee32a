package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/amterp/cardman/internal/model"
)

// CardOutput wraps a single card for JSON output.
type CardOutput struct {
	Card model.Card `json:"card"`
}

// ListOutput wraps a list of cards for JSON output.
type ListOutput struct {
	Cards []model.Card `json:"cards"`
}

// NewListOutput creates a ListOutput.
// Always returns an empty array (not null) when there are no cards.
func NewListOutput(cards []model.Card) ListOutput {
	return ListOutput{Cards: model.CloneCards(cards)}
}

// DeleteOutput reports the outcome of a delete for JSON output.
type DeleteOutput struct {
	ID      int  `json:"id"`
	Deleted bool `json:"deleted"`
}

// printJson marshals the value as indented JSON and prints it to w.
func printJson(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(output))
	return nil
}
