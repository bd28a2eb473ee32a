package form

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	kanerr "github.com/amterp/cardman/internal/errors"
	"golang.org/x/text/unicode/norm"
)

// Field names used as keys in the error mapping.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
)

// MinDescriptionLength is the shortest accepted description, in characters,
// after trimming.
const MinDescriptionLength = 10

const (
	MsgTitleRequired       = "Title is required"
	MsgDescriptionRequired = "Description is required"
	MsgDescriptionTooShort = "Description must be at least 10 characters"
)

// Trim strips leading and trailing whitespace, including the byte order mark.
func Trim(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

// Length counts the characters of s as a reader would: runes of its NFC form,
// so "é" typed as e + combining accent is one character.
func Length(s string) int {
	return utf8.RuneCountInString(norm.NFC.String(s))
}

// TitleMessage returns the error message for title, or "" when it's valid.
func TitleMessage(title string) string {
	if Trim(title) == "" {
		return MsgTitleRequired
	}
	return ""
}

// DescriptionMessage returns the error message for description, or "" when
// it's valid.
func DescriptionMessage(description string) string {
	trimmed := Trim(description)
	switch {
	case trimmed == "":
		return MsgDescriptionRequired
	case Length(trimmed) < MinDescriptionLength:
		return MsgDescriptionTooShort
	}
	return ""
}

// ValidateTitle adapts TitleMessage to the func(string) error shape
// interactive prompts expect.
func ValidateTitle(title string) error {
	if msg := TitleMessage(title); msg != "" {
		return errors.New(msg)
	}
	return nil
}

// ValidateDescription adapts DescriptionMessage to the func(string) error
// shape interactive prompts expect.
func ValidateDescription(description string) error {
	if msg := DescriptionMessage(description); msg != "" {
		return errors.New(msg)
	}
	return nil
}

// Validate checks both fields independently. It returns nil when both are
// valid; otherwise every failing field has an entry.
func Validate(title, description string) kanerr.FieldErrors {
	errs := kanerr.FieldErrors{}
	if msg := TitleMessage(title); msg != "" {
		errs[FieldTitle] = msg
	}
	if msg := DescriptionMessage(description); msg != "" {
		errs[FieldDescription] = msg
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
