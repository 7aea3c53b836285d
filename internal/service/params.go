package service

import "strings"

// PostInput is the validated payload for creating or editing a post.
type PostInput struct {
	Title   string `validate:"required"`
	Content string `validate:"required"`
}

// normalize trims surrounding whitespace so blank fields count as empty.
func (in PostInput) normalize() PostInput {
	return PostInput{
		Title:   strings.TrimSpace(in.Title),
		Content: strings.TrimSpace(in.Content),
	}
}

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Validate reports a *ValidationError when title or content is blank.
func (in PostInput) Validate() error {
	if err := validate.Struct(in.normalize()); err != nil {
		return newValidationError(msgPostFieldsRequired, err)
	}
	return nil
}
