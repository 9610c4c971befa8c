package domain

import "errors"

var (
	// ErrInvalidEmail is returned when the submitted email fails validation.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrCodeMismatch is returned when the entered code does not match the issued code.
	ErrCodeMismatch = errors.New("incorrect verification code")
	// ErrDeliveryFailed indicates the OTP transport could not deliver the code.
	ErrDeliveryFailed = errors.New("failed to deliver verification code")
	// ErrEmptyName is returned when the display name is missing or blank.
	ErrEmptyName = errors.New("name cannot be empty")
	// ErrUnknownCategory indicates the chosen category is not in the bank catalog.
	ErrUnknownCategory = errors.New("unknown quiz category")
	// ErrNoQuestions indicates the category has no loadable questions.
	ErrNoQuestions = errors.New("no questions available")
	// ErrNoAnswer is returned when an answer is submitted without a selection.
	ErrNoAnswer = errors.New("no option selected")
	// ErrIncompleteSuggestion is returned when a suggestion is missing a field.
	ErrIncompleteSuggestion = errors.New("suggestion requires question, options, and answer")
	// ErrWrongStage indicates an event that is not valid for the current stage.
	ErrWrongStage = errors.New("action not allowed in current stage")
)
