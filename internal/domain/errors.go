package domain

import "errors"

var (
	// ErrDuplicateSubmission is returned when a user already has a scored
	// submission for the target date.
	ErrDuplicateSubmission = errors.New("daily check-in already completed")
	// ErrQuestionSetNotFound is returned when answers arrive for a date with
	// no generated question set.
	ErrQuestionSetNotFound = errors.New("question set not found")
	// ErrSubmissionNotFound indicates no submission exists for (user, date).
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrConflict is the storage layer's unique-constraint violation. Callers
	// recover by re-reading the now-present row.
	ErrConflict = errors.New("row already exists")
)
