package services

import "errors"

// Sentinel errors callers branch on. Everything else is wrapped context from
// the database layer.
var (
	ErrNotFound    = errors.New("record not found")
	ErrForbidden   = errors.New("not the owner of this record")
	ErrQuestLocked = errors.New("quest is locked")
	ErrHasHistory  = errors.New("record has completion history and cannot be deleted")
	ErrLowBalance  = errors.New("not enough coins")
	ErrValidation  = errors.New("invalid request")
)
