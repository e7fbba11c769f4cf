package services

// ErrorKind classifies engine failures so transport layers can map them to
// the right surface: validation and not-found become client errors, conflict
// is a business-rule rejection, infrastructure is a generic server failure.
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindConflict       ErrorKind = "conflict"
	KindNotFound       ErrorKind = "not_found"
	KindInfrastructure ErrorKind = "infrastructure"
)

// Error is the single failure type returned by the poll, vote and tally
// engines. Message is suitable for direct display to a user; Code is a
// stable machine-usable identifier.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrActivePollExists = &Error{Kind: KindConflict, Code: "active_poll_exists", Message: "An active poll already exists"}
	ErrPollNotActive    = &Error{Kind: KindConflict, Code: "poll_not_active", Message: "Poll is not active"}
	ErrPollExpired      = &Error{Kind: KindConflict, Code: "poll_not_active", Message: "Poll has expired"}
	ErrDuplicateVote    = &Error{Kind: KindConflict, Code: "duplicate_vote", Message: "You have already voted in this poll"}
	ErrPollNotFound     = &Error{Kind: KindNotFound, Code: "poll_not_found", Message: "Poll not found"}
	ErrUnknownOption    = &Error{Kind: KindValidation, Code: "unknown_option", Message: "Invalid option for this poll"}
)

func validationError(message string) *Error {
	return &Error{Kind: KindValidation, Code: "invalid_input", Message: message}
}

func storageError(err error) *Error {
	return &Error{Kind: KindInfrastructure, Code: "storage_error", Message: "storage operation failed: " + err.Error()}
}
