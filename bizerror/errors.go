package bizerror

import "errors"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")

	ErrVersionNotMutable   = errors.New("flow version is not mutable")
	ErrTemplateArchived    = errors.New("flow template is archived")
	ErrDraftNotFound       = errors.New("flow template has no draft version")
	ErrPublishConflict     = errors.New("flow version publish conflict")
	ErrScreenIdConflict    = errors.New("screen keys normalize to the same screen id")
	ErrVariableKeyConflict = errors.New("variable key is not unique within version")
	ErrDanglingTarget      = errors.New("action targets an unknown screen")
	ErrEntryPointInvalid   = errors.New("flow version must have exactly one entry screen")
	ErrInvalidOptions      = errors.New("component options are invalid for its type")
	ErrInvalidActionTarget = errors.New("action target is invalid for its type")
)
