package employee

import "errors"

var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrUsernameExists    = errors.New("username already taken")
	ErrEmailExists       = errors.New("email already registered")
	ErrInvalidRole       = errors.New("invalid employee role")
	ErrCannotDeleteSelf  = errors.New("cannot delete your own employee record")
	ErrEmptyRoster       = errors.New("roster file has no employee rows")
	ErrUnsupportedRoster = errors.New("unsupported roster file type")
)
