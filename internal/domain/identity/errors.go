package identity

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicateAccount = errors.New("account already has a profile")
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrDuplicateWorker  = errors.New("worker with the same email, phone or name already exists")
	ErrBadCredentials   = errors.New("invalid email or password")
)
