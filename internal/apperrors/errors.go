package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates that the caller is not authenticated or the credential is invalid.
var ErrUnauthorized = errors.New("unauthorized")

// ErrNotSignedIn indicates that a cloud operation was attempted with no signed-in user.
// Cloud operations failing with this error are never retried automatically.
var ErrNotSignedIn = errors.New("no user is signed in")
