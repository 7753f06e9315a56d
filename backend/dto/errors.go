package dto

import "errors"

// ErrNotFound signals that a referenced entity (session question, template
// network) does not exist. Controllers translate it to a 404 response,
// distinct from lookups that succeed but return nothing.
var ErrNotFound = errors.New("record not found")
