package domain

import "errors"

// ErrDocumentNotFound indicates that the backing document does not exist.
var ErrDocumentNotFound = errors.New("patient document not found")

// StorageError wraps a failure to read or write the backing document.
type StorageError struct {
	Op  string // "load" or "save"
	Err error
}

func (e *StorageError) Error() string {
	return "storage " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }
