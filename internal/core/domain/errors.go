package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is an error thrown when input is rejected before any side effect
var ErrValidation = errors.New("validation failed")

// ErrAccessDenied is an error thrown when the requester is not allowed to perform the operation
var ErrAccessDenied = errors.New("access denied")

// ErrNotFound is the base error for every missing entity
var ErrNotFound = errors.New("not found")

// ErrFileNotFound is an error thrown when file record is not found
var ErrFileNotFound = fmt.Errorf("file %w", ErrNotFound)

// ErrShareNotFound is an error thrown when a share grant is not found
var ErrShareNotFound = fmt.Errorf("share %w", ErrNotFound)

// ErrVersionNotFound is an error thrown when a file version is not found
var ErrVersionNotFound = fmt.Errorf("version %w", ErrNotFound)

// ErrObjectNotFound is an error thrown when a storage object is not found
var ErrObjectNotFound = fmt.Errorf("object %w", ErrNotFound)

// ErrScanInfected is an error thrown when the malware scanner flags the upload
var ErrScanInfected = errors.New("file is infected")

// ErrTransform is an error thrown when an image cannot be decoded or encoded
var ErrTransform = errors.New("image transform failed")

// ErrStorage is an error thrown when the object store fails
var ErrStorage = errors.New("storage error")

// ErrPersistence is an error thrown when the metadata store fails
var ErrPersistence = errors.New("persistence error")

// ErrAlreadyExists is an error thrown when entity already exists
var ErrAlreadyExists = errors.New("already exists")

// ErrInvalidTransition is an error thrown when a status change breaks the state machine
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrVersionConflict is an error thrown when two writers race for the same version number
var ErrVersionConflict = errors.New("version number conflict")

// ErrShareUnavailable is an error thrown when a share is inactive, expired or exhausted
var ErrShareUnavailable = errors.New("share is no longer available")

// ErrInvalidSharePassword is an error thrown when a share link password does not match
var ErrInvalidSharePassword = errors.New("invalid share password")

// ErrFileNotReady is an error thrown when file is not ready
var ErrFileNotReady = errors.New("file not ready")

// ErrTagNotFound is an error thrown when a tag is not attached to a file
var ErrTagNotFound = fmt.Errorf("tag %w", ErrNotFound)

// ErrScanUnavailable is an error thrown when the scanner fails and uploads are quarantined
var ErrScanUnavailable = errors.New("malware scan unavailable")
