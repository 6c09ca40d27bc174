package services

import "errors"

var (
	// ErrNotFound indicates no such photo, share, or album.
	ErrNotFound = errors.New("not found")
	// ErrAccessDenied indicates the viewer is neither owner nor recipient.
	ErrAccessDenied = errors.New("access denied")
	// ErrAlreadyShared indicates the photo is already shared with the recipient.
	ErrAlreadyShared = errors.New("already shared")
)
