package errors

import "errors"

// Input errors indicate issues locating or reading protocol source files.
var (
	// ErrFileNotFound indicates the protocol file could not be located.
	ErrFileNotFound = errors.New("protocol file not found")

	// ErrEmptySource indicates the protocol file contained no tokens.
	ErrEmptySource = errors.New("protocol file is empty")
)

// Project state errors indicate issues with protoscope project discovery.
var (
	// ErrProjectNotInitialized indicates no .protoscope directory was found
	// walking up from the working directory.
	ErrProjectNotInitialized = errors.New("project has not been initialized")

	// ErrInvalidProjectConfig indicates the project configuration is malformed.
	ErrInvalidProjectConfig = errors.New("project configuration is invalid")

	// ErrInvalidUserConfig indicates the user configuration file is malformed.
	ErrInvalidUserConfig = errors.New("user configuration is invalid")
)

// Generation errors indicate the protocol cannot produce a runnable program.
var (
	// ErrNoRoles indicates the protocol declares no roles to generate for.
	ErrNoRoles = errors.New("protocol declares no roles")

	// ErrNoMessages indicates the protocol has no message steps to run.
	ErrNoMessages = errors.New("protocol has no messages")
)
