package errors

import "errors"

// Configuration errors indicate a missing precondition for a command.
var (
	// ErrNotGitRepository indicates no git repository was found above the working directory.
	ErrNotGitRepository = errors.New("not inside a git repository")

	// ErrNoIgnoreFile indicates no ignore file declaring encrypted paths was found.
	ErrNoIgnoreFile = errors.New("no ignore file found")

	// ErrKeyNotFound indicates no key was supplied and none is stored.
	ErrKeyNotFound = errors.New("encryption key not found")

	// ErrInvalidProjectConfig indicates .gitenc.toml is malformed.
	ErrInvalidProjectConfig = errors.New("project configuration is invalid")

	// ErrOutsideRepository indicates a path does not belong to the repository.
	ErrOutsideRepository = errors.New("path is outside the repository")
)

// Integrity errors indicate a stored envelope cannot be trusted.
var (
	// ErrEnvelopeTampered indicates the envelope tag does not match its contents.
	ErrEnvelopeTampered = errors.New("envelope has been tampered with")

	// ErrMalformedEnvelope indicates the envelope is not ciphertext#iv#tag.
	ErrMalformedEnvelope = errors.New("malformed envelope")
)

// Cryptographic errors indicate failures during encryption or decryption operations.
var (
	// ErrEncryptFailed indicates file encryption failed.
	ErrEncryptFailed = errors.New("failed to encrypt file")

	// ErrDecryptFailed indicates decryption failed, usually because of a wrong key.
	ErrDecryptFailed = errors.New("failed to decrypt file")

	// ErrInvalidKeyLength indicates the key does not decode to 32 bytes.
	ErrInvalidKeyLength = errors.New("invalid key: expected base64 encoded 256-bit value")

	// ErrInvalidIVLength indicates the IV does not decode to 16 bytes.
	ErrInvalidIVLength = errors.New("invalid iv: expected base64 encoded 128-bit value")
)

// File errors indicate issues with file discovery or access.
var (
	// ErrNoFilesFound indicates no marker entry resolved to a file.
	ErrNoFilesFound = errors.New("no matching files found")

	// ErrFileAccess indicates a file could not be read or written.
	ErrFileAccess = errors.New("file access failed")
)

// Input errors indicate invalid command arguments.
var (
	// ErrInvalidDateFormat indicates a date filter is not YYYY-MM-DD.
	ErrInvalidDateFormat = errors.New("invalid date format")
)
