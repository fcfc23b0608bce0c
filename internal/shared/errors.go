package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrSessionExpired   = fmt.Errorf("session expired")

	// API and pipeline errors
	ErrAPIRequest      = fmt.Errorf("API request failed")
	ErrBucketNotFound  = fmt.Errorf("bucket not found")
	ErrPostNotFound    = fmt.Errorf("post not found")
	ErrUploadCancelled = fmt.Errorf("upload cancelled")
	ErrEmptyJob        = fmt.Errorf("upload job has no files")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
