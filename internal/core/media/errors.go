package media

import "errors"

var (
	// ErrInvalidInput indicates a malformed URL or request parameter.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound indicates the source page or video does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnsupported indicates the URL belongs to an unhandled site.
	ErrUnsupported = errors.New("unsupported site")
	// ErrSourceBlocked indicates the source platform rejected the request.
	ErrSourceBlocked = errors.New("source blocked")
	// ErrTranscodeFailed indicates the transcoder exited with an error.
	ErrTranscodeFailed = errors.New("transcode failed")
	// ErrTimeout indicates the conversion exceeded its wall-clock ceiling.
	ErrTimeout = errors.New("conversion timed out")
	// ErrInvalidRange indicates a trim range with start >= end.
	ErrInvalidRange = errors.New("invalid trim range")
	// ErrRateLimited indicates the client exceeded its admission window.
	ErrRateLimited = errors.New("rate limited")
	// ErrUnknown indicates an unclassified extraction failure.
	ErrUnknown = errors.New("unknown error")
)
