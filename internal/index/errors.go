package index

import "errors"

// Sentinel errors for the Index Store, per the taxonomy of spec §7. Callers
// compare with errors.Is since wrapped I/O errors are folded in with %w.
var (
	// ErrIoError means a configured path could not be opened or read.
	ErrIoError = errors.New("index: io error")
	// ErrIndexCorrupt means a dictionary or postings line failed to parse.
	ErrIndexCorrupt = errors.New("index: corrupt")
	// ErrHeaderMissing means the postings file's first line (N + lengths)
	// was absent or malformed.
	ErrHeaderMissing = errors.New("index: postings header missing")
)
