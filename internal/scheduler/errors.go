package scheduler

import "errors"

// ErrNoCachedTemplate is returned when an edit turn arrives for a
// participant pair with no cached template. Edits never fall back to
// building a fresh template.
var ErrNoCachedTemplate = errors.New("no cached template for participant pair")

// ErrNoSlotCandidates is returned when no stage could produce a slot even
// after full relaxation and the alternatives path also came up empty.
var ErrNoSlotCandidates = errors.New("no slot candidates available")

// genericFailureMessage is the only failure text users ever see.
// Diagnostics are logged server-side.
const genericFailureMessage = "Sorry, something went wrong while scheduling. Please try again."
