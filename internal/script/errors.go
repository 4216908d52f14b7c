package script

import "errors"

// ErrInsufficientContent means the analysis produced no usable
// claim/challenge pairs, so not a single topic can be built. Fatal for the
// run; no script is returned.
var ErrInsufficientContent = errors.New("insufficient content: analysis produced no usable claims or challenges")

// ErrGenerationTimeout means the analysis collaborator did not respond
// within its bounded wait. Fatal for the run.
var ErrGenerationTimeout = errors.New("generation timeout: analysis collaborator unresponsive")
