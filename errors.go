package portal

import (
	"github.com/HuyDinhdmm/Japanese-language-portal/internal/domain"
	"github.com/HuyDinhdmm/Japanese-language-portal/internal/listening"
)

// Error kinds returned by the Engine. Test with errors.Is.
var (
	ErrNotFound   = domain.ErrNotFound
	ErrValidation = domain.ErrValidation
	ErrUpstream   = domain.ErrUpstream
	ErrParse      = domain.ErrParse

	ErrTranscriptNotFound  = listening.ErrTranscriptNotFound
	ErrTranscriptsDisabled = listening.ErrTranscriptsDisabled
	ErrVideoUnavailable    = listening.ErrVideoUnavailable
)

// ValidationError names the input field that was rejected.
type ValidationError = domain.ValidationError

// UpstreamError carries the failing service and its HTTP status.
type UpstreamError = domain.UpstreamError
