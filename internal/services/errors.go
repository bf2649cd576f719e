package services

import "errors"

// Service-level errors. Handlers translate these into the HTTP error
// taxonomy: not-found sentinels to 404, argument sentinels to 400, and the
// asset precondition sentinel to 422.
var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAssetNotFound      = errors.New("asset not found")
	ErrInvalidAsset       = errors.New("invalid asset")
	ErrNoSubmissionIDs    = errors.New("no submission ids provided")
	ErrTooFewYears        = errors.New("at least two tax years are required")
	ErrNoComparableData   = errors.New("not enough submissions to compare")
)
