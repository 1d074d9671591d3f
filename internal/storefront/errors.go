package storefront

import (
	pkgerrors "github.com/streetfood/rawmart/pkg/errors"
)

// FailureKind is the coarse class of a failed storefront call.
type FailureKind string

const (
	NetworkFailure    FailureKind = "network"
	ValidationFailure FailureKind = "validation"
	NotFound          FailureKind = "not_found"
)

// Classify folds any error into one of the three failure kinds.
// Requests the server refused on their merits count as validation failures;
// everything else, including untyped errors, counts as a network failure.
func Classify(err error) FailureKind {
	switch pkgerrors.CodeOf(err) {
	case pkgerrors.CodeValidation, pkgerrors.CodeConflict, pkgerrors.CodeIdempotency:
		return ValidationFailure
	case pkgerrors.CodeNotFound:
		return NotFound
	default:
		return NetworkFailure
	}
}

func retryable(err error) bool {
	return pkgerrors.MetadataFor(pkgerrors.CodeOf(err)).Retryable
}
