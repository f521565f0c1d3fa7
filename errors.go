package enginelib

import "github.com/kitsune-dj/enginelib/internal/enginerr"

// Kind identifies one of the closed set of error classes this library can
// return. Callers should use errors.As to recover a *Error and switch on
// Kind rather than matching message text.
type Kind = enginerr.Kind

const (
	// KindUnknown is never returned directly; it is the zero value.
	KindUnknown = enginerr.KindUnknown

	// KindDatabaseNotFound is returned when load expects files that are not present.
	KindDatabaseNotFound = enginerr.KindDatabaseNotFound

	// KindUnsupportedDatabase is returned when an Information row does not
	// match any registered schema.
	KindUnsupportedDatabase = enginerr.KindUnsupportedDatabase

	// KindDatabaseInconsistency is returned on structural verification
	// failure, duplicate primary keys, missing triggers, or a malformed
	// Information table.
	KindDatabaseInconsistency = enginerr.KindDatabaseInconsistency

	// KindBlobMalformed is returned when a BLOB fails a decode check.
	KindBlobMalformed = enginerr.KindBlobMalformed

	// KindCrateDeleted is returned when an operation targets a crate whose
	// row has been removed.
	KindCrateDeleted = enginerr.KindCrateDeleted

	// KindTrackDeleted is returned when an operation targets a track whose
	// row has been removed.
	KindTrackDeleted = enginerr.KindTrackDeleted

	// KindCrateInvalidParent is returned when a reparent would create a cycle.
	KindCrateInvalidParent = enginerr.KindCrateInvalidParent

	// KindCrateInvalidName is returned for an empty name.
	KindCrateInvalidName = enginerr.KindCrateInvalidName

	// KindCrateAlreadyExists is returned when a create, rename or reparent
	// would duplicate a sibling's name.
	KindCrateAlreadyExists = enginerr.KindCrateAlreadyExists

	// KindInvalidTrackSnapshot is returned when a snapshot contradicts itself.
	KindInvalidTrackSnapshot = enginerr.KindInvalidTrackSnapshot

	// KindInvalidBeatgrid is returned when normalization leaves fewer than
	// two markers.
	KindInvalidBeatgrid = enginerr.KindInvalidBeatgrid

	// KindBackendError wraps an unexpected adapter I/O or query failure.
	KindBackendError = enginerr.KindBackendError
)

// Error is the error type returned by every exported operation in this
// library. It mirrors the os.PathError idiom: a closed Kind plus an
// optional wrapped cause.
type Error = enginerr.Error

// Is reports whether err is an *Error of the given Kind, looking through
// any wrapping.
func Is(err error, kind Kind) bool { return enginerr.Is(err, kind) }
