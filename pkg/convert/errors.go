package convert

import (
	"errors"
	"fmt"
)

// ErrUnknownLayer is returned when a name resolves to neither a construct
// nor a GDS layer. Force mode never suppresses it.
var ErrUnknownLayer = errors.New("unknown construct or layer")

// FailureKind classifies the problems that force mode may skip
type FailureKind int

const (
	UnmappedLayer FailureKind = iota + 1
	UnknownShape
	RectilinearShape
	HalfManhattanShape
	NonManhattanShape
	MissingPolygon
	MultipleAlign
)

func (k FailureKind) String() string {
	switch k {
	case UnmappedLayer:
		return "unmapped GDS layer"
	case UnknownShape:
		return "unknown shape type"
	case RectilinearShape:
		return "rectilinear polygon is not a rectangle"
	case HalfManhattanShape:
		return "45 degree geometry is not supported"
	case NonManhattanShape:
		return "non-Manhattan geometry"
	case MissingPolygon:
		return "missing polygon"
	case MultipleAlign:
		return "more than one alignment boundary"
	}
	return "unknown failure"
}

// ExitCode is the process status used for the failure: 2 for an unmapped
// layer up to 8 for several alignment boxes
func (k FailureKind) ExitCode() int {
	return int(k) + 1
}

// Failure is a conversion problem that is fatal unless force mode is set
type Failure struct {
	Kind      FailureKind
	Construct string
	Detail    string
}

func (f *Failure) Error() string {
	msg := f.Kind.String()
	if f.Construct != "" {
		msg = fmt.Sprintf("%s on %s", msg, f.Construct)
	}
	if f.Detail != "" {
		msg += ": " + f.Detail
	}
	return msg
}

// ExitCode returns the process status for err: the failure's code for a
// *Failure, 1 for anything else and 0 for nil
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind.ExitCode()
	}
	return 1
}
