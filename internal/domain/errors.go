package domain

import "errors"

var (
	// ErrMalformedRecord marks an observation or metadata row that could not be parsed.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrInvalidFileName is returned when an observation file name does not
	// follow the <prefix><id><suffix> convention.
	ErrInvalidFileName = errors.New("invalid observation file name")

	// ErrSplineFit is returned when a smoothing spline cannot be fitted to a
	// well's rising limb.
	ErrSplineFit = errors.New("spline fit failed")

	// ErrUnknownLine is returned when a well's line has no bearing.
	ErrUnknownLine = errors.New("unknown well line")

	// ErrUnknownWell is returned when a well has no metadata record.
	ErrUnknownWell = errors.New("unknown well")

	// ErrAmbiguousWell is returned when a well identifier matches more than
	// one metadata record.
	ErrAmbiguousWell = errors.New("ambiguous well")

	// ErrTriangulation is returned when scattered points cannot be triangulated.
	ErrTriangulation = errors.New("triangulation failed")

	// ErrNoPlottableSamples is returned when a figure has no positive samples
	// to place on logarithmic axes.
	ErrNoPlottableSamples = errors.New("no plottable samples")
)
