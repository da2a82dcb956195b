package bytecode

import "fmt"

// ExceptionRegion is one entry of a method's exception table: the guarded
// try range, the handler entry offset, and the catch type. Regions may
// overlap (nested try blocks) and keep table order, since handler priority
// depends on it. CatchType "" is a catch-all (finally or catch Throwable).
type ExceptionRegion struct {
	StartPC   int
	EndPC     int // exclusive, per the class file format
	HandlerPC int
	CatchType string
}

// Covers reports whether the region's try range intersects [start, end].
func (r ExceptionRegion) Covers(start, end int) bool {
	return r.StartPC <= end && start < r.EndPC
}

func (r ExceptionRegion) String() string {
	catch := r.CatchType
	if catch == "" {
		catch = "<any>"
	}
	return fmt.Sprintf("try [%d, %d) -> %d catch %s", r.StartPC, r.EndPC, r.HandlerPC, catch)
}

// ValidateRegions checks every region against the decoded stream: try
// bounds must lie inside the body and the handler must start an
// instruction. Returns the first violation.
func ValidateRegions(s *Stream, regions []ExceptionRegion) error {
	for i, r := range regions {
		if r.StartPC < 0 || r.EndPC > s.BodyLen || r.StartPC >= r.EndPC {
			return fmt.Errorf("%w: exception region %d has try range [%d, %d) outside body of %d bytes",
				ErrMalformed, i, r.StartPC, r.EndPC, s.BodyLen)
		}
		if !s.IsBoundary(r.HandlerPC) {
			return fmt.Errorf("%w: exception region %d handler offset %d is not an instruction boundary",
				ErrUnresolvedTarget, i, r.HandlerPC)
		}
	}
	return nil
}
