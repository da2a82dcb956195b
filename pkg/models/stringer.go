package models

// String methods for the custom string types, so they render cleanly
// through fmt and the table writer.

// RiskLevel
func (r RiskLevel) String() string { return string(r) }

// DecisionPointKind
func (d DecisionPointKind) String() string { return string(d) }

// HotspotKind
func (h HotspotKind) String() string { return string(h) }
