// Package geo holds the pure spatial primitives: great-circle distance, the
// geofence evaluator, and the fixed-size grid used to bucket capsules into
// map hotspots.
//
// Everything here is deterministic and side-effect free. The geofence check
// fails closed: an unknown viewer position is never inside any fence.
package geo
