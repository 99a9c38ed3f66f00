/*
overlap.go - Collision detection against active leave

Two inclusive date windows conflict when they share a day. Half-day entries
occupy a single date (Start == End), so the interval test covers every
case, including two half-day requests on one date: an employee may not file
a first-half and a second-half absence separately, the date is taken.

This is a reject-on-first-match detector. It reports the first blocking
record in input order and stops; it does not collect all conflicts.
*/
package leave

// FindConflict returns a copy of the first pending or approved record whose
// window intersects the request's, or nil when the dates are free. Records
// in any other status never block.
func FindConflict(req Request, active []ActiveLeave) *ActiveLeave {
	window := req.Window()
	for _, rec := range active {
		if !rec.Status.Blocks() {
			continue
		}
		if window.Intersects(rec.Window()) {
			conflict := rec
			return &conflict
		}
	}
	return nil
}
