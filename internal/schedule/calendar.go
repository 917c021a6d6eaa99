package schedule

import "time"

// Events is the surface's event source. The surface invokes it whenever its
// visible range changes (navigation, view switch) and again on Refetch; the
// session answers through exactly one of the two callbacks with a full
// replacement event set. A request superseded by a newer one before it
// resolves is discarded: neither callback fires and nothing is applied
// (last-request-wins, keyed by a monotonic sequence).
func (s *Session) Events(start, end time.Time, onSuccess func([]Appointment), onFailure func(error)) {
	s.post(func() {
		s.visible = Range{Start: start, End: end}
		s.fetchSeq++
		seq := s.fetchSeq
		doctorID := s.doctorID
		s.beginLoad()
		s.spawn(func() {
			events, err := s.gw.ListAppointments(s.ctx, doctorID, start, end)
			s.post(func() {
				s.endLoad()
				if seq != s.fetchSeq {
					s.logger.Debug("stale appointment fetch discarded", "seq", seq)
					return
				}
				if err != nil {
					s.logger.Error("appointment fetch failed", "error", err)
					s.notify("Error", "Failed to fetch appointments.", SeverityError)
					if onFailure != nil {
						onFailure(err)
					}
					return
				}
				if onSuccess != nil {
					onSuccess(events)
				}
			})
		})
	})
}

// VisibleRange reports the window of the most recent Events request.
func (s *Session) VisibleRange() Range {
	ch := make(chan Range, 1)
	s.post(func() { ch <- s.visible })
	return <-ch
}

// SlotSelected handles a click-drag over empty calendar space. A booking must
// be attributed to exactly one doctor, so an "all doctors" filter only earns
// an informational nudge.
func (s *Session) SlotSelected(start, end time.Time) {
	s.post(func() {
		if s.doctorID == "" {
			s.notify("Info", "Please select a doctor before booking an appointment.", SeverityInfo)
			return
		}
		s.openBooking(start, end)
	})
}

// EventDropped handles a drag-reschedule. The surface already moved the
// event; the drop command carries the captured prior position for rollback.
func (s *Session) EventDropped(drop EventDrop) {
	s.post(func() { s.reschedule(drop) })
}

// EventClicked opens the detail modal over a snapshot of the clicked event.
func (s *Session) EventClicked(ev Appointment) {
	s.post(func() { s.openDetail(ev) })
}
