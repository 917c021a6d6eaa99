package schedule

// The mutation coordinator: every mutating gateway call funnels through the
// methods in this file, which enforce at-most-one in-flight mutation per
// appointment id and clear the busy/loading flags on every completion path.

// acquire marks id busy, rejecting when a mutation against it is in flight.
func (s *Session) acquire(id string) bool {
	if s.busy[id] {
		return false
	}
	s.busy[id] = true
	return true
}

func (s *Session) release(id string) {
	delete(s.busy, id)
}

// reschedule runs on the loop. The surface is already showing the new
// position, so success leaves the board alone and failure reverts through
// the drop command's captured prior state.
func (s *Session) reschedule(drop EventDrop) {
	id := drop.Event.ID
	if !s.acquire(id) {
		drop.Revert()
		s.notify("Info", "Another change to this appointment is still in flight.", SeverityInfo)
		return
	}
	s.beginLoad()
	s.spawn(func() {
		err := s.gw.RescheduleAppointment(s.ctx, id, drop.Event.Start, drop.Event.End)
		s.post(func() {
			s.release(id)
			s.endLoad()
			if err != nil {
				s.logger.Error("reschedule rejected", "appointment_id", id, "error", err)
				drop.Revert()
				s.notify("Error", userMessage(err, "Could not reschedule."), SeverityError)
				return
			}
			s.notify("Success", "Appointment was successfully rescheduled.", SeveritySuccess)
		})
	})
}

// create commits the booking draft. No optimistic render: the new event only
// appears through the post-success refetch. Failure keeps the modal open so
// the draft can be corrected and resubmitted.
func (s *Session) create(req CreateRequest) {
	if s.submitting {
		return
	}
	s.submitting = true
	s.beginLoad()
	s.spawn(func() {
		_, err := s.gw.CreateAppointment(s.ctx, req)
		s.post(func() {
			s.submitting = false
			s.endLoad()
			if err != nil {
				s.logger.Error("booking rejected", "doctor_id", req.DoctorID, "error", err)
				s.notify("Error", userMessage(err, "Could not book appointment."), SeverityError)
				return
			}
			s.notify("Success", "Appointment was successfully booked.", SeveritySuccess)
			s.closeBooking()
			s.surface.Refetch()
		})
	})
}

// setStatus persists the detail modal's edited status. Success refetches and
// closes the modal; failure leaves it open.
func (s *Session) setStatus(id string, status Status) {
	if !s.acquire(id) {
		s.notify("Info", "Another change to this appointment is still in flight.", SeverityInfo)
		return
	}
	s.beginLoad()
	s.spawn(func() {
		err := s.gw.SetAppointmentStatus(s.ctx, id, status)
		s.post(func() {
			s.release(id)
			s.endLoad()
			if err != nil {
				s.logger.Error("status update rejected", "appointment_id", id, "error", err)
				s.notify("Error", userMessage(err, "Could not update status."), SeverityError)
				return
			}
			s.notify("Success", "Appointment status updated.", SeveritySuccess)
			s.closeDetail()
			s.surface.Refetch()
		})
	})
}

// deleteAppointment runs after the two-step confirmation has completed.
func (s *Session) deleteAppointment(id string) {
	if !s.acquire(id) {
		s.notify("Info", "Another change to this appointment is still in flight.", SeverityInfo)
		return
	}
	s.beginLoad()
	s.spawn(func() {
		err := s.gw.DeleteAppointment(s.ctx, id)
		s.post(func() {
			s.release(id)
			s.endLoad()
			if err != nil {
				s.logger.Error("delete rejected", "appointment_id", id, "error", err)
				s.notify("Error", userMessage(err, "Could not delete."), SeverityError)
				return
			}
			s.notify("Success", "Appointment deleted.", SeveritySuccess)
			s.closeDetail()
			s.surface.Refetch()
		})
	})
}
