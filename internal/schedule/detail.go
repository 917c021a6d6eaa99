package schedule

// EventDetail is the detail modal's transient state: a snapshot of one
// appointment plus its editable status. Status edits stay local until Save.
type EventDetail struct {
	Appointment Appointment
	Status      Status
	// PendingDelete is the first half of the two-step delete confirmation.
	PendingDelete bool
}

func (s *Session) openDetail(ev Appointment) {
	s.detail = &EventDetail{Appointment: ev, Status: ev.Status}
}

func (s *Session) closeDetail() {
	s.detail = nil
}

// CloseDetail discards the snapshot without saving.
func (s *Session) CloseDetail() {
	s.post(s.closeDetail)
}

// SetDetailStatus edits the snapshot's status locally.
func (s *Session) SetDetailStatus(status Status) {
	s.post(func() {
		if s.detail != nil {
			s.detail.Status = status
		}
	})
}

// SaveDetail persists the edited status through the coordinator.
func (s *Session) SaveDetail() {
	s.post(func() {
		if s.detail == nil {
			return
		}
		s.setStatus(s.detail.Appointment.ID, s.detail.Status)
	})
}

// RequestDelete arms the delete confirmation. The actual mutation only runs
// once ConfirmDelete follows.
func (s *Session) RequestDelete() {
	s.post(func() {
		if s.detail != nil {
			s.detail.PendingDelete = true
		}
	})
}

// CancelDelete disarms a pending delete confirmation.
func (s *Session) CancelDelete() {
	s.post(func() {
		if s.detail != nil {
			s.detail.PendingDelete = false
		}
	})
}

// ConfirmDelete completes the two-step confirmation and issues the delete.
func (s *Session) ConfirmDelete() {
	s.post(func() {
		if s.detail == nil || !s.detail.PendingDelete {
			return
		}
		s.detail.PendingDelete = false
		s.deleteAppointment(s.detail.Appointment.ID)
	})
}
