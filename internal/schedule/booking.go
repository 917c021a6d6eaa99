package schedule

import (
	"strings"
	"time"
)

// BookingDraft is the new-appointment modal's transient state. It exists only
// while the modal is open and is discarded wholesale on close or commit.
type BookingDraft struct {
	SlotStart  time.Time
	SlotEnd    time.Time
	DoctorID   string
	SearchTerm string
	Candidates []Patient
	PatientID  string
	Reason     string
}

// openBooking runs on the loop; the slot-select handler has already verified
// a doctor filter is set.
func (s *Session) openBooking(start, end time.Time) {
	s.booking = &BookingDraft{
		SlotStart: start,
		SlotEnd:   end,
		DoctorID:  s.doctorID,
	}
}

// closeBooking discards the draft and any pending search.
func (s *Session) closeBooking() {
	if s.searchTimer != nil {
		s.searchTimer.Stop()
		s.searchTimer = nil
	}
	s.booking = nil
}

// CloseBooking abandons the booking modal.
func (s *Session) CloseBooking() {
	s.post(s.closeBooking)
}

// SetSearchTerm records a keystroke in the patient search box. Each call
// cancels any pending debounce timer; terms shorter than two characters clear
// the candidate list without a backend call, anything longer fires a search
// after the quiescence window.
func (s *Session) SetSearchTerm(term string) {
	s.post(func() {
		if s.booking == nil {
			return
		}
		s.booking.SearchTerm = term
		if s.searchTimer != nil {
			s.searchTimer.Stop()
			s.searchTimer = nil
		}
		if len(strings.TrimSpace(term)) < minSearchLen {
			s.booking.Candidates = nil
			return
		}
		s.searchTimer = s.timers(s.debounce, func() {
			s.post(func() { s.runSearch(term) })
		})
	})
}

// runSearch issues the debounced patient search. Responses replace the
// candidate list wholesale; a response superseded by a newer search is
// dropped.
func (s *Session) runSearch(term string) {
	if s.booking == nil || s.booking.SearchTerm != term {
		return
	}
	s.searchSeq++
	seq := s.searchSeq
	s.spawn(func() {
		patients, err := s.gw.SearchPatients(s.ctx, term)
		s.post(func() {
			if s.booking == nil || seq != s.searchSeq {
				return
			}
			if err != nil {
				s.logger.Error("patient search failed", "term", term, "error", err)
				s.notify("Error", "Could not fetch patients.", SeverityError)
				return
			}
			s.booking.Candidates = patients
		})
	})
}

// SelectPatient picks a search candidate for the draft.
func (s *Session) SelectPatient(patientID string) {
	s.post(func() {
		if s.booking != nil {
			s.booking.PatientID = patientID
		}
	})
}

// SetReason records the reason-for-visit text.
func (s *Session) SetReason(reason string) {
	s.post(func() {
		if s.booking != nil {
			s.booking.Reason = reason
		}
	})
}

// SubmitBooking validates the draft and hands it to the mutation
// coordinator. Validation failures are reported locally and never reach the
// backend.
func (s *Session) SubmitBooking() {
	s.post(func() {
		b := s.booking
		if b == nil {
			return
		}
		if b.PatientID == "" {
			s.notify("Error", "Please select a patient.", SeverityError)
			return
		}
		if strings.TrimSpace(b.Reason) == "" {
			s.notify("Error", "Please enter a reason for the visit.", SeverityError)
			return
		}
		s.create(CreateRequest{
			PatientID: b.PatientID,
			DoctorID:  b.DoctorID,
			Start:     b.SlotStart,
			End:       b.SlotEnd,
			Reason:    b.Reason,
		})
	})
}
