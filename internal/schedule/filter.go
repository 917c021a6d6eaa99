package schedule

// allDoctors is the sentinel prepended to every doctor option set.
var allDoctors = Option{Label: "All Doctors", Value: ""}

// loadInitial fetches the department list and the unscoped doctor list when
// the loop starts.
func (s *Session) loadInitial() {
	s.spawn(func() {
		deps, err := s.gw.ListDepartments(s.ctx)
		s.post(func() {
			if err != nil {
				s.logger.Error("department list load failed", "error", err)
				s.notify("Error", "Could not load departments.", SeverityError)
				return
			}
			s.departments = deps
		})
	})
	s.fetchDoctors("", s.nextDoctorSeq())
}

// SetDepartment is the first stage of the filter cascade. Doctor selection is
// cleared synchronously; the scoped doctor list is fetched asynchronously
// with last-request-wins over any earlier in-flight department change. On
// failure the previous option set stays on screen while the selection has
// already been cleared.
func (s *Session) SetDepartment(department string) {
	s.post(func() {
		s.department = department
		s.doctorID = ""
		s.fetchDoctors(department, s.nextDoctorSeq())
	})
}

func (s *Session) nextDoctorSeq() uint64 {
	s.doctorSeq++
	return s.doctorSeq
}

func (s *Session) fetchDoctors(department string, seq uint64) {
	s.spawn(func() {
		var (
			docs []Doctor
			err  error
		)
		if department == "" {
			docs, err = s.gw.ListDoctors(s.ctx)
		} else {
			docs, err = s.gw.ListDoctorsByDepartment(s.ctx, department)
		}
		s.post(func() {
			if seq != s.doctorSeq {
				// superseded by a newer department change
				return
			}
			if err != nil {
				s.logger.Error("doctor list load failed", "department", department, "error", err)
				s.notify("Error", "Could not fetch doctors.", SeverityError)
				return
			}
			opts := make([]Option, 0, len(docs)+1)
			opts = append(opts, allDoctors)
			for _, d := range docs {
				opts = append(opts, Option{Label: d.Name, Value: d.ID})
			}
			s.doctorOpts = opts
		})
	})
}

// SetDoctor selects a doctor (empty means all) and refetches the calendar.
func (s *Session) SetDoctor(doctorID string) {
	s.post(func() {
		s.doctorID = doctorID
		s.surface.Refetch()
	})
}
