package schedule

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDepartmentScopesDoctorList(t *testing.T) {
	h := newHarness(t)
	h.gw.byDepartment["Cardiology"] = []Doctor{
		{ID: "d1", Name: "Dr. Hart", Department: "Cardiology"},
		{ID: "d2", Name: "Dr. Vale", Department: "Cardiology"},
	}

	h.sess.SetDepartment("Cardiology")
	h.settle(t)

	v := h.sess.view()
	require.Len(t, v.DoctorOptions, 3)
	assert.Equal(t, Option{Label: "All Doctors", Value: ""}, v.DoctorOptions[0])
	assert.Equal(t, "d1", v.DoctorOptions[1].Value)
	assert.Equal(t, "d2", v.DoctorOptions[2].Value)
	assert.Equal(t, "Cardiology", v.Department)
	assert.Empty(t, v.DoctorID)
}

func TestSetDepartmentClearsSelectionBeforeRoundTrip(t *testing.T) {
	h := newHarness(t)
	h.sess.SetDoctor("d9")
	h.flush()
	require.Equal(t, "d9", h.sess.doctorID)

	h.sess.SetDepartment("Dermatology")
	h.flush() // doctor list call still parked

	assert.Empty(t, h.sess.doctorID, "selection reset must not wait for the network")
	assert.Len(t, h.exec.pending, 1)
}

func TestSetDepartmentEmptyFallsBackToAllDoctors(t *testing.T) {
	h := newHarness(t)
	h.gw.doctors = []Doctor{{ID: "d1", Name: "Dr. Hart"}}

	h.sess.SetDepartment("")
	h.settle(t)

	assert.Equal(t, []string{""}, h.gw.doctorCalls)
	require.Len(t, h.sess.doctorOpts, 2)
	assert.Equal(t, "d1", h.sess.doctorOpts[1].Value)
}

// Two department changes race; the slow first response must not overwrite the
// option set resolved for the most recent department.
func TestDoctorCascadeLastRequestWins(t *testing.T) {
	h := newHarness(t)
	h.gw.byDepartment["Cardiology"] = []Doctor{{ID: "c1", Name: "Dr. Hart"}}
	h.gw.byDepartment["Dermatology"] = []Doctor{{ID: "s1", Name: "Dr. Skin"}}

	h.sess.SetDepartment("Cardiology")
	h.flush()
	h.sess.SetDepartment("Dermatology")
	h.flush()
	require.Len(t, h.exec.pending, 2)

	// Dermatology resolves first, Cardiology arrives late.
	h.exec.resolve(t, 1)
	h.flush()
	h.exec.resolve(t, 0)
	h.flush()

	opts := h.sess.doctorOpts
	require.Len(t, opts, 2)
	assert.Equal(t, "s1", opts[1].Value, "late Cardiology response must be discarded")
}

func TestSetDepartmentFailureKeepsPriorOptions(t *testing.T) {
	h := newHarness(t)
	h.gw.doctors = []Doctor{{ID: "d1", Name: "Dr. Hart"}}
	h.sess.post(h.sess.loadInitial)
	h.settle(t)
	require.Len(t, h.sess.doctorOpts, 2)

	h.gw.errs["doctors:Oncology"] = errors.New("boom")
	h.sess.SetDoctor("d1")
	h.flush()
	h.sess.SetDepartment("Oncology")
	h.settle(t)

	assert.Len(t, h.sess.doctorOpts, 2, "stale option list stays on failure")
	assert.Empty(t, h.sess.doctorID, "selection is still cleared")
	assert.Equal(t, "Could not fetch doctors.", h.toast.last().Message)
	assert.Equal(t, SeverityError, h.toast.last().Severity)
}

func TestSetDoctorTriggersRefetch(t *testing.T) {
	h := newHarness(t)
	h.gw.byRange[day(2)] = []Appointment{appt("a1", day(2))}
	h.surf.rng = Range{Start: day(2), End: day(9)}

	h.sess.SetDoctor("d1")
	h.settle(t)

	assert.Equal(t, 1, h.surf.refetches)
	assert.Equal(t, []string{"d1"}, h.gw.fetchCalls)
	require.Len(t, h.surf.events, 1)
	assert.Equal(t, "a1", h.surf.events[0].ID)
}

func TestLoadInitialPopulatesFilters(t *testing.T) {
	h := newHarness(t)
	h.gw.departments = []string{"Cardiology", "Dermatology"}
	h.gw.doctors = []Doctor{{ID: "d1", Name: "Dr. Hart"}}

	h.sess.post(h.sess.loadInitial)
	h.settle(t)

	assert.Equal(t, []string{"Cardiology", "Dermatology"}, h.sess.departments)
	require.Len(t, h.sess.doctorOpts, 2)
	assert.Equal(t, Option{Label: "All Doctors", Value: ""}, h.sess.doctorOpts[0])
}

func TestLoadInitialDepartmentFailureNotifies(t *testing.T) {
	h := newHarness(t)
	h.gw.errs["departments"] = errors.New("down")

	h.sess.post(h.sess.loadInitial)
	h.settle(t)

	assert.Equal(t, "Could not load departments.", h.toast.notices[0].Message)
}
