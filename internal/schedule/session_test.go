package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightwell-health/frontdesk/pkg/logging"
)

func TestStatusValid(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusScheduled, true},
		{StatusCompleted, true},
		{StatusCanceled, true},
		{StatusNoShow, true},
		{Status("Checked-In"), false},
		{Status(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Valid())
		})
	}
}

// The front-desk walk-through: narrow to Cardiology, pick a doctor, drag one
// event successfully, have a second drag bounce off a slot conflict.
func TestSchedulingWalkthrough(t *testing.T) {
	h := newHarness(t)
	h.gw.byDepartment["Cardiology"] = []Doctor{{ID: "d1", Name: "Dr. Hart", Department: "Cardiology"}}
	h.gw.byRange[day(2)] = []Appointment{appt("a1", day(2)), appt("a2", day(3))}
	h.surf.rng = Range{Start: day(2), End: day(9)}

	h.sess.SetDepartment("Cardiology")
	h.settle(t)
	require.Len(t, h.sess.doctorOpts, 2)

	h.sess.SetDoctor("d1")
	h.settle(t)
	assert.Equal(t, []string{"d1"}, h.gw.fetchCalls)
	require.Len(t, h.surf.events, 2)

	// Drag a1 two hours later; backend confirms, no revert.
	var ev1 droppedEvent
	moved := day(2).Add(2 * time.Hour)
	h.sess.EventDropped(dropFor(&ev1, "a1", day(2), day(2).Add(time.Hour), moved, moved.Add(time.Hour)))
	h.settle(t)
	assert.Zero(t, ev1.reverts)
	assert.Equal(t, moved, ev1.start)

	// Drag a2; backend rejects, event snaps back and the message surfaces.
	h.gw.errs["reschedule"] = &rejection{msg: "slot conflict"}
	var ev2 droppedEvent
	h.sess.EventDropped(dropFor(&ev2, "a2", day(3), day(3).Add(time.Hour), day(4), day(4).Add(time.Hour)))
	h.settle(t)
	assert.Equal(t, 1, ev2.reverts)
	assert.Equal(t, day(3), ev2.start)
	assert.Equal(t, "slot conflict", h.toast.last().Message)
}

// Smoke test of the real loop: goroutine executor, Snapshot synchronisation.
func TestRunLoopServesSnapshots(t *testing.T) {
	gw := newFakeGateway()
	gw.departments = []string{"Cardiology"}
	gw.doctors = []Doctor{{ID: "d1", Name: "Dr. Hart"}}
	toast := &fakeNotifier{}
	surf := &fakeSurface{}
	sess := NewSession(Config{
		Gateway:  gw,
		Surface:  surf,
		Notifier: toast,
		Logger:   logging.Discard(),
	})
	surf.sess = sess

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sess.Run(ctx)

	require.Eventually(t, func() bool {
		v := sess.Snapshot()
		return len(v.Departments) == 1 && len(v.DoctorOptions) == 2
	}, 2*time.Second, 10*time.Millisecond)

	sess.SetDoctor("d1")
	require.Eventually(t, func() bool {
		return sess.Snapshot().DoctorID == "d1"
	}, 2*time.Second, 10*time.Millisecond)
}
