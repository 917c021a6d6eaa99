// Package register implements the three-step patient registration wizard:
// demographics, optional insurance, optional medical history. Step validation
// is local; only Submit talks to the backend.
package register

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brightwell-health/frontdesk/pkg/logging"
)

// Step identifies a wizard page.
type Step int

const (
	StepPatient Step = iota + 1
	StepInsurance
	StepHistory
)

// Validation errors, worded as shown to the user.
var (
	ErrPatientDetailsRequired = errors.New("All patient details are required.")
	ErrContactLength          = errors.New("Contact Number must be 10 digits.")
	ErrFutureBirthDate        = errors.New("Date of Birth cannot be in the future.")
	ErrGenderRequired         = errors.New("Gender is a required field.")
	ErrInsuranceProvider      = errors.New("Insurance Provider is required when adding Insurance.")
	ErrPolicyNumber           = errors.New("Policy Number is required when adding Insurance.")
)

// PatientDetails is step one.
type PatientDetails struct {
	Name        string     `json:"name"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Contact     string     `json:"contact"`
	Email       string     `json:"email"`
	Address     string     `json:"address"`
	Gender      string     `json:"gender"`
}

// Insurance is step two. All-or-nothing: leaving every field empty skips
// insurance entirely, but touching any field makes provider and policy
// number mandatory.
type Insurance struct {
	Provider     string     `json:"provider"`
	PolicyNumber string     `json:"policy_number"`
	ValidTill    *time.Time `json:"valid_till"`
	Active       bool       `json:"active"`
}

// Present reports whether any insurance field was filled in.
func (i Insurance) Present() bool {
	return strings.TrimSpace(i.Provider) != "" ||
		strings.TrimSpace(i.PolicyNumber) != "" ||
		i.ValidTill != nil || i.Active
}

// MedicalHistory is step three; everything optional.
type MedicalHistory struct {
	Condition     string     `json:"condition"`
	DiagnosedDate *time.Time `json:"diagnosed_date"`
	Notes         string     `json:"notes"`
}

// Registration is the full payload submitted at the end of the wizard.
type Registration struct {
	Patient        PatientDetails `json:"patient"`
	Insurance      Insurance      `json:"insurance"`
	MedicalHistory MedicalHistory `json:"medical_history"`
}

// Gateway is the backend call the wizard ends with.
type Gateway interface {
	RegisterPatient(ctx context.Context, reg Registration) (string, error)
}

// Wizard carries the in-progress registration. Not safe for concurrent use;
// it belongs to a single front-desk session.
type Wizard struct {
	gw     Gateway
	logger *logging.Logger
	now    func() time.Time

	step Step
	reg  Registration
}

// NewWizard starts a wizard at the patient step.
func NewWizard(gw Gateway, logger *logging.Logger) *Wizard {
	if gw == nil {
		panic("register: gateway required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Wizard{gw: gw, logger: logger, now: time.Now, step: StepPatient}
}

// Step reports the current page.
func (w *Wizard) Step() Step { return w.step }

// Registration returns a copy of the draft.
func (w *Wizard) Registration() Registration { return w.reg }

// SetPatient replaces the step-one fields.
func (w *Wizard) SetPatient(p PatientDetails) { w.reg.Patient = p }

// SetInsurance replaces the step-two fields.
func (w *Wizard) SetInsurance(i Insurance) { w.reg.Insurance = i }

// SetHistory replaces the step-three fields.
func (w *Wizard) SetHistory(h MedicalHistory) { w.reg.MedicalHistory = h }

// Next validates the current step and advances. On the last step it is a
// no-op; Submit finishes the flow.
func (w *Wizard) Next() error {
	if err := w.validateStep(w.step); err != nil {
		return err
	}
	if w.step < StepHistory {
		w.step++
	}
	return nil
}

// Back returns to the previous step without validating.
func (w *Wizard) Back() {
	if w.step > StepPatient {
		w.step--
	}
}

func (w *Wizard) validateStep(step Step) error {
	switch step {
	case StepPatient:
		p := w.reg.Patient
		if strings.TrimSpace(p.Name) == "" || p.DateOfBirth == nil || strings.TrimSpace(p.Contact) == "" {
			return ErrPatientDetailsRequired
		}
		if len(p.Contact) != 10 {
			return ErrContactLength
		}
		today := w.now().Truncate(24 * time.Hour)
		if p.DateOfBirth.After(today) {
			return ErrFutureBirthDate
		}
		if strings.TrimSpace(p.Gender) == "" {
			return ErrGenderRequired
		}
	case StepInsurance:
		ins := w.reg.Insurance
		if !ins.Present() {
			return nil
		}
		if strings.TrimSpace(ins.Provider) == "" {
			return ErrInsuranceProvider
		}
		if strings.TrimSpace(ins.PolicyNumber) == "" {
			return ErrPolicyNumber
		}
	case StepHistory:
		// nothing required
	}
	return nil
}

// Submit validates the final step and posts the registration. On success the
// wizard resets to an empty patient step and returns the new patient id.
func (w *Wizard) Submit(ctx context.Context) (string, error) {
	if err := w.validateStep(w.step); err != nil {
		return "", err
	}
	id, err := w.gw.RegisterPatient(ctx, w.reg)
	if err != nil {
		w.logger.Error("patient registration rejected", "error", err)
		return "", fmt.Errorf("register: submit: %w", err)
	}
	w.logger.Info("patient registered", "patient_id", id)
	w.Reset()
	return id, nil
}

// Reset clears the draft and returns to step one.
func (w *Wizard) Reset() {
	w.reg = Registration{}
	w.step = StepPatient
}
