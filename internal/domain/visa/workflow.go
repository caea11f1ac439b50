package visa

import (
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"visa-onboarding.backend/internal/domain/entities"
)

// Evaluation is the fully computed state of one employee's workflow.
type Evaluation struct {
	Onboarding entities.OnboardingStatus
	Documents  []*entities.VisaDocument
	Explicit   []entities.StepStatus
	Effective  []entities.StepStatus
	Gates      []GateResult
}

// Evaluate runs inference and gating over the stored documents.
func Evaluate(onboarding entities.OnboardingStatus, docs []*entities.VisaDocument) Evaluation {
	explicit := ExplicitStatuses(docs)
	effective := EffectiveStatuses(explicit)
	gates := make([]GateResult, entities.VisaStepCount)
	for i := range gates {
		gates[i] = Gate(i, onboarding, effective)
	}
	return Evaluation{
		Onboarding: onboarding,
		Documents:  DocumentsByIndex(docs),
		Explicit:   explicit,
		Effective:  effective,
		Gates:      gates,
	}
}

// Complete reports whether all steps are effectively approved.
func (e Evaluation) Complete() bool {
	return AllApproved(e.Effective)
}

// NextAvailable returns the first step that is available and not yet
// effectively approved.
func (e Evaluation) NextAvailable() (entities.VisaStep, bool) {
	for i, g := range e.Gates {
		if g.Available && e.Effective[i] != entities.StepStatusApproved {
			step, _ := entities.VisaStepAt(i)
			return step, true
		}
	}
	return entities.VisaStep{}, false
}

// Current returns the first step that is not effectively approved, which is
// where the employee or HR has to act next.
func (e Evaluation) Current() (entities.VisaStep, bool) {
	for i, s := range e.Effective {
		if s != entities.StepStatusApproved {
			step, _ := entities.VisaStepAt(i)
			return step, true
		}
	}
	return entities.VisaStep{}, false
}

// View renders the evaluation as the API workflow view. Steps inferred
// approved without a record carry no file reference.
func (e Evaluation) View(employeeID uuid.UUID) *entities.VisaWorkflow {
	wf := &entities.VisaWorkflow{
		EmployeeID:       employeeID,
		OnboardingStatus: e.Onboarding,
		Steps:            make([]entities.VisaWorkflowStep, 0, entities.VisaStepCount),
		Complete:         e.Complete(),
	}
	for i, step := range entities.VisaSteps() {
		s := entities.VisaWorkflowStep{
			VisaStep:       step,
			Status:         e.Effective[i],
			ExplicitStatus: e.Explicit[i],
			Available:      e.Gates[i].Available,
			BlockedReason:  e.Gates[i].Reason,
		}
		if doc := e.Documents[i]; doc != nil {
			s.FileRef = doc.FileRef
			s.Feedback = doc.Feedback
			s.UploadedAt = null.TimeFrom(doc.UploadedAt)
		}
		wf.Steps = append(wf.Steps, s)
	}
	if next, ok := e.NextAvailable(); ok {
		t := next.Type
		wf.NextAvailableStep = &t
	}
	return wf
}

// NextAction describes what has to happen next, for the HR overview.
func (e Evaluation) NextAction() string {
	step, ok := e.Current()
	if !ok {
		return "workflow complete"
	}
	doc := e.Documents[step.Index]
	switch {
	case !e.Gates[step.Index].Available:
		return e.Gates[step.Index].Reason
	case doc == nil:
		return "waiting for employee to upload " + step.Label
	case e.Explicit[step.Index] == entities.StepStatusRejected:
		return "waiting for employee to reupload " + step.Label
	}
	return "waiting for HR to review " + step.Label
}
