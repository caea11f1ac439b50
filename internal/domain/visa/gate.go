package visa

import (
	"fmt"

	"visa-onboarding.backend/internal/domain/entities"
)

// Reasons reported when a step is blocked by the onboarding application.
const (
	ReasonOnboardingNotSubmitted = "onboarding application must be submitted first"
	ReasonOnboardingRejected     = "onboarding application was rejected and must be resubmitted"
	ReasonOnboardingUnknown      = "onboarding application status is not recognised"
	ReasonUnknownStep            = "unknown workflow step"
)

// GateResult is the outcome of an availability check. BlockingStep is set
// when a prior step, rather than the onboarding application, blocks access.
type GateResult struct {
	Available    bool                   `json:"available"`
	Reason       string                 `json:"reason,omitempty"`
	BlockingStep *entities.DocumentType `json:"blockingStep,omitempty"`
}

// IsAvailable reports whether the step at index may be uploaded or reviewed.
func IsAvailable(index int, onboarding entities.OnboardingStatus, effective []entities.StepStatus) bool {
	return Gate(index, onboarding, effective).Available
}

// Gate evaluates availability and explains a refusal.
//
// Approved onboarding opens every step. Never-submitted or rejected
// onboarding closes every step. While onboarding is pending, the first step
// is open and each later step needs all earlier steps effectively approved.
// Any other onboarding status is treated as closed.
func Gate(index int, onboarding entities.OnboardingStatus, effective []entities.StepStatus) GateResult {
	if _, ok := entities.VisaStepAt(index); !ok {
		return GateResult{Reason: ReasonUnknownStep}
	}

	switch onboarding {
	case entities.OnboardingApproved:
		return GateResult{Available: true}
	case entities.OnboardingNeverSubmitted:
		return GateResult{Reason: ReasonOnboardingNotSubmitted}
	case entities.OnboardingRejected:
		return GateResult{Reason: ReasonOnboardingRejected}
	case entities.OnboardingPending:
	default:
		return GateResult{Reason: ReasonOnboardingUnknown}
	}

	for i := 0; i < index; i++ {
		if i < len(effective) && effective[i] == entities.StepStatusApproved {
			continue
		}
		prior, _ := entities.VisaStepAt(i)
		blocking := prior.Type
		return GateResult{
			Reason:       waitingFor(prior, statusAt(effective, i)),
			BlockingStep: &blocking,
		}
	}
	return GateResult{Available: true}
}

func statusAt(effective []entities.StepStatus, i int) entities.StepStatus {
	if i < len(effective) {
		return effective[i]
	}
	return entities.StepStatusNone
}

func waitingFor(step entities.VisaStep, status entities.StepStatus) string {
	if status == entities.StepStatusRejected {
		return fmt.Sprintf("%s was rejected; reupload it and wait for it to be approved", step.Label)
	}
	return fmt.Sprintf("waiting for %s to be approved", step.Label)
}
