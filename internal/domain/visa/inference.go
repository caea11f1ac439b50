// Package visa holds the OPT document workflow rules: effective-status
// inference and step availability. Both the upload and review paths and the
// workflow view read these functions; nothing else decides availability.
package visa

import (
	"visa-onboarding.backend/internal/domain/entities"
)

// EffectiveStatuses computes the effective status of every step from the
// explicit statuses, given in workflow order.
//
// An explicitly approved or rejected step keeps its status. A pending or
// absent step is approved when any later step is effectively approved, and
// pending otherwise.
func EffectiveStatuses(explicit []entities.StepStatus) []entities.StepStatus {
	effective := make([]entities.StepStatus, len(explicit))
	laterApproved := false
	for i := len(explicit) - 1; i >= 0; i-- {
		switch explicit[i] {
		case entities.StepStatusApproved:
			effective[i] = entities.StepStatusApproved
		case entities.StepStatusRejected:
			effective[i] = entities.StepStatusRejected
		default:
			if laterApproved {
				effective[i] = entities.StepStatusApproved
			} else {
				effective[i] = entities.StepStatusPending
			}
		}
		if effective[i] == entities.StepStatusApproved {
			laterApproved = true
		}
	}
	return effective
}

// ExplicitStatuses lays stored documents out in workflow order. Steps with no
// record get StepStatusNone. Documents of unknown type are ignored.
func ExplicitStatuses(docs []*entities.VisaDocument) []entities.StepStatus {
	explicit := make([]entities.StepStatus, entities.VisaStepCount)
	for _, d := range docs {
		if d == nil {
			continue
		}
		if idx := d.Type.Index(); idx >= 0 {
			explicit[idx] = d.Status
		}
	}
	return explicit
}

// DocumentsByIndex returns the stored document for each step, nil when absent.
func DocumentsByIndex(docs []*entities.VisaDocument) []*entities.VisaDocument {
	out := make([]*entities.VisaDocument, entities.VisaStepCount)
	for _, d := range docs {
		if d == nil {
			continue
		}
		if idx := d.Type.Index(); idx >= 0 {
			out[idx] = d
		}
	}
	return out
}

// AllApproved reports whether every step is effectively approved.
func AllApproved(effective []entities.StepStatus) bool {
	if len(effective) == 0 {
		return false
	}
	for _, s := range effective {
		if s != entities.StepStatusApproved {
			return false
		}
	}
	return true
}
