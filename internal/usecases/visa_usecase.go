package usecases

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"visa-onboarding.backend/internal/domain/entities"
	domainerrors "visa-onboarding.backend/internal/domain/errors"
	"visa-onboarding.backend/internal/domain/events"
	"visa-onboarding.backend/internal/domain/repositories"
	"visa-onboarding.backend/internal/domain/visa"
	"visa-onboarding.backend/internal/metrics"
	"visa-onboarding.backend/pkg/logger"
)

const visaLockPrefix = "lock:visa:"

// VisaUsecase runs the OPT document workflow: the workflow view, employee
// uploads and HR reviews. Availability always comes from package visa.
type VisaUsecase struct {
	docRepo        repositories.VisaDocumentRepository
	onboardingRepo repositories.OnboardingRepository
	userRepo       repositories.UserRepository
	uow            repositories.UnitOfWork
	locker         repositories.Locker
	publisher      events.Publisher
	metrics        *metrics.Metrics
	now            func() time.Time
}

// NewVisaUsecase creates a new visa usecase. locker may be nil.
func NewVisaUsecase(
	docRepo repositories.VisaDocumentRepository,
	onboardingRepo repositories.OnboardingRepository,
	userRepo repositories.UserRepository,
	uow repositories.UnitOfWork,
	locker repositories.Locker,
	publisher events.Publisher,
	m *metrics.Metrics,
) *VisaUsecase {
	return &VisaUsecase{
		docRepo:        docRepo,
		onboardingRepo: onboardingRepo,
		userRepo:       userRepo,
		uow:            uow,
		locker:         locker,
		publisher:      publisher,
		metrics:        m,
		now:            time.Now,
	}
}

// GetWorkflow returns the employee's workflow view
func (u *VisaUsecase) GetWorkflow(ctx context.Context, employeeID uuid.UUID) (*entities.VisaWorkflow, error) {
	ev, err := u.evaluate(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return ev.View(employeeID), nil
}

// GetEmployeeWorkflow is the HR variant of GetWorkflow; the id must belong to an employee
func (u *VisaUsecase) GetEmployeeWorkflow(ctx context.Context, employeeID uuid.UUID) (*entities.VisaWorkflow, error) {
	user, err := u.userRepo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if user.Role != entities.UserRoleEmployee {
		return nil, domainerrors.ErrNotFound
	}
	return u.GetWorkflow(ctx, employeeID)
}

// UploadStep stores a (re)upload for the step named by clientKey
func (u *VisaUsecase) UploadStep(ctx context.Context, employeeID uuid.UUID, clientKey, fileRef string) (*entities.VisaWorkflow, error) {
	docType, err := entities.ParseClientDocumentKey(clientKey)
	if err != nil {
		return nil, err
	}
	fileRef = strings.TrimSpace(fileRef)
	if fileRef == "" {
		return nil, domainerrors.ErrFileRequired
	}
	idx := docType.Index()

	release, err := u.lock(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	defer release()

	var after visa.Evaluation
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		before, err := u.evaluate(txCtx, employeeID)
		if err != nil {
			return err
		}

		gate := before.Gates[idx]
		if !gate.Available {
			return domainerrors.StepNotAvailable(gate.Reason)
		}

		doc := before.Documents[idx]
		if doc == nil {
			doc = &entities.VisaDocument{EmployeeID: employeeID, Type: docType}
		}
		doc.Reupload(fileRef, u.now())
		if err := u.docRepo.Upsert(txCtx, doc); err != nil {
			return err
		}

		after = visa.Evaluate(before.Onboarding, replaceDocument(before.Documents, doc))
		return nil
	})
	if err != nil {
		u.recordConflict(err)
		return nil, err
	}

	u.metrics.VisaUploaded(string(docType))
	u.publisher.Publish(ctx, events.New(events.TypeVisaDocumentUploaded, employeeID, employeeID, map[string]string{
		"step":    string(docType),
		"fileRef": fileRef,
	}))
	logger.Info(ctx, "visa document uploaded", zap.String("employee_id", employeeID.String()), zap.String("step", string(docType)))

	return after.View(employeeID), nil
}

// ReviewStep applies an HR decision to a stored, available step. The type
// may be the canonical value or the client key. Re-sending the decision a
// step already carries returns the current view without writing.
func (u *VisaUsecase) ReviewStep(ctx context.Context, reviewerID, employeeID uuid.UUID, rawType string, input *entities.ReviewInput) (*entities.VisaWorkflow, error) {
	docType, err := entities.ParseDocumentType(rawType)
	if err != nil {
		return nil, err
	}
	decision, err := entities.ParseReviewDecision(input.Decision)
	if err != nil {
		return nil, err
	}
	idx := docType.Index()

	release, err := u.lock(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	defer release()

	var before, after visa.Evaluation
	var reviewed *entities.VisaDocument
	changed := false
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		before, err = u.evaluate(txCtx, employeeID)
		if err != nil {
			return err
		}

		doc := before.Documents[idx]
		if doc == nil {
			return domainerrors.ErrStepNotFound
		}
		if gate := before.Gates[idx]; !gate.Available {
			return domainerrors.StepNotAvailable(gate.Reason)
		}

		updated := *doc
		changed, err = updated.Review(decision, input.Feedback, reviewerID, u.now())
		if err != nil {
			return err
		}
		if !changed {
			after = before
			return nil
		}
		if err := u.docRepo.Upsert(txCtx, &updated); err != nil {
			return err
		}

		reviewed = &updated
		after = visa.Evaluate(before.Onboarding, replaceDocument(before.Documents, &updated))
		return nil
	})
	if err != nil {
		u.recordConflict(err)
		return nil, err
	}
	if !changed {
		return after.View(employeeID), nil
	}

	u.metrics.VisaReviewed(string(docType), string(decision))
	logger.Info(ctx, "visa document reviewed",
		zap.String("employee_id", employeeID.String()),
		zap.String("step", string(docType)),
		zap.String("decision", string(decision)),
	)
	u.publishReview(ctx, reviewerID, employeeID, reviewed, before, after)

	return after.View(employeeID), nil
}

// ListInProgress returns employees with at least one document whose
// workflow is not complete, ordered by name
func (u *VisaUsecase) ListInProgress(ctx context.Context, limit, offset int) ([]*entities.VisaWorkflowSummary, int64, error) {
	ids, err := u.docRepo.ListEmployeesWithDocuments(ctx)
	if err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return []*entities.VisaWorkflowSummary{}, 0, nil
	}

	statuses, err := u.onboardingRepo.StatusesByEmployees(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	users, err := u.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	byID := make(map[uuid.UUID]*entities.User, len(users))
	for _, usr := range users {
		byID[usr.ID] = usr
	}

	summaries := make([]*entities.VisaWorkflowSummary, 0, len(ids))
	for _, id := range ids {
		status, ok := statuses[id]
		if !ok {
			status = entities.OnboardingNeverSubmitted
		}
		docs, err := u.docRepo.ListByEmployee(ctx, id)
		if err != nil {
			return nil, 0, err
		}
		ev := visa.Evaluate(status, docs)
		if ev.Complete() {
			continue
		}

		s := &entities.VisaWorkflowSummary{EmployeeID: id, NextAction: ev.NextAction()}
		if usr, ok := byID[id]; ok {
			s.Name = usr.Name
			s.Email = usr.Email
		}
		if step, ok := ev.Current(); ok {
			t := step.Type
			s.CurrentStep = &t
			s.CurrentState = ev.Effective[step.Index]
		}
		summaries = append(summaries, s)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].Name != summaries[j].Name {
			return summaries[i].Name < summaries[j].Name
		}
		return summaries[i].EmployeeID.String() < summaries[j].EmployeeID.String()
	})

	total := int64(len(summaries))
	return paginate(summaries, limit, offset), total, nil
}

func (u *VisaUsecase) evaluate(ctx context.Context, employeeID uuid.UUID) (visa.Evaluation, error) {
	status, err := u.onboardingRepo.Status(ctx, employeeID)
	if err != nil {
		return visa.Evaluation{}, err
	}
	docs, err := u.docRepo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return visa.Evaluation{}, err
	}
	return visa.Evaluate(status, docs), nil
}

func (u *VisaUsecase) lock(ctx context.Context, employeeID uuid.UUID) (func(), error) {
	if u.locker == nil {
		return func() {}, nil
	}
	return u.locker.Acquire(ctx, visaLockPrefix+employeeID.String())
}

func (u *VisaUsecase) recordConflict(err error) {
	switch {
	case errors.Is(err, domainerrors.ErrConflict):
		u.metrics.Conflict("version")
	case errors.Is(err, domainerrors.ErrLocked):
		u.metrics.Conflict("lock")
	}
}

func (u *VisaUsecase) publishReview(ctx context.Context, reviewerID, employeeID uuid.UUID, doc *entities.VisaDocument, before, after visa.Evaluation) {
	recipient := u.recipient(ctx, employeeID)
	step := string(doc.Type)

	if doc.Status == entities.StepStatusRejected {
		ev := events.New(events.TypeVisaDocumentRejected, employeeID, reviewerID, map[string]string{
			"step":     step,
			"feedback": doc.Feedback.String,
		})
		ev.Recipient = recipient
		u.publisher.Publish(ctx, ev)
		return
	}

	ev := events.New(events.TypeVisaDocumentApproved, employeeID, reviewerID, map[string]string{"step": step})
	ev.Recipient = recipient
	u.publisher.Publish(ctx, ev)

	if after.Complete() {
		if !before.Complete() {
			u.metrics.VisaWorkflowCompleted()
			done := events.New(events.TypeVisaWorkflowCompleted, employeeID, reviewerID, nil)
			done.Recipient = recipient
			u.publisher.Publish(ctx, done)
		}
		return
	}

	next, ok := after.NextAvailable()
	if !ok {
		return
	}
	if prev, had := before.NextAvailable(); had && prev.Index == next.Index {
		return
	}
	nextEv := events.New(events.TypeVisaNextStepAvailable, employeeID, reviewerID, map[string]string{
		"step":  string(next.Type),
		"label": next.Label,
	})
	nextEv.Recipient = recipient
	u.publisher.Publish(ctx, nextEv)
}

func (u *VisaUsecase) recipient(ctx context.Context, employeeID uuid.UUID) string {
	user, err := u.userRepo.GetByID(ctx, employeeID)
	if err != nil {
		logger.Warn(ctx, "notification recipient lookup failed", zap.String("employee_id", employeeID.String()), zap.Error(err))
		return ""
	}
	return user.Email
}

func replaceDocument(docs []*entities.VisaDocument, doc *entities.VisaDocument) []*entities.VisaDocument {
	out := make([]*entities.VisaDocument, 0, len(docs)+1)
	for _, d := range docs {
		if d != nil && d.Type != doc.Type {
			out = append(out, d)
		}
	}
	return append(out, doc)
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	if offset < 0 {
		offset = 0
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
