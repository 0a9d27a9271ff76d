package services

import (
	"context"
	"errors"
	"time"

	"github.com/g-rown/UAct-BackEnd/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WorkflowService owns the application/approval workflow: submission,
// the decision state machine, seat accounting and hour accrual. Every
// state transition runs inside a single transaction so a decision, its
// seat reservation and the service-log update commit or roll back
// together. There are no save hooks; every side effect is an explicit
// call from the transition that causes it.
type WorkflowService struct {
	db *gorm.DB
}

// NewWorkflowService creates a new workflow service
func NewWorkflowService(db *gorm.DB) *WorkflowService {
	return &WorkflowService{db: db}
}

// SubmitInput is the contact snapshot captured with an application
type SubmitInput struct {
	ContactNumber    string
	Address          string
	EmergencyContact string
	EmergencyNumber  string
}

// SubmitApplication files an application for (student, program) and creates
// its service log. Seats are NOT reserved here; that happens at approval.
// A program that is currently full refuses new applications outright.
func (s *WorkflowService) SubmitApplication(ctx context.Context, studentID, programID uint, input SubmitInput) (*model.ProgramApplication, error) {
	var application model.ProgramApplication

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var program model.Program
		if err := tx.First(&program, programID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if program.IsFull() {
			return ErrProgramFull
		}

		var count int64
		if err := tx.Model(&model.ProgramApplication{}).
			Where("student_id = ? AND program_id = ?", studentID, programID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateApplication
		}

		now := time.Now()
		application = model.ProgramApplication{
			StudentID:        studentID,
			ProgramID:        programID,
			SubmittedAt:      now,
			ContactNumber:    input.ContactNumber,
			Address:          input.Address,
			EmergencyContact: input.EmergencyContact,
			EmergencyNumber:  input.EmergencyNumber,
		}

		if err := tx.Create(&application).Error; err != nil {
			// Composite unique index catches the race two concurrent
			// submissions would otherwise win together.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateApplication
			}
			return err
		}

		serviceLog := model.ServiceLog{
			ApplicationID: application.ID,
			Status:        model.DeriveFulfillmentStatus(program.Date, now),
			Accepted:      false,
			Approved:      false,
		}

		return tx.Create(&serviceLog).Error
	})

	if err != nil {
		return nil, err
	}

	return &application, nil
}

// Decide applies an admin verdict to a pending application. Approving
// reserves one seat through a guarded conditional update; if no seat
// remains the whole decision rolls back with ErrProgramFull. Deciding a
// non-pending application fails with AlreadyDecidedError, and concurrent
// decisions serialize on the application row lock so exactly one wins.
func (s *WorkflowService) Decide(ctx context.Context, applicationID, adminID uint, outcome model.DecisionStatus) (*model.ProgramDecision, error) {
	if outcome != model.DecisionApproved && outcome != model.DecisionRejected {
		return nil, errors.New("outcome must be approved or rejected")
	}

	var decision model.ProgramDecision

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var application model.ProgramApplication
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&application, applicationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		current, err := latestDecisionStatus(tx, applicationID)
		if err != nil {
			return err
		}
		if current != model.DecisionPending {
			return &AlreadyDecidedError{Status: current}
		}

		decision = model.ProgramDecision{
			ApplicationID: applicationID,
			Status:        outcome,
			DecidedBy:     adminID,
			DecidedAt:     time.Now(),
		}
		if err := tx.Create(&decision).Error; err != nil {
			return err
		}

		var program model.Program
		if err := tx.First(&program, application.ProgramID).Error; err != nil {
			return err
		}

		if outcome == model.DecisionApproved {
			// Guarded seat reservation: the WHERE clause keeps slots_taken
			// from ever exceeding slots, whatever else is in flight.
			res := tx.Model(&model.Program{}).
				Where("id = ? AND slots_taken < slots", program.ID).
				UpdateColumn("slots_taken", gorm.Expr("slots_taken + 1"))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrProgramFull
			}
		}

		accepted := outcome == model.DecisionApproved
		return tx.Model(&model.ServiceLog{}).
			Where("application_id = ?", applicationID).
			Updates(map[string]interface{}{
				"accepted": accepted,
				"status":   model.DeriveFulfillmentStatus(program.Date, time.Now()),
			}).Error
	})

	if err != nil {
		return nil, err
	}

	return &decision, nil
}

// ApproveServiceLog accredits the hours behind a service log. The approved
// flag flips through a guarded conditional update so a log can only ever be
// accredited once; the accrual commits in the same transaction as the flip.
func (s *WorkflowService) ApproveServiceLog(ctx context.Context, logID, adminID uint) (*model.ServiceLog, error) {
	var serviceLog model.ServiceLog

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&serviceLog, logID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		now := time.Now()
		res := tx.Model(&model.ServiceLog{}).
			Where("id = ? AND approved = ?", logID, false).
			Updates(map[string]interface{}{
				"approved":    true,
				"approved_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyApproved
		}

		var application model.ProgramApplication
		if err := tx.First(&application, serviceLog.ApplicationID).Error; err != nil {
			return err
		}

		var program model.Program
		if err := tx.First(&program, application.ProgramID).Error; err != nil {
			return err
		}

		if err := s.accrueHours(tx, application.StudentID, program.Hours); err != nil {
			return err
		}

		serviceLog.Approved = true
		serviceLog.ApprovedAt = &now
		return nil
	})

	if err != nil {
		return nil, err
	}

	return &serviceLog, nil
}

// accrueHours credits hours to a student profile. Unexported on purpose:
// the approved-flag transition in ApproveServiceLog is the only caller,
// which is what guarantees hours are awarded at most once per log.
func (s *WorkflowService) accrueHours(tx *gorm.DB, studentID uint, hours int) error {
	res := tx.Model(&model.StudentProfile{}).
		Where("id = ?", studentID).
		UpdateColumn("hours_completed", gorm.Expr("hours_completed + ?", hours))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CurrentStatus resolves the decision state of an application from its
// latest decision record; an application with no decisions is pending.
func (s *WorkflowService) CurrentStatus(ctx context.Context, applicationID uint) (model.DecisionStatus, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.ProgramApplication{}).
		Where("id = ?", applicationID).Count(&count).Error; err != nil {
		return "", err
	}
	if count == 0 {
		return "", ErrNotFound
	}

	return latestDecisionStatus(s.db.WithContext(ctx), applicationID)
}

// GetServiceLog loads a service log with its fulfillment status recomputed
// from the program date as of now. The stored column is refreshed when it
// drifted, outside any decision transition.
func (s *WorkflowService) GetServiceLog(ctx context.Context, logID uint) (*model.ServiceLog, error) {
	var serviceLog model.ServiceLog
	err := s.db.WithContext(ctx).
		Preload("Application").
		Preload("Application.Program").
		First(&serviceLog, logID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	derived := model.DeriveFulfillmentStatus(serviceLog.Application.Program.Date, time.Now())
	if derived != serviceLog.Status {
		if err := s.db.WithContext(ctx).Model(&model.ServiceLog{}).
			Where("id = ?", serviceLog.ID).
			UpdateColumn("status", derived).Error; err != nil {
			return nil, err
		}
		serviceLog.Status = derived
	}

	return &serviceLog, nil
}

// latestDecisionStatus reads the most recent decision for an application.
// Runs against whatever tx/session it is handed, so decision-time callers
// inherit the application row lock taken by their transaction.
func latestDecisionStatus(tx *gorm.DB, applicationID uint) (model.DecisionStatus, error) {
	var decisions []model.ProgramDecision
	err := tx.Where("application_id = ?", applicationID).
		Order("decided_at DESC").
		Limit(1).
		Find(&decisions).Error
	if err != nil {
		return "", err
	}

	if len(decisions) == 0 {
		return model.DecisionPending, nil
	}
	return decisions[0].Status, nil
}
