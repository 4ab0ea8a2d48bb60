package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"tipmap-service/internal/identity"
	"tipmap-service/internal/model"
	"tipmap-service/internal/repository"
	"tipmap-service/prometheus"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// State tracks how far a submission got through the pipeline.
type State string

const (
	StateValidating        State = "validating"
	StateResolvingIdentity State = "resolving_identity"
	StateUpsertingBusiness State = "upserting_business"
	StateInsertingReport   State = "inserting_report"
	StateCommitted         State = "committed"
	StateFailed            State = "failed"
)

// Submission carries the raw form fields of one report submission.
type Submission struct {
	Country      string            `json:"country" validate:"required,oneof=US CA"`
	BusinessName string            `json:"business_name" validate:"required,min=2"`
	Address      string            `json:"address" validate:"required,min=5"`
	City         string            `json:"city" validate:"required,min=2"`
	State        string            `json:"state" validate:"required,len=2"`
	ZipCode      string            `json:"zip_code" validate:"required"`
	TipPractice  model.TipPractice `json:"tip_practice" validate:"required"`

	TipsGoToStaff           *bool    `json:"tips_go_to_staff"`
	SuggestedTips           []int    `json:"suggested_tips" validate:"omitempty,dive,min=0,max=100"`
	ServiceChargePercentage *int     `json:"service_charge_percentage" validate:"omitempty,min=0,max=100"`
	Details                 *string  `json:"details"`
	Latitude                *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude               *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`

	// UserID is filled from the session, never from the request body.
	UserID *string `json:"-"`
}

// Outcome reports the result of one submission attempt. On failure State is
// StateFailed and FailedAt names the step that broke.
type Outcome struct {
	State           State  `json:"state"`
	FailedAt        State  `json:"failed_at,omitempty"`
	BusinessID      string `json:"business_id,omitempty"`
	ReportID        string `json:"report_id,omitempty"`
	BusinessCreated bool   `json:"business_created"`
}

// Country-specific postal code patterns. US: 5 digits or ZIP+4.
// Canada: letter-digit-letter space digit-letter-digit.
var postalPatterns = map[string]*regexp.Regexp{
	"US": regexp.MustCompile(`^\d{5}(-\d{4})?$`),
	"CA": regexp.MustCompile(`^[A-Za-z]\d[A-Za-z] \d[A-Za-z]\d$`),
}

// SubmissionService orchestrates the write path: validate the form, resolve
// the business identity, upsert the business, attach the new report.
type SubmissionService struct {
	businesses repository.BusinessRepository
	reports    repository.ReportRepository
	validate   *validator.Validate
	log        *zap.Logger
}

func NewSubmissionService(businesses repository.BusinessRepository, reports repository.ReportRepository, log *zap.Logger) *SubmissionService {
	return &SubmissionService{
		businesses: businesses,
		reports:    reports,
		validate:   newSubmissionValidator(),
		log:        log,
	}
}

func newSubmissionValidator() *validator.Validate {
	v := validator.New()
	// Report errors under the wire field names, not the Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Submit runs the pipeline for one submission. Exactly one business row is
// created or updated and exactly one report row is created per successful
// call. A report-insert failure after the business upsert leaves the
// business row in place: a business without reports has no visible effect
// and the state is recoverable by resubmitting.
func (s *SubmissionService) Submit(ctx context.Context, sub Submission) (Outcome, error) {
	outcome := Outcome{State: StateValidating}

	if verr := s.validateSubmission(sub); verr != nil {
		outcome.State = StateFailed
		outcome.FailedAt = StateValidating
		return outcome, verr
	}

	// Persistence work only from here on; validation failures never reach
	// the database.
	defer prometheus.TrackDBOperation("submit_report")(time.Now())

	outcome.State = StateResolvingIdentity
	hash, err := identity.Resolve(sub.BusinessName, sub.Address, sub.City, sub.State, sub.ZipCode)
	if err != nil {
		// Empty identity fields are a submitter problem, not a pipeline one.
		var invalid *identity.InvalidInputError
		outcome.State = StateFailed
		outcome.FailedAt = StateResolvingIdentity
		if errors.As(err, &invalid) {
			return outcome, ValidationErrors{{Field: invalid.Field, Message: "is required"}}
		}
		return outcome, err
	}

	outcome.State = StateUpsertingBusiness
	business := &model.Business{
		Hash:      hash,
		Name:      sub.BusinessName,
		Address:   sub.Address,
		City:      sub.City,
		State:     sub.State,
		ZipCode:   sub.ZipCode,
		Country:   sub.Country,
		Latitude:  sub.Latitude,
		Longitude: sub.Longitude,
	}
	created, err := s.businesses.Upsert(ctx, business)
	if err != nil {
		outcome.State = StateFailed
		outcome.FailedAt = StateUpsertingBusiness
		return outcome, classifyWriteError(err)
	}
	outcome.BusinessID = business.ID
	outcome.BusinessCreated = created

	outcome.State = StateInsertingReport
	report := s.buildReport(business.ID, sub)
	if err := s.reports.Create(ctx, report); err != nil {
		// The business row stays; without at least one report it has no
		// visible effect, so this is a recoverable failed outcome.
		s.log.Warn("Report insert failed after business upsert",
			zap.String("business_id", business.ID),
			zap.Error(err))
		outcome.State = StateFailed
		outcome.FailedAt = StateInsertingReport
		return outcome, classifyWriteError(err)
	}
	outcome.ReportID = report.ID

	outcome.State = StateCommitted
	s.log.Info("Report submitted",
		zap.String("business_id", business.ID),
		zap.String("report_id", report.ID),
		zap.String("tip_practice", string(sub.TipPractice)),
		zap.Bool("business_created", created))
	return outcome, nil
}

// buildReport drops optional fields that do not apply to the reported
// category, so a category switch can never leave stale cross-category data.
func (s *SubmissionService) buildReport(businessID string, sub Submission) *model.Report {
	report := &model.Report{
		BusinessID:  businessID,
		UserID:      sub.UserID,
		TipPractice: sub.TipPractice,
		Details:     sub.Details,
	}
	if sub.TipPractice.TipRelevant() {
		report.TipsGoToStaff = sub.TipsGoToStaff
	}
	if sub.TipPractice == model.TipPracticeTipRequested && len(sub.SuggestedTips) > 0 {
		report.SuggestedTips = datatypes.JSONSlice[int](sub.SuggestedTips)
	}
	if sub.TipPractice == model.TipPracticeServiceCharge {
		report.ServiceChargePercentage = sub.ServiceChargePercentage
	}
	return report
}

// validateSubmission collects every field problem into one ValidationErrors
// value so the form can show them all at once.
func (s *SubmissionService) validateSubmission(sub Submission) error {
	var fieldErrors ValidationErrors

	if err := s.validate.Struct(sub); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		for _, fe := range verrs {
			fieldErrors = append(fieldErrors, FieldError{
				Field:   fe.Field(),
				Message: messageForTag(fe),
			})
		}
	}

	if sub.TipPractice != "" && !sub.TipPractice.Valid() {
		fieldErrors = append(fieldErrors, FieldError{
			Field:   "tip_practice",
			Message: "must be one of no_tipping, tip_requested, service_charge",
		})
	}

	if pattern, ok := postalPatterns[sub.Country]; ok && sub.ZipCode != "" {
		if !pattern.MatchString(sub.ZipCode) {
			fieldErrors = append(fieldErrors, FieldError{
				Field:   "zip_code",
				Message: "is not a valid postal code for " + sub.Country,
			})
		}
	}

	if len(fieldErrors) > 0 {
		return fieldErrors
	}
	return nil
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}

// classifyWriteError maps database failures onto the caller-facing taxonomy:
// cancelled or timed-out writes have an unknown outcome and are retry-safe,
// residual constraint violations are conflicts.
func classifyWriteError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", ErrTransient, err)
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
}
