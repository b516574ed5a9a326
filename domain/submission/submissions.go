package submission

import (
	"context"
	"flowdeck/bizerror"
	"flowdeck/domain"
	"flowdeck/event"
	"flowdeck/idgen"
	"flowdeck/persistence"
	"flowdeck/session"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	idWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateFlowSubmissionFunc       = CreateFlowSubmission
	QueryFlowSubmissionsFunc       = QueryFlowSubmissions
	DetailFlowSubmissionFunc       = DetailFlowSubmission
	UpdateFlowSubmissionStatusFunc = UpdateFlowSubmissionStatus
	LoadFlowSubmissionsFunc        = LoadFlowSubmissions
)

type FlowSubmissionCreation struct {
	TemplateID types.ID `json:"templateId" binding:"required"`

	ResponderPhone    string                  `json:"responderPhone"`
	Answers           domain.JSONObject       `json:"answers" binding:"required"`
	Source            domain.SubmissionSource `json:"source" binding:"required"`
	ExternalReference string                  `json:"externalReference"`
	SubmittedAt       *time.Time              `json:"submittedAt"`
}

type FlowSubmissionQuery struct {
	TenantID   types.ID                `form:"tenantId" json:"tenantId"`
	TemplateID types.ID                `form:"templateId" json:"templateId"`
	Status     domain.SubmissionStatus `form:"status" json:"status"`
}

type FlowSubmissionStatusUpdating struct {
	Status       domain.SubmissionStatus `json:"status" binding:"required"`
	ErrorMessage string                  `json:"errorMessage"`
}

// CreateFlowSubmission records one completed form run against the currently
// published version of the template. Raw answers are kept verbatim; the
// webhook mapping of the version re-keys them into the mapped response.
func CreateFlowSubmission(c *FlowSubmissionCreation, s *session.Session) (*domain.FlowSubmission, error) {
	record := domain.FlowSubmission{}
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		template := domain.FlowTemplate{}
		if err := tx.Unscoped().Where(&domain.FlowTemplate{ID: c.TemplateID}).First(&template).Error; err != nil {
			return err
		}
		if !s.Perms.HasRoleSuffix("_" + template.TenantID.String()) {
			return bizerror.ErrForbidden
		}
		if template.CurrentPublishedVersionID == 0 {
			return bizerror.ErrDraftNotFound
		}
		version := domain.FlowVersion{}
		if err := tx.Where(&domain.FlowVersion{ID: template.CurrentPublishedVersionID}).First(&version).Error; err != nil {
			return err
		}

		now := time.Now().Round(time.Millisecond)
		submittedAt := now
		if c.SubmittedAt != nil {
			submittedAt = *c.SubmittedAt
		}
		record = domain.FlowSubmission{
			ID:         idgen.NextID(idWorker),
			ExternalID: uuid.New().String(),

			TemplateID: template.ID,
			VersionID:  version.ID,
			TenantID:   template.TenantID,
			AccountID:  template.AccountID,
			AppID:      template.AppID,

			ResponderPhone:    c.ResponderPhone,
			Answers:           c.Answers,
			MappedResponse:    applyWebhookMapping(version.WebhookMapping, c.Answers),
			Status:            domain.SubmissionStatusReceived,
			Source:            c.Source,
			ExternalReference: c.ExternalReference,

			SubmittedAt: submittedAt,
			CreateTime:  now, UpdateTime: now,
		}
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		var err error
		ev, err = event.CreateEvent(event.SourceTypeFlowSubmission, record.ID, record.ExternalID,
			event.EventCategoryCreated, nil, &s.Identity, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &record, nil
}

// applyWebhookMapping re-keys raw answers: each mapping entry names the
// outgoing field and the variable key it reads from. Unmapped answers are
// dropped from the mapped response, missing variables map to nil.
func applyWebhookMapping(mapping domain.JSONObject, answers domain.JSONObject) domain.JSONObject {
	if len(mapping) == 0 {
		return answers
	}
	mapped := domain.JSONObject{}
	for field, variable := range mapping {
		variableKey, ok := variable.(string)
		if !ok {
			continue
		}
		mapped[field] = answers[variableKey]
	}
	return mapped
}

func QueryFlowSubmissions(query *FlowSubmissionQuery, s *session.Session) (*[]domain.FlowSubmission, error) {
	visibleTenants := s.VisibleTenants()
	if len(visibleTenants) == 0 {
		return &[]domain.FlowSubmission{}, nil
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	q := db.Where(domain.FlowSubmission{TenantID: query.TenantID, TemplateID: query.TemplateID, Status: query.Status}).
		Where("tenant_id in (?)", visibleTenants).Order("submitted_at DESC")

	var records []domain.FlowSubmission
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return &records, nil
}

// LoadFlowSubmissions pages through all submissions in id order, used by
// the index full sync which runs outside any user session.
func LoadFlowSubmissions(page, size int) ([]domain.FlowSubmission, error) {
	offset := (page - 1) * size
	if offset < 0 {
		offset = 0
	}
	var records []domain.FlowSubmission
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	if err := db.Order("id ASC").Offset(offset).Limit(size).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func DetailFlowSubmission(id types.ID, s *session.Session) (*domain.FlowSubmission, error) {
	record := domain.FlowSubmission{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where(&domain.FlowSubmission{ID: id}).First(&record).Error; err != nil {
		return nil, err
	}
	if !s.Perms.HasTenantViewPerm(record.TenantID) {
		return nil, bizerror.ErrForbidden
	}
	return &record, nil
}

// UpdateFlowSubmissionStatus moves a submission along its processing
// lifecycle. The error message is only kept for FAILED.
func UpdateFlowSubmissionStatus(id types.ID, u *FlowSubmissionStatusUpdating, s *session.Session) (*domain.FlowSubmission, error) {
	record := domain.FlowSubmission{}
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&domain.FlowSubmission{ID: id}).First(&record).Error; err != nil {
			return err
		}
		if !s.Perms.HasRoleSuffix("_" + record.TenantID.String()) {
			return bizerror.ErrForbidden
		}

		errorMessage := ""
		if u.Status == domain.SubmissionStatusFailed {
			errorMessage = u.ErrorMessage
		}
		now := time.Now().Round(time.Millisecond)
		if err := tx.Model(&domain.FlowSubmission{}).Where(&domain.FlowSubmission{ID: id}).
			Update(map[string]interface{}{"status": u.Status, "error_message": errorMessage,
				"update_time": now}).Error; err != nil {
			return err
		}
		if err := tx.Where(&domain.FlowSubmission{ID: id}).First(&record).Error; err != nil {
			return err
		}

		updates := event.UpdatedProperties{{
			PropertyName: "status", PropertyDesc: "status",
			NewValue: string(u.Status), NewValueDesc: string(u.Status),
		}}
		var err error
		ev, err = event.CreateEvent(event.SourceTypeFlowSubmission, record.ID, record.ExternalID,
			event.EventCategoryPropertyUpdated, updates, &s.Identity, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &record, nil
}
