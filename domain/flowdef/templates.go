package flowdef

import (
	"flowdeck/bizerror"
	"flowdeck/client/meta"
	"flowdeck/domain"
	"flowdeck/event"
	"flowdeck/idgen"
	"flowdeck/persistence"
	"flowdeck/session"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

var (
	idWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateFlowTemplateFunc     = CreateFlowTemplate
	QueryFlowTemplatesFunc     = QueryFlowTemplates
	DetailFlowTemplateFunc     = DetailFlowTemplate
	UpdateFlowTemplateBaseFunc = UpdateFlowTemplateBase
	ArchiveFlowTemplateFunc    = ArchiveFlowTemplate
)

// CreateFlowTemplate creates the template together with its v1 draft version.
func CreateFlowTemplate(c *FlowTemplateCreation, s *session.Session) (*FlowTemplateDetail, error) {
	if !s.Perms.HasRoleSuffix("_" + c.TenantID.String()) {
		return nil, bizerror.ErrForbidden
	}
	if !c.Category.IsValid() {
		return nil, &domain.ErrBadCategory{Category: c.Category}
	}

	now := time.Now().Round(time.Millisecond)
	template := domain.FlowTemplate{
		ID:         idgen.NextID(idWorker),
		ExternalID: uuid.New().String(),

		TenantID:    c.TenantID,
		AccountID:   c.AccountID,
		AppID:       c.AppID,
		TemplateKey: c.TemplateKey,

		Name:        c.Name,
		Description: c.Description,
		Category:    c.Category,
		Status:      domain.TemplateStatusDraft,

		CreatedBy: s.Identity.ID, UpdatedBy: s.Identity.ID,
		CreateTime: now, UpdateTime: now,
	}
	version := domain.FlowVersion{
		ID:         idgen.NextID(idWorker),
		ExternalID: uuid.New().String(),

		TemplateID:    template.ID,
		VersionNumber: 1,
		Status:        domain.VersionStatusDraft,

		CreatedBy:  s.Identity.ID,
		CreateTime: now, UpdateTime: now,
	}
	template.CurrentDraftVersionID = version.ID

	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(template).Error; err != nil {
			return err
		}
		if err := tx.Create(version).Error; err != nil {
			return err
		}
		var err error
		ev, err = event.CreateEvent(event.SourceTypeFlowTemplate, template.ID, template.Name,
			event.EventCategoryCreated, nil, &s.Identity, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}

	return &FlowTemplateDetail{FlowTemplate: template, DraftVersion: &version}, nil
}

func QueryFlowTemplates(query *FlowTemplateQuery, s *session.Session) (*[]domain.FlowTemplate, error) {
	visibleTenants := s.VisibleTenants()
	if len(visibleTenants) == 0 {
		return &[]domain.FlowTemplate{}, nil
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	q := db.Where(domain.FlowTemplate{TenantID: query.TenantID})
	if query.Name != "" {
		q = q.Where("name like ?", "%"+query.Name+"%")
	}
	if query.Status != "" {
		q = q.Where(domain.FlowTemplate{Status: query.Status})
	}
	q = q.Where("tenant_id in (?)", visibleTenants).Order("create_time ASC")

	var templates []domain.FlowTemplate
	if err := q.Find(&templates).Error; err != nil {
		return nil, err
	}
	return &templates, nil
}

func DetailFlowTemplate(id types.ID, s *session.Session) (*FlowTemplateDetail, error) {
	detail := FlowTemplateDetail{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&domain.FlowTemplate{ID: id}).First(&detail.FlowTemplate).Error; err != nil {
			return err
		}
		if !s.Perms.HasTenantViewPerm(detail.TenantID) {
			return bizerror.ErrForbidden
		}

		if detail.CurrentDraftVersionID != 0 {
			draft := domain.FlowVersion{}
			if err := tx.Where(&domain.FlowVersion{ID: detail.CurrentDraftVersionID}).First(&draft).Error; err != nil {
				return err
			}
			detail.DraftVersion = &draft
		}
		if detail.CurrentPublishedVersionID != 0 {
			published := domain.FlowVersion{}
			if err := tx.Where(&domain.FlowVersion{ID: detail.CurrentPublishedVersionID}).First(&published).Error; err != nil {
				return err
			}
			detail.PublishedVersion = &published
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func UpdateFlowTemplateBase(id types.ID, c *FlowTemplateBaseUpdation, s *session.Session) (*domain.FlowTemplate, error) {
	if !c.Category.IsValid() {
		return nil, &domain.ErrBadCategory{Category: c.Category}
	}

	template := domain.FlowTemplate{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&domain.FlowTemplate{ID: id}).First(&template).Error; err != nil {
			return err
		}
		if !s.Perms.HasRoleSuffix("_" + template.TenantID.String()) {
			return bizerror.ErrForbidden
		}
		if template.Status == domain.TemplateStatusArchived {
			return bizerror.ErrTemplateArchived
		}

		if err := tx.Model(&domain.FlowTemplate{}).Where(&domain.FlowTemplate{ID: id}).
			Update(&domain.FlowTemplate{Name: c.Name, Description: c.Description, Category: c.Category,
				UpdatedBy: s.Identity.ID, UpdateTime: time.Now().Round(time.Millisecond)}).Error; err != nil {
			return err
		}
		// query again
		if err := tx.Where(&domain.FlowTemplate{ID: id}).First(&template).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &template, nil
}

// ArchiveFlowTemplate retires the template. The record is soft deleted,
// never removed; submissions keep referencing it.
func ArchiveFlowTemplate(id types.ID, s *session.Session) error {
	template := domain.FlowTemplate{}
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&domain.FlowTemplate{ID: id}).First(&template).Error; err != nil {
			return err
		}
		if !s.Perms.HasRoleSuffix("_" + template.TenantID.String()) {
			return bizerror.ErrForbidden
		}

		now := time.Now().Round(time.Millisecond)
		if err := tx.Model(&domain.FlowTemplate{}).Where(&domain.FlowTemplate{ID: id}).
			Update(map[string]interface{}{"status": domain.TemplateStatusArchived,
				"updated_by": s.Identity.ID, "update_time": now}).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.FlowVersion{}).
			Where("template_id = ? AND status in (?)", id,
				[]domain.VersionStatus{domain.VersionStatusDraft, domain.VersionStatusPublished}).
			Update(map[string]interface{}{"status": domain.VersionStatusArchived, "update_time": now}).Error; err != nil {
			return err
		}
		// gorm soft delete: sets deleted_at
		if err := tx.Delete(&domain.FlowTemplate{ID: id}).Error; err != nil {
			return err
		}
		var err error
		ev, err = event.CreateEvent(event.SourceTypeFlowTemplate, template.ID, template.Name,
			event.EventCategoryDeleted, nil, &s.Identity, tx)
		return err
	})
	if err != nil {
		return err
	}
	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}

	// best effort: the archive already committed
	if template.CurrentPublishedVersionID != 0 {
		if err := meta.DeprecateFlowDocumentFunc(template.AppID, template.TemplateKey); err != nil {
			logrus.Warnf("failed to deprecate flow document of template %d: %v", template.ID, err)
		}
	}
	return nil
}
