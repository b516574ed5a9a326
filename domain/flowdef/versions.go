package flowdef

import (
	"bytes"
	"encoding/json"
	"flowdeck/bizerror"
	"flowdeck/client/meta"
	"flowdeck/client/s3"
	"flowdeck/domain"
	"flowdeck/domain/flowcompile"
	"flowdeck/event"
	"flowdeck/idgen"
	"flowdeck/persistence"
	"flowdeck/session"
	"fmt"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

var (
	DetailFlowVersionFunc     = DetailFlowVersion
	CompileFlowVersionFunc    = CompileFlowVersion
	PublishFlowVersionFunc    = PublishFlowVersion
	RejectFlowVersionFunc     = RejectFlowVersion
	FetchArchivedDocumentFunc = FetchArchivedDocument
)

func DetailFlowVersion(versionId types.ID, s *session.Session) (*FlowVersionDetail, error) {
	detail := FlowVersionDetail{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&domain.FlowVersion{ID: versionId}).First(&detail.FlowVersion).Error; err != nil {
			return err
		}
		template := domain.FlowTemplate{}
		if err := tx.Unscoped().Where(&domain.FlowTemplate{ID: detail.TemplateID}).First(&template).Error; err != nil {
			return err
		}
		if !s.Perms.HasTenantViewPerm(template.TenantID) {
			return bizerror.ErrForbidden
		}

		nodes, err := LoadVersionGraph(tx, versionId)
		if err != nil {
			return err
		}
		detail.Screens = graphToDetails(nodes)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// CompileFlowVersion renders the external document of any version,
// published or still in draft. Draft previews go through the compiled
// document cache keyed by the version update time.
func CompileFlowVersion(versionId types.ID, s *session.Session) (*flowcompile.Document, error) {
	var doc *flowcompile.Document
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		version := domain.FlowVersion{}
		if err := tx.Where(&domain.FlowVersion{ID: versionId}).First(&version).Error; err != nil {
			return err
		}
		template := domain.FlowTemplate{}
		if err := tx.Unscoped().Where(&domain.FlowTemplate{ID: version.TemplateID}).First(&template).Error; err != nil {
			return err
		}
		if !s.Perms.HasTenantViewPerm(template.TenantID) {
			return bizerror.ErrForbidden
		}

		nodes, err := LoadVersionGraph(tx, versionId)
		if err != nil {
			return err
		}
		cacheKey := fmt.Sprintf("%s@%d", version.ID.String(), version.UpdateTime.UnixNano())
		doc = flowcompile.CompileWithCache(cacheKey, template, nodes)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// PublishFlowVersion promotes the current draft of the template. The draft
// must pass the full graph validation, the previously published version is
// archived, and a successor draft carrying a copy of the published graph is
// opened so editing can continue immediately.
func PublishFlowVersion(templateId types.ID, s *session.Session) (*FlowTemplateDetail, error) {
	var detail *FlowTemplateDetail
	var publishedDoc *flowcompile.Document
	var publishedVersion domain.FlowVersion
	var ev *event.EventRecord

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		template := domain.FlowTemplate{}
		if err := tx.Where(&domain.FlowTemplate{ID: templateId}).First(&template).Error; err != nil {
			return err
		}
		if !s.Perms.HasRoleSuffix("_" + template.TenantID.String()) {
			return bizerror.ErrForbidden
		}
		if template.Status == domain.TemplateStatusArchived {
			return bizerror.ErrTemplateArchived
		}
		if template.CurrentDraftVersionID == 0 {
			return bizerror.ErrDraftNotFound
		}

		draft := domain.FlowVersion{}
		if err := tx.Where(&domain.FlowVersion{ID: template.CurrentDraftVersionID}).First(&draft).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return bizerror.ErrDraftNotFound
			}
			return err
		}

		nodes, err := LoadVersionGraph(tx, draft.ID)
		if err != nil {
			return err
		}
		if err := ValidateVersionGraphFunc(nodes); err != nil {
			return err
		}
		// compiled fresh, not from cache: the archive must hold exactly
		// what was validated in this transaction
		doc := flowcompile.Compile(template, nodes)

		result, err := meta.PublishFlowDocumentFunc(template.AppID, template.TemplateKey, doc)
		if err != nil {
			return err
		}
		logrus.Infof("flow document of template %d published, external reference: %s", template.ID, result.ExternalFlowID)

		now := time.Now().Round(time.Millisecond)
		if template.CurrentPublishedVersionID != 0 {
			if err := tx.Model(&domain.FlowVersion{}).
				Where("id = ? AND status = ?", template.CurrentPublishedVersionID, domain.VersionStatusPublished).
				Update(map[string]interface{}{"status": domain.VersionStatusArchived, "update_time": now}).Error; err != nil {
				return err
			}
		}

		promote := tx.Model(&domain.FlowVersion{}).
			Where("id = ? AND status = ?", draft.ID, domain.VersionStatusDraft).
			Update(map[string]interface{}{"status": domain.VersionStatusPublished,
				"published_at": now, "approved_by": s.Identity.ID, "update_time": now})
		if promote.Error != nil {
			return promote.Error
		}
		if promote.RowsAffected != 1 {
			return bizerror.ErrPublishConflict
		}

		successor := domain.FlowVersion{
			ID:         idgen.NextID(idWorker),
			ExternalID: uuid.New().String(),

			TemplateID:    template.ID,
			VersionNumber: draft.VersionNumber + 1,
			Status:        domain.VersionStatusDraft,

			WebhookMapping: draft.WebhookMapping,
			ResponseSchema: draft.ResponseSchema,

			CreatedBy:  s.Identity.ID,
			CreateTime: now, UpdateTime: now,
		}
		if err := tx.Create(successor).Error; err != nil {
			return err
		}
		if err := copyVersionGraph(tx, nodes, successor.ID, now); err != nil {
			return err
		}

		if err := tx.Model(&domain.FlowTemplate{}).Where(&domain.FlowTemplate{ID: template.ID}).
			Update(map[string]interface{}{"status": domain.TemplateStatusPublished,
				"current_published_version_id": draft.ID, "current_draft_version_id": successor.ID,
				"updated_by": s.Identity.ID, "update_time": now}).Error; err != nil {
			return err
		}

		if ev, err = event.CreateEvent(event.SourceTypeFlowVersion, draft.ID,
			fmt.Sprintf("%s v%d", template.Name, draft.VersionNumber),
			event.EventCategoryPublished, nil, &s.Identity, tx); err != nil {
			return err
		}

		if err := tx.Where(&domain.FlowVersion{ID: draft.ID}).First(&publishedVersion).Error; err != nil {
			return err
		}
		if err := tx.Where(&domain.FlowTemplate{ID: template.ID}).First(&template).Error; err != nil {
			return err
		}
		publishedDoc = doc
		detail = &FlowTemplateDetail{FlowTemplate: template,
			DraftVersion: &successor, PublishedVersion: &publishedVersion}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}

	archivePublishedDocument(detail.FlowTemplate, publishedVersion, publishedDoc, s)
	return detail, nil
}

// archivePublishedDocument keeps a copy of the published document in object
// storage. Failures are logged only; the publication itself already
// committed.
func archivePublishedDocument(template domain.FlowTemplate, version domain.FlowVersion,
	doc *flowcompile.Document, s *session.Session) {
	if s3.PutObjectFunc == nil {
		return
	}
	body, err := json.Marshal(doc)
	if err != nil {
		logrus.Warnf("failed to marshal flow document of version %d: %v", version.ID, err)
		return
	}
	key := s3.FlowDocumentKey(template.ID, version.VersionNumber)
	if err := s3.PutObjectFunc(key, bytes.NewReader(body), s); err != nil {
		logrus.Warnf("failed to archive flow document %s: %v", key, err)
	}
}

// FetchArchivedDocument reads back the archived copy of a published
// document from object storage. Only versions which went through a publish
// carry an archive.
func FetchArchivedDocument(versionId types.ID, s *session.Session) (*flowcompile.Document, error) {
	version := domain.FlowVersion{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where(&domain.FlowVersion{ID: versionId}).First(&version).Error; err != nil {
		return nil, err
	}
	template := domain.FlowTemplate{}
	if err := db.Unscoped().Where(&domain.FlowTemplate{ID: version.TemplateID}).First(&template).Error; err != nil {
		return nil, err
	}
	if !s.Perms.HasTenantViewPerm(template.TenantID) {
		return nil, bizerror.ErrForbidden
	}
	if version.PublishedAt == nil || s3.GetObjectFunc == nil {
		return nil, domain.ErrNotFound
	}

	body, err := s3.GetObjectFunc(s3.FlowDocumentKey(version.TemplateID, version.VersionNumber), s)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc := flowcompile.Document{}
	if err := json.NewDecoder(body).Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// RejectFlowVersion marks the current draft REJECTED with review notes and
// opens a successor draft carrying the rejected graph so the author can fix
// it in place.
func RejectFlowVersion(templateId types.ID, r *VersionRejection, s *session.Session) (*FlowTemplateDetail, error) {
	var detail *FlowTemplateDetail
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		template := domain.FlowTemplate{}
		if err := tx.Where(&domain.FlowTemplate{ID: templateId}).First(&template).Error; err != nil {
			return err
		}
		if !s.Perms.HasRoleSuffix("_" + template.TenantID.String()) {
			return bizerror.ErrForbidden
		}
		if template.CurrentDraftVersionID == 0 {
			return bizerror.ErrDraftNotFound
		}

		draft := domain.FlowVersion{}
		if err := tx.Where(&domain.FlowVersion{ID: template.CurrentDraftVersionID}).First(&draft).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return bizerror.ErrDraftNotFound
			}
			return err
		}

		now := time.Now().Round(time.Millisecond)
		reject := tx.Model(&domain.FlowVersion{}).
			Where("id = ? AND status = ?", draft.ID, domain.VersionStatusDraft).
			Update(map[string]interface{}{"status": domain.VersionStatusRejected,
				"approval_notes": r.ApprovalNotes, "approved_by": s.Identity.ID, "update_time": now})
		if reject.Error != nil {
			return reject.Error
		}
		if reject.RowsAffected != 1 {
			return bizerror.ErrPublishConflict
		}

		nodes, err := LoadVersionGraph(tx, draft.ID)
		if err != nil {
			return err
		}
		successor := domain.FlowVersion{
			ID:         idgen.NextID(idWorker),
			ExternalID: uuid.New().String(),

			TemplateID:    template.ID,
			VersionNumber: draft.VersionNumber + 1,
			Status:        domain.VersionStatusDraft,

			WebhookMapping: draft.WebhookMapping,
			ResponseSchema: draft.ResponseSchema,

			CreatedBy:  s.Identity.ID,
			CreateTime: now, UpdateTime: now,
		}
		if err := tx.Create(successor).Error; err != nil {
			return err
		}
		if err := copyVersionGraph(tx, nodes, successor.ID, now); err != nil {
			return err
		}

		if err := tx.Model(&domain.FlowTemplate{}).Where(&domain.FlowTemplate{ID: template.ID}).
			Update(map[string]interface{}{"current_draft_version_id": successor.ID,
				"updated_by": s.Identity.ID, "update_time": now}).Error; err != nil {
			return err
		}
		if ev, err = event.CreateEvent(event.SourceTypeFlowVersion, draft.ID,
			fmt.Sprintf("%s v%d", template.Name, draft.VersionNumber),
			event.EventCategoryRejected, nil, &s.Identity, tx); err != nil {
			return err
		}

		rejected := domain.FlowVersion{}
		if err := tx.Where(&domain.FlowVersion{ID: draft.ID}).First(&rejected).Error; err != nil {
			return err
		}
		if err := tx.Where(&domain.FlowTemplate{ID: template.ID}).First(&template).Error; err != nil {
			return err
		}
		detail = &FlowTemplateDetail{FlowTemplate: template, DraftVersion: &successor}
		if template.CurrentPublishedVersionID != 0 {
			published := domain.FlowVersion{}
			if err := tx.Where(&domain.FlowVersion{ID: template.CurrentPublishedVersionID}).First(&published).Error; err != nil {
				return err
			}
			detail.PublishedVersion = &published
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return detail, nil
}

// copyVersionGraph clones a loaded graph under a new version with fresh
// identities. Keys survive the copy so cross screen references stay valid.
func copyVersionGraph(tx *gorm.DB, nodes []flowcompile.ScreenNode, versionId types.ID, now time.Time) error {
	for _, node := range nodes {
		screen := node.Screen
		screen.ID = idgen.NextID(idWorker)
		screen.ExternalID = uuid.New().String()
		screen.VersionID = versionId
		screen.CreateTime, screen.UpdateTime = now, now
		if err := tx.Create(screen).Error; err != nil {
			return err
		}

		for _, component := range node.Components {
			component.ID = idgen.NextID(idWorker)
			component.ExternalID = uuid.New().String()
			component.VersionID = versionId
			component.ScreenID = screen.ID
			component.CreateTime, component.UpdateTime = now, now
			if err := tx.Create(component).Error; err != nil {
				return err
			}
		}
		for _, action := range node.Actions {
			action.ID = idgen.NextID(idWorker)
			action.ExternalID = uuid.New().String()
			action.VersionID = versionId
			action.ScreenID = screen.ID
			action.CreateTime, action.UpdateTime = now, now
			if err := tx.Create(action).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
