package flowdef

import (
	"flowdeck/domain"
	"flowdeck/domain/platformstatus"
	"flowdeck/event"
	"flowdeck/persistence"
	"flowdeck/session"
	"fmt"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

var ApplyPlatformStatusFunc = ApplyPlatformStatus

// ApplyPlatformStatus folds a platform status notification into the
// currently published version of the template. Webhooks arrive at least
// once and out of order, so the stored status only moves forward in event
// time (last writer by event time wins) and replays are no-ops.
func ApplyPlatformStatus(templateId types.ID, payload map[string]interface{},
	eventTime time.Time, s *session.Session) (platformstatus.FlowHealthStatus, error) {

	status := platformstatus.MapToLocal(platformstatus.Extract(payload))
	if status == platformstatus.HealthUnknown {
		logrus.Warnf("no health status derivable from platform payload for template %d", templateId)
		return platformstatus.HealthUnknown, nil
	}

	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		template := domain.FlowTemplate{}
		if err := tx.Unscoped().Where(&domain.FlowTemplate{ID: templateId}).First(&template).Error; err != nil {
			return err
		}
		if template.CurrentPublishedVersionID == 0 {
			logrus.Warnf("platform status %s for template %d ignored, no published version", status, templateId)
			return nil
		}

		version := domain.FlowVersion{}
		if err := tx.Where(&domain.FlowVersion{ID: template.CurrentPublishedVersionID}).First(&version).Error; err != nil {
			return err
		}
		if version.HealthStatusTime != nil && !eventTime.After(*version.HealthStatusTime) {
			return nil
		}
		if version.HealthStatus == status {
			// still record the newer event time so later stale events stay stale
			return tx.Model(&domain.FlowVersion{}).Where(&domain.FlowVersion{ID: version.ID}).
				Update(map[string]interface{}{"health_status_time": eventTime}).Error
		}

		if err := tx.Model(&domain.FlowVersion{}).Where(&domain.FlowVersion{ID: version.ID}).
			Update(map[string]interface{}{"health_status": status, "health_status_time": eventTime,
				"update_time": time.Now().Round(time.Millisecond)}).Error; err != nil {
			return err
		}

		updates := event.UpdatedProperties{{
			PropertyName: "healthStatus", PropertyDesc: "healthStatus",
			OldValue: string(version.HealthStatus), OldValueDesc: string(version.HealthStatus),
			NewValue: string(status), NewValueDesc: string(status),
		}}
		var err error
		ev, err = event.CreateEvent(event.SourceTypeFlowVersion, version.ID,
			fmt.Sprintf("%s v%d", template.Name, version.VersionNumber),
			event.EventCategoryPropertyUpdated, updates, &s.Identity, tx)
		return err
	})
	if err != nil {
		return platformstatus.HealthUnknown, err
	}
	if ev != nil && event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return status, nil
}
