package flowdef

import (
	"flowdeck/bizerror"
	"flowdeck/domain"
	"flowdeck/idgen"
	"flowdeck/persistence"
	"flowdeck/session"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
)

var (
	CreateFlowScreenFunc   = CreateFlowScreen
	UpdateFlowScreenFunc   = UpdateFlowScreen
	DeleteFlowScreenFunc   = DeleteFlowScreen
	UpdateScreenOrdersFunc = UpdateScreenOrders

	CreateFlowComponentFunc = CreateFlowComponent
	UpdateFlowComponentFunc = UpdateFlowComponent
	DeleteFlowComponentFunc = DeleteFlowComponent

	CreateFlowActionFunc = CreateFlowAction
	UpdateFlowActionFunc = UpdateFlowAction
	DeleteFlowActionFunc = DeleteFlowAction
)

// mutableVersion loads the version and asserts the caller may edit it.
// Only DRAFT versions of non-archived templates are mutable.
func mutableVersion(tx *gorm.DB, versionId types.ID, s *session.Session) (*domain.FlowVersion, error) {
	version := domain.FlowVersion{}
	if err := tx.Where(&domain.FlowVersion{ID: versionId}).First(&version).Error; err != nil {
		return nil, err
	}
	template := domain.FlowTemplate{}
	if err := tx.Where(&domain.FlowTemplate{ID: version.TemplateID}).First(&template).Error; err != nil {
		return nil, err
	}
	if !s.Perms.HasRoleSuffix("_" + template.TenantID.String()) {
		return nil, bizerror.ErrForbidden
	}
	if template.Status == domain.TemplateStatusArchived {
		return nil, bizerror.ErrTemplateArchived
	}
	if version.Status != domain.VersionStatusDraft {
		return nil, bizerror.ErrVersionNotMutable
	}
	return &version, nil
}

func validateComponentConfig(componentType domain.ComponentType, options domain.JSONList) error {
	switch componentType {
	case domain.ComponentSelect, domain.ComponentRadio, domain.ComponentCheckbox:
		if len(options) == 0 {
			return bizerror.ErrInvalidOptions
		}
	}
	return nil
}

func validateActionTarget(actionType domain.ActionType, targetScreenKey string) error {
	if actionType == domain.ActionNextScreen && targetScreenKey == "" {
		return bizerror.ErrInvalidActionTarget
	}
	return nil
}

func CreateFlowScreen(versionId types.ID, c *ScreenCreation, s *session.Session) (*domain.FlowScreen, error) {
	now := time.Now().Round(time.Millisecond)
	screen := domain.FlowScreen{
		ID:         idgen.NextID(idWorker),
		ExternalID: uuid.New().String(),

		VersionID: versionId,
		ScreenKey: c.ScreenKey,

		Title:        c.Title,
		Description:  c.Description,
		OrderIndex:   c.OrderIndex,
		IsEntryPoint: c.IsEntryPoint,
		Settings:     c.Settings,

		CreateTime: now, UpdateTime: now,
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := mutableVersion(tx, versionId, s); err != nil {
			return err
		}
		if err := tx.Create(screen).Error; err != nil {
			return err
		}
		return touchVersion(tx, versionId, now)
	})
	if err != nil {
		return nil, err
	}
	return &screen, nil
}

func UpdateFlowScreen(screenId types.ID, u *ScreenUpdating, s *session.Session) (*domain.FlowScreen, error) {
	screen := domain.FlowScreen{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&domain.FlowScreen{ID: screenId}).First(&screen).Error; err != nil {
			return err
		}
		if _, err := mutableVersion(tx, screen.VersionID, s); err != nil {
			return err
		}

		now := time.Now().Round(time.Millisecond)
		if err := tx.Model(&domain.FlowScreen{}).Where(&domain.FlowScreen{ID: screenId}).
			Update(map[string]interface{}{"title": u.Title, "description": u.Description,
				"order_index": u.OrderIndex, "is_entry_point": u.IsEntryPoint,
				"settings": u.Settings, "update_time": now}).Error; err != nil {
			return err
		}
		if err := tx.Where(&domain.FlowScreen{ID: screenId}).First(&screen).Error; err != nil {
			return err
		}
		return touchVersion(tx, screen.VersionID, now)
	})
	if err != nil {
		return nil, err
	}
	return &screen, nil
}

// DeleteFlowScreen removes the screen and its components and actions.
func DeleteFlowScreen(screenId types.ID, s *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	return db.Transaction(func(tx *gorm.DB) error {
		screen := domain.FlowScreen{}
		if err := tx.Where(&domain.FlowScreen{ID: screenId}).First(&screen).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return nil
			}
			return err
		}
		if _, err := mutableVersion(tx, screen.VersionID, s); err != nil {
			return err
		}

		if err := tx.Delete(domain.FlowComponent{}, "screen_id = ?", screenId).Error; err != nil {
			return err
		}
		if err := tx.Delete(domain.FlowAction{}, "screen_id = ?", screenId).Error; err != nil {
			return err
		}
		if err := tx.Delete(domain.FlowScreen{}, "id = ?", screenId).Error; err != nil {
			return err
		}
		return touchVersion(tx, screen.VersionID, time.Now().Round(time.Millisecond))
	})
}

// UpdateScreenOrders applies new order indexes in one transaction.
func UpdateScreenOrders(versionId types.ID, orders *[]ScreenOrderUpdating, s *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := mutableVersion(tx, versionId, s); err != nil {
			return err
		}
		now := time.Now().Round(time.Millisecond)
		for _, order := range *orders {
			db := tx.Model(&domain.FlowScreen{}).
				Where(&domain.FlowScreen{VersionID: versionId, ScreenKey: order.ScreenKey}).
				Update(map[string]interface{}{"order_index": order.NewOrder, "update_time": now})
			if db.Error != nil {
				return db.Error
			}
			if db.RowsAffected != 1 {
				return domain.ErrNotFound
			}
		}
		return touchVersion(tx, versionId, now)
	})
}

func CreateFlowComponent(screenId types.ID, c *ComponentCreation, s *session.Session) (*domain.FlowComponent, error) {
	if err := validateComponentConfig(c.ComponentType, c.Options); err != nil {
		return nil, err
	}

	component := domain.FlowComponent{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		screen := domain.FlowScreen{}
		if err := tx.Where(&domain.FlowScreen{ID: screenId}).First(&screen).Error; err != nil {
			return err
		}
		if _, err := mutableVersion(tx, screen.VersionID, s); err != nil {
			return err
		}

		now := time.Now().Round(time.Millisecond)
		component = domain.FlowComponent{
			ID:         idgen.NextID(idWorker),
			ExternalID: uuid.New().String(),

			VersionID:    screen.VersionID,
			ScreenID:     screenId,
			ComponentKey: c.ComponentKey,

			ComponentType:   c.ComponentType,
			Label:           c.Label,
			VariableKey:     c.VariableKey,
			Required:        c.Required,
			Placeholder:     c.Placeholder,
			Options:         c.Options,
			ValidationRules: c.ValidationRules,
			DefaultValue:    c.DefaultValue,
			Config:          c.Config,
			OrderIndex:      c.OrderIndex,

			CreateTime: now, UpdateTime: now,
		}
		if err := tx.Create(component).Error; err != nil {
			return err
		}
		return touchVersion(tx, screen.VersionID, now)
	})
	if err != nil {
		return nil, err
	}
	return &component, nil
}

func UpdateFlowComponent(componentId types.ID, u *ComponentUpdating, s *session.Session) (*domain.FlowComponent, error) {
	if err := validateComponentConfig(u.ComponentType, u.Options); err != nil {
		return nil, err
	}

	component := domain.FlowComponent{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&domain.FlowComponent{ID: componentId}).First(&component).Error; err != nil {
			return err
		}
		if _, err := mutableVersion(tx, component.VersionID, s); err != nil {
			return err
		}

		now := time.Now().Round(time.Millisecond)
		if err := tx.Model(&domain.FlowComponent{}).Where(&domain.FlowComponent{ID: componentId}).
			Update(map[string]interface{}{"component_type": u.ComponentType, "label": u.Label,
				"variable_key": u.VariableKey, "required": u.Required, "placeholder": u.Placeholder,
				"options": u.Options, "validation_rules": u.ValidationRules,
				"default_value": u.DefaultValue, "config": u.Config, "order_index": u.OrderIndex,
				"update_time": now}).Error; err != nil {
			return err
		}
		if err := tx.Where(&domain.FlowComponent{ID: componentId}).First(&component).Error; err != nil {
			return err
		}
		return touchVersion(tx, component.VersionID, now)
	})
	if err != nil {
		return nil, err
	}
	return &component, nil
}

func DeleteFlowComponent(componentId types.ID, s *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	return db.Transaction(func(tx *gorm.DB) error {
		component := domain.FlowComponent{}
		if err := tx.Where(&domain.FlowComponent{ID: componentId}).First(&component).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return nil
			}
			return err
		}
		if _, err := mutableVersion(tx, component.VersionID, s); err != nil {
			return err
		}
		if err := tx.Delete(domain.FlowComponent{}, "id = ?", componentId).Error; err != nil {
			return err
		}
		return touchVersion(tx, component.VersionID, time.Now().Round(time.Millisecond))
	})
}

func CreateFlowAction(screenId types.ID, c *ActionCreation, s *session.Session) (*domain.FlowAction, error) {
	if err := validateActionTarget(c.ActionType, c.TargetScreenKey); err != nil {
		return nil, err
	}

	action := domain.FlowAction{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		screen := domain.FlowScreen{}
		if err := tx.Where(&domain.FlowScreen{ID: screenId}).First(&screen).Error; err != nil {
			return err
		}
		if _, err := mutableVersion(tx, screen.VersionID, s); err != nil {
			return err
		}

		now := time.Now().Round(time.Millisecond)
		action = domain.FlowAction{
			ID:         idgen.NextID(idWorker),
			ExternalID: uuid.New().String(),

			VersionID: screen.VersionID,
			ScreenID:  screenId,
			ActionKey: c.ActionKey,

			ActionType:          c.ActionType,
			Label:               c.Label,
			TriggerComponentKey: c.TriggerComponentKey,
			TargetScreenKey:     c.TargetScreenKey,
			ApiConfig:           c.ApiConfig,
			PayloadMapping:      c.PayloadMapping,
			Condition:           c.Condition,
			OrderIndex:          c.OrderIndex,

			CreateTime: now, UpdateTime: now,
		}
		if err := tx.Create(action).Error; err != nil {
			return err
		}
		return touchVersion(tx, screen.VersionID, now)
	})
	if err != nil {
		return nil, err
	}
	return &action, nil
}

func UpdateFlowAction(actionId types.ID, u *ActionUpdating, s *session.Session) (*domain.FlowAction, error) {
	if err := validateActionTarget(u.ActionType, u.TargetScreenKey); err != nil {
		return nil, err
	}

	action := domain.FlowAction{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&domain.FlowAction{ID: actionId}).First(&action).Error; err != nil {
			return err
		}
		if _, err := mutableVersion(tx, action.VersionID, s); err != nil {
			return err
		}

		now := time.Now().Round(time.Millisecond)
		if err := tx.Model(&domain.FlowAction{}).Where(&domain.FlowAction{ID: actionId}).
			Update(map[string]interface{}{"action_type": u.ActionType, "label": u.Label,
				"trigger_component_key": u.TriggerComponentKey, "target_screen_key": u.TargetScreenKey,
				"api_config": u.ApiConfig, "payload_mapping": u.PayloadMapping,
				"condition": u.Condition, "order_index": u.OrderIndex,
				"update_time": now}).Error; err != nil {
			return err
		}
		if err := tx.Where(&domain.FlowAction{ID: actionId}).First(&action).Error; err != nil {
			return err
		}
		return touchVersion(tx, action.VersionID, now)
	})
	if err != nil {
		return nil, err
	}
	return &action, nil
}

func DeleteFlowAction(actionId types.ID, s *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	return db.Transaction(func(tx *gorm.DB) error {
		action := domain.FlowAction{}
		if err := tx.Where(&domain.FlowAction{ID: actionId}).First(&action).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return nil
			}
			return err
		}
		if _, err := mutableVersion(tx, action.VersionID, s); err != nil {
			return err
		}
		if err := tx.Delete(domain.FlowAction{}, "id = ?", actionId).Error; err != nil {
			return err
		}
		return touchVersion(tx, action.VersionID, time.Now().Round(time.Millisecond))
	})
}

// touchVersion bumps the version update time so compiled document cache
// keys roll over on any graph edit.
func touchVersion(tx *gorm.DB, versionId types.ID, now time.Time) error {
	return tx.Model(&domain.FlowVersion{}).Where(&domain.FlowVersion{ID: versionId}).
		Update(map[string]interface{}{"update_time": now}).Error
}
