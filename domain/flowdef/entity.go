package flowdef

import (
	"flowdeck/domain"

	"github.com/fundwit/go-commons/types"
)

type FlowTemplateCreation struct {
	TenantID    types.ID `json:"tenantId" binding:"required"`
	AccountID   types.ID `json:"accountId" binding:"required"`
	AppID       types.ID `json:"appId" binding:"required"`
	TemplateKey string   `json:"templateKey" binding:"required"`

	Name        string              `json:"name" binding:"required"`
	Description string              `json:"description"`
	Category    domain.FlowCategory `json:"category" binding:"required"`
}

type FlowTemplateBaseUpdation struct {
	Name        string              `json:"name" binding:"required"`
	Description string              `json:"description"`
	Category    domain.FlowCategory `json:"category" binding:"required"`
}

type FlowTemplateQuery struct {
	TenantID types.ID              `form:"tenantId" json:"tenantId"`
	Name     string                `form:"name" json:"name"`
	Status   domain.TemplateStatus `form:"status" json:"status"`
}

type FlowTemplateDetail struct {
	domain.FlowTemplate

	DraftVersion     *domain.FlowVersion `json:"draftVersion"`
	PublishedVersion *domain.FlowVersion `json:"publishedVersion"`
}

type ScreenCreation struct {
	ScreenKey    string            `json:"screenKey" binding:"required"`
	Title        string            `json:"title" binding:"required"`
	Description  string            `json:"description"`
	OrderIndex   int               `json:"orderIndex"`
	IsEntryPoint bool              `json:"isEntryPoint"`
	Settings     domain.JSONObject `json:"settings"`
}

type ScreenUpdating struct {
	Title        string            `json:"title" binding:"required"`
	Description  string            `json:"description"`
	OrderIndex   int               `json:"orderIndex"`
	IsEntryPoint bool              `json:"isEntryPoint"`
	Settings     domain.JSONObject `json:"settings"`
}

type ComponentCreation struct {
	ComponentKey  string               `json:"componentKey" binding:"required"`
	ComponentType domain.ComponentType `json:"componentType" binding:"required"`

	Label           string            `json:"label"`
	VariableKey     string            `json:"variableKey"`
	Required        bool              `json:"required"`
	Placeholder     string            `json:"placeholder"`
	Options         domain.JSONList   `json:"options"`
	ValidationRules domain.JSONObject `json:"validationRules"`
	DefaultValue    string            `json:"defaultValue"`
	Config          domain.JSONObject `json:"config"`
	OrderIndex      int               `json:"orderIndex"`
}

type ComponentUpdating struct {
	ComponentType domain.ComponentType `json:"componentType" binding:"required"`

	Label           string            `json:"label"`
	VariableKey     string            `json:"variableKey"`
	Required        bool              `json:"required"`
	Placeholder     string            `json:"placeholder"`
	Options         domain.JSONList   `json:"options"`
	ValidationRules domain.JSONObject `json:"validationRules"`
	DefaultValue    string            `json:"defaultValue"`
	Config          domain.JSONObject `json:"config"`
	OrderIndex      int               `json:"orderIndex"`
}

type ActionCreation struct {
	ActionKey  string            `json:"actionKey" binding:"required"`
	ActionType domain.ActionType `json:"actionType" binding:"required"`

	Label               string            `json:"label"`
	TriggerComponentKey string            `json:"triggerComponentKey"`
	TargetScreenKey     string            `json:"targetScreenKey"`
	ApiConfig           domain.JSONObject `json:"apiConfig"`
	PayloadMapping      domain.JSONObject `json:"payloadMapping"`
	Condition           domain.JSONObject `json:"condition"`
	OrderIndex          int               `json:"orderIndex"`
}

type ActionUpdating struct {
	ActionType domain.ActionType `json:"actionType" binding:"required"`

	Label               string            `json:"label"`
	TriggerComponentKey string            `json:"triggerComponentKey"`
	TargetScreenKey     string            `json:"targetScreenKey"`
	ApiConfig           domain.JSONObject `json:"apiConfig"`
	PayloadMapping      domain.JSONObject `json:"payloadMapping"`
	Condition           domain.JSONObject `json:"condition"`
	OrderIndex          int               `json:"orderIndex"`
}

type ScreenOrderUpdating struct {
	ScreenKey string `json:"screenKey" validate:"required"`
	NewOrder  int    `json:"newOrder"`
}

type VersionRejection struct {
	ApprovalNotes string `json:"approvalNotes" binding:"required"`
}

type ScreenDetail struct {
	domain.FlowScreen

	Components []domain.FlowComponent `json:"components"`
	Actions    []domain.FlowAction    `json:"actions"`
}

type FlowVersionDetail struct {
	domain.FlowVersion

	Screens []ScreenDetail `json:"screens"`
}
