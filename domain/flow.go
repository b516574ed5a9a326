package domain

import (
	"flowdeck/domain/platformstatus"
	"time"

	"github.com/fundwit/go-commons/types"
)

// FlowTemplate is a tenant scoped named form definition.
// (tenantId, accountId, appId, templateKey) is globally unique.
type FlowTemplate struct {
	ID         types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	ExternalID string   `json:"externalId" gorm:"unique_index"`

	TenantID    types.ID `json:"tenantId" gorm:"unique_index:uni_template_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	AccountID   types.ID `json:"accountId" gorm:"unique_index:uni_template_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	AppID       types.ID `json:"appId" gorm:"unique_index:uni_template_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	TemplateKey string   `json:"templateKey" gorm:"unique_index:uni_template_key"`

	Name        string         `json:"name"`
	Description string         `json:"description"`
	Category    FlowCategory   `json:"category"`
	Status      TemplateStatus `json:"status"`

	CurrentDraftVersionID     types.ID `json:"currentDraftVersionId" sql:"type:BIGINT UNSIGNED"`
	CurrentPublishedVersionID types.ID `json:"currentPublishedVersionId" sql:"type:BIGINT UNSIGNED"`

	CreatedBy  types.ID   `json:"createdBy" sql:"type:BIGINT UNSIGNED"`
	UpdatedBy  types.ID   `json:"updatedBy" sql:"type:BIGINT UNSIGNED"`
	CreateTime time.Time  `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
	UpdateTime time.Time  `json:"updateTime" sql:"type:DATETIME(3) NOT NULL"`
	DeletedAt  *time.Time `json:"-" sql:"type:DATETIME(3)"`
}

// FlowVersion is an immutable-once-published snapshot of the screen graph.
// (templateId, versionNumber) is unique; a template has at most one DRAFT
// and at most one PUBLISHED version at any time.
type FlowVersion struct {
	ID         types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	ExternalID string   `json:"externalId" gorm:"unique_index"`

	TemplateID    types.ID      `json:"templateId" gorm:"unique_index:uni_version_num" sql:"type:BIGINT UNSIGNED NOT NULL"`
	VersionNumber int           `json:"versionNumber" gorm:"unique_index:uni_version_num"`
	Status        VersionStatus `json:"status"`

	WebhookMapping JSONObject `json:"webhookMapping" sql:"type:TEXT"`
	ResponseSchema JSONObject `json:"responseSchema" sql:"type:TEXT"`
	ApprovalNotes  string     `json:"approvalNotes"`

	HealthStatus     platformstatus.FlowHealthStatus `json:"healthStatus"`
	HealthStatusTime *time.Time                      `json:"healthStatusTime" sql:"type:DATETIME(3)"`

	PublishedAt *time.Time `json:"publishedAt" sql:"type:DATETIME(3)"`
	CreatedBy   types.ID   `json:"createdBy" sql:"type:BIGINT UNSIGNED"`
	ApprovedBy  types.ID   `json:"approvedBy" sql:"type:BIGINT UNSIGNED"`
	CreateTime  time.Time  `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
	UpdateTime  time.Time  `json:"updateTime" sql:"type:DATETIME(3) NOT NULL"`
}

// FlowScreen is one page of the form. (versionId, screenKey) is unique.
type FlowScreen struct {
	ID         types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	ExternalID string   `json:"externalId" gorm:"unique_index"`

	VersionID types.ID `json:"versionId" gorm:"unique_index:uni_screen_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	ScreenKey string   `json:"screenKey" gorm:"unique_index:uni_screen_key"`

	Title        string     `json:"title"`
	Description  string     `json:"description"`
	OrderIndex   int        `json:"orderIndex"`
	IsEntryPoint bool       `json:"isEntryPoint"`
	Settings     JSONObject `json:"settings" sql:"type:TEXT"`

	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
	UpdateTime time.Time `json:"updateTime" sql:"type:DATETIME(3) NOT NULL"`
}

// FlowComponent is one input or display field on a screen.
// (screenId, componentKey) is unique. Variable keys are intended to be
// unique within a version; that is enforced by the publish gate, not here.
type FlowComponent struct {
	ID         types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	ExternalID string   `json:"externalId" gorm:"unique_index"`

	VersionID    types.ID `json:"versionId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	ScreenID     types.ID `json:"screenId" gorm:"unique_index:uni_component_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	ComponentKey string   `json:"componentKey" gorm:"unique_index:uni_component_key"`

	ComponentType   ComponentType `json:"componentType"`
	Label           string        `json:"label"`
	VariableKey     string        `json:"variableKey"`
	Required        bool          `json:"required"`
	Placeholder     string        `json:"placeholder"`
	Options         JSONList      `json:"options" sql:"type:TEXT"`
	ValidationRules JSONObject    `json:"validationRules" sql:"type:TEXT"`
	DefaultValue    string        `json:"defaultValue"`
	Config          JSONObject    `json:"config" sql:"type:TEXT"`
	OrderIndex      int           `json:"orderIndex"`

	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
	UpdateTime time.Time `json:"updateTime" sql:"type:DATETIME(3) NOT NULL"`
}

// FlowAction is a navigation or terminal directive attached to a screen.
// (screenId, actionKey) is unique.
type FlowAction struct {
	ID         types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	ExternalID string   `json:"externalId" gorm:"unique_index"`

	VersionID types.ID `json:"versionId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	ScreenID  types.ID `json:"screenId" gorm:"unique_index:uni_action_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	ActionKey string   `json:"actionKey" gorm:"unique_index:uni_action_key"`

	ActionType          ActionType `json:"actionType"`
	Label               string     `json:"label"`
	TriggerComponentKey string     `json:"triggerComponentKey"`
	TargetScreenKey     string     `json:"targetScreenKey"`
	ApiConfig           JSONObject `json:"apiConfig" sql:"type:TEXT"`
	PayloadMapping      JSONObject `json:"payloadMapping" sql:"type:TEXT"`
	Condition           JSONObject `json:"condition" sql:"type:TEXT"`
	OrderIndex          int        `json:"orderIndex"`

	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
	UpdateTime time.Time `json:"updateTime" sql:"type:DATETIME(3) NOT NULL"`
}

// FlowSubmission is an audit record of one completed or failed run.
// It references but does not own template/version records and survives
// version archival.
type FlowSubmission struct {
	ID         types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	ExternalID string   `json:"externalId" gorm:"unique_index"`

	TemplateID types.ID `json:"templateId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	VersionID  types.ID `json:"versionId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	TenantID   types.ID `json:"tenantId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	AccountID  types.ID `json:"accountId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	AppID      types.ID `json:"appId" sql:"type:BIGINT UNSIGNED NOT NULL"`

	ResponderPhone    string           `json:"responderPhone"`
	Answers           JSONObject       `json:"answers" sql:"type:TEXT"`
	MappedResponse    JSONObject       `json:"mappedResponse" sql:"type:TEXT"`
	Status            SubmissionStatus `json:"status"`
	Source            SubmissionSource `json:"source"`
	ExternalReference string           `json:"externalReference"`
	ErrorMessage      string           `json:"errorMessage"`

	SubmittedAt time.Time `json:"submittedAt" sql:"type:DATETIME(3) NOT NULL"`
	CreateTime  time.Time `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
	UpdateTime  time.Time `json:"updateTime" sql:"type:DATETIME(3) NOT NULL"`
}
