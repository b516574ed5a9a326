package domain

type TemplateStatus string

const (
	TemplateStatusDraft     TemplateStatus = "DRAFT"
	TemplateStatusPublished TemplateStatus = "PUBLISHED"
	TemplateStatusArchived  TemplateStatus = "ARCHIVED"
)

type VersionStatus string

const (
	VersionStatusDraft     VersionStatus = "DRAFT"
	VersionStatusPublished VersionStatus = "PUBLISHED"
	VersionStatusArchived  VersionStatus = "ARCHIVED"
	VersionStatusRejected  VersionStatus = "REJECTED"
)

type SubmissionStatus string

const (
	SubmissionStatusReceived   SubmissionStatus = "RECEIVED"
	SubmissionStatusProcessing SubmissionStatus = "PROCESSING"
	SubmissionStatusCompleted  SubmissionStatus = "COMPLETED"
	SubmissionStatusFailed     SubmissionStatus = "FAILED"
)

type SubmissionSource string

const (
	SubmissionSourceWhatsApp SubmissionSource = "WHATSAPP"
	SubmissionSourceWebhook  SubmissionSource = "WEBHOOK"
	SubmissionSourceAPI      SubmissionSource = "API"
)

type FlowCategory string

const (
	CategorySignUp             FlowCategory = "SIGN_UP"
	CategorySignIn             FlowCategory = "SIGN_IN"
	CategoryAppointmentBooking FlowCategory = "APPOINTMENT_BOOKING"
	CategoryLeadGeneration     FlowCategory = "LEAD_GENERATION"
	CategoryContactUs          FlowCategory = "CONTACT_US"
	CategoryCustomerSupport    FlowCategory = "CUSTOMER_SUPPORT"
	CategorySurvey             FlowCategory = "SURVEY"
	CategoryFeedback           FlowCategory = "FEEDBACK"
	CategoryRegistration       FlowCategory = "REGISTRATION"
	CategoryOrderTracking      FlowCategory = "ORDER_TRACKING"
	CategoryPayment            FlowCategory = "PAYMENT"
	CategoryKycVerification    FlowCategory = "KYC_VERIFICATION"
	CategoryProductCatalog     FlowCategory = "PRODUCT_CATALOG"
	CategoryMarketing          FlowCategory = "MARKETING"
	CategoryReminder           FlowCategory = "REMINDER"
	CategoryOther              FlowCategory = "OTHER"
)

var FlowCategories = []FlowCategory{
	CategorySignUp, CategorySignIn, CategoryAppointmentBooking, CategoryLeadGeneration,
	CategoryContactUs, CategoryCustomerSupport, CategorySurvey, CategoryFeedback,
	CategoryRegistration, CategoryOrderTracking, CategoryPayment, CategoryKycVerification,
	CategoryProductCatalog, CategoryMarketing, CategoryReminder, CategoryOther,
}

func (c FlowCategory) IsValid() bool {
	for _, v := range FlowCategories {
		if c == v {
			return true
		}
	}
	return false
}

type ComponentType string

const (
	ComponentText     ComponentType = "text"
	ComponentTextarea ComponentType = "textarea"
	ComponentSelect   ComponentType = "select"
	ComponentRadio    ComponentType = "radio"
	ComponentCheckbox ComponentType = "checkbox"
	ComponentEmail    ComponentType = "email"
	ComponentPhone    ComponentType = "phone"
	ComponentNumber   ComponentType = "number"
	ComponentDate     ComponentType = "date"
	ComponentTime     ComponentType = "time"
	ComponentDatetime ComponentType = "datetime"
	ComponentSummary  ComponentType = "summary"
)

type ActionType string

const (
	ActionNextScreen ActionType = "next_screen"
	ActionSubmit     ActionType = "submit"
)
