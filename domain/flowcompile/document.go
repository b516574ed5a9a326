package flowcompile

// FormatVersion is the wire format revision of the external platform.
const FormatVersion = "7.3"

const layoutSingleColumn = "single-column"

// Document is the compiled wire document sent to the external platform.
// RoutingModel is omitted entirely when the flow has no screens.
type Document struct {
	FormatVersion string              `json:"formatVersion"`
	RoutingModel  map[string][]string `json:"routingModel,omitempty"`
	Screens       []Screen            `json:"screens"`
}

type Screen struct {
	ID       string                 `json:"id"`
	Title    string                 `json:"title"`
	Terminal bool                   `json:"terminal"`
	Success  *bool                  `json:"success,omitempty"`
	Data     map[string]interface{} `json:"data"`
	Layout   Layout                 `json:"layout"`
}

type Layout struct {
	Type     string  `json:"type"`
	Children []Block `json:"children"`
}

// Block is one element of a screen layout: heading, body text, form,
// field widget or footer. Unused fields stay empty and are not emitted.
type Block struct {
	Type string `json:"type"`

	Text string `json:"text,omitempty"`

	Name       string           `json:"name,omitempty"`
	Label      string           `json:"label,omitempty"`
	Required   *bool            `json:"required,omitempty"`
	InputType  string           `json:"input-type,omitempty"`
	DataSource []DataSourceItem `json:"data-source,omitempty"`

	Children      []Block      `json:"children,omitempty"`
	OnClickAction *ClickAction `json:"on-click-action,omitempty"`
}

type DataSourceItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type ClickAction struct {
	Name string     `json:"name"`
	Next *ClickNext `json:"next,omitempty"`
}

type ClickNext struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

const (
	blockTextHeading       = "TextHeading"
	blockTextBody          = "TextBody"
	blockForm              = "Form"
	blockFooter            = "Footer"
	blockTextInput         = "TextInput"
	blockTextArea          = "TextArea"
	blockDropdown          = "Dropdown"
	blockRadioButtonsGroup = "RadioButtonsGroup"
	blockCheckboxGroup     = "CheckboxGroup"

	clickActionNavigate = "navigate"
	clickActionComplete = "complete"
	clickNextTypeScreen = "screen"
)
