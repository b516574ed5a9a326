package flowcompile

import (
	"flowdeck/domain"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// ScreenNode is one screen with its components and actions already attached.
// The full graph of a version must be loaded before compiling; a partial
// graph silently mis-routes.
type ScreenNode struct {
	Screen     domain.FlowScreen
	Components []domain.FlowComponent
	Actions    []domain.FlowAction
}

// Compile deterministically turns a template and its loaded version graph
// into the external platform document. It performs no I/O and never fails:
// malformed or incomplete drafts degrade to permissive defaults so the
// editing surface can always render the result.
func Compile(template domain.FlowTemplate, nodes []ScreenNode) *Document {
	if len(nodes) == 0 {
		return &Document{FormatVersion: FormatVersion, Screens: []Screen{}}
	}

	ordered := make([]ScreenNode, len(nodes))
	copy(ordered, nodes)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Screen.OrderIndex < ordered[j].Screen.OrderIndex
	})

	// assign every screen its id before building any body: an action may
	// target a screen key appearing later in the order
	screenIds := make([]string, len(ordered))
	idByKey := map[string]string{}
	keyById := map[string]string{}
	for i, node := range ordered {
		id := NormalizeScreenID(node.Screen.ScreenKey, i+1)
		screenIds[i] = id
		if firstKey, found := keyById[id]; found && firstKey != node.Screen.ScreenKey {
			logrus.Warnf("screen keys %q and %q normalize to the same id %s in version %d",
				firstKey, node.Screen.ScreenKey, id, node.Screen.VersionID)
		} else {
			keyById[id] = node.Screen.ScreenKey
		}
		idByKey[node.Screen.ScreenKey] = id
	}

	routing := make(map[string][]string, len(ordered))
	screens := make([]Screen, 0, len(ordered))
	for i, node := range ordered {
		screens = append(screens, compileScreen(template, node, i+1, screenIds[i], idByKey, routing))
	}

	return &Document{FormatVersion: FormatVersion, RoutingModel: routing, Screens: screens}
}

func compileScreen(template domain.FlowTemplate, node ScreenNode, ordinal int,
	screenId string, idByKey map[string]string, routing map[string][]string) Screen {

	components := make([]domain.FlowComponent, len(node.Components))
	copy(components, node.Components)
	sort.SliceStable(components, func(i, j int) bool {
		return components[i].OrderIndex < components[j].OrderIndex
	})
	actions := make([]domain.FlowAction, len(node.Actions))
	copy(actions, node.Actions)
	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].OrderIndex < actions[j].OrderIndex
	})

	// only the first action of each type drives control flow; later ones
	// remain in the stored graph but are ignored here
	var nextAction, submitAction *domain.FlowAction
	for i := range actions {
		switch actions[i].ActionType {
		case domain.ActionNextScreen:
			if nextAction == nil {
				nextAction = &actions[i]
			}
		case domain.ActionSubmit:
			if submitAction == nil {
				submitAction = &actions[i]
			}
		}
	}

	targetScreenId := ""
	if nextAction != nil && nextAction.TargetScreenKey != "" {
		targetScreenId = idByKey[nextAction.TargetScreenKey]
	}
	isTerminal := submitAction != nil || targetScreenId == ""

	if targetScreenId != "" {
		routing[screenId] = []string{targetScreenId}
	} else {
		routing[screenId] = []string{}
	}
	if isTerminal && targetScreenId != "" {
		// observed legacy behavior is preserved; flagged because a terminal
		// screen with a successor looks unintentional
		logrus.Warnf("screen %s is terminal but routes to %s", screenId, targetScreenId)
	}

	headingText := node.Screen.Title
	if headingText == "" {
		headingText = fmt.Sprintf("%s - %d", template.Name, ordinal)
	}
	children := []Block{{Type: blockTextHeading, Text: headingText}}
	if node.Screen.Description != "" {
		children = append(children, Block{Type: blockTextBody, Text: node.Screen.Description})
	}

	fields := make([]Block, 0, len(components)+1)
	for _, c := range components {
		if strings.ToLower(string(c.ComponentType)) == string(domain.ComponentSummary) {
			text := c.Label
			if text == "" {
				text = "Review your details"
			}
			fields = append(fields, Block{Type: blockTextBody, Text: text})
			continue
		}
		fields = append(fields, MapWidget(c))
	}
	fields = append(fields, footer(nextAction, submitAction, isTerminal, targetScreenId))

	children = append(children, Block{
		Type:     blockForm,
		Name:     strings.ToLower(screenId) + "_form",
		Children: fields,
	})

	title := node.Screen.Title
	if title == "" {
		title = screenId
	}
	screen := Screen{
		ID:       screenId,
		Title:    title,
		Terminal: isTerminal,
		Data:     map[string]interface{}{},
		Layout:   Layout{Type: layoutSingleColumn, Children: children},
	}
	if isTerminal {
		success := true
		screen.Success = &success
	}
	return screen
}

func footer(nextAction, submitAction *domain.FlowAction, isTerminal bool, targetScreenId string) Block {
	label := ""
	if submitAction != nil && submitAction.Label != "" {
		label = submitAction.Label
	} else if nextAction != nil && nextAction.Label != "" {
		label = nextAction.Label
	} else if isTerminal {
		label = "Submit"
	} else {
		label = "Continue"
	}

	if targetScreenId != "" {
		return Block{Type: blockFooter, Label: label, OnClickAction: &ClickAction{
			Name: clickActionNavigate,
			Next: &ClickNext{Type: clickNextTypeScreen, Name: targetScreenId},
		}}
	}
	return Block{Type: blockFooter, Label: label, OnClickAction: &ClickAction{Name: clickActionComplete}}
}
