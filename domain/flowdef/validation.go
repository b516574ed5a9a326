package flowdef

import (
	"flowdeck/bizerror"
	"flowdeck/domain"
	"flowdeck/domain/flowcompile"
	"sort"
)

var ValidateVersionGraphFunc = ValidateVersionGraph

// ValidateVersionGraph is the publish gate. Drafts may hold graphs in any
// intermediate shape while being edited; these rules only bind when the
// draft is promoted.
func ValidateVersionGraph(nodes []flowcompile.ScreenNode) error {
	if len(nodes) == 0 {
		return bizerror.ErrEntryPointInvalid
	}

	ordered := make([]flowcompile.ScreenNode, len(nodes))
	copy(ordered, nodes)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Screen.OrderIndex < ordered[j].Screen.OrderIndex
	})

	// normalized screen ids must stay distinct, otherwise two screens
	// collapse into one route entry in the compiled document
	seenIds := map[string]bool{}
	screenKeys := map[string]bool{}
	for i, node := range ordered {
		id := flowcompile.NormalizeScreenID(node.Screen.ScreenKey, i+1)
		if seenIds[id] {
			return bizerror.ErrScreenIdConflict
		}
		seenIds[id] = true
		screenKeys[node.Screen.ScreenKey] = true
	}

	entryPoints := 0
	seenVariables := map[string]bool{}
	for _, node := range ordered {
		if node.Screen.IsEntryPoint {
			entryPoints++
		}

		for _, component := range node.Components {
			if component.ComponentType == domain.ComponentSummary {
				continue
			}
			key := component.VariableKey
			if key == "" {
				key = component.ComponentKey
			}
			if seenVariables[key] {
				return bizerror.ErrVariableKeyConflict
			}
			seenVariables[key] = true

			if err := validateComponentConfig(component.ComponentType, component.Options); err != nil {
				return err
			}
		}

		for _, action := range node.Actions {
			if err := validateActionTarget(action.ActionType, action.TargetScreenKey); err != nil {
				return err
			}
			if action.ActionType == domain.ActionNextScreen && !screenKeys[action.TargetScreenKey] {
				return bizerror.ErrDanglingTarget
			}
		}
	}

	if entryPoints != 1 {
		return bizerror.ErrEntryPointInvalid
	}
	return nil
}
