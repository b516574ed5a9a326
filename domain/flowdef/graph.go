package flowdef

import (
	"flowdeck/domain"
	"flowdeck/domain/flowcompile"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// LoadVersionGraph loads the complete screen/component/action set of a
// version. The whole graph must be materialized before compiling; routing
// over a partially loaded graph silently drops targets.
func LoadVersionGraph(db *gorm.DB, versionId types.ID) ([]flowcompile.ScreenNode, error) {
	var screens []domain.FlowScreen
	if err := db.Where(domain.FlowScreen{VersionID: versionId}).
		Order("order_index ASC, id ASC").Find(&screens).Error; err != nil {
		return nil, err
	}

	var components []domain.FlowComponent
	if err := db.Where(domain.FlowComponent{VersionID: versionId}).
		Order("order_index ASC, id ASC").Find(&components).Error; err != nil {
		return nil, err
	}
	var actions []domain.FlowAction
	if err := db.Where(domain.FlowAction{VersionID: versionId}).
		Order("order_index ASC, id ASC").Find(&actions).Error; err != nil {
		return nil, err
	}

	componentsByScreen := map[types.ID][]domain.FlowComponent{}
	for _, c := range components {
		componentsByScreen[c.ScreenID] = append(componentsByScreen[c.ScreenID], c)
	}
	actionsByScreen := map[types.ID][]domain.FlowAction{}
	for _, a := range actions {
		actionsByScreen[a.ScreenID] = append(actionsByScreen[a.ScreenID], a)
	}

	nodes := make([]flowcompile.ScreenNode, 0, len(screens))
	for _, s := range screens {
		nodes = append(nodes, flowcompile.ScreenNode{
			Screen:     s,
			Components: componentsByScreen[s.ID],
			Actions:    actionsByScreen[s.ID],
		})
	}
	return nodes, nil
}

func graphToDetails(nodes []flowcompile.ScreenNode) []ScreenDetail {
	details := make([]ScreenDetail, 0, len(nodes))
	for _, node := range nodes {
		components := node.Components
		if components == nil {
			components = []domain.FlowComponent{}
		}
		actions := node.Actions
		if actions == nil {
			actions = []domain.FlowAction{}
		}
		details = append(details, ScreenDetail{FlowScreen: node.Screen, Components: components, Actions: actions})
	}
	return details
}
