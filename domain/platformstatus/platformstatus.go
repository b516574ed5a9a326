// Package platformstatus holds the external platform's flow health enum.
// It is a different namespace from the local template/version lifecycle
// enums and must never be merged with them.
package platformstatus

import "strings"

type FlowHealthStatus string

const (
	HealthDraft      FlowHealthStatus = "DRAFT"
	HealthPublished  FlowHealthStatus = "PUBLISHED"
	HealthDeprecated FlowHealthStatus = "DEPRECATED"
	HealthThrottled  FlowHealthStatus = "THROTTLED"
	HealthBlocked    FlowHealthStatus = "BLOCKED"

	// HealthUnknown is the zero value, reported when no status can be derived.
	HealthUnknown FlowHealthStatus = ""
)

var healthStatuses = map[FlowHealthStatus]bool{
	HealthDraft: true, HealthPublished: true, HealthDeprecated: true,
	HealthThrottled: true, HealthBlocked: true,
}

// Normalize trims and upper-cases value, returning the canonical member or
// HealthUnknown when value is not part of the enum. It never fails.
func Normalize(value string) FlowHealthStatus {
	candidate := FlowHealthStatus(strings.ToUpper(strings.TrimSpace(value)))
	if healthStatuses[candidate] {
		return candidate
	}
	return HealthUnknown
}

// probe order is fixed; the first field that normalizes wins.
var statusFields = []string{"status", "flow_status", "flowStatus", "health_status", "healthStatus"}

// Extract probes the well-known status fields at the top level of payload,
// then recurses exactly one level into a nested "data" object. It returns
// HealthUnknown when nothing matches.
func Extract(payload map[string]interface{}) FlowHealthStatus {
	return extract(payload, 0)
}

func extract(payload map[string]interface{}, depth int) FlowHealthStatus {
	if payload == nil {
		return HealthUnknown
	}
	for _, field := range statusFields {
		value, found := payload[field]
		if !found {
			continue
		}
		text, ok := value.(string)
		if !ok {
			continue
		}
		if status := Normalize(text); status != HealthUnknown {
			return status
		}
	}
	if depth >= 1 {
		return HealthUnknown
	}
	if data, ok := payload["data"].(map[string]interface{}); ok {
		return extract(data, depth+1)
	}
	return HealthUnknown
}

// MapToLocal translates the platform health status into the locally stored
// health namespace. The mapping is the identity today; it stays a named
// function so future divergence between the two enums touches only this spot.
func MapToLocal(status FlowHealthStatus) FlowHealthStatus {
	return status
}
