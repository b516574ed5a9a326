package platformstatus_test

import (
	"flowdeck/domain/platformstatus"
	"testing"

	. "github.com/onsi/gomega"
)

func TestNormalize(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should accept canonical members in any case with spaces", func(t *testing.T) {
		Expect(platformstatus.Normalize("published")).To(Equal(platformstatus.HealthPublished))
		Expect(platformstatus.Normalize("  THROTTLED ")).To(Equal(platformstatus.HealthThrottled))
		Expect(platformstatus.Normalize("Blocked")).To(Equal(platformstatus.HealthBlocked))
		Expect(platformstatus.Normalize("draft")).To(Equal(platformstatus.HealthDraft))
		Expect(platformstatus.Normalize("deprecated")).To(Equal(platformstatus.HealthDeprecated))
	})

	t.Run("should reject values outside the enum", func(t *testing.T) {
		// ARCHIVED is a local lifecycle value, not a platform health value
		Expect(platformstatus.Normalize("archived")).To(Equal(platformstatus.HealthUnknown))
		Expect(platformstatus.Normalize("")).To(Equal(platformstatus.HealthUnknown))
		Expect(platformstatus.Normalize("  ")).To(Equal(platformstatus.HealthUnknown))
		Expect(platformstatus.Normalize("REJECTED")).To(Equal(platformstatus.HealthUnknown))
	})
}

func TestExtract(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should probe top level fields in fixed order", func(t *testing.T) {
		Expect(platformstatus.Extract(map[string]interface{}{"status": "PUBLISHED"})).
			To(Equal(platformstatus.HealthPublished))
		Expect(platformstatus.Extract(map[string]interface{}{"flow_status": "throttled"})).
			To(Equal(platformstatus.HealthThrottled))
		Expect(platformstatus.Extract(map[string]interface{}{"healthStatus": "BLOCKED"})).
			To(Equal(platformstatus.HealthBlocked))
		Expect(platformstatus.Extract(map[string]interface{}{
			"status":      "unknown-value",
			"flow_status": "DEPRECATED",
		})).To(Equal(platformstatus.HealthDeprecated))
	})

	t.Run("should recurse exactly one level into nested data", func(t *testing.T) {
		Expect(platformstatus.Extract(map[string]interface{}{
			"data": map[string]interface{}{"flow_status": "THROTTLED"},
		})).To(Equal(platformstatus.HealthThrottled))

		// two levels down is out of reach
		Expect(platformstatus.Extract(map[string]interface{}{
			"data": map[string]interface{}{
				"data": map[string]interface{}{"status": "PUBLISHED"},
			},
		})).To(Equal(platformstatus.HealthUnknown))
	})

	t.Run("should return unknown for empty or non matching payloads", func(t *testing.T) {
		Expect(platformstatus.Extract(map[string]interface{}{})).To(Equal(platformstatus.HealthUnknown))
		Expect(platformstatus.Extract(nil)).To(Equal(platformstatus.HealthUnknown))
		Expect(platformstatus.Extract(map[string]interface{}{"status": 42})).To(Equal(platformstatus.HealthUnknown))
		Expect(platformstatus.Extract(map[string]interface{}{"data": "PUBLISHED"})).To(Equal(platformstatus.HealthUnknown))
	})
}

func TestMapToLocal(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should map one to one today", func(t *testing.T) {
		for _, s := range []platformstatus.FlowHealthStatus{
			platformstatus.HealthDraft, platformstatus.HealthPublished,
			platformstatus.HealthDeprecated, platformstatus.HealthThrottled,
			platformstatus.HealthBlocked, platformstatus.HealthUnknown,
		} {
			Expect(platformstatus.MapToLocal(s)).To(Equal(s))
		}
	})
}
