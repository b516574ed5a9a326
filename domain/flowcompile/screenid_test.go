package flowcompile_test

import (
	"flowdeck/domain/flowcompile"
	"strings"
	"testing"

	. "github.com/onsi/gomega"
)

func TestNormalizeScreenID(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should upper case and replace unsafe characters", func(t *testing.T) {
		Expect(flowcompile.NormalizeScreenID("my screen!!", 3)).To(Equal("MY_SCREEN"))
		Expect(flowcompile.NormalizeScreenID("welcome", 1)).To(Equal("WELCOME"))
		Expect(flowcompile.NormalizeScreenID("step-2.personal data", 2)).To(Equal("STEP_2_PERSONAL_DATA"))
		Expect(flowcompile.NormalizeScreenID("ALREADY_SAFE_01", 1)).To(Equal("ALREADY_SAFE_01"))
	})

	t.Run("should strip leading and trailing underscores", func(t *testing.T) {
		Expect(flowcompile.NormalizeScreenID("__inner__", 1)).To(Equal("INNER"))
		Expect(flowcompile.NormalizeScreenID("!!wrapped!!", 1)).To(Equal("WRAPPED"))
	})

	t.Run("should fall back to the ordinal when nothing survives", func(t *testing.T) {
		Expect(flowcompile.NormalizeScreenID("", 3)).To(Equal("SCREEN_3"))
		Expect(flowcompile.NormalizeScreenID("!!!", 7)).To(Equal("SCREEN_7"))
		Expect(flowcompile.NormalizeScreenID("___", 12)).To(Equal("SCREEN_12"))
	})

	t.Run("should truncate to 64 characters", func(t *testing.T) {
		long := strings.Repeat("ab", 50)
		id := flowcompile.NormalizeScreenID(long, 1)
		Expect(len(id)).To(Equal(64))
		Expect(id).To(Equal(strings.ToUpper(long)[0:64]))
	})

	t.Run("is not injective", func(t *testing.T) {
		Expect(flowcompile.NormalizeScreenID("my screen", 1)).
			To(Equal(flowcompile.NormalizeScreenID("my+screen", 2)))
	})
}
