package irregularity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"luna.app/internal/testutil"
	"luna.app/pkg/dateutil"
)

func closedFacts(t *testing.T, start string, length int, periodDays int64) Facts {
	s := testutil.Date(t, start)
	end := dateutil.AddDays(s, length)
	return Facts{StartDate: s, EndDate: &end, PeriodDayCount: periodDays}
}

func TestClassify_Length(t *testing.T) {
	th := ThresholdsFromConfig(testutil.DefaultConfig().Cycle)
	th.FlowChecksEnabled = false
	asOf := testutil.Date(t, "2025-06-01")

	tests := []struct {
		name   string
		length int
		want   []Type
	}{
		{"short", 20, []Type{TypeShortCycle}},
		{"lower bound is normal", 21, nil},
		{"normal", 28, nil},
		{"upper bound is normal", 35, nil},
		{"long", 36, []Type{TypeLongCycle}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(closedFacts(t, "2025-03-01", tt.length, 0), asOf, th)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_Flow(t *testing.T) {
	th := ThresholdsFromConfig(testutil.DefaultConfig().Cycle)
	asOf := testutil.Date(t, "2025-06-01")

	assert.Equal(t, []Type{TypeHeavyFlow}, Classify(closedFacts(t, "2025-03-01", 28, 8), asOf, th))
	assert.Empty(t, Classify(closedFacts(t, "2025-03-01", 28, 7), asOf, th))
	assert.Empty(t, Classify(closedFacts(t, "2025-03-01", 28, 2), asOf, th))
	assert.Equal(t, []Type{TypeLightFlow}, Classify(closedFacts(t, "2025-03-01", 28, 1), asOf, th))
	assert.Equal(t, []Type{TypeShortCycle, TypeLightFlow}, Classify(closedFacts(t, "2025-03-01", 18, 0), asOf, th))

	th.FlowChecksEnabled = false
	assert.Empty(t, Classify(closedFacts(t, "2025-03-01", 28, 12), asOf, th))
}

func TestClassify_OpenCycle(t *testing.T) {
	th := ThresholdsFromConfig(testutil.DefaultConfig().Cycle)
	start := testutil.Date(t, "2025-03-01")
	open := Facts{StartDate: start}

	assert.Empty(t, Classify(open, dateutil.AddDays(start, 45), th))
	assert.Equal(t, []Type{TypeMissedPeriod}, Classify(open, dateutil.AddDays(start, 46), th))

	// open cycles are never judged on length or flow
	assert.Empty(t, Classify(Facts{StartDate: start, PeriodDayCount: 20}, start.Add(24*time.Hour), th))
}

func TestType_Strings(t *testing.T) {
	for _, typ := range []Type{TypeShortCycle, TypeLongCycle, TypeMissedPeriod, TypeHeavyFlow, TypeLightFlow, TypeOther} {
		assert.True(t, typ.IsValid())
		assert.Equal(t, typ, TypeFromString(typ.String()))
		assert.NotEmpty(t, typ.Label())
	}
	assert.Equal(t, TypeUnknown, TypeFromString("sideways"))
}
