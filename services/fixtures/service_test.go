package fixtures

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseWeekdays(t *testing.T) {
	days, err := parseWeekdays([]string{"Saturday", "sunday"})
	assert.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Saturday, time.Sunday}, days)

	_, err = parseWeekdays([]string{"caturday"})
	assert.Equal(t, ErrBadWeekday, err)

	days, err = parseWeekdays(nil)
	assert.NoError(t, err)
	assert.Empty(t, days)
}

func TestSplitGroupsSmallField(t *testing.T) {
	teams := []string{"a", "b", "c", "d"}
	groups := splitGroups(teams)
	assert.Len(t, groups, 1)
	assert.Equal(t, teams, groups["A"])
}

func TestSplitGroupsLargeField(t *testing.T) {
	teams := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}
	groups := splitGroups(teams)
	assert.Len(t, groups, 2)
	assert.Len(t, groups["A"], 5)
	assert.Len(t, groups["B"], 4)
	assert.Equal(t, append(groups["A"], groups["B"]...), teams)
}

func TestRoundRobinPairsEveryoneOnce(t *testing.T) {
	fixtures := roundRobin("A", []string{"a", "b", "c", "d"})
	assert.Len(t, fixtures, 6)

	pairs := map[string]int{}
	for _, fixture := range fixtures {
		assert.Equal(t, "A", fixture.Group)
		assert.NotEqual(t, fixture.TeamAID, fixture.TeamBID)
		pairs[fixture.TeamAID+"/"+fixture.TeamBID]++
	}
	assert.Len(t, pairs, 6)
	for pair, count := range pairs {
		assert.Equal(t, 1, count, pair)
	}
}

func TestRoundRobinSingleTeam(t *testing.T) {
	assert.Empty(t, roundRobin("A", []string{"a"}))
}
