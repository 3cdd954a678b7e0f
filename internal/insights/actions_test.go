package insights

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stat(url string, pv int64, rev float64) PageStat {
	return PageStat{URL: url, Pageviews: pv, Revenue: rev, RPM: RPM(rev, pv)}
}

func titles(items []ActionItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Title
	}
	return out
}

func TestGenerateActionsHighRPMAndHighTrafficPair(t *testing.T) {
	pages := []PageStat{stat("/a", 100, 50), stat("/b", 900, 9)}

	items := GenerateActions(pages, map[string]float64{})

	require.Len(t, items, 3)
	assert.Equal(t, []string{titlePromote, titleOptimize, titleTopPage}, titles(items))
	assert.Equal(t, "/a", items[0].TargetURL)
	assert.Equal(t, "/b", items[1].TargetURL)
	assert.Equal(t, "/a", items[2].TargetURL)
	assert.Equal(t, EncodePageKey("/a"), items[0].TargetKey)
	assert.Equal(t, "action_1", items[0].ActionID)
	assert.Equal(t, "action_3", items[2].ActionID)
	assert.Equal(t, `"/a" has RPM $500.00 (above avg $255.00) but only 100 views. Feature it on your homepage.`, items[0].Reason)
	assert.Equal(t, `"/b" gets 900 views but RPM is only $10.00. Review ad placement and density.`, items[1].Reason)

	rows := RankPages(pages, map[string]float64{}, PageQuery{Page: 1, Limit: 10})
	for _, row := range rows.Items {
		assert.Nil(t, row.TrendPercent)
	}
}

func TestGenerateActionsFlatSinglePage(t *testing.T) {
	pages := []PageStat{stat("/only", 100, 10)}

	items := GenerateActions(pages, map[string]float64{"/only": 10})

	require.Len(t, items, MinActions)
	assert.Equal(t, []string{titleTopPage, "Review top landing page UX", "Run ad placement A/B test"}, titles(items))
	assert.Empty(t, items[1].TargetURL)
	assert.Empty(t, items[1].TargetKey)
	for _, item := range items {
		assert.NotEqual(t, titleTrending, item.Title)
		assert.NotEqual(t, titleDeclining, item.Title)
	}
}

func TestGenerateActionsEmptyUniverse(t *testing.T) {
	items := GenerateActions(nil, nil)

	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestGenerateActionsTrendRules(t *testing.T) {
	pages := []PageStat{stat("/down", 100, 2), stat("/flat", 100, 5), stat("/up", 100, 8)}
	previous := map[string]float64{"/down": 5, "/up": 4, "/flat": 5}

	items := GenerateActions(pages, previous)

	byTitle := map[string]ActionItem{}
	for _, item := range items {
		byTitle[item.Title] = item
	}
	require.Contains(t, byTitle, titleTrending)
	require.Contains(t, byTitle, titleDeclining)
	assert.Equal(t, "/up", byTitle[titleTrending].TargetURL)
	assert.Equal(t, `"/up" revenue surged +100.0%. Write follow-up articles to capture related queries.`, byTitle[titleTrending].Reason)
	assert.Equal(t, `"/down" revenue dropped 60.0%. Check if content is outdated or search ranking has changed.`, byTitle[titleDeclining].Reason)
}

func TestGenerateActionsDecliningNeedsMeaningfulBaseline(t *testing.T) {
	items := GenerateActions([]PageStat{stat("/a", 10, 0.1)}, map[string]float64{"/a": 0.9})

	for _, item := range items {
		assert.NotEqual(t, titleDeclining, item.Title)
	}
}

func TestGenerateActionsBackfillsWithInternalLinking(t *testing.T) {
	pages := []PageStat{stat("/a", 100, 1), stat("/b", 100, 2), stat("/c", 100, 3)}

	items := GenerateActions(pages, nil)

	require.Len(t, items, 3)
	assert.Equal(t, []string{titleTopPage, titleLinking, titleLinking}, titles(items))
	assert.Equal(t, "/c", items[0].TargetURL)
	assert.Equal(t, "/b", items[1].TargetURL)
	assert.Equal(t, "/a", items[2].TargetURL)
}

func TestGenerateActionsBoundsAndPriorityOrder(t *testing.T) {
	var pages []PageStat
	previous := map[string]float64{}
	for i := 0; i < 40; i++ {
		url := fmt.Sprintf("/p/%02d", i)
		switch {
		case i < 5:
			pages = append(pages, stat(url, 10, 5))
		case i < 10:
			pages = append(pages, stat(url, 5000, 1))
		default:
			pages = append(pages, stat(url, 500, 2))
		}
		previous[url] = 0.5
	}

	items := GenerateActions(pages, previous)

	assert.GreaterOrEqual(t, len(items), MinActions)
	assert.LessOrEqual(t, len(items), MaxActions)
	for i := 1; i < len(items); i++ {
		assert.LessOrEqual(t, items[i-1].Priority, items[i].Priority)
	}
	seen := map[[2]string]bool{}
	for _, item := range items {
		key := [2]string{item.Title, item.TargetURL}
		assert.False(t, seen[key])
		seen[key] = true
	}
}

func TestGenerateActionsIsDeterministic(t *testing.T) {
	pages := []PageStat{stat("/a", 100, 50), stat("/b", 900, 9), stat("/c", 300, 3)}
	previous := map[string]float64{"/a": 10, "/c": 20}

	assert.Equal(t, GenerateActions(pages, previous), GenerateActions(pages, previous))
}
