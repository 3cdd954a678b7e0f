package insights

import (
	"fmt"
	"sort"
)

const (
	MinActions = 3
	MaxActions = 10
)

// Action priorities, lower is more urgent.
const (
	PriorityHigh   = 1
	PriorityMedium = 2
	PriorityLow    = 3
)

const (
	titlePromote   = "Promote this high-RPM page"
	titleOptimize  = "Optimize ads on high-traffic page"
	titleTrending  = "Create related content for trending page"
	titleDeclining = "Review declining page"
	titleTopPage   = "Replicate top performer strategy"
	titleLinking   = "Strengthen internal linking"
)

// ActionItem is a recommendation computed for one request. TargetURL and TargetKey are
// empty for site-wide suggestions.
type ActionItem struct {
	ActionID  string
	Title     string
	Reason    string
	TargetKey string
	TargetURL string
	Priority  int
}

type candidate struct {
	title    string
	reason   string
	url      string
	priority int
}

type ruleInput struct {
	pages    []PageStat
	previous map[string]float64
	cohort   Cohort
}

type rule func(in ruleInput) []candidate

var rules = []rule{
	promoteHighRPM,
	optimizeHighTraffic,
	trendingUp,
	declining,
	topPerformer,
}

var genericActions = []candidate{
	{
		title:    "Review top landing page UX",
		reason:   "Check page speed, above-the-fold layout, and CTA clarity on your highest-traffic pages.",
		priority: PriorityLow,
	},
	{
		title:    "Run ad placement A/B test",
		reason:   "Compare ad density and position on one template for 7 days to improve RPM safely.",
		priority: PriorityLow,
	},
	{
		title:    "Refresh stale content cluster",
		reason:   "Update internal links and metadata for older posts to recover long-tail traffic.",
		priority: PriorityLow,
	},
}

// GenerateActions evaluates the rule set against the current window's pages and the
// previous window's revenue. It always returns between MinActions and MaxActions items
// unless pages is empty, in which case the list is empty.
func GenerateActions(pages []PageStat, previous map[string]float64) []ActionItem {
	if len(pages) == 0 {
		return []ActionItem{}
	}

	in := ruleInput{pages: pages, previous: previous, cohort: CohortOf(pages)}

	var candidates []candidate
	for _, r := range rules {
		candidates = append(candidates, r(in)...)
	}
	candidates = dedupe(candidates)

	if len(candidates) < MinActions {
		candidates = append(candidates, internalLinking(pages, candidates, MinActions-len(candidates))...)
	}
	if len(candidates) < MinActions {
		candidates = append(candidates, genericActions[:MinActions-len(candidates)]...)
	}

	items := make([]ActionItem, len(candidates))
	for i, c := range candidates {
		items[i] = ActionItem{
			ActionID: fmt.Sprintf("action_%d", i+1),
			Title:    c.title,
			Reason:   c.reason,
			Priority: c.priority,
		}
		if c.url != "" {
			items[i].TargetURL = c.url
			items[i].TargetKey = EncodePageKey(c.url)
		}
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Priority < items[j].Priority })
	if len(items) > MaxActions {
		items = items[:MaxActions]
	}
	return items
}

func promoteHighRPM(in ruleInput) []candidate {
	ordered := sortedBy(in.pages, func(a, b PageStat) bool { return a.RPM > b.RPM })
	var out []candidate
	for _, p := range ordered {
		if len(out) == 2 {
			break
		}
		if p.RPM > in.cohort.AvgRPM*1.3 && float64(p.Pageviews) < in.cohort.AvgPageviews*0.7 {
			out = append(out, candidate{
				title: titlePromote,
				reason: fmt.Sprintf("\"%s\" has RPM $%.2f (above avg $%.2f) but only %d views. Feature it on your homepage.",
					p.URL, p.RPM, in.cohort.AvgRPM, p.Pageviews),
				url:      p.URL,
				priority: PriorityHigh,
			})
		}
	}
	return out
}

func optimizeHighTraffic(in ruleInput) []candidate {
	ordered := sortedBy(in.pages, func(a, b PageStat) bool { return a.Pageviews > b.Pageviews })
	var out []candidate
	for _, p := range ordered {
		if len(out) == 2 {
			break
		}
		if float64(p.Pageviews) > in.cohort.AvgPageviews*1.3 && p.RPM < in.cohort.AvgRPM*0.7 {
			out = append(out, candidate{
				title: titleOptimize,
				reason: fmt.Sprintf("\"%s\" gets %d views but RPM is only $%.2f. Review ad placement and density.",
					p.URL, p.Pageviews, p.RPM),
				url:      p.URL,
				priority: PriorityHigh,
			})
		}
	}
	return out
}

func trendingUp(in ruleInput) []candidate {
	var out []candidate
	for _, p := range in.pages {
		if len(out) == 2 {
			break
		}
		prev := in.previous[p.URL]
		if prev > 0 && p.Revenue > prev*1.5 {
			change := round((p.Revenue-prev)/prev*100, 0)
			out = append(out, candidate{
				title: titleTrending,
				reason: fmt.Sprintf("\"%s\" revenue surged +%.1f%%. Write follow-up articles to capture related queries.",
					p.URL, change),
				url:      p.URL,
				priority: PriorityMedium,
			})
		}
	}
	return out
}

func declining(in ruleInput) []candidate {
	for _, p := range in.pages {
		prev := in.previous[p.URL]
		if prev > 1 && p.Revenue < prev*0.5 {
			drop := round((1-p.Revenue/prev)*100, 0)
			return []candidate{{
				title: titleDeclining,
				reason: fmt.Sprintf("\"%s\" revenue dropped %.1f%%. Check if content is outdated or search ranking has changed.",
					p.URL, drop),
				url:      p.URL,
				priority: PriorityMedium,
			}}
		}
	}
	return nil
}

func topPerformer(in ruleInput) []candidate {
	best := in.pages[0]
	for _, p := range in.pages[1:] {
		if p.Revenue > best.Revenue {
			best = p
		}
	}
	if best.Revenue <= 0 {
		return nil
	}
	return []candidate{{
		title: titleTopPage,
		reason: fmt.Sprintf("Your best page \"%s\" earned $%.2f with RPM $%.2f. Analyze its structure and apply the same approach to lower-performing pages.",
			best.URL, best.Revenue, best.RPM),
		url:      best.URL,
		priority: PriorityLow,
	}}
}

// internalLinking fills up to need suggestions from the strongest pages not yet targeted.
func internalLinking(pages []PageStat, existing []candidate, need int) []candidate {
	targeted := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		if c.url != "" {
			targeted[c.url] = struct{}{}
		}
	}

	ordered := sortedBy(pages, func(a, b PageStat) bool {
		if a.Revenue != b.Revenue {
			return a.Revenue > b.Revenue
		}
		if a.Pageviews != b.Pageviews {
			return a.Pageviews > b.Pageviews
		}
		return a.RPM > b.RPM
	})

	var out []candidate
	for _, p := range ordered {
		if len(out) == need {
			break
		}
		if _, ok := targeted[p.URL]; ok {
			continue
		}
		out = append(out, candidate{
			title:    titleLinking,
			reason:   fmt.Sprintf("Use \"%s\" as a hub page and add internal links to related articles to distribute traffic.", p.URL),
			url:      p.URL,
			priority: PriorityLow,
		})
	}
	return out
}

func dedupe(in []candidate) []candidate {
	seen := make(map[[2]string]struct{}, len(in))
	out := in[:0]
	for _, c := range in {
		key := [2]string{c.title, c.url}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

func sortedBy(pages []PageStat, less func(a, b PageStat) bool) []PageStat {
	out := make([]PageStat, len(pages))
	copy(out, pages)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
