package report

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/joescharf/insights/internal/aggregate"
)

// displayNames maps machine keys from the facet schema to report labels.
var displayNames = map[string]string{
	"debug_investigate": "Debug/Investigate", "implement_feature": "Implement Feature",
	"fix_bug": "Fix Bug", "write_script_tool": "Write Script/Tool",
	"refactor_code": "Refactor Code", "configure_system": "Configure System",
	"create_pr_commit": "Create PR/Commit", "analyze_data": "Analyze Data",
	"understand_codebase": "Understand Codebase", "write_tests": "Write Tests",
	"write_docs": "Write Docs", "deploy_infra": "Deploy/Infra",
	"warmup_minimal": "Cache Warmup", "fast_accurate_search": "Fast/Accurate Search",
	"correct_code_edits": "Correct Code Edits", "good_explanations": "Good Explanations",
	"proactive_help": "Proactive Help", "multi_file_changes": "Multi-file Changes",
	"good_debugging": "Good Debugging", "misunderstood_request": "Misunderstood Request",
	"wrong_approach": "Wrong Approach", "buggy_code": "Buggy Code",
	"user_rejected_action": "User Rejected Action", "claude_got_blocked": "Claude Got Blocked",
	"user_stopped_early": "User Stopped Early", "wrong_file_or_location": "Wrong File/Location",
	"excessive_changes": "Excessive Changes", "slow_or_verbose": "Slow/Verbose",
	"tool_failed": "Tool Failed", "frustrated": "Frustrated",
	"dissatisfied": "Dissatisfied", "likely_satisfied": "Likely Satisfied",
	"satisfied": "Satisfied", "happy": "Happy", "unsure": "Unsure",
	"neutral": "Neutral", "delighted": "Delighted",
	"single_task": "Single Task", "multi_task": "Multi Task",
	"iterative_refinement": "Iterative Refinement", "exploration": "Exploration",
	"quick_question": "Quick Question", "fully_achieved": "Fully Achieved",
	"mostly_achieved": "Mostly Achieved", "partially_achieved": "Partially Achieved",
	"not_achieved": "Not Achieved", "unclear_from_transcript": "Unclear",
	"unhelpful": "Unhelpful", "slightly_helpful": "Slightly Helpful",
	"moderately_helpful": "Moderately Helpful", "very_helpful": "Very Helpful",
	"essential": "Essential",
}

func displayName(key string) string {
	if label, ok := displayNames[key]; ok {
		return label
	}
	words := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// barRow is one horizontal bar in a chart.
type barRow struct {
	Label string
	Pct   float64
	Value int
}

// chart is a titled block of bars; empty Rows renders a placeholder.
type chart struct {
	Title string
	Color string
	Rows  []barRow
}

const chartMaxItems = 8

// barChart builds rows sorted by count desc. A non-nil order pins the row
// sequence instead, dropping zero entries.
func barChart(title, color string, counts map[string]int, maxItems int, order []string) chart {
	var ranked []rankedCount
	if order != nil {
		for _, k := range order {
			if counts[k] > 0 {
				ranked = append(ranked, rankedCount{k, counts[k]})
			}
		}
	} else {
		ranked = topN(counts, maxItems)
	}

	c := chart{Title: title, Color: color}
	maxVal := 0
	for _, r := range ranked {
		if r.Count > maxVal {
			maxVal = r.Count
		}
	}
	for _, r := range ranked {
		c.Rows = append(c.Rows, barRow{
			Label: displayName(r.Name),
			Pct:   float64(r.Count) / float64(maxVal) * 100,
			Value: r.Count,
		})
	}
	return c
}

var responseBuckets = []struct {
	label string
	below float64
}{
	{"2-10s", 10}, {"10-30s", 30}, {"30s-1m", 60}, {"1-2m", 120},
	{"2-5m", 300}, {"5-15m", 900}, {">15m", math.Inf(1)},
}

func responseTimeChart(times []float64) chart {
	c := chart{Title: "Response Time Distribution", Color: "#6366f1"}
	if len(times) == 0 {
		return c
	}
	counts := make([]int, len(responseBuckets))
	for _, t := range times {
		for i, b := range responseBuckets {
			if t < b.below {
				counts[i]++
				break
			}
		}
	}
	maxVal := 1
	for _, n := range counts {
		if n > maxVal {
			maxVal = n
		}
	}
	for i, b := range responseBuckets {
		c.Rows = append(c.Rows, barRow{
			Label: b.label,
			Pct:   float64(counts[i]) / float64(maxVal) * 100,
			Value: counts[i],
		})
	}
	return c
}

func timeOfDayChart(hours []int) chart {
	c := chart{Title: "Time of Day", Color: "#8b5cf6"}
	if len(hours) == 0 {
		return c
	}
	periods := []struct {
		label    string
		from, to int
	}{
		{"Morning (6-12)", 6, 12},
		{"Afternoon (12-18)", 12, 18},
		{"Evening (18-24)", 18, 24},
		{"Night (0-6)", 0, 6},
	}
	counts := make([]int, len(periods))
	for _, h := range hours {
		for i, p := range periods {
			if h >= p.from && h < p.to {
				counts[i]++
			}
		}
	}
	maxVal := 1
	for _, n := range counts {
		if n > maxVal {
			maxVal = n
		}
	}
	for i, p := range periods {
		c.Rows = append(c.Rows, barRow{
			Label: p.label,
			Pct:   float64(counts[i]) / float64(maxVal) * 100,
			Value: counts[i],
		})
	}
	return c
}

var boldRe = regexp.MustCompile(`\*\*(.+?)\*\*`)

// mdBold escapes text and converts **spans** to <strong>.
func mdBold(s string) template.HTML {
	escaped := html.EscapeString(s)
	return template.HTML(boldRe.ReplaceAllString(escaped, "<strong>$1</strong>"))
}

// narrative renders multi-paragraph markdown-ish text into paragraphs.
func narrative(s string) []template.HTML {
	var out []template.HTML
	for _, p := range strings.Split(s, "\n\n") {
		escaped := html.EscapeString(p)
		escaped = boldRe.ReplaceAllString(escaped, "<strong>$1</strong>")
		escaped = strings.ReplaceAll(escaped, "\n- ", "\n&bull; ")
		escaped = strings.ReplaceAll(escaped, "\n", "<br>")
		if strings.HasPrefix(escaped, "- ") {
			escaped = "&bull; " + escaped[2:]
		}
		out = append(out, template.HTML("<p>"+escaped+"</p>"))
	}
	return out
}

type pageData struct {
	StatsLine   string
	DateRange   aggregate.DateRange
	Agg         *aggregate.Data
	Ins         *Insights
	Charts      []chart
	ChartByName map[string]chart
	Narrative   []template.HTML
	GeneratedAt string
	Model       string
}

// RenderHTML produces the self-contained report page. Sections whose
// generation failed are simply absent.
func RenderHTML(d *aggregate.Data, ins *Insights, model string, now time.Time) ([]byte, error) {
	stats := []string{
		fmt.Sprintf("%d messages", d.TotalMessages),
		fmt.Sprintf("%d sessions", d.TotalSessions),
		fmt.Sprintf("%dh total", int(math.Round(d.TotalDurationHours))),
		fmt.Sprintf("%d commits", d.GitCommits),
		fmt.Sprintf("%d days active", d.DaysActive),
	}

	charts := map[string]chart{
		"goals":     barChart("What You Wanted", "#2563eb", d.GoalCategories, 15, nil),
		"tools":     barChart("Top Tools Used", "#10b981", d.ToolCounts, 15, nil),
		"languages": barChart("Languages", "#f59e0b", d.Languages, 15, nil),
		"types":     barChart("Session Types", "#8b5cf6", d.SessionTypes, chartMaxItems, nil),
		"outcomes": barChart("Outcomes", "#10b981", d.Outcomes, chartMaxItems,
			[]string{"not_achieved", "partially_achieved", "mostly_achieved", "fully_achieved", "unclear_from_transcript"}),
		"satisfaction": barChart("Inferred Satisfaction", "#6366f1", d.Satisfaction, chartMaxItems,
			[]string{"frustrated", "dissatisfied", "likely_satisfied", "satisfied", "happy", "delighted"}),
		"helpfulness": barChart("Claude Helpfulness", "#14b8a6", d.Helpfulness, chartMaxItems,
			[]string{"unhelpful", "slightly_helpful", "moderately_helpful", "very_helpful", "essential"}),
		"friction": barChart("Primary Friction Types", "#ef4444", d.Friction, chartMaxItems, nil),
		"success":  barChart("What Helped Most", "#22c55e", d.Success, chartMaxItems, nil),
		"errors":   barChart("Tool Errors", "#f97316", d.ToolErrorCategories, chartMaxItems, nil),
		"response": responseTimeChart(d.UserResponseTimes),
		"tod":      timeOfDayChart(d.MessageHours),
	}

	data := pageData{
		StatsLine:   strings.Join(stats, " · "),
		DateRange:   d.DateRange,
		Agg:         d,
		Ins:         ins,
		ChartByName: charts,
		GeneratedAt: now.Format("2006-01-02 15:04"),
		Model:       model,
	}
	if ins.InteractionStyle != nil {
		data.Narrative = narrative(ins.InteractionStyle.Narrative)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

var pageTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"mdBold": mdBold,
}).Parse(pageTemplateText))
