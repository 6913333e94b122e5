package report

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/joescharf/insights/internal/pool"
)

// Completer is the slice of the analysis client that report generation
// needs.
type Completer interface {
	CompleteJSON(ctx context.Context, prompt string, maxTokens int, out any) error
}

// Glance is the headline summary box at the top of the report.
type Glance struct {
	WhatsWorking       string `json:"whats_working"`
	WhatsHindering     string `json:"whats_hindering"`
	QuickWins          string `json:"quick_wins"`
	AmbitiousWorkflows string `json:"ambitious_workflows"`
}

// Area is one project area the user worked in.
type Area struct {
	Name         string `json:"name"`
	SessionCount int    `json:"session_count"`
	Description  string `json:"description"`
}

type ProjectAreas struct {
	Areas []Area `json:"areas"`
}

type InteractionStyle struct {
	Narrative  string `json:"narrative"`
	KeyPattern string `json:"key_pattern"`
}

type Workflow struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type WhatWorks struct {
	Intro               string     `json:"intro"`
	ImpressiveWorkflows []Workflow `json:"impressive_workflows"`
}

type FrictionCategory struct {
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Examples    []string `json:"examples"`
}

type FrictionAnalysis struct {
	Intro      string             `json:"intro"`
	Categories []FrictionCategory `json:"categories"`
}

type Addition struct {
	Addition       string `json:"addition"`
	Why            string `json:"why"`
	PromptScaffold string `json:"prompt_scaffold"`
}

type Feature struct {
	Feature     string `json:"feature"`
	OneLiner    string `json:"one_liner"`
	WhyForYou   string `json:"why_for_you"`
	ExampleCode string `json:"example_code"`
}

type UsagePattern struct {
	Title          string `json:"title"`
	Suggestion     string `json:"suggestion"`
	Detail         string `json:"detail"`
	CopyablePrompt string `json:"copyable_prompt"`
}

type Suggestions struct {
	ClaudeMDAdditions []Addition     `json:"claude_md_additions"`
	FeaturesToTry     []Feature      `json:"features_to_try"`
	UsagePatterns     []UsagePattern `json:"usage_patterns"`
}

type Opportunity struct {
	Title          string `json:"title"`
	WhatsPossible  string `json:"whats_possible"`
	HowToTry       string `json:"how_to_try"`
	CopyablePrompt string `json:"copyable_prompt"`
}

type Horizon struct {
	Intro         string        `json:"intro"`
	Opportunities []Opportunity `json:"opportunities"`
}

type FunEnding struct {
	Headline string `json:"headline"`
	Detail   string `json:"detail"`
}

// Insights collects every generated section. A nil section means its call
// failed; the report renders without it.
type Insights struct {
	AtAGlance        *Glance           `json:"at_a_glance,omitempty"`
	ProjectAreas     *ProjectAreas     `json:"project_areas,omitempty"`
	InteractionStyle *InteractionStyle `json:"interaction_style,omitempty"`
	WhatWorks        *WhatWorks        `json:"what_works,omitempty"`
	FrictionAnalysis *FrictionAnalysis `json:"friction_analysis,omitempty"`
	Suggestions      *Suggestions      `json:"suggestions,omitempty"`
	Horizon          *Horizon          `json:"on_the_horizon,omitempty"`
	FunEnding        *FunEnding        `json:"fun_ending,omitempty"`

	// FailedSections lists section names whose generation failed, sorted.
	FailedSections []string `json:"failed_sections,omitempty"`
}

// glanceContextClip bounds how much of each finished section feeds the
// At a Glance call.
const glanceContextClip = 3000

// SectionCount is the number of sections one full generation attempts,
// At a Glance included.
const SectionCount = 8

type sectionTask struct {
	name string
	run  func(ctx context.Context) error
}

func genSection[T any](ctx context.Context, c Completer, prompt, payload string, maxTokens int) (*T, error) {
	var v T
	if err := c.CompleteJSON(ctx, prompt+"\n\nDATA:\n"+payload, maxTokens, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Generate runs every report section against the shared payload. Sections
// run concurrently; a failed section is recorded and skipped, never fatal.
// At a Glance runs last because it summarizes the other sections' output.
func Generate(ctx context.Context, c Completer, payload string, maxTokens int) *Insights {
	ins := &Insights{}

	tasks := []sectionTask{
		{"project_areas", func(ctx context.Context) (err error) {
			ins.ProjectAreas, err = genSection[ProjectAreas](ctx, c, projectAreasPrompt, payload, maxTokens)
			return
		}},
		{"interaction_style", func(ctx context.Context) (err error) {
			ins.InteractionStyle, err = genSection[InteractionStyle](ctx, c, interactionStylePrompt, payload, maxTokens)
			return
		}},
		{"what_works", func(ctx context.Context) (err error) {
			ins.WhatWorks, err = genSection[WhatWorks](ctx, c, whatWorksPrompt, payload, maxTokens)
			return
		}},
		{"friction_analysis", func(ctx context.Context) (err error) {
			ins.FrictionAnalysis, err = genSection[FrictionAnalysis](ctx, c, frictionAnalysisPrompt, payload, maxTokens)
			return
		}},
		{"suggestions", func(ctx context.Context) (err error) {
			ins.Suggestions, err = genSection[Suggestions](ctx, c, suggestionsPrompt, payload, maxTokens)
			return
		}},
		{"on_the_horizon", func(ctx context.Context) (err error) {
			ins.Horizon, err = genSection[Horizon](ctx, c, onTheHorizonPrompt, payload, maxTokens)
			return
		}},
		{"fun_ending", func(ctx context.Context) (err error) {
			ins.FunEnding, err = genSection[FunEnding](ctx, c, funEndingPrompt, payload, maxTokens)
			return
		}},
	}

	results := pool.Run(ctx, tasks, len(tasks), func(ctx context.Context, t sectionTask) (struct{}, error) {
		return struct{}{}, t.run(ctx)
	})
	for i, r := range results {
		if r.Err != nil {
			ins.FailedSections = append(ins.FailedSections, tasks[i].name)
		}
	}

	glance, err := genSection[Glance](ctx, c, atAGlancePrompt, glanceContext(payload, ins), maxTokens)
	if err != nil {
		ins.FailedSections = append(ins.FailedSections, "at_a_glance")
	} else {
		ins.AtAGlance = glance
	}
	sort.Strings(ins.FailedSections)
	return ins
}

// glanceContext extends the shared payload with the finished sections that
// inform the At a Glance summary.
func glanceContext(payload string, ins *Insights) string {
	sections := []struct {
		name string
		v    any
	}{
		{"project_areas", ins.ProjectAreas},
		{"what_works", ins.WhatWorks},
		{"friction_analysis", ins.FrictionAnalysis},
		{"suggestions", ins.Suggestions},
		{"on_the_horizon", ins.Horizon},
	}
	out := payload
	for _, s := range sections {
		encoded, err := json.MarshalIndent(s.v, "", "  ")
		if err != nil || string(encoded) == "null" {
			continue
		}
		clip := string(encoded)
		if len(clip) > glanceContextClip {
			clip = clip[:glanceContextClip]
		}
		out += "\n\n## " + s.name + ":\n" + clip
	}
	return out
}
