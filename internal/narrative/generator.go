// Package narrative builds analyst prompts from macro states and events and
// turns them into free-text commentary through a chat-completion client.
// Purely downstream of the macro engine: nothing here feeds back into the
// core state.
package narrative

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/macrosim/internal/llm"
	"github.com/roach88/macrosim/internal/macro"
	"github.com/roach88/macrosim/internal/timeline"
)

// simDateLayout is how simulated dates appear inside prompts.
const simDateLayout = "2006-01-02 15:04"

// Generator produces narratives for releases and macro events.
type Generator struct {
	client llm.Client
	opts   llm.Options
}

// NewGenerator creates a Generator over the given client. temperature and
// maxTokens apply to every completion.
func NewGenerator(client llm.Client, temperature float64, maxTokens int) *Generator {
	return &Generator{
		client: client,
		opts: llm.Options{
			Temperature: temperature,
			MaxTokens:   maxTokens,
		},
	}
}

// PreRelease generates the analysis published before a release fires.
// releaseType is the type code (GDP, NFP, ...); history is most recent
// first.
func (g *Generator) PreRelease(ctx context.Context, ev timeline.Event, releaseType string, state macro.State, history []macro.State) (string, error) {
	prompt := PreReleasePrompt(PreReleaseInput{
		ReleaseName: ev.Name,
		ReleaseType: releaseType,
		Consensus:   ev.Consensus,
		ReleaseDate: ev.ScheduledAt.Format(simDateLayout),
		State:       state,
		History:     history,
	})
	return g.complete(ctx, prompt)
}

// PostRelease generates the reaction analysis after a release's impact has
// been applied. The event's Actual must be realized by this point.
func (g *Generator) PostRelease(ctx context.Context, ev timeline.Event, releaseType string, before, after macro.State) (string, error) {
	actual := ev.Consensus
	if ev.Actual != nil {
		actual = *ev.Actual
	}
	prompt := PostReleasePrompt(PostReleaseInput{
		ReleaseName: ev.Name,
		ReleaseType: releaseType,
		Consensus:   ev.Consensus,
		Actual:      actual,
		ReleaseDate: ev.ScheduledAt.Format(simDateLayout),
		Before:      before,
		After:       after,
		Impact:      ImpactSummary(ev.ImpactGrowth, ev.ImpactInflation, ev.ImpactVolatility),
	})
	return g.complete(ctx, prompt)
}

// Event generates commentary for a macro event after its impact has been
// applied.
func (g *Generator) Event(ctx context.Context, ev timeline.Event, before, after macro.State) (string, error) {
	prompt := EventPrompt(EventInput{
		Headline:  ev.Headline,
		EventDate: ev.ScheduledAt.Format(simDateLayout),
		Before:    before,
		After:     after,
		Impact:    ImpactSummary(ev.ImpactGrowth, ev.ImpactInflation, ev.ImpactVolatility),
	})
	return g.complete(ctx, prompt)
}

func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 90*time.Second)
	defer cancel()

	content, err := g.client.Chat(ctx, []llm.Message{
		{Role: "user", Content: prompt},
	}, &g.opts)
	if err != nil {
		return "", fmt.Errorf("generate narrative: %w", err)
	}
	return content, nil
}
