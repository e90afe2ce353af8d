package narrative

import (
	"fmt"
	"strings"

	"github.com/roach88/macrosim/internal/macro"
)

// Narrative types as stored in the narratives table.
const (
	TypePreRelease  = "pre_release"
	TypePostRelease = "post_release"
	TypeEvent       = "event"
)

// PreReleaseInput carries everything a pre-release prompt needs. The
// narrative is generated before a release fires, from the consensus
// forecast and the current macro environment.
type PreReleaseInput struct {
	ReleaseName string
	ReleaseType string
	Consensus   float64
	ReleaseDate string
	State       macro.State
	History     []macro.State // most recent first
}

// PostReleaseInput carries everything a post-release prompt needs: the
// realized value against consensus plus the state transition the release
// caused.
type PostReleaseInput struct {
	ReleaseName string
	ReleaseType string
	Consensus   float64
	Actual      float64
	ReleaseDate string
	Before      macro.State
	After       macro.State
	Impact      string
}

// EventInput carries everything a macro-event prompt needs.
type EventInput struct {
	Headline  string
	EventDate string
	Before    macro.State
	After     macro.State
	Impact    string
}

// PreReleasePrompt builds the analyst prompt for a pre-release narrative.
func PreReleasePrompt(in PreReleaseInput) string {
	return fmt.Sprintf(`You are a financial market analyst writing a pre-release analysis for institutional investors.

CONTEXT:
- Release: %s (%s)
- Scheduled for: %s
- Consensus Forecast: %g

CURRENT MACRO-ECONOMIC STATE:
- Growth: %.2f%%
- Inflation: %.2f%%
- Market Volatility: %.2f
- Regime: %s

%s

TASK:
Write a market analysis discussing:
1. What the consensus forecast implies for the economy
2. How this release fits into the current macro environment
3. What market participants should watch for
4. Potential market reactions to beats or misses vs consensus

STYLE GUIDELINES:
- Professional, analytical tone appropriate for institutional investors
- Focus on economic implications and market dynamics
- Approximately 300-400 words
- Use market terminology naturally
- Be specific about numbers and magnitudes when relevant
- No bullet points or lists - write in flowing paragraphs

Write the analysis:`,
		in.ReleaseName, in.ReleaseType, in.ReleaseDate, in.Consensus,
		in.State.Growth, in.State.Inflation, in.State.Volatility,
		regimeLine(in.State),
		formatHistory(in.History),
	)
}

// PostReleasePrompt builds the analyst prompt for an immediate post-release
// reaction narrative.
func PostReleasePrompt(in PostReleaseInput) string {
	surprise := in.Actual - in.Consensus
	surprisePct := 0.0
	if in.Consensus != 0 {
		surprisePct = surprise / in.Consensus * 100
	}
	beatOrMiss := "matched"
	if surprise > 0 {
		beatOrMiss = "beat"
	} else if surprise < 0 {
		beatOrMiss = "missed"
	}

	return fmt.Sprintf(`You are a financial market analyst writing an immediate market reaction analysis.

RELEASE DETAILS:
- Release: %s (%s)
- Consensus: %g
- Actual: %g
- Surprise: %+.1f (%+.1f%%) - %s expectations

MACRO-ECONOMIC IMPACT:
Previous State:
- Growth: %.2f%%
- Inflation: %.2f%%
- Volatility: %.2f

New State After Release:
- Growth: %.2f%% (change: %+.2f)
- Inflation: %.2f%% (change: %+.2f)
- Volatility: %.2f (change: %+.2f)

Current Regime: %s

%s

TASK:
Write a market reaction analysis covering:
1. Immediate interpretation of the data surprise
2. What this means for the economic narrative
3. Market implications and likely asset class reactions
4. Forward-looking considerations for investors

STYLE GUIDELINES:
- Urgent, immediate tone appropriate for breaking market news
- Professional analysis for institutional investors
- Approximately 300-400 words
- Use market terminology naturally
- Be specific about the magnitude of surprise and impacts
- No bullet points or lists - write in flowing paragraphs

Write the analysis:`,
		in.ReleaseName, in.ReleaseType, in.Consensus, in.Actual,
		surprise, surprisePct, beatOrMiss,
		in.Before.Growth, in.Before.Inflation, in.Before.Volatility,
		in.After.Growth, in.After.Growth-in.Before.Growth,
		in.After.Inflation, in.After.Inflation-in.Before.Inflation,
		in.After.Volatility, in.After.Volatility-in.Before.Volatility,
		regimeLine(in.After),
		in.Impact,
	)
}

// EventPrompt builds the commentary prompt for a macro event narrative.
func EventPrompt(in EventInput) string {
	return fmt.Sprintf(`You are a financial market analyst writing commentary on a major macro-economic or geopolitical event.

EVENT:
%s
Date: %s

MACRO-ECONOMIC IMPACT:
Previous State:
- Growth: %.2f%%
- Inflation: %.2f%%
- Volatility: %.2f

New State After Event:
- Growth: %.2f%% (change: %+.2f)
- Inflation: %.2f%% (change: %+.2f)
- Volatility: %.2f (change: %+.2f)

Current Regime: %s

%s

TASK:
Write a market commentary covering:
1. Context and significance of this event
2. Economic and market implications
3. How this changes the macro outlook
4. What investors should watch next

STYLE GUIDELINES:
- Authoritative, analytical tone for institutional investors
- Connect the event to broader economic themes
- Approximately 300-400 words
- Use appropriate economic and market terminology
- Be specific about impacts and magnitudes
- No bullet points or lists - write in flowing paragraphs

Write the commentary:`,
		in.Headline, in.EventDate,
		in.Before.Growth, in.Before.Inflation, in.Before.Volatility,
		in.After.Growth, in.After.Growth-in.Before.Growth,
		in.After.Inflation, in.After.Inflation-in.Before.Inflation,
		in.After.Volatility, in.After.Volatility-in.Before.Volatility,
		regimeLine(in.After),
		in.Impact,
	)
}

// ImpactSummary formats the IMPACT BREAKDOWN block describing each non-zero
// delta applied to the macro variables.
func ImpactSummary(impactGrowth, impactInflation, impactVolatility float64) string {
	lines := []string{"IMPACT BREAKDOWN:"}

	if impactGrowth != 0 {
		direction := "reduced"
		if impactGrowth > 0 {
			direction = "boosted"
		}
		lines = append(lines, fmt.Sprintf("- Growth outlook %s by %.2f%%", direction, abs(impactGrowth)))
	}
	if impactInflation != 0 {
		direction := "decreased"
		if impactInflation > 0 {
			direction = "increased"
		}
		lines = append(lines, fmt.Sprintf("- Inflation pressure %s by %.2f%%", direction, abs(impactInflation)))
	}
	if impactVolatility != 0 {
		direction := "fell"
		if impactVolatility > 0 {
			direction = "rose"
		}
		lines = append(lines, fmt.Sprintf("- Market volatility %s by %.2f points", direction, abs(impactVolatility)))
	}

	return strings.Join(lines, "\n")
}

// formatHistory renders the RECENT HISTORY block from up to three of the
// most recent states. Fewer than two entries is not worth narrating.
func formatHistory(history []macro.State) string {
	if len(history) < 2 {
		return "RECENT HISTORY: Limited historical data available."
	}

	recent := history[:min(3, len(history))]

	lines := []string{"RECENT HISTORY:"}
	for i, st := range recent {
		line := fmt.Sprintf("- %s: Growth=%.2f%%, Inflation=%.2f%%, Volatility=%.2f",
			st.Timestamp.Format("2006-01-02"), st.Growth, st.Inflation, st.Volatility)
		if i == 0 {
			line += " (current)"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// regimeLine renders the regime in the parenthesized form used inside
// prompts, e.g. "Boom (high growth with elevated inflation)".
func regimeLine(s macro.State) string {
	r := macro.Classify(s)
	desc := strings.ToLower(r.Description[:1]) + r.Description[1:]
	return fmt.Sprintf("%s (%s)", r.Label, desc)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
