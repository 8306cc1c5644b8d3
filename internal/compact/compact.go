package compact

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/sema-dev/sema-core/internal/agentstate"
	"github.com/sema-dev/sema-core/internal/corerr"
	"github.com/sema-dev/sema-core/internal/event"
	"github.com/sema-dev/sema-core/internal/provider"
)

// Config controls compaction behavior (spec §4.6's "compaction trigger").
type Config struct {
	// TokenThreshold is set through loop.Config.Compact: compaction
	// fires inline once the estimated token count of an agent's history
	// exceeds this (teacher's MaxContextTokens, default 150000).
	TokenThreshold int

	// MinTurnsToKeep turns at the end of history are never summarized.
	MinTurnsToKeep int

	// SummaryMaxTokens bounds the generated summary's length.
	SummaryMaxTokens int
}

// DefaultConfig matches the teacher's MaxContextTokens/MinMessagesToKeep/
// SummaryMaxTokens defaults (see SPEC_FULL.md Open Question 1).
var DefaultConfig = Config{
	TokenThreshold:   150000,
	MinTurnsToKeep:   4,
	SummaryMaxTokens: 2000,
}

// EstimateTokens is a cheap chars/4 heuristic; the codebase has no real
// tokenizer dependency, and the teacher's own threshold check uses the
// same order-of-magnitude approximation.
func EstimateTokens(turns []agentstate.Turn) int {
	chars := 0
	for _, t := range turns {
		chars += len(t.Content)
		for _, b := range t.TextBlocks {
			chars += len(b)
		}
		for _, b := range t.ThinkingBlocks {
			chars += len(b)
		}
		if t.ToolUseResult != nil {
			chars += len(t.ToolUseResult.Output)
		}
	}
	return chars / 4
}

// ShouldCompact reports whether turns' estimated size exceeds cfg's
// threshold (spec §4.6 step 2's "if total token estimate exceeds the
// configured threshold").
func ShouldCompact(turns []agentstate.Turn, cfg Config) bool {
	return EstimateTokens(turns) > cfg.TokenThreshold
}

// Compactor summarizes the oldest turns of an agent's history using the
// default/quick model, replacing them with a single summary turn.
type Compactor struct {
	bus      *event.Bus
	registry *provider.Registry
	cfg      Config
}

// New creates a Compactor publishing compact:exec on bus and using
// registry's default model for summarization.
func New(bus *event.Bus, registry *provider.Registry, cfg Config) *Compactor {
	return &Compactor{bus: bus, registry: registry, cfg: cfg}
}

// Run summarizes turns[:len(turns)-MinTurnsToKeep] into a single leading
// user turn and returns the new, shorter history. trigger distinguishes
// an inline (context-pressure) compaction from an explicit /compact
// (spec §4.6, §7's CompactError.Trigger). If turns is already short
// enough to keep whole, it is returned unchanged.
func (c *Compactor) Run(ctx context.Context, agentID event.AgentID, turns []agentstate.Turn, trigger corerr.CompactErrorKind) ([]agentstate.Turn, error) {
	if len(turns) <= c.cfg.MinTurnsToKeep {
		return turns, nil
	}

	beforeTokens := EstimateTokens(turns)
	keepFrom := len(turns) - c.cfg.MinTurnsToKeep
	toSummarize, kept := turns[:keepFrom], turns[keepFrom:]

	model, err := c.registry.DefaultModel()
	if err != nil {
		return nil, &corerr.CompactError{AgentID: string(agentID), Trigger: trigger, Err: err}
	}
	prov, err := c.registry.Get(model.ProviderID)
	if err != nil {
		return nil, &corerr.CompactError{AgentID: string(agentID), Trigger: trigger, Err: err}
	}

	summary, err := c.summarize(ctx, prov, model.ID, toSummarize)
	if err != nil {
		return nil, &corerr.CompactError{AgentID: string(agentID), Trigger: trigger, Err: err}
	}

	afterTurns := append([]agentstate.Turn{agentstate.UserTurn(summary)}, kept...)
	afterTokens := EstimateTokens(afterTurns)

	rate := 0.0
	if beforeTokens > 0 {
		rate = float64(afterTokens) / float64(beforeTokens)
	}
	c.bus.Emit(event.CompactExec, event.CompactExecData{
		AgentID:      agentID,
		TokenBefore:  beforeTokens,
		TokenCompact: afterTokens,
		CompactRate:  rate,
	})

	return afterTurns, nil
}

func (c *Compactor) summarize(ctx context.Context, prov provider.Provider, modelID string, turns []agentstate.Turn) (string, error) {
	systemMsg := &schema.Message{
		Role:    schema.System,
		Content: "You are a conversation summarizer. Create a concise summary of the conversation that preserves key context for continuing the discussion.",
	}
	userMsg := &schema.Message{
		Role:    schema.User,
		Content: buildSummaryPrompt(turns),
	}

	stream, err := prov.CreateCompletion(ctx, &provider.CompletionRequest{
		Model:     modelID,
		Messages:  []*schema.Message{systemMsg, userMsg},
		MaxTokens: c.cfg.SummaryMaxTokens,
	})
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var summary strings.Builder
	for {
		msg, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		summary.WriteString(msg.Content)
	}
	return summary.String(), nil
}

func buildSummaryPrompt(turns []agentstate.Turn) string {
	var b strings.Builder
	b.WriteString("Please summarize the following conversation, focusing on:\n")
	b.WriteString("1. Key decisions and outcomes\n")
	b.WriteString("2. Files that were modified\n")
	b.WriteString("3. Important context for continuing the work\n\n---\n\n")

	for _, t := range turns {
		switch t.Role {
		case "user":
			b.WriteString("USER:\n")
			b.WriteString(t.Content)
			b.WriteString("\n")
			if t.ToolUseResult != nil {
				fmt.Fprintf(&b, "[Tool result: %s]\n", truncate(t.ToolUseResult.Output, 500))
			}
		case "assistant":
			b.WriteString("ASSISTANT:\n")
			for _, text := range t.TextBlocks {
				b.WriteString(text)
				b.WriteString("\n")
			}
			for _, tu := range t.ToolUseBlocks {
				fmt.Fprintf(&b, "[Tool call: %s]\n", tu.Name)
			}
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
