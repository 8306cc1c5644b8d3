package loop

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/sema-dev/sema-core/internal/agentstate"
	"github.com/sema-dev/sema-core/internal/corerr"
	"github.com/sema-dev/sema-core/internal/event"
	"github.com/sema-dev/sema-core/internal/provider"
)

// pendingToolCall accumulates one tool call's streamed fields. Eino
// sends a start chunk carrying ID/Name, then delta chunks carrying only
// Arguments — identical to the teacher's stream.go accumulation.
type pendingToolCall struct {
	callID string
	name   string
	args   strings.Builder
}

// consumeStream drains stream, emitting text/thinking deltas as they
// arrive, and returns the completed assistant turn plus the finish
// reason (spec §4.6 step 3). An abort fired mid-stream is surfaced as
// *corerr.UserInterruptError so Run can unwind through checkpoint B.
func (l *Loop) consumeStream(ctx context.Context, agentID event.AgentID, stream *provider.CompletionStream, abort *agentstate.AbortHandle) (agentstate.Turn, string, error) {
	start := time.Now()

	var textBlocks, thinkingBlocks []string
	var accumulatedText, accumulatedThinking string
	pending := make(map[string]*pendingToolCall)
	var order []string
	finishReason := ""

	for {
		select {
		case <-abort.Done():
			return agentstate.Turn{}, "", &corerr.UserInterruptError{AgentID: string(agentID)}
		case <-ctx.Done():
			return agentstate.Turn{}, "", &corerr.UserInterruptError{AgentID: string(agentID)}
		default:
		}

		msg, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return agentstate.Turn{}, "", err
		}

		if msg.Content != "" {
			delta := deltaOf(msg.Content, accumulatedText)
			accumulatedText += delta
			l.bus.Emit(event.MessageTextChunk, event.MessageChunkData{AgentID: agentID, Delta: delta})
		}

		if msg.ReasoningContent != "" {
			delta := deltaOf(msg.ReasoningContent, accumulatedThinking)
			accumulatedThinking += delta
			l.bus.Emit(event.MessageThinkingChunk, event.MessageChunkData{AgentID: agentID, Delta: delta})
		}

		for _, tc := range msg.ToolCalls {
			key := toolCallKey(tc)
			if key == "" {
				continue
			}
			p, exists := pending[key]
			if !exists {
				if tc.ID == "" || tc.Function.Name == "" {
					continue
				}
				p = &pendingToolCall{callID: tc.ID, name: tc.Function.Name}
				pending[key] = p
				order = append(order, key)
			}
			if tc.Function.Arguments != "" {
				p.args.WriteString(tc.Function.Arguments)
			}
		}

		if msg.ResponseMeta != nil && msg.ResponseMeta.FinishReason != "" {
			finishReason = msg.ResponseMeta.FinishReason
		}
	}

	if accumulatedText != "" {
		textBlocks = append(textBlocks, accumulatedText)
	}
	if accumulatedThinking != "" {
		thinkingBlocks = append(thinkingBlocks, accumulatedThinking)
	}

	toolUse := make([]agentstate.ToolUseBlock, 0, len(order))
	for _, key := range order {
		p := pending[key]
		var input map[string]any
		if p.args.Len() > 0 {
			_ = json.Unmarshal([]byte(p.args.String()), &input)
		}
		toolUse = append(toolUse, agentstate.ToolUseBlock{CallID: p.callID, Name: p.name, Input: input})
	}

	if finishReason == "" {
		if len(toolUse) > 0 {
			finishReason = "tool_use"
		} else {
			finishReason = "stop"
		}
	}

	durationMs := time.Since(start).Milliseconds()
	return agentstate.AssistantTurn(textBlocks, thinkingBlocks, toolUse, durationMs), finishReason, nil
}

// deltaOf returns the suffix of content not already in accumulated,
// handling both providers that stream accumulated text (each chunk
// starts with everything sent so far) and providers that stream true
// deltas (each chunk is only the new part).
func deltaOf(content, accumulated string) string {
	if accumulated != "" && strings.HasPrefix(content, accumulated) {
		return content[len(accumulated):]
	}
	return content
}

// toolCallKey mirrors the teacher's Index-first, ID-fallback lookup key
// for associating a delta chunk with its in-progress tool call.
func toolCallKey(tc schema.ToolCall) string {
	if tc.Index != nil {
		return fmt.Sprintf("idx:%d", *tc.Index)
	}
	return tc.ID
}
