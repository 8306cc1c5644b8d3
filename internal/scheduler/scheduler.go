package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sema-dev/sema-core/internal/agentstate"
	"github.com/sema-dev/sema-core/internal/corerr"
	"github.com/sema-dev/sema-core/internal/event"
	"github.com/sema-dev/sema-core/internal/permission"
	"github.com/sema-dev/sema-core/internal/tool"
)

// Batch is one assistant turn's tool-use blocks plus the context shared
// by every call in it. BaseCtx supplies SessionID/MessageID/WorkDir/Extra;
// CallID, Agent and AbortCh are filled in per call by the dispatcher.
type Batch struct {
	AgentID event.AgentID
	Blocks  []agentstate.ToolUseBlock
	Abort   *agentstate.AbortHandle
	BaseCtx tool.Context
}

// Dispatcher runs a batch's tool calls per spec §4.5's dispatch rule.
type Dispatcher struct {
	bus      *event.Bus
	registry *tool.Registry
}

// New creates a Dispatcher publishing tool:execution:* on bus and
// resolving tool names against registry.
func New(bus *event.Bus, registry *tool.Registry) *Dispatcher {
	return &Dispatcher{bus: bus, registry: registry}
}

// Run executes every tool-use block in b and returns results in
// original tool-use order, regardless of completion order. The whole
// batch dispatches concurrently iff every resolved tool reports
// IsReadOnly() == true; otherwise every call runs strictly in order of
// appearance (spec §4.5's dispatch rule).
func (d *Dispatcher) Run(ctx context.Context, b Batch) []agentstate.ToolUseResult {
	results := make([]agentstate.ToolUseResult, len(b.Blocks))
	resolved := make([]tool.Tool, len(b.Blocks))

	parallel := len(b.Blocks) > 0
	for i, blk := range b.Blocks {
		t, ok := d.registry.Get(blk.Name)
		resolved[i] = t
		if !ok || !t.IsReadOnly() {
			parallel = false
		}
	}

	if parallel {
		var wg sync.WaitGroup
		for i := range b.Blocks {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = d.runOne(ctx, b, resolved[i], b.Blocks[i])
			}(i)
		}
		wg.Wait()
		return results
	}

	for i := range b.Blocks {
		if b.Abort.IsAborted() {
			results[i] = cancelledResult(b.Blocks[i])
			continue
		}
		results[i] = d.runOne(ctx, b, resolved[i], b.Blocks[i])
	}
	return results
}

func (d *Dispatcher) runOne(ctx context.Context, b Batch, t tool.Tool, blk agentstate.ToolUseBlock) agentstate.ToolUseResult {
	if t == nil {
		return errorResult(blk, fmt.Sprintf("unknown tool: %s", blk.Name))
	}

	toolCtx := b.BaseCtx
	toolCtx.CallID = blk.CallID
	toolCtx.Agent = string(b.AgentID)
	toolCtx.AbortCh = b.Abort.Done()

	input, err := json.Marshal(blk.Input)
	if err != nil {
		return errorResult(blk, fmt.Sprintf("invalid input: %v", err))
	}

	if v, ok := t.(tool.Validator); ok {
		if verr := v.ValidateInput(ctx, input, &toolCtx); verr != nil {
			return errorResult(blk, (&corerr.ToolValidationError{
				ToolName: blk.Name, CallID: blk.CallID, Message: verr.Error(),
			}).Error())
		}
	}

	if !t.IsReadOnly() && b.Abort.IsAborted() {
		return cancelledResult(blk)
	}

	d.bus.Emit(event.ToolExecutionStart, event.ToolExecutionData{
		AgentID: b.AgentID, CallID: blk.CallID, ToolName: blk.Name,
	})

	var final tool.ResultEvent
	for ev := range stream(t, ctx, input, &toolCtx) {
		final = ev
	}

	if final.Err != nil {
		return d.handleError(b, blk, final.Err)
	}

	output := ""
	var meta map[string]any
	if final.Result != nil {
		output = final.Result.Output
		meta = final.Result.Metadata
	}

	d.bus.Emit(event.ToolExecutionComplete, event.ToolExecutionData{
		AgentID: b.AgentID, CallID: blk.CallID, ToolName: blk.Name, Output: output,
	})

	return agentstate.ToolUseResult{
		CallID:             blk.CallID,
		ToolName:           blk.Name,
		Output:             output,
		ResultForAssistant: output,
		Metadata:           meta,
	}
}

// handleError turns a tool-body error into a result per spec §4.5's
// failure-isolation rule, setting the batch's abort token when the
// error demands it (a refused permission request or a user interrupt).
func (d *Dispatcher) handleError(b Batch, blk agentstate.ToolUseBlock, err error) agentstate.ToolUseResult {
	var rejected *permission.RejectedError
	if errors.As(err, &rejected) {
		if rejected.AbortBatch {
			b.Abort.Abort()
		}
		return errorResult(blk, rejected.Error())
	}

	var interrupt *corerr.UserInterruptError
	if errors.As(err, &interrupt) {
		b.Abort.Abort()
		return cancelledResult(blk)
	}

	d.bus.Emit(event.ToolExecutionError, event.ToolExecutionData{
		AgentID: b.AgentID, CallID: blk.CallID, ToolName: blk.Name, Error: err.Error(),
	})
	return errorResult(blk, err.Error())
}

func stream(t tool.Tool, ctx context.Context, input json.RawMessage, toolCtx *tool.Context) <-chan tool.ResultEvent {
	if s, ok := t.(tool.Streamer); ok {
		return s.Stream(ctx, input, toolCtx)
	}
	return tool.StreamFromExecute(t, ctx, input, toolCtx)
}

func errorResult(blk agentstate.ToolUseBlock, message string) agentstate.ToolUseResult {
	return agentstate.ToolUseResult{
		CallID:             blk.CallID,
		ToolName:           blk.Name,
		Output:             message,
		IsError:            true,
		ResultForAssistant: message,
	}
}

func cancelledResult(blk agentstate.ToolUseBlock) agentstate.ToolUseResult {
	const msg = "Cancelled: the user interrupted this operation."
	return agentstate.ToolUseResult{
		CallID:             blk.CallID,
		ToolName:           blk.Name,
		Output:             msg,
		IsError:            true,
		ResultForAssistant: msg,
	}
}
