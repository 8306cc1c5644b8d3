package loop

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/sema-dev/sema-core/internal/agent"
	"github.com/sema-dev/sema-core/internal/agentstate"
	"github.com/sema-dev/sema-core/internal/compact"
	"github.com/sema-dev/sema-core/internal/corerr"
	"github.com/sema-dev/sema-core/internal/event"
	"github.com/sema-dev/sema-core/internal/provider"
	"github.com/sema-dev/sema-core/internal/scheduler"
	"github.com/sema-dev/sema-core/internal/tool"
)

// Config controls loop behavior (spec §4.6).
type Config struct {
	// MaxSteps bounds the number of request/tool-dispatch round trips
	// in a single Run call (teacher's MaxSteps, default 50).
	MaxSteps int

	MaxRetries            uint64
	RetryInitialInterval  time.Duration
	RetryMaxInterval      time.Duration
	RetryMaxElapsedTime   time.Duration

	Compact compact.Config
}

// DefaultConfig matches the teacher's MaxSteps/MaxRetries/backoff
// constants.
var DefaultConfig = Config{
	MaxSteps:             50,
	MaxRetries:           3,
	RetryInitialInterval: time.Second,
	RetryMaxInterval:     30 * time.Second,
	RetryMaxElapsedTime:  2 * time.Minute,
	Compact:              compact.DefaultConfig,
}

// Loop drives one agent's turns end-to-end: request building,
// streaming, tool dispatch, and recursion (spec §4.6).
type Loop struct {
	bus        *event.Bus
	states     *agentstate.Registry
	providers  *provider.Registry
	tools      *tool.Registry
	dispatcher *scheduler.Dispatcher
	compactor  *compact.Compactor
	workDir    string
	cfg        Config
}

// New creates a Loop wiring the given collaborators. workDir seeds the
// environment section of every turn's system prompt.
func New(bus *event.Bus, states *agentstate.Registry, providers *provider.Registry, tools *tool.Registry, dispatcher *scheduler.Dispatcher, compactor *compact.Compactor, workDir string, cfg Config) *Loop {
	return &Loop{
		bus:        bus,
		states:     states,
		providers:  providers,
		tools:      tools,
		dispatcher: dispatcher,
		compactor:  compactor,
		workDir:    workDir,
		cfg:        cfg,
	}
}

func (l *Loop) newRetryBackoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = l.cfg.RetryInitialInterval
	b.MaxInterval = l.cfg.RetryMaxInterval
	b.MaxElapsedTime = l.cfg.RetryMaxElapsedTime
	b.RandomizationFactor = 0.5
	b.Multiplier = 2.0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, l.cfg.MaxRetries), ctx)
}

// Run processes one user turn for agentID to completion: it streams
// model output, dispatches any requested tools, and recurses until the
// model stops asking for tools, a terminal error occurs, or the turn is
// aborted. providerID/modelID select the model for this turn; persona
// supplies the system prompt and per-tool enablement.
func (l *Loop) Run(ctx context.Context, agentID event.AgentID, persona *agent.Agent, providerID, modelID string) error {
	state := l.states.ForAgent(agentID)
	abort := state.Abort()

	l.states.UpdateState(agentID, event.RunBusy)

	prov, err := l.providers.Get(providerID)
	if err != nil {
		l.states.UpdateState(agentID, event.RunIdle)
		return &corerr.LLMProviderError{Provider: providerID, Err: err}
	}
	model, err := l.providers.GetModel(providerID, modelID)
	if err != nil {
		l.states.UpdateState(agentID, event.RunIdle)
		return &corerr.LLMProviderError{Provider: providerID, Err: err}
	}

	rb := l.newRetryBackoff(ctx)
	step := 0

	for {
		// Checkpoint A.
		if abort.IsAborted() {
			return l.interrupted(agentID)
		}
		if step >= l.cfg.MaxSteps {
			l.states.UpdateState(agentID, event.RunIdle)
			return errors.New("agentic loop: max steps exceeded")
		}

		turns := state.MessageHistory()
		if compact.ShouldCompact(turns, l.cfg.Compact) {
			newTurns, cerr := l.compactor.Run(ctx, agentID, turns, corerr.CompactInline)
			if cerr != nil {
				l.bus.Emit(event.SessionError, event.SessionErrorData{
					Type: "compact_error", Message: cerr.Error(),
				})
			} else {
				l.states.SetMessageHistory(agentID, newTurns)
				turns = newTurns
			}
		}

		req, err := l.buildRequest(persona, model, turns)
		if err != nil {
			l.states.UpdateState(agentID, event.RunIdle)
			return err
		}

		stream, err := prov.CreateCompletion(ctx, req)
		if err != nil {
			if wait, stop := l.backoffOrStop(rb); !stop {
				if l.sleepOrAbort(ctx, wait, abort) {
					return l.interrupted(agentID)
				}
				continue
			}
			l.states.UpdateState(agentID, event.RunIdle)
			return &corerr.LLMProviderError{Provider: providerID, Err: err}
		}

		assistantTurn, finishReason, err := l.consumeStream(ctx, agentID, stream, abort)
		stream.Close()
		if err != nil {
			var interrupt *corerr.UserInterruptError
			if errors.As(err, &interrupt) {
				return l.interrupted(agentID)
			}
			if wait, stop := l.backoffOrStop(rb); !stop {
				if l.sleepOrAbort(ctx, wait, abort) {
					return l.interrupted(agentID)
				}
				continue
			}
			l.states.UpdateState(agentID, event.RunIdle)
			return &corerr.LLMProviderError{Provider: providerID, Err: err}
		}
		if finishReason == "error" {
			if wait, stop := l.backoffOrStop(rb); !stop {
				if l.sleepOrAbort(ctx, wait, abort) {
					return l.interrupted(agentID)
				}
				continue
			}
			l.states.UpdateState(agentID, event.RunIdle)
			return &corerr.LLMProviderError{Provider: providerID, Err: errors.New("stream error: max retries exceeded")}
		}
		rb.Reset()

		// Checkpoint B.
		if abort.IsAborted() {
			return l.interrupted(agentID)
		}

		l.states.AppendMessage(agentID, assistantTurn)
		l.bus.Emit(event.MessageComplete, event.MessageCompleteData{
			AgentID:  agentID,
			Duration: assistantTurn.DurationMs,
			HasTools: len(assistantTurn.ToolUseBlocks) > 0,
		})

		if finishReason == "max_tokens" || finishReason == "length" {
			l.bus.Emit(event.SessionError, event.SessionErrorData{
				Type: "api_error", Message: "output length limit reached",
			})
			l.states.UpdateState(agentID, event.RunIdle)
			return nil
		}

		if len(assistantTurn.ToolUseBlocks) == 0 {
			l.states.UpdateState(agentID, event.RunIdle)
			return nil
		}

		results := l.dispatcher.Run(ctx, scheduler.Batch{
			AgentID: agentID,
			Blocks:  assistantTurn.ToolUseBlocks,
			Abort:   abort,
			BaseCtx: tool.Context{Agent: string(agentID), WorkDir: l.workDir},
		})

		// Checkpoint C.
		if abort.IsAborted() {
			return l.interrupted(agentID)
		}

		rebuild := l.appendToolResults(agentID, results)
		if rebuild != "" {
			l.states.SetMessageHistory(agentID, []agentstate.Turn{agentstate.UserTurn(rebuild)})
			l.bus.Emit(event.PlanImplement, event.PlanImplementData{AgentID: agentID, RebuildText: rebuild})
		}

		// Checkpoint D.
		if abort.IsAborted() {
			return l.interrupted(agentID)
		}
		step++
	}
}

// appendToolResults splices each tool result into a synthetic user turn
// (spec §4.6 step 9) and returns the rebuild text if any result carried
// a controlSignal.rebuildContext (step 10's plan-mode-exit convention:
// the tool populates Result.Metadata["rebuildContext"]/["rebuildText"]).
func (l *Loop) appendToolResults(agentID event.AgentID, results []agentstate.ToolUseResult) string {
	rebuild := ""
	for i := range results {
		r := results[i]
		turn := agentstate.Turn{Role: "user", ToolUseResult: &r}
		if rc, _ := r.Metadata["rebuildContext"].(bool); rc {
			if text, _ := r.Metadata["rebuildText"].(string); text != "" {
				rebuild = text
			}
			turn.ControlSignal = &agentstate.ControlSignal{RebuildContext: true}
		}
		l.states.AppendMessage(agentID, turn)
	}
	return rebuild
}

func (l *Loop) interrupted(agentID event.AgentID) error {
	l.states.UpdateState(agentID, event.RunIdle)
	l.bus.Emit(event.SessionInterrupted, nil)
	return &corerr.UserInterruptError{AgentID: string(agentID)}
}

func (l *Loop) backoffOrStop(rb backoff.BackOff) (wait time.Duration, stop bool) {
	wait = rb.NextBackOff()
	return wait, wait == backoff.Stop
}

// sleepOrAbort waits for wait or the agent's abort signal, whichever
// comes first, reporting true if abort fired.
func (l *Loop) sleepOrAbort(ctx context.Context, wait time.Duration, abort *agentstate.AbortHandle) bool {
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return false
	case <-abort.Done():
		return true
	case <-ctx.Done():
		return true
	}
}
