/*
Package event implements the engine's event bus (component C1): a typed,
in-process pub/sub registry with synchronous, subscription-ordered
delivery.

The bus serves two purposes in the engine:

  - UI notification: streaming chunks, state transitions, tool lifecycle
    events are emitted for any subscriber (typically a CLI or server layer)
    to render.
  - Request/response rendezvous: the permission gate, the ask-question tool
    and the plan-exit flow publish a `*:request` event and block on a
    future that resolves when a matching `*:response` event carrying the
    same AgentID is emitted, or the agent's abort token fires. See
    internal/permission for the canonical rendezvous implementation.

Delivery is always synchronous and in subscription order — there is no
async Publish variant, because spec ordering guarantees (state:update{busy},
interleaved message:* and tool:* events, terminating state:update{idle}) require it.
A handler that panics is recovered and logged; it never prevents delivery
to sibling subscribers and never escapes Emit.
*/
package event
