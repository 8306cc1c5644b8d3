package loop

import (
	"encoding/json"

	"github.com/cloudwego/eino/schema"

	"github.com/sema-dev/sema-core/internal/agent"
	"github.com/sema-dev/sema-core/internal/agentstate"
	"github.com/sema-dev/sema-core/internal/provider"
	"github.com/sema-dev/sema-core/pkg/types"
)

// buildRequest assembles the provider request for the next step: system
// prompt, the agent's enabled tools, and the turn history converted to
// Eino's message shape (spec §4.6 step 2).
func (l *Loop) buildRequest(persona *agent.Agent, model *types.Model, turns []agentstate.Turn) (*provider.CompletionRequest, error) {
	messages := make([]*schema.Message, 0, len(turns)+1)
	messages = append(messages, &schema.Message{
		Role:    schema.System,
		Content: NewSystemPrompt(persona, l.workDir).Build(),
	})

	for _, t := range turns {
		messages = append(messages, convertTurn(t)...)
	}

	var toolInfos []*schema.ToolInfo
	if model.SupportsTools {
		toolInfos = l.resolveTools(persona)
	}

	maxTokens := model.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = 8192
	}

	req := &provider.CompletionRequest{
		Model:     model.ID,
		Messages:  messages,
		Tools:     toolInfos,
		MaxTokens: maxTokens,
	}
	if persona != nil {
		req.Temperature = persona.Temperature
		req.TopP = persona.TopP
	}
	return req, nil
}

// convertTurn maps one agentstate.Turn onto the zero, one, or two Eino
// messages it represents: a user turn with Content is a plain user
// message, a user turn with ToolUseResult is a tool-role message, and
// an assistant turn becomes one assistant message carrying its
// tool-call requests.
func convertTurn(t agentstate.Turn) []*schema.Message {
	switch t.Role {
	case "user":
		if t.ToolUseResult != nil {
			content := t.ToolUseResult.ResultForAssistant
			if content == "" {
				content = t.ToolUseResult.Output
			}
			return []*schema.Message{{
				Role:       schema.Tool,
				Content:    content,
				ToolCallID: t.ToolUseResult.CallID,
			}}
		}
		return []*schema.Message{{Role: schema.User, Content: t.Content}}

	case "assistant":
		content := ""
		for _, text := range t.TextBlocks {
			content += text
		}
		var calls []schema.ToolCall
		for _, tu := range t.ToolUseBlocks {
			input, _ := json.Marshal(tu.Input)
			calls = append(calls, schema.ToolCall{
				ID: tu.CallID,
				Function: schema.FunctionCall{
					Name:      tu.Name,
					Arguments: string(input),
				},
			})
		}
		return []*schema.Message{{Role: schema.Assistant, Content: content, ToolCalls: calls}}
	}
	return nil
}

// resolveTools returns tool infos for every tool persona enables,
// duplicating the teacher's parseJSONSchemaToParams helper since
// internal/tool keeps its own copy unexported.
func (l *Loop) resolveTools(persona *agent.Agent) []*schema.ToolInfo {
	var infos []*schema.ToolInfo
	for _, t := range l.tools.List() {
		if persona != nil && !persona.ToolEnabled(t.ID()) {
			continue
		}
		params := parseJSONSchemaToParams(t.Parameters())
		infos = append(infos, &schema.ToolInfo{
			Name:        t.ID(),
			Desc:        t.Description(),
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		})
	}
	return infos
}

func parseJSONSchemaToParams(schemaJSON json.RawMessage) map[string]*schema.ParameterInfo {
	var jsonSchema struct {
		Properties map[string]struct {
			Type        string `json:"type"`
			Description string `json:"description"`
		} `json:"properties"`
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(schemaJSON, &jsonSchema); err != nil {
		return nil
	}

	required := make(map[string]bool, len(jsonSchema.Required))
	for _, r := range jsonSchema.Required {
		required[r] = true
	}

	params := make(map[string]*schema.ParameterInfo, len(jsonSchema.Properties))
	for name, prop := range jsonSchema.Properties {
		paramType := schema.String
		switch prop.Type {
		case "integer":
			paramType = schema.Integer
		case "number":
			paramType = schema.Number
		case "boolean":
			paramType = schema.Boolean
		case "array":
			paramType = schema.Array
		case "object":
			paramType = schema.Object
		}
		params[name] = &schema.ParameterInfo{
			Type:     paramType,
			Desc:     prop.Description,
			Required: required[name],
		}
	}
	return params
}
