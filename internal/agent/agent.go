// Package agent routes chat messages to the specialist modules and
// keeps the conversation log around every exchange.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aria-labs/aria-server/internal/llm"
	"github.com/aria-labs/aria-server/internal/memory"
	"github.com/aria-labs/aria-server/internal/model"
)

// Module names accepted on chat requests.
const (
	ModuleGeneral   = "general"
	ModuleDeveloper = "developer"
	ModuleTrading   = "trading"
	ModuleResearch  = "research"
)

// DeveloperModule answers code-oriented requests.
type DeveloperModule interface {
	Process(ctx context.Context, message, convContext string) (*llm.Result, error)
}

// TradingModule answers market questions.
type TradingModule interface {
	Answer(ctx context.Context, message, convContext string) (*llm.Result, error)
}

// ResearchModule answers from the knowledge base.
type ResearchModule interface {
	Query(ctx context.Context, question string) (*model.QueryResult, error)
}

// Agent is the orchestration core: one entry point per conversation
// turn, with specialist modules behind it.
type Agent struct {
	sessions  *memory.Store
	gen       llm.Generator
	developer DeveloperModule
	trading   TradingModule
	research  ResearchModule
	log       zerolog.Logger

	maxContextTokens int
}

// New wires the agent. Any specialist module may be nil; its requests
// then fall through to general handling.
func New(sessions *memory.Store, gen llm.Generator, dev DeveloperModule, trading TradingModule, research ResearchModule, maxContextTokens int, log zerolog.Logger) *Agent {
	return &Agent{
		sessions:         sessions,
		gen:              gen,
		developer:        dev,
		trading:          trading,
		research:         research,
		log:              log,
		maxContextTokens: maxContextTokens,
	}
}

// Response is one completed conversation turn.
type Response struct {
	Response   string `json:"response"`
	SessionID  string `json:"sessionId"`
	MessageID  string `json:"messageId"`
	Module     string `json:"module"`
	TokensUsed int    `json:"tokensUsed"`
}

// Chat runs one turn: log the user message, derive bounded context,
// dispatch to the requested module and log the reply.
func (a *Agent) Chat(ctx context.Context, sessionID, message, module string) (*Response, error) {
	if module == "" {
		module = ModuleGeneral
	}
	if sessionID == "" || !a.sessions.Exists(sessionID) {
		sessionID = a.sessions.Create(sessionID)
	}

	a.sessions.Append(sessionID, model.RoleUser, message, map[string]interface{}{"module": module})
	convContext := a.sessions.Context(sessionID, a.maxContextTokens)

	result, err := a.dispatch(ctx, module, message, convContext)
	if err != nil {
		a.log.Error().Err(err).Str("module", module).Str("session_id", sessionID).Msg("module dispatch failed")
		return nil, err
	}

	messageID := a.sessions.Append(sessionID, model.RoleAssistant, result.Text, map[string]interface{}{"module": module})

	return &Response{
		Response:   result.Text,
		SessionID:  sessionID,
		MessageID:  messageID,
		Module:     module,
		TokensUsed: result.TokensUsed,
	}, nil
}

func (a *Agent) dispatch(ctx context.Context, module, message, convContext string) (*llm.Result, error) {
	switch module {
	case ModuleDeveloper:
		if a.developer != nil {
			return a.developer.Process(ctx, message, convContext)
		}
	case ModuleTrading:
		if a.trading != nil {
			return a.trading.Answer(ctx, message, convContext)
		}
	case ModuleResearch:
		if a.research != nil {
			res, err := a.research.Query(ctx, message)
			if err != nil {
				return nil, err
			}
			text := res.Answer
			if len(res.Sources) > 0 {
				text += "\n\nSources: " + strings.Join(res.Sources, ", ")
			}
			return &llm.Result{Text: text}, nil
		}
	case ModuleGeneral:
	default:
		return nil, fmt.Errorf("unknown module %q: %w", module, model.ErrValidation)
	}
	return a.general(ctx, message, convContext)
}

func (a *Agent) general(ctx context.Context, message, convContext string) (*llm.Result, error) {
	prompt := fmt.Sprintf(`Previous conversation:
%s

User: %s

Assistant:`, convContext, message)

	return a.gen.Generate(ctx, llm.Request{
		Prompt: prompt,
		System: "You are ARIA, a helpful personal assistant. You are concise, friendly and honest about what you don't know.",
	})
}

// Health summarizes component availability for the health endpoint.
func (a *Agent) Health(ctx context.Context) map[string]string {
	out := map[string]string{"agent": "ok"}
	if err := a.gen.HealthPing(ctx); err != nil {
		out["llm"] = "unreachable"
	} else {
		out["llm"] = "ok"
	}
	return out
}
