package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/codesentry/internal/conversation"
	"github.com/codesentry/internal/remote"
	"github.com/codesentry/internal/routing"
)

// Gateway is the single entry point the presentation layer talks to. It owns
// the per-turn routing, applies remote outcomes to conversation state, and
// writes the durable record best-effort after each turn.
//
// Turns for a single conversation are processed one at a time; serialization
// across concurrent turns on the same state is the caller's job.

// RecordStore is the durable-store dependency. Satisfied by *storage.Store.
type RecordStore interface {
	Get(id string) (*conversation.ConversationRecord, error)
	Put(record conversation.ConversationRecord) error
}

// RemoteAnalyzer is the remote collaborator. Satisfied by *remote.Client.
type RemoteAnalyzer interface {
	Analyze(ctx context.Context, req remote.AnalyzeRequest) (*remote.AnalyzeResponse, error)
}

const rateLimitedReply = "You're sending requests too quickly. Wait a moment and try again."

type Gateway struct {
	decider *routing.Decider
	remote  RemoteAnalyzer
	store   RecordStore

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// New builds a gateway. requestsPerMinute caps remote forwards per
// conversation; zero disables the limiter.
func New(decider *routing.Decider, remoteClient RemoteAnalyzer, store RecordStore, requestsPerMinute int) *Gateway {
	g := &Gateway{
		decider:  decider,
		remote:   remoteClient,
		store:    store,
		limiters: make(map[string]*rate.Limiter),
	}
	if requestsPerMinute > 0 {
		g.limit = rate.Limit(float64(requestsPerMinute) / 60.0)
		g.burst = requestsPerMinute
	}
	return g
}

// HandleUserTurn processes one user turn. It returns the updated state and,
// for a forward decision, the request to hand to the remote collaborator.
// Local replies, blocked requests, and rate-limited turns return a nil
// request: nothing leaves the device.
func (g *Gateway) HandleUserTurn(rawMessage string, explicitCode bool, state conversation.ConversationState) (conversation.ConversationState, *remote.AnalyzeRequest) {
	decision := g.decider.Decide(rawMessage, explicitCode, state.ConversationID)

	state.Messages = append(state.Messages, conversation.Message{
		ID:      uuid.NewString(),
		Content: rawMessage,
		Origin:  conversation.OriginUser,
		IsCode:  explicitCode || decision.Kind == routing.KindForward || decision.Kind == routing.KindBlocked,
	})

	switch decision.Kind {
	case routing.KindLocalReply:
		state.ConversationID = decision.ConversationID
		state.Messages = append(state.Messages, conversation.Message{
			ID:      uuid.NewString(),
			Content: decision.Reply,
			Origin:  conversation.OriginAssistant,
		})
		state.IsLoading = false
		state.LastError = ""
		return state, nil

	case routing.KindBlocked:
		state.IsLoading = false
		state.LastError = decision.BlockedReason
		return state, nil

	default: // routing.KindForward
		if !g.allow(state.ConversationID) {
			log.Warn().Str("conversation_id", state.ConversationID).Msg("turn rate limited")
			state.IsLoading = false
			state.LastError = rateLimitedReply
			return state, nil
		}
		state.IsLoading = true
		state.LastError = ""
		req := &remote.AnalyzeRequest{
			ConversationID: decision.Forward.ConversationID,
			Message:        decision.Forward.Message,
			SourceCode:     decision.Forward.SourceCode,
		}
		return state, req
	}
}

// ApplyRemoteSuccess folds a remote analysis result into the state.
func (g *Gateway) ApplyRemoteSuccess(state conversation.ConversationState, resp *remote.AnalyzeResponse) conversation.ConversationState {
	if resp.ConversationID != "" {
		state.ConversationID = resp.ConversationID
	}
	content := resp.Summary
	if resp.ImprovedCode != "" {
		content += "\n\n```\n" + resp.ImprovedCode + "\n```"
	}
	state.Messages = append(state.Messages, conversation.Message{
		ID:               uuid.NewString(),
		Content:          content,
		Origin:           conversation.OriginAssistant,
		Issues:           resp.Issues,
		SuggestedActions: resp.SuggestedActions,
	})
	state.IsLoading = false
	state.LastError = ""
	state.IsConnected = true
	return state
}

// ApplyRemoteFailure translates a remote failure into the state's single
// user-facing error sentence. The category decides whether the session is
// still considered connected.
func (g *Gateway) ApplyRemoteFailure(state conversation.ConversationState, err error) conversation.ConversationState {
	translation := remote.TranslateError(err)
	state.IsLoading = false
	state.LastError = translation.Display
	state.IsConnected = translation.Category != remote.CategoryNetwork
	return state
}

// RunTurn performs a complete turn including the remote round trip and the
// best-effort save. This is what the CLI and the local API use.
func (g *Gateway) RunTurn(ctx context.Context, rawMessage string, explicitCode bool, state conversation.ConversationState) conversation.ConversationState {
	state, req := g.HandleUserTurn(rawMessage, explicitCode, state)
	if req != nil {
		resp, err := g.remote.Analyze(ctx, *req)
		if err != nil {
			state = g.ApplyRemoteFailure(state, err)
		} else {
			state = g.ApplyRemoteSuccess(state, resp)
		}
	}
	g.Persist(state)
	return state
}

// TranslateFailure exposes the error translation to the presentation layer.
func (g *Gateway) TranslateFailure(statusCode int, body string) string {
	return remote.Translate(statusCode, body).Display
}

// ReconstructState rebuilds the message sequence from a durable record.
func (g *Gateway) ReconstructState(record conversation.ConversationRecord) []conversation.Message {
	return conversation.ToState(record)
}

// Resume loads the record for id and rebuilds a live state from it. Returns
// a fresh state when nothing is stored.
func (g *Gateway) Resume(id string) conversation.ConversationState {
	state := conversation.NewState()
	if g.store == nil || id == "" {
		return state
	}
	record, err := g.store.Get(id)
	if err != nil {
		log.Warn().Err(err).Str("conversation_id", id).Msg("could not load conversation, starting fresh")
		return state
	}
	if record == nil {
		return state
	}
	state.ConversationID = record.ID
	state.Messages = conversation.ToState(*record)
	return state
}

// Persist writes the durable record best-effort. A save failure never aborts
// the turn: it is logged and swallowed.
func (g *Gateway) Persist(state conversation.ConversationState) {
	if g.store == nil {
		return
	}
	record, ok := conversation.ToRecord(state)
	if !ok {
		return
	}
	if err := g.store.Put(record); err != nil {
		log.Warn().Err(err).Str("conversation_id", record.ID).Msg("persist failed, conversation continues in memory")
	}
}

// allow checks the per-conversation token bucket. The empty key covers turns
// that have no conversation id yet.
func (g *Gateway) allow(conversationID string) bool {
	if g.limit == 0 {
		return true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	limiter, ok := g.limiters[conversationID]
	if !ok {
		limiter = rate.NewLimiter(g.limit, g.burst)
		g.limiters[conversationID] = limiter
	}
	return limiter.Allow()
}
