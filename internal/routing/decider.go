package routing

import (
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/codesentry/internal/analyzer"
	"github.com/codesentry/internal/extractor"
)

// Decider is the per-turn state machine that routes user input to a local
// canned reply, blocks it on a critical finding, or forwards it to the remote
// analysis service.

type Kind int

const (
	// KindLocalReply terminates the turn with a canned local response.
	KindLocalReply Kind = iota
	// KindBlocked terminates the turn; the request never reaches the network.
	KindBlocked
	// KindForward hands the resolved fragment to the remote collaborator.
	KindForward
)

// ForwardRequest is the payload handed to the remote collaborator on a
// forward decision.
type ForwardRequest struct {
	ConversationID string // prior id; empty when the conversation is new
	Message        string // empty when the fragment came from explicit-code mode
	SourceCode     string
}

// Decision is the outcome of one turn through the state machine.
type Decision struct {
	Kind           Kind
	Reply          string         // set for KindLocalReply
	ConversationID string         // set for KindLocalReply: prior id or freshly generated
	BlockedReason  string         // set for KindBlocked: joined critical issue text
	Suggestions    []string       // advisory findings carried alongside a forward
	Forward        ForwardRequest // set for KindForward
}

// CodeAnalyzer is the static-analysis dependency. Satisfied by
// *analyzer.Analyzer.
type CodeAnalyzer interface {
	Analyze(code string) analyzer.Verdict
}

type Decider struct {
	analyzer CodeAnalyzer
}

func New(a CodeAnalyzer) *Decider {
	return &Decider{analyzer: a}
}

// Decide runs one turn. explicitCode marks the raw message itself as the
// fragment; otherwise extraction is attempted. A critical finding blocks the
// turn before any remote request is constructed.
//
// Any panic inside extraction or analysis is treated as "no fragment, no
// critical issues": the turn fails open to a local reply, never to a remote
// forward.
func (d *Decider) Decide(rawMessage string, explicitCode bool, priorConversationID string) Decision {
	fragment, hasFragment, verdict := d.resolve(rawMessage, explicitCode)

	if !hasFragment {
		return Decision{
			Kind:           KindLocalReply,
			Reply:          cannedReply(rawMessage),
			ConversationID: orFresh(priorConversationID),
		}
	}

	if verdict.HasCriticalIssues {
		log.Warn().Int("critical_issues", len(verdict.Issues)).Msg("request blocked by local analysis")
		return Decision{
			Kind:          KindBlocked,
			BlockedReason: strings.Join(verdict.Issues, " "),
		}
	}

	var message string
	if !explicitCode {
		message = rawMessage
	}
	return Decision{
		Kind:        KindForward,
		Suggestions: verdict.Suggestions,
		Forward: ForwardRequest{
			ConversationID: priorConversationID,
			Message:        message,
			SourceCode:     fragment,
		},
	}
}

// resolve runs extraction and analysis behind a recover boundary. On a matcher
// panic it reports no fragment and a clean verdict, which routes the turn to a
// local reply.
func (d *Decider) resolve(rawMessage string, explicitCode bool) (fragment string, ok bool, verdict analyzer.Verdict) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("local analysis fault, failing open to local reply")
			fragment, ok, verdict = "", false, analyzer.Verdict{}
		}
	}()

	if explicitCode {
		fragment, ok = rawMessage, strings.TrimSpace(rawMessage) != ""
	} else {
		fragment, ok = extractor.Extract(rawMessage)
	}
	if !ok {
		return "", false, analyzer.Verdict{}
	}
	return fragment, true, d.analyzer.Analyze(fragment)
}

func orFresh(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}
