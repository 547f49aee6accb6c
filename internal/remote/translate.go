package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorTranslator: maps remote transport outcomes to a small closed set of
// user-facing categories. The mapping is total and never panics; every failure
// produces exactly one human-readable sentence.

type Category string

const (
	CategoryStaleConversation Category = "stale_conversation"
	CategoryBadRequest        Category = "bad_request"
	CategoryInvalidInput      Category = "invalid_input"
	CategoryServerError       Category = "server_error"
	CategoryUnknownRemote     Category = "unknown_remote_error"
	CategoryNetwork           Category = "network_error"
)

// Translation is a stable category plus the sentence shown to the user.
type Translation struct {
	Category Category
	Display  string
}

// missingCodeMarker is the body marker the service emits when a follow-up turn
// arrives without the code field it expects.
const missingCodeMarker = "source_code"

type translationRule struct {
	matches   func(status int, body string) bool
	translate func(status int, body string) Translation
}

// Ordered; the last rule matches everything, keeping the mapping total.
var translationRules = []translationRule{
	{
		matches: func(status int, body string) bool {
			return status == http.StatusBadRequest && strings.Contains(body, missingCodeMarker)
		},
		translate: func(int, string) Translation {
			return Translation{
				Category: CategoryStaleConversation,
				Display:  "This conversation is out of date. Send your code again to start a fresh review.",
			}
		},
	},
	{
		matches: func(status int, _ string) bool { return status == http.StatusBadRequest },
		translate: func(status int, _ string) Translation {
			return Translation{
				Category: CategoryBadRequest,
				Display:  fmt.Sprintf("The analysis service rejected the request: %s.", http.StatusText(status)),
			}
		},
	},
	{
		matches: func(status int, _ string) bool { return status == http.StatusUnprocessableEntity },
		translate: func(int, string) Translation {
			return Translation{
				Category: CategoryInvalidInput,
				Display:  "The analysis service could not process that input. Check your message and try again.",
			}
		},
	},
	{
		matches: func(status int, _ string) bool { return status == http.StatusInternalServerError },
		translate: func(int, string) Translation {
			return Translation{
				Category: CategoryServerError,
				Display:  "The analysis service hit an internal error. Try again later.",
			}
		},
	},
	{
		matches: func(int, string) bool { return true },
		translate: func(status int, _ string) Translation {
			reason := http.StatusText(status)
			if reason == "" {
				reason = "Unknown Status"
			}
			return Translation{
				Category: CategoryUnknownRemote,
				Display:  fmt.Sprintf("Unexpected response from the analysis service (%d %s).", status, reason),
			}
		},
	},
}

// Translate maps an HTTP-style failure to its category and display sentence.
func Translate(statusCode int, body string) Translation {
	for _, rule := range translationRules {
		if rule.matches(statusCode, body) {
			return rule.translate(statusCode, body)
		}
	}
	// Unreachable: the last rule is a catch-all.
	return Translation{Category: CategoryUnknownRemote, Display: "Unexpected response from the analysis service."}
}

// TranslateTransport maps a transport-level failure (no response received).
// Cancellation gets its own sentence, distinct from connection failures.
func TranslateTransport(err error) Translation {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Translation{
			Category: CategoryNetwork,
			Display:  "The request was cancelled before the analysis service answered.",
		}
	}
	return Translation{
		Category: CategoryNetwork,
		Display:  fmt.Sprintf("Could not reach the analysis service: %v.", err),
	}
}

// TranslateError maps any error returned by Client.Analyze.
func TranslateError(err error) Translation {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return Translate(remoteErr.StatusCode, remoteErr.Body)
	}
	return TranslateTransport(err)
}
