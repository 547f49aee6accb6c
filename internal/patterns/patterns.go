package patterns

import "regexp"

// Severity classifies a matcher's findings. Critical findings block a request
// from leaving the device; advisory findings never do.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityAdvisory Severity = "advisory"
)

// Matcher is a named, compiled pattern with a declared severity and a
// human-readable finding template.
type Matcher struct {
	Name     string
	Severity Severity
	Pattern  *regexp.Regexp
	Finding  string
}

// Finding is one match of a Matcher against input text.
type Finding struct {
	Matcher  string
	Severity Severity
	Text     string // the finding template, not the matched secret
}

// Library is an immutable-after-construction set of matchers. The compiled
// patterns are read-only and safe to share across concurrent callers.
type Library struct {
	matchers []Matcher
}

// Version of the built-in matcher set. Bump when the default set changes.
const Version = "2024.1"

// credential matchers: fixed literal prefix + fixed-length alphanumeric suffix
var defaultMatchers = []Matcher{
	{
		Name:     "aws-access-key-id",
		Severity: SeverityCritical,
		Pattern:  regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
		Finding:  "AWS access key ID detected. Remove the credential before sharing this code.",
	},
	{
		Name:     "google-api-key",
		Severity: SeverityCritical,
		Pattern:  regexp.MustCompile(`AIza[0-9A-Za-z_\-]{35}`),
		Finding:  "API key detected. Remove the credential before sharing this code.",
	},
	{
		Name:     "stripe-secret-key",
		Severity: SeverityCritical,
		Pattern:  regexp.MustCompile(`sk_live_[0-9a-zA-Z]{24}`),
		Finding:  "Stripe secret key detected. Remove the credential before sharing this code.",
	},
	{
		Name:     "github-pat",
		Severity: SeverityCritical,
		Pattern:  regexp.MustCompile(`ghp_[A-Za-z0-9]{36}`),
		Finding:  "GitHub personal access token detected. Remove the credential before sharing this code.",
	},
}

// NewLibrary returns the built-in matcher set.
func NewLibrary() *Library {
	l := &Library{matchers: make([]Matcher, len(defaultMatchers))}
	copy(l.matchers, defaultMatchers)
	return l
}

// Register adds a matcher. Callers iterate findings generically, so new
// matchers need no caller changes. Must be called before the library is shared.
func (l *Library) Register(m Matcher) {
	l.matchers = append(l.matchers, m)
}

// Matchers returns the registered matchers in registration order.
func (l *Library) Matchers() []Matcher {
	return l.matchers
}

// Scan returns zero or more findings for text, in matcher registration order.
// Pure: no side effects, single pass per matcher.
func (l *Library) Scan(text string) []Finding {
	if text == "" {
		return nil
	}
	var found []Finding
	for _, m := range l.matchers {
		if m.Pattern.MatchString(text) {
			found = append(found, Finding{Matcher: m.Name, Severity: m.Severity, Text: m.Finding})
		}
	}
	return found
}

// HasCritical reports whether any critical matcher fires on text.
func (l *Library) HasCritical(text string) bool {
	for _, f := range l.Scan(text) {
		if f.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
