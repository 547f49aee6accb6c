package analyzer

import (
	"fmt"
	"strings"

	"github.com/codesentry/internal/patterns"
)

// Analyzer runs deterministic static checks against a code fragment before it
// is allowed to leave the device. All checks are pure, single-pass scans.

// Verdict is the result of one analysis call. Transient: its critical flag
// gates routing, its text may be merged into remote findings downstream.
type Verdict struct {
	HasCriticalIssues bool
	Issues            []string
	Suggestions       []string
}

// LanguageClass is the result of cheap structural sniffing. It is a heuristic,
// not a guarantee: a misclassified fragment simply skips the checks for the
// other class.
type LanguageClass int

const (
	ClassUnknown LanguageClass = iota
	ClassCodeLike
	ClassMarkupLike
)

const (
	// maxMutableDecls is the number of mutable declarations tolerated before
	// the advisory fires.
	maxMutableDecls = 5
	// maxLines is the fragment size above which a narrower scope is suggested.
	maxLines = 300
)

var declKeywords = []string{"package ", "import ", "fun ", "func ", "class ", "def ", "val ", "var ", "let "}

var debugPrints = []string{"println(", "print(", "console.log(", "Log.d(", "System.out.print"}

type Analyzer struct {
	lib *patterns.Library
}

func New(lib *patterns.Library) *Analyzer {
	return &Analyzer{lib: lib}
}

// Classify sniffs whether the fragment is code-like or markup-like. Computed
// once per analysis call and threaded through the checks.
func Classify(code string) LanguageClass {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return ClassUnknown
	}
	if strings.HasPrefix(trimmed, "<") {
		return ClassMarkupLike
	}
	for _, kw := range declKeywords {
		if strings.Contains(trimmed, kw) {
			return ClassCodeLike
		}
	}
	return ClassUnknown
}

// Analyze runs all checks against code. Blank input short-circuits to an empty
// verdict. Only secret findings from the pattern library are critical; every
// other check is advisory.
func (a *Analyzer) Analyze(code string) Verdict {
	var v Verdict
	if strings.TrimSpace(code) == "" {
		return v
	}

	class := Classify(code)
	lines := strings.Split(code, "\n")

	for _, f := range a.lib.Scan(code) {
		if f.Severity == patterns.SeverityCritical {
			v.HasCriticalIssues = true
			v.Issues = append(v.Issues, f.Text)
		} else {
			v.Suggestions = append(v.Suggestions, f.Text)
		}
	}

	if class == ClassCodeLike {
		a.checkCodeLike(lines, code, &v)
	}
	if class == ClassMarkupLike {
		a.checkMarkupLike(code, &v)
	}

	if strings.Contains(code, "TODO") || strings.Contains(code, "FIXME") {
		v.Suggestions = append(v.Suggestions, "Unresolved TODO/FIXME markers found. Resolve or track them before review.")
	}

	if len(lines) > maxLines {
		msg := fmt.Sprintf("Fragment is %d lines long. Large inputs dilute review quality.", len(lines))
		v.Issues = append(v.Issues, msg)
		v.Suggestions = append(v.Suggestions, "Narrow the fragment to the part you want reviewed.")
	}

	return v
}

func (a *Analyzer) checkCodeLike(lines []string, code string, v *Verdict) {
	mutable := 0
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, "var ") || strings.HasPrefix(t, "let ") {
			mutable++
		}
	}
	if mutable > maxMutableDecls {
		v.Suggestions = append(v.Suggestions,
			fmt.Sprintf("Found %d mutable variable declarations. Prefer immutable values where possible.", mutable))
	}

	for _, p := range debugPrints {
		if strings.Contains(code, p) {
			v.Suggestions = append(v.Suggestions, "Debug print statements found. Remove them before shipping.")
			break
		}
	}

	if strings.Contains(code, "GlobalScope.launch") {
		v.Suggestions = append(v.Suggestions,
			"GlobalScope.launch starts an unscoped coroutine and risks leaks. Use a structured scope.")
	}
}

// The debuggable-markup finding is advisory by current policy even though it
// is a security observation; promotion to critical needs product sign-off.
func (a *Analyzer) checkMarkupLike(code string, v *Verdict) {
	if strings.Contains(code, `android:debuggable="true"`) {
		v.Issues = append(v.Issues, "SECURITY: android:debuggable is enabled. Disable it for release builds.")
	}
}
