package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesentry/internal/patterns"
)

func newAnalyzer() *Analyzer {
	return New(patterns.NewLibrary())
}

func TestAnalyzeBlankShortCircuits(t *testing.T) {
	a := newAnalyzer()
	for _, input := range []string{"", "   ", "\n\t"} {
		v := a.Analyze(input)
		assert.False(t, v.HasCriticalIssues)
		assert.Empty(t, v.Issues)
		assert.Empty(t, v.Suggestions)
	}
}

func TestAnalyzeSecretIsCritical(t *testing.T) {
	a := newAnalyzer()
	v := a.Analyze(`val key = "AKIA1234567890ABCDEF"`)
	assert.True(t, v.HasCriticalIssues)
	require.NotEmpty(t, v.Issues)
	assert.Contains(t, v.Issues[0], "AWS access key")
}

func TestAnalyzeMutableVariableAdvisory(t *testing.T) {
	a := newAnalyzer()
	code := strings.Repeat("var counter = 0\n", 6)
	v := a.Analyze(code)
	assert.False(t, v.HasCriticalIssues)
	require.NotEmpty(t, v.Suggestions)
	assert.Contains(t, strings.Join(v.Suggestions, " "), "mutable variable")
}

func TestAnalyzeDebugPrintAndCoroutineAdvisories(t *testing.T) {
	a := newAnalyzer()
	code := "fun work() {\n    println(\"debug\")\n    GlobalScope.launch { fetch() }\n}"
	v := a.Analyze(code)
	assert.False(t, v.HasCriticalIssues)
	joined := strings.Join(v.Suggestions, " ")
	assert.Contains(t, joined, "Debug print")
	assert.Contains(t, joined, "GlobalScope.launch")
}

func TestAnalyzeTodoMarkers(t *testing.T) {
	a := newAnalyzer()
	v := a.Analyze("fun f() {\n    // TODO handle errors\n}")
	assert.Contains(t, strings.Join(v.Suggestions, " "), "TODO/FIXME")
}

func TestAnalyzeOversizedFragment(t *testing.T) {
	a := newAnalyzer()
	code := "fun f() {\n" + strings.Repeat("    callSomething()\n", 301) + "}"
	v := a.Analyze(code)
	assert.False(t, v.HasCriticalIssues)
	assert.Contains(t, strings.Join(v.Issues, " "), "lines long")
	assert.Contains(t, strings.Join(v.Suggestions, " "), "Narrow the fragment")
}

func TestAnalyzeDebuggableMarkupIsAdvisory(t *testing.T) {
	a := newAnalyzer()
	v := a.Analyze(`<application android:debuggable="true" android:label="app" />`)
	assert.False(t, v.HasCriticalIssues, "debuggable markup stays advisory by policy")
	assert.Contains(t, strings.Join(v.Issues, " "), "debuggable")
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ClassCodeLike, Classify("fun main() {}"))
	assert.Equal(t, ClassCodeLike, Classify("var x = 1"))
	assert.Equal(t, ClassMarkupLike, Classify("<manifest package=\"com.example\"/>"))
	assert.Equal(t, ClassUnknown, Classify("1 + 2"))
	assert.Equal(t, ClassUnknown, Classify(""))
}

func TestMisclassifiedFragmentNeverPanics(t *testing.T) {
	a := newAnalyzer()
	// Markup shoved through code checks and vice versa must degrade, not crash.
	assert.NotPanics(t, func() {
		a.Analyze("<var {{{ fun ]]] ")
		a.Analyze("}}}}}")
	})
}
