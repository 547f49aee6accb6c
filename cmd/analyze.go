package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/codesentry/internal/analyzer"
	"github.com/codesentry/internal/extractor"
	"github.com/codesentry/internal/patterns"
)

// AnalyzeCommand returns the analyze command
func AnalyzeCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Run the local security checks on a file or stdin without contacting the remote service",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "extract",
				Aliases: []string{"e"},
				Usage:   "Extract a fenced code block from the input before analyzing",
			},
		},
		ArgsUsage: "[FILE]",
		Action:    runAnalyze,
	}
}

func runAnalyze(c *cli.Context) error {
	var (
		content []byte
		err     error
	)
	if c.NArg() > 0 {
		content, err = os.ReadFile(c.Args().Get(0))
	} else {
		content, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	code := string(content)
	if c.Bool("extract") {
		fragment, ok := extractor.Extract(code)
		if !ok {
			return fmt.Errorf("no code found in input")
		}
		code = fragment
	}

	verdict := analyzer.New(patterns.NewLibrary()).Analyze(code)

	if len(verdict.Issues) == 0 && len(verdict.Suggestions) == 0 {
		fmt.Println("No issues found")
		return nil
	}

	for _, issue := range verdict.Issues {
		fmt.Println(issue)
	}
	for _, suggestion := range verdict.Suggestions {
		fmt.Printf("note: %s\n", suggestion)
	}

	if verdict.HasCriticalIssues {
		return cli.Exit("critical issues found, do not share this code", 1)
	}
	return nil
}
