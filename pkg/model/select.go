package model

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// invoker is the subset of Client needed by SelectViaText.
type invoker interface {
	Invoke(ctx context.Context, req Request) (*Response, error)
}

// SelectViaText implements InvokeStructured on top of plain text generation.
// Adapters for providers without native constrained decoding delegate to it.
// The model is shown a numbered menu and asked to answer with the number of
// its choice, optionally followed by reasoning.
func SelectViaText(ctx context.Context, c invoker, req StructuredRequest) (*Selection, error) {
	if len(req.Choices) == 0 {
		return nil, NewProviderError("select", ErrorKindInvalidRequest, "no choices given", nil)
	}

	var menu strings.Builder
	menu.WriteString(req.Prompt)
	menu.WriteString("\n\nOptions:\n")
	for i, choice := range req.Choices {
		fmt.Fprintf(&menu, "%d. %s\n", i+1, choice)
	}
	menu.WriteString("\nAnswer with the number of your choice on the first line. You may add reasoning on the following lines.")

	resp, err := c.Invoke(ctx, Request{
		System:      req.System,
		Prompt:      menu.String(),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	idx, reasoning, ok := parseNumberedChoice(resp.Text, len(req.Choices))
	if !ok {
		return nil, NewProviderError("select", ErrorKindInvalidRequest,
			fmt.Sprintf("response does not name a choice: %q", firstLine(resp.Text)), nil)
	}
	return &Selection{Index: idx, Reasoning: reasoning, Usage: resp.Usage}, nil
}

// parseNumberedChoice extracts a 1-based choice number from the first line of
// text and returns the 0-based index plus the remaining lines as reasoning.
func parseNumberedChoice(text string, n int) (int, string, bool) {
	trimmed := strings.TrimSpace(text)
	first, rest, _ := strings.Cut(trimmed, "\n")

	numeric := strings.TrimRight(strings.TrimSpace(first), ".):")
	num, err := strconv.Atoi(numeric)
	if err != nil || num < 1 || num > n {
		return 0, "", false
	}
	return num - 1, strings.TrimSpace(rest), true
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	if len(line) > 120 {
		line = line[:120]
	}
	return line
}
