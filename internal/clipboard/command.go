package clipboard

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

const (
	mimeText = "text/plain"
	mimeJSON = "application/json"
)

// candidate is one external copy tool invocation.
type candidate struct {
	name string
	args []string
	// mimeFlag selects the target MIME type; empty when the tool cannot
	// name one.
	mimeFlag string
}

func commandCandidates(goos string) []candidate {
	switch goos {
	case "darwin":
		return []candidate{{name: "pbcopy"}}
	case "windows":
		return []candidate{{name: "clip"}}
	default:
		return []candidate{
			{name: "wl-copy", mimeFlag: "--type"},
			{name: "xclip", args: []string{"-selection", "clipboard"}, mimeFlag: "-t"},
			{name: "xsel", args: []string{"--input", "--clipboard"}},
		}
	}
}

// CommandStrategy pipes text into whichever copy tools the platform has
// installed, in preference order, stopping at the first that takes it.
type CommandStrategy struct {
	candidates []candidate
	logger     *zap.Logger
	lookPath   func(string) (string, error)
	run        func(ctx context.Context, name string, args []string, input string) error
}

// NewCommandStrategy builds the copy-command strategy for this platform.
func NewCommandStrategy(logger *zap.Logger) *CommandStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandStrategy{
		candidates: commandCandidates(runtime.GOOS),
		logger:     logger,
		lookPath:   exec.LookPath,
		run:        runCopyCommand,
	}
}

func runCopyCommand(ctx context.Context, name string, args []string, input string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(input)
	if out, err := cmd.CombinedOutput(); err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (s *CommandStrategy) Name() string { return "command" }

// Available reports whether any copy tool is on PATH.
func (s *CommandStrategy) Available() bool {
	for _, c := range s.candidates {
		if _, err := s.lookPath(c.name); err == nil {
			return true
		}
	}
	return false
}

// Write tries each installed tool in order until one accepts the text.
func (s *CommandStrategy) Write(ctx context.Context, text string, structured bool) error {
	var lastErr error
	tried := 0
	for _, c := range s.candidates {
		if _, err := s.lookPath(c.name); err != nil {
			continue
		}
		tried++
		if err := s.writeWith(ctx, c, text, structured); err != nil {
			lastErr = err
			s.logger.Debug("copy tool failed",
				zap.String("tool", c.name), zap.Error(err))
			continue
		}
		return nil
	}
	if tried == 0 {
		return fmt.Errorf("no copy tool installed")
	}
	return lastErr
}

// writeWith runs one tool. Structured text goes out under both the JSON and
// the plain target when the tool can name a MIME type; the plain pass runs
// last so single-slot clipboards end up holding text/plain.
func (s *CommandStrategy) writeWith(ctx context.Context, c candidate, text string, structured bool) error {
	if c.mimeFlag == "" {
		return s.run(ctx, c.name, c.args, text)
	}
	targets := []string{mimeText}
	if structured {
		targets = []string{mimeJSON, mimeText}
	}
	for _, mt := range targets {
		args := append(append([]string{}, c.args...), c.mimeFlag, mt)
		if err := s.run(ctx, c.name, args, text); err != nil {
			return err
		}
	}
	return nil
}
