package expert

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"
)

// CLIResponder invokes an external reasoning CLI in one-shot, print-only
// mode, one process per contribution. The prompt is written to stdin and
// the contribution read from stdout.
type CLIResponder struct {
	// Command is the executable to run (e.g. "claude").
	Command string
	// Args are passed to the command after placeholder expansion:
	// {role}, {model}, {phase} and {round} are replaced per request.
	Args []string
}

// NewCLIResponder creates a responder for the given command template.
func NewCLIResponder(command string, args ...string) *CLIResponder {
	return &CLIResponder{Command: command, Args: args}
}

// Respond runs one CLI invocation for the request. Process failures,
// including context timeouts, surface as retryable responder errors.
func (r *CLIResponder) Respond(ctx context.Context, req Request) (Response, error) {
	args := make([]string, len(r.Args))
	replacer := strings.NewReplacer(
		"{role}", req.Role,
		"{model}", req.Model,
		"{phase}", req.Phase,
		"{round}", strconv.Itoa(req.Round),
	)
	for i, a := range r.Args {
		args[i] = replacer.Replace(a)
	}

	cmd := exec.CommandContext(ctx, r.Command, args...)
	cmd.Stdin = strings.NewReader(req.Prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Response{}, Unavailable(req, ctxErr)
		}
		return Response{}, Unavailable(req, err)
	}

	content := strings.TrimSpace(stdout.String())
	if content == "" {
		return Response{}, Unavailable(req, errEmptyOutput)
	}

	return Response{
		Content: content,
		// Rough usage estimate when the CLI reports nothing.
		TokensUsed: (len(req.Prompt) + len(content)) / 4,
	}, nil
}

var errEmptyOutput = execError("responder produced no output")

type execError string

func (e execError) Error() string { return string(e) }
