package aicli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/forcelab-tw/forcedesk/internal/config"
	"github.com/forcelab-tw/forcedesk/internal/ports"
)

// Runner shells out to the external AI CLI tool, feeding the prompt on
// stdin and capturing stdout under a timeout and an output size cap.
type Runner struct {
	command      string
	defaultModel string
	timeout      time.Duration
	printTimeout time.Duration
	maxOutput    int64
	logger       *slog.Logger
}

var _ ports.AIRunner = (*Runner)(nil)

// NewRunner builds a runner from configuration.
func NewRunner(cfg config.AIConfig, logger *slog.Logger) *Runner {
	return &Runner{
		command:      cfg.Command,
		defaultModel: cfg.DefaultModel,
		timeout:      cfg.Timeout.Std(),
		printTimeout: cfg.PrintTimeout.Std(),
		maxOutput:    cfg.MaxOutputBytes,
		logger:       logger,
	}
}

// Run invokes the tool in prompt/response mode. The sonnet tier is the
// tool's default and gets no model flag.
func (r *Runner) Run(ctx context.Context, prompt string, opts ports.AIOptions) (string, error) {
	model := opts.Model
	if model == "" {
		model = r.defaultModel
	}

	args := []string{"-p"}
	if model != "sonnet" {
		args = append(args, "--model", model)
	}

	return r.execute(ctx, prompt, args, r.pick(opts.Timeout, r.timeout), opts.MaxOutput)
}

// RunPrint invokes the tool's free-form print mode for generative content.
func (r *Runner) RunPrint(ctx context.Context, prompt string, opts ports.AIOptions) (string, error) {
	return r.execute(ctx, prompt, []string{"--print"}, r.pick(opts.Timeout, r.printTimeout), opts.MaxOutput)
}

func (r *Runner) pick(requested, fallback time.Duration) time.Duration {
	if requested > 0 {
		return requested
	}
	return fallback
}

func (r *Runner) execute(ctx context.Context, prompt string, args []string, timeout time.Duration, maxOutput int64) (string, error) {
	if maxOutput <= 0 {
		maxOutput = r.maxOutput
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.command, args...)
	cmd.Stdin = strings.NewReader(prompt)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("pipe stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("start %s: %w", r.command, err)
	}

	var buf bytes.Buffer
	_, readErr := io.Copy(&buf, io.LimitReader(stdout, maxOutput+1))
	waitErr := cmd.Wait()

	if int64(buf.Len()) > maxOutput {
		return "", fmt.Errorf("%s output exceeds %d bytes", r.command, maxOutput)
	}
	if ctx.Err() != nil {
		return "", fmt.Errorf("%s timed out after %s", r.command, timeout)
	}
	if readErr != nil {
		return "", fmt.Errorf("read %s output: %w", r.command, readErr)
	}
	if waitErr != nil {
		return "", fmt.Errorf("%s: %w", r.command, waitErr)
	}

	return buf.String(), nil
}

// ExtractJSON locates the JSON object embedded in free-form tool output:
// the span from the first '{' to the last '}'. The second return is false
// when no span exists or the span is not valid JSON; callers treat that as
// "no result", never as a hard error.
func ExtractJSON(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", false
	}

	span := s[start : end+1]
	if !gjson.Valid(span) {
		return "", false
	}
	return span, true
}
