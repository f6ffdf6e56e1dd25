package separation

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"stemtab/internal/logger"
)

// CommandEngine shells out to a separator binary. The child process
// reports on stdout, one event per line:
//
//	progress <percent>
//	stem <instrument> <path>
//
// and exits non-zero on failure with diagnostics on stderr.
type CommandEngine struct {
	Command string
	Logger  *logger.Logger
}

func NewCommandEngine(command string, log *logger.Logger) *CommandEngine {
	if log == nil {
		log = logger.Default()
	}
	return &CommandEngine{
		Command: command,
		Logger:  log.WithComponent("separation"),
	}
}

func (e *CommandEngine) Separate(ctx context.Context, req Request, progress ProgressFunc) (map[string]string, error) {
	args := []string{
		"--algorithm", string(req.Algorithm),
		"--quality", string(req.Quality),
		"--input", req.InputPath,
		"--output", req.OutputDir,
	}

	cmd := exec.CommandContext(ctx, e.Command, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdout pipe: %w", err)
	}

	e.Logger.Debug("Starting separator", "command", e.Command, "args", strings.Join(args, " "))

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start separator: %w", err)
	}

	stems := make(map[string]string)

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "progress":
			pct, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				e.Logger.Warn("Bad progress line from separator", "line", scanner.Text())
				continue
			}
			if progress != nil {
				progress(pct)
			}
		case "stem":
			if len(fields) < 3 {
				continue
			}
			stems[fields[1]] = fields[2]
		}
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("separator failed for %s: %w\nSeparator Error: %s", req.InputPath, err, stderr.String())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read separator output: %w", err)
	}

	e.Logger.Info("Separation finished", "input", req.InputPath, "stems", len(stems))
	return stems, nil
}
