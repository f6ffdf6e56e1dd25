package pitch

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

// CommandExtractor shells out to a pitch-tracking binary. The child
// writes one sample per stdout line:
//
//	<time> <frequency> <confidence>
//
// with whitespace-separated floats, and exits non-zero on failure.
type CommandExtractor struct {
	Command string
	Logger  *logger.Logger
}

func NewCommandExtractor(command string, log *logger.Logger) *CommandExtractor {
	if log == nil {
		log = logger.Default()
	}
	return &CommandExtractor{
		Command: command,
		Logger:  log.WithComponent("pitch"),
	}
}

func (e *CommandExtractor) Extract(ctx context.Context, path string, minFreq, maxFreq float64) ([]Sample, error) {
	args := []string{
		"--fmin", strconv.FormatFloat(minFreq, 'f', -1, 64),
		"--fmax", strconv.FormatFloat(maxFreq, 'f', -1, 64),
		"--input", path,
	}

	cmd := exec.CommandContext(ctx, e.Command, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start pitch extractor: %w", err)
	}

	var samples []Sample

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		t, err1 := strconv.ParseFloat(fields[0], 64)
		freq, err2 := strconv.ParseFloat(fields[1], 64)
		conf, err3 := strconv.ParseFloat(fields[2], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			e.Logger.Warn("Bad contour line from extractor", "line", scanner.Text())
			continue
		}
		samples = append(samples, Sample{Time: t, Frequency: freq, Confidence: conf})
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("pitch extraction failed for %s: %w\nExtractor Error: %s", path, err, stderr.String())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read extractor output: %w", err)
	}

	return samples, nil
}
