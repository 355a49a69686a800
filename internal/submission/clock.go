package submission

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// SourceGit marks an instant read from the latest commit.
	SourceGit = "git"
	// SourceClock marks the fallback to the current time.
	SourceClock = "clock"
	// SourceReceipt marks the instant the server received an upload.
	SourceReceipt = "receipt"
)

const gitTimeout = 5 * time.Second

// Clock reports when a submission was made and where that instant came from.
type Clock interface {
	SubmittedAt(ctx context.Context) (time.Time, string)
}

// GitClock reads the committer date of HEAD in Dir, falling back to Now when
// git is unavailable or prints something unexpected.
type GitClock struct {
	Dir    string
	Now    func() time.Time
	Logger zerolog.Logger

	run func(ctx context.Context, dir string) (string, error)
}

// SubmittedAt implements Clock.
func (c GitClock) SubmittedAt(ctx context.Context) (time.Time, string) {
	now := c.Now
	if now == nil {
		now = time.Now
	}
	run := c.run
	if run == nil {
		run = lastCommitDate
	}

	ctx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()

	output, err := run(ctx, c.Dir)
	if err != nil {
		c.Logger.Warn().Err(err).Str("dir", c.Dir).Msg("git log unavailable, using current time")
		return now(), SourceClock
	}

	submittedAt, err := time.Parse(time.RFC3339, strings.TrimSpace(output))
	if err != nil {
		c.Logger.Warn().Err(err).Str("output", output).Msg("unexpected commit date, using current time")
		return now(), SourceClock
	}

	return submittedAt, SourceGit
}

func lastCommitDate(ctx context.Context, dir string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "log", "-1", "--format=%cI")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// FixedClock always reports the same instant, such as an upload receipt time.
type FixedClock struct {
	At     time.Time
	Source string
}

// SubmittedAt implements Clock.
func (c FixedClock) SubmittedAt(context.Context) (time.Time, string) {
	return c.At, c.Source
}
