package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/ccdash/internal/errors"
)

// MinInterval keeps polling from hammering the server.
const MinInterval = 500 * time.Millisecond

// ParseInterval parses a polling interval flag. Empty means "not set" and
// returns zero.
func ParseInterval(name, flag string) (time.Duration, error) {
	if flag == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid --%s", flag, name),
			"Try something like 2s, 10s, or 1m.")
	}
	if d < MinInterval {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("--%s %s is too short", name, flag),
			"Minimum interval is 500ms to avoid overwhelming the server")
	}
	return d, nil
}

// ParseRecipients splits a comma-separated --to list, dropping blanks.
func ParseRecipients(flag string) []string {
	var out []string
	for _, part := range strings.Split(flag, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
