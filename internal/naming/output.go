// Package naming generates collision-free output and processed-file paths
// under the three configured naming policies, including the durable counter
// backing the sequential policy.
package naming

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BigAddict/VideoEditor/internal/config"
)

// timeFormat is the second-resolution stamp used by the timestamp policy and
// processed-file disambiguation.
const timeFormat = "20060102_150405"

// OutputPath returns the branded output path for sourcePath under the given
// policy. Timestamp and sequential results never collide with an existing
// file: timestamp appends a numeric suffix when the second-resolution name is
// taken, sequential draws from the durable counter. The simple policy always
// returns the same name for the same source.
func OutputPath(outputDir, sourcePath string, policy config.NamingPolicy, seq *SequenceCounter, now time.Time) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))

	switch policy {
	case config.NamingSequential:
		n, err := seq.Next()
		if err != nil {
			return "", fmt.Errorf("sequence counter: %w", err)
		}
		return filepath.Join(outputDir, fmt.Sprintf("%s_branded_%03d.mp4", stem, n)), nil

	case config.NamingTimestamp:
		base := fmt.Sprintf("%s_branded_%s", stem, now.Format(timeFormat))
		candidate := filepath.Join(outputDir, base+".mp4")
		for i := 1; exists(candidate); i++ {
			candidate = filepath.Join(outputDir, fmt.Sprintf("%s_%d.mp4", base, i))
		}
		return candidate, nil

	default: // config.NamingSimple
		return filepath.Join(outputDir, stem+"_branded.mp4"), nil
	}
}

// ProcessedPath returns a collision-safe destination inside processedDir for
// a finished source file: the plain name when free, otherwise the name with
// a timestamp (and a counter when even that is taken).
func ProcessedPath(processedDir, sourcePath string, now time.Time) string {
	name := filepath.Base(sourcePath)
	plain := filepath.Join(processedDir, name)
	if !exists(plain) {
		return plain
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	stamp := now.Format(timeFormat)

	candidate := filepath.Join(processedDir, fmt.Sprintf("%s_%s%s", stem, stamp, ext))
	for i := 1; exists(candidate); i++ {
		candidate = filepath.Join(processedDir, fmt.Sprintf("%s_%s_%d%s", stem, stamp, i, ext))
	}
	return candidate
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
