package ffmpeg

import "regexp"

// Pre-compiled regexes for classifying ffmpeg stderr output. A render
// failure is ordinarily recoverable (the scheduler retries the whole job),
// but a missing or unopenable overlay input is structural: retrying with
// the same filter graph can never succeed.
var (
	reMissingInput = regexp.MustCompile(
		`(?i)No such file or directory|` +
			`Invalid data found when processing input|` +
			`Permission denied`)

	reTransientIO = regexp.MustCompile(
		`(?i)Cannot allocate memory|` +
			`Resource temporarily unavailable|` +
			`Device or resource busy|` +
			`Input/output error`)
)

// MatchMissingInput reports whether stderr indicates an input file that
// could not be opened or decoded.
func MatchMissingInput(stderr string) bool {
	return reMissingInput.MatchString(stderr)
}

// MatchTransientIO reports whether stderr indicates a resource condition
// that may clear on a later attempt.
func MatchTransientIO(stderr string) bool {
	return reTransientIO.MatchString(stderr)
}
