// Package buildinfo carries the version data injected with -ldflags.
package buildinfo

import "go.uber.org/zap"

const notAvailable = "N/A"

type Info struct {
	Version string
	Date    string
	Commit  string
}

// New fills empty values with "N/A".
func New(version, date, commit string) Info {
	return Info{
		Version: orNA(version),
		Date:    orNA(date),
		Commit:  orNA(commit),
	}
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

func (i Info) Log(logger *zap.SugaredLogger) {
	logger.Infow("build info", "version", i.Version, "date", i.Date, "commit", i.Commit)
}
