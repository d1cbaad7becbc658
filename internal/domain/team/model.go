package team

import (
	"strings"

	crerr "github.com/cockroachdb/errors"
)

// Team is one franchise as known to the stats API.
type Team struct {
	ID           int64  `yaml:"id"`
	Abbreviation string `yaml:"abbreviation"`
	FullName     string `yaml:"full_name"`
	Nickname     string `yaml:"nickname"`
	City         string `yaml:"city"`
}

func (t Team) Validate() error {
	if t.ID <= 0 {
		return crerr.New("team id must be greater than zero")
	}
	if strings.TrimSpace(t.Abbreviation) == "" {
		return crerr.Newf("team %d abbreviation is required", t.ID)
	}
	if strings.TrimSpace(t.FullName) == "" {
		return crerr.Newf("team %d full name is required", t.ID)
	}

	return nil
}
