// Package envstate remembers the last selected team in a dotenv file.
package envstate

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	crerr "github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/team-gamelog/internal/domain/team"
)

const (
	KeyLastTeamAbbr = "LAST_TEAM_ABBR"
	KeyLastTeamName = "LAST_TEAM_NAME"
)

// Store reads and rewrites one dotenv file, keeping unrelated keys.
type Store struct {
	mu       sync.Mutex
	path     string
	fallback team.Selection
}

func NewStore(path string, fallback team.Selection) *Store {
	return &Store{path: strings.TrimSpace(path), fallback: fallback}
}

// LastSelection returns the persisted selection, or the fallback when the file or keys are absent.
func (s *Store) LastSelection(_ context.Context) (team.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return s.fallback, err
	}

	out := s.fallback
	if v := strings.TrimSpace(values[KeyLastTeamAbbr]); v != "" {
		out.Abbreviation = strings.ToUpper(v)
		out.FullName = strings.TrimSpace(values[KeyLastTeamName])
	}
	return out, nil
}

// Remember writes the selection back to the dotenv file.
func (s *Store) Remember(_ context.Context, sel team.Selection) error {
	if s.path == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	values[KeyLastTeamAbbr] = strings.ToUpper(strings.TrimSpace(sel.Abbreviation))
	values[KeyLastTeamName] = strings.TrimSpace(sel.FullName)

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return crerr.Wrapf(err, "create dotenv dir %s", dir)
		}
	}
	if err := godotenv.Write(values, s.path); err != nil {
		return crerr.Wrapf(err, "write dotenv %s", s.path)
	}
	return nil
}

func (s *Store) read() (map[string]string, error) {
	if s.path == "" {
		return map[string]string{}, nil
	}
	values, err := godotenv.Read(s.path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, crerr.Wrapf(err, "read dotenv %s", s.path)
	}
	return values, nil
}
