package linkset

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
)

var (
	ErrNoLinks = errors.New("no links loaded")
)

// Load adds every line of r to s. Blank lines and lines starting with '#'
// are skipped; lines that fail to normalize are logged and skipped.
func Load(r io.Reader, s *Set) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, _, err := s.Add(line, ""); err != nil {
			slog.Error("couldn't normalize link", slog.String("link", line), slog.Any("err", err))
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	if s.Len() == 0 {
		return ErrNoLinks
	}

	slog.Info("loaded links", "count", s.Len(), "duplicates", s.Duplicates())
	return nil
}

func LoadFile(path string, s *Set) error {
	slog.Info("loading links", "path", path)
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return Load(file, s)
}
