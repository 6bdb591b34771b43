package jsonl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ValerySidorin/styx/pkg/record"
	"github.com/pkg/errors"
)

const (
	maxLineSize = 16 * 1024 * 1024
)

// Source reads JSON lines dumps, one record per line. Several files are read
// in order as one dataset.
type Source struct {
	paths     []string
	class     string
	scanLimit int
}

func New(paths []string, class string, scanLimit int) *Source {
	return &Source{
		paths:     paths,
		class:     class,
		scanLimit: scanLimit,
	}
}

func (s *Source) Records(ctx context.Context) ([]record.Record, error) {
	recs := make([]record.Record, 0)

	for _, p := range s.paths {
		done, err := s.readFile(ctx, p, &recs)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}

	return recs, nil
}

func (s *Source) readFile(ctx context.Context, path string, recs *[]record.Record) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, errors.Wrap(err, "jsonl source open")
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return false, errors.Wrap(err, "jsonl source read")
		}
		if s.scanLimit > 0 && len(*recs) >= s.scanLimit {
			return true, nil
		}

		data := bytes.TrimSpace(scanner.Bytes())
		if len(data) == 0 {
			continue
		}

		rec, err := record.New(s.class)
		if err != nil {
			return false, err
		}
		if err := json.Unmarshal(data, rec); err != nil {
			return false, errors.Wrap(err, fmt.Sprintf("jsonl source decode %s:%d", path, line))
		}

		*recs = append(*recs, rec)
	}
	if err := scanner.Err(); err != nil {
		return false, errors.Wrap(err, "jsonl source scan")
	}

	return s.scanLimit > 0 && len(*recs) >= s.scanLimit, nil
}

func (s *Source) Close() error {
	return nil
}
