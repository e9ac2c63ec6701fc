package command

import (
	"bufio"
	"encoding/json"
	"strings"
)

// Decodes JSON records from a command's standard output.
//
// Two shapes are accepted: a single JSON array (podman) and one JSON object
// per line (docker's --format json). Empty output, "null", and "[]" decode to
// an empty, non-nil slice. Anything else that fails to parse returns a
// [*DecodeError] naming source.
func DecodeRecords[T any](res *Result, source string) ([]T, error) {
	out := strings.TrimSpace(res.Stdout)

	switch {
	case out == "" || out == "null":
		return []T{}, nil

	case strings.HasPrefix(out, "["):
		records := []T{}
		if err := json.Unmarshal([]byte(out), &records); err != nil {
			return nil, &DecodeError{Source: source, Err: err}
		}
		return records, nil
	}

	records := []T{}
	scanner := bufio.NewScanner(strings.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var record T
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return nil, &DecodeError{Source: source, Err: err}
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, &DecodeError{Source: source, Err: err}
	}

	return records, nil
}
