package registry

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Image found by a registry search.
type SearchResult struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Stars       int    `json:"stars"`
	Official    bool   `json:"official"`
	Automated   bool   `json:"automated"`
}

// Image present in local storage.
type Image struct {
	ID         string   `json:"id"`
	References []string `json:"references"` // Repository:tag names; empty for dangling images.
	Size       int64    `json:"size"`       // Size in bytes; zero if the runtime did not report one.
	Created    string   `json:"created"`    // Creation time as printed by the runtime.
}

// Boolean printed as true/false, "true"/"false", or podman's "[OK]"/"".
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = flexBool(v)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "[ok]", "true", "yes":
		*b = true
	default:
		*b = false
	}
	return nil
}

// Integer printed either as a JSON number or as a numeric string.
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	var v int
	if err := json.Unmarshal(data, &v); err == nil {
		*n = flexInt(v)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*n = 0
		return nil
	}

	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*n = flexInt(v)
	return nil
}
