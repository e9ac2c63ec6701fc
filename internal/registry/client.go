package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cruciblehq/podsmith/internal/command"
	"github.com/cruciblehq/podsmith/internal/image"
	"github.com/docker/go-units"
	"github.com/opencontainers/go-digest"
)

// Placeholder docker prints for untagged images.
const none = "<none>"

// Bare hex image ID, short or full.
var imageIDPattern = regexp.MustCompile(`^[0-9a-f]{12,64}$`)

// Registry operations backed by a CLI runtime.
type Client struct {
	runner command.Runner // Executes runtime subcommands.
	binary string         // Runtime program, e.g. "podman".
}

// Creates a client invoking binary through runner.
func New(runner command.Runner, binary string) *Client {
	return &Client{runner: runner, binary: binary}
}

// Searches the configured registries for term.
//
// A positive limit caps the number of results per registry.
func (c *Client) Search(ctx context.Context, term string, limit int) ([]SearchResult, error) {
	if strings.TrimSpace(term) == "" {
		return nil, fmt.Errorf("search: empty search term")
	}

	args := []string{"search", "--format", "json"}
	if limit > 0 {
		args = append(args, "--limit", strconv.Itoa(limit))
	}
	args = append(args, "--", term)

	res, err := c.runner.Run(ctx, c.binary, args...)
	if err != nil {
		return nil, err
	}

	raw, err := command.DecodeRecords[searchRecord](res, c.binary+" search")
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(raw))
	for _, r := range raw {
		results = append(results, r.result())
	}
	return results, nil
}

// Pulls ref into local storage.
//
// Returns the image ID or digest the runtime printed, or "" when its output
// names neither.
func (c *Client) Pull(ctx context.Context, ref image.Reference) (string, error) {
	res, err := c.runner.Run(ctx, c.binary, "pull", ref.String())
	if err != nil {
		return "", err
	}
	return pulledID(res.Stdout), nil
}

// Finds the last image identifier in pull output. Podman ends with the image
// ID. Docker ends with the reference and prints a "Digest:" line before it.
func pulledID(stdout string) string {
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimPrefix(strings.TrimSpace(lines[i]), "Digest: ")
		if imageIDPattern.MatchString(line) {
			return line
		}
		if d, err := digest.Parse(line); err == nil {
			return d.String()
		}
	}
	return ""
}

// Lists images in local storage.
func (c *Client) Images(ctx context.Context) ([]Image, error) {
	res, err := c.runner.Run(ctx, c.binary, "images", "--format", "json")
	if err != nil {
		return nil, err
	}

	raw, err := command.DecodeRecords[imageRecord](res, c.binary+" images")
	if err != nil {
		return nil, err
	}

	images := make([]Image, 0, len(raw))
	for _, r := range raw {
		images = append(images, r.image())
	}
	return images, nil
}

// Search hit as printed by podman (Stars, Official "[OK]") or docker
// (StarCount, IsOfficial "true").
type searchRecord struct {
	Index       string   `json:"Index"`
	Name        string   `json:"Name"`
	Description string   `json:"Description"`
	Stars       flexInt  `json:"Stars"`
	StarCount   flexInt  `json:"StarCount"`
	Official    flexBool `json:"Official"`
	IsOfficial  flexBool `json:"IsOfficial"`
	Automated   flexBool `json:"Automated"`
	IsAutomated flexBool `json:"IsAutomated"`
}

func (r searchRecord) result() SearchResult {
	return SearchResult{
		Name:        r.Name,
		Description: strings.TrimSpace(r.Description),
		Stars:       int(max(r.Stars, r.StarCount)),
		Official:    bool(r.Official || r.IsOfficial),
		Automated:   bool(r.Automated || r.IsAutomated),
	}
}

// Local image as printed by podman (Names list, numeric Size) or docker
// (Repository and Tag, human-readable Size).
type imageRecord struct {
	ID         string          `json:"Id"`
	Names      []string        `json:"Names"`
	Repository string          `json:"Repository"`
	Tag        string          `json:"Tag"`
	Size       json.RawMessage `json:"Size"`
	CreatedAt  string          `json:"CreatedAt"`
}

func (r imageRecord) image() Image {
	refs := r.Names
	if len(refs) == 0 && r.Repository != "" && r.Repository != none {
		ref := r.Repository
		if r.Tag != "" && r.Tag != none {
			ref += ":" + r.Tag
		}
		refs = []string{ref}
	}

	return Image{
		ID:         r.ID,
		References: refs,
		Size:       parseSize(r.Size),
		Created:    r.CreatedAt,
	}
}

// Decodes a size printed as a byte count or as a human-readable string
// ("77.8MB"). Unparsable sizes are reported as zero.
func parseSize(raw json.RawMessage) int64 {
	if len(raw) == 0 {
		return 0
	}

	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	size, err := units.FromHumanSize(s)
	if err != nil {
		return 0
	}
	return size
}
