package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/docker/go-units"
)

// Represents the 'podsmith search' command.
type SearchCmd struct {
	Term  string `arg:"" help:"Search term."`
	Limit int    `help:"Maximum number of results." default:"25"`
	JSON  bool   `help:"Print results as JSON."`
}

// Executes the search command.
func (c *SearchCmd) Run(ctx context.Context, env *Env) error {
	backend, closeFn, err := env.Backend(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	return printSearch(ctx, env, backend, c.Term, c.Limit, c.JSON)
}

// Searches for term and prints the candidates as a table, or as JSON.
func printSearch(ctx context.Context, env *Env, backend Backend, term string, limit int, asJSON bool) error {
	results, err := backend.Search(ctx, term, limit)
	if err != nil {
		return err
	}

	if asJSON {
		return writeJSON(env.Stdout, results)
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{r.Name, r.Description, strconv.Itoa(r.Stars), mark(r.Official)})
	}
	fmt.Fprintln(env.Stdout, renderTable([]string{"NAME", "DESCRIPTION", "STARS", "OFFICIAL"}, rows))
	return nil
}

// Represents the 'podsmith images' command.
type ImagesCmd struct {
	JSON bool `help:"Print images as JSON."`
}

// Executes the images command.
func (c *ImagesCmd) Run(ctx context.Context, env *Env) error {
	backend, closeFn, err := env.Backend(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	images, err := backend.Images(ctx)
	if err != nil {
		return err
	}

	if c.JSON {
		return writeJSON(env.Stdout, images)
	}

	rows := make([][]string, 0, len(images))
	for _, img := range images {
		refs := strings.Join(img.References, ", ")
		if refs == "" {
			refs = "<none>"
		}
		rows = append(rows, []string{img.ID, refs, units.HumanSize(float64(img.Size)), img.Created})
	}
	fmt.Fprintln(env.Stdout, renderTable([]string{"ID", "REFERENCES", "SIZE", "CREATED"}, rows))
	return nil
}

// Represents the 'podsmith ps' command.
type PsCmd struct {
	JSON bool `help:"Print containers as JSON."`
}

// Executes the ps command.
func (c *PsCmd) Run(ctx context.Context, env *Env) error {
	backend, closeFn, err := env.Backend(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	containers, err := backend.Containers(ctx)
	if err != nil {
		return err
	}

	if c.JSON {
		return writeJSON(env.Stdout, containers)
	}

	rows := make([][]string, 0, len(containers))
	for _, ctr := range containers {
		rows = append(rows, []string{shortContainerID(ctr.ID), ctr.Name, ctr.Image, ctr.Status})
	}
	fmt.Fprintln(env.Stdout, renderTable([]string{"ID", "NAME", "IMAGE", "STATUS"}, rows))
	return nil
}

// Truncates long hex container IDs the way runtime CLIs display them.
func shortContainerID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func mark(b bool) string {
	if b {
		return "✓"
	}
	return ""
}
