package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/packagecore/nugetpm/manifest"
	"github.com/packagecore/nugetpm/planner"
)

// CurrentSchemaVersion stamps every JSON document this package emits.
const CurrentSchemaVersion = "1.0.0"

// planOutputSchema is the JSON Schema every PlanOutput document must
// satisfy, validated before it ever reaches a consumer's stdout pipe.
const planOutputSchema = `{
  "type": "object",
  "required": ["schemaVersion", "project", "actions", "elapsedMs"],
  "properties": {
    "schemaVersion": {"type": "string"},
    "project": {"type": "string"},
    "actions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["kind", "id", "version"],
        "properties": {
          "kind": {"type": "string", "enum": ["Install", "Uninstall"]},
          "id": {"type": "string"},
          "version": {"type": "string"},
          "framework": {"type": "string"},
          "reinstall": {"type": "boolean"}
        }
      }
    },
    "elapsedMs": {"type": "integer"}
  }
}`

// PlanAction is one planner.Action rendered for JSON output.
type PlanAction struct {
	Kind      string `json:"kind"`
	ID        string `json:"id"`
	Version   string `json:"version"`
	Framework string `json:"framework,omitempty"`
	Reinstall bool   `json:"reinstall,omitempty"`
}

// PlanOutput is the JSON document cmd/gonugetpm emits for install/
// uninstall/update/reinstall previews and results.
type PlanOutput struct {
	SchemaVersion string       `json:"schemaVersion"`
	Project       string       `json:"project"`
	Actions       []PlanAction `json:"actions"`
	ElapsedMs     int64        `json:"elapsedMs"`
}

// NewPlanOutput converts plan into its JSON shape.
func NewPlanOutput(project string, plan *planner.ActionPlan, start time.Time) *PlanOutput {
	out := &PlanOutput{
		SchemaVersion: CurrentSchemaVersion,
		Project:       project,
		Actions:       make([]PlanAction, 0, len(plan.Actions)),
		ElapsedMs:     time.Since(start).Milliseconds(),
	}
	for _, a := range plan.Actions {
		fw := ""
		if a.Framework != nil {
			fw = a.Framework.String()
		}
		out.Actions = append(out.Actions, PlanAction{
			Kind:      a.Kind.String(),
			ID:        a.Identity.ID,
			Version:   a.Identity.Version.String(),
			Framework: fw,
			Reinstall: a.Reinstall,
		})
	}
	return out
}

// ValidatePlanOutput checks v against planOutputSchema, catching a
// malformed document before it's written rather than shipping it and
// letting a downstream consumer's parser choke on it.
func ValidatePlanOutput(v *PlanOutput) error {
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal plan output: %w", err)
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(planOutputSchema),
		gojsonschema.NewBytesLoader(encoded),
	)
	if err != nil {
		return fmt.Errorf("validate plan output: %w", err)
	}
	if !result.Valid() {
		return fmt.Errorf("plan output failed schema validation: %v", result.Errors())
	}
	return nil
}

// WriteJSON validates v against its schema and writes it indented to w.
func WriteJSON(w io.Writer, v *PlanOutput) error {
	if err := ValidatePlanOutput(v); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// RenderPlan prints plan to c as a human-readable, colorized list:
// uninstalls first (red), then installs (green), matching the order the
// applier itself executes them in.
func RenderPlan(c *Console, plan *planner.ActionPlan) {
	if plan.IsEmpty() {
		c.Println("Nothing to do.")
		return
	}
	for _, a := range plan.Actions {
		line := fmt.Sprintf("  %s %s %s", a.Kind, a.Identity.ID, a.Identity.Version.String())
		if a.Reinstall {
			line += " (reinstall)"
		}
		if c.colors {
			switch a.Kind {
			case planner.Install:
				_, _ = ColorInstall.Fprintln(c.out, line)
			case planner.Uninstall:
				_, _ = ColorRemove.Fprintln(c.out, line)
			}
			continue
		}
		c.Println(line)
	}
}

// ListOutput is the JSON document for `gonugetpm list`.
type ListOutput struct {
	SchemaVersion string          `json:"schemaVersion"`
	Project       string          `json:"project"`
	Packages      []ListedPackage `json:"packages"`
	ElapsedMs     int64           `json:"elapsedMs"`
}

// ListedPackage is one manifest entry in dependency order.
type ListedPackage struct {
	ID        string `json:"id"`
	Version   string `json:"version"`
	Framework string `json:"framework,omitempty"`
}

// NewListOutput converts entries (already ordered by the caller) into the
// JSON shape for `list`.
func NewListOutput(project string, entries []manifest.Entry, start time.Time) *ListOutput {
	out := &ListOutput{
		SchemaVersion: CurrentSchemaVersion,
		Project:       project,
		Packages:      make([]ListedPackage, 0, len(entries)),
		ElapsedMs:     time.Since(start).Milliseconds(),
	}
	for _, e := range entries {
		fw := ""
		if e.TargetFramework != nil {
			fw = e.TargetFramework.String()
		}
		out.Packages = append(out.Packages, ListedPackage{ID: e.Identity.ID, Version: e.Identity.Version.String(), Framework: fw})
	}
	return out
}

// WriteListJSON encodes l to w without schema validation: list's shape is
// simple enough (and has no enum-constrained fields) that the extra round
// trip isn't worth it; PlanOutput is the one that benefits.
func WriteListJSON(w io.Writer, l *ListOutput) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(l)
}

// RenderList prints entries as a plain table.
func RenderList(c *Console, entries []manifest.Entry) {
	if len(entries) == 0 {
		c.Println("No packages installed.")
		return
	}
	for _, e := range entries {
		c.Println(fmt.Sprintf("  %s %s", e.Identity.ID, e.Identity.Version.String()))
	}
}
