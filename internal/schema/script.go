package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/uisync/internal/reconcile"
	"github.com/roach88/uisync/internal/state"
)

// Format is the source language of a script.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	}
	return "", fmt.Errorf("unsupported script extension %q (want .yaml, .yml or .cue)", filepath.Ext(path))
}

// Script is an ordered list of snapshots plus optional reconciler overrides.
type Script struct {
	Name        string     `yaml:"name,omitempty" json:"name,omitempty"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	Options     *Options   `yaml:"options,omitempty" json:"options,omitempty"`
	Snapshots   []Snapshot `yaml:"snapshots" json:"snapshots"`
}

// Options override the configured route tables for one script.
// A nil field keeps the configured value.
type Options struct {
	SideRoutes    []string `yaml:"side_routes,omitempty" json:"side_routes,omitempty"`
	SwipeDisabled []string `yaml:"swipe_disabled,omitempty" json:"swipe_disabled,omitempty"`
	Menu          *bool    `yaml:"menu,omitempty" json:"menu,omitempty"`
}

// Snapshot is the script form of state.Snapshot.
type Snapshot struct {
	Routes []RouteRef          `yaml:"routes" json:"routes"`
	Toast  *state.OverlayState `yaml:"toast,omitempty" json:"toast,omitempty"`
	Loader *state.OverlayState `yaml:"loader,omitempty" json:"loader,omitempty"`
	Modal  *state.OverlayState `yaml:"modal,omitempty" json:"modal,omitempty"`
}

// RouteRef is a route written either as a bare name or as {name, params}.
type RouteRef state.Route

// UnmarshalYAML accepts a scalar name or a mapping.
func (r *RouteRef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		r.Name = node.Value
		return nil
	}
	var route struct {
		Name   string       `yaml:"name"`
		Params state.Params `yaml:"params"`
	}
	if err := node.Decode(&route); err != nil {
		return err
	}
	r.Name, r.Params = route.Name, route.Params
	return nil
}

// UnmarshalJSON accepts a string name or an object.
func (r *RouteRef) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		r.Name = name
		return nil
	}
	var route struct {
		Name   string       `json:"name"`
		Params state.Params `json:"params"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&route); err != nil {
		return err
	}
	r.Name, r.Params = route.Name, route.Params
	return nil
}

// State converts the script snapshot. It does not validate.
func (s Snapshot) State() state.Snapshot {
	snap := state.Snapshot{Routes: make(state.RouteStack, len(s.Routes))}
	for i, r := range s.Routes {
		snap.Routes[i] = state.Route(r)
	}
	if s.Toast != nil {
		snap.Toast = *s.Toast
	}
	if s.Loader != nil {
		snap.Loader = *s.Loader
	}
	if s.Modal != nil {
		snap.Modal = *s.Modal
	}
	return snap
}

// States converts every snapshot in order.
func (s *Script) States() []state.Snapshot {
	out := make([]state.Snapshot, len(s.Snapshots))
	for i, snap := range s.Snapshots {
		out[i] = snap.State()
	}
	return out
}

// Apply overlays the script's options on base.
func (s *Script) Apply(base reconcile.Options) reconcile.Options {
	if s.Options == nil {
		return base
	}
	if s.Options.SideRoutes != nil {
		base.SideRoutes = reconcile.NewRouteSet(s.Options.SideRoutes...)
	}
	if s.Options.SwipeDisabled != nil {
		base.SwipeDisabled = reconcile.NewRouteSet(s.Options.SwipeDisabled...)
	}
	if s.Options.Menu != nil {
		base.Menu = *s.Options.Menu
	}
	return base
}

// ValidationError locates a problem inside a script.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks that every snapshot is one the engine would accept.
func (s *Script) Validate() error {
	if len(s.Snapshots) == 0 {
		return &ValidationError{Field: "snapshots", Message: "at least one snapshot is required"}
	}
	var errs []error
	for i, snap := range s.Snapshots {
		if err := snap.State().Validate(); err != nil {
			errs = append(errs, &ValidationError{
				Field:   fmt.Sprintf("snapshots[%d].routes", i),
				Message: err.Error(),
			})
		}
	}
	return errors.Join(errs...)
}

// Load reads and validates a script, choosing the format by extension.
func Load(path string) (*Script, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Parse(data, format, path)
}

// Parse decodes and validates a script. filename is used in CUE positions.
func Parse(data []byte, format Format, filename string) (*Script, error) {
	var (
		script *Script
		err    error
	)
	switch format {
	case FormatYAML:
		script, err = parseYAML(data)
	case FormatCUE:
		script, err = parseCUE(data, filename)
	default:
		return nil, fmt.Errorf("unknown script format %q", format)
	}
	if err != nil {
		return nil, err
	}
	if err := script.Validate(); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	return script, nil
}

func parseYAML(data []byte) (*Script, error) {
	var script Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&script); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &script, nil
}
