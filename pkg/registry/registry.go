// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

var ErrActivityNotFound = errors.New("activity not found")

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &reg, nil
}

// Save stamps LastUpdated and writes the registry as indented JSON.
func (r *ActivityRegistry) Save(path string, now time.Time) error {
	r.LastUpdated = now.UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func (r *ActivityRegistry) Find(id string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].ID == id {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

func (r *ActivityRegistry) Add(a Activity) error {
	if _, exists := r.Find(a.ID); exists {
		return fmt.Errorf("activity with ID %s already exists", a.ID)
	}
	r.Activities = append(r.Activities, a)
	return nil
}

// Set updates one scalar field of an activity.
func (r *ActivityRegistry) Set(id, field, value string) error {
	a, ok := r.Find(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrActivityNotFound, id)
	}
	switch field {
	case "status":
		if !slices.Contains(ImplementationStatuses, value) {
			return fmt.Errorf("invalid status %q", value)
		}
		a.ImplementationStatus = value
	case "version":
		a.Version = value
	case "displayName":
		a.DisplayName = value
	case "description":
		a.Description = value
	case "category":
		a.Category = value
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
		a.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil || retries < 0 {
			return fmt.Errorf("invalid retries value %q", value)
		}
		a.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
	return nil
}

// Known is what the running module can actually serve.
type Known struct {
	TaskTypes  []string
	ErrorCodes []string
}

// Validate reports every problem it finds, joined. Activities must map to
// a known task type and only name known error codes; each known task type
// must be registered.
func (r *ActivityRegistry) Validate(known Known) error {
	if len(r.Activities) == 0 {
		return errors.New("registry contains no activities")
	}

	var problems []error
	ids := map[string]bool{}
	registered := map[string]bool{}
	for _, a := range r.Activities {
		if a.ID == "" {
			problems = append(problems, errors.New("activity missing required field: id"))
			continue
		}
		if ids[a.ID] {
			problems = append(problems, fmt.Errorf("duplicate activity ID: %s", a.ID))
		}
		ids[a.ID] = true

		if a.DisplayName == "" {
			problems = append(problems, fmt.Errorf("activity %s missing required field: displayName", a.ID))
		}
		if a.Category == "" {
			problems = append(problems, fmt.Errorf("activity %s missing required field: category", a.ID))
		}
		switch {
		case a.TaskType == "":
			problems = append(problems, fmt.Errorf("activity %s missing required field: taskType", a.ID))
		case registered[a.TaskType]:
			problems = append(problems, fmt.Errorf("task type %s registered twice", a.TaskType))
		case !slices.Contains(known.TaskTypes, a.TaskType):
			problems = append(problems, fmt.Errorf("activity %s: unknown task type %s", a.ID, a.TaskType))
		}
		registered[a.TaskType] = true

		if a.Timeout != "" {
			if _, err := time.ParseDuration(a.Timeout); err != nil {
				problems = append(problems, fmt.Errorf("activity %s: invalid timeout %q", a.ID, a.Timeout))
			}
		}
		if a.Retries < 0 {
			problems = append(problems, fmt.Errorf("activity %s: retries must not be negative", a.ID))
		}
		for _, code := range a.ErrorCodes {
			if !slices.Contains(known.ErrorCodes, code) {
				problems = append(problems, fmt.Errorf("activity %s: unknown error code %s", a.ID, code))
			}
		}
		if len(a.InputSchema) > 0 {
			if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(a.InputSchema)); err != nil {
				problems = append(problems, fmt.Errorf("activity %s: input schema: %w", a.ID, err))
			}
		}
	}

	for _, tt := range known.TaskTypes {
		if !registered[tt] {
			problems = append(problems, fmt.Errorf("task type %s has no activity", tt))
		}
	}
	return errors.Join(problems...)
}
