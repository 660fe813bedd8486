package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"mca-workers/internal/common/errors"
	"mca-workers/internal/workers"
	"mca-workers/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

func knownActivities() registry.Known {
	codes := make([]string, 0, len(errors.BPMNErrorMapping))
	for _, code := range errors.BPMNErrorMapping {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return registry.Known{TaskTypes: workers.TaskTypes(), ErrorCodes: codes}
}

func newRegistryCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Maintain the activity registry",
	}
	cmd.PersistentFlags().StringVarP(&path, "path", "p", defaultRegistryPath, "Path to registry file")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "validate",
			Short: "Check every activity maps to a task type this module serves",
			RunE: func(cmd *cobra.Command, _ []string) error {
				reg, err := registry.LoadRegistry(path)
				if err != nil {
					return fmt.Errorf("failed to load registry: %w", err)
				}
				if err := reg.Validate(knownActivities()); err != nil {
					return fmt.Errorf("registry validation failed:\n%w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
				return nil
			},
		},
		&cobra.Command{
			Use:   "sync",
			Short: "Refresh input schemas from code and add missing task types",
			RunE: func(cmd *cobra.Command, _ []string) error {
				reg, err := registry.LoadRegistry(path)
				if err != nil {
					return fmt.Errorf("failed to load registry: %w", err)
				}
				added, err := syncRegistry(reg)
				if err != nil {
					return err
				}
				if err := reg.Save(path, time.Now()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Synced %d activities, %d added.\n", len(reg.Activities), added)
				return nil
			},
		},
		newRegistrySetCmd(&path),
	)
	return cmd
}

func newRegistrySetCmd(path *string) *cobra.Command {
	var id, field, value string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update one field of an activity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Set(id, field, value); err != nil {
				return err
			}
			if err := reg.Save(*path, time.Now()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s, field %s to %s\n", id, field, value)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Activity ID (required)")
	cmd.Flags().StringVar(&field, "field", "", "status, version, displayName, description, category, timeout or retries (required)")
	cmd.Flags().StringVar(&value, "value", "", "New value (required)")
	for _, name := range []string{"id", "field", "value"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}
	return cmd
}

// syncRegistry overwrites each activity's input schema with the one the
// worker enforces and appends a planned activity for unregistered task types.
func syncRegistry(reg *registry.ActivityRegistry) (added int, err error) {
	byTaskType := map[string]*registry.Activity{}
	for i := range reg.Activities {
		byTaskType[reg.Activities[i].TaskType] = &reg.Activities[i]
	}

	for _, task := range workers.Tasks {
		schema, err := schemaMap(task)
		if err != nil {
			return added, err
		}
		if a, ok := byTaskType[task.TaskType]; ok {
			a.InputSchema = schema
			continue
		}
		reg.Activities = append(reg.Activities, registry.Activity{
			ID:                   task.TaskType,
			DisplayName:          task.TaskType,
			Category:             task.Category,
			Version:              "1.0.0",
			TaskType:             task.TaskType,
			ImplementationStatus: "planned",
			InputSchema:          schema,
			ErrorCodes:           []string{string(errors.ErrCodeInputValidationFailed)},
			Timeout:              "30s",
		})
		added++
	}
	return added, nil
}

func schemaMap(task workers.Task) (map[string]interface{}, error) {
	raw, err := json.Marshal(task.InputSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal %s schema: %w", task.TaskType, err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode %s schema: %w", task.TaskType, err)
	}
	return m, nil
}
