package sources

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/kestrel-editor/kestrel/internal/integration/task"
)

// KestrelSource discovers tasks from .kestrel/tasks.json files.
type KestrelSource struct{}

// NewKestrelSource creates a new Kestrel tasks source.
func NewKestrelSource() *KestrelSource {
	return &KestrelSource{}
}

// Name returns the source name.
func (s *KestrelSource) Name() string {
	return "kestrel"
}

// Patterns returns the file patterns this source handles.
func (s *KestrelSource) Patterns() []string {
	return []string{
		"tasks.json",
	}
}

// Priority returns the source priority (highest for kestrel tasks).
func (s *KestrelSource) Priority() int {
	return 200
}

// KestrelTasksFile represents the structure of a tasks.json file.
type KestrelTasksFile struct {
	Version string          `json:"version"`
	Tasks   []KestrelTask  `json:"tasks"`
	Groups  []KestrelGroup `json:"groups,omitempty"`
	Inputs  []KestrelInput `json:"inputs,omitempty"`
}

// KestrelTask represents a task definition in tasks.json.
type KestrelTask struct {
	Label          string           `json:"label"`
	Type           string           `json:"type"`
	Command        string           `json:"command"`
	Args           []string         `json:"args,omitempty"`
	Options        KestrelOptions  `json:"options,omitempty"`
	Group          KestrelGroupRef `json:"group,omitempty"`
	ProblemMatcher interface{}      `json:"problemMatcher,omitempty"`
	DependsOn      []string         `json:"dependsOn,omitempty"`
	DependsOrder   string           `json:"dependsOrder,omitempty"`
	Detail         string           `json:"detail,omitempty"`
	Presentation   KestrelPresent  `json:"presentation,omitempty"`
	RunOptions     KestrelRunOpts  `json:"runOptions,omitempty"`
	IsBackground   bool             `json:"isBackground,omitempty"`
}

// KestrelOptions contains task execution options.
type KestrelOptions struct {
	Cwd   string            `json:"cwd,omitempty"`
	Env   map[string]string `json:"env,omitempty"`
	Shell KestrelShell     `json:"shell,omitempty"`
}

// KestrelShell configures the shell for task execution.
type KestrelShell struct {
	Executable string   `json:"executable,omitempty"`
	Args       []string `json:"args,omitempty"`
}

// KestrelGroupRef is a reference to a task group.
type KestrelGroupRef struct {
	Kind      string `json:"kind,omitempty"`
	IsDefault bool   `json:"isDefault,omitempty"`
}

// KestrelPresent configures task presentation.
type KestrelPresent struct {
	Reveal           string `json:"reveal,omitempty"`
	Echo             bool   `json:"echo,omitempty"`
	Focus            bool   `json:"focus,omitempty"`
	Panel            string `json:"panel,omitempty"`
	ShowReuseMessage bool   `json:"showReuseMessage,omitempty"`
	Clear            bool   `json:"clear,omitempty"`
}

// KestrelRunOpts configures run behavior.
type KestrelRunOpts struct {
	InstanceLimit     int    `json:"instanceLimit,omitempty"`
	RunOn             string `json:"runOn,omitempty"`
	ReevaluateOnRerun bool   `json:"reevaluateOnRerun,omitempty"`
}

// KestrelGroup defines a task group.
type KestrelGroup struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// KestrelInput defines an input variable.
type KestrelInput struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Default     string   `json:"default,omitempty"`
	Options     []string `json:"options,omitempty"`
}

// Discover finds tasks in a tasks.json file.
func (s *KestrelSource) Discover(ctx context.Context, path string) ([]*task.Task, error) {
	// Only process files in .kestrel directories
	dir := filepath.Dir(path)
	if filepath.Base(dir) != ".kestrel" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tf KestrelTasksFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, err
	}

	if len(tf.Tasks) == 0 {
		return nil, nil
	}

	var tasks []*task.Task
	for _, kt := range tf.Tasks {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		t := &task.Task{
			Name:        kt.Label,
			Description: kt.Detail,
			Type:        s.mapTaskType(kt.Type),
			Group:       s.mapGroup(kt.Group.Kind),
			Command:     kt.Command,
			Args:        kt.Args,
			Cwd:         kt.Options.Cwd,
			Env:         kt.Options.Env,
			DependsOn:   kt.DependsOn,
			IsDefault:   kt.Group.IsDefault,
		}

		// Set problem matcher
		if pm := s.extractProblemMatcher(kt.ProblemMatcher); pm != "" {
			t.ProblemMatcher = pm
		}

		// Set run options
		if kt.RunOptions.InstanceLimit > 0 || kt.RunOptions.RunOn != "" {
			t.RunOptions = &task.RunOptions{
				InstanceLimit:     kt.RunOptions.InstanceLimit,
				RunOn:             kt.RunOptions.RunOn,
				ReevaluateOnRerun: kt.RunOptions.ReevaluateOnRerun,
			}
		}

		tasks = append(tasks, t)
	}

	return tasks, nil
}

// mapTaskType maps a kestrel task type to our TaskType.
func (s *KestrelSource) mapTaskType(t string) task.TaskType {
	switch t {
	case "shell":
		return task.TaskTypeShell
	case "process":
		return task.TaskTypeProcess
	case "npm":
		return task.TaskTypeNPM
	default:
		return task.TaskTypeShell
	}
}

// mapGroup maps a kestrel group kind to our TaskGroup.
func (s *KestrelSource) mapGroup(kind string) task.TaskGroup {
	switch kind {
	case "build":
		return task.TaskGroupBuild
	case "test":
		return task.TaskGroupTest
	case "run":
		return task.TaskGroupRun
	case "clean":
		return task.TaskGroupClean
	case "lint":
		return task.TaskGroupLint
	default:
		return task.TaskGroupOther
	}
}

// extractProblemMatcher extracts the problem matcher name.
func (s *KestrelSource) extractProblemMatcher(pm interface{}) string {
	switch v := pm.(type) {
	case string:
		return v
	case []interface{}:
		if len(v) > 0 {
			if str, ok := v[0].(string); ok {
				return str
			}
		}
	}
	return ""
}

// CreateKestrelTasksFile creates a new tasks.json file with sample tasks.
func CreateKestrelTasksFile(dir string) error {
	tasksDir := filepath.Join(dir, ".kestrel")
	if err := os.MkdirAll(tasksDir, 0755); err != nil {
		return err
	}

	tf := KestrelTasksFile{
		Version: "1.0.0",
		Tasks: []KestrelTask{
			{
				Label:   "Build",
				Type:    "shell",
				Command: "go",
				Args:    []string{"build", "./..."},
				Group: KestrelGroupRef{
					Kind:      "build",
					IsDefault: true,
				},
				ProblemMatcher: "$go",
			},
			{
				Label:   "Test",
				Type:    "shell",
				Command: "go",
				Args:    []string{"test", "./..."},
				Group: KestrelGroupRef{
					Kind: "test",
				},
				ProblemMatcher: "$go",
			},
		},
	}

	data, err := json.MarshalIndent(tf, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(tasksDir, "tasks.json"), data, 0644)
}

// LoadKestrelTasks loads the tasks.json file from a directory.
func LoadKestrelTasks(dir string) (*KestrelTasksFile, error) {
	path := filepath.Join(dir, ".kestrel", "tasks.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tf KestrelTasksFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, err
	}

	return &tf, nil
}

// SaveKestrelTasks saves the tasks.json file to a directory.
func SaveKestrelTasks(dir string, tf *KestrelTasksFile) error {
	tasksDir := filepath.Join(dir, ".kestrel")
	if err := os.MkdirAll(tasksDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(tf, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(tasksDir, "tasks.json"), data, 0644)
}
