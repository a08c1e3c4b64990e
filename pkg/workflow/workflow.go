// Package workflow generates the GitHub Actions workflows and the dependabot
// configuration for a project. The files are modelled as typed structs and
// rendered with the YAML encoder, so presets stay composable and the output
// is deterministic enough for golden tests.
package workflow

import (
	"bytes"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Workflow is a single GitHub Actions workflow file.
type Workflow struct {
	Name        string            `yaml:"name"`
	On          Trigger           `yaml:"on"`
	Permissions map[string]string `yaml:"permissions,omitempty"`
	Jobs        map[string]Job    `yaml:"jobs"`
}

// Trigger describes the events that start a workflow.
type Trigger struct {
	Push             *GitTrigger `yaml:"push,omitempty"`
	PullRequest      *GitTrigger `yaml:"pull_request,omitempty"`
	Schedule         []Schedule  `yaml:"schedule,omitempty"`
	WorkflowDispatch *struct{}   `yaml:"workflow_dispatch,omitempty"`
}

// GitTrigger filters push and pull request events. An empty value triggers
// on everything.
type GitTrigger struct {
	Branches []string `yaml:"branches,omitempty"`
	Tags     []string `yaml:"tags,omitempty"`
}

// Schedule is a cron trigger.
type Schedule struct {
	Cron string `yaml:"cron"`
}

// Job is a single workflow job.
type Job struct {
	RunsOn      string            `yaml:"runs-on"`
	Needs       []string          `yaml:"needs,omitempty"`
	Permissions map[string]string `yaml:"permissions,omitempty"`
	Environment *Environment      `yaml:"environment,omitempty"`
	Strategy    *Strategy         `yaml:"strategy,omitempty"`
	Steps       []Step            `yaml:"steps"`
}

// Environment is a GitHub deployment environment reference.
type Environment struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url,omitempty"`
}

// Strategy holds the job matrix.
type Strategy struct {
	Matrix map[string][]string `yaml:"matrix"`
}

// Step is a single job step, either a `uses` action or a `run` script.
type Step struct {
	Name string            `yaml:"name,omitempty"`
	ID   string            `yaml:"id,omitempty"`
	If   string            `yaml:"if,omitempty"`
	Uses string            `yaml:"uses,omitempty"`
	Run  string            `yaml:"run,omitempty"`
	With map[string]string `yaml:"with,omitempty"`
	Env  map[string]string `yaml:"env,omitempty"`
}

// Render marshals the workflow with the two space indentation that is common
// for handwritten workflow files.
func (w Workflow) Render() ([]byte, error) {
	return renderYAML(w)
}

func renderYAML(data any) ([]byte, error) {
	buf := new(bytes.Buffer)

	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)

	err := enc.Encode(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render YAML")
	}

	err = enc.Close()
	if err != nil {
		return nil, errors.Wrap(err, "failed to render YAML")
	}

	return buf.Bytes(), nil
}
