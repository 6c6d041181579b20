package adapters

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"
)

//go:embed best_practices.yaml
var bestPracticesData []byte

// BestPractice is one catalog entry of curated Azure Terraform guidance.
type BestPractice struct {
	Action string   `yaml:"action"`
	Topic  string   `yaml:"topic"`
	Title  string   `yaml:"title"`
	Items  []string `yaml:"items"`
}

type bestPracticeCatalog struct {
	Practices []BestPractice `yaml:"practices"`
}

// BestPracticesAdapter serves the embedded guidance catalog.
type BestPracticesAdapter struct {
	practices []BestPractice
}

func NewBestPracticesAdapter() (BestPracticesAdapter, error) {
	var catalog bestPracticeCatalog
	if err := yaml.Unmarshal(bestPracticesData, &catalog); err != nil {
		return BestPracticesAdapter{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("embedded best practices catalog is invalid").
			WithCause(err)
	}
	return BestPracticesAdapter{practices: catalog.Practices}, nil
}

// Actions lists the distinct actions the catalog covers.
func (a BestPracticesAdapter) Actions() []string {
	seen := map[string]struct{}{}
	var actions []string
	for _, practice := range a.practices {
		if _, ok := seen[practice.Action]; ok {
			continue
		}
		seen[practice.Action] = struct{}{}
		actions = append(actions, practice.Action)
	}
	return actions
}

// Query renders the practices matching action and topic. An empty topic
// matches everything under the action; no match reports the available
// actions instead of an error.
func (a BestPracticesAdapter) Query(action, topic string) string {
	action = strings.ToLower(strings.TrimSpace(action))
	topic = strings.ToLower(strings.TrimSpace(topic))

	var b strings.Builder
	for _, practice := range a.practices {
		if practice.Action != action {
			continue
		}
		if topic != "" && topic != "general" && practice.Topic != topic {
			continue
		}
		fmt.Fprintf(&b, "## %s\n", practice.Title)
		for _, item := range practice.Items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return fmt.Sprintf("No best practices recorded for action %q. Available actions: %s",
			action, strings.Join(a.Actions(), ", "))
	}
	return strings.TrimSpace(b.String()) + "\n"
}
