// Package steps renders raw meeting procedure steps into display text using
// a YAML-driven template set.
package steps

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"unigov/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed procedure_steps.yaml
var defaultTemplates []byte

// FieldRef points a template placeholder at a dot-path in the raw step,
// optionally applying transforms ("strip_prefix:X", "strip_suffix:X").
type FieldRef struct {
	Path       string
	Transforms []string
}

// UnmarshalYAML accepts either a bare path string or a mapping with path and
// transform keys (transform may be a string or a list).
func (f *FieldRef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		f.Path = node.Value

		return nil
	}

	var raw struct {
		Path      string    `yaml:"path"`
		Transform yaml.Node `yaml:"transform"`
	}

	if err := node.Decode(&raw); err != nil {
		return err
	}

	f.Path = raw.Path

	switch raw.Transform.Kind {
	case yaml.ScalarNode:
		if raw.Transform.Value != "" {
			f.Transforms = []string{raw.Transform.Value}
		}
	case yaml.SequenceNode:
		if err := raw.Transform.Decode(&f.Transforms); err != nil {
			return err
		}
	}

	return nil
}

// SpeakersRef configures speaker extraction for a variant.
type SpeakersRef struct {
	Path      string `yaml:"path"`
	NameField string `yaml:"name_field"`
}

// Variant is one conditional rendering of a step type.
type Variant struct {
	Condition map[string]string   `yaml:"condition"`
	Template  string              `yaml:"template"`
	Fields    map[string]FieldRef `yaml:"fields"`
	Speakers  *SpeakersRef        `yaml:"speakers"`
}

// variantList accepts either a single variant mapping or a sequence of them.
type variantList []Variant

func (v *variantList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var list []Variant
		if err := node.Decode(&list); err != nil {
			return err
		}

		*v = list

		return nil
	}

	var single Variant
	if err := node.Decode(&single); err != nil {
		return err
	}

	*v = variantList{single}

	return nil
}

// Renderer renders raw procedure steps using a template set keyed by the
// step's PS_type_label.
type Renderer struct {
	templates map[string]variantList
}

// NewRenderer creates a renderer with the embedded default template set.
func NewRenderer() (*Renderer, error) {
	return newRenderer(defaultTemplates)
}

// NewRendererFromFile creates a renderer from a template file, used when the
// config overrides the defaults.
func NewRendererFromFile(path string) (*Renderer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read step templates: %w", err)
	}

	return newRenderer(data)
}

func newRenderer(data []byte) (*Renderer, error) {
	var templates map[string]variantList
	if err := yaml.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse step templates: %w", err)
	}

	return &Renderer{templates: templates}, nil
}

// RenderSteps renders every raw step in order.
func (r *Renderer) RenderSteps(raw []map[string]any) []models.RenderedStep {
	rendered := make([]models.RenderedStep, 0, len(raw))
	for _, step := range raw {
		rendered = append(rendered, r.RenderStep(step))
	}

	return rendered
}

// RenderStep renders one raw step. The first variant whose condition holds
// wins; with no matching variant the step falls back to its title, then its
// type label.
func (r *Renderer) RenderStep(step map[string]any) models.RenderedStep {
	typeLabel := valueString(getField(step, "PS_type_label"))
	seqNo := valueString(getField(step, "seqNo"))
	segment := segmentID(seqNo)

	for _, variant := range r.templates[typeLabel] {
		if len(variant.Condition) > 0 && !checkCondition(step, variant.Condition) {
			continue
		}

		text := renderText(step, variant.Template, variant.Fields)

		var speakers []models.Speaker
		if variant.Speakers != nil {
			speakers = renderSpeakers(step, *variant.Speakers)
		}

		return models.RenderedStep{
			TypeLabel: typeLabel,
			Text:      text,
			Speakers:  speakers,
			SeqNo:     seqNo,
			Segment:   segment,
		}
	}

	fallback := valueString(getField(step, "PS_title"))
	if fallback == "" {
		fallback = typeLabel
	}

	return models.RenderedStep{
		TypeLabel: typeLabel,
		Text:      fallback,
		Speakers:  nil,
		SeqNo:     seqNo,
		Segment:   segment,
	}
}

// getField walks a dot-separated path through nested maps and slices.
// Missing or mistyped segments resolve to nil.
func getField(data any, path string) any {
	value := data

	for _, key := range strings.Split(path, ".") {
		if value == nil {
			return nil
		}

		switch v := value.(type) {
		case []any:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil
			}

			value = v[idx]
		case map[string]any:
			value = v[key]
		default:
			return nil
		}
	}

	return value
}

// valueString converts a field value to text, treating nil and falsy scalars
// as empty.
func valueString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if !v {
			return ""
		}

		return "true"
	case float64:
		if v == 0 {
			return ""
		}
		// seqNo values arrive as JSON numbers; keep the compact form.
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		if v == 0 {
			return ""
		}

		return strconv.Itoa(v)
	default:
		return fmt.Sprint(v)
	}
}

// transformValue applies strip_prefix/strip_suffix transforms in order.
func transformValue(value string, transforms []string) string {
	for _, t := range transforms {
		switch {
		case strings.HasPrefix(t, "strip_prefix:"):
			prefix := strings.TrimPrefix(t, "strip_prefix:")
			value = strings.TrimPrefix(value, prefix)
		case strings.HasPrefix(t, "strip_suffix:"):
			suffix := strings.TrimPrefix(t, "strip_suffix:")
			value = strings.TrimSuffix(value, suffix)
		}
	}

	return value
}

// checkCondition evaluates a variant condition against the raw step. The
// special value "present" requires a non-empty field.
func checkCondition(step map[string]any, condition map[string]string) bool {
	for key, expected := range condition {
		actual := valueString(getField(step, key))

		if expected == "present" {
			if actual == "" {
				return false
			}

			continue
		}

		if actual != expected {
			return false
		}
	}

	return true
}

// renderText substitutes {placeholder} occurrences in the template.
func renderText(step map[string]any, template string, fields map[string]FieldRef) string {
	text := template

	for placeholder, ref := range fields {
		value := valueString(getField(step, ref.Path))
		if value != "" {
			value = transformValue(value, ref.Transforms)
		}

		text = strings.ReplaceAll(text, "{"+placeholder+"}", value)
	}

	return text
}

// renderSpeakers extracts speaker names from the configured list path.
func renderSpeakers(step map[string]any, ref SpeakersRef) []models.Speaker {
	nameField := ref.NameField
	if nameField == "" {
		nameField = "SP_entity.SP_entity"
	}

	raw, ok := getField(step, ref.Path).([]any)
	if !ok {
		return nil
	}

	var speakers []models.Speaker

	for _, item := range raw {
		name := valueString(getField(item, nameField))
		speakers = append(speakers, models.Speaker{Name: name})
	}

	return speakers
}

// segmentID extracts the segment number from a seqNo like "2.01".
func segmentID(seqNo string) int {
	if seqNo == "" {
		return 0
	}

	head := strings.SplitN(seqNo, ".", 2)[0]

	id, err := strconv.Atoi(head)
	if err != nil {
		f, ferr := strconv.ParseFloat(head, 64)
		if ferr != nil {
			return 0
		}

		return int(f)
	}

	return id
}

// GroupBySegment groups rendered steps by their segment ID.
func GroupBySegment(rendered []models.RenderedStep) map[int][]models.RenderedStep {
	groups := make(map[int][]models.RenderedStep)
	for _, step := range rendered {
		groups[step.Segment] = append(groups[step.Segment], step)
	}

	return groups
}
