package prompts

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPrompts []byte

type Prompts struct {
	System SystemPrompts `yaml:"system"`
	Script ScriptPrompts `yaml:"script"`
}

type SystemPrompts struct {
	Reel string `yaml:"reel"`
}

type ScriptPrompts struct {
	Package string `yaml:"package"`
}

// PackageParams carries every request field into the user instruction.
// All fields are echoed verbatim so the model cannot omit context.
type PackageParams struct {
	Mode          string
	Topic         string
	LengthSeconds int
	Goal          string
	Language      string
	Tone          string
	ReferenceText string
	SourceNotes   string
}

// Load parses the embedded default templates.
func Load() (*Prompts, error) {
	return parse(defaultPrompts)
}

// LoadFrom parses an override file, for tuning prompts without a rebuild.
func LoadFrom(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file: %w", err)
	}
	return &p, nil
}

// RenderSystem returns the system instruction. It takes no parameters:
// the safety and strict-output rules do not vary per request.
func (p *Prompts) RenderSystem() string {
	return p.System.Reel
}

// RenderPackage renders the user instruction for one request. Identical
// params produce byte-identical output.
func (p *Prompts) RenderPackage(params PackageParams) (string, error) {
	return render(p.Script.Package, params)
}

func render(tmpl string, data any) (string, error) {
	t, err := template.New("prompt").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
