package utils

import (
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/picogrid/rover-simulations/pkg/simulation"
)

// Environment variable conventions for parameter overrides
const (
	EnvPrefix      = "ROVER_"
	EnvSkipPrompts = EnvPrefix + "SKIP_PROMPTS"
)

// EnvKey returns the environment variable that overrides a parameter
func EnvKey(name string) string {
	return EnvPrefix + strings.ToUpper(name)
}

// SkipPrompts reports whether parameters must be resolved without asking
func SkipPrompts() bool {
	return os.Getenv(EnvSkipPrompts) == "true"
}

// PromptForParameters resolves every declared parameter. Values in known
// (from flags or a preset) are checked and used as is; the rest come from
// ROVER_* variables, defaults or an interactive prompt.
func PromptForParameters(params []simulation.Parameter, known map[string]interface{}) (map[string]interface{}, error) {
	result := make(map[string]interface{}, len(params)+len(known))
	for k, v := range known {
		result[k] = v
	}

	for _, param := range params {
		if v, ok := result[param.Name]; ok {
			if err := param.Check(v); err != nil {
				return nil, err
			}
			continue
		}
		value, err := resolveParameter(param)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", param.Name, err)
		}
		if value != nil {
			result[param.Name] = value
		}
	}

	return result, nil
}

// resolveParameter returns the value for a single parameter
func resolveParameter(param simulation.Parameter) (interface{}, error) {
	envValue := os.Getenv(EnvKey(param.Name))

	// CI and scripted runs never prompt
	if SkipPrompts() {
		if envValue != "" {
			return param.Parse(envValue)
		}
		if param.Default != nil {
			return param.Default, nil
		}
		if param.Required {
			return nil, fmt.Errorf("required parameter %s not provided and no default available", param.Name)
		}
		return nil, nil
	}

	// An environment value becomes the prompt's default
	if envValue != "" {
		if parsed, err := param.Parse(envValue); err == nil {
			param.Default = parsed
		}
	}

	switch {
	case param.Type == "boolean":
		return promptBoolean(param)
	case param.Type == "string" && len(param.Options) > 0:
		return promptSelect(param)
	default:
		return promptInput(param)
	}
}

// promptInput asks for free text and parses it to the parameter's type.
// Invalid answers are rejected by the prompt itself, so the user can retry.
func promptInput(param simulation.Parameter) (interface{}, error) {
	message := param.Description
	if param.Type == "duration" {
		message += " (e.g., 500ms, 5s, 1m)"
	}

	prompt := &survey.Input{
		Message: message,
		Default: param.DefaultString(),
	}

	validate := func(ans interface{}) error {
		s, _ := ans.(string)
		if s == "" {
			if param.Required {
				return fmt.Errorf("value is required")
			}
			return nil
		}
		_, err := param.Parse(s)
		return err
	}

	var answer string
	if err := survey.AskOne(prompt, &answer, survey.WithValidator(validate)); err != nil {
		return nil, err
	}
	if answer == "" {
		return nil, nil
	}
	return param.Parse(answer)
}

func promptSelect(param simulation.Parameter) (interface{}, error) {
	prompt := &survey.Select{
		Message: param.Description,
		Options: param.Options,
	}
	if def := param.DefaultString(); containsFold(param.Options, def) {
		prompt.Default = matchFold(param.Options, def)
	}

	var answer string
	if err := survey.AskOne(prompt, &answer); err != nil {
		return nil, err
	}
	return answer, nil
}

func promptBoolean(param simulation.Parameter) (interface{}, error) {
	defaultBool := false
	switch v := param.Default.(type) {
	case bool:
		defaultBool = v
	case string:
		defaultBool = v == "true" || v == "yes" || v == "1"
	}

	prompt := &survey.Confirm{
		Message: param.Description,
		Default: defaultBool,
	}

	var answer bool
	if err := survey.AskOne(prompt, &answer); err != nil {
		return nil, err
	}
	return answer, nil
}

func containsFold(options []string, v string) bool {
	return matchFold(options, v) != ""
}

// matchFold returns the option equal to v ignoring case, or ""
func matchFold(options []string, v string) string {
	for _, o := range options {
		if strings.EqualFold(o, v) {
			return o
		}
	}
	return ""
}
