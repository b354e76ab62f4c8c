package cot

import (
	"fmt"
	"strings"

	"github.com/bububa/planthy/components/systemprompt"
)

const (
	identitySection = "IDENTITY and PURPOSE"
	stepsSection    = "INTERNAL ASSISTANT STEPS"
	outputSection   = "OUTPUT INSTRUCTIONS"
)

// Generator is Chain-of-Thought system prompt generator
type Generator struct {
	systemprompt.BaseGenerator
	background      []string
	steps           []string
	outputInstructs []string
}

var _ systemprompt.Generator = (*Generator)(nil)

// New returns a new system prompt Generator
func New(options ...Option) *Generator {
	ret := new(Generator)
	for _, opt := range options {
		opt(ret)
	}
	if len(ret.background) == 0 {
		ret.background = []string{"- This is a conversation with a helpful and friendly AI assistant."}
	}
	return ret
}

func (g *Generator) Generate() string {
	sections := []struct {
		title   string
		content []string
	}{
		{identitySection, g.background},
		{stepsSection, g.steps},
		{outputSection, g.outputInstructs},
	}
	var promptParts []string
	for _, section := range sections {
		if len(section.content) == 0 {
			continue
		}
		promptParts = append(promptParts, fmt.Sprintf("# %s", section.title))
		promptParts = append(promptParts, section.content...)
		promptParts = append(promptParts, "")
	}
	if providers := g.ContextProviders(); len(providers) > 0 {
		promptParts = append(promptParts, "# EXTRA INFORMATION AND CONTEXT")
		for _, provider := range providers {
			if info := provider.Info(); info != "" {
				promptParts = append(promptParts, fmt.Sprintf("## %s", provider.Title()))
				promptParts = append(promptParts, info)
				promptParts = append(promptParts, "")
			}
		}
	}
	return strings.TrimSpace(strings.Join(promptParts, "\n"))
}
