package cot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/planthy/components/systemprompt"
)

func TestGenerate(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC) }
	g := New(
		WithBackground([]string{"- You are a plant doctor."}),
		WithSteps([]string{"- Look at the leaves."}),
		WithOutputInstructs([]string{"- Answer in points."}),
		WithContextProviders(systemprompt.NewCurrentDateProvider("Current date", now)),
	)
	expect := "# IDENTITY and PURPOSE\n- You are a plant doctor.\n\n" +
		"# INTERNAL ASSISTANT STEPS\n- Look at the leaves.\n\n" +
		"# OUTPUT INSTRUCTIONS\n- Answer in points.\n\n" +
		"# EXTRA INFORMATION AND CONTEXT\n## Current date\nThe current date in the format YYYY-MM-DD is 2024-05-17"
	assert.Equal(t, expect, g.Generate())
}

func TestGenerateDefaults(t *testing.T) {
	g := New()
	assert.Equal(t, "# IDENTITY and PURPOSE\n- This is a conversation with a helpful and friendly AI assistant.", g.Generate())
}

func TestContextProviders(t *testing.T) {
	g := New()
	date := systemprompt.NewCurrentDateProvider("date", nil)
	g.AddContextProviders(date, systemprompt.NewCurrentDateProvider("date", nil))
	require.Len(t, g.ContextProviders(), 1)
	p, err := g.ContextProvider("date")
	require.NoError(t, err)
	assert.Same(t, date, p)

	g.RemoveContextProviders("date")
	_, err = g.ContextProvider("date")
	assert.Error(t, err)
}
