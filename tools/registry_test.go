package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bububa/planthy/components"
)

type echoInput struct {
	Text string `json:"text" jsonschema:"title=text,description=Text to echo" validate:"required"`
}

type echoOutput struct {
	Text string `json:"text"`
}

type echoTool struct {
	Config
	err error
}

func newEcho(opts ...Option) *echoTool {
	ret := new(echoTool)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("echo")
	}
	return ret
}

func (t *echoTool) Run(_ context.Context, in *echoInput) (*echoOutput, error) {
	if t.err != nil {
		return nil, t.err
	}
	return &echoOutput{Text: strings.ToUpper(in.Text)}, nil
}

func TestRegistryRejectsBadNames(t *testing.T) {
	_, err := NewRegistry(Anonymous[echoInput, echoOutput](newEcho()), Anonymous[echoInput, echoOutput](newEcho()))
	assert.Error(t, err)

	empty := newEcho()
	empty.SetTitle("")
	_, err = NewRegistry(Anonymous[echoInput, echoOutput](empty))
	assert.Error(t, err)
}

func TestRegistryOpenAI(t *testing.T) {
	reg, err := NewRegistry(
		Anonymous[echoInput, echoOutput](newEcho(WithDescription("Echoes text."))),
		Anonymous[echoInput, echoOutput](newEcho(WithTitle("shout"))),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "shout"}, reg.Names())

	defs := reg.OpenAI()
	require.Len(t, defs, 2)
	assert.Equal(t, "echo", defs[0].Function.Name)
	assert.Equal(t, "Echoes text.", defs[0].Function.Description)

	bs, err := json.Marshal(defs[0].Function.Parameters)
	require.NoError(t, err)
	var params map[string]any
	require.NoError(t, json.Unmarshal(bs, &params))
	assert.Equal(t, "object", params["type"])
	assert.Contains(t, params["properties"], "text")
	assert.NotContains(t, params, "$schema")
}

func TestRegistryInvoke(t *testing.T) {
	var events []string
	echo := newEcho(
		WithStartHook(func(context.Context, AnonymousTool, any) { events = append(events, "start") }),
		WithEndHook(func(context.Context, AnonymousTool, any, any) { events = append(events, "end") }),
		WithErrorHook(func(context.Context, AnonymousTool, any, error) { events = append(events, "error") }),
	)
	reg, err := NewRegistry(Anonymous[echoInput, echoOutput](echo))
	require.NoError(t, err)
	ctx := context.Background()

	cb, err := reg.Invoke(ctx, components.ToolCall{ID: "call_1", Name: "echo", Arguments: `{"text":"hi"}`})
	require.NoError(t, err)
	assert.Equal(t, "call_1", cb.ID)
	assert.Equal(t, "echo", cb.Name)
	assert.JSONEq(t, `{"text":"HI"}`, cb.Content)
	assert.Equal(t, []string{"start", "end"}, events)

	_, err = reg.Invoke(ctx, components.ToolCall{Name: "calculator"})
	assert.ErrorIs(t, err, ErrUnknownTool)

	_, err = reg.Invoke(ctx, components.ToolCall{Name: "echo", Arguments: `{"text":`})
	assert.ErrorIs(t, err, ErrInvalidArguments)

	_, err = reg.Invoke(ctx, components.ToolCall{Name: "echo", Arguments: `{}`})
	assert.ErrorIs(t, err, ErrInvalidArguments)

	boom := errors.New("boom")
	echo.err = boom
	events = nil
	_, err = reg.Invoke(ctx, components.ToolCall{Name: "echo", Arguments: `{"text":"hi"}`})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"start", "error"}, events)
}

func TestObservationFallsBackToJSON(t *testing.T) {
	s, err := Observation(components.ToolCallback{Content: "x"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":"x"}`, s)
}

func TestWithLoggerKeepsEarlierHooks(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	var events []string
	echo := newEcho(
		WithStartHook(func(context.Context, AnonymousTool, any) { events = append(events, "start") }),
		WithErrorHook(func(context.Context, AnonymousTool, any, error) { events = append(events, "error") }),
		WithLogger(zap.New(core)),
	)
	reg, err := NewRegistry(Anonymous[echoInput, echoOutput](echo))
	require.NoError(t, err)

	_, err = reg.Invoke(context.Background(), components.ToolCall{Name: "echo", Arguments: `{"text":"hi"}`})
	require.NoError(t, err)
	echo.err = errors.New("boom")
	_, err = reg.Invoke(context.Background(), components.ToolCall{Name: "echo", Arguments: `{"text":"hi"}`})
	require.Error(t, err)

	assert.Equal(t, []string{"start", "start", "error"}, events)
	assert.Equal(t, 2, logs.FilterMessage("tool started").Len())
	assert.Equal(t, 1, logs.FilterMessage("tool finished").Len())
	assert.Equal(t, 1, logs.FilterMessage("tool failed").Len())
}
