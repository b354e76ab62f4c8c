package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
)

// ErrInvalidArguments the model supplied arguments that do not fit the tool input
var ErrInvalidArguments = errors.New("invalid tool arguments")

type ITool interface {
	SetTitle(string)
	Title() string
	SetDescription(string)
	Description() string
	SetStartHook(fn func(context.Context, AnonymousTool, any))
	StartHook() func(context.Context, AnonymousTool, any)
	SetEndHook(fn func(context.Context, AnonymousTool, any, any))
	EndHook() func(context.Context, AnonymousTool, any, any)
	SetErrorHook(fn func(context.Context, AnonymousTool, any, error))
	ErrorHook() func(context.Context, AnonymousTool, any, error)
}

// Tool is a typed capability
type Tool[I any, O any] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}

// AnonymousTool is a tool driven by JSON arguments, as requested by a model
type AnonymousTool interface {
	ITool
	// Parameters is the JSON schema of the tool input
	Parameters() *jsonschema.Schema
	// RunAnonymous decodes arguments, runs the tool and returns its observation as text
	RunAnonymous(ctx context.Context, arguments string) (string, error)
}

var validate = validator.New()

type anonymous[I any, O any] struct {
	Tool[I, O]
	parameters *jsonschema.Schema
}

// Anonymous adapts a typed tool to AnonymousTool
func Anonymous[I any, O any](t Tool[I, O]) AnonymousTool {
	return &anonymous[I, O]{
		Tool:       t,
		parameters: ParametersOf(new(I)),
	}
}

// ParametersOf reflects the JSON schema of v inlined without definitions
func ParametersOf(v any) *jsonschema.Schema {
	r := jsonschema.Reflector{
		ExpandedStruct:            true,
		DoNotReference:            true,
		AllowAdditionalProperties: true,
	}
	s := r.Reflect(v)
	s.Version = ""
	return s
}

func (a *anonymous[I, O]) Parameters() *jsonschema.Schema {
	return a.parameters
}

func (a *anonymous[I, O]) RunAnonymous(ctx context.Context, arguments string) (string, error) {
	in := new(I)
	if strings.TrimSpace(arguments) != "" {
		if err := json.Unmarshal([]byte(arguments), in); err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidArguments, err)
		}
	}
	if err := validate.Struct(in); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}
	if fn := a.StartHook(); fn != nil {
		fn(ctx, a, in)
	}
	out, err := a.Run(ctx, in)
	if err != nil {
		if fn := a.ErrorHook(); fn != nil {
			fn(ctx, a, in, err)
		}
		return "", err
	}
	if fn := a.EndHook(); fn != nil {
		fn(ctx, a, in, out)
	}
	return Observation(out)
}

// Observation renders a tool output as the text returned to the model
func Observation(out any) (string, error) {
	if s, ok := out.(fmt.Stringer); ok {
		return s.String(), nil
	}
	bs, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(bs), nil
}
