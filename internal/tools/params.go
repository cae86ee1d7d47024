package tools

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

var validate = validator.New()

// ValidationError marks an input that failed decoding or schema validation.
// No side effect has occurred when it is returned.
type ValidationError struct {
	Tool string
	Msg  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid input: %s", e.Tool, e.Msg)
}

// DecodeParams maps the model's loose map[string]any arguments onto a typed
// param struct (json field tags), then runs struct-tag validation. Model
// output is weakly typed, so "3" decodes into an int field.
func DecodeParams[T any](tool string, input map[string]any) (T, error) {
	var params T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &params,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return params, fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(input); err != nil {
		return params, &ValidationError{Tool: tool, Msg: err.Error()}
	}
	if err := validate.Struct(&params); err != nil {
		return params, &ValidationError{Tool: tool, Msg: err.Error()}
	}
	return params, nil
}
