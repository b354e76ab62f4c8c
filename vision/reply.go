package vision

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bububa/planthy/schema"
)

// Prompt is the fixed instruction sent along with the image
const Prompt = `Analyze the plant image and return:
- Plant type (e.g., tomato, rose)
- Condition (e.g., healthy, diseased)
- Symptoms (e.g., yellow spots, wilting)
- Confidence score (0.0 to 1.0)
`

// Reply is the wire shape of the model answer. Fields are pointers so a missing
// key can be told apart from a zero value.
type Reply struct {
	PlantType  *string  `json:"plant_type" jsonschema:"title=plant_type,description=Plant type (e.g. tomato or rose)" validate:"required"`
	Condition  *string  `json:"condition" jsonschema:"title=condition,description=Condition of the plant (e.g. healthy or diseased)" validate:"required"`
	Symptoms   *string  `json:"symptoms" jsonschema:"title=symptoms,description=Visible symptoms (e.g. yellow spots or wilting)" validate:"required"`
	Confidence *float64 `json:"confidence" jsonschema:"title=confidence,description=Confidence score (0.0 to 1.0)"`
}

var validate = validator.New()

// Report validates r and converts it into a PlantHealthReport
func (r *Reply) Report() (*schema.PlantHealthReport, error) {
	if err := validate.Struct(r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaParse, err)
	}
	for name, v := range map[string]*string{"plant_type": r.PlantType, "condition": r.Condition, "symptoms": r.Symptoms} {
		if strings.TrimSpace(*v) == "" {
			return nil, fmt.Errorf("%w: %s is empty", ErrSchemaParse, name)
		}
	}
	if r.Confidence == nil {
		return nil, fmt.Errorf("%w: confidence is missing", ErrSchemaParse)
	}
	if math.IsNaN(*r.Confidence) || math.IsInf(*r.Confidence, 0) {
		return nil, fmt.Errorf("%w: confidence is not finite", ErrSchemaParse)
	}
	return &schema.PlantHealthReport{
		PlantType:  *r.PlantType,
		Condition:  *r.Condition,
		Symptoms:   *r.Symptoms,
		Confidence: *r.Confidence,
	}, nil
}
