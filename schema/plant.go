package schema

import "encoding/json"

// PlantHealthReport is the structured diagnosis extracted from a single plant image
type PlantHealthReport struct {
	Base
	// PlantType e.g. tomato, rose
	PlantType string `json:"plant_type" jsonschema:"title=plant_type,description=Plant type (e.g. tomato or rose)"`
	// Condition e.g. healthy, diseased
	Condition string `json:"condition" jsonschema:"title=condition,description=Condition of the plant (e.g. healthy or diseased)"`
	// Symptoms e.g. yellow spots, wilting
	Symptoms string `json:"symptoms" jsonschema:"title=symptoms,description=Visible symptoms (e.g. yellow spots or wilting)"`
	// Confidence of the diagnosis, conventionally between 0.0 and 1.0
	Confidence float64 `json:"confidence" jsonschema:"title=confidence,description=Confidence score (0.0 to 1.0)"`
}

func (r PlantHealthReport) String() string {
	bs, _ := json.Marshal(r)
	return string(bs)
}
