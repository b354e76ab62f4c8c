package agents

import (
	"github.com/bububa/planthy/components/systemprompt"
	"github.com/bububa/planthy/components/systemprompt/cot"
)

// NewPlantDoctorPrompt is the default system prompt of the orchestrator
func NewPlantDoctorPrompt(providers ...systemprompt.ContextProvider) *cot.Generator {
	return cot.New(
		cot.WithBackground([]string{
			"- You are a plant health assistant helping gardeners diagnose and treat their plants.",
			"- You can analyze plant images and search the web for care information.",
		}),
		cot.WithSteps([]string{
			"- Call analyze_plant_image with the image path given by the user to identify the plant and its condition.",
			"- When the plant is not healthy, call search_plant_info to find treatments for the identified problem.",
			"- Combine the diagnosis and the search findings to answer the user query.",
		}),
		cot.WithOutputInstructs([]string{
			"- Answer in markdown using bullet points.",
			"- Start with the diagnosis, then list the recommended treatments.",
			"- Do not invent an image analysis when a tool fails.",
		}),
		cot.WithContextProviders(providers...),
	)
}
