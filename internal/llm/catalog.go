package llm

// ModelMeta is human-readable metadata for known model ids, shown in
// model pickers. Unknown ids fall back to the bare id.
type ModelMeta struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var knownModels = map[string]ModelMeta{
	"gemini-2.0-flash":      {Name: "Gemini 2.0 Flash", Description: "Fast, efficient model for quick analysis"},
	"gemini-2.0-flash-lite": {Name: "Gemini 2.0 Flash Lite", Description: "Lightweight version for basic analysis"},
	"gemini-1.5-flash":      {Name: "Gemini 1.5 Flash", Description: "Balanced performance model"},
	"gemini-1.5-flash-8b":   {Name: "Gemini 1.5 Flash 8B", Description: "Compact model for simple analysis"},
	"gpt-4o-mini":           {Name: "GPT-4o mini", Description: "Fast, affordable model for quick analysis"},
	"gpt-4o":                {Name: "GPT-4o", Description: "Full-size model for detailed analysis"},
	"gpt-4-turbo":           {Name: "GPT-4 Turbo", Description: "Previous-generation full-size model"},
}

// Meta returns display metadata for a model id.
func Meta(id string) ModelMeta {
	if meta, ok := knownModels[id]; ok {
		return meta
	}
	return ModelMeta{Name: id}
}
