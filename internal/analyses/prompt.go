package analyses

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/analysis.txt
	analysisTemplate string
	//go:embed prompts/repair.txt
	repairTemplate string
)

// BuildPrompt renders the analysis instruction for persona and language.
// A persona missing from table is named verbatim without focus hints.
func BuildPrompt(table *PersonaTable, persona, language string) string {
	focus := ""
	if p, ok := table.Lookup(persona); ok {
		persona = p.Name
		if len(p.Focus) > 0 {
			focus = "Focus especially on: " + strings.Join(p.Focus, "; ") + ".\n"
		}
	}
	replacer := strings.NewReplacer(
		"{{PERSONA}}", persona,
		"{{PERSONA_FOCUS}}", focus,
		"{{LANGUAGE}}", language,
	)
	return replacer.Replace(analysisTemplate)
}

func buildRepairPrompt(raw string, problem error) string {
	replacer := strings.NewReplacer(
		"{{PROBLEM}}", problem.Error(),
		"{{RAW}}", raw,
	)
	return replacer.Replace(repairTemplate)
}
