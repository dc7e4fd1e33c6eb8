package analyzer

import "fmt"

// BuildPrompt embeds the verbatim log and the analysis instructions in
// the fixed prompt template. Pure templating, no branching.
func BuildPrompt(logText, instructions string) string {
	return fmt.Sprintf(`You are a cybersecurity expert analyzing network logs.

%s

Here is the log data:
`+"```"+`
%s
`+"```"+`

Provide a detailed analysis including:
1. Type of attack or anomaly detected
2. Severity assessment
3. Technical explanation of what's happening
4. Recommended mitigations
5. Additional context that might be helpful

Format your response in markdown for readability.`, instructions, logText)
}
