package summarizer

import "fmt"

const promptTemplate = `Given the following transcript, provide a concise summary specifically focused on %[1]s. The summary should contain:
- %[2]s

If there is no information related to %[1]s in the transcript, return only "NA".

Only output the summary text or "NA" without any additional formatting.

Transcript: "%[3]s"`

func buildPrompt(c Category, transcript string) string {
	return fmt.Sprintf(promptTemplate, c.Name, c.Guidance, transcript)
}
