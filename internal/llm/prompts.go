package llm

import _ "embed"

var (
	//go:embed prompts/resume_v1.txt
	resumePromptV1 string
	//go:embed prompts/resume_v2.txt
	resumePromptV2 string
	//go:embed prompts/jobad_v1.txt
	jobAdPromptV1 string
)

// ResumePromptTemplate returns the resume extraction template and whether the
// version was recognized.
func ResumePromptTemplate(version string) (string, bool) {
	switch version {
	case "v2":
		return resumePromptV2, true
	case "v1":
		return resumePromptV1, true
	default:
		return resumePromptV2, false
	}
}

// JobAdPromptTemplate returns the job posting template and whether the version
// was recognized.
func JobAdPromptTemplate(version string) (string, bool) {
	switch version {
	case "v1":
		return jobAdPromptV1, true
	default:
		return jobAdPromptV1, false
	}
}
