// Package schemas embeds the JSON Schema documents shipped with cvmaker.
package schemas

import _ "embed"

// ResumeData is the JSON Schema of a serialized ResumeData document.
//
//go:embed resume_data.schema.json
var ResumeData string
