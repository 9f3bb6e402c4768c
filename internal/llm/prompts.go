package llm

// ExtractionPrompt instructs the model to pull every field it can find out
// of an identity document and answer in a fixed JSON shape.
const ExtractionPrompt = `Analyze this document and extract all possible information.
Return the data in the following JSON format:
{
    "fields": [
        {
            "field_name": "full_name",
            "field_value": "JOHN DOE"
        },
        {
            "field_name": "date_of_birth",
            "field_value": "1990-01-01"
        }
    ],
    "document_type": "choose from passport, visa, driver's license, employer info, education, etc."
}`

// CategorizationPromptPrefix and CategorizationPromptSuffix wrap the caller's
// field mapping (rendered as indented JSON) into the taxonomy prompt.
const CategorizationPromptPrefix = `Analyze these fields and values and categorize them into logical groups.
Fields and values to analyze:
`

const CategorizationPromptSuffix = `

Categorize them into these groups (only include relevant groups that have matching fields):
- Personal Information (name, age, contact, etc.)
- Education (degrees, schools, etc.)
- Employment (work history, position, etc.)
- Financial (income, accounts, etc.)
- Identity Documents (passport numbers, IDs, etc.)
- Other (anything that doesn't fit above)

Return the categorized fields in this exact JSON format:
{
    "categories": {
        "Personal Information": { "field_name": "value" },
        "Education": { "field_name": "value" }
    }
}
Only include categories that have matching fields. Format field names in a human-readable way.`

// CategorizationPrompt composes the full taxonomy prompt around the field mapping.
func CategorizationPrompt(fieldsJSON string) string {
	return CategorizationPromptPrefix + fieldsJSON + CategorizationPromptSuffix
}
