package blobstore_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/robbplo/file-storage-api/blobstore"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty string", input: "", expected: ""},
		{name: "already safe", input: "report-2026", expected: "report-2026"},
		{name: "surrounding whitespace", input: "  logo  ", expected: "logo"},
		{name: "spaces to hyphens", input: "annual report", expected: "annual-report"},
		{name: "underscores to hyphens", input: "annual_report_v2", expected: "annual-report-v2"},
		{name: "uppercase lowered", input: "Annual Report", expected: "annual-report"},
		{name: "camel case flattened, not split", input: "MyFile", expected: "myfile"},
		{name: "separator runs collapsed", input: "a  _ - b", expected: "a-b"},
		{name: "illegal characters dropped", input: "inv/oice#42.pdf", expected: "invoice42pdf"},
		{name: "leading and trailing hyphens trimmed", input: "--draft--", expected: "draft"},
		{name: "only illegal characters", input: "###", expected: ""},
		{name: "unicode dropped", input: "résumé", expected: "rsum"},
		{name: "mixed", input: "  My Résumé_final (v3).PDF ", expected: "my-rsum-final-v3pdf"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, blobstore.Sanitize(tc.input))
		})
	}
}

func TestSanitize_Totality(t *testing.T) {
	// The output is either empty or matches the storage-safe shape,
	// whatever the input.
	shape := regexp.MustCompile(`^[0-9a-z]([0-9a-z-]*[0-9a-z])?$`)

	inputs := []string{
		"", " ", "-", "_", "---", "a", "A", "0", "\t\n",
		"!@#$%^&*()", "ファイル", "file\x00name", "a b c d e",
		"verylongname-with_many Separators AND UPPER",
		"ends with hyphen-", "-starts with hyphen",
	}

	for _, input := range inputs {
		output := blobstore.Sanitize(input)
		if output == "" {
			continue
		}
		assert.Regexp(t, shape, output, "input %q produced %q", input, output)
	}
}
