package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuestionsPlainArray(t *testing.T) {
	raw := `[{"id":"q1","question":"How many panels show swirl marks?","type":"number"},
{"id":"q2","question":"Interior condition","type":"select","options":["clean","average","heavily soiled"]}]`

	questions, err := ParseQuestions(raw)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "number", questions[0].Type)
	assert.Equal(t, []string{"clean", "average", "heavily soiled"}, questions[1].Options)
}

func TestParseQuestionsFencedWithProse(t *testing.T) {
	raw := "Here are the questions you asked for:\n```json\n" +
		`[{"id":"q1","question":"Any paint chips?","type":"text"}]` +
		"\n```\nLet me know if you need more."

	questions, err := ParseQuestions(raw)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Any paint chips?", questions[0].Question)
}

func TestParseQuestionsRejectsGarbage(t *testing.T) {
	_, err := ParseQuestions("I cannot help with that.")
	require.Error(t, err)

	_, err = ParseQuestions("[]")
	require.Error(t, err)
}

func TestExtractJSONNestedBrackets(t *testing.T) {
	raw := `result: {"outer": {"inner": [1, 2]}, "note": "brace } in string"} trailing`
	payload, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"outer": {"inner": [1, 2]}, "note": "brace } in string"}`, payload)
}

func TestParseEstimate(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"450", 450},
		{"$450.00", 450},
		{"1,250.50 USD", 1250.50},
		{"The estimated cost is 375 dollars.", 375},
	}
	for _, tc := range cases {
		got, err := ParseEstimate(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}

	_, err := ParseEstimate("no estimate available")
	require.Error(t, err)
}
