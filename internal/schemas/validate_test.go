package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_InterviewCompleted(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"full payload", `{"temp_username":"abc@placeholder.ai","technical_score":8.5,"behavioural_score":7,"report_url":"https://r/1","completed_at":"2024-05-01T10:00:00Z"}`, false},
		{"nullable fields", `{"temp_username":"abc@placeholder.ai","technical_score":null,"report_url":null}`, false},
		{"username only", `{"temp_username":"abc@placeholder.ai"}`, false},
		{"missing username", `{"technical_score":8}`, true},
		{"empty username", `{"temp_username":""}`, true},
		{"score as string", `{"temp_username":"a","technical_score":"high"}`, true},
		{"not an object", `[1,2]`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(InterviewCompleted, []byte(tt.doc))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
			assert.NotEmpty(t, ve.Errors)
			assert.NotEmpty(t, ve.Summary())
		})
	}
}

func TestValidate_MissingFieldMessage(t *testing.T) {
	err := Validate(InterviewCompleted, []byte(`{}`))
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Summary(), "temp_username")
}

func TestValidate_Job(t *testing.T) {
	assert.NoError(t, Validate(Job, []byte(`{"title":"Backend","skills":["go"],"questions":[]}`)))
	assert.Error(t, Validate(Job, []byte(`{"title":"Backend","skills":"go"}`)))
	assert.Error(t, Validate(Job, []byte(`{"description":"no title"}`)))
}

func TestValidate_MalformedJSON(t *testing.T) {
	err := Validate(InterviewCompleted, []byte(`{not json`))
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "malformed JSON", ve.Errors[0].Message)
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("nope", []byte(`{}`))
	var le *SchemaLoadError
	require.True(t, errors.As(err, &le))
	assert.Contains(t, le.Error(), "unknown schema")
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type":"object","required":["a"]}`
	assert.NoError(t, ValidateJSONString(schema, `{"a":1}`))
	assert.Error(t, ValidateJSONString(schema, `{}`))

	var le *SchemaLoadError
	require.True(t, errors.As(ValidateJSONString(`{"type":12}`, `{}`), &le))
}
