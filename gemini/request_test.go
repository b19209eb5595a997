package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestValidate_Prompt(t *testing.T) {
	tests := []struct {
		name    string
		prompt  string
		wantErr bool
	}{
		{"valid", "do the thing", false},
		{"empty", "", true},
		{"whitespace only", "   \n\t  ", true},
		{"surrounded by whitespace", "  task  ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Request{Prompt: tt.prompt}.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRequestValidate_TimeoutBounds(t *testing.T) {
	tests := []struct {
		name    string
		secs    int
		wantErr bool
	}{
		{"unset", 0, false},
		{"minimum", MinTimeoutSecs, false},
		{"maximum", MaxTimeoutSecs, false},
		{"above maximum", MaxTimeoutSecs + 1, true},
		{"negative", -5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Request{Prompt: "task", TimeoutSecs: tt.secs}.Validate()
			if tt.wantErr {
				assert.ErrorContains(t, err, "timeout_secs")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
