package validator

import (
	"testing"

	apperrors "github.com/SAP-F-2025/flashcard-service/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	answer := "  Paris "

	tests := []struct {
		name    string
		value   interface{}
		want    string
		wantErr bool
		rule    string
	}{
		{name: "trims surrounding whitespace", value: " paris ", want: "paris"},
		{name: "accepts string pointer", value: &answer, want: "Paris"},
		{name: "empty string is allowed", value: "", want: ""},
		{name: "unicode text is allowed", value: "Ünïcödé – ok", want: "Ünïcödé – ok"},
		{name: "rejects nil pointer", value: (*string)(nil), wantErr: true, rule: "required"},
		{name: "rejects integers", value: 42, wantErr: true, rule: "string"},
		{name: "rejects booleans", value: true, wantErr: true, rule: "string"},
		{name: "rejects NUL", value: "abc\x00def", wantErr: true, rule: "control_chars"},
		{name: "rejects tab", value: "a\tb", wantErr: true, rule: "control_chars"},
		{name: "trims trailing newline", value: "paris\n", want: "paris"},
		{name: "trims leading tab", value: "\tparis ", want: "paris"},
		{name: "rejects embedded newline", value: "par\nis", wantErr: true, rule: "control_chars"},
		{name: "rejects semicolon", value: "a; DROP TABLE cards", wantErr: true, rule: "forbidden_substring"},
		{name: "rejects sql line comment", value: "admin --", wantErr: true, rule: "forbidden_substring"},
		{name: "rejects single quote", value: "it's", wantErr: true, rule: "forbidden_substring"},
		{name: "rejects double quote", value: `say "hi"`, wantErr: true, rule: "forbidden_substring"},
		{name: "rejects block comment open", value: "/* x", wantErr: true, rule: "forbidden_substring"},
		{name: "rejects block comment close", value: "x */", wantErr: true, rule: "forbidden_substring"},
		{name: "rejects xp_ prefix", value: "xp_cmdshell", wantErr: true, rule: "forbidden_substring"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sanitize("user_answer", tt.value)
			if tt.wantErr {
				require.Error(t, err)
				var verrs apperrors.ValidationErrors
				require.ErrorAs(t, err, &verrs)
				require.Len(t, verrs, 1)
				assert.Equal(t, "user_answer", verrs[0].Field)
				assert.Equal(t, tt.rule, verrs[0].Rule)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
