package ai

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare object", in: `{"a":1}`, want: `{"a":1}`},
		{name: "surrounding whitespace", in: "\n  {\"a\":1}  \n", want: `{"a":1}`},
		{name: "json fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "plain fence", in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "prose wrapped", in: "Aqui está:\n{\"a\":{\"b\":2}} obrigado", want: `{"a":{"b":2}}`},
		{name: "brace inside string", in: `ok {"a":"}{"} tail`, want: `{"a":"}{"}`},
		{name: "escaped quote inside string", in: `x {"a":"say \"}\""} y`, want: `{"a":"say \"}\""}`},
		{name: "empty", in: "   ", want: ""},
		{name: "no object", in: "nothing here", want: "nothing here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.in); got != tt.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
