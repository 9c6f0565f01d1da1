package export

import "testing"

func TestFileName(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Andaime Seguro", "andaimeseguro.pdf"},
		{"NR-35: Trabalho em Altura!", "nr35trabalhoemaltura.pdf"},
		{"Atenção à Proteção", "atenoproteo.pdf"},
		{"EPI 2024", "epi2024.pdf"},
		{"!!! ??? ---", "DDS_Seguranca.pdf"},
		{"ção", "DDS_Seguranca.pdf"},
		{"", "DDS_Seguranca.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := FileName(tt.title); got != tt.want {
				t.Errorf("FileName(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}
