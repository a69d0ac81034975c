package wordfilter

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Hola, MUNDO!", []string{"hola", "mundo"}},
		{"  canción   ñandú ", []string{"cancion", "nandu"}},
		{"", nil},
		{"!!!", nil},
	}

	for _, tt := range tests {
		got := Tokenize(tt.in)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMatch(t *testing.T) {
	f := New([]string{"pica", "filho da puta", "discord.gg/", "  ", "Árbol"})

	tests := []struct {
		text  string
		want  string
		match bool
	}{
		{"eso es una PÍCA", "pica", true},
		{"picante", "", false},
		{"seu filho   da puta!", "filho da puta", true},
		{"filho bonito da puta", "", false},
		{"entra a DISCORD.GG/abc", "discord.gg/", true},
		{"discord gg abc", "", false},
		{"un arbol grande", "Árbol", true},
		{"", "", false},
		{"mensaje normal", "", false},
	}

	for _, tt := range tests {
		got, ok := f.Match(tt.text)
		if ok != tt.match || got != tt.want {
			t.Errorf("Match(%q) = (%q, %v), want (%q, %v)", tt.text, got, ok, tt.want, tt.match)
		}
	}
}

func TestNewSkipsBlankEntries(t *testing.T) {
	if got := New([]string{"", " ", "spam"}).Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
	if _, ok := New(nil).Match("anything"); ok {
		t.Error("empty filter matched")
	}
}
