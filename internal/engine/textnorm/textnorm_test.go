package textnorm

import "testing"

func TestCollapseSpace(t *testing.T) {
	tests := map[string]string{
		"  a   b\t\nc ": "a b c",
		"":              "",
		"\u00a0x\u00a0": "x",
	}
	for in, want := range tests {
		if got := CollapseSpace(in); got != want {
			t.Errorf("CollapseSpace(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUpperNameKeepsAccents(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Pedro  Brandão", "PEDRO BRANDÃO"},
		{"joão da conceição", "JOÃO DA CONCEIÇÃO"},
		{" ALFREDO RAMOS ", "ALFREDO RAMOS"},
		// NFD input is recomposed before uppercasing.
		{"Jose\u0301", "JOSÉ"},
	}
	for _, tt := range tests {
		if got := UpperName(tt.in); got != tt.want {
			t.Errorf("UpperName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFold(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Ciência de DESPACHO", "ciencia de despacho"},
		{"Intimação   Pessoal", "intimacao pessoal"},
		{"contra-razões", "contra-razoes"},
	}
	for _, tt := range tests {
		if got := Fold(tt.in); got != tt.want {
			t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFoldKeyKeepsAccents(t *testing.T) {
	if FoldKey("Pedro  BRANDÃO") != "pedro brandão" {
		t.Fatalf("unexpected FoldKey: %q", FoldKey("Pedro  BRANDÃO"))
	}
	if FoldKey("BRANDÃO") == FoldKey("BRANDAO") {
		t.Fatal("expected accented and plain names to differ")
	}
}
