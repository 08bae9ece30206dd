package ui

import "testing"

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	if names[0] != "Nightfox" || names[1] != "Slate" || names[2] != "Paper" {
		t.Fatalf("ThemeNames() = %v, want [Nightfox Slate Paper]", names)
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Nightfox"); got != "Slate" {
		t.Fatalf("NextTheme(Nightfox) = %q, want Slate", got)
	}
	if got := NextTheme("Paper"); got != "Nightfox" {
		t.Fatalf("NextTheme(Paper) = %q, want Nightfox", got)
	}
	if got := NextTheme("missing"); got != "Nightfox" {
		t.Fatalf("NextTheme(missing) = %q, want Nightfox", got)
	}
}

func TestGetTheme_FallsBack(t *testing.T) {
	if got := GetTheme("missing").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(missing) = %q, want Nightfox", got)
	}
	if got := GetTheme("Paper").Name; got != "Paper" {
		t.Fatalf("GetTheme(Paper) = %q, want Paper", got)
	}
}

func TestThemes_DefineEveryColor(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		colors := map[string]string{
			"Background": th.Background, "Surface": th.Surface, "SurfaceAlt": th.SurfaceAlt,
			"SelectionBg": th.SelectionBg, "CursorBg": th.CursorBg, "DirtyBg": th.DirtyBg,
			"Text": th.Text, "Muted": th.Muted, "Accent": th.Accent, "Danger": th.Danger,
		}
		for field, value := range colors {
			if value == "" {
				t.Fatalf("%s theme has empty %s", name, field)
			}
		}
	}
}
