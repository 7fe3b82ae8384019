package domain

// Theme is a named palette from the fixed catalog, persisted as a
// presentation preference.
type Theme struct {
	Name   string            `json:"name"`
	Colors map[string]string `json:"colors"`
}

// Themes is the fixed palette catalog. The first entry is the default.
func Themes() []Theme {
	return []Theme{
		{Name: "clair", Colors: map[string]string{"background": "#ffffff", "text": "#1a1a1a", "accent": "#2563eb"}},
		{Name: "sombre", Colors: map[string]string{"background": "#101418", "text": "#e6e6e6", "accent": "#60a5fa"}},
		{Name: "foret", Colors: map[string]string{"background": "#f3f7f2", "text": "#17301c", "accent": "#2f855a"}},
		{Name: "sable", Colors: map[string]string{"background": "#fbf6ee", "text": "#4a3b28", "accent": "#b7791f"}},
	}
}

// ThemeByName looks a palette up in the catalog.
func ThemeByName(name string) (Theme, bool) {
	for _, t := range Themes() {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}
