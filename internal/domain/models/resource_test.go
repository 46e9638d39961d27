package models

import "testing"

func TestResourceValidate(t *testing.T) {
	tests := []struct {
		name    string
		r       Resource
		wantErr bool
	}{
		{"complete", Resource{Subject: "Physics", Type: "Notes", Link: "https://x"}, false},
		{"no subject", Resource{Type: "Notes", Link: "https://x"}, true},
		{"blank type", Resource{Subject: "Physics", Type: "  ", Link: "https://x"}, true},
		{"no link", Resource{Subject: "Physics", Type: "Notes"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResourceDisplayTitle(t *testing.T) {
	if got := (Resource{}).DisplayTitle(); got != "Open Resource" {
		t.Errorf("DisplayTitle() = %q, want %q", got, "Open Resource")
	}
	if got := (Resource{Title: "Week 1"}).DisplayTitle(); got != "Week 1" {
		t.Errorf("DisplayTitle() = %q, want %q", got, "Week 1")
	}
}

func TestSections(t *testing.T) {
	for _, s := range []string{"notes", "lab", "links"} {
		if !IsValidSection(s) {
			t.Errorf("IsValidSection(%q) = false", s)
		}
	}
	if IsValidSection("Notes") {
		t.Error("section names are lower-case only")
	}
	if !IsFileSection(SectionLab) || IsFileSection(SectionLinks) {
		t.Error("IsFileSection: lab holds files, links does not")
	}
}
