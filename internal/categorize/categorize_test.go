package categorize

import (
	"testing"

	"github.com/georgemallousis-design/MyWarehouse/internal/model"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Camera 4MP", "camera 4mp"},
		{"DS-2CD2343G2-I", "ds 2cd2343g2 i"},
		{"  PoE   Switch ", "poe switch"},
		{"κάμερα εξωτερική", "camera"},
		{"Kamera (dome)", "camera dome"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFamily(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"DS-2CD2343G2-I", "DS-2CD2343"},
		{"TL-SG1005P", "TL-SG1005"},
		{"DS-7608NI-K2", "DS-7608"},
		{"Hub 2 Plus", "Hub"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Family(tt.model); got != tt.want {
			t.Errorf("Family(%q) = %q, want %q", tt.model, got, tt.want)
		}
	}
}

func TestGuessCamera(t *testing.T) {
	m := &model.Material{Name: "Camera 4MP", Model: "DS-2CD2343G2-I"}
	res := Guess(m, nil)

	if res.Category != "Camera" {
		t.Errorf("expected category Camera, got %q", res.Category)
	}
	if res.Confidence < 0.6 {
		t.Errorf("expected confidence >= 0.6, got %v", res.Confidence)
	}
	if res.Confidence > 1.0 {
		t.Errorf("confidence must be clamped to 1.0, got %v", res.Confidence)
	}
	if res.Family != "DS-2CD2343" {
		t.Errorf("expected family DS-2CD2343, got %q", res.Family)
	}
}

func TestGuessNoMatch(t *testing.T) {
	m := &model.Material{Name: "Mystery Widget", Model: "XYZ"}
	res := Guess(m, nil)

	if res.Category != "" {
		t.Errorf("expected no category, got %q", res.Category)
	}
	if res.Confidence != 0 {
		t.Errorf("expected confidence 0, got %v", res.Confidence)
	}
	if res.Family != "XYZ" {
		t.Errorf("expected family XYZ, got %q", res.Family)
	}
}

func TestGuessAliases(t *testing.T) {
	m := &model.Material{Name: "Ajax Motion Protect", Model: "MP-01"}
	aliases := map[string]string{"ajax": "Panel"}

	res := Guess(m, aliases)
	// "motion" scores Sensor 0.5; the alias adds only 0.25 to Panel.
	if res.Category != "Sensor" {
		t.Errorf("expected Sensor, got %q", res.Category)
	}

	// Stack aliases until Panel overtakes.
	aliases["mp"] = "Panel"
	aliases["protect"] = "Panel"
	res = Guess(m, aliases)
	if res.Category != "Panel" {
		t.Errorf("expected Panel after alias learning, got %q", res.Category)
	}
	if res.Confidence != 0.75 {
		t.Errorf("expected confidence 0.75, got %v", res.Confidence)
	}
}

func TestGuessDeterministic(t *testing.T) {
	m := &model.Material{
		Name:        "Outdoor Camera",
		Model:       "IPC-HDW2431T",
		Producer:    "Dahua",
		Description: "4MP dome with PIR",
	}
	aliases := map[string]string{"dahua": "Camera", "outdoor": "Camera"}

	first := Guess(m, aliases)
	for i := 0; i < 20; i++ {
		got := Guess(m, aliases)
		if got.Category != first.Category || got.Confidence != first.Confidence || got.Family != first.Family {
			t.Fatalf("run %d differs: got (%q, %v, %q), want (%q, %v, %q)",
				i, got.Category, got.Confidence, got.Family,
				first.Category, first.Confidence, first.Family)
		}
	}
}

func TestGuessTieBreak(t *testing.T) {
	// "dvr" and "xvr" both score DVR; craft a tie between two categories:
	// "siren" (0.5, Siren) vs "dvr" (0.5, DVR). DVR appears earlier in the
	// rule list, so it must win the tie every time.
	m := &model.Material{Name: "DVR siren combo", Model: ""}
	for i := 0; i < 10; i++ {
		res := Guess(m, nil)
		if res.Category != "DVR" {
			t.Fatalf("tie must resolve to DVR (earliest rule), got %q", res.Category)
		}
	}
}
