package model

import "testing"

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role     string
		minimum  string
		expected bool
	}{
		{RoleAdmin1, RoleAdmin1, true},
		{RoleAdmin1, RoleViewer, true},
		{RoleAdmin2, RoleAdmin1, false},
		{RoleAdmin2, RoleAdmin3, true},
		{RoleOperator, RoleOperator, true},
		{RoleOperator, RoleAdmin3, false},
		{RoleViewer, RoleOperator, false},
		// Unknown roles fail-closed.
		{"unknown", RoleViewer, false},
		{RoleAdmin1, "unknown", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got := RoleAtLeast(tt.role, tt.minimum)
		if got != tt.expected {
			t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.minimum, got, tt.expected)
		}
	}
}

func TestCanManage(t *testing.T) {
	tests := []struct {
		actor    string
		target   string
		expected bool
	}{
		// admin1 manages every level, its own included.
		{RoleAdmin1, RoleAdmin1, true},
		{RoleAdmin1, RoleViewer, true},
		// Everyone else only manages strictly lower levels.
		{RoleAdmin2, RoleAdmin2, false},
		{RoleAdmin2, RoleAdmin1, false},
		{RoleAdmin2, RoleAdmin3, true},
		{RoleAdmin3, RoleOperator, true},
		{RoleAdmin3, RoleAdmin3, false},
		{RoleOperator, RoleViewer, true},
		{RoleViewer, RoleViewer, false},
		// Unknown roles fail-closed.
		{"unknown", RoleViewer, false},
		{RoleAdmin1, "unknown", false},
	}

	for _, tt := range tests {
		got := CanManage(tt.actor, tt.target)
		if got != tt.expected {
			t.Errorf("CanManage(%q, %q) = %v, want %v", tt.actor, tt.target, got, tt.expected)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}
