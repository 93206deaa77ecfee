package auth

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPermissions_Success(t *testing.T) {
	permFile := filepath.Join(t.TempDir(), "permissions.yml")
	content := `roles:
  admin:
    - clinic:create
    - clinic:view
    - clinic:delete
  PATIENT:
    - appointment:book
    - profile:self
`
	if err := os.WriteFile(permFile, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write test permissions file: %v", err)
	}

	perms, err := LoadPermissions(permFile)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	adminPerms, exists := perms["ADMIN"]
	if !exists {
		t.Fatal("Expected lowercase role to be stored as ADMIN")
	}
	if len(adminPerms) != 3 || !contains(adminPerms, "clinic:create") {
		t.Errorf("Unexpected ADMIN permissions %v", adminPerms)
	}
	if len(perms["PATIENT"]) != 2 {
		t.Errorf("Expected 2 permissions for PATIENT, got %d", len(perms["PATIENT"]))
	}
}

func TestLoadPermissions_FileNotFound(t *testing.T) {
	perms, err := LoadPermissions("/nonexistent/path/permissions.yml")
	if err == nil {
		t.Error("Expected error for non-existent file, got nil")
	}
	if perms != nil {
		t.Error("Expected nil permissions, got non-nil")
	}
}

func TestParsePermissions_InvalidYAML(t *testing.T) {
	content := `roles:
  ADMIN:
    - clinic:create
    invalid yaml structure here
      - no proper indentation
`
	perms, err := ParsePermissions([]byte(content))
	if err == nil {
		t.Error("Expected error for invalid YAML, got nil")
	}
	if perms != nil {
		t.Error("Expected nil permissions for invalid YAML")
	}
}

func TestParsePermissions_Empty(t *testing.T) {
	perms, err := ParsePermissions(nil)
	if err != nil {
		t.Errorf("Expected no error for empty input, got: %v", err)
	}
	if len(perms) != 0 {
		t.Errorf("Expected 0 roles, got %d", len(perms))
	}
}

// The shipped permissions.yml must give every role what its routes require.
func TestLoadPermissions_RealFile(t *testing.T) {
	permFile := "../../permissions.yml"
	if _, err := os.Stat(permFile); os.IsNotExist(err) {
		t.Skip("permissions.yml not found")
	}

	perms, err := LoadPermissions(permFile)
	if err != nil {
		t.Fatalf("Expected to load real permissions.yml, got error: %v", err)
	}

	for _, role := range []string{RoleAdmin, RoleClinicStaff, RoleProvider, RolePatient} {
		if _, exists := perms[role]; !exists {
			t.Errorf("Expected role '%s' to exist in permissions.yml", role)
		}
	}

	for _, perm := range []string{"clinic:create", "clinic:delete", "report:view", "inventory:adjust"} {
		if !contains(perms[RoleAdmin], perm) {
			t.Errorf("Expected ADMIN to have permission '%s'", perm)
		}
	}

	patient := perms[RolePatient]
	for _, perm := range []string{"appointment:book", "appointment:cancel", "profile:self"} {
		if !contains(patient, perm) {
			t.Errorf("Expected PATIENT to have permission '%s'", perm)
		}
	}
	for _, perm := range []string{"appointment:manage", "report:view", "inventory:view", "clinic:create"} {
		if contains(patient, perm) {
			t.Errorf("PATIENT should not have '%s'", perm)
		}
	}
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
