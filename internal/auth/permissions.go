package auth

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Permissions maps role -> []permission
type Permissions map[string][]string

type permissionsFile struct {
	Roles map[string][]string `yaml:"roles"`
}

// LoadPermissions loads a permissions.yml file and returns a role->permissions map.
func LoadPermissions(path string) (Permissions, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read permissions file: %w", err)
	}
	return ParsePermissions(b)
}

// ParsePermissions decodes the YAML body of a permissions file.
// Role names are normalised to upper case.
func ParsePermissions(b []byte) (Permissions, error) {
	var pf permissionsFile
	if err := yaml.Unmarshal(b, &pf); err != nil {
		return nil, fmt.Errorf("parse permissions: %w", err)
	}
	perms := make(Permissions, len(pf.Roles))
	for role, list := range pf.Roles {
		perms[strings.ToUpper(role)] = list
	}
	return perms, nil
}
