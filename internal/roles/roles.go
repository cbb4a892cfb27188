// Package roles defines the MindSpace account roles and what each may
// do against the API. A shared family device can hold state for
// several roles at once; history partitioning keys off these values.
package roles

import "strings"

const (
	Student      = "student"
	Parent       = "parent"
	Psychologist = "psychologist"
)

// Simple default policy. Expand as needed.
var rolePermissions = map[string][]string{
	Student: {
		"test:view",
		"test-response:submit",
		"test-response:view-own",
	},
	Parent: {
		"test:view",
		"test-response:submit",
		"test-response:view-own",
	},
	Psychologist: {
		"test:view",
		"test-response:view-all",
	},
}

// Normalize lower-cases and trims a stored role string. Older app
// builds persisted the role JSON-encoded, so surrounding double quotes
// are stripped as well.
func Normalize(role string) string {
	role = strings.TrimSpace(role)
	role = strings.Trim(role, `"`)
	return strings.ToLower(role)
}

func IsValid(role string) bool {
	_, ok := rolePermissions[Normalize(role)]
	return ok
}

func Can(role, perm string) bool {
	for _, p := range rolePermissions[Normalize(role)] {
		if p == perm || p == "*" {
			return true
		}
	}
	return false
}
