// internal/app/system/skills/skills.go
// Package skills holds the fixed skill taxonomy.
//
// Membership is the only validation the exchange core performs on skill
// names: a skill either appears in the allow-list or it does not. The
// list is ordered for stable presentation in pickers.
package skills

import "strings"

var taxonomy = []string{
	"JavaScript", "Python", "Java", "C++", "C#", "PHP", "Ruby", "Go", "Rust", "TypeScript",
	"HTML", "CSS", "React", "Vue", "Angular", "Node.js", "Express", "MongoDB", "SQL", "Git",
	"Kotlin", "Swift", "R", "MATLAB", "Scala", "Perl", "Dart", "Lua", "Bash", "PowerShell",
	"GraphQL", "Next.js", "Nuxt", "Django", "Flask", "ASP.NET",
}

var index = func() map[string]struct{} {
	m := make(map[string]struct{}, len(taxonomy))
	for _, s := range taxonomy {
		m[s] = struct{}{}
	}
	return m
}()

// All returns the full allow-list in presentation order.
func All() []string {
	out := make([]string, len(taxonomy))
	copy(out, taxonomy)
	return out
}

// IsValid reports whether name (after trimming) is in the taxonomy.
// Pure and side-effect-free; safe to call from any goroutine.
func IsValid(name string) bool {
	_, ok := index[strings.TrimSpace(name)]
	return ok
}
