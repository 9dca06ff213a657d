package auth

import "github.com/phrazzld/tasks-api/internal/domain"

// Permits reports whether a principal holding actual may access a route
// requiring minimum. Admin passes every check; an unrecognized actual role
// passes none.
func Permits(minimum, actual domain.Role) bool {
	if actual == domain.TopRole() {
		return true
	}
	have, ok := actual.Rank()
	if !ok {
		return false
	}
	need, ok := minimum.Rank()
	if !ok {
		return false
	}
	return have >= need
}
