// Package validation contiene reglas de formato para datos del registro.
package validation

import "regexp"

// Reglas de nombre de rol:
// - Solo minúsculas.
// - Empieza y termina con [a-z0-9].
// - En el medio se admite [a-z0-9_.-].
// - Largo 1..64.
//
// Válidos: viewer, admin, read-only, billing.manager
// Inválidos: Admin, "", -lead, trail_, "two words"
var roleNameRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9_\.-]{0,62}[a-z0-9])?$`)

// Client ids generados por el portal: "app_" + 32 hex en minúsculas.
var clientIDRe = regexp.MustCompile(`^app_[0-9a-f]{32}$`)

// ValidRoleName reporta si name es un nombre de rol aceptable.
func ValidRoleName(name string) bool {
	return roleNameRe.MatchString(name)
}

// ValidClientID reporta si id tiene el formato de client id del portal.
func ValidClientID(id string) bool {
	return clientIDRe.MatchString(id)
}
