// Package repository define los puertos de dominio del núcleo OAuth.
//
// El núcleo solo lee del registro de aplicaciones y usuarios (colaboradores
// externos gestionados por el portal) y escribe únicamente authorization codes:
//
//	┌─────────────────────────────────────────────────────┐
//	│      services/oauth (validate, authorize, token)    │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	                        ▼
//	┌─────────────────────────────────────────────────────┐
//	│  ApplicationRepository  UserRepository (read-only)  │
//	│  AuthCodeRepository (read / claim / sweep)          │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	         ┌──────────────┼──────────────┐
//	         ▼              ▼              ▼
//	   store/pg        store/redis     store/memory
//
// Convenciones:
//   - Context siempre es el primer parámetro.
//   - Not found se reporta con ErrNotFound, nunca con (nil, nil).
package repository
