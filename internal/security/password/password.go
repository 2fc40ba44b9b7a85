// Package password verifica credenciales contra hashes bcrypt o argon2id (PHC).
//
// Los registros heredados usan bcrypt (cost 10); argon2id se acepta para
// usuarios sembrados con herramientas nuevas. El formato se detecta por prefijo.
package password

import (
	"errors"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost coincide con el salt rounds de los registros existentes.
const BcryptCost = 10

var ErrEmptyPassword = errors.New("password: empty password")

// Hash genera un hash bcrypt apto para sembrar usuarios.
func Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compara plain contra hash. Formatos desconocidos devuelven false.
func Verify(plain, hash string) bool {
	if hash == "" {
		return false
	}
	if strings.HasPrefix(hash, argon2Prefix) {
		return verifyArgon2id(plain, hash)
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// DummyCompare ejecuta una comparación bcrypt descartable. Se llama cuando el
// usuario no existe para igualar el tiempo de respuesta del caso "password incorrecto".
func DummyCompare(plain string) {
	dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("devportal-dummy-password"), BcryptCost)
		if err == nil {
			dummyHash = h
		}
	})
	if dummyHash == nil {
		return
	}
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
}
