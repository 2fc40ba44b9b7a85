// Command devportalctl agrupa tareas operativas: migraciones, limpieza de
// codes vencidos y utilidades para desarrolladores de apps cliente.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
