package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/devportal/internal/jobs"
	"github.com/dropDatabas3/devportal/internal/security/password"
	"github.com/dropDatabas3/devportal/internal/security/pkce"
	"github.com/dropDatabas3/devportal/internal/store/pg"
	migrations "github.com/dropDatabas3/devportal/migrations/postgres"
)

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "devportalctl",
		Short:         "Herramientas operativas de DevPortal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(),
		newSweepCmd(),
		newPKCECmd(),
		newHashPasswordCmd(),
	)
	return root
}

func connect(ctx context.Context, dsn string) (*pg.Store, error) {
	if dsn == "" {
		return nil, errors.New("--dsn es requerido (o env STORAGE_DSN)")
	}
	return pg.Connect(ctx, pg.Config{DSN: dsn, MaxConns: 2})
}

func newMigrateCmd() *cobra.Command {
	var dsn string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones Postgres embebidas",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			st, err := connect(ctx, dsn)
			if err != nil {
				return err
			}
			defer st.Close()

			res, err := pg.NewMigrator(migrations.FS, migrations.Dir).Run(ctx, st)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied=%v skipped=%v took=%s\n", res.Applied, res.Skipped, res.Duration.Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", envOr("STORAGE_DSN", ""), "DSN de Postgres (env STORAGE_DSN)")
	return cmd
}

func newSweepCmd() *cobra.Command {
	var dsn string
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Elimina una vez los authorization codes vencidos",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			st, err := connect(ctx, dsn)
			if err != nil {
				return err
			}
			defer st.Close()

			n, err := jobs.NewSweeper(st.AuthCodes(), 0).SweepOnce(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed=%d\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", envOr("STORAGE_DSN", ""), "DSN de Postgres (env STORAGE_DSN)")
	return cmd
}

func newPKCECmd() *cobra.Command {
	var verifier string
	cmd := &cobra.Command{
		Use:   "pkce",
		Short: "Genera un par code_verifier / code_challenge (S256)",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := verifier
			if v == "" {
				var err error
				if v, err = pkce.GenerateVerifier(); err != nil {
					return err
				}
			} else if err := pkce.ValidateVerifier(v); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "code_verifier=%s\n", v)
			fmt.Fprintf(out, "code_challenge=%s\n", pkce.Challenge(v))
			fmt.Fprintf(out, "code_challenge_method=%s\n", pkce.MethodS256)
			return nil
		},
	}
	cmd.Flags().StringVar(&verifier, "verifier", "", "verifier existente (43-128 chars); vacío genera uno")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	var (
		useArgon   bool
		skipPolicy bool
	)
	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Imprime el hash de una password para sembrar usuarios (lee stdin si no hay argumento)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plain, err := readPassword(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			if !skipPolicy {
				if ok, reasons := password.DefaultPolicy.Validate(plain); !ok {
					return fmt.Errorf("password rechazada: %s", strings.Join(reasons, ", "))
				}
			}

			var hash string
			if useArgon {
				hash, err = password.HashArgon2id(password.DefaultArgon2, plain)
			} else {
				hash, err = password.Hash(plain)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().BoolVar(&useArgon, "argon2id", false, "usar argon2id en lugar de bcrypt")
	cmd.Flags().BoolVar(&skipPolicy, "skip-policy", false, "no validar largo mínimo")
	return cmd
}

func readPassword(in io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", password.ErrEmptyPassword
	}
	return line, nil
}
