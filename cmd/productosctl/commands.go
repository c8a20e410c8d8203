package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/productos-api/internal/application/auth"
	"github.com/jhoicas/productos-api/internal/application/usecase"
	"github.com/jhoicas/productos-api/internal/domain"
	"github.com/jhoicas/productos-api/internal/domain/entity"
	"github.com/jhoicas/productos-api/internal/domain/repository"
)

// userRepoOpener abre el repositorio de usuarios; migrate fuerza la creación del esquema.
type userRepoOpener func(ctx context.Context, migrate bool) (repository.UserRepository, func(), error)

func newRootCmd(open userRepoOpener) *cobra.Command {
	root := &cobra.Command{
		Use:           "productosctl",
		Short:         "CLI administrativa de la API de productos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newHashPasswordCmd(), newCreateUserCmd(open))
	return root
}

func newHashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Imprime el hash bcrypt de un password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0], cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", 0, "costo bcrypt (0 = por defecto)")
	return cmd
}

func newCreateUserCmd(open userRepoOpener) *cobra.Command {
	var (
		email, password, firstName, lastName, role string
		migrate                                    bool
	)
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Crea una cuenta (p. ej. el primer ADMIN)",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := entity.Role(role)
			if !r.Valid() {
				return fmt.Errorf("rol inválido %q (ADMIN | USER)", role)
			}
			if len(password) < 6 {
				return errors.New("el password debe tener al menos 6 caracteres")
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			repo, closeFn, err := open(ctx, migrate)
			if err != nil {
				return err
			}
			defer closeFn()

			uc := usecase.NewUserUseCase(repo, 0, nil)
			user, err := uc.Add(ctx, &entity.User{
				FirstName: firstName,
				LastName:  lastName,
				Email:     email,
				Password:  password,
				Role:      r,
			})
			if errors.Is(err, domain.ErrEmailAlreadyExists) {
				return fmt.Errorf("ya existe una cuenta con email %s", email)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "usuario %s creado (id=%d, rol=%s)\n", user.Email, user.ID, user.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email de la cuenta")
	cmd.Flags().StringVar(&password, "password", "", "password en texto plano")
	cmd.Flags().StringVar(&firstName, "first-name", "", "nombre")
	cmd.Flags().StringVar(&lastName, "last-name", "", "apellido")
	cmd.Flags().StringVar(&role, "role", string(entity.RoleUser), "rol: ADMIN | USER")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "crear el esquema si no existe")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("first-name")
	return cmd
}
