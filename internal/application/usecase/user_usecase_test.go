package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/productos-api/internal/application/auth"
	"github.com/jhoicas/productos-api/internal/application/usecase"
	"github.com/jhoicas/productos-api/internal/domain"
	"github.com/jhoicas/productos-api/internal/domain/entity"
)

func newUserUC() (*usecase.UserUseCase, *fakeUserRepo, *recordingEvictor) {
	repo := newFakeUserRepo()
	ev := &recordingEvictor{}
	return usecase.NewUserUseCase(repo, bcrypt.MinCost, ev), repo, ev
}

func TestUserUseCase_AddHasheaYRolPorDefecto(t *testing.T) {
	uc, repo, _ := newUserUC()

	u, err := uc.Add(context.Background(), &entity.User{FirstName: "Ana", Email: "ana@x.com", Password: "secreto"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, u.Role)
	assert.NotEqual(t, "secreto", repo.rows["ana@x.com"].Password)
	assert.True(t, auth.CheckPassword(repo.rows["ana@x.com"].Password, "secreto"))
}

func TestUserUseCase_AddEmailDuplicado(t *testing.T) {
	uc, repo, _ := newUserUC()
	ctx := context.Background()

	_, err := uc.Add(ctx, &entity.User{FirstName: "Ana", Email: "ana@x.com", Password: "secreto"})
	require.NoError(t, err)
	_, err = uc.Add(ctx, &entity.User{FirstName: "Otra", Email: "ana@x.com", Password: "otro123"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	assert.Equal(t, 1, repo.creates)
	assert.Equal(t, "Ana", repo.rows["ana@x.com"].FirstName)
}

func TestUserUseCase_AddRolInvalido(t *testing.T) {
	uc, repo, _ := newUserUC()

	_, err := uc.Add(context.Background(), &entity.User{FirstName: "Ana", Email: "ana@x.com", Password: "secreto", Role: "ROOT"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, repo.rows)
}

func TestUserUseCase_FindByEmailNoExiste(t *testing.T) {
	uc, _, _ := newUserUC()

	_, err := uc.FindByEmail(context.Background(), "nadie@x.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserUseCase_UpdateReemplazaYRehashea(t *testing.T) {
	uc, repo, ev := newUserUC()
	ctx := context.Background()
	_, err := uc.Add(ctx, &entity.User{FirstName: "Ana", LastName: "Ruiz", Email: "ana@x.com", Password: "secreto"})
	require.NoError(t, err)

	u, err := uc.Update(ctx, &entity.User{FirstName: "Ana María", Email: "ana@x.com", Password: "nueva-clave", Role: entity.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", u.FirstName)
	assert.Empty(t, u.LastName)
	assert.Equal(t, entity.RoleAdmin, u.Role)

	stored := repo.rows["ana@x.com"]
	assert.True(t, auth.CheckPassword(stored.Password, "nueva-clave"))
	assert.False(t, auth.CheckPassword(stored.Password, "secreto"))
	assert.Equal(t, []string{"ana@x.com"}, ev.forgotten)
}

func TestUserUseCase_UpdateSinRolConservaElActual(t *testing.T) {
	uc, _, _ := newUserUC()
	ctx := context.Background()
	_, err := uc.Add(ctx, &entity.User{FirstName: "Ana", Email: "ana@x.com", Password: "secreto", Role: entity.RoleAdmin})
	require.NoError(t, err)

	u, err := uc.Update(ctx, &entity.User{FirstName: "Ana", Email: "ana@x.com", Password: "secreto"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, u.Role)
}

func TestUserUseCase_UpdateNoExiste(t *testing.T) {
	uc, _, ev := newUserUC()

	_, err := uc.Update(context.Background(), &entity.User{Email: "nadie@x.com", Password: "secreto"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Empty(t, ev.forgotten)
}

func TestUserUseCase_DeleteByEmail(t *testing.T) {
	uc, repo, ev := newUserUC()
	ctx := context.Background()
	_, err := uc.Add(ctx, &entity.User{FirstName: "Ana", Email: "ana@x.com", Password: "secreto"})
	require.NoError(t, err)

	require.NoError(t, uc.DeleteByEmail(ctx, "ana@x.com"))
	assert.Empty(t, repo.rows)
	require.NoError(t, uc.DeleteByEmail(ctx, "ana@x.com"))
	assert.Equal(t, []string{"ana@x.com", "ana@x.com"}, ev.forgotten)
}

func TestUserUseCase_FindAll(t *testing.T) {
	uc, _, _ := newUserUC()
	ctx := context.Background()
	for _, e := range []string{"a@x.com", "b@x.com"} {
		_, err := uc.Add(ctx, &entity.User{FirstName: "X", Email: e, Password: "secreto"})
		require.NoError(t, err)
	}

	all, err := uc.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
