package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"user-registry/internal/domain"
	"user-registry/internal/password"
	"user-registry/internal/repository"
	"user-registry/internal/validation"
)

// --- helpers ---

type fakeUsersRepo struct {
	mu    sync.Mutex
	order []string
	byID  map[string]domain.User

	findErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[string]domain.User{}}
}

func (f *fakeUsersRepo) Init(context.Context) error { return nil }

func (f *fakeUsersRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsersRepo) Insert(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	f.byID[user.ID] = *user
	f.order = append(f.order, user.ID)
	return nil
}

func (f *fakeUsersRepo) UpdateByID(_ context.Context, id string, patch domain.UserPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.FullName = patch.FullName
	u.PasswordHash = patch.PasswordHash
	f.byID[id] = u
	return nil
}

func (f *fakeUsersRepo) DeleteByID(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUsersRepo) FindAll(_ context.Context, p domain.Projection) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, id := range f.order {
		if u, ok := f.byID[id]; ok {
			out = append(out, p.Apply(u))
		}
	}
	return out, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestService(t *testing.T, repo repository.UserRepository, listPasswords bool) (UserService, *password.Hasher) {
	t.Helper()
	h, err := password.NewHasher(password.Config{Cost: bcrypt.MinCost})
	require.NoError(t, err)
	return NewUserService(repo, h, Options{ListPasswords: listPasswords, Logger: quietLogger()}), h
}

func janeFields() validation.Fields {
	return validation.Fields{"fullName": "Jane Doe", "email": "jane@x.com", "password": "Abcdef1!"}
}

// --- tests ---

func TestCreate_StoresHash(t *testing.T) {
	repo := newFakeUsersRepo()
	svc, h := newTestService(t, repo, true)
	ctx := context.Background()

	user, err := svc.Create(ctx, janeFields())
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)

	stored, err := repo.FindByEmail(ctx, "jane@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", stored.FullName)
	assert.NotEqual(t, "Abcdef1!", stored.PasswordHash)
	assert.True(t, h.Compare(stored.PasswordHash, "Abcdef1!"))
}

func TestCreate_ValidationErrors(t *testing.T) {
	repo := newFakeUsersRepo()
	svc, _ := newTestService(t, repo, true)

	_, err := svc.Create(context.Background(), validation.Fields{
		"fullName": "J4ne", "email": "jane@x.com", "password": "short",
	})
	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, []string{"fullName", "password"}, verrs.Fields())
	assert.Empty(t, repo.byID)
}

func TestCreate_Duplicate(t *testing.T) {
	svc, _ := newTestService(t, newFakeUsersRepo(), true)
	ctx := context.Background()

	_, err := svc.Create(ctx, janeFields())
	require.NoError(t, err)
	_, err = svc.Create(ctx, janeFields())
	require.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestUpdate(t *testing.T) {
	repo := newFakeUsersRepo()
	svc, h := newTestService(t, repo, true)
	ctx := context.Background()

	_, err := svc.Create(ctx, janeFields())
	require.NoError(t, err)

	err = svc.Update(ctx, validation.Fields{"fullName": "Jane Smith", "email": "jane@x.com", "password": "Zyxwvu9?"})
	require.NoError(t, err)

	stored, err := repo.FindByEmail(ctx, "jane@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", stored.FullName)
	assert.True(t, h.Compare(stored.PasswordHash, "Zyxwvu9?"))
}

func TestUpdate_ValidationBeforeEmailCheck(t *testing.T) {
	svc, _ := newTestService(t, newFakeUsersRepo(), true)

	err := svc.Update(context.Background(), validation.Fields{"fullName": "J4ne", "password": "Abcdef1!"})
	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
}

func TestUpdate_EmailRequired(t *testing.T) {
	svc, _ := newTestService(t, newFakeUsersRepo(), true)

	for _, email := range []any{nil, "", float64(0), false} {
		f := janeFields()
		f["email"] = email
		require.ErrorIs(t, svc.Update(context.Background(), f), ErrEmailRequired)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := newTestService(t, newFakeUsersRepo(), true)
	require.ErrorIs(t, svc.Update(context.Background(), janeFields()), ErrUserNotFound)
}

func TestDelete_TwiceYieldsNotFound(t *testing.T) {
	svc, _ := newTestService(t, newFakeUsersRepo(), true)
	ctx := context.Background()

	_, err := svc.Create(ctx, janeFields())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, validation.Fields{"email": "jane@x.com"}))
	require.ErrorIs(t, svc.Delete(ctx, validation.Fields{"email": "jane@x.com"}), ErrUserNotFound)
}

func TestDelete_EmailRequired(t *testing.T) {
	svc, _ := newTestService(t, newFakeUsersRepo(), true)
	require.ErrorIs(t, svc.Delete(context.Background(), validation.Fields{}), ErrEmailRequired)
}

func TestStorageFailurePropagates(t *testing.T) {
	repo := newFakeUsersRepo()
	repo.findErr = errors.New("connection refused")
	svc, _ := newTestService(t, repo, true)

	err := svc.Delete(context.Background(), validation.Fields{"email": "jane@x.com"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestList_Projection(t *testing.T) {
	ctx := context.Background()

	withHash, _ := newTestService(t, newFakeUsersRepo(), true)
	_, err := withHash.Create(ctx, janeFields())
	require.NoError(t, err)
	users, err := withHash.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.NotEmpty(t, users[0].PasswordHash)
	assert.Empty(t, users[0].ID)

	withoutHash, _ := newTestService(t, newFakeUsersRepo(), false)
	_, err = withoutHash.Create(ctx, janeFields())
	require.NoError(t, err)
	users, err = withoutHash.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Empty(t, users[0].PasswordHash)
	assert.Equal(t, "jane@x.com", users[0].Email)
}

func TestCreateAndUpdate_PasswordsPastBcryptLimit(t *testing.T) {
	for _, pw := range []string{
		"Abcdef1!" + strings.Repeat("x", 64), // 72 bytes
		"Abcdef1!" + strings.Repeat("x", 65), // 73 bytes
		"Abcdef1!" + strings.Repeat("é", 60),
	} {
		repo := newFakeUsersRepo()
		svc, h := newTestService(t, repo, true)
		ctx := context.Background()

		f := janeFields()
		f["password"] = pw
		_, err := svc.Create(ctx, f)
		require.NoError(t, err)

		stored, err := repo.FindByEmail(ctx, "jane@x.com")
		require.NoError(t, err)
		assert.True(t, h.Compare(stored.PasswordHash, pw))

		f["password"] = "Zyxwvu9?" + strings.Repeat("y", 80)
		require.NoError(t, svc.Update(ctx, f))
		stored, err = repo.FindByEmail(ctx, "jane@x.com")
		require.NoError(t, err)
		assert.True(t, h.Compare(stored.PasswordHash, f["password"].(string)))
	}
}
