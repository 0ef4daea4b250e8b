package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"rintintin/internal/platform/apperr"
	"rintintin/internal/ports/auth"

	"golang.org/x/crypto/bcrypt"
)

type testRepo struct {
	byID map[string]User
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]User{}}
}

func (r *testRepo) Create(ctx context.Context, u User) error {
	for _, cur := range r.byID {
		if cur.Email == u.Email {
			return ErrEmailTaken
		}
	}
	r.byID[u.ID] = u
	return nil
}

func (r *testRepo) Update(ctx context.Context, u User) error {
	if _, ok := r.byID[u.ID]; !ok {
		return ErrNotFound
	}
	r.byID[u.ID] = u
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (User, error) {
	u, ok := r.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *testRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *testRepo) List(ctx context.Context) ([]User, error) {
	out := make([]User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	return out, nil
}

// testTokens emite "token:<userID>".
type testTokens struct{}

func (testTokens) Issue(ctx context.Context, c auth.Claims) (string, error) {
	return "token:" + c.UserID, nil
}

func newTestService() (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo, testTokens{}, bcrypt.MinCost)
	svc.now = func() time.Time { return time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC) }
	return svc, repo
}

func validSignup(email string) SignupInput {
	return SignupInput{Email: email, Password: "secret123", FirstName: "Ana", LastName: "López"}
}

func TestService_Signup_NormalizesAndHashes(t *testing.T) {
	svc, repo := newTestService()

	res, err := svc.Signup(context.Background(), validSignup("  Ana@Example.COM "))
	if err != nil {
		t.Fatalf("Signup error: %v", err)
	}
	if res.User.Email != "ana@example.com" {
		t.Fatalf("expected lowercased email, got %q", res.User.Email)
	}
	if res.Token != "token:"+res.User.ID {
		t.Fatalf("unexpected token %q", res.Token)
	}
	if res.User.Role != RoleUser || res.User.Name() != "Ana López" {
		t.Fatalf("unexpected user %#v", res.User)
	}

	stored := repo.byID[res.User.ID]
	if stored.PasswordHash == "secret123" || bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")) != nil {
		t.Fatalf("expected bcrypt hash to be stored")
	}
}

func TestService_Signup_SitterUserType(t *testing.T) {
	svc, _ := newTestService()

	in := validSignup("s@example.com")
	in.UserType = "Sitter"
	res, err := svc.Signup(context.Background(), in)
	if err != nil {
		t.Fatalf("Signup error: %v", err)
	}
	if res.User.Role != RoleSitter {
		t.Fatalf("expected SITTER, got %s", res.User.Role)
	}
}

func TestService_Signup_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cases := map[string]SignupInput{
		"bad email":      {Email: "nope", Password: "secret123", FirstName: "A", LastName: "B"},
		"short password": {Email: "a@example.com", Password: "123", FirstName: "A", LastName: "B"},
		"no first name":  {Email: "a@example.com", Password: "secret123", LastName: "B"},
		"no last name":   {Email: "a@example.com", Password: "secret123", FirstName: "A"},
	}
	for name, in := range cases {
		if _, err := svc.Signup(ctx, in); !apperr.IsKind(err, apperr.KindValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestService_Signup_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Signup(ctx, validSignup("a@example.com")); err != nil {
		t.Fatalf("Signup error: %v", err)
	}
	_, err := svc.Signup(ctx, validSignup("A@example.com"))
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestService_Login(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Signup(ctx, validSignup("a@example.com"))
	if err != nil {
		t.Fatalf("Signup error: %v", err)
	}

	got, err := svc.Login(ctx, "A@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if got.User.ID != created.User.ID {
		t.Fatalf("expected same id")
	}

	_, errPwd := svc.Login(ctx, "a@example.com", "wrong")
	_, errEmail := svc.Login(ctx, "missing@example.com", "secret123")
	if !apperr.IsKind(errPwd, apperr.KindAuth) || !apperr.IsKind(errEmail, apperr.KindAuth) {
		t.Fatalf("expected auth errors, got %v / %v", errPwd, errEmail)
	}
	if errPwd.Error() != errEmail.Error() {
		t.Fatalf("expected identical messages, got %q vs %q", errPwd, errEmail)
	}
}

func TestService_GetFor_And_Update(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, _ := svc.Signup(ctx, validSignup("a@example.com"))
	b, _ := svc.Signup(ctx, validSignup("b@example.com"))

	if _, err := svc.GetFor(ctx, auth.Claims{UserID: b.User.ID, Role: string(RoleUser)}, a.User.ID); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.GetFor(ctx, auth.Claims{UserID: b.User.ID, Role: string(RoleAdmin)}, a.User.ID); err != nil {
		t.Fatalf("admin GetFor error: %v", err)
	}

	if _, err := svc.Update(ctx, b.User.ID, a.User.ID, UpdateInput{FirstName: "X", LastName: "Y"}); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden update, got %v", err)
	}
	u, err := svc.Update(ctx, a.User.ID, a.User.ID, UpdateInput{FirstName: " Ana ", LastName: "Pérez", City: "Rosario"})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if u.Name() != "Ana Pérez" || u.City != "Rosario" || u.Email != "a@example.com" {
		t.Fatalf("unexpected updated user %#v", u)
	}
}

func TestService_PromoteToSitter(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	a, _ := svc.Signup(ctx, validSignup("a@example.com"))
	if err := svc.PromoteToSitter(ctx, a.User.ID); err != nil {
		t.Fatalf("PromoteToSitter error: %v", err)
	}
	if repo.byID[a.User.ID].Role != RoleSitter {
		t.Fatalf("expected SITTER")
	}

	admin := repo.byID[a.User.ID]
	admin.Role = RoleAdmin
	repo.byID[admin.ID] = admin
	_ = svc.PromoteToSitter(ctx, admin.ID)
	if repo.byID[admin.ID].Role != RoleAdmin {
		t.Fatalf("expected ADMIN to be kept")
	}

	err := svc.PromoteToSitter(ctx, "missing")
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_Delete(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, _ := svc.Signup(ctx, validSignup("a@example.com"))
	if err := svc.Delete(ctx, a.User.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := svc.Delete(ctx, a.User.ID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
