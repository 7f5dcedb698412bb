package service

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	appErrors "github.com/mkanyali/assetcomply-backend/internal/errors"
	"github.com/mkanyali/assetcomply-backend/internal/model"
)

type mockAuthSettingsRepo struct {
	settings model.AuthSettings
}

func (m *mockAuthSettingsRepo) Get() (*model.AuthSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockAuthSettingsRepo) Update(s *model.AuthSettings) error {
	m.settings = *s
	return nil
}

type authFixture struct {
	users     *mockUserRepo
	invites   *mockInviteRepo
	campaigns *mockCampaignRepo
	settings  *mockAuthSettingsRepo
	svc       *AuthService
}

func newAuthFixture(registrationEnabled bool) *authFixture {
	f := &authFixture{
		users:     newMockUserRepo(),
		invites:   newMockInviteRepo(),
		campaigns: newMockCampaignRepo(),
		settings:  &mockAuthSettingsRepo{settings: model.AuthSettings{RegistrationEnabled: registrationEnabled, PasswordLoginEnabled: true}},
	}
	f.svc = &AuthService{
		Users:     f.users,
		Invites:   f.invites,
		Campaigns: f.campaigns,
		Settings:  f.settings,
		Audit:     &mockAuditRepo{},
		JWTSecret: "test-secret",
		Log:       zap.NewNop().Sugar(),
	}
	return f
}

func registerRequest() *RegisterRequest {
	return &RegisterRequest{
		Email:            "new@example.com",
		Password:         "password123",
		FirstName:        "New",
		LastName:         "Hire",
		ManagerFirstName: "Mara",
		ManagerLastName:  "Mwangi",
		ManagerEmail:     "mara@example.com",
	}
}

func (f *authFixture) activeCampaignWithInvite(email, token string) *model.PendingInvite {
	c := &model.Campaign{Name: "Onboarding", Status: model.CampaignStatusActive, CreatedBy: 1}
	f.campaigns.Create(c)
	inv := &model.PendingInvite{CampaignID: c.ID, EmployeeEmail: email, InviteToken: token}
	f.invites.Create(inv)
	return inv
}

func TestRegisterOpenWhenEnabled(t *testing.T) {
	f := newAuthFixture(true)
	user, err := f.svc.Register(registerRequest())
	if err != nil {
		t.Fatal(err)
	}
	if user.Role != model.RoleEmployee {
		t.Fatalf("self-registered user role = %q", user.Role)
	}
	if user.Email != "new@example.com" {
		t.Fatalf("email = %q", user.Email)
	}
}

func TestRegisterBlockedWhenDisabled(t *testing.T) {
	f := newAuthFixture(false)
	_, err := f.svc.Register(registerRequest())
	var authz *appErrors.AuthzError
	if !errors.As(err, &authz) {
		t.Fatalf("expected AuthzError, got %v", err)
	}
	if authz.Message != RegistrationDisabledMessage {
		t.Fatalf("message = %q", authz.Message)
	}
}

func TestRegisterInviteBypass(t *testing.T) {
	f := newAuthFixture(false)
	inv := f.activeCampaignWithInvite("new@example.com", "tok-1")

	req := registerRequest()
	req.InviteToken = "tok-1"

	if _, err := f.svc.Register(req); err != nil {
		t.Fatal(err)
	}
	if inv.RegisteredAt == nil {
		t.Fatal("successful registration must consume the invite")
	}
}

func TestRegisterInviteEmailMatchIsCaseInsensitive(t *testing.T) {
	f := newAuthFixture(false)
	f.activeCampaignWithInvite("New@Example.COM", "tok-1")

	req := registerRequest()
	req.InviteToken = "tok-1"

	if _, err := f.svc.Register(req); err != nil {
		t.Fatal(err)
	}
}

func TestRegisterInviteChainFailuresAreGeneric(t *testing.T) {
	fixed := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		setup func(f *authFixture) string
	}{
		{"unknown token", func(f *authFixture) string {
			return "no-such-token"
		}},
		{"consumed token", func(f *authFixture) string {
			inv := f.activeCampaignWithInvite("new@example.com", "tok-1")
			inv.RegisteredAt = &fixed
			return "tok-1"
		}},
		{"draft campaign", func(f *authFixture) string {
			inv := f.activeCampaignWithInvite("new@example.com", "tok-1")
			f.campaigns.campaigns[inv.CampaignID].Status = model.CampaignStatusDraft
			return "tok-1"
		}},
		{"completed campaign", func(f *authFixture) string {
			inv := f.activeCampaignWithInvite("new@example.com", "tok-1")
			f.campaigns.campaigns[inv.CampaignID].Status = model.CampaignStatusCompleted
			return "tok-1"
		}},
		{"wrong email", func(f *authFixture) string {
			f.activeCampaignWithInvite("someone-else@example.com", "tok-1")
			return "tok-1"
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAuthFixture(false)
			req := registerRequest()
			req.InviteToken = tc.setup(f)

			_, err := f.svc.Register(req)
			var authz *appErrors.AuthzError
			if !errors.As(err, &authz) {
				t.Fatalf("expected AuthzError, got %v", err)
			}
			if authz.Message != RegistrationDisabledMessage {
				t.Fatalf("gate must not leak the failing check, got %q", authz.Message)
			}
		})
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	f := newAuthFixture(true)
	f.users.add(&model.User{Email: "new@example.com", Role: model.RoleEmployee})

	_, err := f.svc.Register(registerRequest())
	var validation *appErrors.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterRequiresManagerInfo(t *testing.T) {
	f := newAuthFixture(true)
	req := registerRequest()
	req.ManagerEmail = ""

	if _, err := f.svc.Register(req); err == nil {
		t.Fatal("expected validation error for missing manager info")
	}
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(true)
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	f.users.add(&model.User{Email: "eli@example.com", PasswordHash: string(hash), Role: model.RoleEmployee})

	token, user, err := f.svc.Login("eli@example.com", "password123")
	if err != nil {
		t.Fatal(err)
	}
	if token == "" || user == nil {
		t.Fatal("expected token and user")
	}

	if _, _, err := f.svc.Login("eli@example.com", "wrong"); err == nil {
		t.Fatal("wrong password must fail")
	}
	var authn *appErrors.AuthnError
	_, _, err = f.svc.Login("nobody@example.com", "password123")
	if !errors.As(err, &authn) {
		t.Fatalf("unknown user must yield AuthnError, got %v", err)
	}
}

func TestLoginDisabled(t *testing.T) {
	f := newAuthFixture(true)
	f.settings.settings.PasswordLoginEnabled = false

	_, _, err := f.svc.Login("eli@example.com", "password123")
	var authz *appErrors.AuthzError
	if !errors.As(err, &authz) {
		t.Fatalf("expected AuthzError, got %v", err)
	}
}
