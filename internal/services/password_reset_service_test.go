package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"faithledger/internal/testutil"

	"gorm.io/gorm"
)

type sentMail struct {
	to, subject, body string
}

// mockMailer records messages and optionally fails.
type mockMailer struct {
	sent []sentMail
	err  error
}

func (m *mockMailer) Send(_ context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

func newResetService(db *gorm.DB, mail *mockMailer) (*passwordResetService, UserServicer) {
	users := NewUserService(db)
	return NewPasswordResetService(users, mail, "test-secret", 30*time.Minute).(*passwordResetService), users
}

// linkParts extracts uid and token from a reset link in an email body.
func linkParts(t *testing.T, body string) (string, string) {
	t.Helper()
	idx := strings.Index(body, "/reset-password/")
	if idx < 0 {
		t.Fatalf("no reset link in body: %s", body)
	}
	rest := strings.Fields(body[idx+len("/reset-password/"):])[0]
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		t.Fatalf("malformed reset link %q", rest)
	}
	return parts[0], parts[1]
}

func TestUIDRoundTrip(t *testing.T) {
	id := "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b"
	uid := EncodeUID(id)
	if strings.ContainsAny(uid, "=+/") {
		t.Errorf("uid %q should be unpadded URL-safe base64", uid)
	}
	got, err := DecodeUID(uid)
	testutil.AssertNoError(t, err)
	if got != id {
		t.Errorf("expected %s, got %s", id, got)
	}
}

func TestResetToken(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newResetService(db, &mockMailer{})
		user := testutil.CreateTestUser(t, db)

		token, err := svc.MakeToken(user)
		testutil.AssertNoError(t, err)
		if !svc.CheckToken(user, token) {
			t.Error("fresh token should be valid")
		}
	})

	t.Run("expired", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newResetService(db, &mockMailer{})
		user := testutil.CreateTestUser(t, db)

		issued := time.Now()
		svc.now = func() time.Time { return issued }
		token, err := svc.MakeToken(user)
		testutil.AssertNoError(t, err)

		svc.now = func() time.Time { return issued.Add(31 * time.Minute) }
		if svc.CheckToken(user, token) {
			t.Error("token past the reset timeout should be rejected")
		}
	})

	t.Run("password_change_invalidates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, users := newResetService(db, &mockMailer{})
		user := testutil.CreateTestUser(t, db)

		token, err := svc.MakeToken(user)
		testutil.AssertNoError(t, err)
		testutil.AssertNoError(t, users.SetPassword(user.ID, "changed#pass1"))

		reloaded, err := users.GetUserByID(user.ID)
		testutil.AssertNoError(t, err)
		if svc.CheckToken(reloaded, token) {
			t.Error("token should not survive a password change")
		}
	})

	t.Run("login_invalidates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, users := newResetService(db, &mockMailer{})
		user := testutil.CreateTestUser(t, db)

		token, err := svc.MakeToken(user)
		testutil.AssertNoError(t, err)
		loggedIn, err := users.Authenticate(user.Username, testutil.TestPassword)
		testutil.AssertNoError(t, err)

		if svc.CheckToken(loggedIn, token) {
			t.Error("token should not survive a new login")
		}
	})

	t.Run("other_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newResetService(db, &mockMailer{})
		alice := testutil.CreateTestUser(t, db)
		bob := testutil.CreateTestUser(t, db)

		token, err := svc.MakeToken(alice)
		testutil.AssertNoError(t, err)
		if svc.CheckToken(bob, token) {
			t.Error("token must be bound to its user")
		}
		if svc.CheckToken(alice, token+"x") {
			t.Error("tampered token must be rejected")
		}
	})
}

func TestRequestReset(t *testing.T) {
	t.Run("sends_link", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		mail := &mockMailer{}
		svc, _ := newResetService(db, mail)
		user := testutil.CreateTestUser(t, db)

		err := svc.RequestReset(context.Background(), user.Email, "http://ledger.test/")
		testutil.AssertNoError(t, err)

		if len(mail.sent) != 1 {
			t.Fatalf("expected 1 email, got %d", len(mail.sent))
		}
		msg := mail.sent[0]
		if msg.to != user.Email || msg.subject != "FaithLedger - Password Reset" {
			t.Errorf("unexpected message header %+v", msg)
		}
		if !strings.Contains(msg.body, "http://ledger.test/reset-password/") {
			t.Errorf("body should carry an absolute link: %s", msg.body)
		}
		if !strings.Contains(msg.body, "valid for 30 minutes") {
			t.Errorf("body should state the validity window: %s", msg.body)
		}

		uid, token := linkParts(t, msg.body)
		resolved, err := svc.ResolveUser(uid, token)
		testutil.AssertNoError(t, err)
		if resolved.ID != user.ID {
			t.Errorf("link resolved to %s, want %s", resolved.ID, user.ID)
		}
	})

	t.Run("unknown_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		mail := &mockMailer{}
		svc, _ := newResetService(db, mail)

		err := svc.RequestReset(context.Background(), "ghost@example.com", "http://ledger.test")
		testutil.AssertFieldError(t, err, "email", "No account found with this email address.")
		if len(mail.sent) != 0 {
			t.Error("no email should be sent for an unknown address")
		}
	})

	t.Run("delivery_failure", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newResetService(db, &mockMailer{err: errors.New("connection refused")})
		user := testutil.CreateTestUser(t, db)

		err := svc.RequestReset(context.Background(), user.Email, "http://ledger.test")
		testutil.AssertAppError(t, err, "EMAIL_DELIVERY_FAILED")
	})
}

func TestConfirmReset(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, users := newResetService(db, &mockMailer{})
		user := testutil.CreateTestUser(t, db)
		token, _ := svc.MakeToken(user)

		err := svc.ConfirmReset(EncodeUID(user.ID), token, "brand-new#pass1", "brand-new#pass1")
		testutil.AssertNoError(t, err)

		_, err = users.Authenticate(user.Username, "brand-new#pass1")
		testutil.AssertNoError(t, err)

		// The link is single use: the password hash changed.
		_, err = svc.ResolveUser(EncodeUID(user.ID), token)
		testutil.AssertAppError(t, err, "INVALID_RESET_LINK")
	})

	t.Run("policy_errors", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newResetService(db, &mockMailer{})
		user := testutil.CreateTestUser(t, db)
		token, _ := svc.MakeToken(user)
		uid := EncodeUID(user.ID)

		err := svc.ConfirmReset(uid, token, "short1!", "short1!")
		testutil.AssertFieldError(t, err, "new_password1", "Password must be at least 8 characters long.")

		err = svc.ConfirmReset(uid, token, "longenough#1", "longenough#2")
		testutil.AssertFieldError(t, err, "new_password2", "The two password fields didn't match.")
	})

	t.Run("invalid_links", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newResetService(db, &mockMailer{})
		user := testutil.CreateTestUser(t, db)
		token, _ := svc.MakeToken(user)

		cases := map[string][2]string{
			"bad_base64":   {"%%%", token},
			"not_a_uuid":   {EncodeUID("42"), token},
			"unknown_user": {EncodeUID("0190a1b2-0000-7000-8000-000000000000"), token},
			"bad_token":    {EncodeUID(user.ID), "not-a-token"},
		}
		for name, c := range cases {
			t.Run(name, func(t *testing.T) {
				err := svc.ConfirmReset(c[0], c[1], "brand-new#pass1", "brand-new#pass1")
				testutil.AssertAppError(t, err, "INVALID_RESET_LINK")
			})
		}
	})
}
