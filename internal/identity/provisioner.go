package identity

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/vetsuite/clinic-crm/internal/notify"
	"github.com/vetsuite/clinic-crm/pkg/logging"
)

// LoginRequest asks for a portal account for a pet's owner.
type LoginRequest struct {
	OwnerEmail string `json:"owner_email"`
	OwnerName  string `json:"owner_name"`
	PetID      string `json:"pet_id"`
	PetName    string `json:"pet_name"`
}

// LoginResult reports what provisioning did.
type LoginResult struct {
	AccountID    string `json:"account_id"`
	Created      bool   `json:"created"`
	RecoveryLink string `json:"recovery_link,omitempty"`
}

// Provisioner drives the owner login flow: find-or-create an account in the
// auth backend, then either mail a welcome message (new account) or issue a
// sign-in link (existing account).
type Provisioner struct {
	accounts AccountAPI
	mail     notify.EmailSender
	logger   *logging.Logger
}

// NewProvisioner creates a login provisioner.
func NewProvisioner(accounts AccountAPI, mail notify.EmailSender, logger *logging.Logger) *Provisioner {
	if accounts == nil {
		panic("identity: account API required")
	}
	if mail == nil {
		mail = notify.NewStubEmailSender(logger)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Provisioner{accounts: accounts, mail: mail, logger: logger}
}

// GenerateLogin provisions or refreshes an owner account for the given pet.
func (p *Provisioner) GenerateLogin(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := strings.TrimSpace(req.OwnerEmail)
	if email == "" {
		return nil, fmt.Errorf("identity: owner email required")
	}

	meta := AccountMetadata{
		Name:      req.OwnerName,
		Role:      RoleOwner,
		PetsOwned: []string{req.PetID},
	}

	accountID, err := p.accounts.FindAccount(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("identity: lookup account: %w", err)
	}

	if accountID != "" {
		if err := p.accounts.UpdateMetadata(ctx, accountID, meta); err != nil {
			return nil, fmt.Errorf("identity: refresh metadata: %w", err)
		}
		link, err := p.accounts.IssueRecoveryLink(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("identity: issue recovery link: %w", err)
		}
		p.logger.Info("owner login refreshed", "email", email, "pet_id", req.PetID)
		return &LoginResult{AccountID: accountID, Created: false, RecoveryLink: link}, nil
	}

	password, err := tempPassword()
	if err != nil {
		return nil, err
	}

	accountID, err = p.accounts.CreateAccount(ctx, email, password, meta)
	if err != nil {
		return nil, fmt.Errorf("identity: create account: %w", err)
	}

	msg := notify.EmailMessage{
		To:      email,
		ToName:  req.OwnerName,
		Subject: "Your pet portal login",
		Body: fmt.Sprintf(
			"Hi %s,\n\nA portal account has been created so you can follow %s's records and appointments.\n\nLogin: %s\nTemporary password: %s\n\nPlease change your password after signing in.",
			req.OwnerName, req.PetName, email, password,
		),
	}
	if err := p.mail.Send(ctx, msg); err != nil {
		// The account exists either way; the clinic can resend credentials.
		p.logger.Error("welcome email failed", "error", err, "email", email)
	}

	p.logger.Info("owner login created", "email", email, "pet_id", req.PetID)
	return &LoginResult{AccountID: accountID, Created: true}, nil
}

func tempPassword() (string, error) {
	var buf [10]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("identity: generate password: %w", err)
	}
	return strings.ToLower(base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf[:])), nil
}
