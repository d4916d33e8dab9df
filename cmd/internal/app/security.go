package app

import (
	"errors"
	"fmt"
	"strings"

	"accounts/cmd/security/credential"
)

// Mail transport names.
const (
	MailTransportLog  = "log"
	MailTransportSMTP = "smtp"
)

// ValidateConfig rejects inconsistent settings at startup instead of silently
// falling back to defaults.
func ValidateConfig(cfg Config) error {
	var errs []error

	switch strings.ToLower(strings.TrimSpace(cfg.CredentialCodec)) {
	case "", credential.CodecSHA256, credential.CodecArgon2id:
	default:
		errs = append(errs, fmt.Errorf("config: unknown ACCOUNTS_CREDENTIAL_CODEC %q", cfg.CredentialCodec))
	}

	switch strings.ToLower(strings.TrimSpace(cfg.MailTransport)) {
	case "", MailTransportLog:
	case MailTransportSMTP:
		if strings.TrimSpace(cfg.SMTPAddr) == "" {
			errs = append(errs, errors.New("config: ACCOUNTS_MAIL_TRANSPORT=smtp but ACCOUNTS_SMTP_ADDR is missing"))
		}
		if strings.TrimSpace(cfg.SMTPFrom) == "" {
			errs = append(errs, errors.New("config: ACCOUNTS_MAIL_TRANSPORT=smtp but ACCOUNTS_SMTP_FROM is missing"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown ACCOUNTS_MAIL_TRANSPORT %q", cfg.MailTransport))
	}

	if _, err := storeKind(cfg.DatabaseURL); err != nil {
		errs = append(errs, err)
	}

	if cfg.ReadinessRequireDB && strings.TrimSpace(cfg.DatabaseURL) == "" {
		errs = append(errs, errors.New("config: ACCOUNTS_READINESS_REQUIRE_DB=true but ACCOUNTS_DATABASE_URL is empty"))
	}

	return errors.Join(errs...)
}
