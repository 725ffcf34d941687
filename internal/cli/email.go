package cli

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/klirr/klirr/internal/crypto"
	"github.com/klirr/klirr/internal/domain"
	"github.com/klirr/klirr/internal/service"
	"github.com/klirr/klirr/internal/storage"
)

var emailCmd = &cobra.Command{
	Use:   "email",
	Short: "Configure and test SMTP email sending",
}

var emailInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Store SMTP settings with an encrypted app-password",
	Long: `Store SMTP settings with an encrypted app-password.

The app-password is sealed with AES-256-GCM under a key derived from your
passphrase; only the sealed box is written to disk. The passphrase can be
kept in the system keyring (--keyring) or supplied later via the
KLIRR_EMAIL_ENCRYPTION_PASSWORD environment variable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := emailSetupFromFlags(cmd)
		if err != nil {
			return err
		}
		defer input.AppPassword.Zeroize()
		defer input.Passphrase.Zeroize()
		if err := appInstance.Email.Init(input); err != nil {
			return fmt.Errorf("failed to init email settings: %w", err)
		}
		fmt.Println("Email settings stored")
		return nil
	},
}

var emailValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the stored settings and that your passphrase opens them",
	RunE: func(cmd *cobra.Command, args []string) error {
		passphrase, err := crypto.ResolvePassphrase()
		if err != nil {
			return err
		}
		defer passphrase.Zeroize()
		if err := appInstance.Email.Validate(passphrase); err != nil {
			return err
		}
		fmt.Println("Email settings are valid")
		return nil
	},
}

var emailEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the email settings file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		return openInEditor(appInstance.Store.Path(storage.KeyEmailSettings))
	},
}

var emailTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test email through the configured server",
	RunE: func(cmd *cobra.Command, args []string) error {
		passphrase, err := crypto.ResolvePassphrase()
		if err != nil {
			return err
		}
		defer passphrase.Zeroize()
		if err := appInstance.Email.SendTest(context.Background(), passphrase); err != nil {
			return fmt.Errorf("test email failed: %w", err)
		}
		fmt.Println("Test email sent")
		return nil
	},
}

func emailSetupFromFlags(cmd *cobra.Command) (service.EmailSetupInput, error) {
	host, _ := cmd.Flags().GetString("host")
	port, _ := cmd.Flags().GetInt("port")
	senderName, _ := cmd.Flags().GetString("sender-name")
	sender, _ := cmd.Flags().GetString("sender")
	replyTo, _ := cmd.Flags().GetString("reply-to")
	to, _ := cmd.Flags().GetStringArray("to")
	cc, _ := cmd.Flags().GetStringArray("cc")
	bcc, _ := cmd.Flags().GetStringArray("bcc")
	subject, _ := cmd.Flags().GetString("subject")
	body, _ := cmd.Flags().GetString("body")
	useKeyring, _ := cmd.Flags().GetBool("keyring")

	input := service.EmailSetupInput{
		SMTPServer: domain.SMTPServer{Host: host, Port: port},
		Sender:     domain.EmailAccount{Name: senderName, Address: sender},
		Recipients: accounts(to),
		CC:         accounts(cc),
		BCC:        accounts(bcc),
		Template: domain.EmailTemplate{
			Subject: subject,
			Body:    body,
		},
		StoreInKeyring: useKeyring,
	}
	if replyTo != "" {
		input.ReplyTo = &domain.EmailAccount{Address: replyTo}
	}

	appPassword, err := promptSecret("Enter SMTP app-password: ")
	if err != nil {
		return service.EmailSetupInput{}, err
	}
	input.AppPassword = appPassword

	passphrase, err := crypto.PromptPassphrase(true)
	if err != nil {
		return service.EmailSetupInput{}, err
	}
	input.Passphrase = passphrase
	return input, nil
}

func accounts(addresses []string) []domain.EmailAccount {
	out := make([]domain.EmailAccount, 0, len(addresses))
	for _, addr := range addresses {
		out = append(out, domain.EmailAccount{Address: addr})
	}
	return out
}

func promptSecret(prompt string) (crypto.SecretString, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return crypto.SecretString{}, fmt.Errorf("failed to read secret: %w", err)
	}
	if len(raw) == 0 {
		return crypto.SecretString{}, fmt.Errorf("secret cannot be empty")
	}
	return crypto.NewSecretString(string(raw)), nil
}

func init() {
	emailCmd.AddCommand(emailInitCmd)
	emailCmd.AddCommand(emailValidateCmd)
	emailCmd.AddCommand(emailEditCmd)
	emailCmd.AddCommand(emailTestCmd)

	emailInitCmd.Flags().String("host", "", "SMTP server host")
	emailInitCmd.Flags().Int("port", 587, "SMTP server port")
	emailInitCmd.Flags().String("sender-name", "", "Sender display name")
	emailInitCmd.Flags().String("sender", "", "Sender email address (also the SMTP username)")
	emailInitCmd.Flags().String("reply-to", "", "Reply-to address")
	emailInitCmd.Flags().StringArray("to", nil, "Recipient address (repeatable)")
	emailInitCmd.Flags().StringArray("cc", nil, "CC address (repeatable)")
	emailInitCmd.Flags().StringArray("bcc", nil, "BCC address (repeatable)")
	emailInitCmd.Flags().String("subject", "Invoice {number}", "Subject template")
	emailInitCmd.Flags().String("body", "Please find invoice {number} for {period} attached.", "Body template")
	emailInitCmd.Flags().Bool("keyring", false, "Store the passphrase in the system keyring")
	emailInitCmd.MarkFlagRequired("host")
	emailInitCmd.MarkFlagRequired("sender")
	emailInitCmd.MarkFlagRequired("to")
}
