package account

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"
)

// Passphrase returns configured when set, otherwise asks on the terminal.
func Passphrase(name, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	prompt := promptui.Prompt{
		Label: fmt.Sprintf("Enter passphrase to unlock %q", name),
		Mask:  '*',
	}
	value, err := prompt.Run()
	if err != nil {
		return "", errors.Wrap(err, "passphrase prompt aborted")
	}

	return value, nil
}

// NewPassphrase asks twice and requires both entries to match.
func NewPassphrase(name string) (string, error) {
	first, err := (&promptui.Prompt{
		Label: fmt.Sprintf("Create passphrase for %q", name),
		Mask:  '*',
	}).Run()
	if err != nil {
		return "", errors.Wrap(err, "passphrase prompt aborted")
	}

	second, err := (&promptui.Prompt{
		Label: "Repeat passphrase",
		Mask:  '*',
		Validate: func(input string) error {
			if input != first {
				return errors.New("passphrases do not match")
			}
			return nil
		},
	}).Run()
	if err != nil {
		return "", errors.Wrap(err, "passphrase prompt aborted")
	}

	return second, nil
}

func Mnemonic() (string, error) {
	value, err := (&promptui.Prompt{
		Label: "Enter mnemonic seed phrase",
		Mask:  '*',
	}).Run()
	if err != nil {
		return "", errors.Wrap(err, "mnemonic prompt aborted")
	}

	return strings.TrimSpace(value), nil
}
