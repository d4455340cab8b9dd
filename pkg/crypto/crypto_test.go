package crypto

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plaintext := "imap-password-123"

	encrypted, err := Encrypt(plaintext, testKey)
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	if encrypted == plaintext {
		t.Error("ciphertext equals plaintext")
	}

	decrypted, err := Decrypt(encrypted, testKey)
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}
	if decrypted != plaintext {
		t.Errorf("Decrypt() = %q, want %q", decrypted, plaintext)
	}
}

func TestDecryptWrongKey(t *testing.T) {
	encrypted, err := Encrypt("secret", testKey)
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	if _, err := Decrypt(encrypted, "ffffffffffffffffffffffffffffffff"); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("Decrypt with wrong key: err = %v, want ErrDecryptionFailed", err)
	}
}

func TestDecryptGarbage(t *testing.T) {
	if _, err := Decrypt("not base64 !!!", testKey); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("err = %v, want ErrDecryptionFailed", err)
	}
	if _, err := Decrypt("c2hvcnQ=", testKey); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("err = %v, want ErrDecryptionFailed", err)
	}
}

func TestEncryptIsNonDeterministic(t *testing.T) {
	a, _ := Encrypt("same input", testKey)
	b, _ := Encrypt("same input", testKey)
	if a == b {
		t.Error("two encryptions of the same input produced identical ciphertexts")
	}
}

func TestProperty_RoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("decrypt(encrypt(x)) == x", prop.ForAll(
		func(plaintext string) bool {
			encrypted, err := Encrypt(plaintext, testKey)
			if err != nil {
				return false
			}
			decrypted, err := Decrypt(encrypted, testKey)
			return err == nil && decrypted == plaintext
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
