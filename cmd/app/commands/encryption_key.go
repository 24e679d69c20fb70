package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	"github.com/awnumar/memguard"

	cryptoDomain "github.com/allisson/piiguard/internal/crypto/domain"
	cryptoService "github.com/allisson/piiguard/internal/crypto/service"
)

// RunCreateEncryptionKey generates a random 32-byte attribute encryption key and prints
// it as environment variables. When kmsKeyURI is set the key is wrapped by the KMS and
// the printed value is the base64 KMS ciphertext, to be used with ENCRYPTION_KEY_KMS_URI.
// The raw key is wiped from memory before returning.
func RunCreateEncryptionKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	w io.Writer,
	kmsKeyURI string,
) error {
	key := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate encryption key: %w", err)
	}
	defer memguard.WipeBytes(key)

	if kmsKeyURI == "" {
		logger.Info("generated plain encryption key")

		_, _ = fmt.Fprintln(w, "# Attribute encryption key")
		_, _ = fmt.Fprintln(w, "# Copy this variable to your .env file or secrets manager")
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintf(w, "ENCRYPTION_KEY=\"%s\"\n", base64.StdEncoding.EncodeToString(key))
		return nil
	}

	if kmsService == nil {
		return fmt.Errorf("kms service is required when --kms-key-uri is set")
	}

	keeper, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			logger.Error("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	ciphertext, err := keeper.Encrypt(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to encrypt encryption key with KMS: %w", err)
	}

	logger.Info("generated KMS wrapped encryption key")

	_, _ = fmt.Fprintln(w, "# Attribute encryption key (KMS mode)")
	_, _ = fmt.Fprintln(w, "# Copy these variables to your .env file or secrets manager")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "ENCRYPTION_KEY_KMS_URI=\"%s\"\n", kmsKeyURI)
	_, _ = fmt.Fprintf(w, "ENCRYPTION_KEY=\"%s\"\n", base64.StdEncoding.EncodeToString(ciphertext))

	return nil
}
