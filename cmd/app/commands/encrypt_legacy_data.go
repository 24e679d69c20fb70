package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	userDomain "github.com/allisson/piiguard/internal/user/domain"
	userUsecase "github.com/allisson/piiguard/internal/user/usecase"
)

// RunEncryptLegacyData reseals every sensitive attribute stored without a lookup digest
// and prints a report. In dry-run mode nothing is written.
//
// Requirements: Database must be migrated and ENCRYPTION_KEY must be the key the
// existing ciphertext was written with.
func RunEncryptLegacyData(
	ctx context.Context,
	useCase userUsecase.LegacyUseCase,
	logger *slog.Logger,
	w io.Writer,
	dryRun bool,
	batchSize int,
	format string,
) error {
	if batchSize < 0 {
		return fmt.Errorf("batch size must be a positive number, got: %d", batchSize)
	}
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}

	logger.Info("encrypting legacy data",
		slog.Bool("dry_run", dryRun),
		slog.Int("batch_size", batchSize),
	)

	report, err := useCase.EncryptLegacyData(ctx, userUsecase.LegacyOptions{
		DryRun:    dryRun,
		BatchSize: batchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to encrypt legacy data: %w", err)
	}

	if format == "json" {
		if err := outputLegacyJSON(w, report); err != nil {
			return err
		}
	} else {
		outputLegacyText(w, report)
	}

	logger.Info("legacy data encryption completed",
		slog.Int("fields_resealed", report.FieldsResealed),
		slog.Int("conflicts", report.Conflicts),
		slog.Bool("dry_run", dryRun),
	)

	return nil
}

func outputLegacyText(w io.Writer, report *userDomain.LegacyReport) {
	verb := "Resealed"
	if report.DryRun {
		verb = "Dry-run mode: would reseal"
	}

	_, _ = fmt.Fprintf(w, "%s %d field(s) across %d user(s) and %d profile(s)\n",
		verb, report.FieldsResealed, report.UsersResealed, report.ProfilesResealed)
	_, _ = fmt.Fprintf(w, "Scanned %d user(s) and %d profile(s), %d field(s) held plaintext\n",
		report.UsersScanned, report.ProfilesScanned, report.PlaintextFields)

	if report.Conflicts > 0 {
		_, _ = fmt.Fprintf(w, "Skipped %d record(s) with conflicting identifiers:\n", report.Conflicts)
		for _, record := range report.ConflictingRecords {
			_, _ = fmt.Fprintf(w, "  - %s\n", record)
		}
	}
}

func outputLegacyJSON(w io.Writer, report *userDomain.LegacyReport) error {
	jsonBytes, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, _ = fmt.Fprintln(w, string(jsonBytes))
	return nil
}
