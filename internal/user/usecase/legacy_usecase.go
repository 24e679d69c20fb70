package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	apperrors "github.com/allisson/piiguard/internal/errors"
	"github.com/allisson/piiguard/internal/pii"
	"github.com/allisson/piiguard/internal/user/domain"
)

// DefaultLegacyBatchSize is used when LegacyOptions.BatchSize is not positive.
const DefaultLegacyBatchSize = 500

// LegacyOptions configures a legacy encryption run.
type LegacyOptions struct {
	// DryRun counts what would be rewritten without writing.
	DryRun    bool
	BatchSize int
}

// LegacyEncryptionUseCase reseals rows that hold plaintext or tokens without digests.
type LegacyEncryptionUseCase struct {
	repo      LegacyRepository
	protector Protector
	logger    *slog.Logger
}

// NewLegacyEncryptionUseCase creates a new LegacyEncryptionUseCase
func NewLegacyEncryptionUseCase(
	repo LegacyRepository,
	protector Protector,
	logger *slog.Logger,
) *LegacyEncryptionUseCase {
	return &LegacyEncryptionUseCase{
		repo:      repo,
		protector: protector,
		logger:    logger,
	}
}

type listFunc func(ctx context.Context, afterID uuid.UUID, limit int) ([]*domain.LegacyRecord, error)

// EncryptLegacyData walks users then profiles in id order and reseals every attribute
// that has a value but no digest. A record whose new digest collides with another row
// is reported and skipped; encryption and database failures abort the run.
func (uc *LegacyEncryptionUseCase) EncryptLegacyData(
	ctx context.Context,
	opts LegacyOptions,
) (*domain.LegacyReport, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultLegacyBatchSize
	}

	report := &domain.LegacyReport{DryRun: opts.DryRun}

	tables := []struct {
		name     string
		list     listFunc
		scanned  *int
		resealed *int
	}{
		{pii.TableUsers, uc.repo.ListUsersMissingHashes, &report.UsersScanned, &report.UsersResealed},
		{pii.TableProfiles, uc.repo.ListProfilesMissingHashes, &report.ProfilesScanned, &report.ProfilesResealed},
	}

	for _, table := range tables {
		afterID := uuid.Nil
		for {
			records, err := table.list(ctx, afterID, opts.BatchSize)
			if err != nil {
				return nil, err
			}

			for _, record := range records {
				afterID = record.ID
				*table.scanned++

				ok, err := uc.reseal(ctx, record, opts.DryRun, report)
				if err != nil {
					return nil, err
				}
				if ok {
					*table.resealed++
				}
			}

			if len(records) < opts.BatchSize {
				break
			}
		}

		uc.logger.InfoContext(ctx, "legacy encryption pass finished",
			slog.String("table", table.name),
			slog.Int("scanned", *table.scanned),
			slog.Int("resealed", *table.resealed),
			slog.Bool("dry_run", opts.DryRun),
		)
	}

	return report, nil
}

// reseal opens and reseals every attribute of record and writes them back. It returns
// false when the write was skipped because of a uniqueness conflict.
func (uc *LegacyEncryptionUseCase) reseal(
	ctx context.Context,
	record *domain.LegacyRecord,
	dryRun bool,
	report *domain.LegacyReport,
) (bool, error) {
	resealed := make([]domain.ResealedAttribute, 0, len(record.Attributes))
	plaintext := 0

	for _, attr := range record.Attributes {
		opened, err := uc.protector.Open(ctx, attr.Kind, attr.Value)
		if err != nil {
			return false, err
		}
		if opened.Legacy {
			plaintext++
		}

		sealed, err := uc.protector.Seal(ctx, attr.Kind, opened.Value)
		if err != nil {
			return false, err
		}
		resealed = append(resealed, domain.ResealedAttribute{Kind: attr.Kind, Sealed: sealed})
	}

	if !dryRun {
		err := uc.repo.Reseal(ctx, record.Table, record.ID, resealed)
		if apperrors.Is(err, apperrors.ErrConflict) {
			report.Conflicts++
			report.ConflictingRecords = append(report.ConflictingRecords, record.Table+":"+record.ID.String())
			uc.logger.WarnContext(ctx, "skipping record with conflicting identifier",
				slog.String("table", record.Table),
				slog.String("id", record.ID.String()),
				slog.Any("error", err),
			)
			return false, nil
		}
		if err != nil {
			return false, err
		}
	}

	report.PlaintextFields += plaintext
	report.FieldsResealed += len(resealed)
	return true, nil
}
