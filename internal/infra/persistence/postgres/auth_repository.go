package postgres

import (
	"context"

	"whisper/internal/domain/entity"
	domainerrors "whisper/internal/domain/errors"
	"whisper/internal/domain/repository"
	"whisper/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// authRepository implements the domain.AuthRepository interface.
type authRepository struct {
	db *gorm.DB
}

// NewAuthRepository is the constructor for authRepository.
func NewAuthRepository(db *gorm.DB) repository.AuthRepository {
	return &authRepository{db: db}
}

// CreateAuthentication persists a new authentication method record.
// A uniqueness violation on (provider, subject_id) maps to ErrAuthConflict
// so callers can retry as a lookup instead of failing the login.
func (repo *authRepository) CreateAuthentication(ctx context.Context, auth *entity.Authentication) error {
	authM := fromAuthenticationDomain(auth)

	if err := repo.db.WithContext(ctx).Create(authM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrAuthConflict
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrAccountCreationFailed.WrapMessage("invalid account reference")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrAccountCreationFailed.WrapMessage("missing required authentication information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create authentication")
	}

	auth.ID = authM.ID
	auth.CreatedAt = authM.CreatedAt

	return nil
}

// FindAuthentication retrieves an authentication record by its provider and
// provider-specific subject ID.
func (repo *authRepository) FindAuthentication(ctx context.Context, provider entity.Provider, subjectID string) (*entity.Authentication, error) {
	var authM model.AuthenticationModel
	err := repo.db.WithContext(ctx).
		Where("provider = ? AND subject_id = ?", string(provider), subjectID).
		First(&authM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAuthNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toAuthenticationDomain(&authM), nil
}

// ListAuthenticationsByAccountID returns all authentication methods linked to an account.
func (repo *authRepository) ListAuthenticationsByAccountID(ctx context.Context, accountID uuid.UUID) ([]*entity.Authentication, error) {
	var authModels []*model.AuthenticationModel
	err := repo.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Find(&authModels).Error
	if err != nil {
		return nil, errors.WithStack(err)
	}

	authentications := make([]*entity.Authentication, 0, len(authModels))
	for _, authM := range authModels {
		authentications = append(authentications, toAuthenticationDomain(authM))
	}

	return authentications, nil
}

// --- Mapper Functions ---

// toAuthenticationDomain converts a GORM AuthenticationModel to a domain Authentication entity.
func toAuthenticationDomain(data *model.AuthenticationModel) *entity.Authentication {
	if data == nil {
		return nil
	}

	return &entity.Authentication{
		ID:           data.ID,
		AccountID:    data.AccountID,
		Provider:     entity.Provider(data.Provider),
		SubjectID:    data.SubjectID,
		PasswordHash: data.PasswordHash,
		CreatedAt:    data.CreatedAt,
	}
}

// fromAuthenticationDomain converts a domain Authentication entity to a GORM AuthenticationModel.
func fromAuthenticationDomain(data *entity.Authentication) *model.AuthenticationModel {
	if data == nil {
		return nil
	}

	return &model.AuthenticationModel{
		ID:           data.ID,
		AccountID:    data.AccountID,
		Provider:     string(data.Provider),
		SubjectID:    data.SubjectID,
		PasswordHash: data.PasswordHash,
	}
}
