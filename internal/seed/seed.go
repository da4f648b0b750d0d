package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	appModels "github.com/zigatrcek/openacademy/internal/app/models"
	appRepos "github.com/zigatrcek/openacademy/internal/app/repositories"
	"github.com/zigatrcek/openacademy/internal/config"
	"github.com/zigatrcek/openacademy/internal/db"
	"github.com/zigatrcek/openacademy/internal/pkg/apperrors"
	"github.com/zigatrcek/openacademy/internal/pkg/auth"
)

// CreateDefaultData creates the Teacher partner category and the admin user if they don't exist.
// Each step runs independently; failures are collected and returned together.
func CreateDefaultData(ctx context.Context, pool db.Querier, cfg *config.Config, lgr zerolog.Logger) error {
	partnerRepo := appRepos.NewPartnerRepository(pool)
	userRepo := appRepos.NewUserRepository(pool)

	lgr.Info().Msg("Checking/Creating default data (partner categories, admin user)...")
	var finalErr error

	categoryID, err := partnerRepo.EnsureCategory(ctx, appModels.TeacherCategory)
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating Teacher partner category")
		finalErr = errors.Join(finalErr, err)
	} else {
		lgr.Debug().Int64("categoryId", categoryID).Msg("Teacher partner category present")
	}

	if err := createAdmin(ctx, userRepo, cfg, lgr); err != nil {
		lgr.Error().Err(err).Msg("Error creating admin user")
		finalErr = errors.Join(finalErr, err)
	}

	if finalErr == nil {
		lgr.Info().Msg("Default data check/creation completed.")
	}
	return finalErr
}

func createAdmin(ctx context.Context, users *appRepos.UserRepository, cfg *config.Config, lgr zerolog.Logger) error {
	login := cfg.Seed.AdminLogin

	_, err := users.GetByLogin(ctx, login)
	if err == nil {
		lgr.Debug().Str("login", login).Msg("Admin user already exists")
		return nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return err
	}

	hashed, err := auth.HashPassword(cfg.Seed.AdminPassword)
	if err != nil {
		return err
	}

	admin := &appModels.User{Name: "Administrator", Login: login, Password: hashed}
	if err := users.Create(ctx, admin); err != nil && !errors.Is(err, apperrors.ErrResourceAlreadyExists) {
		return err
	}

	lgr.Info().Str("login", login).Msg("Admin user created")
	return nil
}
