package usecase

import (
	"context"
	"net/http"

	"go-contactform-backend/internal/composer"
	"go-contactform-backend/internal/domain"
	"go-contactform-backend/pkg/logger"
)

type contactUsecase struct {
	composerCfg composer.Config
}

// NewContactUsecase creates a new contact usecase. The composer config
// carries the recipient list, templates, transport and any validator
// extensions (spam check, challenge verification).
func NewContactUsecase(composerCfg composer.Config) domain.ContactUsecase {
	return &contactUsecase{
		composerCfg: composerCfg,
	}
}

// SendContactMessage validates the submission and dispatches the
// rendered message. Each call builds a fresh composer; one composer
// handles exactly one submission.
func (uc *contactUsecase) SendContactMessage(ctx context.Context, r *http.Request, fields *domain.SubmittedFields) error {
	comp, err := composer.New(uc.composerCfg, fields, r, nil)
	if err != nil {
		return err
	}

	if err := comp.Validate(ctx); err != nil {
		return err
	}

	if err := comp.Dispatch(false); err != nil {
		logger.Log.Error("Contact message dispatch failed", "error", err)
		return err
	}

	logger.Log.Info("Contact message sent",
		"recipients", len(uc.composerCfg.Recipients),
		"extensions", len(uc.composerCfg.Extensions))
	return nil
}
