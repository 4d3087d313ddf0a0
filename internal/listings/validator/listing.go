package validator

import (
	"liora/pkg/logger"
	"liora/pkg/model"
	"liora/pkg/sanitizer"
	"liora/pkg/validator"
)

type ListingValidator struct {
	validate *validator.Validator
	logger   *logger.Logger
}

func NewListingValidator(log *logger.Logger) *ListingValidator {
	return &ListingValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *ListingValidator) Validate(input *model.ListingInput) error {
	if err := v.validate.Struct(input); err != nil {
		return err
	}
	return validateImages(input.Images)
}

func (v *ListingValidator) ValidateUpdate(upd *model.ListingUpdate) error {
	if err := v.validate.Struct(upd); err != nil {
		return err
	}
	return validateImages(upd.Images)
}

func validateImages(images []string) error {
	for _, img := range images {
		if sanitizer.NormalizeImageURL(img) == "" {
			return validator.Field("images", "images must be http(s) URLs or upload paths")
		}
	}
	return nil
}
