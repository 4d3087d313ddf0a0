package validator

import (
	"liora/pkg/logger"
	"liora/pkg/model"
	"liora/pkg/sanitizer"
	"liora/pkg/validator"
)

type UserValidator struct {
	validate *validator.Validator
	logger   *logger.Logger
}

func NewUserValidator(log *logger.Logger) *UserValidator {
	return &UserValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *UserValidator) ValidateRegister(req *model.RegisterRequest) error {
	if err := v.validate.Struct(req); err != nil {
		v.logger.Debug("Register validation failed", "error", err)
		return err
	}
	return nil
}

func (v *UserValidator) ValidateLogin(req *model.LoginRequest) error {
	return v.validate.Struct(req)
}

func (v *UserValidator) ValidateProfileUpdate(upd *model.ProfileUpdate) error {
	if err := v.validate.Struct(upd); err != nil {
		return err
	}
	if upd.Avatar != nil && *upd.Avatar != "" && sanitizer.NormalizeImageURL(*upd.Avatar) == "" {
		return validator.Field("avatar", "avatar must be an http(s) URL or an upload path")
	}
	return nil
}

func (v *UserValidator) ValidateWishlistToggle(req *model.WishlistToggleRequest) error {
	return v.validate.Struct(req)
}
