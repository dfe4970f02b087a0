package validator

import (
	"log"

	"github.com/go-playground/validator/v10"

	"fitshop_backend/internal/imageprocessor"
	"fitshop_backend/internal/models"
)

func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-order-status", validateOrderStatus)
	mustRegister("is-video-status", validateVideoStatus)
	mustRegister("is-media-mode", validateMediaMode)
	mustRegister("base64-image", validateBase64Image)
}

// Empty values pass; 'required' covers them.

func validateOrderStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.OrderStatus(value).IsValid()
}

func validateVideoStatus(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.CanInt() {
		return models.VideoStatus(field.Int()).IsValid()
	}
	return false
}

func validateMediaMode(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, ok := imageprocessor.ParseMode(value)
	return ok
}

func validateBase64Image(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := imageprocessor.DecodeBase64Image(value)
	return err == nil
}
