package auth

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type RegisterRequest struct {
	Username string `validate:"required,alphanum,min=3,max=20"`
	Password string `validate:"required,min=6,max=72"`
	Avatar   string `validate:"omitempty,url"`
}

type AvatarRequest struct {
	Avatar string `validate:"required,url"`
}

func ValidateRegister(req RegisterRequest) error {
	return validate.Struct(req)
}

func ValidateAvatar(req AvatarRequest) error {
	return validate.Struct(req)
}
