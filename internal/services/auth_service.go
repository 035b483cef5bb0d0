package services

import "golang.org/x/crypto/bcrypt"

type AuthService interface {
	HashPassword(plain string) (string, error)
	CheckPassword(hash, plain string) error
}

type authService struct{}

func NewAuthService() AuthService {
	return &authService{}
}

func (a *authService) HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (a *authService) CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
