package access

import (
	"errors"
	"fmt"
)

var (
	ErrWeakPassword       = fmt.Errorf("password does not meet the requirements")
	ErrDuplicateUsername  = fmt.Errorf("username already exists")
	ErrDuplicateEmail     = fmt.Errorf("email already registered")
	ErrInvalidEmail       = fmt.Errorf("invalid email address")
	ErrInvalidCredentials = fmt.Errorf("incorrect username or password")
	ErrInvalidToken       = fmt.Errorf("invalid reset token")
	ErrExpiredToken       = fmt.Errorf("reset token expired")
)

// Messages shown to users. The application speaks Spanish.
const (
	MessageWeakPassword       = "La contraseña debe tener al menos 8 caracteres, una mayúscula, una minúscula y un número"
	MessageDuplicateUsername  = "Usuario ya existe"
	MessageDuplicateEmail     = "Email ya registrado"
	MessageInvalidEmail       = "Dirección de email inválida"
	MessageInvalidCredentials = "Usuario o contraseña incorrectos"
	MessageInvalidLink        = "Link inválido o expirado"

	MessageRegistered     = "Registro exitoso"
	MessageResetRequested = "Se envió un email con instrucciones"
	MessagePasswordReset  = "Contraseña actualizada"
)

// UserMessage returns the message to show for err, or an empty string when
// err is not one of the errors returned by this package.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrWeakPassword):
		return MessageWeakPassword
	case errors.Is(err, ErrDuplicateUsername):
		return MessageDuplicateUsername
	case errors.Is(err, ErrDuplicateEmail):
		return MessageDuplicateEmail
	case errors.Is(err, ErrInvalidEmail):
		return MessageInvalidEmail
	case errors.Is(err, ErrInvalidCredentials):
		return MessageInvalidCredentials
	case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrExpiredToken):
		return MessageInvalidLink
	}
	return ""
}
