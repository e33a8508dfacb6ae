package auth

import "fmt"

type (
	AlreadyRegistered struct {
		Email string
	}

	// InvalidCredentials is the only failure login reports, an unknown email
	// and a wrong password look exactly the same to the caller.
	InvalidCredentials struct{}

	Unauthenticated struct {
		Reason string
	}

	UserNotFound struct {
		Email string
	}

	InvalidHashFormat struct {
		Reason string
	}
)

func (a AlreadyRegistered) Error() string {
	return fmt.Sprintf("user %v is already registered", a.Email)
}

func (AlreadyRegistered) Is(target error) bool {
	_, ok := target.(AlreadyRegistered)
	return ok
}

func (InvalidCredentials) Error() string {
	return "invalid login or password"
}

func (u Unauthenticated) Error() string {
	if u.Reason == "" {
		return "unauthenticated"
	}
	return fmt.Sprintf("unauthenticated: %v", u.Reason)
}

func (Unauthenticated) Is(target error) bool {
	_, ok := target.(Unauthenticated)
	return ok
}

func (u UserNotFound) Error() string {
	return fmt.Sprintf("user %v not found", u.Email)
}

func (UserNotFound) Is(target error) bool {
	_, ok := target.(UserNotFound)
	return ok
}

func (i InvalidHashFormat) Error() string {
	return fmt.Sprintf("invalid password hash: %v", i.Reason)
}

func (InvalidHashFormat) Is(target error) bool {
	_, ok := target.(InvalidHashFormat)
	return ok
}
