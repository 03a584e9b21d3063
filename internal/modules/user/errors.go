package user

import "github.com/samber/oops"

const (
	CodeUserNotFound = "USER_NOT_FOUND"
	CodeEmailTaken   = "EMAIL_TAKEN"
)

func errNotFound(key, value string) error {
	return oops.In("user").
		Code(CodeUserNotFound).
		With(key, value).
		Errorf("this user does not exist")
}
