package store

import (
	"github.com/georgemunganga/pulse-backend/internal/modules/access"
	"github.com/georgemunganga/pulse-backend/pkg/errutil"
	"github.com/samber/oops"
)

const (
	CodeStoreNotFound  = "STORE_NOT_FOUND"
	CodeMemberNotFound = "MEMBER_NOT_FOUND"
	CodeUserNotFound   = "USER_NOT_FOUND"
	CodeMemberExists   = "MEMBER_EXISTS"
	CodeOwnerImmutable = "OWNER_IMMUTABLE"
)

func errStoreNotFound(id string) error {
	return oops.In("store").
		Code(CodeStoreNotFound).
		With("store_id", id).
		Errorf("store not found")
}

func errForbidden(storeID, actorID string, perms ...access.Permission) error {
	return oops.In("store").
		Code(errutil.CodeForbidden).
		With("store_id", storeID).
		With("actor_id", actorID).
		With("permissions", perms).
		Errorf("you are not allowed to do that in this store")
}

func errInvalid(format string, args ...any) error {
	return oops.In("store").
		Code(errutil.CodeInvalidInput).
		Errorf(format, args...)
}

func errMemberExists(storeID, email string) error {
	return oops.In("store").
		Code(CodeMemberExists).
		With("store_id", storeID).
		With("email", email).
		Errorf("this user already exists in your store")
}

func errOwnerImmutable(storeID string) error {
	return oops.In("store").
		Code(CodeOwnerImmutable).
		With("store_id", storeID).
		Errorf("the store owner cannot be removed")
}
