package product

import (
	"github.com/georgemunganga/pulse-backend/pkg/errutil"
	"github.com/samber/oops"
)

const CodeProductNotFound = "PRODUCT_NOT_FOUND"

func errNotFound(storeID, id string) error {
	return oops.In("product").
		Code(CodeProductNotFound).
		With("store_id", storeID).
		With("product_id", id).
		Errorf("product not found")
}

func errInvalid(format string, args ...any) error {
	return oops.In("product").
		Code(errutil.CodeInvalidInput).
		Errorf(format, args...)
}
