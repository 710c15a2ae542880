package config

import (
	"errors"
)

var (
	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("config webserver.port listening port can not be 0")

	// ErrUnknownStoreDriver error if store.driver is not one of the supported drivers.
	ErrUnknownStoreDriver = errors.New("config store.driver is not supported")

	// ErrPresignExpiryTooLong error if the presign expiry exceeds what S3 accepts.
	ErrPresignExpiryTooLong = errors.New("config upload.presignExpiry can not exceed 7 days")
)
