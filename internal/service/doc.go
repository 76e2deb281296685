// Package service holds the laundry use cases: registration and login,
// orders, payments, the service catalog and user administration.
//
// Services depend on the store interfaces and small ports such as
// PaymentProcessor, never on concrete infrastructure. Expected conditions
// come back as the sentinels in errors.go; infrastructure failures are
// wrapped in ServiceError and match ErrOperationFailed.
package service
