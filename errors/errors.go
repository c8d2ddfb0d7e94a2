package errors

import "fmt"

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrMessageNotFound    = fmt.Errorf("message not found")
	ErrInvalidToken       = fmt.Errorf("invalid token")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrEmptyReply         = fmt.Errorf("responder returned an empty reply")
)
