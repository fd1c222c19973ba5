package entity

import "fmt"

func validationError(msg string) error {
	return fmt.Errorf("validation failed: %s", msg)
}
