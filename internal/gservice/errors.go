package gservice

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

var (
	// ErrAPIDisabled means the Gmail API is not enabled for the OAuth client's project.
	ErrAPIDisabled = errors.New("gmail api is not enabled")
	// ErrInsufficientPermission means the granted scopes do not cover the operation.
	ErrInsufficientPermission = errors.New("insufficient permission")
	// ErrNotFound means the message does not exist (anymore).
	ErrNotFound = errors.New("message not found")
)

// classify maps a provider error onto the package taxonomy. Unknown errors are
// returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		for _, item := range apiErr.Errors {
			switch item.Reason {
			case "accessNotConfigured", "SERVICE_DISABLED":
				return fmt.Errorf("%w: %w", ErrAPIDisabled, err)
			case "insufficientPermissions", "ACCESS_TOKEN_SCOPE_INSUFFICIENT":
				return fmt.Errorf("%w: %w", ErrInsufficientPermission, err)
			case "notFound":
				return fmt.Errorf("%w: %w", ErrNotFound, err)
			}
		}
		if apiErr.Code == http.StatusNotFound {
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "accessnotconfigured"),
		strings.Contains(msg, "has not been used in project"):
		return fmt.Errorf("%w: %w", ErrAPIDisabled, err)
	case strings.Contains(msg, "insufficientpermissions"),
		strings.Contains(msg, "insufficient authentication scopes"),
		strings.Contains(msg, "insufficient permission"):
		return fmt.Errorf("%w: %w", ErrInsufficientPermission, err)
	}

	return err
}
