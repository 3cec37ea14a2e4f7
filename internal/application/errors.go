package application

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrAuthRequired       = errors.New("authentication required")
	ErrForbidden          = errors.New("forbidden")

	ErrAlreadyBootstrapped = errors.New("account already belongs to an organization")
	ErrOrganizationMissing = errors.New("membership references a missing organization")
	ErrMultipleMemberships = errors.New("account belongs to more than one organization")

	ErrAssetNotFound            = errors.New("asset not found")
	ErrIssueNotFound            = errors.New("issue not found")
	ErrMissingAssetOrganization = errors.New("asset is not linked to an organization")
)
