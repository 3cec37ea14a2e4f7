package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Codeveil-Studio/QResolve-app/internal/application"
	"github.com/Codeveil-Studio/QResolve-app/internal/infrastructure/qrexport"
	"github.com/Codeveil-Studio/QResolve-app/pkg/helpers"
	"github.com/Codeveil-Studio/QResolve-app/pkg/response"
	"github.com/Codeveil-Studio/QResolve-app/pkg/validation"
)

type errorMapping struct {
	err      error
	status   int
	code     string
	redirect string
}

var errorTable = []errorMapping{
	{application.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", ""},
	{application.ErrAuthRequired, http.StatusUnauthorized, "unauthorized", "/login"},
	{application.ErrInvalidToken, http.StatusBadRequest, "invalid_token", ""},
	{application.ErrEmailTaken, http.StatusConflict, "email_taken", ""},
	{application.ErrForbidden, http.StatusForbidden, "forbidden", ""},
	{application.ErrAlreadyBootstrapped, http.StatusConflict, "organization_exists", "/dashboard"},
	{application.ErrMultipleMemberships, http.StatusConflict, "multiple_memberships", ""},
	{application.ErrAssetNotFound, http.StatusNotFound, "asset_not_found", ""},
	{application.ErrIssueNotFound, http.StatusNotFound, "issue_not_found", ""},
	{application.ErrMissingAssetOrganization, http.StatusUnprocessableEntity, "asset_unassigned", ""},
	{helpers.ErrPasswordTooLong, http.StatusUnprocessableEntity, "password_too_long", ""},
	{qrexport.ErrStorageDisabled, http.StatusServiceUnavailable, "storage_disabled", ""},
}

// writeError maps application errors onto the JSON envelope. Anything
// unmapped is logged and reported as a 500 without its message.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			response.Error(c, m.status, m.err.Error(), response.ErrorBody{Code: m.code, Redirect: m.redirect})
			return
		}
	}
	helpers.LogError(logger, "request failed", err, logrus.Fields{
		"path":       c.FullPath(),
		"request_id": c.GetString("request_id"),
	})
	response.Error(c, http.StatusInternalServerError, "internal server error", response.ErrorBody{Code: "internal_error"})
}

func invalidPayload(c *gin.Context, err error) {
	response.Error(c, http.StatusBadRequest, "invalid payload", response.ErrorBody{Code: "invalid_payload", Details: validation.ToDetails(err)})
}

func invalidField(c *gin.Context, field, msg string) {
	response.Error(c, http.StatusBadRequest, "invalid payload", response.ErrorBody{Code: "invalid_payload", Details: map[string]string{field: msg}})
}
