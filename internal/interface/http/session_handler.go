package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Codeveil-Studio/QResolve-app/internal/application"
	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
	"github.com/Codeveil-Studio/QResolve-app/internal/interface/middleware"
	"github.com/Codeveil-Studio/QResolve-app/pkg/response"
)

type sessionView struct {
	State    *entity.SessionState   `json:"state"`
	Guard    application.GuardState `json:"guard"`
	Redirect string                 `json:"redirect,omitempty"`
}

type SessionHandler struct {
	Logger *logrus.Logger
}

func NewSessionHandler(logger *logrus.Logger) *SessionHandler {
	return &SessionHandler{Logger: logger}
}

// Get GET /api/session returns the resolved state with its guard verdict.
// A failed resolution is reported instead, so the client can tell a broken
// tenant apart from a missing one.
func (h *SessionHandler) Get(c *gin.Context) {
	if err := middleware.StateErr(c); err != nil {
		if d := application.ResolutionDenial(err); d.Status != http.StatusInternalServerError {
			response.Error(c, d.Status, d.Message, response.ErrorBody{Code: d.Code})
			return
		}
		writeError(c, h.Logger, err)
		return
	}
	st := middleware.StateFrom(c)
	g := application.Evaluate(st)
	if g == application.GuardLoading {
		c.Header("Retry-After", "1")
	}
	response.Success(c, http.StatusOK, sessionView{State: st, Guard: g, Redirect: g.Redirect()}, "session", nil)
}
