package controller

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/haeksim/noonsongi/common/config"
	"github.com/haeksim/noonsongi/common/helper"
	"github.com/haeksim/noonsongi/common/logger"
	"github.com/haeksim/noonsongi/middleware"
	"github.com/haeksim/noonsongi/model"
	relaymodel "github.com/haeksim/noonsongi/relay/model"
	"github.com/haeksim/noonsongi/service"
	"github.com/haeksim/noonsongi/view"
)

var (
	sessionStore *model.SessionStore
	generator    *service.Generator
)

// SetupSessions binds the handlers to a session store and a generator. It must be
// called before the router serves any request.
func SetupSessions(store *model.SessionStore, gen *service.Generator) {
	sessionStore = store
	generator = gen
}

func currentSession(c *gin.Context) *model.Session {
	return sessionStore.GetOrCreate(middleware.GetSessionId(c))
}

func renderData(state model.SessionState) gin.H {
	screen := view.Select(state)
	return gin.H{
		"Screen":    screen,
		"ScreenKey": screen.Key(),
		"ResultURL": screen.ResultURL(config.BaseURL),
		"IsVideo":   screen.IsVideo(),
	}
}

func GetIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", renderData(currentSession(c).Snapshot()))
}

// readPayload reads the prompt and the optional file of a multipart or url-encoded form.
func readPayload(c *gin.Context) (*relaymodel.Payload, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, config.MaxAttachmentSize+(1<<20))

	// the file is read first so an oversized body is reported as such
	fh, err := c.FormFile("file")
	payload := &relaymodel.Payload{Prompt: strings.TrimSpace(c.PostForm("prompt"))}
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr), strings.Contains(err.Error(), "request body too large"):
			return payload, relaymodel.ErrFileTooLarge
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return payload, nil
		}
		return payload, err
	}
	// browsers send an empty part when no file was chosen
	if fh.Filename == "" && fh.Size == 0 {
		return payload, nil
	}
	if fh.Size > config.MaxAttachmentSize {
		return payload, relaymodel.ErrFileTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return payload, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return payload, err
	}
	payload.File = relaymodel.NewAttachment(fh.Filename, data)
	return payload, nil
}

// submit starts a run for the current session. The run outlives the request, so it
// only inherits the request's values.
func submit(c *gin.Context) (*model.Session, error) {
	sess := currentSession(c)
	payload, err := readPayload(c)
	if err != nil {
		rejectSubmission(c, sess, payload, err, true)
		return sess, err
	}
	if err := generator.Start(context.WithoutCancel(c.Request.Context()), sess, payload); err != nil {
		// Start alerts its own validation errors
		rejectSubmission(c, sess, payload, err, !relaymodel.IsValidationError(err))
		return sess, err
	}
	logger.Infof(c.Request.Context(), "session %s submitted", sess.ID())
	return sess, nil
}

// rejectSubmission keeps what the user typed for the next attempt. An empty prompt,
// as from a body cut short by the size limit, leaves the saved draft alone.
func rejectSubmission(c *gin.Context, sess *model.Session, payload *relaymodel.Payload, err error, alert bool) {
	if payload != nil && payload.Prompt != "" {
		sess.SetPrompt(payload.Prompt)
	}
	if alert {
		sess.Alert(service.AlertMessage(err))
	}
	logger.Warnf(c.Request.Context(), "submission of session %s rejected: %s", sess.ID(), err.Error())
}

func Submit(c *gin.Context) {
	_, _ = submit(c)
	c.Redirect(http.StatusSeeOther, "/")
}

func Reset(c *gin.Context) {
	currentSession(c).Reset()
	c.Redirect(http.StatusSeeOther, "/")
}

func sessionResponse(state model.SessionState) gin.H {
	return gin.H{
		"state":  state,
		"screen": view.Select(state),
	}
}

func GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "",
		"data":    sessionResponse(currentSession(c).Snapshot()),
	})
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

func UpdatePrompt(c *gin.Context) {
	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": helper.MessageWithRequestId("invalid request: "+err.Error(), c.GetString(logger.RequestIdKey)),
		})
		return
	}
	sess := currentSession(c)
	sess.SetPrompt(req.Prompt)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "",
		"data":    sessionResponse(sess.Snapshot()),
	})
}

func ApiSubmit(c *gin.Context) {
	sess, err := submit(c)
	if err != nil {
		status := http.StatusBadGateway
		if relaymodel.IsValidationError(err) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{
			"success": false,
			"message": helper.MessageWithRequestId(service.AlertMessage(err), c.GetString(logger.RequestIdKey)),
		})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "",
		"data":    sessionResponse(sess.Snapshot()),
	})
}

func ApiReset(c *gin.Context) {
	sess := currentSession(c)
	sess.Reset()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "",
		"data":    sessionResponse(sess.Snapshot()),
	})
}

func DismissAlert(c *gin.Context) {
	// an unknown session has no alert to dismiss
	if sess, ok := sessionStore.Get(middleware.GetSessionId(c)); ok {
		sess.DismissAlert()
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "",
	})
}
