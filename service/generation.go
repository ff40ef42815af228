package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/haeksim/noonsongi/common"
	"github.com/haeksim/noonsongi/common/config"
	"github.com/haeksim/noonsongi/common/logger"
	"github.com/haeksim/noonsongi/model"
	"github.com/haeksim/noonsongi/relay/channel/haeksim"
	relaycontroller "github.com/haeksim/noonsongi/relay/controller"
	relaymodel "github.com/haeksim/noonsongi/relay/model"
)

// Generator runs the submit and poll workflow on behalf of a session. The session
// owns the run's lifetime; the generator only reports back into it.
type Generator struct {
	Adaptor relaycontroller.Adaptor
	Options relaycontroller.PollOptions
}

func NewGenerator(adaptor relaycontroller.Adaptor) *Generator {
	return &Generator{Adaptor: adaptor, Options: relaycontroller.DefaultPollOptions()}
}

// NewDefaultGenerator binds a generator to config.BaseURL through the relay http client.
func NewDefaultGenerator() (*Generator, error) {
	client, err := GetRelayHttpClient()
	if err != nil {
		return nil, err
	}
	return NewGenerator(haeksim.NewAdaptor(config.BaseURL, client)), nil
}

// Start validates payload, cancels any earlier run of sess and schedules a new one.
// A rejected payload is alerted on the session and returned; nothing is sent.
func (g *Generator) Start(ctx context.Context, sess *model.Session, payload *relaymodel.Payload) error {
	runCtx, generation, err := sess.Begin(ctx, payload, g.Options.Rules)
	if err != nil {
		if relaymodel.IsValidationError(err) {
			sess.Alert(AlertMessage(err))
		}
		return err
	}
	common.PollCtxGo(runCtx, func() {
		g.run(runCtx, sess, generation, payload)
	})
	return nil
}

// ErrRunCrashed is reported to the user when a run panics.
var ErrRunCrashed = errors.New("generation stopped unexpectedly")

func (g *Generator) run(ctx context.Context, sess *model.Session, generation uint64, payload *relaymodel.Payload) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf(ctx, "run of session %s panicked: %v", sess.ID(), r)
			sess.Fail(generation, AlertMessage(fmt.Errorf("%w: %v", ErrRunCrashed, r)))
		}
	}()
	opts := g.Options
	opts.OnSubmitted = func(taskID string) {
		sess.SetTaskID(generation, taskID)
	}
	opts.OnPoll = func(attempt int, status haeksim.TaskStatus) {
		sess.RecordPoll(generation, attempt)
	}

	outcome, err := relaycontroller.SubmitAndPoll(ctx, g.Adaptor, payload, opts)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logger.Infof(ctx, "run of session %s stopped: %s", sess.ID(), err.Error())
			return
		}
		logger.Warnf(ctx, "run of session %s failed: %s", sess.ID(), err.Error())
		sess.Fail(generation, AlertMessage(err))
		return
	}
	if outcome.TaskID != "" {
		sess.SetTaskID(generation, outcome.TaskID)
	}
	sess.Complete(generation, outcome.Result)
}

// AlertMessage turns a workflow error into the text shown to the user.
func AlertMessage(err error) string {
	var failed *relaycontroller.TaskFailedError
	var status *relaymodel.ErrorWithStatusCode
	switch {
	case err == nil:
		return ""
	case relaymodel.IsValidationError(err):
		return err.Error()
	case errors.As(err, &failed):
		return "Generation failed: " + failed.Error()
	case errors.As(err, &status):
		if status.Detail.Message != "" {
			return "Request failed: " + status.Detail.Message
		}
		return "Request failed: " + status.Error()
	case errors.Is(err, relaycontroller.ErrEmptyResult), errors.Is(err, relaycontroller.ErrNoTaskID):
		return "Generation failed: " + err.Error()
	}
	return "Request failed: " + err.Error()
}
