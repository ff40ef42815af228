package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/haeksim/noonsongi/common/config"
	"github.com/haeksim/noonsongi/common/logger"
	"github.com/haeksim/noonsongi/relay/channel/haeksim"
	"github.com/haeksim/noonsongi/relay/model"
)

// ErrNoTaskID means the service accepted a submission but named no task and no result.
var ErrNoTaskID = errors.New("generation service returned no task id")

var ErrEmptyResult = errors.New("task completed without a result")

// Adaptor is the part of the transport client the workflow needs.
type Adaptor interface {
	SubmitJob(ctx context.Context, payload *model.Payload) (*haeksim.GenerateResponse, error)
	GetStatus(ctx context.Context, taskID string) (*haeksim.StatusResponse, error)
}

// TaskFailedError carries the message of a task that ended in the failed state.
type TaskFailedError struct {
	TaskID  string
	Message string
}

func (e *TaskFailedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("task %s failed", e.TaskID)
	}
	return e.Message
}

// Outcome is the single successful end of one task.
type Outcome struct {
	TaskID   string
	Result   string
	Attempts int
}

type PollOptions struct {
	Interval time.Duration
	Rules    model.Rules

	OnSubmitted func(taskID string)
	OnPoll      func(attempt int, status haeksim.TaskStatus)
}

func DefaultPollOptions() PollOptions {
	return PollOptions{
		Interval: config.PollInterval,
		Rules:    model.DefaultRules(),
	}
}

// SubmitAndPoll drives one job from submission to its terminal status. It returns the
// result on completion, a *TaskFailedError on a failed task, and any transport error as
// is. Nothing is retried. Cancelling ctx stops the loop and returns ctx.Err().
func SubmitAndPoll(ctx context.Context, adaptor Adaptor, payload *model.Payload, opts PollOptions) (*Outcome, error) {
	if err := payload.Validate(opts.Rules); err != nil {
		return nil, err
	}
	if opts.Interval <= 0 {
		opts.Interval = config.PollInterval
	}
	if opts.Interval <= 0 {
		opts.Interval = config.DefaultPollInterval
	}

	submitted, err := adaptor.SubmitJob(ctx, payload)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.Errorf(ctx, "submit failed: %s", err.Error())
		return nil, err
	}

	taskID := submitted.TaskID
	if taskID == "" {
		if submitted.Response != "" {
			logger.Infof(ctx, "generation answered synchronously: %s", submitted.Response)
			return &Outcome{Result: submitted.Response}, nil
		}
		return nil, ErrNoTaskID
	}
	logger.Infof(ctx, "task submitted: task_id=%s", taskID)
	if opts.OnSubmitted != nil {
		opts.OnSubmitted(taskID)
	}

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			logger.Infof(ctx, "polling cancelled: task_id=%s", taskID)
			return nil, ctx.Err()
		case <-ticker.C:
		}
		// a tick and a cancellation can be ready together
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		statusResp, err := adaptor.GetStatus(ctx, taskID)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logger.Errorf(ctx, "status check failed: task_id=%s, attempt=%d, error=%s", taskID, attempt, err.Error())
			return nil, fmt.Errorf("task %s: %w", taskID, err)
		}

		status, err := haeksim.NormalizeStatus(statusResp.Status)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", taskID, err)
		}
		if opts.OnPoll != nil {
			opts.OnPoll(attempt, status)
		}

		if !status.IsTerminal() {
			logger.Debugf(ctx, "task pending: task_id=%s, attempt=%d", taskID, attempt)
			continue
		}
		switch status {
		case haeksim.TaskStatusCompleted:
			if statusResp.Result == "" {
				return nil, ErrEmptyResult
			}
			logger.Infof(ctx, "task completed: task_id=%s, attempts=%d", taskID, attempt)
			return &Outcome{TaskID: taskID, Result: statusResp.Result, Attempts: attempt}, nil
		default:
			logger.Warnf(ctx, "task failed: task_id=%s, reason=%s", taskID, statusResp.Error)
			return nil, &TaskFailedError{TaskID: taskID, Message: statusResp.Error}
		}
	}
}
