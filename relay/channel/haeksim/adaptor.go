package haeksim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/haeksim/noonsongi/common/logger"
	"github.com/haeksim/noonsongi/relay/model"
	"github.com/pkg/errors"
)

// Adaptor is the transport client of the generation service. It is bound to one base URL
// and issues exactly two calls: submit a job and read a task's status.
type Adaptor struct {
	BaseURL string
	Client  *http.Client
}

func NewAdaptor(baseURL string, client *http.Client) *Adaptor {
	if client == nil {
		client = http.DefaultClient
	}
	return &Adaptor{BaseURL: baseURL, Client: client}
}

func (a *Adaptor) GetRequestURL(path string) (string, error) {
	if a.BaseURL == "" {
		return "", errors.New("generation service base url is not configured")
	}
	return url.JoinPath(a.BaseURL, path)
}

// ConvertRequest encodes a payload as JSON when it is text only and as multipart
// form data when it carries a file.
func (a *Adaptor) ConvertRequest(payload *model.Payload) (io.Reader, string, error) {
	if !payload.HasFile() {
		body, err := json.Marshal(GenerateRequest{Prompt: payload.Prompt})
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(body), "application/json", nil
	}

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	if err := writer.WriteField(FieldPrompt, payload.Prompt); err != nil {
		return nil, "", err
	}

	contentType := payload.File.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FieldFile, escapeQuotes(payload.File.Name)))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(payload.File.Data); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf, writer.FormDataContentType(), nil
}

// SubmitJob posts the payload to the generate endpoint.
func (a *Adaptor) SubmitJob(ctx context.Context, payload *model.Payload) (*GenerateResponse, error) {
	if payload == nil {
		return nil, errors.New("nil payload")
	}
	fullRequestURL, err := a.GetRequestURL(GeneratePath)
	if err != nil {
		return nil, err
	}
	body, contentType, err := a.ConvertRequest(payload)
	if err != nil {
		return nil, errors.Wrap(err, "encode generate request")
	}

	resp, err := a.DoRequest(ctx, http.MethodPost, fullRequestURL, body, contentType)
	if err != nil {
		return nil, errors.Wrap(err, "submit job")
	}

	var generateResp GenerateResponse
	if err := a.DoResponse(resp, &generateResp); err != nil {
		return nil, err
	}
	logger.Debugf(ctx, "generate response: task_id=%s, status=%s, file_bytes=%d",
		generateResp.TaskID, generateResp.Status, payload.File.Size())
	return &generateResp, nil
}

// GetStatus reads the state of one task.
func (a *Adaptor) GetStatus(ctx context.Context, taskID string) (*StatusResponse, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, errors.New("empty task id")
	}
	fullRequestURL, err := a.GetRequestURL(StatusPath + url.PathEscape(taskID))
	if err != nil {
		return nil, err
	}

	resp, err := a.DoRequest(ctx, http.MethodGet, fullRequestURL, nil, "")
	if err != nil {
		return nil, errors.Wrapf(err, "get status of task %s", taskID)
	}

	var statusResp StatusResponse
	if err := a.DoResponse(resp, &statusResp); err != nil {
		return nil, err
	}
	logger.Debugf(ctx, "status response: task_id=%s, status=%s", taskID, statusResp.Status)
	return &statusResp, nil
}

func (a *Adaptor) DoRequest(ctx context.Context, method string, fullRequestURL string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, fullRequestURL, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if id, ok := ctx.Value(logger.RequestIdKey).(string); ok && id != "" {
		req.Header.Set(logger.RequestIdKey, id)
	}
	return a.Client.Do(req)
}

// DoResponse decodes a 2xx body into v and turns anything else into an ErrorWithStatusCode.
func (a *Adaptor) DoResponse(resp *http.Response, v any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp errorResponse
		message := ""
		if json.Unmarshal(body, &errResp) == nil {
			message = errResp.message()
		}
		if message == "" {
			message = strings.TrimSpace(string(body))
		}
		return &model.ErrorWithStatusCode{
			StatusCode: resp.StatusCode,
			Detail: model.Error{
				Message: message,
				Type:    "upstream_error",
				Code:    resp.StatusCode,
			},
		}
	}

	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrap(err, "decode response body")
	}
	return nil
}
