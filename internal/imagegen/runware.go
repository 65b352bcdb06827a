package imagegen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	imageWidth        = 512
	imageHeight       = 768
	writeTimeout      = 3 * time.Second
	defaultGenTimeout = 60 * time.Second
)

// ErrUnavailable marks transport-level failures of the image backend.
var ErrUnavailable = errors.New("image backend unavailable")

// Client produces an illustration URL for a free-form prompt.
type Client interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// RunwareClient talks the Runware websocket protocol: one authentication
// frame, then an imageInference task, then wait for the frame carrying the
// matching task UUID. A fresh connection is dialed per request.
type RunwareClient struct {
	wsURL          string
	apiKey         string
	model          string
	positivePrefix string
	dialer         websocket.Dialer
}

type runwareTask struct {
	TaskType       string `json:"taskType"`
	APIKey         string `json:"apiKey,omitempty"`
	TaskUUID       string `json:"taskUUID,omitempty"`
	PositivePrompt string `json:"positivePrompt,omitempty"`
	Width          int    `json:"width,omitempty"`
	Height         int    `json:"height,omitempty"`
	Model          string `json:"model,omitempty"`
	NumberResults  int    `json:"numberResults,omitempty"`
	OutputType     string `json:"outputType,omitempty"`
}

type runwareEnvelope struct {
	Data   []runwareResult `json:"data"`
	Errors []runwareError  `json:"errors"`
}

type runwareResult struct {
	TaskType string `json:"taskType"`
	TaskUUID string `json:"taskUUID"`
	ImageURL string `json:"imageURL"`
}

type runwareError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	TaskUUID string `json:"taskUUID"`
}

func NewRunwareClient(wsURL, apiKey, model, positivePrefix string) *RunwareClient {
	return &RunwareClient{
		wsURL:          strings.TrimSpace(wsURL),
		apiKey:         strings.TrimSpace(apiKey),
		model:          model,
		positivePrefix: positivePrefix,
		dialer: websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 4 * time.Second,
		},
	}
}

func (c *RunwareClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	conn, resp, err := c.dialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		if resp != nil {
			return "", fmt.Errorf("%w: dial failed (%s): %v", ErrUnavailable, resp.Status, err)
		}
		return "", fmt.Errorf("%w: dial failed: %v", ErrUnavailable, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(defaultGenTimeout)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	_ = conn.SetReadDeadline(deadline)

	if err := writeTasks(conn, []runwareTask{{
		TaskType: "authentication",
		APIKey:   c.apiKey,
	}}); err != nil {
		return "", fmt.Errorf("%w: auth write: %v", ErrUnavailable, err)
	}
	if err := c.awaitAuth(conn); err != nil {
		return "", err
	}

	taskUUID := uuid.NewString()
	if err := writeTasks(conn, []runwareTask{{
		TaskType:       "imageInference",
		TaskUUID:       taskUUID,
		PositivePrompt: c.positivePrefix + prompt,
		Width:          imageWidth,
		Height:         imageHeight,
		Model:          c.model,
		NumberResults:  1,
		OutputType:     "URL",
	}}); err != nil {
		return "", fmt.Errorf("%w: inference write: %v", ErrUnavailable, err)
	}
	return c.awaitImage(conn, taskUUID)
}

func (c *RunwareClient) awaitAuth(conn *websocket.Conn) error {
	for {
		env, err := readEnvelope(conn)
		if err != nil {
			return fmt.Errorf("%w: auth read: %v", ErrUnavailable, err)
		}
		if len(env.Errors) > 0 {
			return fmt.Errorf("%w: auth rejected: %s", ErrUnavailable, env.Errors[0].Message)
		}
		for _, res := range env.Data {
			if res.TaskType == "authentication" {
				return nil
			}
		}
	}
}

func (c *RunwareClient) awaitImage(conn *websocket.Conn, taskUUID string) (string, error) {
	for {
		env, err := readEnvelope(conn)
		if err != nil {
			return "", fmt.Errorf("%w: inference read: %v", ErrUnavailable, err)
		}
		for _, e := range env.Errors {
			if e.TaskUUID == "" || e.TaskUUID == taskUUID {
				return "", fmt.Errorf("image task failed: %s", e.Message)
			}
		}
		for _, res := range env.Data {
			if res.TaskType != "imageInference" || res.TaskUUID != taskUUID {
				continue
			}
			if strings.TrimSpace(res.ImageURL) == "" {
				return "", fmt.Errorf("image task %s returned no URL", taskUUID)
			}
			return res.ImageURL, nil
		}
	}
}

func writeTasks(conn *websocket.Conn, tasks []runwareTask) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	defer conn.SetWriteDeadline(time.Time{})
	return conn.WriteJSON(tasks)
}

func readEnvelope(conn *websocket.Conn) (runwareEnvelope, error) {
	var env runwareEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		return runwareEnvelope{}, err
	}
	return env, nil
}
