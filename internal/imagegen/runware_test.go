package imagegen

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

// fakeRunware upgrades the connection and replies to authentication and
// imageInference frames the way the real endpoint does.
func fakeRunware(t *testing.T, handle func(conn *websocket.Conn, tasks []runwareTask) bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for {
			var tasks []runwareTask
			if err := conn.ReadJSON(&tasks); err != nil {
				return
			}
			if !handle(conn, tasks) {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestGenerateImageHappyPath(t *testing.T) {
	var gotPrompt string
	srv := fakeRunware(t, func(conn *websocket.Conn, tasks []runwareTask) bool {
		switch tasks[0].TaskType {
		case "authentication":
			if tasks[0].APIKey != "key-123" {
				t.Errorf("APIKey = %q, want key-123", tasks[0].APIKey)
			}
			return conn.WriteJSON(runwareEnvelope{Data: []runwareResult{{TaskType: "authentication"}}}) == nil
		case "imageInference":
			gotPrompt = tasks[0].PositivePrompt
			return conn.WriteJSON(runwareEnvelope{Data: []runwareResult{{
				TaskType: "imageInference",
				TaskUUID: tasks[0].TaskUUID,
				ImageURL: "https://img.example/result.jpg",
			}}}) == nil
		}
		return true
	})
	defer srv.Close()

	c := NewRunwareClient(wsURL(srv), "key-123", "runware:101@1", "photos about job: ")
	url, err := c.GenerateImage(context.Background(), "barista")
	if err != nil {
		t.Fatalf("GenerateImage() error = %v", err)
	}
	if url != "https://img.example/result.jpg" {
		t.Fatalf("url = %q", url)
	}
	if gotPrompt != "photos about job: barista" {
		t.Fatalf("prompt = %q, want prefixed", gotPrompt)
	}
}

func TestGenerateImageAuthRejected(t *testing.T) {
	srv := fakeRunware(t, func(conn *websocket.Conn, tasks []runwareTask) bool {
		conn.WriteJSON(runwareEnvelope{Errors: []runwareError{{Message: "bad key"}}})
		return false
	})
	defer srv.Close()

	c := NewRunwareClient(wsURL(srv), "wrong", "runware:101@1", "")
	if _, err := c.GenerateImage(context.Background(), "barista"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
}

func TestGenerateImageTaskError(t *testing.T) {
	srv := fakeRunware(t, func(conn *websocket.Conn, tasks []runwareTask) bool {
		switch tasks[0].TaskType {
		case "authentication":
			return conn.WriteJSON(runwareEnvelope{Data: []runwareResult{{TaskType: "authentication"}}}) == nil
		case "imageInference":
			conn.WriteJSON(runwareEnvelope{Errors: []runwareError{{
				TaskUUID: tasks[0].TaskUUID,
				Message:  "model not found",
			}}})
			return false
		}
		return true
	})
	defer srv.Close()

	c := NewRunwareClient(wsURL(srv), "key", "bogus-model", "")
	_, err := c.GenerateImage(context.Background(), "barista")
	if err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Fatalf("error = %v, want task failure", err)
	}
	if errors.Is(err, ErrUnavailable) {
		t.Fatalf("task rejection should not be ErrUnavailable: %v", err)
	}
}

func TestGenerateImageDialFailure(t *testing.T) {
	c := NewRunwareClient("ws://127.0.0.1:1", "key", "runware:101@1", "")
	if _, err := c.GenerateImage(context.Background(), "barista"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
}
