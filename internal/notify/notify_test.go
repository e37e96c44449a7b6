package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestRendererEscapesApplicantInput(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	body, err := r.Render("task_assignment", map[string]any{
		"Title":         "<script>alert(1)</script>",
		"ApplicantName": "Ada",
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(body, "<script>") {
		t.Fatal("task title was not escaped")
	}
	if !strings.Contains(body, "Hi Ada") {
		t.Fatalf("body missing greeting: %s", body)
	}
}

func TestRendererCompletedRows(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	body, err := r.Render("onboarding_completed", map[string]any{
		"FirstName": "Ada",
		"LastName":  "Lovelace",
		"Rows":      []map[string]any{{"Column": "badge_photo_url", "Value": "https://files/x.png"}},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(body, "Badge Photo Url") {
		t.Fatalf("body missing labelled row: %s", body)
	}
	if _, err := r.Render("unknown", nil); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestWebhookSenderPostsMessage(t *testing.T) {
	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewWebhookSender(srv.URL, srv.Client())
	msg := Message{Event: "onboarding_started", Key: "sub-1", To: []string{"hr@example.com"}, Subject: "hi"}
	if err := s.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if got.Event != "onboarding_started" || got.Key != "sub-1" {
		t.Fatalf("posted %+v", got)
	}
}

func TestWebhookSenderReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if err := NewWebhookSender(srv.URL, nil).Send(context.Background(), Message{}); err == nil {
		t.Fatal("expected error on 502")
	}
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestKafkaSenderKeysBySubmission(t *testing.T) {
	w := &fakeWriter{}
	s := &KafkaSender{writer: w}
	if err := s.Send(context.Background(), Message{Event: "task_assignment", Key: "sub-9"}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(w.msgs) != 1 || string(w.msgs[0].Key) != "sub-9" {
		t.Fatalf("messages = %+v", w.msgs)
	}
	if string(w.msgs[0].Headers[0].Value) != "task_assignment" {
		t.Fatalf("event header = %q", w.msgs[0].Headers[0].Value)
	}

	w.err = errors.New("broker down")
	if err := s.Send(context.Background(), Message{}); err == nil {
		t.Fatal("expected writer error")
	}
}

func TestBuildMIME(t *testing.T) {
	raw := string(buildMIME("noreply@example.com", Message{
		To:       []string{"a@example.com", "b@example.com"},
		Subject:  "Onboarding submitted: Zoë",
		HTMLBody: "<p>hi</p>",
	}))
	if !strings.Contains(raw, "To: a@example.com, b@example.com\r\n") {
		t.Fatalf("missing To header: %q", raw)
	}
	if !strings.Contains(raw, "Content-Type: text/html") {
		t.Fatalf("missing content type: %q", raw)
	}
	if !strings.Contains(raw, "=?utf-8?q?") {
		t.Fatalf("subject not encoded: %q", raw)
	}
}
