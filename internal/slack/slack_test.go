package slack

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSendOK(t *testing.T) {
	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	payload := Payload{Text: "trending now", Blocks: []Block{
		{Type: "header", Text: &Text{Type: "plain_text", Text: "Trending"}},
	}}

	if err := client.Send(context.Background(), payload); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.Text != "trending now" || len(got.Blocks) != 1 {
		t.Errorf("server received %+v", got)
	}
}

func TestSendNonSuccessIsDeliveryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_blocks", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	err := client.Send(context.Background(), Payload{Text: "x"})

	var deliveryErr *DeliveryError
	if !errors.As(err, &deliveryErr) {
		t.Fatalf("got %T (%v), want *DeliveryError", err, err)
	}
	if deliveryErr.Status != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", deliveryErr.Status)
	}
}

func TestSendConnectionFailureIsDeliveryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := NewClient(srv.URL, time.Second)
	err := client.Send(context.Background(), Payload{Text: "x"})

	var deliveryErr *DeliveryError
	if !errors.As(err, &deliveryErr) {
		t.Fatalf("got %T (%v), want *DeliveryError", err, err)
	}
}
