package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestReceiveInfo_JSON(t *testing.T) {
	for info, name := range receiveInfoNames {
		data, err := json.Marshal(info)
		if err != nil {
			t.Fatalf("marshal %v: %v", info, err)
		}
		if string(data) != `"`+name+`"` {
			t.Errorf("marshal %v = %s, want %q", info, data, name)
		}

		var back ReceiveInfo
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if back != info {
			t.Errorf("unmarshal %s = %v, want %v", data, back, info)
		}
	}

	var r ReceiveInfo
	if err := json.Unmarshal([]byte(`"MAYBE"`), &r); err == nil {
		t.Error("expected error for unknown name")
	}
	if got := ReceiveInfo(42).String(); got != "ReceiveInfo(42)" {
		t.Errorf("String() = %q", got)
	}
}

func TestHTTPRetriever_Retrieve(t *testing.T) {
	var got retrieveRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stereo/retrieve_data" {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"receive_info":"RECEIVED"}`))
	}))
	defer srv.Close()

	ret := NewHTTPRetriever(srv.URL + "/stereo").WithClient(srv.Client())
	info, err := ret.Retrieve(context.Background(), "/data/capture_set_2")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if info != Received {
		t.Errorf("info = %v, want RECEIVED", info)
	}
	if got.Path != "/data/capture_set_2" {
		t.Errorf("path = %q", got.Path)
	}
	if _, err := uuid.Parse(got.RequestID); err != nil {
		t.Errorf("request id %q is not a uuid: %v", got.RequestID, err)
	}
}

func TestHTTPRetriever_PassesThroughServiceStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"receive_info":"NO_DATA"}`))
	}))
	defer srv.Close()

	info, err := NewHTTPRetriever(srv.URL).WithClient(srv.Client()).Retrieve(context.Background(), "")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if info != NoData {
		t.Errorf("info = %v, want NO_DATA", info)
	}
}

func TestHTTPRetriever_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "camera offline", http.StatusInternalServerError)
	}))
	defer srv.Close()

	info, err := NewHTTPRetriever(srv.URL).WithClient(srv.Client()).Retrieve(context.Background(), "x")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if info != ReceptionFailed {
		t.Errorf("info = %v, want RECEPTION_FAILED", info)
	}
}

func TestHTTPRetriever_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client := srv.Client()
	client.Timeout = 20 * time.Millisecond

	info, err := NewHTTPRetriever(srv.URL).WithClient(client).Retrieve(context.Background(), "x")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if info != ReceptionTimeout {
		t.Errorf("info = %v, want RECEPTION_TIMEOUT", info)
	}
}

func TestMock_RecordsPaths(t *testing.T) {
	m := &Mock{}
	m.Retrieve(context.Background(), "a")
	m.Retrieve(context.Background(), "b")

	paths := m.Paths()
	if len(paths) != 2 || paths[0] != "a" || paths[1] != "b" {
		t.Errorf("paths = %v", paths)
	}
}
