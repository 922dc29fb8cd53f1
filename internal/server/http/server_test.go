package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	syncer "github.com/namatovu-christine/alumni-sync/internal/sync"
)

type fakeSyncer struct {
	immediate int
	forced    []string
	status    syncer.Status
	statusErr error
}

func (f *fakeSyncer) RequestImmediate()            { f.immediate++ }
func (f *fakeSyncer) RequestForce(dataType string) { f.forced = append(f.forced, dataType) }
func (f *fakeSyncer) Status(context.Context) (syncer.Status, error) {
	return f.status, f.statusErr
}

func newTestServer(f *fakeSyncer) *httptest.Server {
	return httptest.NewServer(NewServer(":0", Deps{Sync: f}, zap.NewNop()).Handler())
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	srv := newTestServer(&fakeSyncer{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: status=%v err=%v", resp.Status, err)
	}
	resp.Body.Close()
}

func TestStatus(t *testing.T) {
	t.Parallel()
	f := &fakeSyncer{status: syncer.Status{
		Online:   true,
		LastSync: map[string]int64{syncer.KeyUsers: 123},
	}}
	srv := newTestServer(f)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("status: status=%v err=%v", resp.Status, err)
	}
	defer resp.Body.Close()

	var st syncer.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !st.Online || st.LastSync[syncer.KeyUsers] != 123 {
		t.Fatalf("unexpected status body: %+v", st)
	}
}

func TestSyncTrigger(t *testing.T) {
	t.Parallel()
	f := &fakeSyncer{}
	srv := newTestServer(f)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/sync", "", nil)
	if err != nil || resp.StatusCode != http.StatusAccepted {
		t.Fatalf("sync: status=%v err=%v", resp.Status, err)
	}
	resp.Body.Close()
	if f.immediate != 1 {
		t.Fatalf("immediate sync not requested")
	}
}

func TestSyncTypeTrigger(t *testing.T) {
	t.Parallel()
	f := &fakeSyncer{}
	srv := newTestServer(f)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/sync/"+syncer.KeyJobs, "", nil)
	if err != nil || resp.StatusCode != http.StatusAccepted {
		t.Fatalf("sync type: status=%v err=%v", resp.Status, err)
	}
	resp.Body.Close()
	if len(f.forced) != 1 || f.forced[0] != syncer.KeyJobs {
		t.Fatalf("forced sync not requested: %v", f.forced)
	}

	resp, err = http.Post(srv.URL+"/sync/bogus", "", nil)
	if err != nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown type: status=%v err=%v", resp.Status, err)
	}
	resp.Body.Close()
}
