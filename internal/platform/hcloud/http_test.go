package hcloud

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/hetznercloud/hcloud-go/v2/hcloud/schema"
)

// testServer mocks Hetzner Cloud API responses.
type testServer struct {
	server *httptest.Server
	mux    *http.ServeMux
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	mux := http.NewServeMux()
	ts := &testServer{server: httptest.NewServer(mux), mux: mux}
	t.Cleanup(ts.server.Close)
	return ts
}

// client returns a Client pointed at the test server with fast retries.
func (ts *testServer) client(opts ...ClientOption) *Client {
	hc := hcloud.NewClient(
		hcloud.WithToken("test-token"),
		hcloud.WithEndpoint(ts.server.URL),
	)
	opts = append([]ClientOption{WithHCloudClient(hc), WithRetry(3, time.Millisecond)}, opts...)
	return NewClient("test-token", opts...)
}

func (ts *testServer) handleFunc(pattern string, handler http.HandlerFunc) {
	ts.mux.HandleFunc(pattern, handler)
}

func jsonResponse(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func floatingIP(id int64, ip, location string, server *int64) schema.FloatingIP {
	return schema.FloatingIP{
		ID:           id,
		Name:         "fip",
		IP:           ip,
		Type:         "ipv4",
		Server:       server,
		HomeLocation: schema.Location{ID: 1, Name: location},
	}
}

func server(id int64, name, status, location string, fips ...int64) schema.Server {
	s := schema.Server{
		ID:         id,
		Name:       name,
		Status:     status,
		Datacenter: schema.Datacenter{ID: 1, Name: location + "-dc14", Location: schema.Location{ID: 1, Name: location}},
	}
	s.PublicNet.FloatingIPs = fips
	return s
}
