package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	api "github.com/okian/keyloop/internal/adapters/http/api"
	repository "github.com/okian/keyloop/internal/adapters/repository"
	"github.com/okian/keyloop/internal/domain/model"
	"github.com/okian/keyloop/internal/domain/rig"
	"github.com/okian/keyloop/internal/domain/types"
	"github.com/okian/keyloop/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// mockDeps implements api.Dependencies for handler tests.
type mockDeps struct {
	mu       sync.Mutex
	enqueued []model.KeyRequest
	full     bool
	objects  map[string]*rig.Object
	curves   map[string][]types.CurveEntry
	cycles   map[string][2]float64
}

func newMockDeps() *mockDeps {
	return &mockDeps{
		objects: make(map[string]*rig.Object),
		curves:  make(map[string][]types.CurveEntry),
		cycles:  make(map[string][2]float64),
	}
}

func (m *mockDeps) Enqueue(ctx context.Context, req model.KeyRequest) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.full {
		return "", false
	}
	if req.RequestID == "" {
		req.RequestID = "assigned-id"
	}
	m.enqueued = append(m.enqueued, req)
	return req.RequestID, true
}

func (m *mockDeps) Curves(ctx context.Context, objectID string) ([]types.CurveEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries, ok := m.curves[objectID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return entries, nil
}

func (m *mockDeps) AddObject(ctx context.Context, o *rig.Object) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[o.ID] = o
}

func (m *mockDeps) Object(ctx context.Context, id string) (*rig.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.objects[id]
	if !ok {
		return nil, rig.ErrUnknownObject
	}
	return o, nil
}

func (m *mockDeps) RemoveObject(ctx context.Context, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, id)
	delete(m.curves, id)
}

func (m *mockDeps) ConfigureCycle(ctx context.Context, objectID string, start, end float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycles[objectID] = [2]float64{start, end}
	return nil
}

// mockStats implements api.StatsProvider.
type mockStats struct{}

func (mockStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newTestServer(deps api.Dependencies) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(deps, mockStats{}).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func TestKeyframesEndpoint(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := newMockDeps()
		ts := newTestServer(deps)
		defer ts.Close()

		Convey("When posting a valid keyframe request", func() {
			resp := postJSON(t, ts.URL+"/v1/keyframes", map[string]any{
				"object_id":   "cube",
				"set":         "Location",
				"frame":       22,
				"cycle_aware": true,
			})
			defer resp.Body.Close()

			Convey("Then it should be accepted with a request id", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusAccepted)

				var ack map[string]any
				So(json.NewDecoder(resp.Body).Decode(&ack), ShouldBeNil)
				So(ack["status"], ShouldEqual, "accepted")
				So(ack["request_id"], ShouldNotBeEmpty)
			})

			Convey("And the request should reach the queue", func() {
				So(len(deps.enqueued), ShouldEqual, 1)
				So(deps.enqueued[0].ObjectID, ShouldEqual, "cube")
				So(deps.enqueued[0].CycleAware, ShouldBeTrue)
				So(deps.enqueued[0].Mode, ShouldEqual, model.ModeNormal)
			})
		})

		Convey("When posting with a missing object id", func() {
			resp := postJSON(t, ts.URL+"/v1/keyframes", map[string]any{
				"set":   "Location",
				"frame": 1,
			})
			defer resp.Body.Close()

			Convey("Then it should be rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When posting with an unknown keying set", func() {
			resp := postJSON(t, ts.URL+"/v1/keyframes", map[string]any{
				"object_id": "cube",
				"set":       "Nonsense",
				"frame":     1,
			})
			defer resp.Body.Close()

			Convey("Then it should be rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When posting with an invalid mode", func() {
			resp := postJSON(t, ts.URL+"/v1/keyframes", map[string]any{
				"object_id": "cube",
				"set":       "Location",
				"frame":     1,
				"mode":      "SOMETIMES",
			})
			defer resp.Body.Close()

			Convey("Then it should be rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the queue is full", func() {
			deps.full = true
			resp := postJSON(t, ts.URL+"/v1/keyframes", map[string]any{
				"object_id": "cube",
				"set":       "Location",
				"frame":     1,
			})
			defer resp.Body.Close()

			Convey("Then it should report backpressure", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusTooManyRequests)
			})
		})

		Convey("When using GET on the keyframes endpoint", func() {
			resp, err := http.Get(ts.URL + "/v1/keyframes")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it should not be found", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestObjectsEndpoint(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := newMockDeps()
		ts := newTestServer(deps)
		defer ts.Close()

		Convey("When creating an object", func() {
			resp := postJSON(t, ts.URL+"/v1/objects", map[string]any{
				"object_id": "cube",
				"location":  []float64{1, 2, 3},
			})
			defer resp.Body.Close()

			Convey("Then it should be created", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusCreated)
				So(deps.objects["cube"], ShouldNotBeNil)
				So(deps.objects["cube"].Location, ShouldResemble, rig.Vec3{1, 2, 3})
			})
		})

		Convey("When creating a constrained object", func() {
			deps.AddObject(context.Background(), rig.NewObject("target"))

			resp := postJSON(t, ts.URL+"/v1/objects", map[string]any{
				"object_id": "follower",
				"constraints": []map[string]any{
					{"type": "copy_location", "target": "target"},
				},
			})
			defer resp.Body.Close()

			Convey("Then the constraint stack is built", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusCreated)
				So(len(deps.objects["follower"].Constraints), ShouldEqual, 1)
			})
		})

		Convey("When the constraint target is unknown", func() {
			resp := postJSON(t, ts.URL+"/v1/objects", map[string]any{
				"object_id": "follower",
				"constraints": []map[string]any{
					{"type": "copy_location", "target": "ghost"},
				},
			})
			defer resp.Body.Close()

			Convey("Then it should be rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the constraint type is unknown", func() {
			resp := postJSON(t, ts.URL+"/v1/objects", map[string]any{
				"object_id": "follower",
				"constraints": []map[string]any{
					{"type": "teleport", "target": "target"},
				},
			})
			defer resp.Body.Close()

			Convey("Then it should be rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When configuring a cycle", func() {
			deps.AddObject(context.Background(), rig.NewObject("walker"))

			resp := postJSON(t, ts.URL+"/v1/objects/walker/cycle", map[string]any{
				"start": 1, "end": 20,
			})
			defer resp.Body.Close()

			Convey("Then the range is stored", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(deps.cycles["walker"], ShouldResemble, [2]float64{1, 20})
			})
		})

		Convey("When configuring a cycle on an unknown object", func() {
			resp := postJSON(t, ts.URL+"/v1/objects/ghost/cycle", map[string]any{
				"start": 1, "end": 20,
			})
			defer resp.Body.Close()

			Convey("Then it should not be found", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When deleting an object", func() {
			deps.AddObject(context.Background(), rig.NewObject("ephemeral"))

			req, err := http.NewRequest(http.MethodDelete, ts.URL+"/v1/objects/ephemeral", nil)
			So(err, ShouldBeNil)
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it should be removed", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(deps.objects["ephemeral"], ShouldBeNil)
			})
		})
	})
}

func TestCurvesEndpoint(t *testing.T) {
	Convey("Given an API server with stored curves", t, func() {
		deps := newMockDeps()
		deps.curves["cube"] = []types.CurveEntry{
			{
				Channel:          "location_x",
				Cyclic:           true,
				RangeStart:       1,
				RangeEnd:         20,
				HasCycleModifier: true,
				Keyframes: []types.KeyframeEntry{
					{Time: 1, Value: 0.5},
					{Time: 3, Value: 0.5},
				},
			},
		}
		ts := newTestServer(deps)
		defer ts.Close()

		Convey("When querying curves for a known object", func() {
			resp, err := http.Get(ts.URL + "/v1/objects/cube/curves")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the stored curves are returned", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var entries []types.CurveEntry
				So(json.NewDecoder(resp.Body).Decode(&entries), ShouldBeNil)
				So(len(entries), ShouldEqual, 1)
				So(entries[0].Channel, ShouldEqual, "location_x")
				So(entries[0].HasCycleModifier, ShouldBeTrue)
				So(len(entries[0].Keyframes), ShouldEqual, 2)
			})
		})

		Convey("When querying curves for an unknown object", func() {
			resp, err := http.Get(ts.URL + "/v1/objects/ghost/curves")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it should not be found", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	Convey("Given an API server", t, func() {
		ts := newTestServer(newMockDeps())
		defer ts.Close()

		Convey("When requesting stats", func() {
			resp, err := http.Get(ts.URL + "/stats")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then stats are returned as JSON", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var stats map[string]any
				So(json.NewDecoder(resp.Body).Decode(&stats), ShouldBeNil)
				So(stats["started"], ShouldEqual, true)
			})
		})
	})
}

func TestHealthEndpoint(t *testing.T) {
	Convey("Given an API server", t, func() {
		ts := newTestServer(newMockDeps())
		defer ts.Close()

		Convey("When requesting health", func() {
			resp, err := http.Get(ts.URL + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it should serve the metrics registry", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})
	})
}
