package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/assessor/internal/adapters/http/api"
	"github.com/okian/assessor/internal/app"
	"github.com/okian/assessor/internal/domain/model"
	"github.com/okian/assessor/internal/domain/patterns"
	. "github.com/smartystreets/goconvey/convey"
)

// failingEngine wraps the real engine but fails every assessment.
type failingEngine struct {
	*app.Engine
}

func (failingEngine) Assess(context.Context, model.AssessmentInput) (*model.AssessmentResult, error) {
	return nil, errors.New("engine exploded")
}

// councilEngine reports an available council.
type councilEngine struct {
	*app.Engine
}

func (councilEngine) CouncilAvailable() bool { return true }

func newMux(engine api.Assessor, opts ...api.Option) http.Handler {
	server := api.NewServer(engine, opts...)
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return server.Handler(mux)
}

func do(h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
	return out
}

func TestServer_Register(t *testing.T) {
	Convey("Given an API server around the default engine", t, func() {
		h := newMux(app.New())

		Convey("When registering on a nil mux", func() {
			Convey("Then it should panic", func() {
				So(func() { api.NewServer(app.New()).Register(context.Background(), nil) }, ShouldPanic)
			})
		})

		Convey("When a code submission is assessed", func() {
			body := `{
				"candidate_id": "cand-1",
				"submission_type": "code",
				"content": {"code": "def f():\n    try:\n        x()\n    except:\n        pass\n"},
				"paths_to_evaluate": ["technical"]
			}`
			w := do(h, http.MethodPost, "/assess", body)

			Convey("Then it should return the assessment result", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
				out := decode(w)
				So(out["candidate_id"], ShouldEqual, "cand-1")
				So(out["assessment_id"], ShouldStartWith, "assess_")
				So(out["engine_version"], ShouldEqual, "2.0")
				So(out["path_scores"], ShouldHaveLength, 1)
				meta := out["metadata"].(map[string]any)
				So(meta["assessment_mode"], ShouldEqual, "heuristic")
				checks := meta["pattern_checks"].(map[string]any)
				So(checks["violation_count"], ShouldBeGreaterThan, 0)
			})

			Convey("And it should carry a generated request id", func() {
				So(w.Header().Get("X-Request-ID"), ShouldNotBeEmpty)
			})
		})

		Convey("When the caller supplies a request id", func() {
			w := do(h, http.MethodGet, "/health", "", "X-Request-ID", "req-42")

			Convey("Then it should be echoed back", func() {
				So(w.Header().Get("X-Request-ID"), ShouldEqual, "req-42")
			})
		})

		Convey("When the assess body is not JSON", func() {
			w := do(h, http.MethodPost, "/assess", `{not json`)

			Convey("Then it should return 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				out := decode(w)
				So(out["code"], ShouldEqual, "bad_request")
				So(out["message"], ShouldStartWith, "bad request")
			})
		})

		Convey("When the assess body has trailing data", func() {
			w := do(h, http.MethodPost, "/assess", `{"candidate_id":"a","submission_type":"code","content":{}} {}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When required fields are missing", func() {
			w := do(h, http.MethodPost, "/assess", `{"submission_type":"video","content":{"code":"x"}}`)

			Convey("Then it should return a validation error naming JSON fields", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				out := decode(w)
				So(out["code"], ShouldEqual, "validation_error")
				So(out["message"], ShouldContainSubstring, "candidate_id: required")
				So(out["message"], ShouldContainSubstring, "submission_type: oneof")
			})
		})

		Convey("When a path is listed twice", func() {
			w := do(h, http.MethodPost, "/assess", `{"candidate_id":"a","submission_type":"code","content":{"code":"x"},"paths_to_evaluate":["technical","technical","design"]}`)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(decode(w)["message"], ShouldContainSubstring, "paths_to_evaluate: unique")
		})

		Convey("When assess is called with GET", func() {
			w := do(h, http.MethodGet, "/assess", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("When patterns are detected", func() {
			w := do(h, http.MethodPost, "/patterns/detect", `{"code":"print(1)\nprint(2)\npath = tempfile.mktemp()\n"}`)

			Convey("Then violations and penalty should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				out := decode(w)
				So(out["count"], ShouldEqual, 3)
				So(out["penalty_points"], ShouldEqual, 6)
				first := out["violations"].([]any)[0].(map[string]any)
				So(first["line"], ShouldEqual, 1)
				So(first["confidence"], ShouldEqual, patterns.ViolationConfidence)
			})
		})

		Convey("When detect is called without code", func() {
			w := do(h, http.MethodPost, "/patterns/detect", `{}`)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
		})

		Convey("When the rule table is listed", func() {
			w := do(h, http.MethodGet, "/patterns", "")

			Convey("Then every rule should be returned in order", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				out := decode(w)
				So(out["enabled"], ShouldBeTrue)
				So(out["count"], ShouldEqual, len(patterns.DefaultRules()))
				rules := out["rules"].([]any)
				So(rules[0].(map[string]any)["name"], ShouldEqual, patterns.DefaultRules()[0].Name)
			})
		})

		Convey("When health is requested without a council", func() {
			w := do(h, http.MethodGet, "/health", "")

			Convey("Then it should report degraded", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				out := decode(w)
				So(out["status"], ShouldEqual, "degraded")
				So(out["version"], ShouldEqual, "2.0")
				So(out["timestamp"], ShouldNotBeEmpty)
				components := out["components"].(map[string]any)
				So(components["council"], ShouldEqual, "unavailable")
				So(components["pattern_checks"], ShouldEqual, "operational")
			})
		})

		Convey("When metrics are scraped", func() {
			do(h, http.MethodGet, "/health", "")
			w := do(h, http.MethodGet, "/metrics", "")

			Convey("Then Prometheus text should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "assessor_")
			})
		})

		Convey("When the root is requested", func() {
			w := do(h, http.MethodGet, "/", "")

			Convey("Then service info should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				out := decode(w)
				So(out["name"], ShouldEqual, "assessor")
				So(out["endpoints"].(map[string]any)["assess"], ShouldEqual, "/assess")
			})
		})

		Convey("When an unknown path is requested", func() {
			w := do(h, http.MethodGet, "/nope", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestServer_Health(t *testing.T) {
	Convey("Given an engine with a council", t, func() {
		h := newMux(councilEngine{app.New()})

		Convey("Then health should be healthy", func() {
			out := decode(do(h, http.MethodGet, "/health", ""))
			So(out["status"], ShouldEqual, "healthy")
		})
	})

	Convey("Given an engine with checks disabled and a council", t, func() {
		h := newMux(councilEngine{app.New(app.WithPatternChecks(false))})

		Convey("Then disabled checks should not degrade health", func() {
			out := decode(do(h, http.MethodGet, "/health", ""))
			So(out["status"], ShouldEqual, "healthy")
			So(out["components"].(map[string]any)["pattern_checks"], ShouldEqual, "disabled")
		})
	})
}

func TestServer_EngineFailure(t *testing.T) {
	Convey("Given an engine that fails", t, func() {
		h := newMux(failingEngine{app.New()})

		Convey("When an assessment is requested", func() {
			w := do(h, http.MethodPost, "/assess", `{"candidate_id":"c","submission_type":"text","content":{"text":"hi"}}`)

			Convey("Then it should return 500 without the op prefix", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				out := decode(w)
				So(out["code"], ShouldEqual, "internal_error")
				So(out["message"], ShouldEqual, "internal error: engine exploded")
			})
		})
	})
}

func TestServer_Auth(t *testing.T) {
	Convey("Given a server with an API key", t, func() {
		h := newMux(app.New(), api.WithAPIKey("s3cret"))

		Convey("When no key is presented", func() {
			w := do(h, http.MethodGet, "/patterns", "")

			Convey("Then it should be rejected", func() {
				So(w.Code, ShouldEqual, http.StatusUnauthorized)
				So(w.Header().Get("WWW-Authenticate"), ShouldEqual, "ApiKey")
				So(decode(w)["code"], ShouldEqual, "unauthorized")
			})
		})

		Convey("When a wrong key is presented", func() {
			w := do(h, http.MethodGet, "/patterns", "", "X-API-Key", "nope")
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("When the key is sent in X-API-Key", func() {
			w := do(h, http.MethodGet, "/patterns", "", "X-API-Key", "s3cret")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When the key is sent as a bearer token", func() {
			w := do(h, http.MethodGet, "/patterns", "", "Authorization", "Bearer s3cret")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When open routes are requested without a key", func() {
			So(do(h, http.MethodGet, "/health", "").Code, ShouldEqual, http.StatusOK)
			So(do(h, http.MethodGet, "/metrics", "").Code, ShouldEqual, http.StatusOK)
			So(do(h, http.MethodGet, "/", "").Code, ShouldEqual, http.StatusOK)
		})
	})
}

func TestServer_RateLimit(t *testing.T) {
	Convey("Given a server allowing a burst of two per client", t, func() {
		h := newMux(app.New(), api.WithRateLimit(1, 2))

		Convey("When a client exceeds the burst", func() {
			codes := make([]int, 0, 3)
			for range 3 {
				codes = append(codes, do(h, http.MethodGet, "/patterns", "").Code)
			}

			Convey("Then the third request should get 429", func() {
				So(codes, ShouldResemble, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests})
			})
		})

		Convey("When the limited client hits excluded routes", func() {
			for range 3 {
				do(h, http.MethodGet, "/patterns", "")
			}

			Convey("Then health and metrics should still answer", func() {
				So(do(h, http.MethodGet, "/health", "").Code, ShouldEqual, http.StatusOK)
				So(do(h, http.MethodGet, "/metrics", "").Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When the limit is hit", func() {
			var last *httptest.ResponseRecorder
			for range 3 {
				last = do(h, http.MethodGet, "/patterns", "")
			}

			Convey("Then Retry-After should be set", func() {
				So(last.Header().Get("Retry-After"), ShouldEqual, "60")
				So(decode(last)["code"], ShouldEqual, "rate_limited")
			})
		})
	})
}

func TestServer_CORS(t *testing.T) {
	Convey("Given a server with a restricted origin list", t, func() {
		h := newMux(app.New(), api.WithCORSOrigins([]string{"https://ok.example"}))

		Convey("When an allowed origin sends a preflight", func() {
			w := do(h, http.MethodOptions, "/assess", "",
				"Origin", "https://ok.example",
				"Access-Control-Request-Method", "POST")

			Convey("Then it should be answered with 204", func() {
				So(w.Code, ShouldEqual, http.StatusNoContent)
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "https://ok.example")
				So(w.Header().Get("Access-Control-Allow-Headers"), ShouldContainSubstring, "X-API-Key")
			})
		})

		Convey("When a foreign origin calls", func() {
			w := do(h, http.MethodGet, "/health", "", "Origin", "https://evil.example")

			Convey("Then no CORS headers should be set", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
			})
		})
	})

	Convey("Given a server allowing any origin", t, func() {
		h := newMux(app.New(), api.WithCORSOrigins([]string{"*"}))
		w := do(h, http.MethodGet, "/health", "", "Origin", "https://any.example")
		So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
	})
}

func TestErrors(t *testing.T) {
	Convey("Given API error helpers", t, func() {
		cause := errors.New("boom")

		Convey("Then WrapKind should match both kind and cause", func() {
			err := api.WrapKind("api.op", api.ErrBadRequest, cause)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: boom")
		})

		Convey("Then NewKind should carry only the kind", func() {
			err := api.NewKind("api.op", api.ErrRateLimited)
			So(errors.Is(err, api.ErrRateLimited), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: rate limit exceeded")
		})

		Convey("Then Wrap should keep nil as nil", func() {
			So(api.Wrap("api.op", nil), ShouldBeNil)
			So(errors.Is(api.Wrap("api.op", cause), cause), ShouldBeTrue)
		})
	})
}
