package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/okian/assessor/internal/adapters/llm"
	"github.com/okian/assessor/internal/domain/council"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeCompleter struct {
	mu      sync.Mutex
	calls   []string
	failFor string
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, system)
	f.mu.Unlock()
	if f.failFor != "" && strings.Contains(system, f.failFor) {
		return "", errors.New("provider down")
	}
	if strings.Contains(system, "chair") {
		return "Consensus reached. Score: 81/100", nil
	}
	return "Looks fine. Score: 70/100", nil
}

func (f *fakeCompleter) Provider() string { return "fake" }
func (f *fakeCompleter) Model() string    { return "fake-1" }

func TestCouncilConsult(t *testing.T) {
	Convey("Given a council of coding personas", t, func() {
		personas, err := llm.Personas("coding")
		So(err, ShouldBeNil)
		fake := &fakeCompleter{}
		c := llm.NewCouncil(fake, personas)

		Convey("When every persona answers", func() {
			res, err := c.Consult(context.Background(), "review this")

			Convey("Then responses keep persona order and a synthesis is produced", func() {
				So(err, ShouldBeNil)
				So(res.Responses, ShouldHaveLength, len(personas))
				for i, p := range personas {
					So(res.Responses[i].Persona, ShouldEqual, p.Name)
				}
				So(res.Synthesis, ShouldContainSubstring, "Score: 81/100")
				So(fake.calls, ShouldHaveLength, len(personas)+1)
			})
		})

		Convey("When a persona fails", func() {
			fake.failFor = personas[1].Name
			_, err := c.Consult(context.Background(), "review this")
			So(errors.Is(err, council.ErrConsultation), ShouldBeTrue)
		})

		Convey("When the council has a single persona", func() {
			solo := llm.NewCouncil(fake, personas[:1])
			res, err := solo.Consult(context.Background(), "q")
			So(err, ShouldBeNil)
			So(res.Synthesis, ShouldEqual, "Looks fine. Score: 70/100")
		})
	})
}

func TestPersonas(t *testing.T) {
	Convey("Persona presets", t, func() {
		So(llm.Domains(), ShouldResemble, []string{"coding", "general"})
		ps, err := llm.Personas(" General ")
		So(err, ShouldBeNil)
		So(ps, ShouldHaveLength, 2)
		So(ps[0].SystemPrompt(), ShouldContainSubstring, "Score: N/100")

		_, err = llm.Personas("astrology")
		So(errors.Is(err, llm.ErrUnknownDomain), ShouldBeTrue)
	})
}

func TestOpenAICompleter(t *testing.T) {
	Convey("Given an OpenAI-compatible endpoint", t, func() {
		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/chat/completions" {
				http.NotFound(w, r)
				return
			}
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &got)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",` +
				`"choices":[{"index":0,"message":{"role":"assistant","content":"  Score: 64/100  "},"finish_reason":"stop"}]}`))
		}))
		defer srv.Close()

		c, err := llm.NewOpenAICompleter(llm.OpenAIConfig{APIKey: "k", BaseURL: srv.URL + "/v1/"})
		So(err, ShouldBeNil)
		So(c.Model(), ShouldEqual, llm.DefaultOpenAIModel)
		So(c.Provider(), ShouldEqual, "openai")

		Convey("When completing", func() {
			out, err := c.Complete(context.Background(), "sys", "user")

			Convey("Then the reply is trimmed and both messages are sent", func() {
				So(err, ShouldBeNil)
				So(out, ShouldEqual, "Score: 64/100")
				So(got["model"], ShouldEqual, "gpt-4o-mini")
				msgs, ok := got["messages"].([]any)
				So(ok, ShouldBeTrue)
				So(msgs, ShouldHaveLength, 2)
			})
		})
	})

	Convey("Given an endpoint returning no choices", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[]}`))
		}))
		defer srv.Close()

		c, err := llm.NewOpenAICompleter(llm.OpenAIConfig{APIKey: "k", BaseURL: srv.URL})
		So(err, ShouldBeNil)
		_, err = c.Complete(context.Background(), "sys", "user")
		So(errors.Is(err, llm.ErrNoChoices), ShouldBeTrue)
	})

	Convey("A missing key is rejected", t, func() {
		_, err := llm.NewOpenAICompleter(llm.OpenAIConfig{})
		So(errors.Is(err, llm.ErrMissingAPIKey), ShouldBeTrue)
	})
}

func TestNew(t *testing.T) {
	Convey("Given provider configuration", t, func() {
		ctx := context.Background()

		Convey("When the provider is unknown", func() {
			_, err := llm.New(ctx, llm.Config{Provider: "carrier-pigeon", APIKey: "k"})
			So(errors.Is(err, llm.ErrUnknownProvider), ShouldBeTrue)
		})

		Convey("When the key is missing", func() {
			_, err := llm.New(ctx, llm.Config{Provider: "gemini"})
			So(errors.Is(err, llm.ErrMissingAPIKey), ShouldBeTrue)
		})

		Convey("When the domain is unknown", func() {
			_, err := llm.New(ctx, llm.Config{Provider: "openai", APIKey: "k", Domain: "astrology"})
			So(errors.Is(err, llm.ErrUnknownDomain), ShouldBeTrue)
		})

		Convey("When OpenAI is configured", func() {
			c, err := llm.New(ctx, llm.Config{Provider: "OpenAI", APIKey: "k"})
			So(err, ShouldBeNil)
			So(c.Personas(), ShouldHaveLength, 3)
		})
	})
}
