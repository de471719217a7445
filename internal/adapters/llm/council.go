// Package llm provides LLM-backed council consulters.
package llm

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/okian/assessor/internal/domain/council"
)

// Completer performs one system+user completion.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Provider() string
	Model() string
}

const synthesisSystemPrompt = "You are the chair of a review council. Merge the reviewers' opinions into one " +
	"balanced consensus covering strengths and weaknesses. End with a single line 'Score: N/100' " +
	"holding the council's overall score."

// Council consults every persona in parallel and synthesizes their answers.
// It implements council.Consulter.
type Council struct {
	completer Completer
	personas  []Persona
}

// NewCouncil builds a council over completer.
func NewCouncil(completer Completer, personas []Persona) *Council {
	return &Council{completer: completer, personas: personas}
}

// Personas returns the council members.
func (c *Council) Personas() []Persona {
	out := make([]Persona, len(c.personas))
	copy(out, c.personas)
	return out
}

// Consult asks every persona, then asks for a synthesis. Any persona
// failure fails the consultation.
func (c *Council) Consult(ctx context.Context, query string) (council.Consultation, error) {
	responses := make([]council.PersonaResponse, len(c.personas))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, p := range c.personas {
		eg.Go(func() error {
			reply, err := c.completer.Complete(egCtx, p.SystemPrompt(), query)
			if err != nil {
				return fmt.Errorf("%w: persona %q: %w", council.ErrConsultation, p.Name, err)
			}
			responses[i] = council.PersonaResponse{Persona: p.Name, Content: reply}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return council.Consultation{}, err
	}

	if len(responses) == 1 {
		return council.Consultation{Synthesis: responses[0].Content, Responses: responses}, nil
	}

	synthesis, err := c.completer.Complete(ctx, synthesisSystemPrompt, synthesisPrompt(query, responses))
	if err != nil {
		return council.Consultation{}, fmt.Errorf("%w: synthesis: %w", council.ErrConsultation, err)
	}
	if strings.TrimSpace(synthesis) == "" {
		return council.Consultation{}, council.ErrEmptyReply
	}
	return council.Consultation{Synthesis: synthesis, Responses: responses}, nil
}

func synthesisPrompt(query string, responses []council.PersonaResponse) string {
	var b strings.Builder
	b.WriteString("# Original request\n")
	b.WriteString(query)
	b.WriteString("\n\n# Reviews\n")
	for _, r := range responses {
		b.WriteString("\n## ")
		b.WriteString(r.Persona)
		b.WriteString("\n")
		b.WriteString(r.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// Config selects and configures a provider.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Domain   string
}

// New builds a council for cfg.Provider with the personas of cfg.Domain.
func New(ctx context.Context, cfg Config) (*Council, error) {
	domain := cfg.Domain
	if domain == "" {
		domain = council.DefaultDomain
	}
	personas, err := Personas(domain)
	if err != nil {
		return nil, err
	}

	var completer Completer
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		completer, err = NewOpenAICompleter(OpenAIConfig{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL})
	case ProviderGemini:
		completer, err = NewGeminiCompleter(ctx, GeminiConfig{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return NewCouncil(completer, personas), nil
}
