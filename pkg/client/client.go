// Package client provides a fluent model builder and an HTTP client for the
// rxnkit server API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rxnkit/rxnkit/internal/rxn"
)

// ModelBuilder provides a fluent API for building model configurations.
// Use it to define parameters, reactions, and initial counts that describe
// a reaction network.
type ModelBuilder struct {
	name       string
	species    []rxn.SpeciesConfig
	parameters map[string]float64
	reactions  []*ReactionBuilder
	init       map[string]int64
	run        *rxn.RunConfig
}

// NewModel creates a new model builder with the given name.
func NewModel(name string) *ModelBuilder {
	return &ModelBuilder{
		name:       name,
		parameters: make(map[string]float64),
		init:       make(map[string]int64),
	}
}

// Species declares a species with an optional description. Declaration is
// optional; species are otherwise created on first mention.
func (mb *ModelBuilder) Species(name, description string) *ModelBuilder {
	mb.species = append(mb.species, rxn.SpeciesConfig{Name: name, Description: description})
	return mb
}

// Parameter sets a named scalar parameter usable from rate expressions.
func (mb *ModelBuilder) Parameter(name string, value float64) *ModelBuilder {
	mb.parameters[name] = value
	return mb
}

// Reaction adds a reaction definition to the model.
func (mb *ModelBuilder) Reaction(rb *ReactionBuilder) *ModelBuilder {
	mb.reactions = append(mb.reactions, rb)
	return mb
}

// Init sets the initial count of a species.
func (mb *ModelBuilder) Init(species string, count int64) *ModelBuilder {
	mb.init[species] = count
	return mb
}

// Defaults sets the model's default run settings.
func (mb *ModelBuilder) Defaults(run rxn.RunConfig) *ModelBuilder {
	mb.run = &run
	return mb
}

// Build converts the builder to a ModelConfig that can be used with
// ApplyModel or written to a model file.
func (mb *ModelBuilder) Build() rxn.ModelConfig {
	reactions := make([]rxn.ReactionConfig, 0, len(mb.reactions))
	for _, rb := range mb.reactions {
		reactions = append(reactions, rb.Build())
	}
	cfg := rxn.ModelConfig{
		Name:      mb.name,
		Species:   mb.species,
		Reactions: reactions,
		Run:       mb.run,
	}
	if len(mb.parameters) > 0 {
		cfg.Parameters = mb.parameters
	}
	if len(mb.init) > 0 {
		cfg.Init = mb.init
	}
	return cfg
}

// ReactionBuilder provides a fluent API for building reaction
// configurations.
type ReactionBuilder struct {
	name    string
	rate    rxn.RateConfig
	reverse *rxn.RateConfig
	in      []string
	out     []string
}

// NewReaction creates a new reaction builder with the given name.
func NewReaction(name string) *ReactionBuilder {
	return &ReactionBuilder{name: name}
}

// Rate sets a Law-of-Mass-Action rate constant.
func (rb *ReactionBuilder) Rate(k float64) *ReactionBuilder {
	rb.rate = rxn.LMARate(k)
	return rb
}

// RateExpr sets an expression rate evaluated verbatim against the state.
func (rb *ReactionBuilder) RateExpr(src string) *ReactionBuilder {
	rb.rate = rxn.ExprRateConfig(src)
	return rb
}

// Reverse adds the reverse reaction with an LMA constant.
func (rb *ReactionBuilder) Reverse(k float64) *ReactionBuilder {
	rate := rxn.LMARate(k)
	rb.reverse = &rate
	return rb
}

// ReverseExpr adds the reverse reaction with an expression rate.
func (rb *ReactionBuilder) ReverseExpr(src string) *ReactionBuilder {
	rate := rxn.ExprRateConfig(src)
	rb.reverse = &rate
	return rb
}

// From sets the reactant multiset; repeat a name for multiplicity.
func (rb *ReactionBuilder) From(species ...string) *ReactionBuilder {
	rb.in = species
	return rb
}

// To sets the product multiset; repeat a name for multiplicity.
func (rb *ReactionBuilder) To(species ...string) *ReactionBuilder {
	rb.out = species
	return rb
}

// Build converts the builder to a ReactionConfig.
func (rb *ReactionBuilder) Build() rxn.ReactionConfig {
	return rxn.ReactionConfig{
		Name:        rb.name,
		Rate:        rb.rate,
		Reactants:   rb.in,
		Products:    rb.out,
		ReverseRate: rb.reverse,
	}
}

// Client is an HTTP client for the rxnkit server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for a server base URL, e.g. "http://localhost:8080".
func New(baseURL string) *Client {
	return &Client{baseURL: baseURL, http: http.DefaultClient}
}

// NewWithHTTPClient creates a client with a custom http.Client.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: baseURL, http: hc}
}

func (c *Client) endpoint(parts ...string) string {
	u := c.baseURL
	for _, p := range parts {
		u += "/" + url.PathEscape(p)
	}
	return u
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return body, nil
}

// Health checks the server's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	_, err = c.do(req)
	return err
}

// ApplyModel creates or replaces the model of a session.
func (c *Client) ApplyModel(ctx context.Context, session string, cfg rxn.ModelConfig) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding model: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint("session", session)+"/model", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = c.do(req)
	return err
}

// RunRequest parameterizes a remote run.
type RunRequest struct {
	Tmax   float64          `json:"tmax"`
	Steps  int              `json:"steps"`
	Seed   *uint64          `json:"seed,omitempty"`
	Sparse bool             `json:"sparse,omitempty"`
	Record []string         `json:"record,omitempty"`
	Events bool             `json:"events,omitempty"`
	Init   map[string]int64 `json:"init,omitempty"`
}

// Run runs a session's model on the server and returns the recorded table.
func (c *Client) Run(ctx context.Context, session string, reqBody RunRequest) (*rxn.Result, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encoding run request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint("session", session)+"/run", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var res rxn.Result
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decoding result: %w", err)
	}
	return &res, nil
}

// LastResult fetches the table of a session's most recent run.
func (c *Client) LastResult(ctx context.Context, session string) (*rxn.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.endpoint("session", session)+"/result", nil)
	if err != nil {
		return nil, err
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var res rxn.Result
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decoding result: %w", err)
	}
	return &res, nil
}

// State fetches the final state of a session's most recent run.
func (c *Client) State(ctx context.Context, session string) (rxn.Checkpoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.endpoint("session", session)+"/state", nil)
	if err != nil {
		return rxn.Checkpoint{}, err
	}
	body, err := c.do(req)
	if err != nil {
		return rxn.Checkpoint{}, err
	}
	return rxn.DecodeCheckpointJSON(body)
}

// Sessions lists the server's session IDs.
func (c *Client) Sessions(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/sessions", nil)
	if err != nil {
		return nil, err
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(body, &ids); err != nil {
		return nil, fmt.Errorf("decoding session list: %w", err)
	}
	return ids, nil
}

// DeleteSession removes a session from the server.
func (c *Client) DeleteSession(ctx context.Context, session string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.endpoint("session", session), nil)
	if err != nil {
		return err
	}
	_, err = c.do(req)
	return err
}
