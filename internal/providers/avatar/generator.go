package avatar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rhymelab/internal/infra"
)

// Describer and Synthesizer are the two stages of the avatar pipeline,
// satisfied by the OpenAI client.
type Describer interface {
	DescribeChild(ctx context.Context, imageBase64 string) (string, error)
}

type Synthesizer interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// BlobStore persists downloaded avatar bytes and maps keys to public URLs.
type BlobStore interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
	PublicURL(key string) string
}

// Request carries the inputs for one avatar generation.
type Request struct {
	UserID      string
	ChildID     string
	PhotoBase64 string
	Prompt      string
}

// Result is the generated avatar. Stored is false when the durable persist
// failed and URL points at the provider's ephemeral copy instead.
type Result struct {
	URL    string
	Stored bool
}

// Generator runs the two-stage avatar pipeline: describe the photo, compose
// the prompt, synthesize the image, then persist the bytes durably.
type Generator struct {
	describer   Describer
	synthesizer Synthesizer
	store       BlobStore
	httpClient  *http.Client
	logger      infra.Logger
	now         func() time.Time
}

// NewGenerator wires the pipeline stages together.
func NewGenerator(describer Describer, synthesizer Synthesizer, store BlobStore, httpClient *http.Client, logger infra.Logger) *Generator {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Generator{
		describer:   describer,
		synthesizer: synthesizer,
		store:       store,
		httpClient:  httpClient,
		logger:      logger,
		now:         time.Now,
	}
}

const styleDirectives = `Style requirements:
- 3D Cocomelon animation style
- Big expressive cartoon eyes
- Soft rounded features
- Bright child-friendly colors
- Warm friendly smile
- Professional quality suitable for nursery rhyme videos
- No text or logos
- Clean white background`

// DefaultPrompt is the avatar prompt used when the caller supplies none.
func DefaultPrompt() string {
	return `Create a beautiful 3D cartoon avatar of a child in the style of Cocomelon nursery rhyme videos. The character should be:
- Adorable and child-friendly
- Have large, expressive cartoon eyes
- Soft, rounded facial features
- Bright, cheerful colors
- A warm, happy smile
- Clean and simple design suitable for animation`
}

// Generate runs the full pipeline. A failed durable persist falls back to the
// provider's URL rather than failing the whole operation.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	description, err := g.describer.DescribeChild(ctx, req.PhotoBase64)
	if err != nil {
		return nil, fmt.Errorf("describe photo: %w", err)
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		prompt = DefaultPrompt()
	}
	composed := prompt + "\n\n" + description + "\n\n" + styleDirectives

	providerURL, err := g.synthesizer.GenerateImage(ctx, composed)
	if err != nil {
		return nil, fmt.Errorf("synthesize avatar: %w", err)
	}

	storedURL, err := g.persist(ctx, req.UserID, req.ChildID, providerURL)
	if err != nil {
		g.logger.Warn().Err(err).Str("child_id", req.ChildID).Msg("avatar persist failed, falling back to provider url")
		return &Result{URL: providerURL, Stored: false}, nil
	}
	return &Result{URL: storedURL, Stored: true}, nil
}

func (g *Generator) persist(ctx context.Context, userID, childID, sourceURL string) (string, error) {
	if g.store == nil {
		return "", fmt.Errorf("no blob store configured")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}
	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("download avatar: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download avatar: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read avatar bytes: %w", err)
	}

	key := fmt.Sprintf("%s/%s/avatar_%d.png", userID, childID, g.now().UnixMilli())
	savedKey, err := g.store.Write(ctx, key, data)
	if err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}
	return g.store.PublicURL(savedKey), nil
}
