package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/cargo-check-i18n/internal/config"
)

// Lister handles listing the models of an OpenAI-compatible endpoint
type Lister struct {
	baseURL string
	client  *openai.Client
}

// NewLister creates a model lister for the endpoint in cfg
func NewLister(cfg *config.Config) *Lister {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = BaseURL(cfg.APIURL)

	return &Lister{
		baseURL: clientCfg.BaseURL,
		client:  openai.NewClientWithConfig(clientCfg),
	}
}

// BaseURL derives the API root from a chat completions URL, e.g.
// https://api.openai.com/v1/chat/completions becomes https://api.openai.com/v1
func BaseURL(apiURL string) string {
	u := strings.TrimSuffix(apiURL, "/")
	return strings.TrimSuffix(u, "/chat/completions")
}

// List returns the sorted model ids offered by the endpoint
func (l *Lister) List(ctx context.Context) ([]string, error) {
	models, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models at %s: %w", l.baseURL, err)
	}

	ids := make([]string, 0, len(models.Models))
	for _, model := range models.Models {
		ids = append(ids, model.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

// Print writes the chat models first, then everything else
func (l *Lister) Print(ctx context.Context, w io.Writer) error {
	ids, err := l.List(ctx)
	if err != nil {
		return err
	}

	chatModels := []string{}
	otherModels := []string{}
	for _, id := range ids {
		if strings.Contains(id, "gpt") || strings.Contains(id, "chat") {
			chatModels = append(chatModels, id)
		} else {
			otherModels = append(otherModels, id)
		}
	}

	fmt.Fprintf(w, "Models available at %s:\n", l.baseURL)
	fmt.Fprintln(w, "\nChat models (usable for translation):")
	if len(chatModels) == 0 {
		fmt.Fprintln(w, "  No chat models found")
	}
	for _, id := range chatModels {
		fmt.Fprintf(w, "  %s\n", id)
	}

	if len(otherModels) > 0 {
		fmt.Fprintln(w, "\nOther models:")
		for _, id := range otherModels {
			fmt.Fprintf(w, "  %s\n", id)
		}
	}

	return nil
}
