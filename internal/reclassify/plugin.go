package reclassify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/plugin"
)

// PluginProvider adapts an external plugin to the Provider interface.
type PluginProvider struct {
	plugin   *plugin.Plugin
	executor *plugin.Executor
}

// NewPluginProvider wraps p, running it through executor.
func NewPluginProvider(p *plugin.Plugin, executor *plugin.Executor) *PluginProvider {
	return &PluginProvider{plugin: p, executor: executor}
}

// Name returns the plugin's manifest name.
func (p *PluginProvider) Name() string {
	return p.plugin.Manifest.Name
}

func (p *PluginProvider) call(ctx context.Context, req *plugin.Request) (json.RawMessage, error) {
	if !p.plugin.Supports(req.Action) {
		return nil, fmt.Errorf("%s %s: %w", p.Name(), req.Action, ErrUnsupported)
	}

	resp, err := p.executor.Execute(ctx, p.plugin, req)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%s: %s", p.Name(), resp.Error)
	}
	return resp.Data, nil
}

// ClassifyPose sends the JPEG to the plugin's classify-pose action.
func (p *PluginProvider) ClassifyPose(ctx context.Context, image []byte) (Verdict, error) {
	data, err := p.call(ctx, &plugin.Request{
		Action: plugin.ActionClassifyPose,
		Image:  image,
		Prompt: ClassifyPrompt,
	})
	if err != nil {
		return Verdict{}, err
	}
	return parseVerdict(data)
}

// GenerateText sends prompt to the plugin's generate-text action. The plugin
// answers with {"text": "..."}.
func (p *PluginProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	data, err := p.call(ctx, &plugin.Request{
		Action: plugin.ActionGenerateText,
		Prompt: prompt,
	})
	if err != nil {
		return "", err
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decode %s text: %w", p.Name(), err)
	}
	return out.Text, nil
}

// RegisterPlugins registers every plugin the manager has discovered.
func RegisterPlugins(r *Registry, m *plugin.Manager, executor *plugin.Executor) int {
	plugins := m.List()
	for _, p := range plugins {
		r.Register(NewPluginProvider(p, executor))
	}
	return len(plugins)
}
