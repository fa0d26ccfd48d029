package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/ccdash/internal/errors"
)

// sectionComments are written above each top-level key by WriteDefault.
var sectionComments = map[string]string{
	"server":     "Monitoring backend. Override with CCDASH_SERVER_URL.",
	"poll":       "Refresh cadence for the device list and the selected agent's history.",
	"thresholds": "Percentages. Above warning is moderate, above critical is danger.",
	"alerts":     "Minimum gap between repeated alerts for one agent metric.",
	"log":        "Log file used while the dashboard owns the terminal.",
}

// WriteDefault writes cfg to path as commented YAML. It refuses to overwrite
// an existing file unless force is set.
func WriteDefault(path string, cfg *Config, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.New(errors.ErrConfig,
			"Config already exists at "+path,
			"Use --force to overwrite it")
	}

	root, err := encodeNode(cfg)
	if err != nil {
		return err
	}

	root.HeadComment = "ccdash configuration"
	doc := root.Content[0]
	for i := 0; i < len(doc.Content)-1; i += 2 {
		if c, ok := sectionComments[doc.Content[i].Value]; ok {
			doc.Content[i].HeadComment = c
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Can't create config directory",
			"Check permissions on "+filepath.Dir(path))
	}
	return writeNode(path, root)
}

// SetValue updates a dotted key (e.g. "server.url") in an existing config
// file, keeping the rest of the document and its comments intact. Missing
// intermediate mappings are created.
func SetValue(path, key, value string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file", "Check the file exists")
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to parse config file", "Check the YAML syntax in "+path)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return errors.New(errors.ErrConfig,
			"Expected a mapping at the top of "+path, "")
	}

	node := root.Content[0]
	parts := strings.Split(key, ".")
	for _, part := range parts[:len(parts)-1] {
		child := findMapValue(node, part)
		if child == nil {
			child = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			node.Content = append(node.Content, scalar(part), child)
		}
		if child.Kind != yaml.MappingNode {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("'%s' is not a mapping in %s", part, path), "")
		}
		node = child
	}

	leaf := parts[len(parts)-1]
	if existing := findMapValue(node, leaf); existing != nil {
		existing.Kind = yaml.ScalarNode
		existing.Tag = guessTag(value)
		existing.Value = value
		existing.Style = 0
	} else {
		v := scalar(value)
		v.Tag = guessTag(value)
		node.Content = append(node.Content, scalar(leaf), v)
	}

	return writeNode(path, &root)
}

// encodeNode renders cfg to a yaml.Node with durations as strings.
func encodeNode(cfg *Config) (*yaml.Node, error) {
	raw := map[string]any{
		"version": cfg.Version,
		"server": map[string]any{
			"url":     cfg.Server.URL,
			"timeout": shortDuration(cfg.Server.Timeout),
			"retries": cfg.Server.Retries,
		},
		"poll": map[string]any{
			"roster_interval":  shortDuration(cfg.Poll.RosterInterval),
			"history_interval": shortDuration(cfg.Poll.HistoryInterval),
			"history_range":    cfg.Poll.HistoryRange,
		},
		"thresholds": map[string]any{
			"warning":  cfg.Thresholds.Warning,
			"critical": cfg.Thresholds.Critical,
		},
		"alerts": map[string]any{
			"cooldown":       shortDuration(cfg.Alerts.Cooldown),
			"toast_duration": shortDuration(cfg.Alerts.ToastDuration),
		},
		"log": map[string]any{
			"level": cfg.Log.Level,
			"file":  cfg.Log.File,
		},
	}

	var root yaml.Node
	if err := root.Encode(raw); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig, "Failed to encode config", "")
	}
	orderKeys(&root, []string{"version", "server", "poll", "thresholds", "alerts", "log"})

	// Encode yields the mapping itself; wrap it in a document.
	return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{&root}}, nil
}

// orderKeys moves the listed keys of a mapping to the front, in order.
func orderKeys(m *yaml.Node, keys []string) {
	if m.Kind != yaml.MappingNode {
		return
	}
	var ordered []*yaml.Node
	used := make(map[int]bool)
	for _, k := range keys {
		for i := 0; i < len(m.Content)-1; i += 2 {
			if m.Content[i].Value == k {
				ordered = append(ordered, m.Content[i], m.Content[i+1])
				used[i] = true
			}
		}
	}
	for i := 0; i < len(m.Content)-1; i += 2 {
		if !used[i] {
			ordered = append(ordered, m.Content[i], m.Content[i+1])
		}
	}
	m.Content = ordered
}

func writeNode(path string, root *yaml.Node) error {
	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(root); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Failed to encode config", "")
	}
	encoder.Close()

	if err := os.WriteFile(path, []byte(buf.String()), 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write config file",
			"Check permissions on "+path)
	}
	return nil
}

// findMapValue finds a value in a mapping node by key name.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		if node.Content[i].Kind == yaml.ScalarNode && node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}

	return nil
}

// shortDuration trims zero units: 5m0s becomes 5m, 1h0m0s becomes 1h.
func shortDuration(d time.Duration) string {
	s := d.String()
	if strings.HasSuffix(s, "m0s") {
		s = s[:len(s)-2]
	}
	if strings.HasSuffix(s, "h0m") {
		s = s[:len(s)-2]
	}
	return s
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func guessTag(v string) string {
	if _, err := strconv.ParseInt(v, 10, 64); err == nil {
		return "!!int"
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return "!!float"
	}
	if v == "true" || v == "false" {
		return "!!bool"
	}
	return "!!str"
}
