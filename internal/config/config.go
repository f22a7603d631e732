package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nixlim/chatprint/internal/render"
)

type Config struct {
	Display DisplayConfig     `toml:"display"`
	Search  SearchConfig      `toml:"search"`
	Storage StorageConfig     `toml:"storage"`
	Colors  map[string]string `toml:"colors"`
	Agents  map[string]string `toml:"agents"`

	// ToolCallMarkdown lists the senders whose tool-call content is
	// rendered as Markdown, independently of Agents.
	ToolCallMarkdown map[string]bool `toml:"tool_call_markdown"`
}

type DisplayConfig struct {
	Debug               bool   `toml:"debug"`
	SuppressRichDisplay bool   `toml:"suppress_rich_display"`
	DefaultColor        string `toml:"default_color"`
	ToolExecutorName    string `toml:"tool_executor_name"`
	HistorySize         int    `toml:"history_size"`
}

type SearchConfig struct {
	FileSearchMaxNumResults int `toml:"file_search_max_num_results"`
}

// StorageConfig controls the run archive. An empty DBPath disables it.
type StorageConfig struct {
	DBPath        string `toml:"db_path"`
	RetentionDays int    `toml:"retention_days"`
}

type LoadResult struct {
	Config   Config
	Warnings []string
}

var knownTopLevel = map[string]bool{
	"display": true,
	"search":  true,
	"storage": true,
	"colors":  true,
	"agents":  true,

	"tool_call_markdown": true,
}

// DefaultConfig returns the built-in settings. The agent table reproduces
// the formatter and worker agents of the research pipeline this tool was
// first written for.
func DefaultConfig() Config {
	return Config{
		Display: DisplayConfig{
			Debug:               false,
			SuppressRichDisplay: false,
			DefaultColor:        "yellow",
			ToolExecutorName:    "_Swarm_Tool_Executor",
			HistorySize:         1000,
		},
		Search: SearchConfig{
			FileSearchMaxNumResults: 10,
		},
		Storage: StorageConfig{
			DBPath:        "",
			RetentionDays: 30,
		},
		Colors: map[string]string{
			"admin":   "green",
			"control": "red",
		},
		Agents:           defaultAgents(),
		ToolCallMarkdown: defaultToolCallMarkdown(),
	}
}

var formatterAgents = []string{
	"reviewer_response_formatter",
	"planner_response_formatter",
	"engineer_response_formatter",
	"control",
	"camels_agent",
	"admin",
	"camels_response_formatter",
	"classy_sz_response_formatter",
	"joke_critique_response_formatter",
	"joker_response_formatter",
	"lecturer_response_formatter",
	"course_director_response_formatter",
	"course_material_provider",
}

func defaultAgents() map[string]string {
	agents := make(map[string]string)
	for _, name := range formatterAgents {
		agents[name] = string(render.ModeRich)
	}
	agents["review_recorder"] = string(render.ModeRich)
	for _, name := range []string{
		"classy_sz_agent",
		"engineer",
		"researcher",
		"planner",
		"plan_reviewer",
		"joker",
		"joke_critique",
		"lecturer",
		"course_director",
	} {
		agents[name] = string(render.ModePlaceholder)
	}
	agents["structured_code_agent"] = string(render.ModeExecutor)
	return agents
}

// defaultToolCallMarkdown is the formatter list without review_recorder,
// whose tool calls are printed verbatim.
func defaultToolCallMarkdown() map[string]bool {
	senders := make(map[string]bool, len(formatterAgents))
	for _, name := range formatterAgents {
		senders[name] = true
	}
	return senders
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "chatprint", "config.toml")
}

func Load() (*LoadResult, error) {
	return LoadFrom(defaultConfigPath())
}

// LoadFrom reads the TOML file at path over the defaults. A missing file is
// not an error.
func LoadFrom(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &LoadResult{Config: DefaultConfig()}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	result, err := LoadFromString(string(data))
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return result, nil
}

func LoadFromString(data string) (*LoadResult, error) {
	cfg := DefaultConfig()
	result := &LoadResult{Config: cfg}

	if data == "" {
		return result, nil
	}

	var raw map[string]any
	if _, err := toml.Decode(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	var unknown []string
	for key := range raw {
		if !knownTopLevel[key] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		result.Warnings = append(result.Warnings, fmt.Sprintf("unknown config key: %q", key))
	}

	var tf tomlFile
	if _, err := toml.Decode(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	mergeFromRaw(&result.Config, &tf, raw)
	result.Warnings = append(result.Warnings, mergeTables(&result.Config, &tf)...)

	if err := validate(&result.Config); err != nil {
		return nil, err
	}

	return result, nil
}

type tomlFile struct {
	Display *DisplayConfig    `toml:"display"`
	Search  *SearchConfig     `toml:"search"`
	Storage *StorageConfig    `toml:"storage"`
	Colors  map[string]string `toml:"colors"`
	Agents  map[string]string `toml:"agents"`

	ToolCallMarkdown map[string]bool `toml:"tool_call_markdown"`
}

func mergeFromRaw(cfg *Config, tf *tomlFile, raw map[string]any) {
	if tf.Display != nil {
		if section, ok := rawSection(raw, "display"); ok {
			if _, exists := section["debug"]; exists {
				cfg.Display.Debug = tf.Display.Debug
			}
			if _, exists := section["suppress_rich_display"]; exists {
				cfg.Display.SuppressRichDisplay = tf.Display.SuppressRichDisplay
			}
			if _, exists := section["default_color"]; exists {
				cfg.Display.DefaultColor = tf.Display.DefaultColor
			}
			if _, exists := section["tool_executor_name"]; exists {
				cfg.Display.ToolExecutorName = tf.Display.ToolExecutorName
			}
			if _, exists := section["history_size"]; exists {
				cfg.Display.HistorySize = tf.Display.HistorySize
			}
		}
	}
	if tf.Search != nil {
		if section, ok := rawSection(raw, "search"); ok {
			if _, exists := section["file_search_max_num_results"]; exists {
				cfg.Search.FileSearchMaxNumResults = tf.Search.FileSearchMaxNumResults
			}
		}
	}
	if tf.Storage != nil {
		if section, ok := rawSection(raw, "storage"); ok {
			if _, exists := section["db_path"]; exists {
				cfg.Storage.DBPath = tf.Storage.DBPath
			}
			if _, exists := section["retention_days"]; exists {
				cfg.Storage.RetentionDays = tf.Storage.RetentionDays
			}
		}
	}
}

// mergeTables layers [colors], [agents] and [tool_call_markdown] entries
// over the defaults. An agent mapped to "" or a tool-call sender mapped to
// false drops the default entry for that name.
func mergeTables(cfg *Config, tf *tomlFile) []string {
	var warnings []string
	for name, color := range tf.Colors {
		cfg.Colors[name] = color
	}
	names := make([]string, 0, len(tf.Agents))
	for name := range tf.Agents {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		mode := tf.Agents[name]
		if mode == "" {
			delete(cfg.Agents, name)
			continue
		}
		if _, ok := render.ParseMode(mode); !ok {
			warnings = append(warnings, fmt.Sprintf("agent %q: unknown render mode %q, using plain", name, mode))
			mode = string(render.ModePlain)
		}
		cfg.Agents[name] = mode
	}
	for name, on := range tf.ToolCallMarkdown {
		if on {
			cfg.ToolCallMarkdown[name] = true
		} else {
			delete(cfg.ToolCallMarkdown, name)
		}
	}
	return warnings
}

func rawSection(raw map[string]any, key string) (map[string]any, bool) {
	v, ok := raw[key]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

func validate(cfg *Config) error {
	var errs []string

	if cfg.Display.DefaultColor == "" {
		errs = append(errs, "default_color must not be empty")
	}
	if cfg.Display.HistorySize < 1 {
		errs = append(errs, fmt.Sprintf("history_size must be positive, got %d", cfg.Display.HistorySize))
	}
	if n := cfg.Search.FileSearchMaxNumResults; n < 1 || n > 50 {
		errs = append(errs, fmt.Sprintf("file_search_max_num_results must be 1-50, got %d", n))
	}

	if cfg.Storage.RetentionDays < 1 {
		errs = append(errs, fmt.Sprintf("retention_days must be >= 1, got %d", cfg.Storage.RetentionDays))
	}

	for name, color := range cfg.Colors {
		if color == "" {
			errs = append(errs, fmt.Sprintf("color for %q must not be empty", name))
		}
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("config validation error: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Policy converts the display settings into a render policy.
func (c Config) Policy() render.Policy {
	colors := make(map[string]string, len(c.Colors))
	for k, v := range c.Colors {
		colors[k] = v
	}
	modes := make(map[string]render.Mode, len(c.Agents))
	for name, m := range c.Agents {
		mode, _ := render.ParseMode(m)
		modes[name] = mode
	}
	toolCallMarkdown := make(map[string]bool, len(c.ToolCallMarkdown))
	for k, v := range c.ToolCallMarkdown {
		toolCallMarkdown[k] = v
	}
	return render.Policy{
		Debug:               c.Display.Debug,
		SuppressRichDisplay: c.Display.SuppressRichDisplay,
		DefaultColor:        c.Display.DefaultColor,
		Colors:              colors,
		Modes:               modes,
		ToolCallMarkdown:    toolCallMarkdown,
		ToolExecutorName:    c.Display.ToolExecutorName,
	}
}
