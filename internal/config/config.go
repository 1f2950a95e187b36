package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/brogergvhs/webtoond/internal/util"
)

type Config struct {
	Output         string `yaml:"output"`
	ImageWorkers   int    `yaml:"image_workers"`
	ChapterWorkers int    `yaml:"chapter_workers"`
	Retries        int    `yaml:"retries"`
	Debug          bool   `yaml:"debug"`

	Timeout    time.Duration `yaml:"timeout"`
	Render     bool          `yaml:"render"`
	RenderWait time.Duration `yaml:"render_wait"`
	ChromePath string        `yaml:"chrome_path"`

	ExtractComments bool  `yaml:"extract_comments"`
	NLP             bool  `yaml:"nlp"`
	MinImageBytes   int64 `yaml:"min_image_bytes"`
	CBZ             bool  `yaml:"cbz"`

	DBPath string `yaml:"db_path"`
	SaveDB bool   `yaml:"save_db"`

	Cookie     string `yaml:"cookie"`
	CookieFile string `yaml:"cookie_file"`
	UserAgent  string `yaml:"user_agent"`
}

// Options carries command-line overrides. Zero values leave the loaded
// config untouched.
type Options struct {
	IgnoreConfig   bool
	Debug          bool
	Output         string
	ImageWorkers   int
	ChapterWorkers int
	Retries        int
	Timeout        time.Duration
	Render         bool
	ChromePath     string
	NoComments     bool
	NoNLP          bool
	NoDB           bool
	DBPath         string
	CBZ            bool
	Cookie         string
	CookieFile     string
	UserAgent      string
}

func DefaultConfig() *Config {
	return &Config{
		Output:          "webtoon_downloads",
		ImageWorkers:    20,
		ChapterWorkers:  4,
		Retries:         3,
		Timeout:         30 * time.Second,
		Render:          false,
		RenderWait:      10 * time.Second,
		ExtractComments: true,
		NLP:             true,
		MinImageBytes:   1000,
		DBPath:          "manga_collection.db",
		SaveDB:          true,
		CBZ:             false,
		UserAgent:       util.DefaultUserAgent,
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// loadYAML decodes path over the defaults so keys missing from the file
// keep their default values.
func loadYAML(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	c := DefaultConfig()
	if err := yaml.NewDecoder(f).Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return c, nil
}

func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if errors.Is(err, ErrNoConfig) || activePath == "" {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `webtoond config init` to create an actual config\n", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, nil
}

func mergeConfig(c *Config, o Options) {
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.ImageWorkers != 0 {
		c.ImageWorkers = o.ImageWorkers
	}
	if o.ChapterWorkers != 0 {
		c.ChapterWorkers = o.ChapterWorkers
	}
	if o.Retries != 0 {
		c.Retries = o.Retries
	}
	if o.Timeout != 0 {
		c.Timeout = o.Timeout
	}
	if o.Debug {
		c.Debug = true
	}
	if o.Render {
		c.Render = true
	}
	if o.ChromePath != "" {
		c.ChromePath = o.ChromePath
	}
	if o.NoComments {
		c.ExtractComments = false
	}
	if o.NoNLP {
		c.NLP = false
	}
	if o.NoDB {
		c.SaveDB = false
	}
	if o.DBPath != "" {
		c.DBPath = o.DBPath
	}
	if o.CBZ {
		c.CBZ = true
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
}

func normalizeDefaults(c *Config) {
	d := DefaultConfig()
	if c.Output == "" {
		c.Output = d.Output
	}
	if c.ImageWorkers <= 0 {
		c.ImageWorkers = d.ImageWorkers
	}
	if c.ChapterWorkers <= 0 {
		c.ChapterWorkers = d.ChapterWorkers
	}
	if c.Retries <= 0 {
		c.Retries = d.Retries
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.RenderWait <= 0 {
		c.RenderWait = d.RenderWait
	}
	if c.MinImageBytes <= 0 {
		c.MinImageBytes = d.MinImageBytes
	}
	if c.DBPath == "" {
		c.DBPath = d.DBPath
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
}

func (c *Config) Print() {
	c.Fprint(os.Stdout)
}

func (c *Config) Fprint(w io.Writer) {
	_, _ = fmt.Fprintf(w, " -output: %s\n", c.Output)
	_, _ = fmt.Fprintf(w, " -image_workers: %d\n", c.ImageWorkers)
	_, _ = fmt.Fprintf(w, " -chapter_workers: %d\n", c.ChapterWorkers)
	_, _ = fmt.Fprintf(w, " -retries: %d\n", c.Retries)
	_, _ = fmt.Fprintf(w, " -timeout: %s\n", c.Timeout)
	if c.Render {
		_, _ = fmt.Fprintf(w, " -render: %t (wait %s)\n", c.Render, c.RenderWait)
	}
	if c.ChromePath != "" {
		_, _ = fmt.Fprintf(w, " -chrome_path: %s\n", c.ChromePath)
	}
	_, _ = fmt.Fprintf(w, " -extract_comments: %t\n", c.ExtractComments)
	if c.ExtractComments {
		_, _ = fmt.Fprintf(w, " -nlp: %t\n", c.NLP)
	}
	if c.SaveDB {
		_, _ = fmt.Fprintf(w, " -db_path: %s\n", c.DBPath)
	}
	if c.CBZ {
		_, _ = fmt.Fprintf(w, " -cbz: %t\n", c.CBZ)
	}
	if c.Debug {
		_, _ = fmt.Fprintf(w, " -debug: %t\n", c.Debug)
	}
	if c.CookieFile != "" {
		_, _ = fmt.Fprintf(w, " -cookie_file: %s\n", c.CookieFile)
	}
}
