package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/brogergvhs/webtoond/internal/config"
)

// scrapeFlags are shared by every command that talks to the site.
type scrapeFlags struct {
	url        string
	output     string
	retries    int
	timeout    time.Duration
	render     bool
	chromePath string
	noDB       bool
	dbPath     string
	cookie     string
	cookieFile string
	userAgent  string
}

func (f *scrapeFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.url, "url", "", "series list or episode viewer URL")
	fl.StringVar(&f.output, "output", "", "root folder for downloaded series")
	fl.IntVar(&f.retries, "retries", 0, "attempts per page and image")
	fl.DurationVar(&f.timeout, "timeout", 0, "per-request timeout")
	fl.BoolVar(&f.render, "render", false, "render episode pages in headless Chrome to load comments")
	fl.StringVar(&f.chromePath, "chrome-path", "", "Chrome/Chromium binary used by --render")
	fl.BoolVar(&f.noDB, "no-db", false, "do not save series to the database")
	fl.StringVar(&f.dbPath, "db", "", "database file")
	fl.StringVar(&f.cookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	fl.StringVar(&f.cookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	fl.StringVar(&f.userAgent, "user-agent", "", "override User-Agent")
}

func (f *scrapeFlags) options() config.Options {
	return config.Options{
		Output:     f.output,
		Retries:    f.retries,
		Timeout:    f.timeout,
		Render:     f.render,
		ChromePath: f.chromePath,
		NoDB:       f.noDB,
		DBPath:     f.dbPath,
		Cookie:     f.cookie,
		CookieFile: f.cookieFile,
		UserAgent:  f.userAgent,
	}
}

func (f *scrapeFlags) requireURL() error {
	if f.url == "" {
		return fmt.Errorf("missing --url")
	}
	return nil
}
