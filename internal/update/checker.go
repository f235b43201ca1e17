// Package update implements the periodic new-release notification. Every
// failure path degrades to "no update available": checking must never get in
// the way of a search.
package update

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

// DefaultFeedURL points at the project's release feed.
const DefaultFeedURL = "https://github.com/tom-doerr/perplexity-search/releases.atom"

// state tracks when we last checked the feed and last nagged the user, so
// both happen at most once per interval.
type state struct {
	LastCheck    int64 `json:"last_check"`
	LastReminder int64 `json:"last_reminder"`
}

// Checker compares the running version against the newest release.
type Checker struct {
	CurrentVersion string
	FeedURL        string        // defaults to DefaultFeedURL
	StatePath      string        // defaults to ~/.config/plexsearch/update_state.json
	Interval       time.Duration // defaults to 24h
	HTTPClient     *http.Client

	now func() time.Time // test seam
}

func (c *Checker) feedURL() string {
	if c.FeedURL != "" {
		return c.FeedURL
	}
	return DefaultFeedURL
}

func (c *Checker) statePath() (string, error) {
	if c.StatePath != "" {
		return c.StatePath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "plexsearch", "update_state.json"), nil
}

func (c *Checker) interval() time.Duration {
	if c.Interval > 0 {
		return c.Interval
	}
	return 24 * time.Hour
}

func (c *Checker) timeNow() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

// CheckAndNotify returns the newer released version, or "" when there is
// nothing to report — because we are current, because we checked recently,
// or because the check failed.
func (c *Checker) CheckAndNotify() string {
	path, err := c.statePath()
	if err != nil {
		return ""
	}
	st := loadState(path)
	now := c.timeNow().Unix()
	interval := int64(c.interval().Seconds())

	if now-st.LastCheck < interval {
		return ""
	}
	st.LastCheck = now

	latest := c.latestVersion()
	if !newerThan(latest, c.CurrentVersion) {
		saveState(path, st)
		return ""
	}
	if now-st.LastReminder < interval {
		saveState(path, st)
		return ""
	}
	st.LastReminder = now
	saveState(path, st)
	return latest
}

// latestVersion fetches the release feed and extracts the newest entry's
// version. Any failure yields "".
func (c *Checker) latestVersion() string {
	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	resp, err := client.Get(c.feedURL())
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var feed struct {
		Entries []struct {
			Title string `xml:"title"`
		} `xml:"entry"`
	}
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return ""
	}
	if len(feed.Entries) == 0 {
		return ""
	}
	return versionFromTitle(feed.Entries[0].Title)
}

// versionFromTitle pulls a version out of a feed entry title, tolerating
// "name: 1.2.3", "name 1.2.3", "v1.2.3" and bare "1.2.3" shapes.
func versionFromTitle(title string) string {
	title = strings.TrimSpace(title)
	if _, rest, ok := strings.Cut(title, ": "); ok {
		return rest
	}
	if i := strings.LastIndex(title, " "); i >= 0 {
		return title[i+1:]
	}
	return title
}

// newerThan reports whether latest is a valid version strictly newer than
// current. Unparseable versions compare as not newer.
func newerThan(latest, current string) bool {
	l, cur := canonical(latest), canonical(current)
	if !semver.IsValid(l) || !semver.IsValid(cur) {
		return false
	}
	return semver.Compare(l, cur) > 0
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return v
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

func loadState(path string) state {
	data, err := os.ReadFile(path)
	if err != nil {
		return state{}
	}
	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return state{}
	}
	return st
}

func saveState(path string, st state) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	data, err := json.Marshal(st)
	if err != nil {
		return
	}
	_ = os.WriteFile(path, data, 0o644)
}

// Notice renders the user-facing update hint.
func Notice(latest string) string {
	return fmt.Sprintf("A new version of plexsearch is available: %s", latest)
}
