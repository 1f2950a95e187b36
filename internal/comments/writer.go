package comments

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brogergvhs/webtoond/internal/webtoon"
)

var separator = strings.Repeat("-", 50)

func FileName(episodeNo string) string {
	return "comments_episode_" + episodeNo + ".txt"
}

// Render formats the comments file: a header, the summary, then one block
// per comment with a pipe-delimited metadata line above the body.
func Render(episodeNo string, comments []webtoon.Comment, summary string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Comments for Episode %s\n", episodeNo)
	fmt.Fprintf(&b, "Total comments: %d\n", len(comments))
	b.WriteString(separator + "\n\n")

	b.WriteString("SUMMARY:\n")
	b.WriteString(summary + "\n\n")
	b.WriteString(separator + "\n\n")

	for i, c := range comments {
		fmt.Fprintf(&b, "#%d | %s | %s | Likes: %s\n", i+1, c.Username, c.Date, c.Likes)
		b.WriteString(c.Text + "\n")
		b.WriteString(separator + "\n\n")
	}

	return b.String()
}

// WriteFile stores the comments under dir and returns the file path. Nothing
// is written when there are no comments.
func WriteFile(dir, episodeNo string, comments []webtoon.Comment, summary string) (string, error) {
	if len(comments) == 0 {
		return "", nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, FileName(episodeNo))
	if err := os.WriteFile(path, []byte(Render(episodeNo, comments, summary)), 0o644); err != nil {
		return "", fmt.Errorf("write comments: %w", err)
	}

	return path, nil
}
