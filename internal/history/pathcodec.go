package history

import (
	"net/url"
	"strings"
)

const fileScheme = "file://"

// defaultDenylist holds generic container-folder names that never make a
// good project name. Hand-picked; extendable per scan via config.
var defaultDenylist = []string{
	"user",
	"profile",
	"documents",
	"my documents",
	"downloads",
	"desktop",
	"projects",
	"code",
	"dev",
	"src",
	"source",
	"repos",
	"repositories",
	"workspace",
	"workspaces",
	"git",
}

// homeMarkers are segments that introduce a user profile directory. The
// marker itself and the segment that follows it (the username) are both
// skipped during project-name inference.
var homeMarkers = map[string]bool{
	"users": true,
	"home":  true,
}

// UnknownProject is returned by InferProjectName when a path is too short
// to carry any usable segment.
const UnknownProject = "Unknown Project"

// DecodeResourceRef turns a stored resource reference (a file URI) into a
// best-effort absolute filesystem path. It strips the file:// scheme,
// percent-decodes the remainder, and normalizes Windows-shaped targets
// (/c:/... becomes C:\...) so that paths compare stably.
//
// Decoding never fails: malformed input degrades to the raw string minus
// the scheme, which yields an unusable but non-crashing path.
func DecodeResourceRef(ref string) string {
	s := strings.TrimPrefix(ref, fileScheme)
	if decoded, err := url.PathUnescape(s); err == nil {
		s = decoded
	}

	// Windows-shaped: leading slash followed by a drive letter.
	if len(s) >= 3 && s[0] == '/' && isDriveLetter(s[1]) && s[2] == ':' {
		s = s[1:]
		s = strings.ToUpper(s[:1]) + s[1:]
		s = strings.ReplaceAll(s, "/", `\`)
	}

	return s
}

func isDriveLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// InferProjectName guesses the top-level project folder of an absolute
// path. It walks the path segments in order, skipping root and drive
// markers, home directories and the username that follows them, and a
// denylist of generic container names (case-insensitive). The first
// surviving segment is the project name.
//
// If every segment is denylisted, the second-to-last segment is returned,
// or UnknownProject when the path has fewer than two segments. The
// heuristic is deliberately approximate; changing it changes which project
// a file lands under, so treat any adjustment as a behavioral change.
// extraDenylist extends the built-in set for stores with unusual layouts.
func InferProjectName(path string, extraDenylist []string) string {
	segments := splitSegments(path)
	if len(segments) < 2 {
		return UnknownProject
	}

	deny := make(map[string]bool, len(defaultDenylist)+len(extraDenylist))
	for _, d := range defaultDenylist {
		deny[d] = true
	}
	for _, d := range extraDenylist {
		deny[strings.ToLower(d)] = true
	}

	skipNext := false
	for _, seg := range segments {
		if skipNext {
			skipNext = false
			continue
		}
		lower := strings.ToLower(seg)
		if homeMarkers[lower] {
			skipNext = true
			continue
		}
		if deny[lower] {
			continue
		}
		return seg
	}

	return segments[len(segments)-2]
}

// RelativeToProject returns the portion of path after the project-name
// segment, located case-insensitively, joined with forward slashes. It
// reports false when the project name does not appear in the path or
// nothing follows it. Copy collaborators join the result under their own
// destination root.
func RelativeToProject(path, project string) (string, bool) {
	segments := splitSegments(path)
	for i, seg := range segments {
		if strings.EqualFold(seg, project) && i+1 < len(segments) {
			return strings.Join(segments[i+1:], "/"), true
		}
	}
	return "", false
}

// splitSegments breaks a path into its non-empty segments, accepting both
// separator styles and discarding drive markers like "C:".
func splitSegments(path string) []string {
	raw := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	segments := raw[:0]
	for _, seg := range raw {
		if len(seg) == 2 && isDriveLetter(seg[0]) && seg[1] == ':' {
			continue
		}
		segments = append(segments, seg)
	}
	return segments
}
