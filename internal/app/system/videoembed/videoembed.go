// Package videoembed recognises YouTube links so the links section can
// render them as embedded players.
package videoembed

import "regexp"

// Matches watch, share, embed, /v/ and youtu.be shapes; group 1 is the
// 11-character video id.
var youtubeRe = regexp.MustCompile(`(?:youtube\.com/(?:[^/\n\s]+/\S+/|(?:v|e(?:mbed)?)/|.*[?&]v=)|youtu\.be/)([a-zA-Z0-9_-]{11})`)

// YouTubeID returns the video id in url, or "" when url is not a
// recognised YouTube link.
func YouTubeID(url string) string {
	m := youtubeRe.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

// EmbedURL returns the iframe src for url, or "" when it is not a
// YouTube link.
func EmbedURL(url string) string {
	id := YouTubeID(url)
	if id == "" {
		return ""
	}
	return "https://www.youtube.com/embed/" + id
}
