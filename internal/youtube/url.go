package youtube

import "regexp"

// videoURLPattern recognizes the URL shapes people paste:
//
//	https://www.youtube.com/watch?v=ID   (v may follow other query params)
//	https://m.youtube.com/watch?v=ID
//	https://www.youtube.com/embed/ID
//	https://www.youtube.com/v/ID
//	https://www.youtube.com/shorts/ID
//	https://www.youtube.com/live/ID
//	https://youtu.be/ID
//
// The scheme and "www." are optional. ID is exactly 11 characters of
// [A-Za-z0-9_-]; anything after it must start a new query/fragment/path part.
var videoURLPattern = regexp.MustCompile(
	`^(?:https?://)?(?:(?:www|m|music)\.)?` +
		`(?:youtube\.com/(?:watch\?(?:[^#\s]*&)?v=|embed/|v/|shorts/|live/)|youtu\.be/)` +
		`([A-Za-z0-9_-]{11})` +
		`(?:[?&#/][^\s]*)?$`,
)

// ExtractVideoID returns the 11-character video id embedded in rawURL.
// ok is false when rawURL is not a recognized YouTube video URL.
func ExtractVideoID(rawURL string) (id string, ok bool) {
	m := videoURLPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsVideoURL reports whether rawURL is a recognized YouTube video URL.
func IsVideoURL(rawURL string) bool {
	_, ok := ExtractVideoID(rawURL)
	return ok
}
