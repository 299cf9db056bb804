package sheet

import (
	"net/url"
	"regexp"
	"strings"
)

// FallbackCover is served for rows with a missing or unusable cover link.
const FallbackCover = "https://dummyimage.com/480x640/e5e7eb/9ca3af.png&text=No+Cover"

var driveFilePath = regexp.MustCompile(`/file/d/([^/]+)`)

// hosts whose image links are accepted as-is, even over plain http
var trustedImageHosts = []string{
	"googleusercontent.com",
	"pstatic.net",
	"aladin.co.kr",
	"books.google.com",
}

// NormalizeCover turns a spreadsheet cover cell into an absolute image URL.
// Google Drive share links are rewritten to their direct-view form.
func NormalizeCover(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return FallbackCover
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return FallbackCover
	}

	host := strings.ToLower(u.Hostname())
	if host == "drive.google.com" {
		if id := u.Query().Get("id"); id != "" {
			return driveDirect(id)
		}
		if m := driveFilePath.FindStringSubmatch(u.Path); m != nil {
			return driveDirect(m[1])
		}
	}

	for _, h := range trustedImageHosts {
		if strings.Contains(host, h) {
			return raw
		}
	}

	if u.Scheme == "https" {
		return raw
	}

	return FallbackCover
}

func driveDirect(id string) string {
	return "https://drive.google.com/uc?export=view&id=" + url.QueryEscape(id)
}
