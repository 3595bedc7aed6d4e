package bot

import "strings"

// crawlerSignatures is the fixed allow-list of known crawler user-agent
// fragments: search engines plus social-preview fetchers. Matching is
// case-insensitive substring containment.
var crawlerSignatures = []string{
	"googlebot",
	"bingbot",
	"slurp",
	"duckduckbot",
	"baiduspider",
	"yandex",
	"sogou",
	"exabot",
	"facebot",
	"ia_archiver",
	"twitterbot",
	"facebookexternalhit",
	"linkedinbot",
	"embedly",
	"pinterest",
	"slackbot",
	"vkshare",
	"w3c_validator",
}

// IsBot reports whether the user agent belongs to a known crawler. An empty
// or unrecognized user agent classifies as human, so cache access is denied
// rather than leaked.
func IsBot(userAgent string) bool {
	if userAgent == "" {
		return false
	}
	ua := strings.ToLower(userAgent)
	for _, sig := range crawlerSignatures {
		if strings.Contains(ua, sig) {
			return true
		}
	}
	return false
}
