package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// URLValidationError names the field and the offending link.
type URLValidationError struct {
	Field   string
	Message string
	URL     string
}

func (e URLValidationError) Error() string {
	return fmt.Sprintf("%s: %s (url: %s)", e.Field, e.Message, e.URL)
}

// ValidateURL checks that a link is an absolute http(s) URL with a host.
// Empty values are allowed; required-ness is checked separately.
func ValidateURL(urlString, fieldName string, requireHTTPS bool) error {
	if urlString == "" {
		return nil
	}
	reject := func(msg string) error {
		return URLValidationError{Field: fieldName, Message: msg, URL: urlString}
	}

	parsed, err := url.Parse(urlString)
	switch {
	case err != nil:
		return reject("invalid URL format")
	case parsed.Scheme == "":
		return reject("URL must include a scheme (http:// or https://)")
	case parsed.Host == "":
		return reject("URL must include a host")
	}

	switch scheme := strings.ToLower(parsed.Scheme); {
	case scheme != "http" && scheme != "https":
		return reject("URL scheme must be http or https")
	case requireHTTPS && scheme != "https":
		return reject("URL must use HTTPS")
	}
	return nil
}
