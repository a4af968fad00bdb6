package errors

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// artifactNameRegex matches the basenames the artifact store produces, e.g.
// design_20240101_120000_a1b2c3.dxf.
var artifactNameRegex = regexp.MustCompile(`^[a-z_]+_\d{8}_\d{6}_[0-9a-f]{6}\.(dxf|pdf|xlsx)$`)

// ValidateArtifactName validates a requested artifact basename before it is
// served from the output directory. Only names the artifact store could
// have produced are accepted:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
func ValidateArtifactName(name string) error {
	if name == "" {
		return New(ErrCodeBadRequest, "artifact name cannot be empty")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeBadRequest, "artifact name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return New(ErrCodeBadRequest, "artifact name cannot contain path components")
	}

	if !artifactNameRegex.MatchString(name) {
		return New(ErrCodeBadRequest, "unknown artifact: %q", name)
	}

	return nil
}

// ValidateEndpoint checks that rawURL is an absolute http or https URL
// with a host, such as the model endpoint
// http://localhost:11434/api/generate. A bare "host:port" is rejected
// because requests to it would fail only once they are sent.
func ValidateEndpoint(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeBadRequest, "endpoint URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeBadRequest, err, "invalid endpoint URL %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeBadRequest, "endpoint URL %q must use http or https", rawURL)
	}
	if u.Host == "" {
		return New(ErrCodeBadRequest, "endpoint URL %q has no host", rawURL)
	}

	return nil
}
